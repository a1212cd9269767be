package errors

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

type codeError struct{ code int }

func (err codeError) Error() string { return "code" }

func TestErrorsMessage(t *testing.T) {
	require.Equal(t, "no errors", Errors{}.Error())
	require.Equal(t, "a", Errors{New("a")}.Error())
	require.Equal(t, "multiple errors:\n\ta\n\tb\n\tc", Errors{New("a"), New("b\nc")}.Error())
}

func TestErrorsAppendReturn(t *testing.T) {
	var errs Errors
	require.NoError(t, errs.Return())
	errs = errs.Append(nil, io.EOF, nil)
	require.Len(t, errs, 1)
	require.Equal(t, Errors{io.EOF}, errs.Return())
}

func TestUnion(t *testing.T) {
	require.NoError(t, Union())
	require.NoError(t, Union(nil, Errors{}, Errors{nil}))

	a, b, c := New("a"), New("b"), New("c")
	require.Equal(t, Errors{a, b, c}, Union(a, nil, Errors{b, nil, c}))
}

func TestErrorsUnwrap(t *testing.T) {
	err := Union(New("a"), codeError{code: 3}, io.ErrUnexpectedEOF)
	require.True(t, Is(err, io.ErrUnexpectedEOF))

	var cerr codeError
	require.True(t, As(err, &cerr))
	require.Equal(t, 3, cerr.code)
}
