package riff

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// Indicates that the stream does not begin with a RIFF chunk.
	ErrNoRiffChunk = errors.New("RIFF chunk not found at beginning of file")
	// Indicates that the RIFF chunk does not have the expected children.
	ErrUnknownLayout = errors.New("unknown top-level chunk layout (expected a RIFF chunk with 3 children: MxHd, MxOf, LIST)")
	// Indicates a chunk signature not known by the decoder.
	ErrUnknownChunkSig = errors.New("unknown chunk signature")
	// Indicates that the data ended in the middle of a chunk.
	ErrUnexpectedEOF = errors.New("unexpected end of data")
	// Indicates a buffer size that cannot be used to split the stream.
	ErrInvalidBufferSize = errors.New("invalid buffer size")
)

// NotOmniError indicates that the RIFF chunk has a type other than OMNI or
// MxSt.
type NotOmniError [4]byte

func (err NotOmniError) Error() string {
	return fmt.Sprintf("not an Omni file (RIFF chunk type %q, expected \"OMNI\" or \"MxSt\")", string(err[:]))
}

// UnknownObjectKindError indicates an object kind not known by the decoder.
type UnknownObjectKindError uint16

func (err UnknownObjectKindError) Error() string {
	return fmt.Sprintf("unknown object kind %d", uint16(err))
}

// UnknownFormatError indicates a file format tag that is not valid for the
// kind of object that carries it.
type UnknownFormatError struct {
	Kind ObjectKind
	Tag  [4]byte
}

func (err UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown %s file format %q", err.Kind, string(err.Tag[:]))
}

// UnsupportedObjectError indicates an object kind that has no textual form.
type UnsupportedObjectError struct {
	Kind ObjectKind
	Name string
}

func (err UnsupportedObjectError) Error() string {
	return fmt.Sprintf("cannot lower %s object %q: not supported", err.Kind, err.Name)
}

// DataError wraps an error that occurred while decoding byte data.
type DataError struct {
	// Offset is the absolute byte offset where the error occurred.
	Offset int64

	Cause error
}

func (err DataError) Error() string {
	var s strings.Builder
	s.WriteString("data error")
	if err.Offset >= 0 {
		s.WriteString(" at ")
		s.Write(strconv.AppendInt(nil, err.Offset, 10))
	}
	if err.Cause != nil {
		s.WriteString(": ")
		s.WriteString(err.Cause.Error())
	}
	return s.String()
}

func (err DataError) Unwrap() error {
	return err.Cause
}

// ChunkError indicates an error that occurred within a chunk.
type ChunkError struct {
	// Offset is the absolute byte offset of the chunk header.
	Offset int64
	// Sig is the signature of the chunk.
	Sig [4]byte

	Cause error
}

func (err ChunkError) Error() string {
	if err.Offset < 0 {
		return fmt.Sprintf("%q chunk: %s", string(err.Sig[:]), err.Cause.Error())
	}
	return fmt.Sprintf("%q chunk at %d: %s", string(err.Sig[:]), err.Offset, err.Cause.Error())
}

func (err ChunkError) Unwrap() error {
	return err.Cause
}

// LowerError wraps an error that occurred while lowering a top-level stream
// to a block.
type LowerError struct {
	// Index is the position of the stream within the stream list.
	Index int
	// Name is the name of the stream object, if known.
	Name string

	Cause error
}

func (err LowerError) Error() string {
	if err.Name == "" {
		return fmt.Sprintf("stream #%d: %s", err.Index, err.Cause.Error())
	}
	return fmt.Sprintf("stream #%d %q: %s", err.Index, err.Name, err.Cause.Error())
}

func (err LowerError) Unwrap() error {
	return err.Cause
}
