package script

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"
)

// UnexpectedTokenError indicates a character that is not valid in the current
// state of the preprocessor.
type UnexpectedTokenError struct {
	Char   rune
	Line   int
	Column int
}

func (err UnexpectedTokenError) Error() string {
	return fmt.Sprintf("unexpected token at (%d:%d): %q", err.Line, err.Column, err.Char)
}

// UnexpectedEndStateError indicates that the input ended within a comment or
// a directive.
type UnexpectedEndStateError struct {
	State State
}

func (err UnexpectedEndStateError) Error() string {
	return "unexpected end state: " + err.State.String()
}

// UnknownDirectiveError indicates a directive other than define or include.
type UnknownDirectiveError struct {
	Name       string
	Line       int
	Column     int
	Suggestion string
}

func (err UnknownDirectiveError) Error() string {
	msg := fmt.Sprintf("unknown directive at (%d:%d): %q", err.Line, err.Column, err.Name)
	if err.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", err.Suggestion)
	}
	return msg
}

// DirectiveParamsError indicates a directive with the wrong number of
// parameters.
type DirectiveParamsError struct {
	Directive string
	Count     int
	Line      int
	Column    int
}

func (err DirectiveParamsError) Error() string {
	if err.Count == 0 {
		return fmt.Sprintf("expected at least one parameter for %s directive at (%d:%d)", err.Directive, err.Line, err.Column)
	}
	return fmt.Sprintf("too many parameters (%d) for %s directive at (%d:%d)", err.Count, err.Directive, err.Line, err.Column)
}

// IncludeError wraps an error that occurred while resolving an include
// directive.
type IncludeError struct {
	Path   string
	Line   int
	Column int

	Cause error
}

func (err IncludeError) Error() string {
	return fmt.Sprintf("include %s at (%d:%d): %s", err.Path, err.Line, err.Column, err.Cause)
}

func (err IncludeError) Unwrap() error {
	return err.Cause
}

// SyntaxError indicates that the preprocessed script does not match the
// grammar.
type SyntaxError struct {
	Pos lexer.Position
	Msg string

	// Expected describes what the parser expected at Pos, if known.
	Expected string
}

func (err SyntaxError) Error() string {
	s := "syntax error"
	if err.Pos.Filename != "" {
		s += " in " + err.Pos.Filename
	}
	if err.Pos.Line > 0 {
		s += " on line " + strconv.Itoa(err.Pos.Line) + ":" + strconv.Itoa(err.Pos.Column)
	}
	return s + ": " + err.Msg
}

// UnknownKeywordError indicates an identifier in value position that is not
// a definition keyword.
type UnknownKeywordError struct {
	Pos        lexer.Position
	Property   string
	Keyword    string
	Suggestion string
}

func (err UnknownKeywordError) Error() string {
	msg := fmt.Sprintf("line %d:%d: unknown keyword %s assigned to %s", err.Pos.Line, err.Pos.Column, err.Keyword, err.Property)
	if err.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %s?)", err.Suggestion)
	}
	return msg
}

// SettingsCountError indicates that a script does not have exactly one
// defineSettings block.
type SettingsCountError int

func (err SettingsCountError) Error() string {
	return fmt.Sprintf("expected exactly one defineSettings block, found %d", int(err))
}
