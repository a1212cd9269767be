package script

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/isle-tools/omni"
)

// State is a state of the preprocessor.
type State uint8

const (
	StateExpecting State = iota
	StateSlash
	StateSkipLine
	StateSkipComment
	StateEndComment
	StateDirective
	StateDirectiveParameter
	StateDirectiveString
)

var stateStrings = [...]string{
	StateExpecting:          "Expecting",
	StateSlash:              "Slash",
	StateSkipLine:           "SkipLine",
	StateSkipComment:        "SkipComment",
	StateEndComment:         "EndComment",
	StateDirective:          "Directive",
	StateDirectiveParameter: "DirectiveParameter",
	StateDirectiveString:    "DirectiveString",
}

func (s State) String() string {
	if int(s) < len(stateStrings) {
		return stateStrings[s]
	}
	return "Invalid"
}

// MaxIncludeDepth is the maximum number of nested include directives.
const MaxIncludeDepth = 16

const (
	directiveDefine  = "define"
	directiveInclude = "include"
)

var directiveNames = []string{directiveDefine, directiveInclude}

// Preprocessor expands define and include directives and strips comments.
// Definitions persist across calls to Preprocess.
type Preprocessor struct {
	// Include returns the content of an included file. If nil, include
	// directives are recorded but not expanded.
	Include func(path string) (string, error)

	defs     map[string]string
	names    []string
	includes []string
	depth    int
}

// NewPreprocessor returns a Preprocessor with no definitions.
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{defs: map[string]string{}}
}

// Define defines a macro, replacing any previous definition of name.
func (p *Preprocessor) Define(name, value string) {
	if p.defs == nil {
		p.defs = map[string]string{}
	}
	if _, ok := p.defs[name]; !ok {
		p.names = append(p.names, name)
		sort.Slice(p.names, func(i, j int) bool {
			ni := utf8.RuneCountInString(p.names[i])
			nj := utf8.RuneCountInString(p.names[j])
			if ni != nj {
				return ni > nj
			}
			return p.names[i] < p.names[j]
		})
	}
	p.defs[name] = value
}

// Lookup returns the value of a macro.
func (p *Preprocessor) Lookup(name string) (value string, ok bool) {
	value, ok = p.defs[name]
	return value, ok
}

// Includes returns the paths of every include directive processed so far,
// without delimiters.
func (p *Preprocessor) Includes() []string {
	return append([]string(nil), p.includes...)
}

// Preprocess returns src with comments removed, directives applied, and
// macros substituted. Where several macros match at the same position, the
// longest name wins. Substituted text is not scanned again. Lines of src keep
// their line numbers in the result, except where an include expands to
// several lines.
func (p *Preprocessor) Preprocess(src string) (string, error) {
	pp := &preprocessor{
		p:      p,
		src:    []rune(src),
		line:   1,
		column: 1,
	}
	if err := pp.run(); err != nil {
		return "", err
	}
	return pp.out.String(), nil
}

// preprocessor is the state of a single Preprocess call.
type preprocessor struct {
	p   *Preprocessor
	src []rune
	out strings.Builder

	index  int
	line   int
	column int

	state    State
	previous State

	name      []rune
	directive string
	dirLine   int
	dirColumn int
	params    []string
	delimiter rune
}

// next advances past c, maintaining the line and column.
func (pp *preprocessor) next(c rune) {
	pp.index++
	if c == '\n' {
		pp.line++
		pp.column = 1
	} else {
		pp.column++
	}
}

func (pp *preprocessor) unexpected(c rune) error {
	return UnexpectedTokenError{Char: c, Line: pp.line, Column: pp.column}
}

// match returns the longest macro name at the current position.
func (pp *preprocessor) match() (name string, n int) {
	rest := pp.src[pp.index:]
	for _, name := range pp.p.names {
		if n, ok := hasPrefix(rest, name); ok {
			return name, n
		}
	}
	return "", 0
}

func hasPrefix(src []rune, name string) (n int, ok bool) {
	for _, r := range name {
		if n >= len(src) || src[n] != r {
			return 0, false
		}
		n++
	}
	return n, n > 0
}

func (pp *preprocessor) run() error {
	for pp.index < len(pp.src) {
		c := pp.src[pp.index]
		if c == '\r' {
			pp.index++
			continue
		}

		switch pp.state {
		case StateExpecting:
			switch c {
			case '/':
				pp.previous = pp.state
				pp.state = StateSlash
			case '#':
				pp.previous = pp.state
				pp.state = StateDirective
				pp.name = pp.name[:0]
				pp.dirLine = pp.line
				pp.dirColumn = pp.column
			case '\n':
				pp.out.WriteRune(c)
			default:
				if name, n := pp.match(); n > 0 {
					pp.out.WriteString(pp.p.defs[name])
					for i := 0; i < n; i++ {
						pp.next(pp.src[pp.index])
					}
					continue
				}
				pp.out.WriteRune(c)
			}

		case StateSlash:
			switch c {
			case '/':
				pp.state = StateSkipLine
			case '*':
				pp.state = StateSkipComment
			default:
				return pp.unexpected(c)
			}

		case StateSkipLine:
			if c == '\n' {
				pp.state = pp.previous
				pp.out.WriteRune(c)
			}

		case StateSkipComment:
			switch c {
			case '*':
				pp.state = StateEndComment
			case '\n':
				pp.out.WriteRune(c)
			}

		case StateEndComment:
			switch c {
			case '/':
				pp.state = pp.previous
			case '*':
			case '\n':
				pp.out.WriteRune(c)
				pp.state = StateSkipComment
			default:
				pp.state = StateSkipComment
			}

		case StateDirective:
			switch c {
			case ' ', '\t':
				if err := pp.beginParams(); err != nil {
					return err
				}
			case '"', '<':
				if err := pp.beginParams(); err != nil {
					return err
				}
				// The delimiter opens the first parameter.
				continue
			case '\n':
				return pp.unexpected(c)
			default:
				pp.name = append(pp.name, c)
			}

		case StateDirectiveParameter:
			last := len(pp.params) - 1
			switch c {
			case '"', '<':
				pp.delimiter = c
				pp.state = StateDirectiveString
				pp.params[last] += string(c)
			case '\n':
				if err := pp.endDirective(); err != nil {
					return err
				}
				pp.out.WriteRune(c)
				pp.state = pp.previous
			case ' ', '\t':
				if pp.params[last] != "" {
					pp.params = append(pp.params, "")
				}
			default:
				pp.params[last] += string(c)
			}

		case StateDirectiveString:
			closing := pp.delimiter
			if closing == '<' {
				closing = '>'
			}
			last := len(pp.params) - 1
			switch c {
			case closing:
				pp.params[last] += string(c)
				pp.state = StateDirectiveParameter
				pp.params = append(pp.params, "")
			case '\n':
				return pp.unexpected(c)
			default:
				pp.params[last] += string(c)
			}
		}

		pp.next(c)
	}

	switch pp.state {
	case StateExpecting, StateSkipLine:
		return nil
	}
	return UnexpectedEndStateError{State: pp.state}
}

// beginParams resolves the directive name and starts reading parameters.
func (pp *preprocessor) beginParams() error {
	name := string(pp.name)
	switch name {
	case directiveDefine, directiveInclude:
	default:
		return UnknownDirectiveError{
			Name:       name,
			Line:       pp.dirLine,
			Column:     pp.dirColumn,
			Suggestion: omni.ClosestMatch(name, directiveNames),
		}
	}
	pp.directive = name
	pp.state = StateDirectiveParameter
	pp.params = []string{""}
	return nil
}

// endDirective applies the directive once its line ends.
func (pp *preprocessor) endDirective() error {
	params := pp.params
	if n := len(params); n > 0 && params[n-1] == "" {
		params = params[:n-1]
	}
	switch {
	case len(params) == 0,
		pp.directive == directiveDefine && len(params) > 2,
		pp.directive == directiveInclude && len(params) > 1:
		return DirectiveParamsError{
			Directive: pp.directive,
			Count:     len(params),
			Line:      pp.dirLine,
			Column:    pp.dirColumn,
		}
	}

	switch pp.directive {
	case directiveDefine:
		value := ""
		if len(params) == 2 {
			value = params[1]
		}
		pp.p.Define(params[0], value)
	case directiveInclude:
		return pp.include(params[0])
	}
	return nil
}

// trimDelimiters removes the quotes or angle brackets around an include path.
func trimDelimiters(s string) string {
	if len(s) >= 2 {
		switch {
		case s[0] == '"' && s[len(s)-1] == '"',
			s[0] == '<' && s[len(s)-1] == '>':
			return s[1 : len(s)-1]
		}
	}
	return s
}

func (pp *preprocessor) include(raw string) error {
	path := trimDelimiters(raw)
	p := pp.p
	p.includes = append(p.includes, path)
	if p.Include == nil {
		return nil
	}

	ierr := IncludeError{Path: path, Line: pp.dirLine, Column: pp.dirColumn}
	if p.depth >= MaxIncludeDepth {
		ierr.Cause = fmt.Errorf("exceeded maximum include depth of %d", MaxIncludeDepth)
		return ierr
	}
	content, err := p.Include(path)
	if err != nil {
		ierr.Cause = err
		return ierr
	}

	p.depth++
	out, err := p.Preprocess(content)
	p.depth--
	if err != nil {
		ierr.Cause = err
		return ierr
	}
	pp.out.WriteString(out)
	return nil
}
