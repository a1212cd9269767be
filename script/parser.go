// The script package parses the textual form of an OMNI container into an
// omni.Document.
//
// A script is first run through a Preprocessor, which strips comments and
// applies define and include directives. The result is then parsed by a
// grammar of blocks and statements:
//
//     defineSettings Configuration {
//         bufferSizeKB = 64;
//     }
//
//     defineSound Horn Weave {
//         fileName = "HORN.WAV";
//         loopingMethod = CACHE;
//     }
package script

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/isle-tools/omni"
	"github.com/isle-tools/omni/errors"
	"github.com/sirupsen/logrus"
)

var scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"[^"\n]*"`},
	{Name: "Float", Pattern: `-?(\d+\.\d*([eE][-+]?\d+)?|\.\d+([eE][-+]?\d+)?|\d+[eE][-+]?\d+)`},
	{Name: "Int", Pattern: `-?\d+`},
	{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{N}_]*`},
	{Name: "Punct", Pattern: `[{}();,=]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

type fileNode struct {
	Blocks []*blockNode `@@*`
}

type blockNode struct {
	Pos        lexer.Position
	Type       string           `@Ident`
	Name       string           `@Ident`
	Weave      bool             `@"Weave"?`
	Statements []*statementNode `"{" @@* "}"`
}

type statementNode struct {
	Pos   lexer.Position
	Name  string     `@Ident`
	Value *valueNode `( "=" @@ )? ";"`
}

type valueNode struct {
	Pos      lexer.Position
	String   *string       `  @String`
	Vector   *vectorNode   `| @@`
	Function *functionNode `| @@`
	Integer  *string       `| @Int`
	Keyword  *string       `| @Ident`
}

type vectorNode struct {
	X float64 `"(" @(Float | Int)`
	Y float64 `"," @(Float | Int)`
	Z float64 `"," @(Float | Int) ")"`
}

type functionNode struct {
	Name string   `@Ident "("`
	Args []string `( @String ( "," @String )* )? ")"`
}

var scriptParser = participle.MustBuild[fileNode](
	participle.Lexer(scriptLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// Parser parses scripts.
type Parser struct {
	// Filename is reported in the positions of syntax errors.
	Filename string

	// Include resolves include directives. See Preprocessor.Include.
	Include func(path string) (string, error)

	// Logger receives debug traces. If nil, the standard logrus logger is
	// used.
	Logger logrus.FieldLogger
}

// Parse parses a script with the default Parser.
func Parse(src string) (*omni.Document, error) {
	return Parser{}.Parse(src)
}

// Parse preprocesses src and parses the result into a document. The script
// must contain exactly one defineSettings block, which becomes the settings
// of the document regardless of its position. The remaining blocks keep the
// order in which they appear.
func (p Parser) Parse(src string) (*omni.Document, error) {
	log := p.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	pre := NewPreprocessor()
	pre.Include = p.Include
	text, err := pre.Preprocess(src)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"file":     p.Filename,
		"includes": len(pre.Includes()),
		"macros":   len(pre.names),
	}).Debug("preprocessed script")

	file, err := scriptParser.ParseString(p.Filename, text)
	if err != nil {
		return nil, syntaxError(err)
	}
	return p.convert(file)
}

// syntaxError converts an error from the grammar into a SyntaxError.
func syntaxError(err error) error {
	var perr participle.Error
	if !errors.As(err, &perr) {
		return err
	}
	msg := perr.Message()
	serr := SyntaxError{Pos: perr.Position(), Msg: msg}
	const prefix = " (expected "
	if i := strings.LastIndex(msg, prefix); i >= 0 && strings.HasSuffix(msg, ")") {
		serr.Expected = msg[i+len(prefix) : len(msg)-1]
	}
	return serr
}

func (p Parser) convert(file *fileNode) (*omni.Document, error) {
	doc := &omni.Document{}
	set := omni.NewBlockSet(omni.ByFileOrder)
	settings := 0
	for i, node := range file.Blocks {
		block, err := convertBlock(node)
		if err != nil {
			return nil, err
		}
		if block.Type == omni.DefineSettings {
			settings++
			doc.Settings = block
			continue
		}
		key := omni.NewSortingID(block.Type, 0, nil, i, 0, 0)
		if err := set.Insert(key, block); err != nil {
			return nil, err
		}
	}
	if settings != 1 {
		return nil, SettingsCountError(settings)
	}
	doc.Blocks = set.Blocks()
	return doc, nil
}

func convertBlock(node *blockNode) (*omni.Block, error) {
	typ := omni.BlockTypeFromString(node.Type)
	if typ == omni.BlockInvalid {
		msg := "unknown block type " + strconv.Quote(node.Type)
		if s := omni.ClosestMatch(node.Type, omni.BlockTypeKeywords()); s != "" {
			msg += " (did you mean " + strconv.Quote(s) + "?)"
		}
		return nil, SyntaxError{Pos: node.Pos, Msg: msg}
	}

	block := omni.NewBlock(typ, node.Name, 0, node.Weave)
	for _, stmt := range node.Statements {
		if stmt.Value == nil {
			block.Declare(stmt.Name)
			continue
		}
		value, err := convertValue(stmt.Name, stmt.Value)
		if err != nil {
			return nil, err
		}
		block.Assign(stmt.Name, value)
	}
	return block, nil
}

func convertValue(property string, node *valueNode) (omni.Value, error) {
	switch {
	case node.String != nil:
		return omni.ValueString(strings.Trim(*node.String, `"`)), nil

	case node.Vector != nil:
		return omni.ValueVector3{X: node.Vector.X, Y: node.Vector.Y, Z: node.Vector.Z}, nil

	case node.Function != nil:
		return omni.ValueFunction{Name: node.Function.Name, Args: node.Function.Args}, nil

	case node.Integer != nil:
		n, err := strconv.ParseInt(*node.Integer, 10, 32)
		if err != nil {
			return nil, SyntaxError{Pos: node.Pos, Msg: "integer out of range: " + *node.Integer}
		}
		if property == "duration" {
			return omni.ValueDuration(n), nil
		}
		return omni.ValueInteger(n), nil

	case node.Keyword != nil:
		def, ok := omni.LookupDefinition(property, *node.Keyword)
		if !ok {
			return nil, UnknownKeywordError{
				Pos:        node.Pos,
				Property:   property,
				Keyword:    *node.Keyword,
				Suggestion: omni.ClosestMatch(*node.Keyword, omni.DefinitionKeywords()),
			}
		}
		return def, nil
	}
	return nil, SyntaxError{Pos: node.Pos, Msg: "empty value"}
}
