// The declare package is used to generate omni structures in a declarative
// style.
//
// Most items have a Declare method, which returns a new omni structure
// corresponding to the declared item.
//
// The easiest way to use this package is to import it directly into the
// current package:
//
//     import . "github.com/isle-tools/omni/declare"
//
// This allows the package's identifiers to be used directly without a
// qualifier.
package declare

import (
	"github.com/isle-tools/omni"
)

// primary is implemented by declarations that can be directly within a
// Document declaration.
type primary interface {
	primary()
}

// Document declares an omni.Document. It is a list of Block declarations. A
// block of type omni.DefineSettings becomes the settings of the document;
// other blocks are added in order.
type Document []primary

// Declare evaluates the Document declaration, generating blocks and their
// values. If more than one settings block is declared, the latter takes
// precedence.
func (ddoc Document) Declare() *omni.Document {
	doc := &omni.Document{}
	for _, p := range ddoc {
		switch p := p.(type) {
		case block:
			b := p.Declare()
			if b.Type == omni.DefineSettings {
				doc.Settings = b
				continue
			}
			doc.Blocks = append(doc.Blocks, b)
		}
	}
	return doc
}

// element is implemented by declarations that can be within a block
// declaration.
type element interface {
	element()
}

// block represents the declaration of an omni.Block.
type block struct {
	typ   omni.BlockType
	name  string
	id    uint32
	weave bool
	stmts []element
}

func (block) primary() {}

// Block declares an omni.Block. It defines a block with a type, a name, and
// a series of elements. An element can be an Assign or Declare declaration,
// which adds a statement to the block in order. An element can also be an ID
// declaration, which sets the identifier of the block, or Weave, which marks
// the block as top-level.
func Block(typ omni.BlockType, name string, elements ...element) block {
	b := block{typ: typ, name: name}
	for _, e := range elements {
		switch e := e.(type) {
		case ID:
			b.id = uint32(e)
		case weave:
			b.weave = true
		case assignment, declaration:
			b.stmts = append(b.stmts, e)
		}
	}
	return b
}

// Settings declares a defineSettings block named Configuration, the name
// given to the settings of decoded containers.
func Settings(elements ...element) block {
	return Block(omni.DefineSettings, "Configuration", elements...)
}

// Declare evaluates the Block declaration, generating the block and its
// statements.
func (dblock block) Declare() *omni.Block {
	b := omni.NewBlock(dblock.typ, dblock.name, dblock.id, dblock.weave)
	for _, s := range dblock.stmts {
		switch s := s.(type) {
		case assignment:
			b.Assign(s.name, s.Declare())
		case declaration:
			b.Declare(string(s))
		}
	}
	return b
}

// ID declares the identifier of the block under which it was declared.
type ID uint32

func (ID) element() {}

type weave struct{}

func (weave) element() {}

// Weave marks the block under which it is declared as top-level.
var Weave = weave{}

type assignment struct {
	name  string
	typ   Type
	value []interface{}
}

func (assignment) element() {}

// Assign declares an assignment statement of a block. It defines the name of
// the assigned property, a type corresponding to an omni.Value, and the
// value.
//
// The value argument may be one or more values of any type, which are
// converted to an omni.Value corresponding to the given type. If the
// value(s) cannot be converted, then the zero value for the given type is
// used instead.
//
// The value may be a single omni.Value that corresponds to the given type
// (e.g. omni.ValueString for String), in which case the value itself is
// used.
//
// Otherwise, for a given type, values must be the following:
//
//     String:
//         A single string or []byte. Extra values are ignored.
//
//     Integer:
//         A single number. Extra values are ignored.
//
//     Vector3:
//         1) A single omni.Vector3.
//         2) 3 numbers, corresponding to the X, Y, and Z fields.
//
//     Duration:
//         A single number, or the keyword "INDEFINITE".
//
//     LoopingMethod, PaletteManagement, Transparency:
//         A single keyword string, such as "CACHE", "NONE", or "YES".
//
//     Function:
//         A string naming the function, followed by zero or more strings,
//         which become the quoted arguments.
func Assign(name string, typ Type, value ...interface{}) assignment {
	return assignment{name: name, typ: typ, value: value}
}

// Declare evaluates the Assign declaration. Since the assignment does not
// belong to any block, the name is ignored, and only the value is generated.
func (a assignment) Declare() omni.Value {
	return a.typ.value(a.value)
}

type declaration string

func (declaration) element() {}

// Declare declares a declaration statement, which refers to the block of the
// given name.
func Declare(name string) declaration {
	return declaration(name)
}
