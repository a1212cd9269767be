package omni

import (
	"strings"
)

// BlockType is the kind of a Block, written as the leading keyword of the
// block.
type BlockType byte

const (
	BlockInvalid BlockType = iota
	DefineSettings
	DefineObject
	DefineSound
	DefineEvent
	DefineAnim
	ParallelAction
	DefineStill
	SerialAction
)

var blockTypeStrings = map[BlockType]string{
	DefineSettings: "defineSettings",
	DefineObject:   "defineObject",
	DefineSound:    "defineSound",
	DefineEvent:    "defineEvent",
	DefineAnim:     "defineAnim",
	ParallelAction: "parallelAction",
	DefineStill:    "defineStill",
	SerialAction:   "serialAction",
}

// String returns the keyword of the block type, or "Invalid".
func (t BlockType) String() string {
	s, ok := blockTypeStrings[t]
	if !ok {
		return "Invalid"
	}
	return s
}

// BlockTypeFromString returns the BlockType denoted by keyword s, or
// BlockInvalid.
func BlockTypeFromString(s string) BlockType {
	for typ, str := range blockTypeStrings {
		if s == str {
			return typ
		}
	}
	return BlockInvalid
}

// BlockTypeKeywords returns the keywords of every valid block type, in type
// order.
func BlockTypeKeywords() []string {
	keywords := make([]string, 0, len(blockTypeStrings))
	for t := DefineSettings; t <= SerialAction; t++ {
		keywords = append(keywords, t.String())
	}
	return keywords
}

////////////////////////////////////////////////////////////////

// Statement is a single statement within a Block. A Statement is either an
// Assignment or a Declaration.
type Statement interface {
	// String returns the statement as written in a script, without the
	// terminating semicolon.
	String() string
	statement()
}

// Assignment assigns a Value to a named property.
type Assignment struct {
	Name  string
	Value Value
}

func (s Assignment) String() string {
	if s.Value == nil {
		return s.Name + " = "
	}
	return s.Name + " = " + s.Value.String()
}

func (Assignment) statement() {}

// Declaration refers by name to a block defined elsewhere in the document.
type Declaration struct {
	Name string
}

func (s Declaration) String() string {
	return s.Name
}

func (Declaration) statement() {}

////////////////////////////////////////////////////////////////

// Block is a named group of statements.
type Block struct {
	Type BlockType
	Name string

	// ID is the identifier of the object the block was produced from. Blocks
	// parsed from a script have an ID of zero.
	ID uint32

	// Weave is set for blocks that appear at the top level of the object
	// graph.
	Weave bool

	Statements []Statement
}

// NewBlock returns a new Block with no statements.
func NewBlock(typ BlockType, name string, id uint32, weave bool) *Block {
	return &Block{
		Type:  typ,
		Name:  name,
		ID:    id,
		Weave: weave,
	}
}

// Assign appends an Assignment to the block.
func (b *Block) Assign(name string, value Value) {
	b.Statements = append(b.Statements, Assignment{Name: name, Value: value})
}

// Declare appends a Declaration to the block.
func (b *Block) Declare(name string) {
	b.Statements = append(b.Statements, Declaration{Name: name})
}

// Get returns the value of the last assignment to the given property, or nil
// if the property is not assigned.
func (b *Block) Get(name string) Value {
	for i := len(b.Statements) - 1; i >= 0; i-- {
		if a, ok := b.Statements[i].(Assignment); ok && a.Name == name {
			return a.Value
		}
	}
	return nil
}

// Declarations returns the names of each Declaration in the block, in order.
func (b *Block) Declarations() []string {
	var names []string
	for _, s := range b.Statements {
		if d, ok := s.(Declaration); ok {
			names = append(names, d.Name)
		}
	}
	return names
}

// Copy returns a deep copy of the block.
func (b *Block) Copy() *Block {
	c := *b
	c.Statements = make([]Statement, len(b.Statements))
	for i, s := range b.Statements {
		if a, ok := s.(Assignment); ok && a.Value != nil {
			a.Value = a.Value.Copy()
			s = a
		}
		c.Statements[i] = s
	}
	return &c
}

func (b *Block) writeTo(s *strings.Builder) {
	s.WriteString(b.Type.String())
	s.WriteByte(' ')
	s.WriteString(b.Name)
	if b.Weave {
		s.WriteString(" Weave")
	}
	s.WriteString(" {\n")
	for _, stmt := range b.Statements {
		s.WriteByte('\t')
		s.WriteString(stmt.String())
		s.WriteString(";\n")
	}
	s.WriteString("}\n\n")
}

// String returns the block as written in a script. The block is followed by
// an empty line.
func (b *Block) String() string {
	var s strings.Builder
	b.writeTo(&s)
	return s.String()
}
