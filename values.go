package omni

import (
	"strconv"
	"strings"
)

// Type represents the type of a Value in the scripting language.
type Type byte

// String returns a string representation of the type. If the type is not
// valid, then the returned value will be "Invalid".
func (t Type) String() string {
	s, ok := typeStrings[t]
	if !ok {
		return "Invalid"
	}
	return s
}

const (
	TypeInvalid Type = iota
	TypeString
	TypeInteger
	TypeVector3
	TypeLoopingMethod
	TypeDuration
	TypePaletteManagement
	TypeTransparency
	TypeFunction
)

var typeStrings = map[Type]string{
	TypeString:            "string",
	TypeInteger:           "integer",
	TypeVector3:           "vector3",
	TypeLoopingMethod:     "loopingMethod",
	TypeDuration:          "duration",
	TypePaletteManagement: "paletteManagement",
	TypeTransparency:      "transparency",
	TypeFunction:          "function",
}

// TypeFromString returns a Type from its string representation. TypeInvalid
// is returned if the string does not represent an existing Type.
func TypeFromString(s string) Type {
	for typ, str := range typeStrings {
		if s == str {
			return typ
		}
	}
	return TypeInvalid
}

// Value holds a value of a particular Type.
type Value interface {
	// Type returns the type of the value.
	Type() Type

	// String returns the value as it is written in a script.
	String() string

	// Copy returns a copy of the value, which can be safely modified.
	Copy() Value
}

// Definition is implemented by the values of enumerated definitions, which
// are written as bare keywords rather than literals.
type Definition interface {
	Value
	definition()
}

// NewValue returns new Value of the given Type. The initial value will not
// necessarily be the zero for the type.
func NewValue(typ Type) Value {
	newValue, ok := valueGenerators[typ]
	if !ok {
		return nil
	}
	return newValue()
}

type valueGenerator func() Value

var valueGenerators = map[Type]valueGenerator{
	TypeString:            newValueString,
	TypeInteger:           newValueInteger,
	TypeVector3:           newValueVector3,
	TypeLoopingMethod:     newValueLoopingMethod,
	TypeDuration:          newValueDuration,
	TypePaletteManagement: newValuePaletteManagement,
	TypeTransparency:      newValueTransparency,
	TypeFunction:          newValueFunction,
}

////////////////////////////////////////////////////////////////

// ValueString is a quoted string. Strings have no escape sequences; a string
// cannot contain a double quote.
type ValueString string

func newValueString() Value {
	return ValueString("")
}

func (ValueString) Type() Type {
	return TypeString
}
func (t ValueString) String() string {
	return `"` + string(t) + `"`
}
func (t ValueString) Copy() Value {
	return t
}

////////////////////////////////////////////////////////////////

type ValueInteger int32

func newValueInteger() Value {
	return ValueInteger(0)
}

func (ValueInteger) Type() Type {
	return TypeInteger
}
func (t ValueInteger) String() string {
	return strconv.FormatInt(int64(t), 10)
}
func (t ValueInteger) Copy() Value {
	return t
}

////////////////////////////////////////////////////////////////

// Vector3 is a point or direction in 3D space.
type Vector3 struct {
	X, Y, Z float64
}

var (
	VectorZero = Vector3{0, 0, 0}
	VectorX    = Vector3{1, 0, 0}
	VectorY    = Vector3{0, 1, 0}
	VectorZ    = Vector3{0, 0, 1}
)

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (v Vector3) String() string {
	var s strings.Builder
	s.WriteByte('(')
	s.WriteString(formatFloat(v.X))
	s.WriteString(", ")
	s.WriteString(formatFloat(v.Y))
	s.WriteString(", ")
	s.WriteString(formatFloat(v.Z))
	s.WriteByte(')')
	return s.String()
}

type ValueVector3 Vector3

func newValueVector3() Value {
	return ValueVector3{}
}

func (ValueVector3) Type() Type {
	return TypeVector3
}
func (t ValueVector3) String() string {
	return Vector3(t).String()
}
func (t ValueVector3) Copy() Value {
	return t
}

////////////////////////////////////////////////////////////////

// ValueLoopingMethod selects how a looping object repeats.
type ValueLoopingMethod uint8

const (
	LoopingCache ValueLoopingMethod = iota
	LoopingNone
	LoopingStream
)

var loopingStrings = []string{"CACHE", "NONE", "STREAM"}

func newValueLoopingMethod() Value {
	return LoopingNone
}

func (ValueLoopingMethod) Type() Type {
	return TypeLoopingMethod
}
func (t ValueLoopingMethod) String() string {
	if int(t) < len(loopingStrings) {
		return loopingStrings[t]
	}
	return "INVALID"
}
func (t ValueLoopingMethod) Copy() Value {
	return t
}
func (ValueLoopingMethod) definition() {}

////////////////////////////////////////////////////////////////

// ValueDuration is a duration in milliseconds. DurationIndefinite is written
// as the INDEFINITE keyword.
type ValueDuration int32

const DurationIndefinite ValueDuration = -1

func newValueDuration() Value {
	return ValueDuration(0)
}

func (ValueDuration) Type() Type {
	return TypeDuration
}
func (t ValueDuration) String() string {
	if t == DurationIndefinite {
		return "INDEFINITE"
	}
	return strconv.FormatInt(int64(t), 10)
}
func (t ValueDuration) Copy() Value {
	return t
}
func (ValueDuration) definition() {}

////////////////////////////////////////////////////////////////

// ValuePaletteManagement has a single known value.
type ValuePaletteManagement uint8

const PaletteNone ValuePaletteManagement = 0

func newValuePaletteManagement() Value {
	return PaletteNone
}

func (ValuePaletteManagement) Type() Type {
	return TypePaletteManagement
}
func (t ValuePaletteManagement) String() string {
	if t == PaletteNone {
		return "NONE"
	}
	return "INVALID"
}
func (t ValuePaletteManagement) Copy() Value {
	return t
}
func (ValuePaletteManagement) definition() {}

////////////////////////////////////////////////////////////////

type ValueTransparency uint8

const (
	TransparencyYes ValueTransparency = iota
	// TransparencyFast is accepted by the language, but its binary encoding
	// is not known.
	TransparencyFast
)

func newValueTransparency() Value {
	return TransparencyYes
}

func (ValueTransparency) Type() Type {
	return TypeTransparency
}
func (t ValueTransparency) String() string {
	switch t {
	case TransparencyYes:
		return "YES"
	case TransparencyFast:
		return "FAST"
	}
	return "INVALID"
}
func (t ValueTransparency) Copy() Value {
	return t
}
func (ValueTransparency) definition() {}

////////////////////////////////////////////////////////////////

// ValueFunction is a call-like value with string arguments, such as
// `Open("a", "b")`. It has no counterpart in the binary format.
type ValueFunction struct {
	Name string
	Args []string
}

func newValueFunction() Value {
	return ValueFunction{}
}

func (ValueFunction) Type() Type {
	return TypeFunction
}
func (t ValueFunction) String() string {
	var s strings.Builder
	s.WriteString(t.Name)
	s.WriteByte('(')
	for i, arg := range t.Args {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(arg)
	}
	s.WriteByte(')')
	return s.String()
}
func (t ValueFunction) Copy() Value {
	c := t
	c.Args = append([]string(nil), t.Args...)
	return c
}

////////////////////////////////////////////////////////////////

// definitionKeywords maps each definition keyword to the definitions it may
// denote. The first entry is used when the assigned property does not
// select another.
var definitionKeywords = map[string][]Definition{
	"CACHE":      {LoopingCache},
	"NONE":       {LoopingNone, PaletteNone},
	"STREAM":     {LoopingStream},
	"INDEFINITE": {DurationIndefinite},
	"YES":        {TransparencyYes},
	"FAST":       {TransparencyFast},
}

// propertyTypes maps properties to the definition type they are assigned.
var propertyTypes = map[string]Type{
	"loopingMethod":     TypeLoopingMethod,
	"duration":          TypeDuration,
	"paletteManagement": TypePaletteManagement,
	"transparency":      TypeTransparency,
}

// DefinitionKeywords returns the list of keywords that denote definitions.
func DefinitionKeywords() []string {
	return []string{"CACHE", "NONE", "STREAM", "INDEFINITE", "YES", "FAST"}
}

// LookupDefinition returns the definition denoted by keyword when assigned to
// the given property. Keywords shared between definitions, like NONE, are
// resolved by the type the property expects. Returns false if keyword is not
// a definition keyword.
func LookupDefinition(property, keyword string) (Definition, bool) {
	defs, ok := definitionKeywords[keyword]
	if !ok {
		return nil, false
	}
	if typ, ok := propertyTypes[property]; ok {
		for _, def := range defs {
			if def.Type() == typ {
				return def, true
			}
		}
	}
	return defs[0], true
}
