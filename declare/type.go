package declare

import (
	"strings"

	"github.com/isle-tools/omni"
)

// Type corresponds to an omni.Type.
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
	_ Type = iota
	String
	Integer
	Vector3
	LoopingMethod
	Duration
	PaletteManagement
	Transparency
	Function
)

// TypeFromString returns a Type from its string representation. Type(0) is
// returned if the string does not represent an existing Type.
func TypeFromString(s string) Type {
	s = strings.ToLower(s)
	for typ, str := range typeStrings {
		if s == strings.ToLower(str) {
			return typ
		}
	}
	return 0
}

var typeStrings = map[Type]string{
	String:            "String",
	Integer:           "Integer",
	Vector3:           "Vector3",
	LoopingMethod:     "LoopingMethod",
	Duration:          "Duration",
	PaletteManagement: "PaletteManagement",
	Transparency:      "Transparency",
	Function:          "Function",
}

var omniTypes = map[Type]omni.Type{
	String:            omni.TypeString,
	Integer:           omni.TypeInteger,
	Vector3:           omni.TypeVector3,
	LoopingMethod:     omni.TypeLoopingMethod,
	Duration:          omni.TypeDuration,
	PaletteManagement: omni.TypePaletteManagement,
	Transparency:      omni.TypeTransparency,
	Function:          omni.TypeFunction,
}

// definitionProperties maps each definition type to a property that accepts
// it, used to resolve shared keywords.
var definitionProperties = map[Type]string{
	LoopingMethod:     "loopingMethod",
	Duration:          "duration",
	PaletteManagement: "paletteManagement",
	Transparency:      "transparency",
}

func normInt32(v interface{}) int32 {
	switch v := v.(type) {
	case int:
		return int32(v)
	case uint:
		return int32(v)
	case uint8:
		return int32(v)
	case uint16:
		return int32(v)
	case uint32:
		return int32(v)
	case uint64:
		return int32(v)
	case int8:
		return int32(v)
	case int16:
		return int32(v)
	case int32:
		return v
	case int64:
		return int32(v)
	case float32:
		return int32(v)
	case float64:
		return int32(v)
	}
	return 0
}

func normFloat64(v interface{}) float64 {
	switch v := v.(type) {
	case int:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case float32:
		return float64(v)
	case float64:
		return v
	}
	return 0
}

func normString(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

func isNumber(v interface{}) bool {
	switch v.(type) {
	case int, uint, uint8, uint16, uint32, uint64,
		int8, int16, int32, int64, float32, float64:
		return true
	}
	return false
}

// keyword resolves a definition keyword for the type, or returns the zero
// value of the type.
func (t Type) keyword(s string) omni.Value {
	if def, ok := omni.LookupDefinition(definitionProperties[t], s); ok && def.Type() == omniTypes[t] {
		return def
	}
	return omni.NewValue(omniTypes[t])
}

// value converts v to an omni.Value of the type. Values that cannot be
// converted produce the zero value of the type.
func (t Type) value(v []interface{}) omni.Value {
	if len(v) == 1 {
		if ov, ok := v[0].(omni.Value); ok && ov.Type() == omniTypes[t] {
			return ov
		}
	}

	switch t {
	case String:
		if len(v) < 1 {
			break
		}
		return omni.ValueString(normString(v[0]))

	case Integer:
		if len(v) < 1 {
			break
		}
		return omni.ValueInteger(normInt32(v[0]))

	case Vector3:
		switch len(v) {
		case 1:
			if vec, ok := v[0].(omni.Vector3); ok {
				return omni.ValueVector3(vec)
			}
		case 3:
			return omni.ValueVector3{
				X: normFloat64(v[0]),
				Y: normFloat64(v[1]),
				Z: normFloat64(v[2]),
			}
		}

	case Duration:
		if len(v) < 1 {
			break
		}
		if isNumber(v[0]) {
			return omni.ValueDuration(normInt32(v[0]))
		}
		return t.keyword(normString(v[0]))

	case LoopingMethod, PaletteManagement, Transparency:
		if len(v) < 1 {
			break
		}
		return t.keyword(normString(v[0]))

	case Function:
		if len(v) < 1 {
			break
		}
		f := omni.ValueFunction{Name: normString(v[0])}
		for _, arg := range v[1:] {
			f.Args = append(f.Args, `"`+normString(arg)+`"`)
		}
		return f
	}

	return omni.NewValue(omniTypes[t])
}
