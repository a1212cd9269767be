package omni_test

import (
	"reflect"
	"testing"

	"github.com/isle-tools/omni"
)

func TestType_String(t *testing.T) {
	if omni.TypeString.String() != "string" {
		t.Error("unexpected result from String")
	}

	if omni.Type(0).String() != "Invalid" {
		t.Error("unexpected result from String")
	}
}

func TestTypeFromString(t *testing.T) {
	if omni.TypeFromString("vector3") != omni.TypeVector3 {
		t.Error("unexpected result from TypeFromString")
	}

	if omni.TypeFromString("UnknownType") != omni.TypeInvalid {
		t.Error("unexpected result from TypeFromString")
	}
}

func TestNewValue(t *testing.T) {
	if _, ok := omni.NewValue(omni.TypeString).(omni.ValueString); !ok {
		t.Error("expected ValueString from NewValue")
	}

	if omni.NewValue(omni.TypeInvalid) != nil {
		t.Error("expected nil value from NewValue")
	}
}

var types = []omni.Type{
	omni.TypeString,
	omni.TypeInteger,
	omni.TypeVector3,
	omni.TypeLoopingMethod,
	omni.TypeDuration,
	omni.TypePaletteManagement,
	omni.TypeTransparency,
	omni.TypeFunction,
}

func TestValueType(t *testing.T) {
	for _, typ := range types {
		v := omni.NewValue(typ)
		if v == nil || v.Type() != typ {
			t.Error("unexpected value from NewValue")
		}
	}
}

func TestValueCopy(t *testing.T) {
	for _, typ := range types {
		v := omni.NewValue(typ)
		if !reflect.DeepEqual(v, v.Copy()) {
			t.Errorf("copy of value %q is not equal to original", v.Type().String())
		}
	}

	f := omni.ValueFunction{Name: "Open", Args: []string{`"a"`}}
	c := f.Copy().(omni.ValueFunction)
	c.Args[0] = `"b"`
	if f.Args[0] != `"a"` {
		t.Error("function copy shares arguments with original")
	}

	if c := (omni.ValueFunction{Name: "Close"}).Copy().(omni.ValueFunction); c.Args != nil {
		t.Error("copy of function without arguments has non-nil arguments")
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		value omni.Value
		want  string
	}{
		{omni.ValueString("HORN.WAV"), `"HORN.WAV"`},
		{omni.ValueString(""), `""`},
		{omni.ValueInteger(-42), "-42"},
		{omni.ValueVector3{X: 0, Y: 0, Z: 1}, "(0, 0, 1)"},
		{omni.ValueVector3{X: -1.5, Y: 0.1, Z: 1e21}, "(-1.5, 0.1, 1000000000000000000000)"},
		{omni.LoopingCache, "CACHE"},
		{omni.LoopingNone, "NONE"},
		{omni.LoopingStream, "STREAM"},
		{omni.DurationIndefinite, "INDEFINITE"},
		{omni.ValueDuration(500), "500"},
		{omni.PaletteNone, "NONE"},
		{omni.TransparencyYes, "YES"},
		{omni.TransparencyFast, "FAST"},
		{omni.ValueFunction{Name: "Open", Args: []string{`"a"`, `"b"`}}, `Open("a", "b")`},
		{omni.ValueFunction{Name: "Close"}, `Close()`},
	}
	for _, test := range tests {
		if got := test.value.String(); got != test.want {
			t.Errorf("%s: expected %s, got %s", test.value.Type(), test.want, got)
		}
	}
}

func TestLookupDefinition(t *testing.T) {
	tests := []struct {
		property, keyword string
		want              omni.Definition
	}{
		{"paletteManagement", "NONE", omni.PaletteNone},
		{"loopingMethod", "NONE", omni.LoopingNone},
		{"other", "NONE", omni.LoopingNone},
		{"duration", "INDEFINITE", omni.DurationIndefinite},
		{"transparency", "FAST", omni.TransparencyFast},
		{"loopingMethod", "STREAM", omni.LoopingStream},
	}
	for _, test := range tests {
		got, ok := omni.LookupDefinition(test.property, test.keyword)
		if !ok || got != test.want {
			t.Errorf("%s = %s: expected %#v, got %#v", test.property, test.keyword, test.want, got)
		}
	}
	if _, ok := omni.LookupDefinition("loopingMethod", "SOMETIMES"); ok {
		t.Error("expected unknown keyword to fail")
	}
}
