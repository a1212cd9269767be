package omni_test

import (
	"bytes"
	"testing"

	"github.com/isle-tools/omni"
	"github.com/isle-tools/omni/errors"
	"github.com/stretchr/testify/require"
)

func TestBlockString(t *testing.T) {
	b := omni.NewBlock(omni.DefineSound, "Horn", 2, true)
	b.Assign("fileName", omni.ValueString("HORN.WAV"))
	b.Assign("location", omni.ValueVector3{X: 1, Y: 2.5, Z: -3})
	b.Declare("Child")

	require.Equal(t, "defineSound Horn Weave {\n"+
		"\tfileName = \"HORN.WAV\";\n"+
		"\tlocation = (1, 2.5, -3);\n"+
		"\tChild;\n"+
		"}\n\n", b.String())

	empty := omni.NewBlock(omni.ParallelAction, "Empty", 0, false)
	require.Equal(t, "parallelAction Empty {\n}\n\n", empty.String())
}

func TestBlockGet(t *testing.T) {
	b := omni.NewBlock(omni.DefineAnim, "A", 1, false)
	b.Assign("duration", omni.ValueDuration(10))
	b.Declare("duration")
	b.Assign("duration", omni.DurationIndefinite)

	require.Equal(t, omni.DurationIndefinite, b.Get("duration"))
	require.Nil(t, b.Get("missing"))
	require.Equal(t, []string{"duration"}, b.Declarations())
}

func TestBlockCopy(t *testing.T) {
	b := omni.NewBlock(omni.DefineObject, "O", 3, true)
	b.Assign("fileName", omni.ValueString("a.x"))
	c := b.Copy()
	c.Statements[0] = omni.Assignment{Name: "fileName", Value: omni.ValueString("b.x")}
	require.Equal(t, omni.ValueString("a.x"), b.Get("fileName"))
}

func TestBlockTypeKeywords(t *testing.T) {
	keywords := omni.BlockTypeKeywords()
	require.Len(t, keywords, 8)
	for _, k := range keywords {
		require.NotEqual(t, omni.BlockInvalid, omni.BlockTypeFromString(k), k)
	}
	require.Equal(t, omni.BlockInvalid, omni.BlockTypeFromString("defineWorld"))
}

func TestDocumentString(t *testing.T) {
	settings := omni.NewBlock(omni.DefineSettings, "Configuration", 0, false)
	settings.Assign("bufferSizeKB", omni.ValueInteger(10))
	child := omni.NewBlock(omni.DefineStill, "Still", 4, false)
	parent := omni.NewBlock(omni.ParallelAction, "Group", 5, true)
	parent.Declare("Still")

	doc := &omni.Document{Settings: settings, Blocks: []*omni.Block{child, parent}}
	want := settings.String() + child.String() + parent.String()
	require.Equal(t, want, doc.String())

	var buf bytes.Buffer
	n, err := doc.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(len(want)), n)
	require.Equal(t, want, buf.String())

	require.Same(t, parent, doc.Find("Group"))
	require.Same(t, settings, doc.Find("Configuration"))
	require.Nil(t, doc.Find("Nothing"))
}

func TestDocumentValidate(t *testing.T) {
	doc := &omni.Document{
		Settings: omni.NewBlock(omni.DefineSettings, "Configuration", 0, false),
		Blocks: []*omni.Block{
			omni.NewBlock(omni.DefineSound, "HornSound", 1, false),
			{Type: omni.ParallelAction, Name: "Group", ID: 2, Weave: true, Statements: []omni.Statement{
				omni.Declaration{Name: "HornSound"},
				omni.Declaration{Name: "HornSond"},
				omni.Declaration{Name: "Zzzzzzzz"},
			}},
		},
	}

	err := doc.Validate()
	require.Error(t, err)
	errs, ok := err.(errors.Errors)
	require.True(t, ok)
	require.Len(t, errs, 2)

	var unresolved omni.UnresolvedDeclarationError
	require.True(t, errors.As(errs[0], &unresolved))
	require.Equal(t, "HornSond", unresolved.Name)
	require.Equal(t, "HornSound", unresolved.Suggestion)
	require.Contains(t, unresolved.Error(), "did you mean")

	require.True(t, errors.As(errs[1], &unresolved))
	require.Equal(t, "", unresolved.Suggestion)

	doc.Blocks[1].Statements = doc.Blocks[1].Statements[:1]
	require.NoError(t, doc.Validate())
}

func TestClosestMatch(t *testing.T) {
	candidates := []string{"define", "include"}
	require.Equal(t, "define", omni.ClosestMatch("def", candidates))
	require.Equal(t, "include", omni.ClosestMatch("inclde", candidates))
	require.Equal(t, "define", omni.ClosestMatch("defien", candidates))
	require.Equal(t, "", omni.ClosestMatch("pragma", candidates))
	require.Equal(t, "", omni.ClosestMatch("x", nil))
}
