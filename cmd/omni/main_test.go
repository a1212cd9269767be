package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestCompileInclude(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.si"), []byte(
		"defineSettings Configuration {\n\tbufferSizeKB = 64;\n}\n",
	), 0o666))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.si"), []byte(
		"#include \"settings.si\"\ndefineEvent E {\n\tfileName = \"e\";\n}\n",
	), 0o666))

	opts := options{
		Input:   filepath.Join(dir, "main.si"),
		Output:  filepath.Join(dir, "out.si"),
		Compile: true,
		DumpAST: filepath.Join(dir, "ast.txt"),
	}
	require.NoError(t, run(opts, quietLogger()))

	out, err := os.ReadFile(opts.Output)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(out), "defineSettings Configuration {"), string(out))
	require.Contains(t, string(out), "defineEvent E {")

	ast, err := os.ReadFile(opts.DumpAST)
	require.NoError(t, err)
	require.Contains(t, string(ast), "Blocks: (count:1) {")
}

func TestRunMode(t *testing.T) {
	require.Error(t, run(options{Input: "-", Output: "-"}, quietLogger()))
}

func TestRunMissingInput(t *testing.T) {
	opts := options{Input: filepath.Join(t.TempDir(), "none.si"), Output: "-", Decompile: true}
	require.ErrorIs(t, run(opts, quietLogger()), os.ErrNotExist)
}
