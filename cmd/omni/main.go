// The omni command converts between OMNI containers and scripts.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/isle-tools/omni"
	"github.com/isle-tools/omni/errors"
	"github.com/isle-tools/omni/riff"
	"github.com/isle-tools/omni/script"
	"github.com/sirupsen/logrus"
)

const usage = `usage: omni [-d | -c] [-i INPUT] [-o OUTPUT] [-dump-ast PATH] [-v]

With -d, reads a binary OMNI container (.si) from INPUT, and writes to OUTPUT
the decompiled script.

With -c, reads a script from INPUT, and writes to OUTPUT the parsed script in
normalized form. Include directives are resolved relative to the directory of
INPUT.

INPUT and OUTPUT are paths to files. If INPUT is "-" or unspecified, then stdin
is used. If OUTPUT is "-" or unspecified, then stdout is used. If -dump-ast is
given, a structural dump of the decoded container or parsed document is
written to PATH. Warnings and errors are written to stderr.

Flags:
`

type options struct {
	Input     string
	Output    string
	Decompile bool
	Compile   bool
	DumpAST   string
	Verbose   bool
}

func main() {
	var opts options
	flag.StringVar(&opts.Input, "i", "-", "Input file.")
	flag.StringVar(&opts.Output, "o", "-", "Output file.")
	flag.BoolVar(&opts.Decompile, "d", false, "Decompile a binary container to a script.")
	flag.BoolVar(&opts.Compile, "c", false, "Parse a script.")
	flag.StringVar(&opts.DumpAST, "dump-ast", "", "Write a structural dump to `PATH`.")
	flag.BoolVar(&opts.Verbose, "v", false, "Log debug traces.")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if opts.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if err := run(opts, logger); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("error: %w", err))
		os.Exit(1)
	}
}

func run(opts options, logger *logrus.Logger) error {
	if opts.Decompile == opts.Compile {
		flag.Usage()
		return errors.New("exactly one of -d or -c must be given")
	}

	var input io.Reader = os.Stdin
	if opts.Input != "-" {
		in, err := os.Open(opts.Input)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer in.Close()
		input = in
	}

	var output string
	var dump func(w io.Writer) error
	if opts.Decompile {
		c, warn, err := riff.Decoder{Logger: logger}.Decode(input)
		if warn != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("warning: %w", warn))
		}
		if err != nil {
			return err
		}
		dump = func(w io.Writer) error { return riff.Dump(w, c) }
		doc, err := riff.Codec{}.Lower(c)
		if err != nil {
			return err
		}
		output = doc.String()
	} else {
		src, err := io.ReadAll(input)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		doc, err := parser(opts.Input, logger).Parse(string(src))
		if err != nil {
			return err
		}
		if err := doc.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("warning: %w", err))
		}
		dump = func(w io.Writer) error { return omni.Dump(w, doc) }
		output = doc.String()
	}

	if opts.DumpAST != "" {
		if err := writeFile(opts.DumpAST, dump); err != nil {
			return fmt.Errorf("dump: %w", err)
		}
	}
	if opts.Output == "-" {
		_, err := io.WriteString(os.Stdout, output)
		return err
	}
	return writeFile(opts.Output, func(w io.Writer) error {
		_, err := io.WriteString(w, output)
		return err
	})
}

// parser returns a Parser that resolves includes relative to the directory
// of the input file.
func parser(input string, logger logrus.FieldLogger) script.Parser {
	p := script.Parser{Logger: logger}
	dir := "."
	if input != "-" {
		p.Filename = input
		dir = filepath.Dir(input)
	}
	p.Include = func(path string) (string, error) {
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		b, err := os.ReadFile(path)
		return string(b), err
	}
	return p
}

func writeFile(path string, write func(w io.Writer) error) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()
	if err := write(out); err != nil {
		return err
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync output: %w", err)
	}
	return nil
}
