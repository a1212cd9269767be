package omni

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/isle-tools/omni/errors"
)

// Dump writes to w a structural representation of the document, showing the
// type of each value along with the block identifiers and weave markers. The
// format is meant for inspection and is not stable.
func Dump(w io.Writer, d *Document) error {
	if w == nil {
		return errors.New("nil writer")
	}
	if d == nil {
		return errors.New("nil document")
	}
	bw := bufio.NewWriter(w)
	bw.WriteString("Settings: ")
	if d.Settings == nil {
		bw.WriteString("(none)")
	} else {
		dumpBlock(bw, 0, d.Settings)
	}
	fmt.Fprintf(bw, "\nBlocks: (count:%d) {", len(d.Blocks))
	for i, b := range d.Blocks {
		dumpNewline(bw, 1)
		fmt.Fprintf(bw, "#%d: ", i)
		dumpBlock(bw, 1, b)
	}
	bw.WriteString("\n}\n")
	return bw.Flush()
}

func dumpBlock(w *bufio.Writer, indent int, b *Block) {
	fmt.Fprintf(w, "%s %s (id:%d", b.Type, strconv.Quote(b.Name), b.ID)
	if b.Weave {
		w.WriteString(" weave")
	}
	w.WriteString(") {")
	for _, stmt := range b.Statements {
		dumpNewline(w, indent+1)
		switch stmt := stmt.(type) {
		case Assignment:
			if stmt.Value == nil {
				fmt.Fprintf(w, "%s: <nil>", stmt.Name)
				continue
			}
			fmt.Fprintf(w, "%s: %s %s", stmt.Name, stmt.Value.Type(), stmt.Value)
		case Declaration:
			fmt.Fprintf(w, "declare %s", stmt.Name)
		}
	}
	dumpNewline(w, indent)
	w.WriteByte('}')
}

func dumpNewline(w *bufio.Writer, indent int) {
	w.WriteByte('\n')
	for i := 0; i < indent; i++ {
		w.WriteByte('\t')
	}
}
