package riff

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/isle-tools/omni/errors"
	"golang.org/x/crypto/blake2b"
)

// Dump writes to w a readable representation of the container: the chunk
// tree, the offset table, and the object tree. The format is meant for
// inspection and is not stable.
func Dump(w io.Writer, c *Container) error {
	if w == nil {
		return errors.New("nil writer")
	}
	if c == nil {
		return errors.New("nil container")
	}

	bw := bufio.NewWriter(w)
	bw.WriteString("Type: ")
	dumpSig(bw, c.Type())
	bw.WriteString("\nChunks: {")
	dumpChunk(bw, 1, 0, c.Root)
	bw.WriteString("\n}")

	bw.WriteString("\nOffsets: ")
	if c.Offsets != nil {
		fmt.Fprintf(bw, "(count:%d) {", len(c.Offsets.Offsets))
		for id, off := range c.Offsets.Offsets {
			if off == 0 {
				continue
			}
			dumpNewline(bw, 1)
			fmt.Fprintf(bw, "%d: %d", id, off)
		}
		bw.WriteString("\n}")
	}

	bw.WriteString("\nObjects: {")
	dumpObjectTree(bw, 1, c.Streams.Chunks)
	bw.WriteString("\n}\n")

	return bw.Flush()
}

// DumpFrom decodes a container from r and dumps it to w. If decoding fails,
// nothing is written.
func (d Decoder) DumpFrom(w io.Writer, r io.Reader) (warn, err error) {
	c, warn, err := d.Decode(r)
	if err != nil {
		return warn, err
	}
	return warn, Dump(w, c)
}

func dumpChunk(w *bufio.Writer, indent, i int, chunk Chunk) {
	h := chunk.Header()
	dumpNewline(w, indent)
	if i >= 0 {
		fmt.Fprintf(w, "#%d: ", i)
	}
	dumpSig(w, chunk.Signature())
	fmt.Fprintf(w, " @%d (size:%d) {", h.Offset, h.Size)
	switch chunk := chunk.(type) {
	case *ChunkRIFF:
		dumpNewline(w, indent+1)
		w.WriteString("Type: ")
		dumpSig(w, chunk.Type)
		dumpChunks(w, indent+1, chunk.Chunks)
	case *ChunkList:
		dumpNewline(w, indent+1)
		w.WriteString("Type: ")
		dumpSig(w, chunk.Type)
		if sel := chunk.Selection; sel != nil {
			dumpNewline(w, indent+1)
			switch sel.Tag {
			case listAct:
				fmt.Fprintf(w, "Selection: Act (count:%d) %v", sel.Count, sel.Values)
			case listRAND:
				fmt.Fprintf(w, "Selection: RAND %d %d", sel.Rand[0], sel.Rand[1])
			default:
				fmt.Fprintf(w, "Selection: (count:%d)", sel.Count)
			}
		}
		dumpChunks(w, indent+1, chunk.Chunks)
	case *ChunkMxHd:
		dumpNewline(w, indent+1)
		fmt.Fprintf(w, "Version: v%d.%d", chunk.VersionHi, chunk.VersionLo)
		dumpNewline(w, indent+1)
		fmt.Fprintf(w, "BufferSize: %d", chunk.BufferSize)
		if chunk.BufferSize > 0 {
			fmt.Fprintf(w, " (%s)", humanize.IBytes(uint64(chunk.BufferSize)))
		}
		dumpNewline(w, indent+1)
		fmt.Fprintf(w, "BufferCount: %d", chunk.BufferCount)
	case *ChunkMxOf:
		dumpNewline(w, indent+1)
		fmt.Fprintf(w, "Count: %d", chunk.Count)
		dumpNewline(w, indent+1)
		fmt.Fprintf(w, "Offsets: (count:%d)", len(chunk.Offsets))
	case *ChunkMxCh:
		dumpNewline(w, indent+1)
		fmt.Fprintf(w, "Flags: 0x%04X", uint16(chunk.Flags))
		if chunk.Flags.End() {
			w.WriteString(" (end)")
		}
		if chunk.Flags.Split() {
			w.WriteString(" (split)")
		}
		dumpNewline(w, indent+1)
		fmt.Fprintf(w, "Object: %d", chunk.Object)
		dumpNewline(w, indent+1)
		fmt.Fprintf(w, "Time: %d", chunk.Time)
		dumpNewline(w, indent+1)
		fmt.Fprintf(w, "DataSize: %d", chunk.DataSize)
		dumpNewline(w, indent+1)
		fmt.Fprintf(w, "Data: (len:%d) ", len(chunk.Data))
		dumpDigest(w, chunk.Data)
	case *ChunkMxOb:
		dumpObject(w, indent+1, chunk.Object)
	case *ChunkMxSt:
		dumpNewline(w, indent+1)
		w.WriteString("Object:")
		dumpChunk(w, indent+2, -1, chunk.Object)
		dumpNewline(w, indent+1)
		w.WriteString("List:")
		dumpChunk(w, indent+2, -1, chunk.List)
	case *ChunkPad:
		dumpNewline(w, indent+1)
		fmt.Fprintf(w, "Data: (len:%d)", len(chunk.Data))
	}
	dumpNewline(w, indent)
	w.WriteByte('}')
}

func dumpChunks(w *bufio.Writer, indent int, chunks []Chunk) {
	dumpNewline(w, indent)
	fmt.Fprintf(w, "Chunks: (count:%d) {", len(chunks))
	for i, chunk := range chunks {
		dumpChunk(w, indent+1, i, chunk)
	}
	dumpNewline(w, indent)
	w.WriteByte('}')
}

func dumpObject(w *bufio.Writer, indent int, obj Object) {
	base := obj.Base()
	dumpNewline(w, indent)
	fmt.Fprintf(w, "Kind: %d (%s)", uint16(obj.Kind()), obj.Kind())
	dumpNewline(w, indent)
	w.WriteString("Presenter: ")
	dumpString(w, indent, base.Presenter)
	dumpNewline(w, indent)
	w.WriteString("Name: ")
	dumpString(w, indent, base.Name)
	dumpNewline(w, indent)
	fmt.Fprintf(w, "ID: %d", base.ID)
	dumpNewline(w, indent)
	fmt.Fprintf(w, "Flags: 0x%08X", uint32(base.Flags))
	dumpNewline(w, indent)
	fmt.Fprintf(w, "StartTime: %d", base.StartTime)
	dumpNewline(w, indent)
	fmt.Fprintf(w, "Duration: %d", base.Duration)
	dumpNewline(w, indent)
	fmt.Fprintf(w, "Loops: %d", base.Loops)
	dumpNewline(w, indent)
	fmt.Fprintf(w, "Location: %s", base.Location)
	dumpNewline(w, indent)
	fmt.Fprintf(w, "Direction: %s", base.Direction)
	dumpNewline(w, indent)
	fmt.Fprintf(w, "Up: %s", base.Up)
	if base.Extra != nil {
		dumpNewline(w, indent)
		w.WriteString("Extra: ")
		dumpString(w, indent, *base.Extra)
	}

	var media *MediaFile
	switch obj := obj.(type) {
	case *Video:
		media = &obj.MediaFile
		defer dumpFields(w, indent, "FormatFlags", uint32(obj.FormatFlags), "Unknown6", obj.Unknown6)
	case *Sound:
		media = &obj.MediaFile
		defer dumpFields(w, indent, "Unknown5", obj.Unknown5, "Unknown6", obj.Unknown6, "Volume", obj.Volume)
	case *Event:
		media = &obj.MediaFile
		defer dumpFields(w, indent, "Unknown5", obj.Unknown5, "Unknown6", obj.Unknown6)
	case *Bitmap:
		media = &obj.MediaFile
		defer dumpFields(w, indent, "FormatFlags", uint32(obj.FormatFlags), "Unknown6", obj.Unknown6)
	case *Object3D:
		media = &obj.MediaFile
		defer dumpFields(w, indent, "Unknown5", obj.Unknown5, "Unknown6", obj.Unknown6)
	case *World:
		dumpNewline(w, indent)
		w.WriteString("List:")
		dumpChunk(w, indent+1, -1, obj.List)
	case *Presenter:
		dumpNewline(w, indent)
		w.WriteString("List:")
		dumpChunk(w, indent+1, -1, obj.List)
	}
	if media != nil {
		dumpNewline(w, indent)
		w.WriteString("Filename: ")
		dumpString(w, indent, media.Filename)
		dumpNewline(w, indent)
		w.WriteString("Format: ")
		dumpSig(w, media.Format)
	}
}

// dumpFields writes pairs of field names and values.
func dumpFields(w *bufio.Writer, indent int, pairs ...interface{}) {
	for i := 0; i+1 < len(pairs); i += 2 {
		dumpNewline(w, indent)
		fmt.Fprintf(w, "%s: %v", pairs[i], pairs[i+1])
	}
}

// dumpObjectTree writes an outline of the objects in chunks, nested by
// ownership.
func dumpObjectTree(w *bufio.Writer, indent int, chunks []Chunk) {
	for _, obj := range chunkObjects(chunks) {
		base := obj.Base()
		dumpNewline(w, indent)
		fmt.Fprintf(w, "%s #%d ", obj.Kind(), base.ID)
		w.WriteString(strconv.Quote(base.Name))
		switch obj := obj.(type) {
		case *World:
			if obj.List != nil {
				dumpObjectTree(w, indent+1, obj.List.Chunks)
			}
		case *Presenter:
			if obj.List != nil {
				dumpObjectTree(w, indent+1, obj.List.Chunks)
			}
		}
	}
}

func dumpNewline(w *bufio.Writer, indent int) {
	w.WriteByte('\n')
	for i := 0; i < indent; i++ {
		w.WriteByte('\t')
	}
}

func dumpSig(w *bufio.Writer, sig [4]byte) {
	w.WriteString(sigString(sig))
	fmt.Fprintf(w, " (% 02X)", sig)
}

func dumpString(w *bufio.Writer, indent int, s string) {
	for _, r := range s {
		if !unicode.IsGraphic(r) {
			dumpBytes(w, indent, []byte(s))
			return
		}
	}
	fmt.Fprintf(w, "(len:%d) ", len(s))
	w.WriteString(strconv.Quote(s))
}

// dumpDigest writes a short fingerprint of a data payload.
func dumpDigest(w *bufio.Writer, b []byte) {
	sum := blake2b.Sum256(b)
	w.WriteString("blake2b:")
	w.WriteString(hex.EncodeToString(sum[:8]))
}

func dumpBytes(w *bufio.Writer, indent int, b []byte) {
	fmt.Fprintf(w, "(len:%d)", len(b))
	const width = 16
	for j := 0; j < len(b); j += width {
		dumpNewline(w, indent+1)
		w.WriteString("| ")
		for i := j; i < j+width; {
			if i < len(b) {
				w.WriteString(hex.EncodeToString(b[i : i+1]))
			} else if len(b) < width {
				break
			} else {
				w.WriteString("  ")
			}
			i++
			if i%8 == 0 && i < j+width {
				w.WriteString("  ")
			} else {
				w.WriteString(" ")
			}
		}
		w.WriteString("|")
		n := len(b)
		if j+width < n {
			n = j + width
		}
		for i := j; i < n; i++ {
			if 32 <= b[i] && b[i] <= 126 {
				w.WriteByte(b[i])
			} else {
				w.WriteByte('.')
			}
		}
		w.WriteByte('|')
	}
}
