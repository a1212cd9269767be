// Package riff implements a decoder for the OMNI binary container format, a
// variant of RIFF used by interleaved multimedia presentations.
//
// A container is decoded with Decoder.Decode, which produces a Container
// holding the raw chunk tree and the decoded objects. A Codec lowers a
// Container to an omni.Document, which can be rendered as a script. The
// Decompile function performs both steps.
package riff

import (
	"bytes"
	"math"

	"github.com/anaminus/parse"
	"golang.org/x/text/encoding/charmap"
)

// Chunk signatures.
var (
	sigRIFF = [4]byte{'R', 'I', 'F', 'F'}
	sigLIST = [4]byte{'L', 'I', 'S', 'T'}
	sigMxHd = [4]byte{'M', 'x', 'H', 'd'}
	sigMxOf = [4]byte{'M', 'x', 'O', 'f'}
	sigMxCh = [4]byte{'M', 'x', 'C', 'h'}
	sigMxOb = [4]byte{'M', 'x', 'O', 'b'}
	sigMxSt = [4]byte{'M', 'x', 'S', 't'}
	sigPad  = [4]byte{'p', 'a', 'd', ' '}
)

// RIFF types accepted for the top-level chunk.
var (
	typeOMNI = [4]byte{'O', 'M', 'N', 'I'}
	typeMxSt = sigMxSt
)

// Selection headers of MxCh lists.
var (
	listAct  = [4]byte{'A', 'c', 't', 0}
	listRAND = [4]byte{'R', 'A', 'N', 'D'}
)

// Sub-format tags of file-backed objects.
var (
	formatFLC = [4]byte{' ', 'F', 'L', 'C'}
	formatSMK = [4]byte{' ', 'S', 'M', 'K'}
	formatWAV = [4]byte{' ', 'W', 'A', 'V'}
	formatEVT = [4]byte{' ', 'E', 'V', 'T'}
	formatSTL = [4]byte{' ', 'S', 'T', 'L'}
	formatOBJ = [4]byte{' ', 'O', 'B', 'J'}
)

const (
	// chunkHeaderSize is the size of a chunk signature and length.
	chunkHeaderSize = 8

	// DefaultBufferSize is the buffer size used before a header chunk
	// declares one.
	DefaultBufferSize = 0x10000
)

// evenSize rounds a stored chunk length up to the word-aligned length of the
// chunk. The largest stored length has no aligned length and fails with
// ErrUnexpectedEOF.
func evenSize(raw uint32) (uint32, error) {
	if raw == math.MaxUint32 {
		return 0, ErrUnexpectedEOF
	}
	return (raw + 1) &^ 1, nil
}

var stringDecoder = charmap.Windows1252.NewDecoder()

// decodeString converts a Windows-1252 byte string to UTF-8.
func decodeString(b []byte) string {
	s, err := stringDecoder.Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// readNullString reads a NUL-terminated string.
func readNullString(f *parse.BinaryReader, data *string) (failed bool) {
	if f.Err() != nil {
		return true
	}

	var s []byte
	for {
		var c byte
		if f.Number(&c) {
			return true
		}
		if c == 0 {
			break
		}
		s = append(s, c)
	}

	*data = decodeString(s)

	return false
}

// nullString returns the string stored in b up to the first NUL byte.
func nullString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return decodeString(b)
}
