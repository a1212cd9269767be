package riff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/anaminus/parse"
	"github.com/isle-tools/omni/errors"
	"github.com/sirupsen/logrus"
)

// Decoder decodes a stream of bytes into a Container.
type Decoder struct {
	// BufferSize is the size of the buffers the stream is divided into,
	// used until a header chunk declares another. If zero,
	// DefaultBufferSize is used.
	BufferSize int32

	// Logger receives debug traces of the decoding process. If nil, the
	// standard logrus logger is used.
	Logger logrus.FieldLogger
}

// Decode reads data from r and decodes it into a Container. Non-fatal
// observations about the data are returned as warn.
func (d Decoder) Decode(r io.Reader) (c *Container, warn, err error) {
	if r == nil {
		return nil, nil, errors.New("nil reader")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}

	bufSize := d.BufferSize
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}
	if bufSize < 0 {
		return nil, nil, ErrInvalidBufferSize
	}

	log := d.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	dec := &decoder{data: data, log: log}
	c, err = dec.decodeContainer(bufSize)
	return c, dec.warns.Return(), err
}

// decoder holds the state of a single decode pass. The buffer size is not
// part of the state; it is passed down to each read.
type decoder struct {
	data  []byte
	log   logrus.FieldLogger
	warns errors.Errors
}

// reader returns a BinaryReader over the data from pos to end, clipped to
// the length of the data.
func (d *decoder) reader(pos, end int64) *parse.BinaryReader {
	if n := int64(len(d.data)); end > n {
		end = n
	}
	if pos > end {
		pos = end
	}
	return parse.NewBinaryReader(bytes.NewReader(d.data[pos:end]))
}

// available returns the number of bytes of data from pos to end.
func (d *decoder) available(pos, end int64) int64 {
	if n := int64(len(d.data)); end > n {
		end = n
	}
	if pos > end {
		return 0
	}
	return end - pos
}

// decodeError returns the error of f as a DataError located relative to
// base. End-of-data errors are normalized to ErrUnexpectedEOF.
func decodeError(f *parse.BinaryReader, base int64) error {
	err := f.Err()
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = ErrUnexpectedEOF
	}
	return DataError{Offset: base + f.N(), Cause: err}
}

func errExpected(sig [4]byte) error {
	return fmt.Errorf("expected %q chunk", string(sig[:]))
}

func (d *decoder) decodeContainer(bufSize int32) (*Container, error) {
	if len(d.data) < chunkHeaderSize {
		return nil, ErrNoRiffChunk
	}
	var sig [4]byte
	copy(sig[:], d.data)
	if sig != sigRIFF {
		return nil, ErrNoRiffChunk
	}

	chunk, err := d.readChunk(0, bufSize)
	if err != nil {
		return nil, err
	}
	root := chunk.(*ChunkRIFF)
	if root.Type != typeOMNI && root.Type != typeMxSt {
		return nil, NotOmniError(root.Type)
	}
	if end := root.End(); end < int64(len(d.data)) {
		d.warns = d.warns.Append(DataError{
			Offset: end,
			Cause:  fmt.Errorf("%d trailing bytes after RIFF chunk", int64(len(d.data))-end),
		})
	}

	if len(root.Chunks) != 3 {
		return nil, ErrUnknownLayout
	}
	c := &Container{Root: root}
	var ok bool
	if c.Header, ok = root.Chunks[0].(*ChunkMxHd); !ok {
		return nil, ErrUnknownLayout
	}
	if c.Offsets, ok = root.Chunks[1].(*ChunkMxOf); !ok {
		return nil, ErrUnknownLayout
	}
	if c.Streams, ok = root.Chunks[2].(*ChunkList); !ok {
		return nil, ErrUnknownLayout
	}
	return c, nil
}

// readChunks reads a sequence of chunks from start to max. Chunk headers
// that would straddle a buffer boundary are skipped to the start of the next
// buffer. A header chunk changes the buffer size for the chunks that follow
// it.
func (d *decoder) readChunks(start, max int64, bufSize int32) ([]Chunk, error) {
	var chunks []Chunk
	pos := start
	for pos+chunkHeaderSize <= max {
		if pos+chunkHeaderSize > int64(len(d.data)) {
			d.log.WithFields(logrus.Fields{
				"offset":    pos,
				"remaining": int64(len(d.data)) - pos,
			}).Debug("end of data before end of chunk list")
			break
		}

		inBuffer := pos % int64(bufSize)
		if inBuffer+chunkHeaderSize > int64(bufSize) {
			skip := int64(bufSize) - inBuffer
			d.log.WithFields(logrus.Fields{
				"offset": pos,
				"skip":   skip,
			}).Debug("skipping buffer padding")
			pos += skip
			continue
		}

		chunk, err := d.readChunk(pos, bufSize)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
		pos = chunk.Header().End()

		if hd, ok := chunk.(*ChunkMxHd); ok {
			bufSize = hd.BufferSize
			d.log.WithField("bufferSize", bufSize).Debug("buffer size changed")
		}
	}
	return chunks, nil
}

// readChunk reads the chunk whose header is at pos.
func (d *decoder) readChunk(pos int64, bufSize int32) (Chunk, error) {
	fr := d.reader(pos, pos+chunkHeaderSize)
	var sig [4]byte
	var raw uint32
	if fr.Bytes(sig[:]) || fr.Number(&raw) {
		return nil, decodeError(fr, pos)
	}
	size, err := evenSize(raw)
	if err != nil {
		return nil, ChunkError{Offset: pos, Sig: sig, Cause: DataError{Offset: pos + 4, Cause: err}}
	}
	h := ChunkHeader{Offset: pos, Size: size}

	body := pos + chunkHeaderSize
	fr = d.reader(body, h.End())

	var chunk Chunk
	switch sig {
	case sigRIFF:
		c := &ChunkRIFF{ChunkHeader: h}
		if fr.Bytes(c.Type[:]) {
			break
		}
		children, err := d.readChunks(body+fr.N(), h.End(), bufSize)
		if err != nil {
			return nil, err
		}
		c.Chunks = children
		return c, nil

	case sigLIST:
		return d.readList(pos, bufSize)

	case sigMxHd:
		c := &ChunkMxHd{ChunkHeader: h}
		if fr.Number(&c.VersionHi) ||
			fr.Number(&c.VersionLo) ||
			fr.Number(&c.BufferSize) ||
			fr.Number(&c.BufferCount) {
			break
		}
		if c.BufferSize <= 0 {
			return nil, ChunkError{Offset: pos, Sig: sig, Cause: ErrInvalidBufferSize}
		}
		chunk = c

	case sigMxOf:
		c := &ChunkMxOf{ChunkHeader: h}
		if fr.Number(&c.Count) {
			break
		}
		if h.Size >= 4 {
			n := int64(h.Size-4) / 4
			if avail := d.available(body+4, h.End()); n > avail/4 {
				return nil, ChunkError{Offset: pos, Sig: sig, Cause: DataError{Offset: body + 4 + avail, Cause: ErrUnexpectedEOF}}
			}
			c.Offsets = make([]uint32, n)
			for i := range c.Offsets {
				if fr.Number(&c.Offsets[i]) {
					break
				}
			}
		}
		if int(c.Count) != len(c.Offsets) {
			d.warns = d.warns.Append(ChunkError{
				Offset: pos,
				Sig:    sig,
				Cause:  fmt.Errorf("declared %d offsets, found %d", c.Count, len(c.Offsets)),
			})
		}
		chunk = c

	case sigMxCh:
		c := &ChunkMxCh{ChunkHeader: h}
		var flags uint16
		if fr.Number(&flags) ||
			fr.Number(&c.Object) ||
			fr.Number(&c.Time) ||
			fr.Number(&c.DataSize) {
			break
		}
		c.Flags = DataFlags(flags)
		c.Data, _ = fr.All()
		chunk = c

	case sigMxOb:
		c := &ChunkMxOb{ChunkHeader: h}
		obj, failed := d.readObject(fr, body, bufSize)
		if failed {
			break
		}
		c.Object = obj
		chunk = c

	case sigMxSt:
		return d.readStream(h, bufSize)

	case sigPad:
		c := &ChunkPad{ChunkHeader: h}
		if avail := d.available(body, h.End()); int64(h.Size) > avail {
			return nil, ChunkError{Offset: pos, Sig: sig, Cause: DataError{Offset: body + avail, Cause: ErrUnexpectedEOF}}
		}
		c.Data = make([]byte, h.Size)
		if fr.Bytes(c.Data) {
			break
		}
		chunk = c

	default:
		return nil, ChunkError{Offset: pos, Sig: sig, Cause: ErrUnknownChunkSig}
	}

	if err := decodeError(fr, body); err != nil {
		return nil, ChunkError{Offset: pos, Sig: sig, Cause: err}
	}
	if n := fr.N(); n < int64(h.Size) {
		d.log.WithFields(logrus.Fields{
			"offset":   pos,
			"chunk":    sigString(sig),
			"consumed": n,
			"size":     h.Size,
		}).Debug("seeking to end of chunk")
	}
	return chunk, nil
}

// readList reads the LIST chunk whose header is at pos.
func (d *decoder) readList(pos int64, bufSize int32) (*ChunkList, error) {
	fr := d.reader(pos, pos+chunkHeaderSize)
	var sig [4]byte
	var raw uint32
	if fr.Bytes(sig[:]) || fr.Number(&raw) {
		return nil, decodeError(fr, pos)
	}
	if sig != sigLIST {
		return nil, ChunkError{Offset: pos, Sig: sig, Cause: errExpected(sigLIST)}
	}
	size, err := evenSize(raw)
	if err != nil {
		return nil, ChunkError{Offset: pos, Sig: sig, Cause: DataError{Offset: pos + 4, Cause: err}}
	}
	c := &ChunkList{ChunkHeader: ChunkHeader{Offset: pos, Size: size}}

	body := pos + chunkHeaderSize
	fr = d.reader(body, c.End())
	if fr.Bytes(c.Type[:]) {
		return nil, ChunkError{Offset: pos, Sig: sig, Cause: decodeError(fr, body)}
	}
	if c.Type == sigMxCh {
		if err := readSelection(fr, c, d.available(body, c.End()), body); err != nil {
			return nil, ChunkError{Offset: pos, Sig: sig, Cause: err}
		}
	}

	children, err := d.readChunks(body+fr.N(), c.End(), bufSize)
	if err != nil {
		return nil, err
	}
	c.Chunks = children
	return c, nil
}

// readSelection reads the selection header of a child list. size is the
// number of bytes readable by fr, which begins at base.
func readSelection(fr *parse.BinaryReader, c *ChunkList, size, base int64) error {
	sel := &ListSelection{}
	var tag [4]byte
	if fr.Bytes(tag[:]) {
		return decodeError(fr, base)
	}
	switch tag {
	case listAct:
		sel.Tag = tag
		if fr.Number(&sel.Count) {
			return decodeError(fr, base)
		}
		if int64(sel.Count) > (size-fr.N())/2 {
			return DataError{Offset: base + fr.N(), Cause: ErrUnexpectedEOF}
		}
		sel.Values = make([]uint16, sel.Count)
		for i := range sel.Values {
			if fr.Number(&sel.Values[i]) {
				return decodeError(fr, base)
			}
		}
	case listRAND:
		sel.Tag = tag
		if fr.Number(&sel.Rand[0]) || fr.Number(&sel.Rand[1]) {
			return decodeError(fr, base)
		}
	default:
		sel.Count = binary.LittleEndian.Uint32(tag[:])
	}
	c.Selection = sel
	return nil
}

// readStream reads the object and data list of an MxSt chunk. The two
// children are read in sequence without buffer alignment.
func (d *decoder) readStream(h ChunkHeader, bufSize int32) (*ChunkMxSt, error) {
	c := &ChunkMxSt{ChunkHeader: h}
	pos := h.Offset + chunkHeaderSize

	if sig := d.sigAt(pos); sig != sigMxOb {
		return nil, ChunkError{Offset: pos, Sig: sig, Cause: errExpected(sigMxOb)}
	}
	chunk, err := d.readChunk(pos, bufSize)
	if err != nil {
		return nil, ChunkError{Offset: h.Offset, Sig: sigMxSt, Cause: err}
	}
	c.Object = chunk.(*ChunkMxOb)

	pos = c.Object.End()
	if sig := d.sigAt(pos); sig != sigLIST {
		return nil, ChunkError{Offset: pos, Sig: sig, Cause: errExpected(sigLIST)}
	}
	c.List, err = d.readList(pos, bufSize)
	if err != nil {
		return nil, ChunkError{Offset: h.Offset, Sig: sigMxSt, Cause: err}
	}
	return c, nil
}

// sigAt returns the four bytes at pos, or zero if the data is too short.
func (d *decoder) sigAt(pos int64) (sig [4]byte) {
	if pos >= 0 && pos+4 <= int64(len(d.data)) {
		copy(sig[:], d.data[pos:])
	}
	return sig
}
