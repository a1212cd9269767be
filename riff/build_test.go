package riff

import (
	"bytes"

	"github.com/anaminus/parse"
	"github.com/isle-tools/omni"
)

// le encodes each value in little-endian order. Strings and byte slices are
// written as-is.
func le(vs ...interface{}) []byte {
	var buf bytes.Buffer
	fw := parse.NewBinaryWriter(&buf)
	for _, v := range vs {
		switch v := v.(type) {
		case string:
			fw.Bytes([]byte(v))
		case []byte:
			fw.Bytes(v)
		case [4]byte:
			fw.Bytes(v[:])
		default:
			fw.Number(v)
		}
	}
	if _, err := fw.End(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// chunk builds a chunk from a signature and a payload. The stored length is
// the unpadded length; odd payloads are followed by a padding byte.
func chunk(sig string, payload ...[]byte) []byte {
	body := bytes.Join(payload, nil)
	b := le(sig, uint32(len(body)), body)
	if len(body)%2 != 0 {
		b = append(b, 0)
	}
	return b
}

func riffChunk(typ string, children ...[]byte) []byte {
	return chunk("RIFF", append([][]byte{[]byte(typ)}, children...)...)
}

func listChunk(typ string, children ...[]byte) []byte {
	return chunk("LIST", append([][]byte{[]byte(typ)}, children...)...)
}

func headerChunk(bufSize, count int32) []byte {
	return chunk("MxHd", le(uint16(2), uint16(2), bufSize, count))
}

func offsetsChunk(offsets ...uint32) []byte {
	b := le(uint32(len(offsets)))
	for _, off := range offsets {
		b = append(b, le(off)...)
	}
	return chunk("MxOf", b)
}

func padChunk(n int) []byte {
	return chunk("pad ", make([]byte, n))
}

// straddle returns a pad chunk to be placed at pos, followed by filler bytes
// that end at a buffer boundary. The header of a chunk placed after the pad
// would straddle the boundary, so the decoder skips the filler.
func straddle(pos, bufSize int) []byte {
	n := ((bufSize - 4) - (pos+8)%bufSize + bufSize) % bufSize
	return append(padChunk(n), "JUNK"...)
}

// container builds a complete container with the given streams.
func container(bufSize, count int32, offsets []uint32, streams ...[]byte) []byte {
	return riffChunk("OMNI",
		headerChunk(bufSize, count),
		offsetsChunk(offsets...),
		listChunk("MxSt", streams...),
	)
}

// testObject describes an object to encode.
type testObject struct {
	kind      ObjectKind
	presenter string
	name      string
	id        uint32
	flags     ObjectFlags
	start     int32
	duration  int32
	loops     int32
	location  omni.Vector3
	direction omni.Vector3
	up        omni.Vector3
	extra     string

	filename string
	format   string
	trailing []byte

	// list is the owned list of a World or Presenter.
	list []byte
}

// newTestObject returns an object whose fields all have their implicit
// values.
func newTestObject(kind ObjectKind, name string, id uint32) testObject {
	return testObject{
		kind:      kind,
		name:      name,
		id:        id,
		loops:     1,
		direction: omni.VectorZ,
		up:        omni.VectorY,
	}
}

func newSound(name string, id uint32, filename string) testObject {
	o := newTestObject(KindSound, name, id)
	o.filename = filename
	o.format = " WAV"
	o.trailing = le(uint32(0), uint32(0), int32(defaultVolume))
	return o
}

func newBitmap(name string, id uint32, filename string, formatFlags FormatFlags) testObject {
	o := newTestObject(KindBitmap, name, id)
	o.filename = filename
	o.format = " STL"
	o.trailing = le(uint32(formatFlags), uint32(0))
	return o
}

func vector(v omni.Vector3) []byte {
	return le(v.X, v.Y, v.Z)
}

func (o testObject) bytes() []byte {
	b := le(
		uint16(o.kind),
		o.presenter+"\x00",
		uint32(0),
		o.name+"\x00",
		o.id,
		uint32(o.flags),
		o.start,
		o.duration,
		o.loops,
		vector(o.location),
		vector(o.direction),
		vector(o.up),
	)
	if o.extra == "" {
		b = append(b, le(uint16(0))...)
	} else {
		b = append(b, le(uint16(len(o.extra)+1), o.extra+"\x00")...)
	}
	if o.format != "" {
		b = append(b, le(o.filename+"\x00", uint32(0), uint32(0), uint32(0), o.format)...)
		b = append(b, o.trailing...)
	}
	return append(b, o.list...)
}

func mxob(o testObject) []byte {
	return chunk("MxOb", o.bytes())
}

// stream builds an MxSt chunk containing the object and its data chunks.
func stream(o testObject, data ...[]byte) []byte {
	return chunk("MxSt", mxob(o), listChunk("MxDa", data...))
}

func dataChunk(flags DataFlags, object, time uint32, data []byte) []byte {
	return chunk("MxCh", le(uint16(flags), object, time, uint32(len(data)), data))
}
