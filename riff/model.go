package riff

import (
	"unicode"
)

// Chunk is a node of the decoded chunk tree.
type Chunk interface {
	// Signature returns the signature used to identify the chunk's type.
	Signature() [4]byte

	// Header returns the location and length of the chunk.
	Header() ChunkHeader
}

// ChunkHeader locates a chunk within the decoded data.
type ChunkHeader struct {
	// Offset is the absolute offset of the chunk signature.
	Offset int64

	// Size is the length of the chunk payload, rounded up to an even number.
	Size uint32
}

func (h ChunkHeader) Header() ChunkHeader {
	return h
}

// End returns the absolute offset of the byte following the chunk.
func (h ChunkHeader) End() int64 {
	return h.Offset + chunkHeaderSize + int64(h.Size)
}

// sigString returns a chunk signature as a printable string.
func sigString(sig [4]byte) string {
	b := make([]byte, 4)
	for i, c := range sig {
		if unicode.IsPrint(rune(c)) {
			b[i] = c
		} else {
			b[i] = '.'
		}
	}
	return string(b)
}

////////////////////////////////////////////////////////////////

// ChunkRIFF is the outer container of the format.
type ChunkRIFF struct {
	ChunkHeader

	// Type is the contained-type tag, either OMNI or MxSt.
	Type [4]byte

	Chunks []Chunk
}

func (ChunkRIFF) Signature() [4]byte {
	return sigRIFF
}

// ListSelection is the header carried by lists of data chunks.
type ListSelection struct {
	// Tag is "Act\x00" or "RAND". It is zero when the selection is a bare
	// count.
	Tag [4]byte

	// Count is the number of entries. For Act selections, it is the number
	// of Values.
	Count uint32

	// Values is the list of an Act selection.
	Values []uint16

	// Rand contains the two words of a RAND selection.
	Rand [2]uint32
}

// ChunkList is a list of child chunks.
type ChunkList struct {
	ChunkHeader

	// Type is the list type tag.
	Type [4]byte

	// Selection is non-nil for lists of type MxCh.
	Selection *ListSelection

	Chunks []Chunk
}

func (ChunkList) Signature() [4]byte {
	return sigLIST
}

// ChunkMxHd is the container header.
type ChunkMxHd struct {
	ChunkHeader

	VersionHi uint16
	VersionLo uint16

	// BufferSize is the size of each buffer the stream is divided into.
	BufferSize int32

	BufferCount int32
}

func (ChunkMxHd) Signature() [4]byte {
	return sigMxHd
}

// ChunkMxOf is the offset table.
type ChunkMxOf struct {
	ChunkHeader

	// Count is the declared number of objects.
	Count uint32

	// Offsets is indexed by object identifier.
	Offsets []uint32
}

func (ChunkMxOf) Signature() [4]byte {
	return sigMxOf
}

// DataFlags are the flags of a data chunk.
type DataFlags uint16

const (
	DataEnd   DataFlags = 1 << 1
	DataSplit DataFlags = 1 << 4
)

func (f DataFlags) End() bool   { return f&DataEnd != 0 }
func (f DataFlags) Split() bool { return f&DataSplit != 0 }

// ChunkMxCh holds a piece of media data of an object.
type ChunkMxCh struct {
	ChunkHeader

	Flags DataFlags

	// Object is the identifier of the object the data belongs to.
	Object uint32

	Time uint32

	// DataSize is the size stored in the chunk.
	DataSize uint32

	Data []byte
}

func (ChunkMxCh) Signature() [4]byte {
	return sigMxCh
}

// ChunkMxOb wraps a stream object.
type ChunkMxOb struct {
	ChunkHeader

	Object Object
}

func (ChunkMxOb) Signature() [4]byte {
	return sigMxOb
}

// ChunkMxSt is a stream: an object followed by a list of its data chunks.
type ChunkMxSt struct {
	ChunkHeader

	Object *ChunkMxOb
	List   *ChunkList
}

func (ChunkMxSt) Signature() [4]byte {
	return sigMxSt
}

// ChunkPad is padding.
type ChunkPad struct {
	ChunkHeader

	Data []byte
}

func (ChunkPad) Signature() [4]byte {
	return sigPad
}

////////////////////////////////////////////////////////////////

// Container is a decoded OMNI container.
type Container struct {
	// Root is the top-level chunk.
	Root *ChunkRIFF

	// Header is the first child of Root.
	Header *ChunkMxHd

	// Offsets is the second child of Root.
	Offsets *ChunkMxOf

	// Streams is the third child of Root.
	Streams *ChunkList
}

// Type returns the contained-type tag of the container.
func (c *Container) Type() [4]byte {
	return c.Root.Type
}

// Objects returns the objects of each top-level stream, in container order.
// Padding is skipped.
func (c *Container) Objects() []Object {
	return chunkObjects(c.Streams.Chunks)
}

// chunkObject returns the object carried by an MxOb or MxSt chunk.
func chunkObject(chunk Chunk) Object {
	switch chunk := chunk.(type) {
	case *ChunkMxOb:
		return chunk.Object
	case *ChunkMxSt:
		return chunk.Object.Object
	}
	return nil
}

func chunkObjects(chunks []Chunk) []Object {
	var objects []Object
	for _, chunk := range chunks {
		if obj := chunkObject(chunk); obj != nil {
			objects = append(objects, obj)
		}
	}
	return objects
}
