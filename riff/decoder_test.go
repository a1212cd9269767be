package riff

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/isle-tools/omni"
	"github.com/isle-tools/omni/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietDecoder() Decoder {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return Decoder{Logger: log}
}

func decode(t *testing.T, b []byte) *Container {
	t.Helper()
	c, warn, err := quietDecoder().Decode(bytes.NewReader(b))
	require.NoError(t, err)
	require.NoError(t, warn)
	return c
}

func hornContainer() []byte {
	horn := newSound("Horn", 2, "HORN.WAV")
	horn.flags = FlagNoLoop
	return container(10240, 4, []uint32{0, 0, 0}, stream(horn))
}

func TestDecode(t *testing.T) {
	c := decode(t, hornContainer())
	require.Equal(t, typeOMNI, c.Type())
	require.Equal(t, int32(10240), c.Header.BufferSize)
	require.Equal(t, int32(4), c.Header.BufferCount)
	require.Equal(t, uint32(3), c.Offsets.Count)
	require.Equal(t, []uint32{0, 0, 0}, c.Offsets.Offsets)

	objects := c.Objects()
	require.Len(t, objects, 1)
	sound, ok := objects[0].(*Sound)
	require.True(t, ok)
	require.Equal(t, "Horn", sound.Name)
	require.Equal(t, uint32(2), sound.ID)
	require.Equal(t, "HORN.WAV", sound.Filename)
	require.Equal(t, int32(defaultVolume), sound.Volume)
	require.Equal(t, omni.VectorY, sound.Up)
	require.Nil(t, sound.Extra)
	require.True(t, sound.Flags.NoLoop())
}

func TestDecodeOddLength(t *testing.T) {
	b := container(10240, 1, nil, chunk("pad ", []byte{1, 2, 3}), stream(newSound("A", 0, "a.wav")))
	c := decode(t, b)
	require.Len(t, c.Streams.Chunks, 2)
	pad := c.Streams.Chunks[0].(*ChunkPad)
	require.Equal(t, uint32(4), pad.Size)
	require.Equal(t, []byte{1, 2, 3, 0}, pad.Data)
	require.Equal(t, pad.End(), c.Streams.Chunks[1].Header().Offset)
}

func TestDecodeBufferBoundary(t *testing.T) {
	// With a buffer size of 64, the streams list begins at 56 and its
	// children at 68. A pad chunk ends at 124, leaving 4 bytes in the
	// buffer, which are skipped.
	sound := stream(newSound("Horn", 1, "HORN.WAV"))
	b := riffChunk("OMNI",
		headerChunk(64, 2),
		offsetsChunk(0, 0, 0),
		listChunk("MxSt",
			padChunk(48),
			[]byte("JUNK"),
			sound,
		),
	)
	require.Equal(t, "LIST", string(b[56:60]))
	require.Equal(t, "JUNK", string(b[124:128]))

	c := decode(t, b)
	require.Len(t, c.Streams.Chunks, 2)
	require.Equal(t, int64(68), c.Streams.Chunks[0].Header().Offset)
	st, ok := c.Streams.Chunks[1].(*ChunkMxSt)
	require.True(t, ok)
	require.Equal(t, int64(128), st.Offset)
	require.Equal(t, "Horn", st.Object.Object.Base().Name)
}

func TestDecodeBufferBoundaryNested(t *testing.T) {
	// With a buffer size of 64, the first stream begins at 68, and its
	// object fields after the MxSt and MxOb headers.
	child1 := newSound("Child1", 11, "c1.wav")
	child2 := newSound("Child2", 12, "c2.wav")
	scene := newTestObject(KindPresenter, "Scene1", 10)
	listPos := 68 + 16 + len(scene.bytes())
	padPos := listPos + 16 + len(mxob(child1))
	scene.list = listChunk("MxCh", le(uint32(2)), mxob(child1), straddle(padPos, 64), mxob(child2))
	first := stream(scene)

	horn := newSound("Horn", 2, "HORN.WAV")
	d1 := dataChunk(0, 2, 0, []byte("abc"))
	dataPos := 68 + len(first) + 8 + len(mxob(horn)) + 12
	second := stream(horn, d1, straddle(dataPos+len(d1), 64), dataChunk(DataEnd, 2, 10, nil))

	b := container(64, 2, []uint32{0, 0, 0}, first, second)
	require.Equal(t, "JUNK", string(b[380:384]))
	require.Equal(t, "JUNK", string(b[764:768]))

	c := decode(t, b)
	require.Len(t, c.Streams.Chunks, 2)

	p, ok := c.Streams.Chunks[0].(*ChunkMxSt).Object.Object.(*Presenter)
	require.True(t, ok)
	require.Len(t, p.List.Chunks, 3)
	require.IsType(t, &ChunkPad{}, p.List.Chunks[1])
	ob := p.List.Chunks[2].(*ChunkMxOb)
	require.Equal(t, int64(384), ob.Offset)
	require.Equal(t, "Child2", ob.Object.Base().Name)

	st := c.Streams.Chunks[1].(*ChunkMxSt)
	require.Equal(t, "MxDa", string(st.List.Type[:]))
	require.Len(t, st.List.Chunks, 3)
	ch := st.List.Chunks[2].(*ChunkMxCh)
	require.Equal(t, int64(768), ch.Offset)
	require.True(t, ch.Flags.End())
	require.Equal(t, uint32(10), ch.Time)
}

func TestDecodeTrailingChunkSpace(t *testing.T) {
	b := hornContainer()
	// Claim more bytes than are present in the RIFF and streams list, but
	// fewer than a chunk header.
	listOffset := 12 + len(headerChunk(0, 0)) + len(offsetsChunk(0, 0, 0))
	require.Equal(t, "LIST", string(b[listOffset:listOffset+4]))
	for _, off := range []int{4, listOffset + 4} {
		binary.LittleEndian.PutUint32(b[off:], binary.LittleEndian.Uint32(b[off:])+10)
	}

	c := decode(t, b)
	require.Len(t, c.Objects(), 1)
}

func TestDecodeSelection(t *testing.T) {
	for _, test := range []struct {
		header []byte
		want   ListSelection
	}{
		{le("Act\x00", uint32(2), uint16(7), uint16(9)), ListSelection{Tag: listAct, Count: 2, Values: []uint16{7, 9}}},
		{le("RAND", uint32(3), uint32(4)), ListSelection{Tag: listRAND, Rand: [2]uint32{3, 4}}},
		{le(uint32(5)), ListSelection{Count: 5}},
	} {
		b := riffChunk("OMNI",
			headerChunk(10240, 1),
			offsetsChunk(),
			listChunk("MxCh", test.header),
		)
		c := decode(t, b)
		require.NotNil(t, c.Streams.Selection)
		require.Equal(t, test.want, *c.Streams.Selection)
	}
}

func TestDecodeDataChunks(t *testing.T) {
	b := container(10240, 1, nil, stream(newSound("A", 1, "a.wav"),
		dataChunk(0, 1, 0, []byte("abc")),
		dataChunk(DataEnd, 1, 100, nil),
	))
	c := decode(t, b)
	st := c.Streams.Chunks[0].(*ChunkMxSt)
	require.Len(t, st.List.Chunks, 2)

	ch := st.List.Chunks[0].(*ChunkMxCh)
	require.Equal(t, uint32(1), ch.Object)
	require.Equal(t, uint32(3), ch.DataSize)
	require.Equal(t, []byte("abc\x00"), ch.Data)

	end := st.List.Chunks[1].(*ChunkMxCh)
	require.True(t, end.Flags.End())
	require.False(t, end.Flags.Split())
	require.Equal(t, uint32(100), end.Time)
}

func TestDecodeExtraAndCharset(t *testing.T) {
	o := newSound("Caf\xe9", 1, "a.wav")
	o.extra = "entity"
	c := decode(t, container(10240, 1, nil, stream(o)))
	base := c.Objects()[0].Base()
	require.Equal(t, "Café", base.Name)
	require.NotNil(t, base.Extra)
	require.Equal(t, "entity", *base.Extra)
}

func TestDecodeNoRiffChunk(t *testing.T) {
	for _, b := range [][]byte{
		nil,
		[]byte("RIFF"),
		chunk("JUNK", []byte("OMNI")),
	} {
		_, _, err := quietDecoder().Decode(bytes.NewReader(b))
		require.Equal(t, ErrNoRiffChunk, err)
	}
}

func TestDecodeNotOmni(t *testing.T) {
	_, _, err := quietDecoder().Decode(bytes.NewReader(riffChunk("WAVE")))
	require.Equal(t, NotOmniError{'W', 'A', 'V', 'E'}, err)
}

func TestDecodeMxStType(t *testing.T) {
	b := riffChunk("MxSt", headerChunk(10240, 1), offsetsChunk(), listChunk("MxSt"))
	c := decode(t, b)
	require.Equal(t, typeMxSt, c.Type())
}

func TestDecodeUnknownLayout(t *testing.T) {
	for _, b := range [][]byte{
		riffChunk("OMNI", headerChunk(10240, 1)),
		riffChunk("OMNI", offsetsChunk(), headerChunk(10240, 1), listChunk("MxSt")),
		riffChunk("OMNI", headerChunk(10240, 1), offsetsChunk(), listChunk("MxSt"), padChunk(2)),
	} {
		_, _, err := quietDecoder().Decode(bytes.NewReader(b))
		require.Equal(t, ErrUnknownLayout, err)
	}
}

func TestDecodeUnknownChunk(t *testing.T) {
	b := container(10240, 1, nil, chunk("ABCD", []byte{0, 0}))
	_, _, err := quietDecoder().Decode(bytes.NewReader(b))
	require.ErrorIs(t, err, ErrUnknownChunkSig)
	var cerr ChunkError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, [4]byte{'A', 'B', 'C', 'D'}, cerr.Sig)
}

func TestDecodeUnknownFormat(t *testing.T) {
	o := newSound("A", 1, "a.xyz")
	o.format = " XYZ"
	_, _, err := quietDecoder().Decode(bytes.NewReader(container(10240, 1, nil, stream(o))))
	var ferr UnknownFormatError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, UnknownFormatError{Kind: KindSound, Tag: [4]byte{' ', 'X', 'Y', 'Z'}}, ferr)
}

func TestDecodeUnknownObjectKind(t *testing.T) {
	o := newTestObject(ObjectKind(42), "A", 1)
	_, _, err := quietDecoder().Decode(bytes.NewReader(container(10240, 1, nil, mxob(o))))
	require.ErrorIs(t, err, UnknownObjectKindError(42))
}

func TestDecodeUnexpectedEOF(t *testing.T) {
	b := hornContainer()
	// Cut the data in the middle of the object.
	i := bytes.Index(b, []byte("MxOb"))
	require.Greater(t, i, 0)
	b = b[:i+40]

	_, _, err := quietDecoder().Decode(bytes.NewReader(b))
	require.ErrorIs(t, err, ErrUnexpectedEOF)
	var derr DataError
	require.ErrorAs(t, err, &derr)
}

func TestDecodeDeclaredSizeTooLarge(t *testing.T) {
	for name, b := range map[string][]byte{
		"offsets": riffChunk("OMNI",
			headerChunk(10240, 1),
			le("MxOf", uint32(0x3FFFFFF0), uint32(0)),
			listChunk("MxSt"),
		),
		"pad": container(10240, 1, nil, le("pad ", uint32(0x3FFFFFF0))),
		"selection": riffChunk("OMNI",
			headerChunk(10240, 1),
			offsetsChunk(),
			listChunk("MxCh", le("Act\x00", uint32(0x20000000))),
		),
		"maxSize": container(10240, 1, nil,
			le("pad ", uint32(0xFFFFFFFF)),
			stream(newSound("A", 1, "a.wav")),
		),
	} {
		c, _, err := quietDecoder().Decode(bytes.NewReader(b))
		require.Nil(t, c, name)
		require.ErrorIs(t, err, ErrUnexpectedEOF, name)
		var derr DataError
		require.ErrorAs(t, err, &derr, name)
	}
}

func TestDecodeWarnings(t *testing.T) {
	b := append(hornContainer(), 0, 0)
	c, warn, err := quietDecoder().Decode(bytes.NewReader(b))
	require.NoError(t, err)
	require.NotNil(t, c)
	var derr DataError
	require.ErrorAs(t, warn, &derr)
	require.Equal(t, int64(len(b)-2), derr.Offset)

	b = riffChunk("OMNI",
		headerChunk(10240, 1),
		chunk("MxOf", le(uint32(5), uint32(0))),
		listChunk("MxSt"),
	)
	_, warn, err = quietDecoder().Decode(bytes.NewReader(b))
	require.NoError(t, err)
	var errs errors.Errors
	require.ErrorAs(t, warn, &errs)
	require.Len(t, errs, 1)
}

func TestDecodeInvalidBufferSize(t *testing.T) {
	d := quietDecoder()
	d.BufferSize = -1
	_, _, err := d.Decode(bytes.NewReader(hornContainer()))
	require.Equal(t, ErrInvalidBufferSize, err)

	_, _, err = quietDecoder().Decode(bytes.NewReader(container(0, 1, nil)))
	require.ErrorIs(t, err, ErrInvalidBufferSize)
}

func TestDecodeNilReader(t *testing.T) {
	_, _, err := Decoder{}.Decode(nil)
	require.Error(t, err)
}
