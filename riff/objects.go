package riff

import (
	"github.com/anaminus/parse"
	"github.com/isle-tools/omni"
)

// ObjectKind discriminates the kinds of stream object.
type ObjectKind uint16

const (
	KindVideo     ObjectKind = 3
	KindSound     ObjectKind = 4
	KindWorld     ObjectKind = 6
	KindPresenter ObjectKind = 7
	KindEvent     ObjectKind = 8
	KindAnimation ObjectKind = 9
	KindBitmap    ObjectKind = 10
	KindObject    ObjectKind = 11
)

var kindStrings = map[ObjectKind]string{
	KindVideo:     "Video",
	KindSound:     "Sound",
	KindWorld:     "World",
	KindPresenter: "Presenter",
	KindEvent:     "Event",
	KindAnimation: "Animation",
	KindBitmap:    "Bitmap",
	KindObject:    "Object",
}

func (k ObjectKind) String() string {
	s, ok := kindStrings[k]
	if !ok {
		return "Invalid"
	}
	return s
}

// ObjectFlags is the flags word common to every object. Bits without a
// known meaning are kept as read.
type ObjectFlags uint32

const (
	FlagLoopCache   ObjectFlags = 1 << 0
	FlagNoLoop      ObjectFlags = 1 << 1
	FlagLoopStream  ObjectFlags = 1 << 2
	FlagTransparent ObjectFlags = 1 << 3
)

func (f ObjectFlags) LoopCache() bool   { return f&FlagLoopCache != 0 }
func (f ObjectFlags) NoLoop() bool      { return f&FlagNoLoop != 0 }
func (f ObjectFlags) LoopStream() bool  { return f&FlagLoopStream != 0 }
func (f ObjectFlags) Transparent() bool { return f&FlagTransparent != 0 }

// FormatFlags is the flags word of video and still formats.
type FormatFlags uint32

const FlagPaletteManagement FormatFlags = 1 << 0

func (f FormatFlags) PaletteManagement() bool { return f&FlagPaletteManagement != 0 }

////////////////////////////////////////////////////////////////

// Object is a decoded stream object. The set of implementations is closed:
// *Video, *Sound, *World, *Presenter, *Event, *Animation, *Bitmap, and
// *Object3D.
type Object interface {
	Kind() ObjectKind
	Base() *ObjectBase
	object()
}

// ObjectBase contains the fields common to every object.
type ObjectBase struct {
	// Presenter is the name of the class that presents the object.
	Presenter string
	Unknown0  uint32
	Name      string
	ID        uint32
	Flags     ObjectFlags
	StartTime int32
	Duration  int32
	Loops     int32
	Location  omni.Vector3
	Direction omni.Vector3
	Up        omni.Vector3

	// Extra is nil when the object has no extra data.
	Extra *string
}

func (o *ObjectBase) Base() *ObjectBase {
	return o
}

// MediaFile contains the fields of objects backed by a media file.
type MediaFile struct {
	Filename string
	Unknown2 uint32
	Unknown3 uint32
	Unknown4 uint32

	// Format is the space-padded sub-format tag.
	Format [4]byte
}

type Video struct {
	ObjectBase
	MediaFile
	FormatFlags FormatFlags
	Unknown6    uint32
}

type Sound struct {
	ObjectBase
	MediaFile
	Unknown5 uint32
	Unknown6 uint32
	Volume   int32
}

// World is a scene containing a list of child objects.
type World struct {
	ObjectBase
	List *ChunkList
}

// Presenter is a group of child objects presented in parallel.
type Presenter struct {
	ObjectBase
	List *ChunkList
}

type Event struct {
	ObjectBase
	MediaFile
	Unknown5 uint32
	Unknown6 uint32
}

type Animation struct {
	ObjectBase
}

type Bitmap struct {
	ObjectBase
	MediaFile
	FormatFlags FormatFlags
	Unknown6    uint32
}

// Object3D is a generic 3D object.
type Object3D struct {
	ObjectBase
	MediaFile
	Unknown5 uint32
	Unknown6 uint32
}

func (*Video) Kind() ObjectKind     { return KindVideo }
func (*Sound) Kind() ObjectKind     { return KindSound }
func (*World) Kind() ObjectKind     { return KindWorld }
func (*Presenter) Kind() ObjectKind { return KindPresenter }
func (*Event) Kind() ObjectKind     { return KindEvent }
func (*Animation) Kind() ObjectKind { return KindAnimation }
func (*Bitmap) Kind() ObjectKind    { return KindBitmap }
func (*Object3D) Kind() ObjectKind  { return KindObject }

func (*Video) object()     {}
func (*Sound) object()     {}
func (*World) object()     {}
func (*Presenter) object() {}
func (*Event) object()     {}
func (*Animation) object() {}
func (*Bitmap) object()    {}
func (*Object3D) object()  {}

////////////////////////////////////////////////////////////////

func readVector(f *parse.BinaryReader, v *omni.Vector3) (failed bool) {
	if f.Number(&v.X) {
		return true
	}
	if f.Number(&v.Y) {
		return true
	}
	return f.Number(&v.Z)
}

func (o *ObjectBase) readFrom(f *parse.BinaryReader) (failed bool) {
	if readNullString(f, &o.Presenter) {
		return true
	}
	if f.Number(&o.Unknown0) {
		return true
	}
	if readNullString(f, &o.Name) {
		return true
	}
	if f.Number(&o.ID) {
		return true
	}
	var flags uint32
	if f.Number(&flags) {
		return true
	}
	o.Flags = ObjectFlags(flags)
	if f.Number(&o.StartTime) {
		return true
	}
	if f.Number(&o.Duration) {
		return true
	}
	if f.Number(&o.Loops) {
		return true
	}
	if readVector(f, &o.Location) {
		return true
	}
	if readVector(f, &o.Direction) {
		return true
	}
	if readVector(f, &o.Up) {
		return true
	}

	var extraSize uint16
	if f.Number(&extraSize) {
		return true
	}
	if extraSize > 0 {
		extra := make([]byte, extraSize)
		if f.Bytes(extra) {
			return true
		}
		s := nullString(extra)
		o.Extra = &s
	}
	return false
}

func (m *MediaFile) readFrom(f *parse.BinaryReader) (failed bool) {
	if readNullString(f, &m.Filename) {
		return true
	}
	if f.Number(&m.Unknown2) {
		return true
	}
	if f.Number(&m.Unknown3) {
		return true
	}
	if f.Number(&m.Unknown4) {
		return true
	}
	return f.Bytes(m.Format[:])
}

// readFormat reads the trailing record selected by the media file format.
// Returns an UnknownFormatError if the format is not valid for the kind.
func readFormat(f *parse.BinaryReader, kind ObjectKind, format [4]byte, words ...interface{}) (failed bool) {
	valid := false
	switch kind {
	case KindVideo:
		valid = format == formatFLC || format == formatSMK
	case KindSound:
		valid = format == formatWAV
	case KindEvent:
		valid = format == formatEVT
	case KindBitmap:
		valid = format == formatSTL
	case KindObject:
		valid = format == formatOBJ
	}
	if !valid {
		f.Add(0, UnknownFormatError{Kind: kind, Tag: format})
		return true
	}
	for _, w := range words {
		if flags, ok := w.(*FormatFlags); ok {
			var v uint32
			if f.Number(&v) {
				return true
			}
			*flags = FormatFlags(v)
			continue
		}
		if f.Number(w) {
			return true
		}
	}
	return false
}

// readObject decodes an object from f. Objects that own a list of children
// have the list header located at the current position of f; the list is
// decoded by readList.
func (d *decoder) readObject(f *parse.BinaryReader, base int64, bufSize int32) (Object, bool) {
	var k uint16
	if f.Number(&k) {
		return nil, true
	}
	kind := ObjectKind(k)

	switch kind {
	case KindVideo:
		o := &Video{}
		if o.ObjectBase.readFrom(f) || o.MediaFile.readFrom(f) {
			return nil, true
		}
		return o, readFormat(f, kind, o.Format, &o.FormatFlags, &o.Unknown6)
	case KindSound:
		o := &Sound{}
		if o.ObjectBase.readFrom(f) || o.MediaFile.readFrom(f) {
			return nil, true
		}
		return o, readFormat(f, kind, o.Format, &o.Unknown5, &o.Unknown6, &o.Volume)
	case KindEvent:
		o := &Event{}
		if o.ObjectBase.readFrom(f) || o.MediaFile.readFrom(f) {
			return nil, true
		}
		return o, readFormat(f, kind, o.Format, &o.Unknown5, &o.Unknown6)
	case KindBitmap:
		o := &Bitmap{}
		if o.ObjectBase.readFrom(f) || o.MediaFile.readFrom(f) {
			return nil, true
		}
		return o, readFormat(f, kind, o.Format, &o.FormatFlags, &o.Unknown6)
	case KindObject:
		o := &Object3D{}
		if o.ObjectBase.readFrom(f) || o.MediaFile.readFrom(f) {
			return nil, true
		}
		return o, readFormat(f, kind, o.Format, &o.Unknown5, &o.Unknown6)
	case KindAnimation:
		o := &Animation{}
		return o, o.ObjectBase.readFrom(f)
	case KindWorld:
		o := &World{}
		if o.ObjectBase.readFrom(f) {
			return nil, true
		}
		list, failed := d.readOwnedList(f, base, bufSize)
		o.List = list
		return o, failed
	case KindPresenter:
		o := &Presenter{}
		if o.ObjectBase.readFrom(f) {
			return nil, true
		}
		list, failed := d.readOwnedList(f, base, bufSize)
		o.List = list
		return o, failed
	}
	f.Add(0, UnknownObjectKindError(kind))
	return nil, true
}

// readOwnedList decodes the list of children that follows the fields of a
// World or Presenter.
func (d *decoder) readOwnedList(f *parse.BinaryReader, base int64, bufSize int32) (*ChunkList, bool) {
	pos := base + f.N()
	var sig [4]byte
	if f.Bytes(sig[:]) {
		return nil, true
	}
	if sig != sigLIST {
		f.Add(0, ChunkError{Offset: pos, Sig: sig, Cause: errExpected(sigLIST)})
		return nil, true
	}
	list, err := d.readList(pos, bufSize)
	if err != nil {
		f.Add(0, err)
		return nil, true
	}
	return list, false
}
