package riff

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/isle-tools/omni"
	"github.com/isle-tools/omni/errors"
)

// Codec lowers a decoded Container to an omni.Document.
type Codec struct {
	// Ordering determines the order of blocks in the document. If nil,
	// omni.ByIdentifier is used.
	Ordering omni.Ordering
}

// Names of the settings block and its properties.
const (
	settingsName = "Configuration"

	// defaultSoundPresenter is the presenter class assumed by sounds that do
	// not declare one.
	defaultSoundPresenter = "Lego3DWavePresenter"

	// defaultVolume is the volume assumed by sounds that do not declare one.
	defaultVolume = 0x4F
)

// lowerHeader lowers the container header to the settings block.
func lowerHeader(hd *ChunkMxHd) *omni.Block {
	b := omni.NewBlock(omni.DefineSettings, settingsName, math.MaxUint32, false)
	b.Assign("bufferSizeKB", omni.ValueInteger(hd.BufferSize/1024))
	b.Assign("buffersNum", omni.ValueInteger(hd.BufferCount))
	return b
}

// Lower produces a document from the container. The header becomes the
// settings block, and each top-level stream becomes a woven block, preceded
// by the blocks of its children.
func (c Codec) Lower(container *Container) (doc *omni.Document, err error) {
	if container == nil {
		panic("container is nil")
	}

	doc = &omni.Document{Settings: lowerHeader(container.Header)}
	set := omni.NewBlockSet(c.Ordering)
	var offsets []uint32
	if container.Offsets != nil {
		offsets = container.Offsets.Offsets
	}

	for i, chunk := range container.Streams.Chunks {
		if _, ok := chunk.(*ChunkPad); ok {
			continue
		}
		obj := chunkObject(chunk)
		if obj == nil {
			return nil, LowerError{Index: i, Cause: fmt.Errorf("unexpected %q chunk in stream list", sigString(chunk.Signature()))}
		}

		block, before, after, err := lowerObject(obj, true)
		if err != nil {
			return nil, LowerError{Index: i, Name: obj.Base().Name, Cause: err}
		}

		key := omni.NewSortingID(block.Type, block.ID, offsets, i, block.ID, i)
		if err := set.Insert(key, block); err != nil {
			return nil, LowerError{Index: i, Name: block.Name, Cause: err}
		}
		if err := insertAux(set, offsets, block, i, before, after); err != nil {
			return nil, err
		}
	}

	doc.Blocks = set.Blocks()
	return doc, nil
}

// insertAux inserts the blocks lowered alongside the top-level block of
// stream i. Blocks are indexed from zero within each group.
func insertAux(set *omni.BlockSet, offsets []uint32, parent *omni.Block, i int, groups ...[]*omni.Block) error {
	for _, group := range groups {
		for j, aux := range group {
			key := omni.NewSortingID(aux.Type, aux.ID, offsets, j, parent.ID, i)
			if err := set.Insert(key, aux); err != nil {
				return LowerError{Index: i, Name: aux.Name, Cause: err}
			}
		}
	}
	return nil
}

// lowerObject returns the block of an object, along with the blocks that must
// be emitted before and after it. Every kind of object is handled, either by
// lowering it or by returning an UnsupportedObjectError.
func lowerObject(obj Object, topLevel bool) (block *omni.Block, before, after []*omni.Block, err error) {
	base := obj.Base()
	switch obj := obj.(type) {
	case *Video:
		block = newBlock(omni.DefineAnim, base, topLevel)
		block.Assign("fileName", omni.ValueString(obj.Filename))
		assignHandler(block, base.Presenter, "")
		assignVectors(block, base)
		if !obj.FormatFlags.PaletteManagement() {
			block.Assign("paletteManagement", omni.PaletteNone)
		}
		if base.Duration != 0 {
			block.Assign("duration", omni.ValueDuration(base.Duration))
		}
		assignExtra(block, "extra", base)

	case *Sound:
		block = newBlock(omni.DefineSound, base, topLevel)
		block.Assign("fileName", omni.ValueString(obj.Filename))
		assignHandler(block, base.Presenter, defaultSoundPresenter)
		assignVectors(block, base)
		if obj.Volume != defaultVolume {
			block.Assign("volume", omni.ValueInteger(obj.Volume))
		}
		if base.StartTime != 0 {
			block.Assign("startTime", omni.ValueInteger(base.StartTime))
		}
		assignLooping(block, base)
		assignExtra(block, "entityName", base)

	case *Presenter:
		block = newBlock(omni.ParallelAction, base, topLevel)
		assignHandler(block, base.Presenter, "")
		assignVectors(block, base)
		assignLooping(block, base)
		if obj.List != nil {
			for _, child := range obj.List.Chunks {
				if _, ok := child.(*ChunkPad); ok {
					continue
				}
				childObj := chunkObject(child)
				if childObj == nil {
					return nil, nil, nil, fmt.Errorf("unexpected %q chunk in %q", sigString(child.Signature()), base.Name)
				}
				block.Declare(childObj.Base().Name)

				b, bb, ba, err := lowerObject(childObj, false)
				if err != nil {
					return nil, nil, nil, err
				}
				before = append(before, bb...)
				before = append(before, b)
				before = append(before, ba...)
			}
		}
		assignExtra(block, "extra", base)

	case *Event:
		block = newBlock(omni.DefineEvent, base, topLevel)
		block.Assign("fileName", omni.ValueString(strings.TrimSuffix(obj.Filename, ".evt")))
		assignHandler(block, base.Presenter, "")
		assignVectors(block, base)
		assignExtra(block, "extra", base)

	case *Bitmap:
		block = newBlock(omni.DefineStill, base, topLevel)
		block.Assign("fileName", omni.ValueString(obj.Filename))
		assignHandler(block, base.Presenter, "")
		if base.Duration != 0 {
			block.Assign("duration", omni.ValueDuration(base.Duration))
		}
		assignVectors(block, base)
		if !obj.FormatFlags.PaletteManagement() {
			block.Assign("paletteManagement", omni.PaletteNone)
		}
		if base.Flags.Transparent() {
			block.Assign("transparency", omni.TransparencyYes)
		}
		assignExtra(block, "extra", base)

	case *Object3D:
		block = newBlock(omni.DefineObject, base, topLevel)
		block.Assign("fileName", omni.ValueString(obj.Filename))
		assignHandler(block, base.Presenter, "")
		assignVectors(block, base)
		if base.Duration != 0 {
			block.Assign("duration", omni.ValueDuration(base.Duration))
		}
		assignExtra(block, "extra", base)

	case *World, *Animation:
		return nil, nil, nil, UnsupportedObjectError{Kind: obj.Kind(), Name: base.Name}

	default:
		return nil, nil, nil, UnknownObjectKindError(obj.Kind())
	}
	return block, before, after, nil
}

func newBlock(typ omni.BlockType, base *ObjectBase, topLevel bool) *omni.Block {
	return omni.NewBlock(typ, base.Name, base.ID, topLevel)
}

// assignHandler assigns the presenter class, unless it is empty or equal to
// the implicit class of the block.
func assignHandler(b *omni.Block, presenter, implicit string) {
	if presenter == "" || presenter == implicit {
		return
	}
	b.Assign("handlerClass", omni.ValueString(presenter))
}

func assignVectors(b *omni.Block, o *ObjectBase) {
	if o.Location != omni.VectorZero {
		b.Assign("location", omni.ValueVector3(o.Location))
	}
	if o.Direction != omni.VectorZ {
		b.Assign("direction", omni.ValueVector3(o.Direction))
	}
	if o.Up != omni.VectorY {
		b.Assign("up", omni.ValueVector3(o.Up))
	}
}

// assignLooping assigns the loop count and looping method. No method is
// assigned when the object loops but neither the cache nor the stream flag
// is set.
func assignLooping(b *omni.Block, o *ObjectBase) {
	if o.Loops != 1 {
		b.Assign("loopCount", omni.ValueInteger(o.Loops))
	}
	if o.Flags.NoLoop() {
		return
	}
	switch {
	case o.Flags.LoopCache():
		b.Assign("loopingMethod", omni.LoopingCache)
	case o.Flags.LoopStream():
		b.Assign("loopingMethod", omni.LoopingStream)
	}
}

func assignExtra(b *omni.Block, name string, o *ObjectBase) {
	if o.Extra != nil {
		b.Assign(name, omni.ValueString(*o.Extra))
	}
}

// Decompile decodes a container from r and renders it as a script.
func Decompile(r io.Reader) (script string, warn, err error) {
	return DecompileWith(Decoder{}, Codec{}, r)
}

// DecompileWith is like Decompile, using the given decoder and codec.
func DecompileWith(d Decoder, c Codec, r io.Reader) (script string, warn, err error) {
	container, w, err := d.Decode(r)
	warn = errors.Union(warn, w)
	if err != nil {
		return "", warn, err
	}
	doc, err := c.Lower(container)
	if err != nil {
		return "", warn, err
	}
	return doc.String(), warn, nil
}
