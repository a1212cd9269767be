package omni

import (
	"fmt"

	"github.com/google/btree"
)

// SortingID is the key that places a Block within a BlockSet.
type SortingID struct {
	Type BlockType
	ID   uint32

	// Offset is the offset table entry of ID, or zero if the table has no
	// entry.
	Offset uint32

	// Index is the position of the block among its siblings.
	Index int

	// ParentID is the ID of the top-level block that produced this block. A
	// top-level block is its own parent.
	ParentID     uint32
	ParentOffset uint32
	ParentIndex  int
}

func lookupOffset(offsets []uint32, id uint32) uint32 {
	if uint64(id) < uint64(len(offsets)) {
		return offsets[id]
	}
	return 0
}

// NewSortingID returns a SortingID, resolving the offsets of id and parentID
// from the given offset table.
func NewSortingID(typ BlockType, id uint32, offsets []uint32, index int, parentID uint32, parentIndex int) SortingID {
	return SortingID{
		Type:         typ,
		ID:           id,
		Offset:       lookupOffset(offsets, id),
		Index:        index,
		ParentID:     parentID,
		ParentOffset: lookupOffset(offsets, parentID),
		ParentIndex:  parentIndex,
	}
}

func (s SortingID) String() string {
	return fmt.Sprintf("%s#%d@%d[%d] (parent #%d@%d[%d])",
		s.Type, s.ID, s.Offset, s.Index,
		s.ParentID, s.ParentOffset, s.ParentIndex,
	)
}

////////////////////////////////////////////////////////////////

// Ordering is a total order over SortingIDs. Compare returns a negative
// number when a sorts before b, a positive number when a sorts after b, and
// zero when the two keys are considered the same.
type Ordering interface {
	Compare(a, b SortingID) int
}

// OrderFunc adapts a function to the Ordering interface.
type OrderFunc func(a, b SortingID) int

func (f OrderFunc) Compare(a, b SortingID) int {
	return f(a, b)
}

func cmpUint32(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// ByIdentifier orders blocks by ascending object identifier. Blocks that
// share an identifier collide.
var ByIdentifier Ordering = OrderFunc(func(a, b SortingID) int {
	return cmpUint32(a.ID, b.ID)
})

// ByFileOrder orders blocks by their index. It is used for parsed scripts,
// where every block has an identifier of zero.
var ByFileOrder Ordering = OrderFunc(func(a, b SortingID) int {
	return cmpInt(a.Index, b.Index)
})

// ByAuthoredOffset attempts to reconstruct authoring order from the offset
// table. Children are placed next to their parents; objects with recorded
// offsets keep their container order; otherwise blocks are grouped by the
// offset of their parent. Keys that remain tied fall back to identifier
// order.
//
// This ordering is experimental. It has not been validated against authored
// scripts.
var ByAuthoredOffset Ordering = OrderFunc(func(a, b SortingID) int {
	if a.ID == b.ID {
		return 0
	}
	if c := compareAuthored(a, b); c != 0 {
		return c
	}
	return cmpUint32(a.ID, b.ID)
})

func compareAuthored(a, b SortingID) int {
	switch {
	case a.ParentID == b.ID:
		return -1
	case a.ID == b.ParentID:
		return 1
	case a.Offset != 0 && b.Offset != 0:
		return cmpInt(a.Index, b.Index)
	case a.Offset == 0 && b.Offset != 0:
		return cmpUint32(a.ParentID, b.ID)
	case a.Offset != 0 && b.Offset == 0:
		return cmpUint32(a.ID, b.ParentID)
	case a.ParentID != b.ParentID:
		return cmpUint32(a.ParentOffset, b.ParentOffset)
	}
	return cmpInt(a.Index, b.Index)
}

////////////////////////////////////////////////////////////////

// DuplicateBlockError indicates that a block was inserted into a BlockSet
// under a key that compares equal to the key of a block already present.
type DuplicateBlockError struct {
	Key      SortingID
	Existing *Block
	Block    *Block
}

func (err DuplicateBlockError) Error() string {
	return fmt.Sprintf("block %q (id %d) collides with block %q (id %d)",
		err.Block.Name, err.Block.ID, err.Existing.Name, err.Existing.ID,
	)
}

type blockEntry struct {
	key   SortingID
	block *Block
}

// BlockSet is a collection of blocks kept sorted by an Ordering.
type BlockSet struct {
	tree *btree.BTreeG[blockEntry]
}

// NewBlockSet returns an empty BlockSet sorted by order. If order is nil,
// ByIdentifier is used.
func NewBlockSet(order Ordering) *BlockSet {
	if order == nil {
		order = ByIdentifier
	}
	less := func(a, b blockEntry) bool {
		return order.Compare(a.key, b.key) < 0
	}
	return &BlockSet{tree: btree.NewG(8, less)}
}

// Insert adds block under key. Returns a DuplicateBlockError if a block with
// an equal key is already present, in which case the set is unchanged.
func (s *BlockSet) Insert(key SortingID, block *Block) error {
	entry := blockEntry{key: key, block: block}
	if existing, ok := s.tree.Get(entry); ok {
		return DuplicateBlockError{Key: key, Existing: existing.block, Block: block}
	}
	s.tree.ReplaceOrInsert(entry)
	return nil
}

// Len returns the number of blocks in the set.
func (s *BlockSet) Len() int {
	return s.tree.Len()
}

// Blocks returns the blocks of the set in order.
func (s *BlockSet) Blocks() []*Block {
	blocks := make([]*Block, 0, s.tree.Len())
	s.tree.Ascend(func(e blockEntry) bool {
		blocks = append(blocks, e.block)
		return true
	})
	return blocks
}

// Keys returns the keys of the set in order.
func (s *BlockSet) Keys() []SortingID {
	keys := make([]SortingID, 0, s.tree.Len())
	s.tree.Ascend(func(e blockEntry) bool {
		keys = append(keys, e.key)
		return true
	})
	return keys
}
