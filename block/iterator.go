package block

import (
	"bytes"

	"github.com/kvsst/lsmtable/iterators"
)

// Iterator is a stateful cursor over one Block. Multiple iterators may
// share the same underlying Block concurrently: Block is immutable once
// built, so no locking is needed.
type Iterator struct {
	block *Block
	idx   int
	key   []byte
	value []byte
}

// NewIterator creates a cursor over block, initially invalid. Call
// SeekToFirst or SeekToKey before reading.
func NewIterator(block *Block) *Iterator {
	return &Iterator{block: block}
}

// NewIteratorAtFirst creates a cursor already positioned at the block's
// first entry.
func NewIteratorAtFirst(block *Block) *Iterator {
	it := NewIterator(block)
	it.SeekToFirst()
	return it
}

// NewIteratorAtKey creates a cursor positioned at the first entry whose key
// is >= key (or invalid, if no such entry exists).
func NewIteratorAtKey(block *Block, key []byte) *Iterator {
	it := NewIterator(block)
	it.SeekToKey(key)
	return it
}

// SeekToFirst positions the cursor at entry 0.
func (it *Iterator) SeekToFirst() {
	it.idx = 0
	it.loadCurrent()
}

// Next advances the cursor by one entry. Advancing past the last entry
// makes the cursor invalid.
func (it *Iterator) Next() error {
	it.idx++
	it.loadCurrent()
	return nil
}

// SeekToKey positions the cursor at the smallest-indexed entry whose key is
// unsigned-lexicographically >= key, using binary search over the block's
// offsets (keys within a block are strictly ascending, a builder
// precondition the block itself does not re-verify).
func (it *Iterator) SeekToKey(key []byte) {
	offsets := it.block.offsets
	idx := iterators.SeekFirstGE(len(offsets), func(i int) bool {
		k, _ := EntryAt(it.block.data, offsets[i])
		return bytes.Compare(k, key) < 0
	})
	it.idx = idx
	it.loadCurrent()
}

// loadCurrent decodes the entry at it.idx, or marks the cursor invalid if
// idx has run past the last entry.
func (it *Iterator) loadCurrent() {
	if it.idx >= len(it.block.offsets) {
		it.key = nil
		it.value = nil
		return
	}
	it.key, it.value = EntryAt(it.block.data, it.block.offsets[it.idx])
}

// Key returns the current entry's key. Unspecified if !IsValid.
func (it *Iterator) Key() []byte { return it.key }

// Value returns the current entry's value. Unspecified if !IsValid.
func (it *Iterator) Value() []byte { return it.value }

// IsValid reports whether the cursor is positioned at a real entry.
func (it *Iterator) IsValid() bool { return it.idx < len(it.block.offsets) }
