package table

import (
	"bytes"

	"github.com/kvsst/lsmtable/block"
	"github.com/kvsst/lsmtable/iterators"
)

// Iterator is a two-level cursor over an SsTable: it drives a block.Iterator
// over the current block and advances across blocks as that inner cursor is
// exhausted. It implements iterators.StorageIterator.
type Iterator struct {
	table    *SsTable
	blockIdx int
	inner    *block.Iterator
}

var _ iterators.StorageIterator = (*Iterator)(nil)

// NewIteratorAtFirst creates an iterator positioned at the table's first
// key-value pair.
func NewIteratorAtFirst(table *SsTable) (*Iterator, error) {
	it := &Iterator{table: table}
	if err := it.SeekToFirst(); err != nil {
		return nil, err
	}
	return it, nil
}

// NewIteratorAtKey creates an iterator positioned at the first key-value
// pair whose key is >= key.
func NewIteratorAtKey(table *SsTable, key []byte) (*Iterator, error) {
	it := &Iterator{table: table}
	if err := it.SeekToKey(key); err != nil {
		return nil, err
	}
	return it, nil
}

// SeekToFirst repositions the iterator at block 0's first entry.
func (it *Iterator) SeekToFirst() error {
	blk, err := it.table.ReadBlock(0)
	if err != nil {
		return err
	}
	it.blockIdx = 0
	it.inner = block.NewIteratorAtFirst(blk)
	return nil
}

// SeekToKey repositions the iterator at the first key-value pair whose key
// is >= key: binary search the meta list for the first
// block whose FirstKey is strictly greater than key, step back one to the
// candidate block, and seek that block's iterator to key. If that lands
// past the candidate block's last entry and a next block exists, the
// smallest key >= key is that next block's first key.
func (it *Iterator) SeekToKey(key []byte) error {
	metas := it.table.blockMetas
	j := iterators.SeekFirstGE(len(metas), func(i int) bool {
		return bytes.Compare(metas[i].FirstKey, key) <= 0
	})

	if j == 0 {
		return it.SeekToFirst()
	}

	candidate := j - 1
	blk, err := it.table.ReadBlock(candidate)
	if err != nil {
		return err
	}

	it.blockIdx = candidate
	it.inner = block.NewIteratorAtKey(blk, key)

	if !it.inner.IsValid() && j < len(metas) {
		nextBlk, err := it.table.ReadBlock(j)
		if err != nil {
			return err
		}
		it.blockIdx = j
		it.inner = block.NewIteratorAtFirst(nextBlk)
	}

	return nil
}

// Key returns the current entry's key.
func (it *Iterator) Key() []byte { return it.inner.Key() }

// Value returns the current entry's value.
func (it *Iterator) Value() []byte { return it.inner.Value() }

// IsValid reports whether the iterator is positioned at a real entry.
func (it *Iterator) IsValid() bool { return it.inner.IsValid() }

// Next advances to the next entry, crossing into the following block when
// the current one is exhausted. Once the last block's last entry has been
// passed, the iterator stays invalid and further Next calls are no-ops.
func (it *Iterator) Next() error {
	it.inner.Next()
	if it.inner.IsValid() {
		return nil
	}
	if it.blockIdx+1 >= it.table.NumOfBlocks() {
		return nil
	}

	blk, err := it.table.ReadBlock(it.blockIdx + 1)
	if err != nil {
		return err
	}
	it.blockIdx++
	it.inner = block.NewIteratorAtFirst(blk)
	return nil
}
