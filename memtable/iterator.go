package memtable

import "github.com/kvsst/lsmtable/iterators"

// Iterator is a forward cursor over every record in a MemTable, live
// entries and tombstones alike. It implements iterators.StorageIterator
// plus IsTombstone, so a caller merging this with other sources (e.g. the
// engine's MergeIterator) can tell a delete from an absence instead of the
// key silently vanishing.
type Iterator struct {
	node *skipListNode[string, entry]
}

var _ iterators.StorageIterator = (*Iterator)(nil)

// NewIterator returns an iterator positioned at m's first entry.
func NewIterator(m *MemTable) *Iterator {
	return &Iterator{node: m.list.head.forward[0]}
}

// NewIteratorAtKey returns an iterator positioned at the first entry whose
// key is >= key.
func NewIteratorAtKey(m *MemTable, key []byte) *Iterator {
	return &Iterator{node: m.list.SeekGE(string(key))}
}

// IsTombstone reports whether the current entry is a deletion marker
// rather than a live value.
func (it *Iterator) IsTombstone() bool {
	return it.node != nil && it.node.record.Value.tombstone
}

// Key returns the current entry's key.
func (it *Iterator) Key() []byte {
	if it.node == nil {
		return nil
	}
	return []byte(it.node.record.Key)
}

// Value returns the current entry's value.
func (it *Iterator) Value() []byte {
	if it.node == nil {
		return nil
	}
	return it.node.record.Value.value
}

// IsValid reports whether the iterator is positioned at an entry.
func (it *Iterator) IsValid() bool { return it.node != nil }

// Next advances to the next entry, live or tombstoned.
func (it *Iterator) Next() error {
	if it.node == nil {
		return nil
	}
	it.node = it.node.forward[0]
	return nil
}
