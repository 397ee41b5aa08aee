// Package memtable provides the mutable, in-memory ordered key-value store
// that buffers writes ahead of an SsTable flush. Keys are ordered the same
// way on-disk keys are ordered: plain byte-wise comparison, which Go's
// native string comparison implements exactly, so []byte keys are addressed
// into the skip list via a string conversion at the boundary.
package memtable

import "iter"

// entry is the value half of a memtable record: either a live value or a
// tombstone recording that the key was deleted after having been (possibly)
// present in an already-flushed table.
type entry struct {
	value     []byte
	tombstone bool
}

// Entry is a single key-value pair yielded by MemTable.All, already resolved
// to its caller-visible form (deleted keys carry Tombstone=true and a nil
// Value).
type Entry struct {
	Key       []byte
	Value     []byte
	Tombstone bool
}

// MemTable is an ordered, mutable buffer of recent writes. It is not safe
// for concurrent use without external synchronization, matching the
// Non-goal of building concurrency control into the storage core itself.
type MemTable struct {
	list            *SkipList[string, entry]
	approximateSize int
}

// New creates an empty memtable.
func New() *MemTable {
	return &MemTable{list: NewSkipListMemtable[string, entry]()}
}

// Put records a live value for key, overwriting any prior value or
// tombstone.
func (m *MemTable) Put(key, value []byte) {
	m.list.Put(string(key), entry{value: append([]byte(nil), value...)})
	m.approximateSize += len(key) + len(value)
}

// Delete records a tombstone for key. Unlike Put, nothing is removed from
// the skip list itself: the tombstone must survive until it has been
// merged into (and can suppress) an older value in a flushed table.
func (m *MemTable) Delete(key []byte) {
	m.list.Put(string(key), entry{tombstone: true})
	m.approximateSize += len(key)
}

// Get returns the value for key and whether it was found live. A tombstoned
// key reports ok=false, the same as a key never written; Contains tells
// "known deleted" apart from "never written" when merging across memtable
// and table layers.
func (m *MemTable) Get(key []byte) (value []byte, ok bool) {
	e, found := m.list.Get(string(key))
	if !found || e.tombstone {
		return nil, false
	}
	return e.value, true
}

// Contains reports whether key has any record at all in this memtable,
// live or tombstoned.
func (m *MemTable) Contains(key []byte) bool {
	_, found := m.list.Get(string(key))
	return found
}

// ApproximateSize returns the running total of key and value bytes put into
// the memtable, used by the engine to decide when to trigger a flush.
func (m *MemTable) ApproximateSize() int {
	return m.approximateSize
}

// All iterates every record in key order, live values and tombstones alike.
func (m *MemTable) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for rec := range m.list.Iterator() {
			e := Entry{Key: []byte(rec.Key), Tombstone: rec.Value.tombstone}
			if !e.Tombstone {
				e.Value = rec.Value.value
			}
			if !yield(e) {
				return
			}
		}
	}
}
