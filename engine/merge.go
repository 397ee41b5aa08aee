package engine

import (
	"bytes"
	"container/heap"

	"github.com/kvsst/lsmtable/iterators"
)

// mergeItem pairs a source iterator with its recency rank: lower rank wins
// ties on the same key, so rank 0 (the memtable) always shadows older
// flushed tables.
type mergeItem struct {
	it   iterators.StorageIterator
	rank int
}

type mergeHeap []*mergeItem

func (h mergeHeap) Len() int { return len(h) }
func (h mergeHeap) Less(i, j int) bool {
	c := bytes.Compare(h[i].it.Key(), h[j].it.Key())
	if c != 0 {
		return c < 0
	}
	return h[i].rank < h[j].rank
}
func (h mergeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap) Push(x any)        { *h = append(*h, x.(*mergeItem)) }
func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// MergeIterator is a k-way merge over several StorageIterators, ordered by
// key and, on ties, by the recency rank assigned at construction. It
// implements iterators.StorageIterator so it composes with callers that
// already expect one (e.g. a nested merge, or the engine's public Scan).
type MergeIterator struct {
	h       mergeHeap
	key     []byte
	value   []byte
	current *mergeItem
}

var _ iterators.StorageIterator = (*MergeIterator)(nil)

// NewMergeIterator builds a merged view over its, which must already be
// positioned (e.g. via SeekToFirst/SeekToKey) before being passed in. its[0]
// is treated as the most recent source.
func NewMergeIterator(its []iterators.StorageIterator) *MergeIterator {
	m := &MergeIterator{}
	for rank, it := range its {
		if it.IsValid() {
			m.h = append(m.h, &mergeItem{it: it, rank: rank})
		}
	}
	heap.Init(&m.h)
	m.advance()
	return m
}

// tombstoner is implemented by sources that can carry deletion markers
// (currently only memtable.Iterator; SsTable iterators have no tombstone
// encoding and never satisfy it).
type tombstoner interface {
	IsTombstone() bool
}

// advance pops the next distinct key from the heap, discarding any other
// sources currently positioned at the same key (they are older duplicates).
// If the winning source is a tombstone, the key was deleted more recently
// than any older value for it could have been written, so it is suppressed
// entirely rather than surfaced, and advance moves on to the next distinct
// key instead.
func (m *MergeIterator) advance() {
	for {
		m.current = nil
		m.key = nil
		m.value = nil

		if m.h.Len() == 0 {
			return
		}

		top := heap.Pop(&m.h).(*mergeItem)
		key := append([]byte(nil), top.it.Key()...)
		ts, tombstoneCapable := top.it.(tombstoner)
		tombstoned := tombstoneCapable && ts.IsTombstone()

		for m.h.Len() > 0 && bytes.Equal(m.h[0].it.Key(), key) {
			dup := heap.Pop(&m.h).(*mergeItem)
			if err := dup.it.Next(); err == nil && dup.it.IsValid() {
				heap.Push(&m.h, dup)
			}
		}

		if !tombstoned {
			m.current = top
			m.key = key
			m.value = append([]byte(nil), top.it.Value()...)
			return
		}

		if err := top.it.Next(); err == nil && top.it.IsValid() {
			heap.Push(&m.h, top)
		}
	}
}

// Key returns the current merged entry's key.
func (m *MergeIterator) Key() []byte { return m.key }

// Value returns the current merged entry's value.
func (m *MergeIterator) Value() []byte { return m.value }

// IsValid reports whether the iterator is positioned at an entry.
func (m *MergeIterator) IsValid() bool { return m.current != nil }

// Next advances past the current winning entry, re-queuing its source
// iterator if it has more entries.
func (m *MergeIterator) Next() error {
	if m.current == nil {
		return nil
	}
	if err := m.current.it.Next(); err != nil {
		return err
	}
	if m.current.it.IsValid() {
		heap.Push(&m.h, m.current)
	}
	m.advance()
	return nil
}
