// Package engine ties the memtable, write-ahead log, and SsTable layers
// into the single read/write surface the block/table core leaves for a caller to
// build: Put, Get, Delete, Scan, and a Flush that turns buffered writes
// into an immutable table.
package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/kvsst/lsmtable/iterators"
	"github.com/kvsst/lsmtable/memtable"
	"github.com/kvsst/lsmtable/segmentmanager"
	"github.com/kvsst/lsmtable/table"
	"github.com/kvsst/lsmtable/walcore"
)

const (
	defaultBlockSize      = 4096
	defaultFlushThreshold = 4 << 20
	walSubdir             = "wal"
	tablesSubdir          = "tables"
)

// Engine is a single-node, single-process storage engine: one mutable
// memtable backed by a WAL, plus zero or more immutable flushed tables
// consulted oldest-to-newest-shadowed on read.
type Engine struct {
	mu sync.RWMutex

	dir            string
	blockSize      int
	flushThreshold int

	mem *memtable.MemTable
	sm  *segmentmanager.DiskSegmentManager
	wal *walcore.Writer

	tables []*table.SsTable // oldest first
	nextID int
}

// Option configures an Engine at Open time.
type Option func(*Engine)

// WithBlockSize overrides the target size passed to each SsTableBuilder.
func WithBlockSize(n int) Option {
	return func(e *Engine) { e.blockSize = n }
}

// WithFlushThreshold overrides the memtable byte size at which Put/Delete
// trigger an automatic Flush.
func WithFlushThreshold(n int) Option {
	return func(e *Engine) { e.flushThreshold = n }
}

// Open prepares dir as an engine's home: replays its WAL into a fresh
// memtable, then loads any previously flushed tables under dir/tables.
func Open(dir string, opts ...Option) (*Engine, error) {
	e := &Engine{
		dir:            dir,
		blockSize:      defaultBlockSize,
		flushThreshold: defaultFlushThreshold,
		mem:            memtable.New(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := os.MkdirAll(filepath.Join(dir, tablesSubdir), 0o755); err != nil {
		return nil, fmt.Errorf("engine: failed to create tables dir: %w", err)
	}

	sm, err := segmentmanager.NewDiskSegmentManager(filepath.Join(dir, walSubdir))
	if err != nil {
		return nil, fmt.Errorf("engine: failed to open wal: %w", err)
	}
	e.sm = sm

	if err := walcore.Replay(sm, e.mem); err != nil {
		return nil, fmt.Errorf("engine: failed to replay wal: %w", err)
	}
	e.wal = walcore.NewWriter(64, sm)

	if err := e.loadTables(); err != nil {
		return nil, err
	}

	return e, nil
}

func (e *Engine) loadTables() error {
	paths, err := filepath.Glob(filepath.Join(e.dir, tablesSubdir, "*.sst"))
	if err != nil {
		return err
	}
	sort.Strings(paths)

	for _, p := range paths {
		sst, err := table.OpenTable(p, nil)
		if err != nil {
			return fmt.Errorf("engine: failed to open table %s: %w", p, err)
		}
		e.tables = append(e.tables, sst)
		idStr := strings.TrimSuffix(filepath.Base(p), ".sst")
		if id, err := strconv.Atoi(idStr); err == nil && id >= e.nextID {
			e.nextID = id + 1
		}
	}
	return nil
}

// Put writes key=value, durably logging it to the WAL before it becomes
// visible to readers.
func (e *Engine) Put(key, value []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.wal.Append(walcore.Record{Op: walcore.OpPut, Key: key, Value: value}); err != nil {
		return fmt.Errorf("engine: put failed: %w", err)
	}
	e.mem.Put(key, value)
	return e.maybeFlushLocked()
}

// Delete removes key, durably logging a tombstone to the WAL first.
func (e *Engine) Delete(key []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.wal.Append(walcore.Record{Op: walcore.OpDelete, Key: key}); err != nil {
		return fmt.Errorf("engine: delete failed: %w", err)
	}
	e.mem.Delete(key)
	return e.maybeFlushLocked()
}

// Get looks up key, checking the active memtable before falling through to
// flushed tables newest-first.
func (e *Engine) Get(key []byte) ([]byte, bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if v, ok := e.mem.Get(key); ok {
		return v, true, nil
	}
	if e.mem.Contains(key) {
		return nil, false, nil // tombstoned in the active memtable
	}

	for i := len(e.tables) - 1; i >= 0; i-- {
		v, ok, err := getFromTable(e.tables[i], key)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return v, true, nil
		}
	}
	return nil, false, nil
}

func getFromTable(sst *table.SsTable, key []byte) ([]byte, bool, error) {
	it, err := table.NewIteratorAtKey(sst, key)
	if err != nil {
		return nil, false, err
	}
	if it.IsValid() && string(it.Key()) == string(key) {
		return append([]byte(nil), it.Value()...), true, nil
	}
	return nil, false, nil
}

func (e *Engine) maybeFlushLocked() error {
	if e.mem.ApproximateSize() < e.flushThreshold {
		return nil
	}
	return e.flushLocked()
}

// Flush forces the active memtable to disk as a new immutable SsTable,
// regardless of its current size.
func (e *Engine) Flush() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flushLocked()
}

func (e *Engine) flushLocked() error {
	if e.mem.ApproximateSize() == 0 {
		return nil
	}

	b := table.NewBuilder(e.blockSize)
	for rec := range e.mem.All() {
		if rec.Tombstone {
			continue
		}
		if err := b.Add(rec.Key, rec.Value); err != nil {
			return fmt.Errorf("engine: flush failed: %w", err)
		}
	}

	path := filepath.Join(e.dir, tablesSubdir, fmt.Sprintf("%010d.sst", e.nextID))
	e.nextID++

	sst, err := b.Build(path)
	if err != nil {
		return fmt.Errorf("engine: flush build failed: %w", err)
	}
	e.tables = append(e.tables, sst)
	e.mem = memtable.New()

	return e.rotateWALLocked()
}

// rotateWALLocked starts a fresh WAL once the memtable it protected has
// been durably flushed to an SsTable, so replay on the next Open only
// needs to cover writes since the last flush.
func (e *Engine) rotateWALLocked() error {
	if err := e.wal.Close(); err != nil {
		return fmt.Errorf("engine: failed to close wal: %w", err)
	}

	walDir := filepath.Join(e.dir, walSubdir)
	if err := os.RemoveAll(walDir); err != nil {
		return fmt.Errorf("engine: failed to clear wal: %w", err)
	}

	sm, err := segmentmanager.NewDiskSegmentManager(walDir)
	if err != nil {
		return fmt.Errorf("engine: failed to reopen wal: %w", err)
	}
	e.sm = sm
	e.wal = walcore.NewWriter(64, sm)
	return nil
}

// Scan returns every live key in [start, end) across the memtable and all
// flushed tables, merged and deduplicated with the memtable taking
// precedence on conflicting keys.
func (e *Engine) Scan(start, end []byte) ([]memtable.Entry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var its []iterators.StorageIterator
	its = append(its, memtable.NewIteratorAtKey(e.mem, start))

	for i := len(e.tables) - 1; i >= 0; i-- {
		it, err := table.NewIteratorAtKey(e.tables[i], start)
		if err != nil {
			return nil, err
		}
		its = append(its, it)
	}

	merged := NewMergeIterator(its)

	var out []memtable.Entry
	for merged.IsValid() {
		if end != nil && string(merged.Key()) >= string(end) {
			break
		}
		out = append(out, memtable.Entry{
			Key:   append([]byte(nil), merged.Key()...),
			Value: append([]byte(nil), merged.Value()...),
		})
		if err := merged.Next(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Close releases the WAL and every open table file handle.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.wal.Close(); err != nil {
		return err
	}
	for _, t := range e.tables {
		if err := t.Close(); err != nil {
			return err
		}
	}
	return nil
}
