package walcore

import (
	"io"
	"os"

	"github.com/kvsst/lsmtable/memtable"
	"github.com/kvsst/lsmtable/segmentmanager"
)

// Replay reads every segment in sm, oldest first, and applies each record
// to m in order, so the final state of m matches everything that was
// durably appended before a restart. A truncated final record (a crash
// mid-write) is treated as the end of the log, not an error.
func Replay(sm *segmentmanager.DiskSegmentManager, m *memtable.MemTable) error {
	segments, err := sm.Segments()
	if err != nil {
		return err
	}

	for _, path := range segments {
		if err := replaySegment(path, m); err != nil {
			return err
		}
	}
	return nil
}

func replaySegment(path string, m *memtable.MemTable) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for {
		rec, err := Decode(f)
		if err == io.EOF {
			return nil
		}
		if err == ErrCorruptRecord {
			return nil
		}
		if err != nil {
			return err
		}

		switch rec.Op {
		case OpPut:
			m.Put(rec.Key, rec.Value)
		case OpDelete:
			m.Delete(rec.Key)
		}
	}
}
