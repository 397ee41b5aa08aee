// Package walcore is the crash-recovery log ahead of the memtable: every
// Put/Delete is appended here before it is visible to readers, so a
// restart can replay the log and rebuild the memtable without having to
// consult an SsTable.
package walcore

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

// MaxRecordSize bounds a single WAL record so one runaway write can't blow
// out a whole segment.
const MaxRecordSize = 16 << 20

// ErrCorruptRecord is returned by Decode when a record's checksum does not
// match its payload, or its length fields are impossible.
var ErrCorruptRecord = fmt.Errorf("walcore: corrupt record")

// Op is the kind of mutation a record describes.
type Op uint8

const (
	OpPut Op = iota
	OpDelete
)

// Record is one logged mutation: a Put carries both Key and Value, a
// Delete carries only Key.
type Record struct {
	Op    Op
	Key   []byte
	Value []byte
}

// Encode serializes r to its on-disk form:
//
//	CHECKSUM (8, xxhash64) | TOTAL_LEN (4) | OP (1) | KEY_LEN (4) | KEY | VAL_LEN (4) | VALUE
//
// CHECKSUM covers TOTAL_LEN through the end of VALUE. The record is built
// fully in memory before anything is written: segmentmanager hands writers
// a plain io.Writer, not a seekable one, so there's no way to patch a
// placeholder checksum back in after the fact, and buffering the
// (length-bounded) record is the simpler fit anyway.
func (r Record) Encode() ([]byte, error) {
	keyLen := uint32(len(r.Key))
	valLen := uint32(len(r.Value))
	payloadLen := 1 + 4 + keyLen + 4 + valLen
	totalLen := 4 + payloadLen

	if totalLen > MaxRecordSize {
		return nil, fmt.Errorf("walcore: record of %d bytes exceeds MaxRecordSize", totalLen)
	}

	buf := make([]byte, 8+totalLen)
	binary.BigEndian.PutUint32(buf[8:12], totalLen)
	buf[12] = byte(r.Op)
	binary.BigEndian.PutUint32(buf[13:17], keyLen)
	copy(buf[17:17+keyLen], r.Key)
	valOff := 17 + keyLen
	binary.BigEndian.PutUint32(buf[valOff:valOff+4], valLen)
	copy(buf[valOff+4:], r.Value)

	binary.BigEndian.PutUint64(buf[0:8], xxhash.Sum64(buf[8:]))
	return buf, nil
}

// Decode reads one record from r, returning io.EOF once the stream is
// exhausted cleanly at a record boundary.
func Decode(r io.Reader) (Record, error) {
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return Record{}, io.EOF
		}
		return Record{}, err
	}

	storedChecksum := binary.BigEndian.Uint64(header[0:8])
	totalLen := binary.BigEndian.Uint32(header[8:12])
	if totalLen > MaxRecordSize || totalLen < 5 {
		return Record{}, ErrCorruptRecord
	}

	payload := make([]byte, totalLen)
	binary.BigEndian.PutUint32(payload[0:4], totalLen)
	if _, err := io.ReadFull(r, payload[4:]); err != nil {
		return Record{}, io.EOF
	}

	if xxhash.Sum64(payload) != storedChecksum {
		return Record{}, ErrCorruptRecord
	}

	pos := 4
	var rec Record
	rec.Op = Op(payload[pos])
	pos++

	keyLen := binary.BigEndian.Uint32(payload[pos:])
	pos += 4
	if uint32(len(payload)-pos) < keyLen {
		return Record{}, ErrCorruptRecord
	}
	rec.Key = append([]byte(nil), payload[pos:pos+int(keyLen)]...)
	pos += int(keyLen)

	valLen := binary.BigEndian.Uint32(payload[pos:])
	pos += 4
	if uint32(len(payload)-pos) < valLen {
		return Record{}, ErrCorruptRecord
	}
	rec.Value = append([]byte(nil), payload[pos:pos+int(valLen)]...)

	return rec, nil
}
