// Package block implements the smallest unit of I/O in the LSM tree: a
// packed, sorted run of key-value entries plus an offset index that lets a
// caller binary-search it without decoding every entry.
package block

import (
	"encoding/binary"
	"errors"
)

// ErrCorruptBlock is returned by Decode when the input bytes are too short
// to hold the claimed entry count, or the offsets they encode fall outside
// the data region.
var ErrCorruptBlock = errors.New("block: corrupt")

// Block is an immutable, in-memory decoded block: the concatenated entry
// bytes (data) plus the byte offset of each entry's start within data, in
// insertion (ascending-key) order.
//
// On-disk layout produced by Encode:
//
//	| Entry 0 | Entry 1 | ... | Entry N-1 | offset N-1 | ... | offset 0 | N |
//	|<--------------- data --------------->|<---- offsets, reversed --->|u16|
//
// Each Entry is `u16 BE key_len | key | u16 BE value_len | value`. The
// offset section is written in reverse (entry N-1 first) to match the
// source format this spec preserves bit-exactly; Decode undoes the reversal
// so that in memory offsets[i] is always the start of Entry i.
type Block struct {
	data    []byte
	offsets []uint16
}

// New wraps already-decoded data and offsets, constructing a Block without
// going through Builder or Decode.
func New(data []byte, offsets []uint16) *Block {
	return &Block{data: data, offsets: offsets}
}

// Data returns the raw entry bytes. Exposed for callers (e.g. table) that
// need to slice a block's logical byte range before full decode.
func (b *Block) Data() []byte { return b.data }

// Offsets returns the entry offsets in insertion order.
func (b *Block) Offsets() []uint16 { return b.offsets }

// NumEntries returns the number of key-value entries in the block.
func (b *Block) NumEntries() int { return len(b.offsets) }

// Encode serializes the block to its on-disk byte form.
func (b *Block) Encode() []byte {
	buf := make([]byte, 0, len(b.data)+len(b.offsets)*2+2)
	buf = append(buf, b.data...)

	for i := len(b.offsets) - 1; i >= 0; i-- {
		buf = binary.BigEndian.AppendUint16(buf, b.offsets[i])
	}

	buf = binary.BigEndian.AppendUint16(buf, uint16(len(b.offsets)))
	return buf
}

// Decode parses the on-disk byte form produced by Encode back into a Block.
func Decode(buf []byte) (*Block, error) {
	if len(buf) < 2 {
		return nil, ErrCorruptBlock
	}

	n := int(binary.BigEndian.Uint16(buf[len(buf)-2:]))

	offsetsEnd := len(buf) - 2
	offsetsStart := offsetsEnd - n*2
	if offsetsStart < 0 {
		return nil, ErrCorruptBlock
	}

	offsets := make([]uint16, n)
	for i := 0; i < n; i++ {
		// Offsets were written reversed (entry n-1 first); the i-th offset
		// in insertion order sits at the tail end of the offset section.
		pos := offsetsEnd - (i+1)*2
		offsets[i] = binary.BigEndian.Uint16(buf[pos : pos+2])
	}

	data := buf[:offsetsStart]

	if err := validateOffsets(data, offsets); err != nil {
		return nil, err
	}

	return &Block{data: data, offsets: offsets}, nil
}

// validateOffsets checks the structural invariants a decoded block must satisfy:
// strictly increasing offsets starting at 0, and entries that fit within
// data without overrunning it.
func validateOffsets(data []byte, offsets []uint16) error {
	if len(offsets) == 0 {
		return nil
	}

	if offsets[0] != 0 {
		return ErrCorruptBlock
	}

	for i, off := range offsets {
		if int(off) > len(data) {
			return ErrCorruptBlock
		}
		if i > 0 && off <= offsets[i-1] {
			return ErrCorruptBlock
		}

		end, ok := entryEnd(data, int(off))
		if !ok {
			return ErrCorruptBlock
		}
		if i == len(offsets)-1 && end != len(data) {
			return ErrCorruptBlock
		}
	}

	return nil
}

// entryEnd returns the byte offset immediately past the entry starting at
// off, validating that its key/value length headers don't overrun data.
func entryEnd(data []byte, off int) (int, bool) {
	if off+2 > len(data) {
		return 0, false
	}
	keyLen := int(binary.BigEndian.Uint16(data[off : off+2]))
	pos := off + 2 + keyLen
	if pos+2 > len(data) {
		return 0, false
	}
	valLen := int(binary.BigEndian.Uint16(data[pos : pos+2]))
	pos += 2 + valLen
	if pos > len(data) {
		return 0, false
	}
	return pos, true
}

// EntryAt decodes the key and value of the entry starting at byte offset
// off within data. Callers (BlockIterator) are expected to only pass
// offsets drawn from a validated Block's Offsets().
func EntryAt(data []byte, off uint16) (key, value []byte) {
	pos := int(off)
	keyLen := int(binary.BigEndian.Uint16(data[pos : pos+2]))
	pos += 2
	key = data[pos : pos+keyLen]
	pos += keyLen
	valLen := int(binary.BigEndian.Uint16(data[pos : pos+2]))
	pos += 2
	value = data[pos : pos+valLen]
	return key, value
}
