package block

import "encoding/binary"

// sizes of the fixed-width fields an encoded entry and its offset slot
// contribute to a block's total byte budget.
const (
	keyLenSize    = 2
	valLenSize    = 2
	offsetSize    = 2
	countSize     = 2
	entryOverhead = keyLenSize + valLenSize
)

type bufferedEntry struct {
	key   []byte
	value []byte
}

// Builder accumulates sorted key-value pairs until a target byte budget (the
// block size) would be exceeded, then emits an immutable Block. A Builder is
// single-use: call Build exactly once.
type Builder struct {
	entries     []bufferedEntry
	currentSize int // data + offsets, excludes the trailing count field
	targetSize  int
}

// NewBuilder creates a builder targeting blockSize encoded bytes.
func NewBuilder(blockSize int) *Builder {
	return &Builder{targetSize: blockSize}
}

// Add appends a key-value pair if doing so would keep the block's total
// encoded size (data + offsets + count) within the target budget. It
// returns false, leaving the builder's state unchanged, if the entry would
// overflow the block — the caller must start a new block.
func (b *Builder) Add(key, value []byte) bool {
	pairSize := entryOverhead + len(key) + len(value)
	projected := b.currentSize + pairSize + offsetSize + countSize
	if projected > b.targetSize {
		return false
	}

	b.entries = append(b.entries, bufferedEntry{key: key, value: value})
	b.currentSize += pairSize + offsetSize
	return true
}

// IsEmpty reports whether no entry has been accepted yet.
func (b *Builder) IsEmpty() bool {
	return len(b.entries) == 0
}

// Size returns the builder's current projected encoded size, including the
// trailing entry count field.
func (b *Builder) Size() int {
	return b.currentSize + countSize
}

// Build consumes the builder and returns the finished Block. Calling Build
// on an empty builder is a programming error left to the caller to avoid
// ("Never emit an empty block").
func (b *Builder) Build() *Block {
	offsets := make([]uint16, len(b.entries))
	data := make([]byte, 0, b.currentSize-len(b.entries)*offsetSize)

	var cur uint16
	for i, e := range b.entries {
		offsets[i] = cur
		entrySize := entryOverhead + len(e.key) + len(e.value)
		cur += uint16(entrySize)

		data = binary.BigEndian.AppendUint16(data, uint16(len(e.key)))
		data = append(data, e.key...)
		data = binary.BigEndian.AppendUint16(data, uint16(len(e.value)))
		data = append(data, e.value...)
	}

	return &Block{data: data, offsets: offsets}
}
