package table

import (
	"encoding/binary"

	"github.com/kvsst/lsmtable/block"
)

// SlotSize is the fixed byte size every data block occupies in the table
// file, padded with zeros after the block's encoded form. Block i therefore
// begins at file offset i*SlotSize.
//
// The source this spec is drawn from uses 4196 for this constant, which
// is almost certainly a typo for 4096. This implementation
// standardizes on 4096 (see DESIGN.md Open Questions).
const SlotSize = 4096

// Builder constructs an SsTable from sorted key-value pairs. Keys passed to
// Add must be distinct and strictly ascending; the builder does not verify
// this. A Builder is single-use: call Build exactly once.
type Builder struct {
	curBlock   *block.Builder
	dataBlocks []*block.Block
	metas      []Meta
	curStart   uint32
	blockSize  int
	firstKey   []byte
}

// NewBuilder creates a builder targeting blockSize bytes per data block.
// blockSize must not exceed SlotSize.
func NewBuilder(blockSize int) *Builder {
	return &Builder{
		curBlock:  block.NewBuilder(blockSize),
		blockSize: blockSize,
	}
}

// Add appends a key-value pair to the table, rolling over to a new block
// when the current one is full. It returns ErrOversizedEntry if a single
// key-value pair cannot fit in any block.
func (b *Builder) Add(key, value []byte) error {
	if b.curBlock.Add(key, value) {
		if len(b.firstKey) == 0 {
			b.firstKey = append([]byte(nil), key...)
		}
		return nil
	}

	if b.curBlock.IsEmpty() {
		return ErrOversizedEntry
	}

	b.finalizeCurrentBlock()

	if !b.curBlock.Add(key, value) {
		return ErrOversizedEntry
	}
	b.firstKey = append([]byte(nil), key...)
	return nil
}

// finalizeCurrentBlock closes out the block being built: records its
// logical size, pushes the finished Block and its Meta, opens a fresh
// Builder, and advances cur_start by one slot.
func (b *Builder) finalizeCurrentBlock() {
	blockSize := uint32(b.curBlock.Size())
	b.dataBlocks = append(b.dataBlocks, b.curBlock.Build())
	b.metas = append(b.metas, Meta{
		Offset:   b.curStart + blockSize,
		FirstKey: b.firstKey,
	})

	b.curBlock = block.NewBuilder(b.blockSize)
	b.curStart += SlotSize
}

// EstimatedSize returns an approximate byte size of the table built so far,
// counting only full data-block slots (meta/footer overhead is negligible
// by comparison).
func (b *Builder) EstimatedSize() int {
	size := len(b.dataBlocks) * SlotSize
	if !b.curBlock.IsEmpty() {
		size += SlotSize
	}
	return size
}

// Build finalizes any pending block, writes the table image to path, and
// returns the resulting SsTable.
func (b *Builder) Build(path string) (*SsTable, error) {
	data := make([]byte, 0, b.EstimatedSize())

	for _, blk := range b.dataBlocks {
		data = appendPadded(data, blk.Encode())
	}

	metas := b.metas
	blockMetaOffset := b.curStart

	if !b.curBlock.IsEmpty() {
		blockSize := uint32(b.curBlock.Size())
		data = appendPadded(data, b.curBlock.Build().Encode())
		metas = append(metas, Meta{
			Offset:   b.curStart + blockSize,
			FirstKey: b.firstKey,
		})
		blockMetaOffset += SlotSize
	}

	data = append(data, encodeMetas(metas)...)
	data = binary.BigEndian.AppendUint32(data, blockMetaOffset)

	file, err := Create(path, data)
	if err != nil {
		return nil, err
	}

	return &SsTable{
		file:            file,
		blockMetas:      metas,
		blockMetaOffset: blockMetaOffset,
	}, nil
}

func appendPadded(dst, encoded []byte) []byte {
	dst = append(dst, encoded...)
	if pad := SlotSize - len(encoded); pad > 0 {
		dst = append(dst, make([]byte, pad)...)
	}
	return dst
}
