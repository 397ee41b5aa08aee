package table

import (
	"bytes"
	"encoding/binary"

	"github.com/kvsst/lsmtable/block"
	"github.com/kvsst/lsmtable/iterators"
)

const footerSize = 4

// SsTable parses and serves an immutable sorted table file: fixed-size
// block slots followed by a meta-index that enables O(log N) block lookup
// by key.
type SsTable struct {
	file            *FileObject
	blockMetas      []Meta
	blockMetaOffset uint32
	cache           *BlockCache
}

// Open parses an SST's footer and meta region from file. cache is an
// optional, currently-unconsulted collaborator; pass nil if
// none is available.
func Open(file *FileObject, cache *BlockCache) (*SsTable, error) {
	size := file.Size()
	if size < footerSize {
		return nil, ErrCorruptTable
	}

	footer, err := file.Read(size-footerSize, footerSize)
	if err != nil {
		return nil, err
	}
	blockMetaOffset := binary.BigEndian.Uint32(footer)

	if int64(blockMetaOffset) > size-footerSize {
		return nil, ErrCorruptTable
	}

	metaBuf, err := file.Read(int64(blockMetaOffset), size-footerSize-int64(blockMetaOffset))
	if err != nil {
		return nil, err
	}

	metas, err := decodeMetas(metaBuf)
	if err != nil {
		return nil, err
	}
	if len(metas) == 0 {
		return nil, ErrCorruptTable
	}

	return &SsTable{
		file:            file,
		blockMetas:      metas,
		blockMetaOffset: blockMetaOffset,
		cache:           cache,
	}, nil
}

// OpenTable is a convenience wrapper that opens the file at path and parses
// it into an SsTable in one step.
func OpenTable(path string, cache *BlockCache) (*SsTable, error) {
	file, err := OpenFile(path)
	if err != nil {
		return nil, err
	}

	sst, err := Open(file, cache)
	if err != nil {
		file.Close()
		return nil, err
	}
	return sst, nil
}

// ReadBlock reads and decodes data block i. The block's byte range within
// the file is [i*SlotSize, blockMetas[i].Offset) — the slot start through
// the block's logical end, excluding padding.
func (t *SsTable) ReadBlock(i int) (*block.Block, error) {
	slotStart := int64(i) * SlotSize
	end := int64(t.blockMetas[i].Offset)

	buf, err := t.file.Read(slotStart, end-slotStart)
	if err != nil {
		return nil, err
	}

	return block.Decode(buf)
}

// ReadBlockCached is the designated extension point for a block cache:
// when a real block cache is wired in, this should consult it before
// falling through to ReadBlock and must return byte-identical Blocks. No
// cache implementation is in scope here, so it always delegates.
func (t *SsTable) ReadBlockCached(i int) (*block.Block, error) {
	return t.ReadBlock(i)
}

// FindBlockIdx returns the index of the unique block that may contain key:
// the last block whose FirstKey <= key, or 0 if key sorts before every
// block's FirstKey.
func (t *SsTable) FindBlockIdx(key []byte) int {
	j := iterators.SeekFirstGE(len(t.blockMetas), func(i int) bool {
		return bytes.Compare(t.blockMetas[i].FirstKey, key) <= 0
	})
	// j is now the first index whose FirstKey > key; the candidate block is
	// j-1, clamped to 0.
	if j == 0 {
		return 0
	}
	return j - 1
}

// NumOfBlocks returns the number of data blocks in the table.
func (t *SsTable) NumOfBlocks() int {
	return len(t.blockMetas)
}

// BlockMetas exposes the parsed meta-index to callers outside the package,
// such as cmd/sstdump.
func (t *SsTable) BlockMetas() []Meta {
	return t.blockMetas
}

// Close releases the underlying file handle.
func (t *SsTable) Close() error {
	return t.file.Close()
}
