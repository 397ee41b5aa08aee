package table

import "encoding/binary"

// Meta is the per-block index entry stored in an SsTable's meta region:
// the byte offset within the table file marking the block's logical end
// (before slot padding), and a verbatim copy of the block's first key.
type Meta struct {
	Offset   uint32
	FirstKey []byte
}

// encodeMetas serializes metas in block order as
// `u32 BE offset | u16 BE key_len | first_key bytes`, concatenated with no
// outer length prefix — the caller (SsTable.Open) supplies the bounded
// region to decode.
func encodeMetas(metas []Meta) []byte {
	size := 0
	for _, m := range metas {
		size += 4 + 2 + len(m.FirstKey)
	}

	buf := make([]byte, 0, size)
	for _, m := range metas {
		buf = binary.BigEndian.AppendUint32(buf, m.Offset)
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(m.FirstKey)))
		buf = append(buf, m.FirstKey...)
	}
	return buf
}

// decodeMetas consumes exactly buf, returning ErrCorruptTable if a length
// header claims more bytes than remain.
func decodeMetas(buf []byte) ([]Meta, error) {
	var metas []Meta
	for len(buf) > 0 {
		if len(buf) < 6 {
			return nil, ErrCorruptTable
		}
		offset := binary.BigEndian.Uint32(buf[0:4])
		keyLen := int(binary.BigEndian.Uint16(buf[4:6]))
		buf = buf[6:]

		if keyLen > len(buf) {
			return nil, ErrCorruptTable
		}
		firstKey := make([]byte, keyLen)
		copy(firstKey, buf[:keyLen])
		buf = buf[keyLen:]

		metas = append(metas, Meta{Offset: offset, FirstKey: firstKey})
	}
	return metas, nil
}
