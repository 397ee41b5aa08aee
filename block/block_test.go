package block

import (
	"bytes"
	"testing"
)

func buildBlock(t *testing.T, size int, kvs [][2]string) (*Block, int) {
	t.Helper()
	b := NewBuilder(size)
	accepted := 0
	for _, kv := range kvs {
		if !b.Add([]byte(kv[0]), []byte(kv[1])) {
			break
		}
		accepted++
	}
	return b.Build(), accepted
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	blk, n := buildBlock(t, 4096, [][2]string{
		{"aa", "1"}, {"bb", "22"}, {"cc", ""}, {"dd", "4444"},
	})
	if n != 4 {
		t.Fatalf("expected all 4 entries accepted, got %d", n)
	}

	encoded := blk.Encode()
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if !bytes.Equal(decoded.Data(), blk.Data()) {
		t.Fatalf("data mismatch: got %v want %v", decoded.Data(), blk.Data())
	}
	if len(decoded.Offsets()) != len(blk.Offsets()) {
		t.Fatalf("offsets length mismatch")
	}
	for i := range blk.Offsets() {
		if decoded.Offsets()[i] != blk.Offsets()[i] {
			t.Fatalf("offset %d mismatch: got %d want %d", i, decoded.Offsets()[i], blk.Offsets()[i])
		}
	}
}

func TestSingleEntryBlock(t *testing.T) {
	blk, n := buildBlock(t, 64, [][2]string{{"a", "1"}})
	if n != 1 {
		t.Fatalf("expected 1 entry accepted, got %d", n)
	}

	encoded := blk.Encode()
	// data(2+1+2+1=6) + offsets(1*2=2) + count(2) = 10
	if len(encoded) != 10 {
		t.Fatalf("expected encoded length 10, got %d", len(encoded))
	}

	it := NewIteratorAtFirst(blk)
	if !it.IsValid() {
		t.Fatalf("expected valid iterator")
	}
	if string(it.Key()) != "a" {
		t.Fatalf("expected key 'a', got %q", it.Key())
	}
}

func TestDecodeRejectsTooShort(t *testing.T) {
	if _, err := Decode([]byte{0}); err != ErrCorruptBlock {
		t.Fatalf("expected ErrCorruptBlock, got %v", err)
	}
}

func TestDecodeRejectsTruncatedOffsets(t *testing.T) {
	blk, _ := buildBlock(t, 4096, [][2]string{{"aa", "1"}, {"bb", "2"}})
	encoded := blk.Encode()

	// Claim more offsets than actually fit.
	bad := append([]byte(nil), encoded...)
	bad[len(bad)-2] = 0xFF
	bad[len(bad)-1] = 0xFF

	if _, err := Decode(bad); err != ErrCorruptBlock {
		t.Fatalf("expected ErrCorruptBlock, got %v", err)
	}
}

func TestDecodeRejectsOffsetsOutOfBounds(t *testing.T) {
	blk, _ := buildBlock(t, 4096, [][2]string{{"aa", "1"}})
	encoded := blk.Encode()

	// Corrupt the lone offset to point past the data region.
	bad := append([]byte(nil), encoded...)
	bad[len(bad)-4] = 0xFF
	bad[len(bad)-3] = 0xFF

	if _, err := Decode(bad); err != ErrCorruptBlock {
		t.Fatalf("expected ErrCorruptBlock, got %v", err)
	}
}
