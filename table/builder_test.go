package table

import (
	"fmt"
	"path/filepath"
	"testing"
)

func TestBuilderRejectsOversizedEntry(t *testing.T) {
	dir := t.TempDir()
	b := NewBuilder(16)

	err := b.Add([]byte("a-key-too-long-to-ever-fit"), []byte("v"))
	if err != ErrOversizedEntry {
		t.Fatalf("expected ErrOversizedEntry, got %v", err)
	}

	// The rejection must not have pushed an empty block into the builder.
	if len(b.dataBlocks) != 0 || len(b.metas) != 0 {
		t.Fatalf("expected no blocks or metas after a rejected add, got %d blocks, %d metas", len(b.dataBlocks), len(b.metas))
	}

	// The table must still build (zero entries is fine for this check; the
	// builder should not be left in a broken state by the failed Add).
	if err := b.Add([]byte("ok"), []byte("v")); err != nil {
		t.Fatalf("expected subsequent add to succeed, got %v", err)
	}

	if _, err := b.Build(filepath.Join(dir, "t.sst")); err != nil {
		t.Fatalf("build failed: %v", err)
	}
}

func TestBuilderRollsOverBlocks(t *testing.T) {
	dir := t.TempDir()
	b := NewBuilder(64)

	for i := 0; i < 20; i++ {
		key := []byte(fmt.Sprintf("key%03d", i))
		val := []byte(fmt.Sprintf("val%03d", i))
		if err := b.Add(key, val); err != nil {
			t.Fatalf("add %d failed: %v", i, err)
		}
	}

	sst, err := b.Build(filepath.Join(dir, "rollover.sst"))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer sst.Close()

	if sst.NumOfBlocks() < 2 {
		t.Fatalf("expected multiple blocks, got %d", sst.NumOfBlocks())
	}

	metas := sst.BlockMetas()
	for i := 1; i < len(metas); i++ {
		if string(metas[i].FirstKey) <= string(metas[i-1].FirstKey) {
			t.Fatalf("meta first_keys not strictly ascending at %d", i)
		}
	}
}
