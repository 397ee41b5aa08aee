package block

import "testing"

func TestBuilderFillExactly(t *testing.T) {
	// Each entry ("k1","v1") etc. costs 2+2+2+2 = 8 bytes (keylen+key+vallen+val)
	// plus a 2-byte offset slot = 10 bytes; three entries = 30; +2 count = 32.
	b := NewBuilder(32)

	for i, kv := range [][2]string{{"k1", "v1"}, {"k2", "v2"}, {"k3", "v3"}} {
		if !b.Add([]byte(kv[0]), []byte(kv[1])) {
			t.Fatalf("entry %d unexpectedly rejected", i)
		}
	}

	if b.Add([]byte("k4"), []byte("v4")) {
		t.Fatalf("expected fourth entry to be rejected")
	}

	blk := b.Build()
	if blk.NumEntries() != 3 {
		t.Fatalf("expected 3 entries in built block, got %d", blk.NumEntries())
	}
}

func TestBuilderRejectionLeavesStateUnchanged(t *testing.T) {
	b := NewBuilder(20)

	if !b.Add([]byte("aa"), []byte("1")) {
		t.Fatalf("expected first add to succeed")
	}

	sizeBefore := b.Size()
	emptyBefore := b.IsEmpty()

	if b.Add([]byte("bb"), []byte("this value is far too long to fit")) {
		t.Fatalf("expected oversized add to be rejected")
	}

	if b.Size() != sizeBefore || b.IsEmpty() != emptyBefore {
		t.Fatalf("builder state changed after a rejected add")
	}
}

func TestOversizedEntryRejectedByEmptyBuilder(t *testing.T) {
	b := NewBuilder(16)

	if b.Add([]byte("a-very-long-key-that-does-not-fit"), []byte("v")) {
		t.Fatalf("expected oversized single entry to be rejected")
	}
	if !b.IsEmpty() {
		t.Fatalf("expected builder to remain empty")
	}
}

func TestBuilderSizeIncludesCount(t *testing.T) {
	b := NewBuilder(4096)
	if b.Size() != 2 {
		t.Fatalf("expected empty builder size 2 (count field only), got %d", b.Size())
	}

	b.Add([]byte("a"), []byte("1"))
	// 2+1 (key) + 2+1 (value) + 2 (offset) + 2 (count) = 10
	if b.Size() != 10 {
		t.Fatalf("expected size 10 after one entry, got %d", b.Size())
	}
}
