package block

import "testing"

func buildSortedBlock(t *testing.T, keys []string) *Block {
	t.Helper()
	b := NewBuilder(4096)
	for _, k := range keys {
		if !b.Add([]byte(k), []byte("v-"+k)) {
			t.Fatalf("unexpected rejection for key %q", k)
		}
	}
	return b.Build()
}

func TestBlockBinarySearch(t *testing.T) {
	blk := buildSortedBlock(t, []string{"aa", "cc", "ee", "gg"})

	cases := []struct {
		seek string
		want string
		ok   bool
	}{
		{"bb", "cc", true},
		{"ee", "ee", true},
		{"aa", "aa", true},
		{"zz", "", false},
	}

	for _, c := range cases {
		it := NewIteratorAtKey(blk, []byte(c.seek))
		if it.IsValid() != c.ok {
			t.Fatalf("seek(%q): valid=%v want %v", c.seek, it.IsValid(), c.ok)
		}
		if c.ok && string(it.Key()) != c.want {
			t.Fatalf("seek(%q): got key %q want %q", c.seek, it.Key(), c.want)
		}
	}
}

func TestBlockIteratorForwardScan(t *testing.T) {
	keys := []string{"a", "b", "c", "d", "e"}
	blk := buildSortedBlock(t, keys)

	it := NewIteratorAtFirst(blk)
	var got []string
	for it.IsValid() {
		got = append(got, string(it.Key()))
		it.Next()
	}

	if len(got) != len(keys) {
		t.Fatalf("expected %d entries, got %d", len(keys), len(got))
	}
	for i, k := range keys {
		if got[i] != k {
			t.Fatalf("entry %d: got %q want %q", i, got[i], k)
		}
	}
}

func TestBlockIteratorExhaustedIsNoOp(t *testing.T) {
	blk := buildSortedBlock(t, []string{"a"})
	it := NewIteratorAtFirst(blk)
	it.Next()
	if it.IsValid() {
		t.Fatalf("expected iterator to be invalid after exhausting single entry")
	}
	it.Next()
	if it.IsValid() {
		t.Fatalf("expected iterator to remain invalid after further Next calls")
	}
}

func TestSeekToKeyAllKeysLessThanTarget(t *testing.T) {
	blk := buildSortedBlock(t, []string{"a", "b", "c"})
	it := NewIteratorAtKey(blk, []byte("z"))
	if it.IsValid() {
		t.Fatalf("expected invalid iterator when all keys < target")
	}
}
