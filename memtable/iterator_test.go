package memtable

import "testing"

func TestIteratorSurfacesTombstones(t *testing.T) {
	m := New()
	m.Put([]byte("a"), []byte("1"))
	m.Put([]byte("b"), []byte("2"))
	m.Put([]byte("c"), []byte("3"))
	m.Delete([]byte("b"))

	it := NewIterator(m)
	var keys []string
	var tombstoned []bool
	for it.IsValid() {
		keys = append(keys, string(it.Key()))
		tombstoned = append(tombstoned, it.IsTombstone())
		if err := it.Next(); err != nil {
			t.Fatalf("next: %v", err)
		}
	}

	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Fatalf("expected [a b c], got %v", keys)
	}
	if tombstoned[0] || !tombstoned[1] || tombstoned[2] {
		t.Fatalf("expected only b to be a tombstone, got %v", tombstoned)
	}
}

func TestIteratorAtKeySeeksForward(t *testing.T) {
	m := New()
	for _, k := range []string{"a", "c", "e", "g"} {
		m.Put([]byte(k), []byte(k))
	}

	it := NewIteratorAtKey(m, []byte("d"))
	if !it.IsValid() || string(it.Key()) != "e" {
		t.Fatalf("expected seek to land on e, got %q (valid=%v)", it.Key(), it.IsValid())
	}
}

func TestIteratorAtKeyPastEndIsInvalid(t *testing.T) {
	m := New()
	m.Put([]byte("a"), []byte("1"))

	it := NewIteratorAtKey(m, []byte("z"))
	if it.IsValid() {
		t.Fatalf("expected invalid iterator past the end")
	}
}
