package memtable

import "testing"

func TestMemTablePutGet(t *testing.T) {
	m := New()

	m.Put([]byte("a"), []byte("1"))
	m.Put([]byte("b"), []byte("2"))

	if v, ok := m.Get([]byte("a")); !ok || string(v) != "1" {
		t.Fatalf("got (%q,%v), want (1,true)", v, ok)
	}
	if _, ok := m.Get([]byte("missing")); ok {
		t.Fatalf("expected missing key to be absent")
	}
}

func TestMemTableOverwrite(t *testing.T) {
	m := New()

	m.Put([]byte("k"), []byte("v1"))
	m.Put([]byte("k"), []byte("v2"))

	v, ok := m.Get([]byte("k"))
	if !ok || string(v) != "v2" {
		t.Fatalf("expected latest value v2, got (%q,%v)", v, ok)
	}
}

func TestMemTableDeleteTombstone(t *testing.T) {
	m := New()

	m.Put([]byte("k"), []byte("v"))
	m.Delete([]byte("k"))

	if _, ok := m.Get([]byte("k")); ok {
		t.Fatalf("expected deleted key to read as absent")
	}
	if !m.Contains([]byte("k")) {
		t.Fatalf("expected tombstone to still be present in the memtable")
	}
}

func TestMemTableApproximateSize(t *testing.T) {
	m := New()
	if m.ApproximateSize() != 0 {
		t.Fatalf("expected 0 initial size")
	}

	m.Put([]byte("ab"), []byte("cde"))
	if m.ApproximateSize() != 5 {
		t.Fatalf("expected size 5, got %d", m.ApproximateSize())
	}

	m.Delete([]byte("z"))
	if m.ApproximateSize() != 6 {
		t.Fatalf("expected size 6, got %d", m.ApproximateSize())
	}
}

func TestMemTableAllOrderedWithTombstones(t *testing.T) {
	m := New()

	m.Put([]byte("c"), []byte("3"))
	m.Put([]byte("a"), []byte("1"))
	m.Put([]byte("b"), []byte("2"))
	m.Delete([]byte("b"))

	var got []Entry
	for e := range m.All() {
		got = append(got, e)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if string(got[0].Key) != "a" || got[0].Tombstone {
		t.Fatalf("entry 0 wrong: %+v", got[0])
	}
	if string(got[1].Key) != "b" || !got[1].Tombstone {
		t.Fatalf("entry 1 wrong: %+v", got[1])
	}
	if string(got[2].Key) != "c" || got[2].Tombstone || string(got[2].Value) != "3" {
		t.Fatalf("entry 2 wrong: %+v", got[2])
	}
}
