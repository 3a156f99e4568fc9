package engine

import (
	"testing"

	"coreindex/fst"
)

// Grounded on spec.md §8 scenario #4.
func TestStringIndexLookupAndRange(t *testing.T) {
	keys := []string{"abca", "abcb", "ac", "adef", "adeg", "aef", "aeg", "b"}
	byteKeys := make([][]byte, len(keys))
	payloads := make([]uint64, len(keys))
	for i, k := range keys {
		byteKeys[i] = []byte(k)
		payloads[i] = uint64(i)
	}

	idx, err := BuildString(byteKeys, payloads, fst.Config{SparseDenseRatio: 16})
	if err != nil {
		t.Fatalf("BuildString: %v", err)
	}
	if idx.Name() != "FST" {
		t.Fatalf("Name() = %q, want FST", idx.Name())
	}

	for i, k := range keys {
		v, ok := idx.EqualityLookup([]byte(k))
		if !ok || v != uint64(i) {
			t.Fatalf("EqualityLookup(%q) = (%d,%v), want (%d,true)", k, v, ok, i)
		}
	}
	if _, ok := idx.EqualityLookup([]byte("ad")); ok {
		t.Fatal("EqualityLookup(\"ad\") unexpectedly found")
	}

	if got, want := idx.RangeQuery([]byte("a"), []byte("aeg")), uint64(0+1+2+3+4+5+6); got != want {
		t.Fatalf("RangeQuery = %d, want %d", got, want)
	}
	if got, want := idx.RangeQuery([]byte("a"), []byte("b")), uint64(0+1+2+3+4+5+6+7); got != want {
		t.Fatalf("RangeQuery inclusive of b = %d, want %d", got, want)
	}

	if !idx.Applicable(true, true, false, true) {
		t.Fatal("Applicable should allow non-insert combinations")
	}
	if idx.Applicable(true, true, true, true) {
		t.Fatal("Applicable should reject insert")
	}
}
