package fst

import (
	"bytes"
	"testing"

	"coreindex/kv"
)

// Scenario #4 from spec.md §8: {"abca","abcb","ac","adef","adeg","aef","aeg","b"}
// with values 0..7; lookupRange("a", true, "b", false) yields keys in
// order with values 0..6.
func TestScenario4(t *testing.T) {
	keys := []string{"abca", "abcb", "ac", "adef", "adeg", "aef", "aeg", "b"}
	byteKeys := make([][]byte, len(keys))
	payloads := make([]uint64, len(keys))
	for i, k := range keys {
		byteKeys[i] = []byte(k)
		payloads[i] = uint64(i)
	}

	trie, err := Build(byteKeys, payloads)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for i, k := range keys {
		v, ok := trie.EqualityLookup([]byte(k))
		if !ok || v != uint64(i) {
			t.Fatalf("EqualityLookup(%q) = (%d,%v), want (%d,true)", k, v, ok, i)
		}
	}

	it := trie.MoveToKeyGreaterThan([]byte("a"), true)
	var got []string
	var values []uint64
	for it.Valid() {
		key := it.Key()
		if bytes.Compare(key, []byte("b")) >= 0 {
			break
		}
		got = append(got, string(key))
		values = append(values, it.GetValue())
		it.Next()
	}

	want := keys[:7]
	if len(got) != len(want) {
		t.Fatalf("lookupRange(a,true,b,false) got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %q, want %q (full: %v)", i, got[i], want[i], got)
		}
		if values[i] != uint64(i) {
			t.Fatalf("position %d: value %d, want %d", i, values[i], i)
		}
	}
}

func TestScenario4NotFound(t *testing.T) {
	keys := []string{"abca", "abcb", "ac", "adef", "adeg", "aef", "aeg", "b"}
	byteKeys := make([][]byte, len(keys))
	for i, k := range keys {
		byteKeys[i] = []byte(k)
	}
	payloads := make([]uint64, len(keys))
	for i := range payloads {
		payloads[i] = uint64(i)
	}
	trie, err := Build(byteKeys, payloads)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for _, absent := range []string{"ab", "abc", "a", "ade", "z", "aefg"} {
		if _, ok := trie.EqualityLookup([]byte(absent)); ok {
			t.Fatalf("EqualityLookup(%q) unexpectedly found", absent)
		}
	}
}

// Scenario #5 from spec.md §8: {3, 12, 21, 30, ..., 3+9*(n-1)}, lookup
// value = input index of key 3+9*7234.
func TestScenario5(t *testing.T) {
	n := 10000
	data := make([]kv.KeyValue[uint64], n)
	for i := 0; i < n; i++ {
		data[i] = kv.KeyValue[uint64]{Key: uint64(3 + 9*i), Payload: uint64(i)}
	}

	idx, err := BuildInt(data, Config{SparseDenseRatio: 16})
	if err != nil {
		t.Fatalf("BuildInt: %v", err)
	}

	probe := uint64(3 + 9*7234)
	v, ok := idx.EqualityLookup(probe)
	if !ok || v != 7234 {
		t.Fatalf("EqualityLookup(%d) = (%d,%v), want (7234,true)", probe, v, ok)
	}

	if _, ok := idx.EqualityLookup(probe + 1); ok {
		t.Fatalf("EqualityLookup(%d) unexpectedly found", probe+1)
	}
}

// Scenario #7 from spec.md §8: iterator equality test across
// lookupRange("a", true, "b", false) entries: iter.getValue() monotonically
// increasing.
func TestScenario7IteratorMonotonic(t *testing.T) {
	keys := []string{"abca", "abcb", "ac", "adef", "adeg", "aef", "aeg", "b"}
	byteKeys := make([][]byte, len(keys))
	payloads := make([]uint64, len(keys))
	for i, k := range keys {
		byteKeys[i] = []byte(k)
		payloads[i] = uint64(i)
	}
	trie, err := Build(byteKeys, payloads)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	it := trie.MoveToKeyGreaterThan([]byte("a"), true)
	last := int64(-1)
	count := 0
	for it.Valid() {
		if bytes.Compare(it.Key(), []byte("b")) >= 0 {
			break
		}
		v := int64(it.GetValue())
		if v <= last {
			t.Fatalf("iterator values not monotonically increasing: %d after %d", v, last)
		}
		last = v
		count++
		it.Next()
	}
	if count != 7 {
		t.Fatalf("got %d entries, want 7", count)
	}
}

func TestMoveToFirst(t *testing.T) {
	keys := []string{"ba", "bb", "ca"}
	byteKeys := make([][]byte, len(keys))
	payloads := make([]uint64, len(keys))
	for i, k := range keys {
		byteKeys[i] = []byte(k)
		payloads[i] = uint64(i)
	}
	trie, err := Build(byteKeys, payloads)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	it := trie.MoveToFirst()
	var got []string
	for it.Valid() {
		got = append(got, string(it.Key()))
		it.Next()
	}
	if len(got) != 3 || got[0] != "ba" || got[1] != "bb" || got[2] != "ca" {
		t.Fatalf("MoveToFirst walk = %v, want [ba bb ca]", got)
	}
}

func TestPrefixKeys(t *testing.T) {
	keys := []string{"a", "ab", "abc"}
	byteKeys := make([][]byte, len(keys))
	payloads := make([]uint64, len(keys))
	for i, k := range keys {
		byteKeys[i] = []byte(k)
		payloads[i] = uint64(i)
	}
	trie, err := Build(byteKeys, payloads)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for i, k := range keys {
		v, ok := trie.EqualityLookup([]byte(k))
		if !ok || v != uint64(i) {
			t.Fatalf("EqualityLookup(%q) = (%d,%v), want (%d,true)", k, v, ok, i)
		}
	}

	it := trie.MoveToFirst()
	var got []string
	for it.Valid() {
		got = append(got, string(it.Key()))
		it.Next()
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "ab" || got[2] != "abc" {
		t.Fatalf("prefix-key walk = %v, want [a ab abc]", got)
	}
}

func TestEmptyKey(t *testing.T) {
	keys := [][]byte{{}, []byte("x")}
	payloads := []uint64{100, 200}
	trie, err := Build(keys, payloads)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	v, ok := trie.EqualityLookup([]byte{})
	if !ok || v != 100 {
		t.Fatalf("EqualityLookup(empty) = (%d,%v), want (100,true)", v, ok)
	}

	it := trie.MoveToFirst()
	if !it.Valid() || it.GetValue() != 100 {
		t.Fatalf("MoveToFirst should land on empty key first")
	}
	it.Next()
	if !it.Valid() || string(it.Key()) != "x" {
		t.Fatalf("second key should be \"x\", got %q", it.Key())
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	if err := (Config{SparseDenseRatio: 0}).Validate(); err == nil {
		t.Fatalf("expected error for sparse_dense_ratio=0")
	}
}

func TestUnsortedInputPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unsorted input")
		}
	}()
	_, _ = Build([][]byte{[]byte("b"), []byte("a")}, []uint64{0, 1})
}
