package engine

import (
	"testing"

	"coreindex/cht"
	"coreindex/kv"
	"coreindex/search"
	"coreindex/trienspline"
)

func makeData(keys []uint64) []kv.KeyValue[uint64] {
	data := make([]kv.KeyValue[uint64], len(keys))
	for i, k := range keys {
		data[i] = kv.KeyValue[uint64]{Key: k, Payload: uint64(i)}
	}
	return data
}

func TestCHTIndexLookupAndRange(t *testing.T) {
	keys := make([]uint64, 100)
	for i := range keys {
		keys[i] = uint64(i) * 10
	}
	data := makeData(keys)

	idx, err := BuildCHT(data, cht.Config{NumBins: 64, MaxError: 4}, search.Linear[uint64]{})
	if err != nil {
		t.Fatalf("BuildCHT: %v", err)
	}
	if idx.Name() != "CHT/Linear" {
		t.Fatalf("Name() = %q, want CHT/Linear", idx.Name())
	}

	if v := idx.EqualityLookup(420); v != 42 {
		t.Fatalf("EqualityLookup(420) = %d, want 42", v)
	}
	if v := idx.EqualityLookup(425); v != kv.NotFound {
		t.Fatalf("EqualityLookup(425) = %d, want NotFound", v)
	}
	if v := idx.EqualityLookup(100000); v != kv.Overflow {
		t.Fatalf("EqualityLookup(100000) = %d, want Overflow", v)
	}

	if got, want := idx.RangeQuery(0, 0), uint64(0); got != want {
		t.Fatalf("RangeQuery(0,0) = %d, want %d", got, want)
	}
	if got, want := idx.RangeQuery(0, 20), uint64(0+1+2); got != want {
		t.Fatalf("RangeQuery(0,20) = %d, want %d", got, want)
	}
	if got := idx.RangeQuery(10000, 10); got != 0 {
		t.Fatalf("RangeQuery with low>high = %d, want 0", got)
	}

	if !idx.Applicable(true, true, false, true) {
		t.Fatal("Applicable should allow non-insert combinations")
	}
	if idx.Applicable(true, true, true, true) {
		t.Fatal("Applicable should reject insert")
	}
}

func TestTrieSplineIndexLookup(t *testing.T) {
	keys := make([]uint64, 500)
	for i := range keys {
		keys[i] = uint64(i) * 3
	}
	data := makeData(keys)

	idx, err := BuildTrieSpline(data, trienspline.Config{SplineMaxError: 16}, search.Exponential[uint64]{})
	if err != nil {
		t.Fatalf("BuildTrieSpline: %v", err)
	}

	for _, i := range []int{0, 50, 250, 499} {
		if v := idx.EqualityLookup(keys[i]); v != int64(i) {
			t.Fatalf("EqualityLookup(%d) = %d, want %d", keys[i], v, i)
		}
	}
	if v := idx.EqualityLookup(keys[10] + 1); v != kv.NotFound {
		t.Fatalf("EqualityLookup(%d) = %d, want NotFound", keys[10]+1, v)
	}

	sum := idx.RangeQuery(keys[10], keys[20])
	var want uint64
	for i := 10; i <= 20; i++ {
		want += data[i].Payload
	}
	if sum != want {
		t.Fatalf("RangeQuery = %d, want %d", sum, want)
	}
}

func TestFASTIndexLookup(t *testing.T) {
	keys := make([]uint64, 1000)
	for i := range keys {
		keys[i] = uint64(i) * 2
	}
	data := makeData(keys)

	idx, err := BuildFAST(data)
	if err != nil {
		t.Fatalf("BuildFAST: %v", err)
	}
	if idx.Name() != "FAST" {
		t.Fatalf("Name() = %q, want FAST", idx.Name())
	}

	if v := idx.EqualityLookup(200); v != 100 {
		t.Fatalf("EqualityLookup(200) = %d, want 100", v)
	}
	if v := idx.EqualityLookup(201); v != kv.NotFound {
		t.Fatalf("EqualityLookup(201) = %d, want NotFound", v)
	}

	sum := idx.RangeQuery(0, 10)
	if sum != 0+1+2+3+4+5 {
		t.Fatalf("RangeQuery(0,10) = %d, want 15", sum)
	}
}

func TestEmptyIndexes(t *testing.T) {
	data := makeData(nil)

	cidx, err := BuildCHT(data, cht.Config{NumBins: 64, MaxError: 4}, search.Linear[uint64]{})
	if err != nil {
		t.Fatalf("BuildCHT: %v", err)
	}
	if v := cidx.EqualityLookup(1); v != kv.Overflow {
		t.Fatalf("empty CHT EqualityLookup = %d, want Overflow", v)
	}
	if got := cidx.RangeQuery(0, 10); got != 0 {
		t.Fatalf("empty CHT RangeQuery = %d, want 0", got)
	}

	fidx, err := BuildFAST(data)
	if err != nil {
		t.Fatalf("BuildFAST: %v", err)
	}
	if v := fidx.EqualityLookup(1); v != kv.NotFound {
		t.Fatalf("empty FAST EqualityLookup = %d, want NotFound", v)
	}
}
