package search

import (
	"math/rand"
	"testing"

	"coreindex/kv"
)

func sortedData(n int) []kv.KeyValue[uint64] {
	data := make([]kv.KeyValue[uint64], n)
	k := uint64(0)
	for i := range data {
		k += uint64(rand.Intn(5)) // allow duplicates
		data[i] = kv.KeyValue[uint64]{Key: k, Payload: uint64(i)}
	}
	return data
}

func reference(data []kv.KeyValue[uint64], begin, end int, key uint64) int {
	i := begin
	for i < end && data[i].Key < key {
		i++
	}
	return i
}

func TestSearchersAgreeWithReference(t *testing.T) {
	searchers := []Searcher[uint64]{
		Linear[uint64]{},
		BranchingBinary[uint64]{},
		Exponential[uint64]{},
		Interpolation[uint64]{},
		LinearAVX[uint64]{},
	}

	for trial := 0; trial < 50; trial++ {
		data := sortedData(1 + rand.Intn(200))
		for q := 0; q < 20; q++ {
			var key uint64
			if len(data) > 0 && rand.Intn(2) == 0 {
				key = data[rand.Intn(len(data))].Key
			} else {
				key = uint64(rand.Intn(1000))
			}

			want := reference(data, 0, len(data), key)
			for _, s := range searchers {
				hint := 0
				if len(data) > 0 {
					hint = rand.Intn(len(data) + 1)
				}
				got := s.LowerBound(data, 0, len(data), key, hint)
				if got != want {
					t.Fatalf("%s: LowerBound(key=%d) = %d, want %d (n=%d)", s.Name(), key, got, want, len(data))
				}
			}
		}
	}
}

func TestLinearSearchEmptyRange(t *testing.T) {
	data := sortedData(10)
	s := Linear[uint64]{}
	if got := s.LowerBound(data, 3, 3, 5, 3); got != 3 {
		t.Fatalf("empty range should return begin==end, got %d", got)
	}
}
