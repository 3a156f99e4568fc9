package cht

import "testing"

// The streaming (single-pass) builder grows a different tree shape than the
// offline two-pass Build -- it prunes at Finalize rather than while
// recursively bucketing pre-counted bins -- but both must answer GetSearchBound identically
// for the same data, since both describe the same CHT in spec.md §4.2.
func TestStreamingBuilderMatchesOffline(t *testing.T) {
	keys := make([]uint64, 300)
	for i := range keys {
		keys[i] = uint64(i) * 3
	}
	data := makeData(keys)
	cfg := Config{NumBins: 32, MaxError: 6, SinglePass: true}

	want, err := Build(data, Config{NumBins: 32, MaxError: 6})
	if err != nil {
		t.Fatal(err)
	}

	b := NewStreamingBuilder[uint64](cfg, keys[0], keys[len(keys)-1])
	for _, d := range data {
		b.AddKey(d.Key, d.Payload)
	}
	got, err := b.Finalize()
	if err != nil {
		t.Fatal(err)
	}

	for _, probe := range []uint64{0, 5, 300, 450, 897} {
		if want.GetSearchBound(probe) != got.GetSearchBound(probe) {
			t.Fatalf("streaming/offline mismatch at key=%d: want %+v got %+v",
				probe, want.GetSearchBound(probe), got.GetSearchBound(probe))
		}
	}
}

// Duplicate-heavy input (away from minKey, which always short-circuits to
// [0,MaxError+1) regardless of builder) exercises the same "bin packed with
// more keys than its own address range" corner case BuildOffline
// special-cases, just reached via incrementTable/pruneAndFlatten instead.
func TestStreamingBuilderDuplicates(t *testing.T) {
	keys := []uint64{0, 1, 1, 1, 1, 1, 2, 3}
	data := makeData(keys)
	cfg := Config{NumBins: 2, MaxError: 1, SinglePass: true}

	b := NewStreamingBuilder[uint64](cfg, 0, 3)
	for _, d := range data {
		b.AddKey(d.Key, d.Payload)
	}
	idx, err := b.Finalize()
	if err != nil {
		t.Fatal(err)
	}

	for _, key := range []uint64{0, 1, 2, 3} {
		truePos := lowerBound(keys, key)
		bound := idx.GetSearchBound(key)
		if truePos < bound.Begin || truePos >= bound.End {
			t.Fatalf("key=%d: true pos %d not in [%d,%d)", key, truePos, bound.Begin, bound.End)
		}
	}
}

func TestStreamingBuilderRejectsUnsortedKeys(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on decreasing key")
		}
	}()
	b := NewStreamingBuilder[uint64](Config{NumBins: 4, MaxError: 1, SinglePass: true}, 0, 10)
	b.AddKey(5, 0)
	b.AddKey(3, 1)
}

func TestNewBuilderRejectsSinglePass(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic constructing a two-pass Builder with SinglePass set")
		}
	}()
	_ = NewBuilder[uint64](Config{NumBins: 4, MaxError: 1, SinglePass: true})
}
