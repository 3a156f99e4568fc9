package cht

import (
	"math/rand"
	"testing"

	"coreindex/kv"
)

func makeData(keys []uint64) []kv.KeyValue[uint64] {
	data := make([]kv.KeyValue[uint64], len(keys))
	for i, k := range keys {
		data[i] = kv.KeyValue[uint64]{Key: k, Payload: uint64(i)}
	}
	return data
}

// Scenario #1 from spec.md §8: 100 keys {0,10,...,990}, num_bins=64,
// max_error=4, GetSearchBound(424) = [42, 47).
func TestScenario1(t *testing.T) {
	keys := make([]uint64, 100)
	for i := range keys {
		keys[i] = uint64(i) * 10
	}
	data := makeData(keys)

	idx, err := Build(data, Config{NumBins: 64, MaxError: 4})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	b := idx.GetSearchBound(424)
	if b.Begin != 42 || b.End != 47 {
		t.Fatalf("GetSearchBound(424) = [%d,%d), want [42,47)", b.Begin, b.End)
	}
	if keys[42] != 420 || keys[43] != 430 {
		t.Fatalf("unexpected key layout: keys[42]=%d keys[43]=%d", keys[42], keys[43])
	}
}

// Scenario #2: GetSearchBound(5) = [0, 5).
func TestScenario2(t *testing.T) {
	keys := make([]uint64, 100)
	for i := range keys {
		keys[i] = uint64(i) * 10
	}
	data := makeData(keys)

	idx, err := Build(data, Config{NumBins: 64, MaxError: 4})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	b := idx.GetSearchBound(5)
	if b.Begin != 0 || b.End != 5 {
		t.Fatalf("GetSearchBound(5) = [%d,%d), want [0,5)", b.Begin, b.End)
	}
}

func TestContainmentAndErrorBound(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	n := 5000
	keys := make([]uint64, n)
	k := uint64(0)
	for i := 0; i < n; i++ {
		k += uint64(rng.Intn(7) + 1)
		keys[i] = k
	}
	data := makeData(keys)

	for _, cfg := range []Config{
		{NumBins: 16, MaxError: 8},
		{NumBins: 64, MaxError: 4},
		{NumBins: 256, MaxError: 16, CacheOblivious: true},
	} {
		idx, err := Build(data, cfg)
		if err != nil {
			t.Fatalf("Build(%+v): %v", cfg, err)
		}

		for trial := 0; trial < 500; trial++ {
			qi := rng.Intn(n)
			key := keys[qi]

			truePos := lowerBound(keys, key)
			bound := idx.GetSearchBound(key)

			if bound.Width() > cfg.MaxError+1 {
				t.Fatalf("cfg=%+v key=%d: width %d > max_error+1 %d", cfg, key, bound.Width(), cfg.MaxError+1)
			}
			if truePos < bound.Begin || truePos >= bound.End {
				if !(bound.Begin == bound.End && truePos == bound.Begin) {
					t.Fatalf("cfg=%+v key=%d: true pos %d not in [%d,%d)", cfg, key, truePos, bound.Begin, bound.End)
				}
			}
		}
	}
}

func lowerBound(keys []uint64, key uint64) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := (lo + hi) / 2
		if keys[mid] < key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func TestEdgeCases(t *testing.T) {
	keys := []uint64{10, 20, 30, 40, 50}
	data := makeData(keys)
	idx, err := Build(data, Config{NumBins: 4, MaxError: 1})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if b := idx.GetSearchBound(5); b.Begin != 0 {
		t.Fatalf("key below min: begin=%d, want 0", b.Begin)
	}
	if b := idx.GetSearchBound(1000); b.End != len(keys) {
		t.Fatalf("key above max: end=%d, want %d", b.End, len(keys))
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	if err := (Config{NumBins: 3, MaxError: 1}).Validate(); err == nil {
		t.Fatalf("expected error for non-power-of-two num_bins")
	}
	if err := (Config{NumBins: 4, MaxError: 1, SinglePass: true, CacheOblivious: true}).Validate(); err == nil {
		t.Fatalf("expected error for single_pass+cache_oblivious combination")
	}
}

func TestBuilderMatchesBuild(t *testing.T) {
	keys := make([]uint64, 300)
	for i := range keys {
		keys[i] = uint64(i) * 3
	}
	data := makeData(keys)
	cfg := Config{NumBins: 32, MaxError: 6}

	want, err := Build(data, cfg)
	if err != nil {
		t.Fatal(err)
	}

	b := NewBuilder[uint64](cfg)
	for _, d := range data {
		b.AddKey(d.Key, d.Payload)
	}
	got, err := b.Finalize()
	if err != nil {
		t.Fatal(err)
	}

	for _, probe := range []uint64{0, 5, 300, 450, 897} {
		if want.GetSearchBound(probe) != got.GetSearchBound(probe) {
			t.Fatalf("builder/build mismatch at key=%d", probe)
		}
	}
}

func TestUnsortedInputPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unsorted input")
		}
	}()
	data := makeData([]uint64{5, 3, 10})
	_, _ = Build(data, Config{NumBins: 4, MaxError: 1})
}
