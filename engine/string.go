package engine

import (
	"strconv"
	"time"

	"coreindex/fst"
)

// StringIndex is the uniform wrapper over a built FST: the only one of the
// four core engines whose keys are byte strings rather than fixed-width
// integers, and whose lookup is an exact point query rather than a
// SearchBound the caller scans.
type StringIndex struct {
	trie       *fst.Trie
	buildNanos int64
	variant    string
}

// BuildString builds a StringIndex from sorted, non-decreasing keys and
// their payloads.
func BuildString(keys [][]byte, payloads []uint64, cfg fst.Config) (*StringIndex, error) {
	start := time.Now()
	trie, err := fst.BuildWithConfig(keys, payloads, cfg)
	if err != nil {
		return nil, err
	}
	return &StringIndex{
		trie:       trie,
		buildNanos: time.Since(start).Nanoseconds(),
		variant:    fmtSparseDenseRatio(cfg.SparseDenseRatio),
	}, nil
}

func fmtSparseDenseRatio(ratio int) string {
	return "sparse_dense_ratio=" + strconv.Itoa(ratio)
}

// BuildNanos returns the wall-clock build duration.
func (idx *StringIndex) BuildNanos() int64 { return idx.buildNanos }

// EqualityLookup returns the payload for key and true if key was among the
// keys supplied at build time, matching FST's exact-lookup contract
// (spec.md §8 property 1): there is no OVERFLOW case for FST, only found
// or absent.
func (idx *StringIndex) EqualityLookup(key []byte) (uint64, bool) {
	return idx.trie.EqualityLookup(key)
}

// RangeQuery sums the payloads of every stored key in the closed interval
// [low, high].
func (idx *StringIndex) RangeQuery(low, high []byte) uint64 {
	return idx.trie.RangeQuery(low, high)
}

// Name reports the engine name.
func (idx *StringIndex) Name() string { return "FST" }

// Size returns the resident byte size of the trie.
func (idx *StringIndex) Size() int { return idx.trie.ByteSize() }

// Variants returns the build parameter vector this StringIndex was
// constructed with.
func (idx *StringIndex) Variants() []string { return []string{idx.variant} }

// Applicable reports whether this StringIndex supports a combination of
// harness flags. FST supports build-only use through this core; insertion
// is never supported.
func (idx *StringIndex) Applicable(unique, rangeQuery, insert, multithread bool) bool {
	_ = unique
	_ = rangeQuery
	_ = multithread
	return !insert
}
