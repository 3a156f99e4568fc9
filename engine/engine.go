// Package engine implements the uniform per-engine surface spec.md §6
// describes: Build, EqualityLookup, RangeQuery, name/size/variants/
// applicable, realised once over all three fixed-width-integer engines
// (CHT, TrieSpline, FAST) so the harness contract has one concrete Go
// shape even though the harness itself is out of scope. FST's byte-string
// keys don't fit the same generic constraint, so it gets its own thin
// wrapper in string.go with the same method names.
//
// Per the "Pluggable searcher policy" design note, CHT and TrieSpline only
// predict a bounded SearchBound; the actual lower-bound position still
// needs a final-mile scan over that bound, which Index delegates to a
// search.Searcher the caller picks at build time. FAST's lower_bound is
// already exact, so Index skips the final-mile scan for it.
package engine

import (
	"fmt"
	"time"

	"coreindex/cht"
	"coreindex/fast"
	"coreindex/kv"
	"coreindex/search"
	"coreindex/trienspline"
)

// Kind identifies which concrete engine an Index wraps.
type Kind int

const (
	KindCHT Kind = iota
	KindTrieSpline
	KindFAST
)

func (k Kind) String() string {
	switch k {
	case KindCHT:
		return "CHT"
	case KindTrieSpline:
		return "TrieSpline"
	case KindFAST:
		return "FAST"
	default:
		return "unknown"
	}
}

// boundedEngine is satisfied by the two engines that predict a search
// range rather than an exact position: cht.Index and trienspline.Index.
type boundedEngine[K kv.Uint] interface {
	GetSearchBound(key K) kv.SearchBound
	Size() int
	ByteSize() int
}

// exactEngine is satisfied by fast.Tree, whose LowerBound is already the
// true answer -- no final-mile scan needed.
type exactEngine[K kv.Uint] interface {
	LowerBound(key K) int
	Size() int
	ByteSize() int
}

// Index is the uniform wrapper over one built CHT, TrieSpline, or FAST
// engine. It is immutable and safe for concurrent read-only use once
// construction returns, per spec.md §5's publication-barrier requirement
// (the Go memory model's happens-before on the constructor's return value
// provides exactly that barrier).
type Index[K kv.Uint] struct {
	kind Kind
	data []kv.KeyValue[K]

	bounded  boundedEngine[K]
	exact    exactEngine[K]
	searcher search.Searcher[K]

	minKey, maxKey K
	buildNanos     int64
	paramVariant   string
}

// BuildCHT builds a CHT-backed Index. searcher performs the final-mile
// scan over the range GetSearchBound predicts.
func BuildCHT[K kv.Uint](data []kv.KeyValue[K], cfg cht.Config, searcher search.Searcher[K]) (*Index[K], error) {
	start := time.Now()
	idx, err := cht.Build(data, cfg)
	if err != nil {
		return nil, err
	}
	wrapped := &Index[K]{
		kind:       KindCHT,
		data:       data,
		bounded:    idx,
		searcher:   searcher,
		buildNanos: time.Since(start).Nanoseconds(),
		paramVariant: fmt.Sprintf("num_bins=%d,max_error=%d,single_pass=%v,cache_oblivious=%v",
			cfg.NumBins, cfg.MaxError, cfg.SinglePass, cfg.CacheOblivious),
	}
	wrapped.setKeyRange()
	return wrapped, nil
}

// BuildTrieSpline builds a TrieSpline-backed Index.
func BuildTrieSpline[K kv.Uint](data []kv.KeyValue[K], cfg trienspline.Config, searcher search.Searcher[K]) (*Index[K], error) {
	start := time.Now()
	idx, err := trienspline.Build(data, cfg)
	if err != nil {
		return nil, err
	}
	wrapped := &Index[K]{
		kind:         KindTrieSpline,
		data:         data,
		bounded:      idx,
		searcher:     searcher,
		buildNanos:   time.Since(start).Nanoseconds(),
		paramVariant: fmt.Sprintf("spline_max_error=%d", cfg.SplineMaxError),
	}
	wrapped.setKeyRange()
	return wrapped, nil
}

// BuildFAST builds a FAST-backed Index. FAST has no tunable parameters and
// no final-mile searcher: LowerBound is already exact.
func BuildFAST[K kv.Uint](data []kv.KeyValue[K]) (*Index[K], error) {
	start := time.Now()
	tree, err := fast.Build(data)
	if err != nil {
		return nil, err
	}
	wrapped := &Index[K]{
		kind:         KindFAST,
		data:         data,
		exact:        tree,
		buildNanos:   time.Since(start).Nanoseconds(),
		paramVariant: "",
	}
	wrapped.setKeyRange()
	return wrapped, nil
}

func (idx *Index[K]) setKeyRange() {
	if len(idx.data) == 0 {
		return
	}
	idx.minKey = idx.data[0].Key
	idx.maxKey = idx.data[len(idx.data)-1].Key
}

// BuildNanos returns the wall-clock build duration, the result spec.md §6
// assigns to Build.
func (idx *Index[K]) BuildNanos() int64 { return idx.buildNanos }

// EqualityLookup returns the payload for key, or kv.NotFound if key is
// absent but within the structure's covered range, or kv.Overflow if key
// falls outside the range the engine's predictor covers at all. FAST has
// no such covered-range concept -- its lower_bound walk is exact over the
// whole key space -- so it only ever returns a payload or kv.NotFound.
func (idx *Index[K]) EqualityLookup(key K) int64 {
	n := len(idx.data)

	var pos int
	switch {
	case idx.bounded != nil:
		if n == 0 || key < idx.minKey || key > idx.maxKey {
			return kv.Overflow
		}
		bound := idx.bounded.GetSearchBound(key)
		pos = idx.searcher.LowerBound(idx.data, bound.Begin, bound.End, key, bound.Begin)
	case idx.exact != nil:
		pos = idx.exact.LowerBound(key)
	default:
		return kv.Overflow
	}

	if pos < n && idx.data[pos].Key == key {
		return int64(idx.data[pos].Payload)
	}
	return kv.NotFound
}

// lowerBound returns the first position i with data[i].Key >= key, used
// internally by RangeQuery to locate the scan's starting point.
func (idx *Index[K]) lowerBound(key K) int {
	if idx.bounded != nil {
		bound := idx.bounded.GetSearchBound(key)
		return idx.searcher.LowerBound(idx.data, bound.Begin, bound.End, key, bound.Begin)
	}
	return idx.exact.LowerBound(key)
}

// RangeQuery sums the payloads of every key in the closed interval
// [low, high], per spec.md §8 property 3. Returns 0 for an empty range.
func (idx *Index[K]) RangeQuery(low, high K) uint64 {
	if len(idx.data) == 0 || low > high {
		return 0
	}
	var sum uint64
	for i := idx.lowerBound(low); i < len(idx.data) && idx.data[i].Key <= high; i++ {
		sum += idx.data[i].Payload
	}
	return sum
}

// Name reports the engine kind and the final-mile searcher it was built
// with, e.g. "CHT/BranchingBinary".
func (idx *Index[K]) Name() string {
	if idx.searcher == nil {
		return idx.kind.String()
	}
	return idx.kind.String() + "/" + idx.searcher.Name()
}

// Size returns the resident byte size of the underlying engine's tables.
func (idx *Index[K]) Size() int {
	if idx.bounded != nil {
		return idx.bounded.ByteSize()
	}
	return idx.exact.ByteSize()
}

// Variants returns the build parameter vector this Index was constructed
// with, formatted as "key=value" pairs (spec.md §6's engine-specific
// parameter vectors).
func (idx *Index[K]) Variants() []string {
	if idx.paramVariant == "" {
		return nil
	}
	return []string{idx.paramVariant}
}

// Applicable reports whether this Index supports a combination of harness
// flags. None of the three core engines this package wraps support
// mutation after Build; every other combination is supported.
func (idx *Index[K]) Applicable(unique, rangeQuery, insert, multithread bool) bool {
	_ = unique
	_ = rangeQuery
	_ = multithread
	return !insert
}
