// Package search implements the shared final-mile search kernel: a family
// of lower_bound searchers over a narrow contiguous sub-range of a sorted
// KeyValue array. The engine package's Index wrapper takes a Searcher for
// its CHT and TrieSpline engines so the final scan strategy can be picked
// per dataset, as the source realises it via template parameters (see the
// "Pluggable searcher policy" design note); FAST and FST use none.
package search

import "coreindex/kv"

// Searcher is the pluggable final-mile search policy. LowerBound must
// return the smallest index i in [begin, end] such that data[i].Key >= key,
// or end if no such index exists within [begin, end). hint, when
// meaningful, is a caller-supplied probable position used to seed a
// doubling search; callers that have no hint pass begin.
type Searcher[K kv.Uint] interface {
	LowerBound(data []kv.KeyValue[K], begin, end int, key K, hint int) int
	Name() string
}

// Linear scans forward from begin and stops at the first element >= key.
// Preferred when the expected range width is small (<= ~32 elements), the
// common case for CHT/TrieSpline leaves.
type Linear[K kv.Uint] struct{}

func (Linear[K]) Name() string { return "Linear" }

func (Linear[K]) LowerBound(data []kv.KeyValue[K], begin, end int, key K, _ int) int {
	i := begin
	for i < end && data[i].Key < key {
		i++
	}
	return i
}

// BranchingBinary is the classical halving binary search over [begin, end).
type BranchingBinary[K kv.Uint] struct{}

func (BranchingBinary[K]) Name() string { return "BranchingBinary" }

func (BranchingBinary[K]) LowerBound(data []kv.KeyValue[K], begin, end int, key K, _ int) int {
	lo, hi := begin, end
	for lo < hi {
		mid := lo + (hi-lo)/2
		if data[mid].Key < key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Exponential expands by doubling from hint to bracket key, then binary
// searches within the bracket. Used when an estimator hands back a probable
// position rather than a range endpoint (e.g. TrieSpline's interpolated
// estimate).
type Exponential[K kv.Uint] struct{}

func (Exponential[K]) Name() string { return "Exponential" }

func (Exponential[K]) LowerBound(data []kv.KeyValue[K], begin, end int, key K, hint int) int {
	if hint < begin {
		hint = begin
	}
	if hint > end {
		hint = end
	}

	if hint < end && data[hint].Key < key {
		// Expand to the right.
		lo, step := hint, 1
		hi := lo + 1
		for hi < end && data[hi].Key < key {
			lo = hi
			step *= 2
			hi = lo + step
		}
		if hi > end {
			hi = end
		}
		return (BranchingBinary[K]{}).LowerBound(data, lo, hi, key, 0)
	}

	// Expand to the left (or hint already satisfies data[hint].Key >= key).
	hi, step := hint, 1
	lo := hi - 1
	for lo > begin && data[lo].Key >= key {
		hi = lo
		step *= 2
		lo = hi - step
	}
	if lo < begin {
		lo = begin
	}
	return (BranchingBinary[K]{}).LowerBound(data, lo, hi, key, 0)
}

// Interpolation guesses the next probe by linear interpolation on key
// values, falling back to binary search once the bracket is narrow or the
// key distribution degenerates (constant range).
type Interpolation[K kv.Uint] struct{}

func (Interpolation[K]) Name() string { return "Interpolation" }

func (Interpolation[K]) LowerBound(data []kv.KeyValue[K], begin, end int, key K, _ int) int {
	lo, hi := begin, end
	for lo < hi {
		if hi-lo <= 8 {
			return (BranchingBinary[K]{}).LowerBound(data, lo, hi, key, 0)
		}

		loKey, hiKey := data[lo].Key, data[hi-1].Key
		if hiKey <= loKey {
			return (BranchingBinary[K]{}).LowerBound(data, lo, hi, key, 0)
		}
		if key <= loKey {
			return lo
		}
		if key > hiKey {
			return hi
		}

		span := float64(hiKey - loKey)
		frac := float64(key-loKey) / span
		probe := lo + int(frac*float64(hi-lo-1))
		if probe < lo {
			probe = lo
		}
		if probe >= hi {
			probe = hi - 1
		}

		if data[probe].Key < key {
			lo = probe + 1
		} else {
			hi = probe
		}
	}
	return lo
}
