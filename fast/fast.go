// Package fast implements FAST: a cache-line-and-SIMD-optimised implicit
// binary search tree for lower_bound queries over fixed-width unsigned
// integer keys, laid out in huge-page-backed memory (spec.md §4.5).
//
// The tree is the classical Eytzinger (BFS-numbered implicit binary search
// tree) transform of a sorted array, the same construct
// _examples/rpcpool-yellowstone-faithful/bucketteer/bucketteer.go builds
// via its own "eytzinger" helper and searches with "searchEytzingerSlice"
// (equality only, over hashes); FAST generalises that shape to a
// lower_bound query and backs the array with anonymous huge-page-advised
// memory instead of a plain heap slice. The simd/cache/page block depths
// computed in layout.go describe -- without changing the lookup algorithm
// -- how the top levels of this single array fall into one cache line,
// the next clump into one page, and so on.
package fast

import (
	"fmt"
	"unsafe"

	"coreindex/kv"

	"github.com/dustin/go-humanize"
)

// Config holds FAST's build parameter vector, which spec.md §6 lists as
// empty (`[]`): FAST has no tunable hyperparameter. The type exists so
// FAST fits the same Build(data, Config) shape as the other three engines.
type Config struct{}

// Validate always succeeds; kept for interface symmetry with the other
// engines' Config types.
func (Config) Validate() error { return nil }

// Debug enables package-level diagnostic logging during Build.
var Debug bool

// Tree is an immutable FAST index over fixed-width unsigned integer keys.
type Tree[K kv.Uint] struct {
	n   int
	cap int // highest valid 1-indexed node number; array length is cap+1

	data   []kv.KeyValue[K]
	keys   []K
	pos    []int32
	arena  *hugePageArena
	layout layout
}

// Build constructs a Tree from sorted, non-decreasing KeyValue data.
func Build[K kv.Uint](data []kv.KeyValue[K]) (*Tree[K], error) {
	return BuildWithConfig(data, Config{})
}

// BuildWithConfig is Build with an explicit Config (currently parameterless).
func BuildWithConfig[K kv.Uint](data []kv.KeyValue[K], cfg Config) (*Tree[K], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	kv.CheckSorted(data)

	t := &Tree[K]{n: len(data), data: data}

	var zero K
	keyBytes := int(unsafe.Sizeof(zero))
	t.layout = computeLayout(keyBytes)

	depth := 0
	for (1 << depth) - 1 < t.n {
		depth++
	}
	if depth == 0 {
		depth = 1
	}
	t.cap = (1 << depth) - 1

	slots := t.cap + 1
	arenaBytes := slots * keyBytes
	arena, err := newHugePageArena(arenaBytes)
	if err != nil {
		return nil, fmt.Errorf("fast: huge-page arena allocation failed: %w", err)
	}
	t.arena = arena
	t.keys = unsafe.Slice((*K)(unsafe.Pointer(&arena.bytes()[0])), slots)
	t.pos = make([]int32, slots)

	if t.n == 0 {
		return t, nil
	}

	sorted := make([]K, t.n)
	for i, d := range data {
		sorted[i] = d.Key
	}
	maxVal := ^zero
	buildEytzinger(sorted, t.keys, t.pos, 1, 0, t.n, t.cap, maxVal, t.n)

	if Debug {
		fmt.Printf("fast: built tree n=%d cap=%d simd_depth=%d cache_depth=%d page_depth=%d bytes=%s\n",
			t.n, t.cap, t.layout.simdDepth, t.layout.cacheDepth, t.layout.pageDepth, humanize.Bytes(uint64(t.ByteSize())))
	}
	return t, nil
}

// buildEytzinger fills keys/pos with the BFS-numbered recursive
// median-split of sorted[lo:hi], node by node; slots whose range is empty
// (including all slots beyond cap's natural depth) are padded with maxVal
// so an unsigned compare always treats them as +infinity, per spec.md
// §4.5's "pad slots beyond N with the key type's maximum value". A padded
// slot records lo as its position: a walk only reaches the empty range
// [lo,lo) when sorted[lo-1] < key <= sorted[lo], so lo is the answer.
func buildEytzinger[K kv.Uint](sorted []K, keys []K, pos []int32, node, lo, hi, cap int, maxVal K, n int) {
	if node > cap {
		return
	}
	if lo >= hi {
		keys[node] = maxVal
		pos[node] = int32(lo)
		buildEytzinger(sorted, keys, pos, 2*node, lo, hi, cap, maxVal, n)
		buildEytzinger(sorted, keys, pos, 2*node+1, lo, hi, cap, maxVal, n)
		return
	}
	mid := lo + (hi-lo)/2
	keys[node] = sorted[mid]
	pos[node] = int32(mid)
	buildEytzinger(sorted, keys, pos, 2*node, lo, mid, cap, maxVal, n)
	buildEytzinger(sorted, keys, pos, 2*node+1, mid+1, hi, cap, maxVal, n)
}

// LowerBound returns the smallest index i such that data[i].Key >= key, or
// Size() if no such index exists, per spec.md §4.5's lookup contract.
//
// The walk descends the implicit tree exactly as buildEytzinger laid it
// out: at each node, an unsigned compare decides whether to record this
// node's original position as the best candidate so far and continue left
// (looking for an earlier occurrence), or continue right without updating
// the candidate. spec.md's SIMD description batches several of these
// compares per 256-bit register load; LowerBound performs the same
// sequence of compares one at a time, matching
// search.LinearAVX's documented rationale that Go has no portable
// unsigned vector compare without hand-written assembly.
func (t *Tree[K]) LowerBound(key K) int {
	if t.n == 0 {
		return 0
	}
	node := 1
	res := t.n
	for node <= t.cap {
		if t.keys[node] >= key {
			res = int(t.pos[node])
			node *= 2
		} else {
			node = node*2 + 1
		}
	}
	if res > t.n {
		res = t.n
	}
	return res
}

// EqualityLookup returns the payload for key and true if key was among the
// keys supplied at build time, or (0, false) otherwise.
func (t *Tree[K]) EqualityLookup(key K) (uint64, bool) {
	pos := t.LowerBound(key)
	if pos >= t.n || t.data[pos].Key != key {
		return 0, false
	}
	return t.data[pos].Payload, true
}

// Size returns the number of keys the tree was built over.
func (t *Tree[K]) Size() int { return t.n }

// ByteSize estimates the resident size of the tree in bytes: the huge-page
// arena holding keys, plus the parallel position array.
func (t *Tree[K]) ByteSize() int {
	var zero K
	return len(t.keys)*int(unsafe.Sizeof(zero)) + len(t.pos)*4
}

// Close releases the huge-page arena. A Tree must not be used after Close.
func (t *Tree[K]) Close() error {
	if t.arena == nil {
		return nil
	}
	return t.arena.release()
}

// Stats reports build-time shape for diagnostics.
type Stats struct {
	Keys       int
	Depth      int
	SimdDepth  int
	CacheDepth int
	PageDepth  int
	Bytes      int
	HumanBytes string
}

func (t *Tree[K]) Stats() Stats {
	depth := 0
	for (1 << depth) <= t.cap {
		depth++
	}
	return Stats{
		Keys:       t.n,
		Depth:      depth,
		SimdDepth:  t.layout.simdDepth,
		CacheDepth: t.layout.cacheDepth,
		PageDepth:  t.layout.pageDepth,
		Bytes:      t.ByteSize(),
		HumanBytes: humanize.Bytes(uint64(t.ByteSize())),
	}
}
