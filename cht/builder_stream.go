package cht

import (
	"math/bits"

	"coreindex/errutil"
	"coreindex/kv"
)

// infinity marks an unset incBin slot. Position 0 is a valid value, so -1 is
// the sentinel (the C++ reference uses std::numeric_limits<unsigned>::max;
// a signed -1 is a simpler Go equivalent for the same never-a-real-index
// property).
const infinity = -1

// incBin is one bin slot of a node under construction in the streaming
// (single-pass) builder: first is the position of the first key routed into
// this bin, child is the index into Builder.nodes of this bin's child node.
// Both start at infinity and are set at most once each, the first time a
// key lands in the bin.
type incBin struct {
	first int
	child int
}

func newIncBins(n int) []incBin {
	bins := make([]incBin, n)
	for i := range bins {
		bins[i] = incBin{first: infinity, child: infinity}
	}
	return bins
}

// incNode is one node of the tree the streaming builder grows incrementally.
// lower is the node's lowest key expressed as an offset from Builder.minKey,
// not an absolute key -- this is what lets incrementTable route a key
// through all its ancestors with nothing but subtraction and a shift,
// matching IncrementTable in
// _examples/original_source/.../CHT/include/cht/builder.h.
type incNode[K kv.Uint] struct {
	lower uint64
	bins  []incBin
}

// Builder accepts keys one at a time in non-decreasing order, matching the
// index lifecycle in spec.md §3 ("created from a sorted key sequence via a
// Builder that accepts keys one-at-a-time"). Two-pass (offline) and
// single-pass builders are genuinely different code paths, not two names
// for the same buffering behavior: a two-pass Builder (NewBuilder) buffers
// every AddKey call and runs the full offline construction at Finalize,
// while a single-pass Builder (NewStreamingBuilder) grows a tree
// incrementally on every AddKey call (incrementTable) and only prunes and
// flattens it at Finalize (pruneAndFlatten) -- the whole point being
// bounded peak memory during AddKey, per spec.md §4.2's "Build --
// single-pass mode".
type Builder[K kv.Uint] struct {
	cfg Config

	// two-pass (offline) state
	keys []kv.KeyValue[K]

	// single-pass (streaming) state
	streaming bool
	minKey    K
	maxKey    K
	logBins   int
	shift     int
	numKeys   int
	prevKey   K
	nodes     []incNode[K]
}

// NewBuilder constructs a two-pass (offline) Builder. cfg.SinglePass must be
// false: a single-pass Builder needs the key range up front to compute its
// root shift, so it is constructed via NewStreamingBuilder instead.
func NewBuilder[K kv.Uint](cfg Config) *Builder[K] {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	errutil.BugOn(cfg.SinglePass, "cht: cfg.SinglePass requires NewStreamingBuilder, not NewBuilder")
	return &Builder[K]{cfg: cfg}
}

// NewStreamingBuilder constructs a single-pass Builder that grows its tree
// incrementally as AddKey is called, per spec.md §4.2 "Build -- single-pass
// mode". minKey and maxKey must be known up front: the offline Builder
// infers them from the full data slice, but streaming construction never
// holds the whole slice at once.
func NewStreamingBuilder[K kv.Uint](cfg Config, minKey, maxKey K) *Builder[K] {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	errutil.BugOn(!cfg.SinglePass, "cht: NewStreamingBuilder requires cfg.SinglePass")
	errutil.BugOn(maxKey < minKey, "cht: maxKey %v < minKey %v", maxKey, minKey)

	logBins := bits.Len(uint(cfg.NumBins - 1))
	span := uint64(maxKey - minKey)
	shift := ceilLog2(span+1) - logBins
	if shift < 0 {
		shift = 0
	}

	return &Builder[K]{
		cfg:       cfg,
		streaming: true,
		minKey:    minKey,
		maxKey:    maxKey,
		logBins:   logBins,
		shift:     shift,
		prevKey:   minKey,
	}
}

// AddKey adds the next key/payload pair. Keys must arrive in non-decreasing
// order; a streaming Builder asserts this immediately (it has no buffered
// slice to sort-check at Finalize the way the offline path does via
// kv.CheckSorted).
func (b *Builder[K]) AddKey(key K, payload uint64) {
	if b.streaming {
		errutil.BugOn(key < b.minKey || key > b.maxKey, "cht: streaming key %v outside [%v,%v]", key, b.minKey, b.maxKey)
		errutil.BugOn(b.numKeys > 0 && key < b.prevKey, "cht: streaming keys must be non-decreasing, got %v after %v", key, b.prevKey)
		b.incrementTable(key)
		b.numKeys++
		b.prevKey = key
		return
	}
	b.keys = append(b.keys, kv.KeyValue[K]{Key: key, Payload: payload})
}

// Finalize builds the immutable Index from all keys added so far.
func (b *Builder[K]) Finalize() (*Index[K], error) {
	if b.streaming {
		errutil.BugOn(b.numKeys > 0 && b.prevKey != b.maxKey, "cht: streaming builder finalized with last key %v, want maxKey %v", b.prevKey, b.maxKey)

		idx := &Index[K]{
			cfg:     b.cfg,
			n:       b.numKeys,
			minKey:  b.minKey,
			maxKey:  b.maxKey,
			logBins: b.logBins,
			shift:   b.shift,
		}
		if b.numKeys > 0 {
			idx.table = b.pruneAndFlatten()
		}
		return idx, nil
	}
	return Build(b.keys, b.cfg)
}

// incrementTable routes key through the tree grown so far, allocating a new
// node lazily the first time a bin is visited, mirroring
// IncrementTable/Insert in builder.h. It re-reads b.nodes[nodeIdx] on every
// access instead of caching a pointer across the loop, since the append
// below can reallocate the backing array on any iteration.
func (b *Builder[K]) incrementTable(key K) {
	if b.numKeys == 0 {
		b.nodes = append(b.nodes, incNode[K]{bins: newIncBins(b.cfg.NumBins)})
	}

	offset := uint64(key - b.minKey)
	nodeIdx := 0
	for level := 0; b.shift >= level*b.logBins; level++ {
		lower := b.nodes[nodeIdx].lower
		width := b.shift - level*b.logBins
		bin := int((offset - lower) >> uint(width))

		if b.nodes[nodeIdx].bins[bin].first != infinity {
			nodeIdx = b.nodes[nodeIdx].bins[bin].child
			continue
		}

		b.nodes[nodeIdx].bins[bin].first = b.numKeys

		if b.shift >= (level+1)*b.logBins {
			newLower := lower + uint64(bin)<<uint(width)
			b.nodes = append(b.nodes, incNode[K]{lower: newLower, bins: newIncBins(b.cfg.NumBins)})
			childIdx := len(b.nodes) - 1
			b.nodes[nodeIdx].bins[bin].child = childIdx
			nodeIdx = childIdx
		}
	}
}

// pruneAndFlatten walks the incrementally-grown tree with a BFS, collapsing
// each node into cfg.NumBins tagged uint32 table slots (the same leafBit
// format the offline flatten() produces) and pruning any bin whose span is
// within MaxError into a leaf even though its child node was allocated,
// mirroring PruneAndFlatten/AnalyzeNode in builder.h. Child pointers are
// written as raw tree-node indices during the BFS and remapped to their
// final table-row indices in a second pass, since a node's row in the
// table is only known once the whole BFS order is fixed.
func (b *Builder[K]) pruneAndFlatten() []uint32 {
	type queueElem struct {
		nodeIdx int
		end     int
	}

	numBins := b.cfg.NumBins
	maxError := b.cfg.MaxError

	queue := []queueElem{{nodeIdx: 0, end: b.numKeys}}
	mapping := make([]int, len(b.nodes))
	for i := range mapping {
		mapping[i] = infinity
	}

	var table []uint32
	curr := 0
	for len(queue) > 0 {
		elem := queue[0]
		queue = queue[1:]
		mapping[elem.nodeIdx] = curr
		curr++

		node := b.nodes[elem.nodeIdx]
		tmp := make([]uint32, numBins)
		bEnd := elem.end
		for backIdx := numBins; backIdx >= 1; backIdx-- {
			bin := backIdx - 1
			slot := node.bins[bin]

			if slot.first == infinity {
				tmp[bin] = uint32(bEnd) | leafBit
				continue
			}
			if slot.child == infinity {
				// A leaf in the grown tree, possibly covering more than
				// MaxError keys -- only possible with duplicates, the same
				// corner case BuildOffline special-cases.
				tmp[bin] = uint32(slot.first) | leafBit
				bEnd = slot.first
				continue
			}

			firstPos := slot.first
			if bEnd-firstPos > maxError {
				queue = append(queue, queueElem{nodeIdx: slot.child, end: bEnd})
				tmp[bin] = uint32(slot.child) // remapped below
			} else {
				tmp[bin] = uint32(firstPos) | leafBit
			}
			bEnd = firstPos
		}
		table = append(table, tmp...)
	}

	for i := 0; i < curr; i++ {
		for bin := 0; bin < numBins; bin++ {
			slot := i*numBins + bin
			if table[slot]&leafBit == 0 {
				table[slot] = uint32(mapping[table[slot]])
			}
		}
	}
	return table
}
