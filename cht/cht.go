// Package cht implements the Compact Hist-Tree: a multi-level histogram
// search accelerator over a sorted key array. Every query key maps to a
// bounded position range [begin, end) with end-begin <= max_error+1,
// grounded on the "Tagged integers for leaf/child discrimination" design
// note: a flattened []uint32 table where the top bit distinguishes a leaf
// position from a child-node index.
package cht

import (
	"fmt"
	"math/bits"

	"coreindex/errutil"
	"coreindex/kv"

	"github.com/dustin/go-humanize"
)

// Debug enables package-level diagnostic logging during Build. It is off
// by default; the hot lookup path never logs regardless of this flag.
var Debug bool

const leafBit = uint32(1) << 31

// Config holds CHT's build parameters, the engine-specific parameter vector
// from spec.md §6: [num_bins, max_error, single_pass, cache_oblivious].
type Config struct {
	NumBins        int // must be a power of two, >= 2
	MaxError       int // >= 1
	SinglePass     bool
	CacheOblivious bool
}

// Validate rejects unsupported parameter combinations. Per the "Open
// questions" note in spec.md §9 (3), single_pass with the cache-oblivious
// flatten ("use_cache") is explicitly unsupported.
func (c Config) Validate() error {
	if c.NumBins < 2 || c.NumBins&(c.NumBins-1) != 0 {
		return fmt.Errorf("cht: num_bins must be a power of two >= 2, got %d", c.NumBins)
	}
	if c.MaxError < 1 {
		return fmt.Errorf("cht: max_error must be >= 1, got %d", c.MaxError)
	}
	if c.SinglePass && c.CacheOblivious {
		return fmt.Errorf("cht: single_pass with cache_oblivious flatten is unsupported")
	}
	return nil
}

// Index is an immutable, built CHT ready for concurrent read-only queries.
type Index[K kv.Uint] struct {
	cfg Config

	n       int
	minKey  K
	maxKey  K
	logBins int // log2(NumBins)
	shift   int // shift applied at the root level

	// table holds internal-node bins; slot i*NumBins+b is either a leaf
	// (top bit set, low 31 bits a position) or a child-node index.
	table []uint32

	// radixTable is non-nil only in the degenerate single-node case: entry
	// i is the start position of prefix i, and the range end is the later of
	// the next entry and that start plus MaxError+1, clamped to N
	// (spec.md §4.2, "Degenerate case").
	radixTable []uint32
}

// Build constructs a CHT from sorted, non-decreasing KeyValue data. Build
// returns cfg.Validate's error if cfg is invalid, and panics (via errutil)
// if data is unsorted -- a caller contract violation, per spec.md §7.
func Build[K kv.Uint](data []kv.KeyValue[K], cfg Config) (*Index[K], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	kv.CheckSorted(data)

	idx := &Index[K]{cfg: cfg, n: len(data)}
	if len(data) == 0 {
		return idx, nil
	}

	idx.minKey = data[0].Key
	idx.maxKey = data[len(data)-1].Key
	idx.logBins = bits.Len(uint(cfg.NumBins - 1))

	span := uint64(idx.maxKey - idx.minKey)
	topShift := ceilLog2(span + 1)
	idx.shift = topShift - idx.logBins
	if idx.shift < 0 {
		idx.shift = 0
	}

	root := buildNode(data, 0, idx.minKey, idx.shift, idx.logBins, cfg)
	flatten(idx, root)

	if Debug {
		fmt.Printf("cht: built index n=%d nodes=%d bytes=%s\n", idx.n, len(idx.table)/cfg.NumBins, humanize.Bytes(uint64(idx.ByteSize())))
	}
	return idx, nil
}

// ceilLog2 returns ceil(log2(x)) for x >= 1, and 0 for x == 0.
func ceilLog2(x uint64) int {
	if x <= 1 {
		return 0
	}
	return bits.Len64(x - 1)
}

// GetSearchBound returns the half-open range [begin, end) the final-mile
// searcher must scan to find key's true lower-bound position.
func (idx *Index[K]) GetSearchBound(key K) kv.SearchBound {
	if idx.n == 0 {
		return kv.SearchBound{Begin: 0, End: 0}
	}

	if key <= idx.minKey {
		return kv.Clamp(kv.SearchBound{Begin: 0, End: idx.cfg.MaxError + 1}, idx.n)
	}

	if idx.radixTable != nil {
		return idx.radixLookup(key)
	}

	if key >= idx.maxKey {
		pos := idx.descend(uint64(idx.maxKey - idx.minKey))
		return kv.SearchBound{Begin: pos, End: idx.n}
	}

	pos := idx.descend(uint64(key - idx.minKey))
	return kv.Clamp(kv.SearchBound{Begin: pos, End: pos + idx.cfg.MaxError + 1}, idx.n)
}

func (idx *Index[K]) descend(offset uint64) int {
	shift := idx.shift
	nodeIdx := 0
	mask := uint64(idx.cfg.NumBins - 1)
	for {
		bin := (offset >> uint(shift)) & mask
		slot := idx.table[nodeIdx*idx.cfg.NumBins+int(bin)]
		if slot&leafBit != 0 {
			return int(slot &^ leafBit)
		}
		nodeIdx = int(slot)
		shift -= idx.logBins
		errutil.BugOn(shift < 0, "cht: shift underflow during descent")
	}
}

func (idx *Index[K]) radixLookup(key K) kv.SearchBound {
	offset := uint64(key - idx.minKey)
	prefix := offset >> uint(idx.shift)
	if int(prefix)+1 >= len(idx.radixTable) {
		prefix = uint64(len(idx.radixTable) - 2)
	}
	begin := int(idx.radixTable[prefix])
	end := int(idx.radixTable[prefix+1])
	if end < begin+idx.cfg.MaxError+1 {
		end = begin + idx.cfg.MaxError + 1
	}
	return kv.Clamp(kv.SearchBound{Begin: begin, End: end}, idx.n)
}

// Size returns the number of keys the index was built over.
func (idx *Index[K]) Size() int { return idx.n }

// ByteSize estimates the resident size of the flattened table(s) in bytes.
func (idx *Index[K]) ByteSize() int {
	return len(idx.table)*4 + len(idx.radixTable)*4
}

// Stats reports build-time shape for diagnostics.
type Stats struct {
	Keys       int
	Nodes      int
	Bytes      int
	HumanBytes string
	Degenerate bool
}

func (idx *Index[K]) Stats() Stats {
	nodes := 0
	if idx.cfg.NumBins > 0 {
		nodes = len(idx.table) / idx.cfg.NumBins
	}
	return Stats{
		Keys:       idx.n,
		Nodes:      nodes,
		Bytes:      idx.ByteSize(),
		HumanBytes: humanize.Bytes(uint64(idx.ByteSize())),
		Degenerate: idx.radixTable != nil,
	}
}
