// Package fst implements a Fast Succinct Trie: a two-tier LOUDS-encoded
// trie over byte-string keys (dense top, sparse bottom), supporting exact
// point lookup and ordered range iteration, grounded on
// github.com/hillbig/rsdic for rank/select over the sparse tier's bit
// vectors and github.com/bits-and-blooms/bitset for the dense tier's
// per-node 256-bit label/child bitmaps.
package fst

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// terminatorByte marks a key that is a strict prefix of another key. It
// assumes keys do not themselves contain an embedded 0x00 byte at a
// position where it could be confused with a real label; this holds for
// the fixed-width big-endian integer adaptor (see adaptor.go), since no
// fixed-width key is ever a strict prefix of another.
const terminatorByte = 0x00

// Config holds FST's build parameter, the engine-specific parameter
// vector from spec.md §6: [sparse_dense_ratio].
type Config struct {
	SparseDenseRatio int // >= 1; higher favors more dense levels
}

// Validate rejects unsupported parameter values.
func (c Config) Validate() error {
	if c.SparseDenseRatio < 1 {
		return fmt.Errorf("fst: sparse_dense_ratio must be >= 1, got %d", c.SparseDenseRatio)
	}
	return nil
}

// Debug enables package-level diagnostic logging during Build.
var Debug bool

// Trie is an immutable, built FST over byte-string keys.
type Trie struct {
	cfg Config
	n   int

	hasEmptyKey   bool
	emptyKeyValue uint64

	denseLevels int
	dense       []denseLevel
	sparse      []sparseLevel
}

// Build constructs a Trie from sorted, non-decreasing byte-string keys.
// Exact duplicate keys collapse to the first occurrence's value.
// Build panics if keys are not sorted.
func Build(keys [][]byte, payloads []uint64) (*Trie, error) {
	return BuildWithConfig(keys, payloads, Config{SparseDenseRatio: 16})
}

// BuildWithConfig is Build with an explicit Config.
func BuildWithConfig(keys [][]byte, payloads []uint64, cfg Config) (*Trie, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	checkSorted(keys)

	t := &Trie{cfg: cfg, n: len(keys)}
	if len(keys) == 0 {
		return t, nil
	}

	levels, hasEmpty, emptyVal := buildLevels(keys, payloads)
	t.hasEmptyKey = hasEmpty
	t.emptyKeyValue = emptyVal

	t.denseLevels = chooseDenseLevels(levels, cfg.SparseDenseRatio)

	t.dense = make([]denseLevel, t.denseLevels)
	for l := 0; l < t.denseLevels; l++ {
		t.dense[l] = buildDenseLevel(levels[l])
	}

	t.sparse = make([]sparseLevel, len(levels)-t.denseLevels)
	for l := t.denseLevels; l < len(levels); l++ {
		t.sparse[l-t.denseLevels] = buildSparseLevel(levels[l])
	}

	if Debug {
		fmt.Printf("fst: built trie n=%d levels=%d dense=%d bytes=%s\n", t.n, len(levels), t.denseLevels, humanize.Bytes(uint64(t.ByteSize())))
	}
	return t, nil
}

func checkSorted(keys [][]byte) {
	for i := 1; i < len(keys); i++ {
		if compareBytes(keys[i-1], keys[i]) > 0 {
			panic(fmt.Sprintf("fst: keys not sorted at index %d", i))
		}
	}
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// EqualityLookup returns the payload for key and true if key was among
// the keys supplied at build time, or (0, false) otherwise.
//
// A key whose bytes are all consumed while the last byte's node still has
// a child (i.e. key is a strict prefix of other stored keys) only matches
// if key was itself promoted to a stored key during Build, in which case
// its value was recorded under a terminatorByte label one level further
// down (see buildLevels' pending-terminal promotion).
func (t *Trie) EqualityLookup(key []byte) (uint64, bool) {
	if len(key) == 0 {
		return t.emptyKeyValue, t.hasEmptyKey
	}
	if t.totalLevels() == 0 {
		return 0, false
	}

	node := 0
	level := 0
	for ; level < len(key); level++ {
		if level >= t.totalLevels() {
			return 0, false
		}
		label := key[level]
		if !t.hasLabelAt(level, node, label) {
			return 0, false
		}
		if !t.hasChildAt(level, node, label) {
			if level != len(key)-1 {
				return 0, false
			}
			return t.valueAt(level, node, label), true
		}
		node = t.childNodeAt(level, node, label)
	}

	if level >= t.totalLevels() || !t.hasLabelAt(level, node, terminatorByte) {
		return 0, false
	}
	return t.valueAt(level, node, terminatorByte), true
}

// RangeQuery sums the payloads of every stored key in the closed interval
// [low, high], walking the ascending iterator from low's lower bound until
// a key exceeds high. Per spec.md §8 property 3 (range-scan monotonicity).
func (t *Trie) RangeQuery(low, high []byte) uint64 {
	var sum uint64
	it := t.MoveToKeyGreaterThan(low, true)
	for it.Valid() {
		if compareBytes(it.Key(), high) > 0 {
			break
		}
		sum += it.GetValue()
		it.Next()
	}
	return sum
}

// Size returns the number of keys the trie was built over.
func (t *Trie) Size() int { return t.n }

// ByteSize estimates the resident size of the trie in bytes.
func (t *Trie) ByteSize() int {
	b := 0
	for _, d := range t.dense {
		b += d.byteSize()
	}
	for _, s := range t.sparse {
		b += s.byteSize()
	}
	return b
}

// Stats reports build-time shape for diagnostics.
type Stats struct {
	Keys       int
	Levels     int
	DenseLevel int
	Bytes      int
	HumanBytes string
}

func (t *Trie) Stats() Stats {
	return Stats{
		Keys:       t.n,
		Levels:     len(t.dense) + len(t.sparse),
		DenseLevel: t.denseLevels,
		Bytes:      t.ByteSize(),
		HumanBytes: humanize.Bytes(uint64(t.ByteSize())),
	}
}
