package trienspline

import (
	"fmt"
	"math/bits"

	"coreindex/cht"
	"coreindex/kv"

	"github.com/dustin/go-humanize"
	"golang.org/x/exp/slices"
)

// Debug enables package-level diagnostic logging during Build.
var Debug bool

// Config holds TrieSpline's single build parameter, the engine-specific
// parameter vector from spec.md §6: [spline_max_error].
type Config struct {
	SplineMaxError int // >= 1
}

// Validate rejects unsupported parameter values.
func (c Config) Validate() error {
	if c.SplineMaxError < 1 {
		return fmt.Errorf("trienspline: spline_max_error must be >= 1, got %d", c.SplineMaxError)
	}
	return nil
}

// Index is an immutable, built TrieSpline ready for concurrent read-only
// queries: a piecewise-linear spline over the key CDF, accelerated by
// either a radix table or a CHT over the spline knots.
type Index[K kv.Uint] struct {
	cfg Config

	n      int
	minKey K
	maxKey K

	knots []splineKnot[K]

	useRadix  bool
	radixBits int
	radixMin  float64
	radixStep float64
	radix     []int32 // knots of bucket b lie in [radix[b], radix[b+1])

	accel *cht.Index[K]
}

// Build constructs a TrieSpline from sorted, non-decreasing KeyValue data.
// Duplicate keys collapse to a single CDF point at their first occurrence,
// per spec.md §4.3 ("the CDF is defined over distinct keys; duplicate keys
// share their first position"). Build panics (via errutil) if data is
// unsorted -- a caller contract violation, per spec.md §7.
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

	// exactKeys holds the distinct keys at full K precision; xs is a
	// float64 view used only by the corridor's slope arithmetic (spec.md
	// §4.3's orientation test is a fractional-slope comparison and needs
	// no more precision than that). Knots are built back from exactKeys,
	// never from xs, so a knot's key is always a key that actually
	// appeared in data -- keeping xs as the source of truth loses
	// precision above 2^53 and can collide distinct uint64 keys.
	exactKeys := make([]K, 0, len(data))
	xs := make([]float64, 0, len(data))
	ys := make([]float64, 0, len(data))
	exactKeys = append(exactKeys, data[0].Key)
	xs = append(xs, float64(data[0].Key))
	ys = append(ys, 0)
	for i := 1; i < len(data); i++ {
		if data[i].Key == data[i-1].Key {
			continue
		}
		exactKeys = append(exactKeys, data[i].Key)
		xs = append(xs, float64(data[i].Key))
		ys = append(ys, float64(i))
	}

	knotPos := buildSplineIndices(xs, ys, float64(cfg.SplineMaxError))
	idx.knots = make([]splineKnot[K], len(knotPos))
	for i, p := range knotPos {
		idx.knots[i] = splineKnot[K]{key: exactKeys[p], pos: int(ys[p])}
	}

	idx.buildAccelerator()

	if Debug {
		fmt.Printf("trienspline: built index n=%d knots=%d bytes=%s\n", idx.n, len(idx.knots), humanize.Bytes(uint64(idx.ByteSize())))
	}
	return idx, nil
}

// buildAccelerator picks and constructs the cheaper of a radix table or a
// CHT over the spline knot keys, per spec.md §4.3's named chooser
// ("subject to space <= sizeof(knots)").
func (idx *Index[K]) buildAccelerator() {
	if len(idx.knots) < 2 {
		idx.buildRadixAccelerator(1)
		return
	}

	knotKeys := make([]float64, len(idx.knots))
	for i, kn := range idx.knots {
		knotKeys[i] = float64(kn.key)
	}

	acc := chooseAccelerator(knotKeys, idx.n)

	if acc.useRadix {
		idx.buildRadixAccelerator(acc.radixBits)
		return
	}

	knotData := make([]kv.KeyValue[K], len(idx.knots))
	for i, kn := range idx.knots {
		knotData[i] = kv.KeyValue[K]{Key: kn.key, Payload: uint64(i)}
	}
	accel, err := cht.Build(knotData, cht.Config{NumBins: acc.chtBins, MaxError: acc.chtMaxErr})
	if err != nil {
		// A bad chooser candidate degrades to the radix path rather than
		// failing Build outright.
		idx.buildRadixAccelerator(max(1, bits.Len(uint(len(idx.knots)))))
		return
	}
	idx.accel = accel
}

func (idx *Index[K]) buildRadixAccelerator(r int) {
	idx.useRadix = true
	idx.radixBits = r
	numBuckets := 1 << uint(r)

	minKey := float64(idx.knots[0].key)
	maxKey := float64(idx.knots[len(idx.knots)-1].key)
	span := maxKey - minKey
	if span < 1 {
		span = 1
	}
	idx.radixMin = minKey
	idx.radixStep = span / float64(numBuckets)
	if idx.radixStep <= 0 {
		idx.radixStep = 1
	}

	// radix[b] is the count of knots with key strictly below bucket b's
	// lower edge, so the knots belonging to bucket b lie in
	// [radix[b], radix[b+1]).
	radix := make([]int32, numBuckets+1)
	bi := 0
	for b := 0; b <= numBuckets; b++ {
		bucketLo := minKey + float64(b)*idx.radixStep
		for bi < len(idx.knots) && float64(idx.knots[bi].key) < bucketLo {
			bi++
		}
		radix[b] = int32(bi)
	}
	radix[numBuckets] = int32(len(idx.knots))
	idx.radix = radix
}

// GetSearchBound returns the half-open range [begin, end) the final-mile
// searcher must scan to find key's true lower-bound position, guaranteed
// end-begin <= 2*spline_max_error+2 per spec.md §8.
func (idx *Index[K]) GetSearchBound(key K) kv.SearchBound {
	if idx.n == 0 {
		return kv.SearchBound{Begin: 0, End: 0}
	}
	eps := idx.cfg.SplineMaxError

	if key <= idx.minKey {
		return kv.Clamp(kv.SearchBound{Begin: 0, End: 2*eps + 2}, idx.n)
	}
	if key >= idx.maxKey {
		return kv.Clamp(kv.SearchBound{Begin: idx.n - (2*eps + 2), End: idx.n}, idx.n)
	}

	lo, hi := idx.knotBracketRange(key)
	i := idx.bracketSegment(key, lo, hi)

	left, right := idx.knots[i], idx.knots[i+1]
	var est int
	if right.key == left.key {
		est = left.pos
	} else {
		frac := float64(key-left.key) / float64(right.key-left.key)
		est = left.pos + int(frac*float64(right.pos-left.pos))
	}

	return kv.Clamp(kv.SearchBound{Begin: est - eps, End: est + eps + 2}, idx.n)
}

// knotBracketRange asks the accelerator for a narrow range of knot indices
// likely to bracket key, per spec.md §4.3 step 2.
func (idx *Index[K]) knotBracketRange(key K) (int, int) {
	if idx.accel != nil {
		b := idx.accel.GetSearchBound(key)
		lo, hi := b.Begin, b.End
		if hi >= len(idx.knots) {
			hi = len(idx.knots) - 1
		}
		if lo > 0 {
			lo--
		}
		return lo, hi
	}

	numBuckets := len(idx.radix) - 1
	b := int((float64(key) - idx.radixMin) / idx.radixStep)
	if b < 0 {
		b = 0
	}
	if b >= numBuckets {
		b = numBuckets - 1
	}
	lo := int(idx.radix[b])
	hi := int(idx.radix[b+1])
	if lo > 0 {
		lo--
	}
	if hi >= len(idx.knots) {
		hi = len(idx.knots) - 1
	}
	return lo, hi
}

// bracketSegment finds i in [lo, hi) such that knots[i].key <= key <
// knots[i+1].key, scanning linearly when the candidate range is narrow and
// binary-searching otherwise (spec.md §4.3 step 3).
func (idx *Index[K]) bracketSegment(key K, lo, hi int) int {
	if hi <= lo {
		hi = lo + 1
	}
	if hi >= len(idx.knots) {
		hi = len(idx.knots) - 1
	}

	if hi-lo < 32 {
		i := lo
		for i < hi && idx.knots[i+1].key <= key {
			i++
		}
		for i > 0 && idx.knots[i].key > key {
			i--
		}
		return i
	}

	// Find the first knot past the bracket, then step back one: the
	// generic equivalent of a manual halving loop, using
	// slices.BinarySearchFunc over the candidate sub-range.
	firstAfter, _ := slices.BinarySearchFunc(idx.knots[lo:hi+1], key, func(k splineKnot[K], target K) int {
		if k.key > target {
			return 1
		}
		return -1
	})
	l := lo + firstAfter - 1
	if l < lo {
		l = lo
	}
	return l
}

// Size returns the number of keys the index was built over.
func (idx *Index[K]) Size() int { return idx.n }

// ByteSize estimates the resident size of the knot array and accelerator
// in bytes.
func (idx *Index[K]) ByteSize() int {
	b := len(idx.knots) * 16
	if idx.accel != nil {
		b += idx.accel.ByteSize()
	}
	b += len(idx.radix) * 4
	return b
}

// Stats reports build-time shape for diagnostics.
type Stats struct {
	Keys       int
	Knots      int
	UsesRadix  bool
	Bytes      int
	HumanBytes string
}

func (idx *Index[K]) Stats() Stats {
	return Stats{
		Keys:       idx.n,
		Knots:      len(idx.knots),
		UsesRadix:  idx.useRadix,
		Bytes:      idx.ByteSize(),
		HumanBytes: humanize.Bytes(uint64(idx.ByteSize())),
	}
}

