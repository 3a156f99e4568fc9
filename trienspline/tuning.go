package trienspline

import (
	"math"
	"math/bits"
)

// candidateCost is the estimated (cost, spaceWords) pair for one
// accelerator candidate, following spec.md §4.3 "Build -- CHT tuning":
// radix candidates are scored by expected lookup cost (keys-weighted
// log2 of spline count per prefix) and space in machine words; CHT
// candidates are scored by a closed-form proxy for the same ingredients
// (leaf count from max_error, internal node count from num_bins) since
// building and costing every one of 2^20 candidate trees at Build time
// would defeat the purpose of choosing cheaply. The proxy preserves the
// two real trade-offs the paper cares about: smaller max_error costs more
// space but less final-mile search; more num_bins costs more space per
// node but descends faster.
type candidateCost struct {
	cost  float64
	space int
}

type accelerator struct {
	useRadix   bool
	radixBits  int // radix candidate: number of prefix bits
	chtBins    int
	chtMaxErr  int
}

// chooseAccelerator picks the cheaper of the radix and CHT candidate
// families, subject to space <= len(knotKeys) machine words (spec.md:
// "subject to space <= sizeof(knots)").
func chooseAccelerator(knotKeys []float64, totalKeys int) accelerator {
	budget := len(knotKeys)
	if budget < 1 {
		budget = 1
	}

	best := accelerator{useRadix: true, radixBits: 1}
	bestCost := math.Inf(1)

	minKey, maxKey := knotKeys[0], knotKeys[len(knotKeys)-1]
	span := maxKey - minKey
	if span < 1 {
		span = 1
	}
	topBits := bits.Len64(uint64(span))

	for r := 1; r <= 30 && r <= topBits+1; r++ {
		c := radixCost(knotKeys, minKey, span, r, totalKeys)
		if c.space > budget {
			continue
		}
		if c.cost < bestCost {
			bestCost = c.cost
			best = accelerator{useRadix: true, radixBits: r}
		}
	}

	for _, binsLog := range []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 12, 14, 16, 18, 20} {
		bins := 1 << uint(binsLog)
		for _, maxErr := range []int{1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024} {
			c := chtCost(len(knotKeys), bins, maxErr)
			if c.space > budget {
				continue
			}
			if c.cost < bestCost {
				bestCost = c.cost
				best = accelerator{useRadix: false, chtBins: bins, chtMaxErr: maxErr}
			}
		}
	}

	return best
}

// radixCost estimates cost/space for a radix table of 2^r prefix buckets
// over [minKey, minKey+span]: cost = sum(keysInBucket *
// ceil(log2(splinesInBucket))) / totalKeys; space = numBuckets + 2 words.
func radixCost(knotKeys []float64, minKey, span float64, r int, totalKeys int) candidateCost {
	numBuckets := 1 << uint(r)
	bucketWidth := span / float64(numBuckets)
	if bucketWidth <= 0 {
		bucketWidth = 1
	}

	splinesInBucket := make([]int, numBuckets+1)
	for _, k := range knotKeys {
		b := int((k - minKey) / bucketWidth)
		if b < 0 {
			b = 0
		}
		if b >= numBuckets {
			b = numBuckets - 1
		}
		splinesInBucket[b]++
	}

	// Approximate keysInBucket proportionally to the bucket's share of
	// knots (knots are roughly evenly spaced in array position by
	// construction of the spline corridor).
	var cost float64
	for _, s := range splinesInBucket[:numBuckets] {
		keysShare := float64(totalKeys) / float64(numBuckets)
		lg := math.Ceil(math.Log2(float64(max(1, s))))
		cost += keysShare * lg
	}
	cost /= float64(max(1, totalKeys))

	return candidateCost{cost: cost, space: numBuckets + 2}
}

// chtCost estimates cost/space for a CHT over numKnots knots with the
// given (bins, maxErr): leaf count ~= ceil(numKnots/maxErr); internal node
// count follows the geometric series of a bins-ary tree whose leaves are
// that count, i.e. leaves/(bins-1) to first order. Final-mile search cost
// uses spec.md's two named models: ceil-log2 (binary-style) when the
// resulting leaf width is large enough to binary search, half-width
// (linear) otherwise -- mirroring the same threshold bracketSegment
// uses (spec.md §4.3 step 3, "linear-scan if range < 32 else
// binary-search").
func chtCost(numKnots, bins, maxErr int) candidateCost {
	leaves := (numKnots + maxErr - 1) / maxErr
	if leaves < 1 {
		leaves = 1
	}
	internalNodes := 1
	if bins > 1 {
		internalNodes = leaves/(bins-1) + 1
	}
	space := internalNodes * bins

	var cost float64
	if maxErr < 32 {
		cost = float64(maxErr) / 2
	} else {
		cost = math.Ceil(math.Log2(float64(maxErr)))
	}
	// Descent cost: one step per tree level.
	levels := 1
	if bins > 1 && leaves > 1 {
		levels = ceilLogBins(leaves, bins)
	}
	cost += float64(levels)

	return candidateCost{cost: cost, space: space}
}

func ceilLogBins(n, bins int) int {
	levels := 0
	for n > 1 {
		n = (n + bins - 1) / bins
		levels++
	}
	return levels
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
