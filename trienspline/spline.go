// Package trienspline implements TrieSpline: a piecewise-linear spline over
// the empirical CDF of a sorted key set, bounded by a per-segment
// spline_max_error, accelerated by a radix table or a CHT (package
// coreindex/cht) built over the spline knots.
package trienspline

import "math"

// splineKnot is one control point of the piecewise-linear spline: a key and
// its exact position in the backing array.
type splineKnot[K comparable] struct {
	key K
	pos int
}

// corridorBuilder implements the greedy shrinking-cone construction from
// spec.md §4.3: it streams (x, y) CDF points and reports, for each,
// whether the previous point must be committed as a new knot because the
// line from the open segment's anchor to the current point leaves the
// corridor (the set of slopes from the anchor that keep every point seen
// so far within +-eps). The corridor is kept as a slope interval that
// each accepted point narrows by intersection, instead of re-deriving two
// boundary lines at every point.
type corridorBuilder struct {
	eps float64

	anchorX, anchorY float64
	minSlope         float64
	maxSlope         float64

	haveLast     bool
	lastX, lastY float64
}

func newCorridorBuilder(eps float64) *corridorBuilder {
	return &corridorBuilder{eps: eps}
}

func (c *corridorBuilder) startSegment(x, y float64) {
	c.anchorX, c.anchorY = x, y
	c.minSlope = math.Inf(-1)
	c.maxSlope = math.Inf(1)
	c.haveLast = false
}

func slope(x0, y0, x1, y1 float64) float64 {
	return (y1 - y0) / (x1 - x0)
}

// add reports whether (x,y) breaks the current corridor. When it returns
// true, the caller must commit the last accepted point as a knot, start a
// new segment anchored there, and re-add (x,y) against the fresh segment.
func (c *corridorBuilder) add(x, y float64) bool {
	lo := slope(c.anchorX, c.anchorY, x, y-c.eps)
	hi := slope(c.anchorX, c.anchorY, x, y+c.eps)

	if c.haveLast {
		if s := slope(c.anchorX, c.anchorY, x, y); s > c.maxSlope || s < c.minSlope {
			return true
		}
	}
	if lo > c.minSlope {
		c.minSlope = lo
	}
	if hi < c.maxSlope {
		c.maxSlope = hi
	}
	c.lastX, c.lastY = x, y
	c.haveLast = true
	return false
}

// buildSplineIndices runs the greedy corridor algorithm over a
// deduplicated CDF (xs[i], ys[i]) -- xs the distinct keys as float64, ys
// the corresponding first-occurrence position in the backing array -- and
// returns the indices (into xs/ys) chosen as knots. The first and last
// points always appear, per spec.md's "the last key is guaranteed to end
// up as a knot (force-add at Finalize if absent)".
func buildSplineIndices(xs, ys []float64, eps float64) []int {
	if len(xs) == 0 {
		return nil
	}
	if len(xs) == 1 {
		return []int{0}
	}

	knotIdx := make([]int, 0, len(xs)/4+2)
	knotIdx = append(knotIdx, 0)

	b := newCorridorBuilder(eps)
	b.startSegment(xs[0], ys[0])
	lastAcceptedIdx := 0

	for i := 1; i < len(xs); i++ {
		x, y := xs[i], ys[i]
		if b.add(x, y) {
			knotIdx = append(knotIdx, lastAcceptedIdx)
			b.startSegment(b.lastX, b.lastY)
			b.add(x, y)
		}
		lastAcceptedIdx = i
	}

	if knotIdx[len(knotIdx)-1] != len(xs)-1 {
		knotIdx = append(knotIdx, len(xs)-1)
	}
	return knotIdx
}
