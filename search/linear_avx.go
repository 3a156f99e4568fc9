package search

import (
	"coreindex/kv"

	"github.com/klauspost/cpuid/v2"
)

// laneWidth is the number of keys compared per batch by LinearAVX. It is
// chosen once at package init from the host's detected feature set via
// klauspost/cpuid: 8 lanes under AVX2 (matching a 256-bit register of
// 32-bit lanes), 4 lanes under plain SSE2, and 1 (a
// plain scalar scan) on anything else. Go has no portable unsigned
// compare-greater-than SIMD intrinsic without hand-written assembly, so
// LinearAVX emulates the lane-batched access pattern described in
// spec.md §4.1 (branch-free compare over a fixed-width batch, first
// matching lane wins) rather than issuing real vector instructions; the
// batching still gets the cache-locality benefit the construct is named
// for.
var laneWidth = detectLaneWidth()

func detectLaneWidth() int {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX2):
		return 8
	case cpuid.CPU.Supports(cpuid.SSE2):
		return 4
	default:
		return 1
	}
}

// LinearAVX compares laneWidth keys at a time against a broadcast key,
// returning the index of the first element that is >= key. Functionally
// identical to Linear; the batching only changes constant factors.
type LinearAVX[K kv.Uint] struct{}

func (LinearAVX[K]) Name() string { return "LinearAVX" }

func (LinearAVX[K]) LowerBound(data []kv.KeyValue[K], begin, end int, key K, _ int) int {
	i := begin
	w := laneWidth
	for i+w <= end {
		mask := 0
		for lane := 0; lane < w; lane++ {
			if data[i+lane].Key >= key {
				mask |= 1 << uint(lane)
			}
		}
		if mask != 0 {
			return i + firstSetBit(mask)
		}
		i += w
	}
	for i < end && data[i].Key < key {
		i++
	}
	return i
}

func firstSetBit(mask int) int {
	for lane := 0; ; lane++ {
		if mask&(1<<uint(lane)) != 0 {
			return lane
		}
	}
}
