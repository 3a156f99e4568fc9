package fast

import "math/bits"

// hugePageSize is the transparent-huge-page size assumed for the page-block
// depth calculation (2 MiB, the common x86-64 THP size).
const hugePageSize = 2 << 20

// log2Floor returns floor(log2(x)) for x >= 1.
func log2Floor(x int) int {
	if x < 1 {
		return 0
	}
	return bits.Len(uint(x)) - 1
}

// layout holds the machine-derived block depths from spec.md §4.5: simd
// block depth (levels spanning one 256-bit-register-width compare), cache
// block depth (levels spanning one cache line), and page block depth
// (levels spanning one huge page). They describe, level by level, how the
// single Eytzinger array this package builds clusters in memory -- top
// levels fit one cache line, the next clump fits one page, and so on --
// without changing the lookup algorithm itself.
type layout struct {
	simdDepth  int
	cacheDepth int
	pageDepth  int
}

func computeLayout(keyBytes int) layout {
	simdDepth := log2Floor(32 / keyBytes)
	cacheDepth := log2Floor(64 / keyBytes)
	if simdDepth < 1 {
		simdDepth = 1
	}
	if cacheDepth < simdDepth {
		cacheDepth = simdDepth
	}

	capLevels := log2Floor(hugePageSize/keyBytes) - 1
	pageDepth := (capLevels / cacheDepth) * cacheDepth
	if pageDepth < cacheDepth {
		pageDepth = cacheDepth
	}

	return layout{simdDepth: simdDepth, cacheDepth: cacheDepth, pageDepth: pageDepth}
}
