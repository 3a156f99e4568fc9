package cht

import "coreindex/kv"

// flatten collapses the in-memory tree into idx.table (or idx.radixTable in
// the degenerate single-node case). It reads idx.n, which Build sets first.
func flatten[K kv.Uint](idx *Index[K], root *treeNode[K]) {
	if root.isAllLeaves() {
		flattenRadix(idx, root)
		return
	}

	var order []*treeNode[K]
	if idx.cfg.CacheOblivious {
		order = vebOrder(root)
	} else {
		order = bfsOrder(root)
	}

	index := make(map[*treeNode[K]]int, len(order))
	for i, n := range order {
		index[n] = i
	}

	table := make([]uint32, len(order)*idx.cfg.NumBins)
	for i, n := range order {
		for b, c := range n.children {
			slot := i*idx.cfg.NumBins + b
			if c.isLeaf {
				table[slot] = leafBit | uint32(c.pos)
			} else {
				table[slot] = uint32(index[c.node])
			}
		}
	}
	idx.table = table
}

// bfsOrder lays nodes out in breadth-first order, the default (non
// cache-oblivious) flatten.
func bfsOrder[K kv.Uint](root *treeNode[K]) []*treeNode[K] {
	order := []*treeNode[K]{root}
	for i := 0; i < len(order); i++ {
		n := order[i]
		for _, c := range n.children {
			if !c.isLeaf {
				order = append(order, c.node)
			}
		}
	}
	return order
}

// vebOrder lays nodes out with a van-Emde-Boas-style recursive split: the
// top half of each subtree's height is emitted as one contiguous cluster,
// and every internal pointer crossing that boundary recurses into its own
// cluster. This generalises the classical uniform-depth vEB layout to the
// irregular-depth trees CHT actually builds, by splitting on each
// subtree's own local height rather than a fixed global depth.
func vebOrder[K kv.Uint](root *treeNode[K]) []*treeNode[K] {
	var out []*treeNode[K]
	var rec func(n *treeNode[K], height int)
	rec = func(n *treeNode[K], height int) {
		if n == nil {
			return
		}
		if height <= 1 {
			out = append(out, n)
			return
		}
		topHeight := height / 2
		bottomHeight := height - topHeight

		frontier := []*treeNode[K]{n}
		for d := 0; d < topHeight; d++ {
			out = append(out, frontier...)
			var next []*treeNode[K]
			for _, fn := range frontier {
				for _, c := range fn.children {
					if !c.isLeaf {
						next = append(next, c.node)
					}
				}
			}
			frontier = next
			if len(frontier) == 0 {
				break
			}
		}
		for _, fn := range frontier {
			rec(fn, bottomHeight)
		}
	}
	rec(root, height(root))
	return out
}

func height[K kv.Uint](n *treeNode[K]) int {
	if n == nil {
		return 0
	}
	mx := 0
	for _, c := range n.children {
		if !c.isLeaf {
			if h := height(c.node); h > mx {
				mx = h
			}
		}
	}
	return mx + 1
}

// flattenRadix builds the degenerate single-node representation: a plain
// array of start positions indexed by key prefix (spec.md §4.2 "Degenerate
// case").
func flattenRadix[K kv.Uint](idx *Index[K], root *treeNode[K]) {
	table := make([]uint32, idx.cfg.NumBins+2)
	for b, c := range root.children {
		table[b] = uint32(c.pos)
	}
	table[idx.cfg.NumBins] = uint32(idx.n)
	table[idx.cfg.NumBins+1] = uint32(idx.n)
	idx.radixTable = table
}
