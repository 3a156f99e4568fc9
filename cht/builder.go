package cht

import "coreindex/kv"

// treeChild is a tagged union slot during construction: either a leaf
// (recording the bin's first key position) or a pointer to a child node.
// This is the in-memory Slot abstraction the "Tagged integers" design note
// asks for; only the final flatten step collapses it into the top-bit
// tagged uint32 representation.
type treeChild[K kv.Uint] struct {
	isLeaf bool
	pos    int
	node   *treeNode[K]
}

type treeNode[K kv.Uint] struct {
	children []treeChild[K]
}

// buildNode recursively buckets data (sorted, already restricted to this
// node's key range) into cfg.NumBins equal-width bins rooted at
// nodeMinKey, terminating each bin as a leaf once it holds <= MaxError
// keys or the bin can no longer be subdivided (duplicates exhausting bin
// width), per spec.md §4.2 "Build -- offline (two-pass) mode". baseOffset
// is data[0]'s index in the full backing array, so a leaf's recorded
// position is always a global array index even though data itself is a
// re-sliced (locally zero-based) view at every recursion depth below the
// root.
func buildNode[K kv.Uint](data []kv.KeyValue[K], baseOffset int, nodeMinKey K, shift, logBins int, cfg Config) *treeNode[K] {
	node := &treeNode[K]{children: make([]treeChild[K], cfg.NumBins)}
	binWidth := uint64(1) << uint(shift)

	pos := 0
	n := len(data)
	for b := 0; b < cfg.NumBins; b++ {
		binHiOffset := uint64(b+1) * binWidth
		start := pos
		for pos < n && uint64(data[pos].Key-nodeMinKey) < binHiOffset {
			pos++
		}
		end := pos
		count := end - start

		switch {
		case count == 0:
			node.children[b] = treeChild[K]{isLeaf: true, pos: baseOffset + start}
		case count <= cfg.MaxError:
			node.children[b] = treeChild[K]{isLeaf: true, pos: baseOffset + start}
		case uint64(count) > binWidth || shift-logBins < 0:
			// A bin packed with more keys than its own address range can
			// distinguish (only possible with heavy duplicates) terminates
			// here rather than recursing into a child that couldn't split
			// it any further anyway.
			node.children[b] = treeChild[K]{isLeaf: true, pos: baseOffset + start}
		default:
			childMinKey := nodeMinKey + K(uint64(b)*binWidth)
			node.children[b] = treeChild[K]{
				node: buildNode(data[start:end], baseOffset+start, childMinKey, shift-logBins, logBins, cfg),
			}
		}
	}
	return node
}

// isAllLeaves reports whether every child of n is a leaf (the degenerate,
// single-node case described in spec.md §4.2).
func (n *treeNode[K]) isAllLeaves() bool {
	for _, c := range n.children {
		if !c.isLeaf {
			return false
		}
	}
	return true
}
