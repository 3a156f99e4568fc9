package fst

import "github.com/bits-and-blooms/bitset"

// denseLevel is the dense-tier encoding of one trie level: every node at
// this level owns a fixed 256-bit label bitmap and 256-bit child-indicator
// bitmap (spec.md §4.4 "dense tier ... full 256-bit label bitmaps").
// cumLabelRank/cumChildRank cache, per node, the total set-bit count of
// every earlier node's block -- the "basic-block cached prefix sum" rank
// support spec.md §4.4 calls for -- so a rank query only ever scans within
// its own 256-bit block.
type denseLevel struct {
	numNodes      int
	labelBitmap   *bitset.BitSet
	childBitmap   *bitset.BitSet
	cumLabelRank  []int // length numNodes+1
	cumChildRank  []int
	values        []uint64
}

// buildDenseLevel groups a level's labels into nodes at each LOUDS
// boundary and records their label/child bits, terminal values, and
// per-block rank prefix sums.
func buildDenseLevel(lvl levelStream) denseLevel {
	numNodes := 0
	for _, b := range lvl.louds {
		if b {
			numNodes++
		}
	}

	d := denseLevel{
		numNodes:    numNodes,
		labelBitmap: bitset.New(uint(numNodes) * 256),
		childBitmap: bitset.New(uint(numNodes) * 256),
	}

	node := -1
	for i, lb := range lvl.labels {
		if lvl.louds[i] {
			node++
		}
		pos := uint(node)*256 + uint(lb)
		d.labelBitmap.Set(pos)
		if lvl.hasChild[i] {
			d.childBitmap.Set(pos)
		} else {
			d.values = append(d.values, lvl.values[i])
		}
	}

	d.cumLabelRank = make([]int, numNodes+1)
	d.cumChildRank = make([]int, numNodes+1)
	for n := 0; n < numNodes; n++ {
		lc, cc := 0, 0
		base := uint(n) * 256
		for b := uint(0); b < 256; b++ {
			if d.labelBitmap.Test(base + b) {
				lc++
			}
			if d.childBitmap.Test(base + b) {
				cc++
			}
		}
		d.cumLabelRank[n+1] = d.cumLabelRank[n] + lc
		d.cumChildRank[n+1] = d.cumChildRank[n] + cc
	}

	return d
}

func (d *denseLevel) pos(node int, label byte) uint {
	return uint(node)*256 + uint(label)
}

func (d *denseLevel) hasLabel(node int, label byte) bool {
	return d.labelBitmap.Test(d.pos(node, label))
}

func (d *denseLevel) hasChild(node int, label byte) bool {
	return d.childBitmap.Test(d.pos(node, label))
}

// blockRank counts set bits in bs within node's own 256-bit block, strictly
// before label.
func blockRank(bs *bitset.BitSet, node int, label byte) int {
	base := uint(node) * 256
	count := 0
	for b := uint(0); b < uint(label); b++ {
		if bs.Test(base + b) {
			count++
		}
	}
	return count
}

// childNode returns the node index at the next level that this label's
// child pointer resolves to: rank(child_indicator, pos), per spec.md
// §4.4's dense descent formula.
func (d *denseLevel) childNode(node int, label byte) int {
	return d.cumChildRank[node] + blockRank(d.childBitmap, node, label)
}

// value returns the payload recorded at (node, label), per spec.md §4.4's
// dense value-index formula rank(label_bitmap,pos) - rank(child_indicator,pos) - 1,
// which reduces (since this label's own child bit is 0) to the count of
// prior value-bearing labels in this level.
func (d *denseLevel) value(node int, label byte) uint64 {
	labelRank := d.cumLabelRank[node] + blockRank(d.labelBitmap, node, label)
	childRank := d.cumChildRank[node] + blockRank(d.childBitmap, node, label)
	return d.values[labelRank-childRank]
}

func (d *denseLevel) byteSize() int {
	return int(d.labelBitmap.Len()/8) + int(d.childBitmap.Len()/8) + len(d.values)*8 + len(d.cumLabelRank)*8 + len(d.cumChildRank)*8
}
