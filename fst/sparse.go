package fst

import "github.com/hillbig/rsdic"

// sparseLevel is the sparse-tier encoding of one trie level: a packed
// label byte vector plus a child-indicator bit and a LOUDS bit per label
// (spec.md §4.4). hasChild and louds are rank/select-capable bit vectors
// from github.com/hillbig/rsdic.
type sparseLevel struct {
	labels   []byte
	hasChild *rsdic.RSDic
	louds    *rsdic.RSDic
	values   []uint64
}

func buildSparseLevel(lvl levelStream) sparseLevel {
	hc := rsdic.New()
	lo := rsdic.New()
	for i := range lvl.labels {
		hc.PushBack(lvl.hasChild[i])
		lo.PushBack(lvl.louds[i])
	}
	return sparseLevel{
		labels:   lvl.labels,
		hasChild: hc,
		louds:    lo,
		values:   lvl.values,
	}
}

// nodeRange returns the half-open [begin, end) slice of label indices that
// belong to node, derived from the LOUDS bit vector: node's children begin
// at the position of its (node)-th set bit (0-indexed) and run until the
// next one.
func (s *sparseLevel) nodeRange(node int) (int, int) {
	n := s.louds.Num()
	if n == 0 {
		return 0, 0
	}
	begin := int(s.louds.Select(uint64(node), true))
	total := int(s.louds.Rank(n, true))
	var end int
	if node+1 >= total {
		end = len(s.labels)
	} else {
		end = int(s.louds.Select(uint64(node+1), true))
	}
	return begin, end
}

// findChild linearly scans node's label range for label, matching
// spec.md's "linearly (or with SIMD, when labels are 8-aligned) scan the
// label vector".
func (s *sparseLevel) findChild(node int, label byte) (int, bool) {
	begin, end := s.nodeRange(node)
	for i := begin; i < end; i++ {
		if s.labels[i] == label {
			return i, true
		}
	}
	return 0, false
}

// firstChild returns the index of node's first (lexicographically
// smallest) child label, used by the iterator's left-most descent.
func (s *sparseLevel) firstChild(node int) (int, bool) {
	begin, end := s.nodeRange(node)
	if begin >= end {
		return 0, false
	}
	return begin, true
}

// searchGreaterThan returns the index of the first label within node's
// range that is strictly greater than label (or equal to it, when orEqual
// is set), per spec.md's
// "searchGreaterThan on the label vector".
func (s *sparseLevel) searchGreaterThan(node int, label byte, orEqual bool) (int, bool) {
	begin, end := s.nodeRange(node)
	for i := begin; i < end; i++ {
		if s.labels[i] > label || (orEqual && s.labels[i] == label) {
			return i, true
		}
	}
	return 0, false
}

func (s *sparseLevel) byteSize() int {
	return len(s.labels) + len(s.values)*8 + s.hasChild.AllocSize() + s.louds.AllocSize()
}
