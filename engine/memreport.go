package engine

import "github.com/dustin/go-humanize"

// MemReport is a hierarchical memory usage report for a built index: one
// node per component, with room for nested children. The reports built in
// this package are single nodes without children (see Index.MemReport).
type MemReport struct {
	Name     string
	Bytes    int
	Children []MemReport
}

// HumanBytes renders Bytes via go-humanize, the same formatting every
// engine's Stats() method uses.
func (r MemReport) HumanBytes() string { return humanize.Bytes(uint64(r.Bytes)) }

// Total sums this node's own bytes plus every child's Total, so a caller
// can report just the root and get the whole tree's footprint.
func (r MemReport) Total() int {
	total := r.Bytes
	for _, c := range r.Children {
		total += c.Total()
	}
	return total
}

// MemReport builds a hierarchical report for this Index: the underlying
// engine's table bytes as the root, with no children for CHT/FAST (flat
// structures) and none for TrieSpline either, since trienspline.Index's
// ByteSize already folds in its CHT accelerator's bytes -- double-counting
// it as a child would misreport Total.
func (idx *Index[K]) MemReport() MemReport {
	return MemReport{Name: idx.Name(), Bytes: idx.Size()}
}

// MemReport builds a hierarchical report for this StringIndex.
func (idx *StringIndex) MemReport() MemReport {
	return MemReport{Name: idx.Name(), Bytes: idx.Size()}
}
