package fst

// levelStream holds one trie level's growing label, child-indicator, and
// LOUDS streams during construction (spec.md §4.4 "Build algorithm").
type levelStream struct {
	labels   []byte
	hasChild []bool
	louds    []bool // true marks the first label of a new node
	values   []uint64
}

// buildLevels runs the LCP-based single-pass construction: for each key,
// find its common prefix with the previous key, then emit one label per
// remaining byte at the corresponding level. A label's hasChild bit is
// provisionally false when it is the key's own last byte; if a later key
// extends past that byte, the bit is promoted to true and the earlier
// key's value is instead carried by an explicit terminator label in the
// freshly created child node, per spec.md's "terminator byte... for keys
// that are prefixes of other keys".
func buildLevels(keys [][]byte, payloads []uint64) (levels []levelStream, hasEmptyKey bool, emptyKeyValue uint64) {
	ensure := func(l int) *levelStream {
		for len(levels) <= l {
			levels = append(levels, levelStream{})
		}
		return &levels[l]
	}

	var prev []byte
	pendingLevel, pendingIdx := -1, -1

	for i, key := range keys {
		if len(key) == 0 {
			if !hasEmptyKey {
				emptyKeyValue = payloads[i]
			}
			hasEmptyKey = true
			prev = key
			pendingLevel, pendingIdx = -1, -1
			continue
		}

		lcp := 0
		if i > 0 {
			lcp = commonPrefixLen(prev, key)
		}

		if i > 0 && len(prev) > 0 && len(prev) == lcp && lcp < len(key) {
			prevValue := payloads[i-1]
			if pendingLevel >= 0 {
				levels[pendingLevel].hasChild[pendingIdx] = true
				prevValue = levels[pendingLevel].values[pendingIdx]
			}
			lvl := ensure(lcp)
			lvl.labels = append(lvl.labels, terminatorByte)
			lvl.hasChild = append(lvl.hasChild, false)
			lvl.louds = append(lvl.louds, true)
			lvl.values = append(lvl.values, prevValue)
			pendingLevel, pendingIdx = -1, -1
		}

		for l := lcp; l < len(key); l++ {
			lvl := ensure(l)
			newNode := l > lcp || len(prev) == 0

			isOwnTerminal := l == len(key)-1
			lvl.labels = append(lvl.labels, key[l])
			lvl.hasChild = append(lvl.hasChild, !isOwnTerminal)
			lvl.louds = append(lvl.louds, newNode)
			if isOwnTerminal {
				lvl.values = append(lvl.values, payloads[i])
				pendingLevel, pendingIdx = l, len(lvl.labels)-1
			} else {
				lvl.values = append(lvl.values, 0)
			}
		}

		prev = key
	}

	return levels, hasEmptyKey, emptyKeyValue
}

// chooseDenseLevels decides how many top levels get the dense 256-bit
// bitmap accelerator, per spec.md's sparse_dense_ratio hyperparameter: a
// level stays dense while its average per-node fanout times the ratio
// still justifies the fixed 256-bit-per-node cost.
func chooseDenseLevels(levels []levelStream, ratio int) int {
	dense := 0
	for _, lvl := range levels {
		numNodes := 0
		for _, b := range lvl.louds {
			if b {
				numNodes++
			}
		}
		if numNodes == 0 {
			break
		}
		avgFanout := float64(len(lvl.labels)) / float64(numNodes)
		if avgFanout*float64(ratio) < 256 {
			break
		}
		dense++
	}
	return dense
}
