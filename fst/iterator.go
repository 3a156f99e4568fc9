package fst

// frame records one step of the path from the root to the iterator's
// current position: the level, the node at that level, and the label
// chosen there.
type frame struct {
	level int
	node  int
	label byte
}

// Iterator walks stored keys in ascending lexicographic order, per
// spec.md §4.4 "Range lookup": moveToFirst followed by repeated Next
// yields keys in strictly ascending order.
type Iterator struct {
	t      *Trie
	frames []frame
	value  uint64
	valid  bool
}

func (t *Trie) totalLevels() int { return len(t.dense) + len(t.sparse) }

func (t *Trie) hasLabelAt(level, node int, label byte) bool {
	if level < t.denseLevels {
		return t.dense[level].hasLabel(node, label)
	}
	s := &t.sparse[level-t.denseLevels]
	_, ok := s.findChild(node, label)
	return ok
}

func (t *Trie) hasChildAt(level, node int, label byte) bool {
	if level < t.denseLevels {
		return t.dense[level].hasChild(node, label)
	}
	s := &t.sparse[level-t.denseLevels]
	idx, _ := s.findChild(node, label)
	return s.hasChild.Bit(uint64(idx))
}

func (t *Trie) valueAt(level, node int, label byte) uint64 {
	if level < t.denseLevels {
		return t.dense[level].value(node, label)
	}
	s := &t.sparse[level-t.denseLevels]
	idx, _ := s.findChild(node, label)
	return s.values[idx]
}

func (t *Trie) childNodeAt(level, node int, label byte) int {
	if level < t.denseLevels {
		return t.dense[level].childNode(node, label)
	}
	s := &t.sparse[level-t.denseLevels]
	idx, _ := s.findChild(node, label)
	return int(s.hasChild.Rank(uint64(idx), true))
}

// firstLabelAt returns node's smallest present label.
func (t *Trie) firstLabelAt(level, node int) (byte, bool) {
	if level < t.denseLevels {
		d := &t.dense[level]
		for l := 0; l < 256; l++ {
			if d.hasLabel(node, byte(l)) {
				return byte(l), true
			}
		}
		return 0, false
	}
	s := &t.sparse[level-t.denseLevels]
	idx, ok := s.firstChild(node)
	if !ok {
		return 0, false
	}
	return s.labels[idx], true
}

// nextLabelAfter returns the smallest label present at node that is
// greater than from (or greater-or-equal, when orEqual is set).
func (t *Trie) nextLabelAfter(level, node int, from byte, orEqual bool) (byte, bool) {
	if level < t.denseLevels {
		d := &t.dense[level]
		start := int(from) + 1
		if orEqual {
			start = int(from)
		}
		for l := start; l < 256; l++ {
			if d.hasLabel(node, byte(l)) {
				return byte(l), true
			}
		}
		return 0, false
	}
	s := &t.sparse[level-t.denseLevels]
	idx, ok := s.searchGreaterThan(node, from, orEqual)
	if !ok {
		return 0, false
	}
	return s.labels[idx], true
}

// descendLeftmost walks the deepest, lexicographically smallest path from
// (level, node) and appends it to frames, stopping at the first leaf
// label (hasChild == false).
func (t *Trie) descendLeftmost(level, node int, frames []frame) ([]frame, uint64, bool) {
	for {
		label, ok := t.firstLabelAt(level, node)
		if !ok {
			return frames, 0, false
		}
		frames = append(frames, frame{level: level, node: node, label: label})
		if !t.hasChildAt(level, node, label) {
			return frames, t.valueAt(level, node, label), true
		}
		node = t.childNodeAt(level, node, label)
		level++
	}
}

// MoveToFirst returns an iterator positioned at the smallest stored key.
func (t *Trie) MoveToFirst() *Iterator {
	it := &Iterator{t: t}
	if t.hasEmptyKey {
		it.valid = true
		it.value = t.emptyKeyValue
		return it
	}
	if t.totalLevels() == 0 {
		return it
	}
	frames, value, ok := t.descendLeftmost(0, 0, nil)
	it.frames, it.value, it.valid = frames, value, ok
	return it
}

// MoveToKeyGreaterThan returns an iterator positioned at the smallest
// stored key that is greater than (or, if inclusive, greater than or
// equal to) key, per spec.md §4.4.
func (t *Trie) MoveToKeyGreaterThan(key []byte, inclusive bool) *Iterator {
	it := &Iterator{t: t}
	if len(key) == 0 {
		if inclusive && t.hasEmptyKey {
			it.valid, it.value = true, t.emptyKeyValue
			return it
		}
		first := t.MoveToFirst()
		if !inclusive && t.hasEmptyKey {
			first.Next()
		}
		return first
	}
	if t.totalLevels() == 0 {
		return it
	}

	level, node := 0, 0
	var frames []frame

	for level < len(key) {
		if level >= t.totalLevels() {
			return it.backtrack(frames)
		}
		label := key[level]
		if !t.hasLabelAt(level, node, label) {
			if next, ok := t.nextLabelAfter(level, node, label, false); ok {
				frames = append(frames, frame{level: level, node: node, label: next})
				return it.finishFrom(level, node, next, frames)
			}
			return it.backtrack(frames)
		}
		if !t.hasChildAt(level, node, label) {
			frames = append(frames, frame{level: level, node: node, label: label})
			if level == len(key)-1 {
				if inclusive {
					it.frames, it.value, it.valid = frames, t.valueAt(level, node, label), true
					return it
				}
				it.frames, it.value, it.valid = frames, t.valueAt(level, node, label), true
				it.Next()
				return it
			}
			return it.backtrack(frames)
		}
		frames = append(frames, frame{level: level, node: node, label: label})
		node = t.childNodeAt(level, node, label)
		level++
	}

	frames2, value, ok := t.descendLeftmost(level, node, frames)
	it.frames, it.value, it.valid = frames2, value, ok
	// key is itself a stored key (a strict prefix of others) iff the
	// left-most descent immediately lands on its terminator label; when
	// the caller wants strictly-greater, skip past it.
	if ok && !inclusive && len(frames2) == len(frames)+1 && frames2[len(frames2)-1].label == terminatorByte {
		it.Next()
	}
	return it
}

// finishFrom completes an iterator positioning after landing on label at
// (level, node): if label has a child, descend leftmost beneath it;
// otherwise label's own value is the answer.
func (it *Iterator) finishFrom(level, node int, label byte, frames []frame) *Iterator {
	t := it.t
	if !t.hasChildAt(level, node, label) {
		it.frames, it.value, it.valid = frames, t.valueAt(level, node, label), true
		return it
	}
	child := t.childNodeAt(level, node, label)
	frames2, value, ok := t.descendLeftmost(level+1, child, frames)
	it.frames, it.value, it.valid = frames2, value, ok
	return it
}

// backtrack pops frames until a node has a sibling label greater than the
// one last taken, then descends leftmost from there.
func (it *Iterator) backtrack(frames []frame) *Iterator {
	t := it.t
	for len(frames) > 0 {
		last := frames[len(frames)-1]
		frames = frames[:len(frames)-1]
		if next, ok := t.nextLabelAfter(last.level, last.node, last.label, false); ok {
			frames = append(frames, frame{level: last.level, node: last.node, label: next})
			return it.finishFrom(last.level, last.node, next, frames)
		}
	}
	it.valid = false
	return it
}

// Valid reports whether the iterator is positioned on a key.
func (it *Iterator) Valid() bool { return it.valid }

// GetValue returns the payload at the iterator's current position.
func (it *Iterator) GetValue() uint64 { return it.value }

// Key reconstructs the byte-string key at the iterator's current
// position.
func (it *Iterator) Key() []byte {
	if len(it.frames) == 0 {
		return nil
	}
	key := make([]byte, 0, len(it.frames))
	for _, f := range it.frames {
		key = append(key, f.label)
	}
	if len(key) > 0 && key[len(key)-1] == terminatorByte {
		key = key[:len(key)-1]
	}
	return key
}

// Next advances to the next key in ascending order and reports whether
// the iterator is still valid.
func (it *Iterator) Next() bool {
	if !it.valid {
		return false
	}
	if len(it.frames) == 0 {
		// Positioned on the empty key; the smallest non-empty key (if
		// any) follows.
		frames, value, ok := it.t.descendLeftmost(0, 0, nil)
		it.frames, it.value, it.valid = frames, value, ok
		return it.valid
	}
	it.backtrack(it.frames)
	return it.valid
}
