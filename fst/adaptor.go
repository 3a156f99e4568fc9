package fst

import "coreindex/kv"

// IntIndex adapts Trie to fixed-width unsigned integer keys by
// byte-swapping each key to big-endian before insertion or lookup, per
// spec.md §6's "Endian normalisation for FST integers": byte-swapping to
// big-endian is the correct, portable way to embed numeric keys in a
// byte-string trie. Since every key has the same fixed width, no key is
// ever a strict prefix of another, so the terminator-byte mechanism never
// triggers.
type IntIndex[K kv.Uint] struct {
	trie    *Trie
	keySize int
}

// BuildInt constructs an IntIndex from sorted, non-decreasing KeyValue
// data.
func BuildInt[K kv.Uint](data []kv.KeyValue[K], cfg Config) (*IntIndex[K], error) {
	kv.CheckSorted(data)

	keySize := keyByteSize[K]()
	keys := make([][]byte, len(data))
	payloads := make([]uint64, len(data))
	for i, d := range data {
		keys[i] = bigEndianBytes(d.Key, keySize)
		payloads[i] = d.Payload
	}

	trie, err := BuildWithConfig(keys, payloads, cfg)
	if err != nil {
		return nil, err
	}
	return &IntIndex[K]{trie: trie, keySize: keySize}, nil
}

// EqualityLookup returns the payload for key and true if key was among
// the keys supplied at build time.
func (idx *IntIndex[K]) EqualityLookup(key K) (uint64, bool) {
	return idx.trie.EqualityLookup(bigEndianBytes(key, idx.keySize))
}

// RangeQuery sums the payloads of every stored key in the closed interval
// [low, high].
func (idx *IntIndex[K]) RangeQuery(low, high K) uint64 {
	return idx.trie.RangeQuery(bigEndianBytes(low, idx.keySize), bigEndianBytes(high, idx.keySize))
}

// Size returns the number of keys the index was built over.
func (idx *IntIndex[K]) Size() int { return idx.trie.Size() }

// ByteSize estimates the resident size of the index in bytes.
func (idx *IntIndex[K]) ByteSize() int { return idx.trie.ByteSize() }

func keyByteSize[K kv.Uint]() int {
	var zero K
	size := 0
	for v := ^zero; v != 0; v >>= 8 {
		size++
	}
	if size == 0 {
		size = 1
	}
	return size
}

func bigEndianBytes[K kv.Uint](key K, size int) []byte {
	b := make([]byte, size)
	for i := size - 1; i >= 0; i-- {
		b[i] = byte(key)
		key >>= 8
	}
	return b
}
