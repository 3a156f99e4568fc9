// Package testutil holds small helpers shared by the core engines'
// property-style tests: reproducible pseudo-random key-set generation,
// grounded on the corpus's general preference for a fast hash-based PRNG
// over math/rand in performance-sensitive generators (e.g.
// mmph/bucket_with_approx_trie/hash.go's use of a keyed .Hash()).
package testutil

import (
	"encoding/binary"
	"sort"

	"coreindex/kv"

	"github.com/zeebo/xxh3"
)

// SortedUniqueUint64s deterministically derives n distinct uint64 keys from
// seed by hashing an incrementing counter with xxh3, then returns them
// sorted ascending. Same seed, same n always produces the same key set.
func SortedUniqueUint64s(seed uint64, n int) []uint64 {
	seen := make(map[uint64]struct{}, n)
	keys := make([]uint64, 0, n)

	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], seed)

	var counter uint64
	for len(keys) < n {
		binary.LittleEndian.PutUint64(buf[8:], counter)
		counter++
		h := xxh3.Hash(buf[:])
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		keys = append(keys, h)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// KeyValues pairs each key with its index as payload, the canonical
// backing-array shape every engine's Build expects.
func KeyValues(keys []uint64) []kv.KeyValue[uint64] {
	data := make([]kv.KeyValue[uint64], len(keys))
	for i, k := range keys {
		data[i] = kv.KeyValue[uint64]{Key: k, Payload: uint64(i)}
	}
	return data
}
