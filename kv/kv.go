// Package kv holds the data model shared by every index engine: the
// key/payload pair that backs a sorted array, and the half-open
// [begin, end) range an engine hands back to the caller's final-mile
// search.
package kv

import "coreindex/errutil"

// Uint is the constraint satisfied by every fixed-width unsigned integer key
// type the core engines support.
type Uint interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// KeyValue pairs an ordered key with an opaque 64-bit payload, typically the
// key's position in its source array. The sorted slice of KeyValue is the
// canonical backing data: indexes map a query key to a position in this
// slice, never to the payload directly.
type KeyValue[K Uint] struct {
	Key     K
	Payload uint64
}

// Sentinel results for EqualityLookup, distinguishing "key absent but
// in-range" from "key outside the structure's covered range".
const (
	NotFound int64 = -1
	Overflow int64 = -2
)

// SearchBound is a half-open index interval [Begin, End) into the sorted
// key array. The caller's lower-bound query, if it exists in the data, lies
// within this interval.
type SearchBound struct {
	Begin int
	End   int
}

// Width reports End - Begin.
func (b SearchBound) Width() int {
	return b.End - b.Begin
}

// Clamp restricts b to [0, n).
func Clamp(b SearchBound, n int) SearchBound {
	if b.Begin < 0 {
		b.Begin = 0
	}
	if b.End > n {
		b.End = n
	}
	if b.End < b.Begin {
		b.End = b.Begin
	}
	return b
}

// CheckSorted panics (via errutil) if keys is not non-decreasing. Core
// engines require strictly non-decreasing build input; cht, trienspline and
// fast call it before doing real work (cht's streaming builder checks order
// in AddKey instead, and fst has its own byte-string check).
func CheckSorted[K Uint](keys []KeyValue[K]) {
	for i := 1; i < len(keys); i++ {
		errutil.BugOn(keys[i].Key < keys[i-1].Key,
			"keys must be supplied in non-decreasing order: keys[%d]=%v < keys[%d]=%v",
			i, keys[i].Key, i-1, keys[i-1].Key)
	}
}
