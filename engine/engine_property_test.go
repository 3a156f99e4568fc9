package engine

import (
	"testing"

	"coreindex/cht"
	"coreindex/internal/testutil"
	"coreindex/kv"
	"coreindex/search"

	"github.com/stretchr/testify/require"
)

// Property-style test over an xxh3-derived reproducible key set (per
// spec.md §8 universal invariant 1: every built key looks itself up).
func TestCHTIndexPropertyXXH3Keys(t *testing.T) {
	keys := testutil.SortedUniqueUint64s(0xC0FFEE, 5000)
	data := testutil.KeyValues(keys)

	idx, err := BuildCHT(data, cht.Config{NumBins: 64, MaxError: 8}, search.BranchingBinary[uint64]{})
	require.NoError(t, err)

	for _, i := range []int{0, 1, 2500, 4998, 4999} {
		got := idx.EqualityLookup(data[i].Key)
		require.Equal(t, int64(data[i].Payload), got)
	}

	if data[0].Key > 0 {
		require.Equal(t, kv.Overflow, idx.EqualityLookup(data[0].Key-1))
	}
}
