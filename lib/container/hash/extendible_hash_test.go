package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// identityHash routes an int key by its own value, the way the page table
// tests of the original engine did
func identityHash(key int) uint64 {
	return uint64(key)
}

func TestExtendibleHashBasic(t *testing.T) {
	h := NewExtendibleHash[int, string](10, identityHash)

	h.Insert(1, "a")
	h.Insert(2, "b")
	h.Insert(3, "c")

	v, ok := h.Find(2)
	require.True(t, ok)
	require.Equal(t, "b", v)

	_, ok = h.Find(10)
	require.False(t, ok)

	// overwrite in place
	h.Insert(2, "bb")
	v, ok = h.Find(2)
	require.True(t, ok)
	require.Equal(t, "bb", v)

	require.True(t, h.Remove(2))
	_, ok = h.Find(2)
	require.False(t, ok)
	require.False(t, h.Remove(2))
}

func TestExtendibleHashSplit(t *testing.T) {
	h := NewExtendibleHash[int, string](2, identityHash)
	require.Equal(t, uint32(0), h.GetGlobalDepth())
	require.Equal(t, 1, h.GetNumBuckets())

	h.Insert(1, "a")
	h.Insert(2, "b")
	h.Insert(3, "c")

	// the third insert overflows the single bucket: the directory doubles
	// and the bucket splits on bit 0
	require.Equal(t, uint32(1), h.GetGlobalDepth())
	require.Equal(t, 2, h.GetNumBuckets())

	v, ok := h.Find(1)
	require.True(t, ok)
	require.Equal(t, "a", v)
	v, ok = h.Find(2)
	require.True(t, ok)
	require.Equal(t, "b", v)
	v, ok = h.Find(3)
	require.True(t, ok)
	require.Equal(t, "c", v)
}

func TestExtendibleHashGrowth(t *testing.T) {
	h := NewExtendibleHash[int, int](2, identityHash)

	numEntries := 200
	for i := 0; i < numEntries; i++ {
		h.Insert(i, i*10)
	}
	for i := 0; i < numEntries; i++ {
		v, ok := h.Find(i)
		require.True(t, ok, "key %d is missing", i)
		require.Equal(t, i*10, v)
	}
	require.True(t, h.GetNumBuckets() > 1)

	// every key sits in a bucket whose directory slots agree with the low
	// localDepth bits of the key's hash
	for slot := 0; slot < 1<<h.GetGlobalDepth(); slot++ {
		localDepth := h.GetLocalDepth(slot)
		mask := uint64(1)<<localDepth - 1
		for _, item := range h.bucketTable[slot].items {
			require.Equal(t, uint64(slot)&mask, identityHash(item.First)&mask)
		}
	}

	for i := 0; i < numEntries; i += 2 {
		require.True(t, h.Remove(i))
	}
	for i := 0; i < numEntries; i++ {
		_, ok := h.Find(i)
		require.Equal(t, i%2 == 1, ok)
	}
}
