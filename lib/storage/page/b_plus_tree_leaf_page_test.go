package page

import (
	"testing"

	"github.com/ryogrid/UzushioDB/lib/storage/index/index_common"
	"github.com/ryogrid/UzushioDB/lib/types"
	"github.com/stretchr/testify/require"
)

func key(v int32) index_common.GenericKey {
	return index_common.NewIntegerKey(v)
}

func rid(v int32) RID {
	return RID{types.PageID(v), uint32(v)}
}

func newTestLeaf(t *testing.T, pageId types.PageID, maxSize int32) *BPlusTreeLeafPage {
	t.Helper()
	return NewBPlusTreeLeafPage(NewEmpty(pageId), pageId, types.InvalidPageID, maxSize)
}

func TestLeafPageInsertAndKeyIndex(t *testing.T) {
	cmp := index_common.IntegerComparator
	leaf := newTestLeaf(t, 1, 4)

	require.Equal(t, int32(0), leaf.KeyIndex(key(3), cmp))

	leaf.Insert(key(1), rid(1), cmp)
	require.Equal(t, int32(0), leaf.KeyIndex(key(0), cmp))
	require.Equal(t, int32(1), leaf.KeyIndex(key(100), cmp))

	leaf.Insert(key(2), rid(2), cmp)
	leaf.Insert(key(3), rid(3), cmp)
	leaf.Insert(key(4), rid(4), cmp)
	require.Equal(t, int32(4), leaf.GetSize())
	require.Equal(t, int32(1), leaf.KeyIndex(key(2), cmp))
	require.Equal(t, int32(3), leaf.KeyIndex(key(4), cmp))
	require.Equal(t, int32(4), leaf.KeyIndex(key(100), cmp))

	v, found := leaf.Lookup(key(3), cmp)
	require.True(t, found)
	require.Equal(t, rid(3), v)
	_, found = leaf.Lookup(key(9), cmp)
	require.False(t, found)

	// out of order insertion keeps the pairs sorted
	leaf2 := newTestLeaf(t, 2, 4)
	for _, v := range []int32{3, 1, 4, 2} {
		leaf2.Insert(key(v), rid(v), cmp)
	}
	for i, expected := range []int32{1, 2, 3, 4} {
		require.Equal(t, expected, leaf2.KeyAt(int32(i)).ToInt32())
	}
}

func TestLeafPageMoveHalfTo(t *testing.T) {
	cmp := index_common.IntegerComparator
	leaf := newTestLeaf(t, 1, 4)

	// maxSize 4 holds five entries transiently; the split moves the upper
	// half (slots 3 and up) out
	for v := int32(1); v <= 5; v++ {
		leaf.Insert(key(v), rid(v), cmp)
	}
	require.Equal(t, int32(5), leaf.GetSize())

	newLeaf := newTestLeaf(t, 2, 4)
	leaf.MoveHalfTo(newLeaf)

	require.Equal(t, int32(3), leaf.GetSize())
	require.Equal(t, int32(2), newLeaf.GetSize())
	for i, expected := range []int32{1, 2, 3} {
		require.Equal(t, expected, leaf.KeyAt(int32(i)).ToInt32())
	}
	for i, expected := range []int32{4, 5} {
		require.Equal(t, expected, newLeaf.KeyAt(int32(i)).ToInt32())
	}

	// the new leaf spliced into the chain
	require.Equal(t, types.PageID(2), leaf.GetNextPageId())
	require.Equal(t, types.InvalidPageID, newLeaf.GetNextPageId())
}

func TestLeafPageRemove(t *testing.T) {
	cmp := index_common.IntegerComparator
	leaf := newTestLeaf(t, 1, 4)
	for v := int32(1); v <= 4; v++ {
		leaf.Insert(key(v), rid(v), cmp)
	}

	require.Equal(t, int32(3), leaf.RemoveAndDeleteRecord(key(2), cmp))
	// removing an absent key changes nothing
	require.Equal(t, int32(3), leaf.RemoveAndDeleteRecord(key(2), cmp))

	for i, expected := range []int32{1, 3, 4} {
		require.Equal(t, expected, leaf.KeyAt(int32(i)).ToInt32())
	}
}

func TestLeafPageMergeAndRedistribute(t *testing.T) {
	cmp := index_common.IntegerComparator
	left := newTestLeaf(t, 1, 4)
	right := newTestLeaf(t, 2, 4)
	left.SetParentPageId(types.PageID(10))
	right.SetParentPageId(types.PageID(10))
	left.SetNextPageId(right.GetPageId())

	left.Insert(key(1), rid(1), cmp)
	left.Insert(key(2), rid(2), cmp)
	right.Insert(key(5), rid(5), cmp)
	right.Insert(key(6), rid(6), cmp)

	// steal the head of the right neighbor
	right.MoveFirstToEndOf(left)
	require.Equal(t, int32(3), left.GetSize())
	require.Equal(t, int32(1), right.GetSize())
	require.Equal(t, int32(5), left.KeyAt(2).ToInt32())
	require.Equal(t, int32(6), right.KeyAt(0).ToInt32())

	// give it back the other way
	left.MoveLastToFrontOf(right)
	require.Equal(t, int32(5), right.KeyAt(0).ToInt32())
	require.Equal(t, int32(2), left.GetSize())

	// merge the right page into the left one
	right.MoveAllTo(left)
	require.Equal(t, int32(4), left.GetSize())
	require.Equal(t, int32(0), right.GetSize())
	require.Equal(t, types.InvalidPageID, left.GetNextPageId())
	for i, expected := range []int32{1, 2, 5, 6} {
		require.Equal(t, expected, left.KeyAt(int32(i)).ToInt32())
	}
}
