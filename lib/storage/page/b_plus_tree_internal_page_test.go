package page

import (
	"testing"

	"github.com/ryogrid/UzushioDB/lib/storage/index/index_common"
	"github.com/ryogrid/UzushioDB/lib/types"
	"github.com/stretchr/testify/require"
)

func newTestInternal(t *testing.T, pageId types.PageID, maxSize int32) *BPlusTreeInternalPage {
	t.Helper()
	return NewBPlusTreeInternalPage(NewEmpty(pageId), pageId, types.InvalidPageID, maxSize)
}

func TestInternalPageLookup(t *testing.T) {
	cmp := index_common.IntegerComparator
	node := newTestInternal(t, 1, 4)

	node.PopulateNewRoot(types.PageID(10), key(5), types.PageID(20))
	require.Equal(t, int32(2), node.GetSize())
	require.Equal(t, types.PageID(10), node.ValueAt(0))
	require.Equal(t, types.PageID(20), node.ValueAt(1))

	// keys below the first separator route to the slot 0 child
	require.Equal(t, types.PageID(10), node.Lookup(key(1), cmp))
	require.Equal(t, types.PageID(20), node.Lookup(key(5), cmp))
	require.Equal(t, types.PageID(20), node.Lookup(key(9), cmp))

	node.InsertNodeAfter(types.PageID(20), key(8), types.PageID(30))
	require.Equal(t, int32(3), node.GetSize())
	require.Equal(t, types.PageID(20), node.Lookup(key(7), cmp))
	require.Equal(t, types.PageID(30), node.Lookup(key(8), cmp))
	require.Equal(t, types.PageID(30), node.Lookup(key(100), cmp))

	require.Equal(t, int32(1), node.ValueIndex(types.PageID(20)))
	require.Equal(t, int32(-1), node.ValueIndex(types.PageID(99)))
}

func TestInternalPageMoveHalfTo(t *testing.T) {
	node := newTestInternal(t, 1, 4)

	node.PopulateNewRoot(types.PageID(10), key(2), types.PageID(20))
	node.InsertNodeAfter(types.PageID(20), key(3), types.PageID(30))
	node.InsertNodeAfter(types.PageID(30), key(4), types.PageID(40))
	node.InsertNodeAfter(types.PageID(40), key(5), types.PageID(50))
	require.Equal(t, int32(5), node.GetSize())

	recipient := newTestInternal(t, 2, 4)
	node.MoveHalfTo(recipient)

	// the split point floor(n/2)+1 leaves three pairs and moves two
	require.Equal(t, int32(3), node.GetSize())
	require.Equal(t, int32(2), recipient.GetSize())
	require.Equal(t, types.PageID(40), recipient.ValueAt(0))
	require.Equal(t, types.PageID(50), recipient.ValueAt(1))
	// the slot 0 key of the new node is the separator to push up
	require.Equal(t, int32(4), recipient.KeyAt(0).ToInt32())
	require.Equal(t, int32(5), recipient.KeyAt(1).ToInt32())
}

func TestInternalPageRemove(t *testing.T) {
	node := newTestInternal(t, 1, 4)
	node.PopulateNewRoot(types.PageID(10), key(2), types.PageID(20))
	node.InsertNodeAfter(types.PageID(20), key(3), types.PageID(30))

	node.Remove(1)
	require.Equal(t, int32(2), node.GetSize())
	require.Equal(t, types.PageID(10), node.ValueAt(0))
	require.Equal(t, types.PageID(30), node.ValueAt(1))
	require.Equal(t, int32(3), node.KeyAt(1).ToInt32())
}

func TestInternalPageMergeAndRotate(t *testing.T) {
	parentId := types.PageID(100)
	left := newTestInternal(t, 1, 4)
	right := newTestInternal(t, 2, 4)
	left.SetParentPageId(parentId)
	right.SetParentPageId(parentId)

	left.PopulateNewRoot(types.PageID(10), key(2), types.PageID(20))
	right.PopulateNewRoot(types.PageID(30), key(6), types.PageID(40))
	right.InsertNodeAfter(types.PageID(40), key(7), types.PageID(50))

	// rotate the first child of the right page over, through the
	// separator key 5
	newSeparator, movedChild := right.MoveFirstToEndOf(left, key(5))
	require.Equal(t, int32(6), newSeparator.ToInt32())
	require.Equal(t, types.PageID(30), movedChild)
	require.Equal(t, int32(3), left.GetSize())
	require.Equal(t, int32(2), right.GetSize())
	require.Equal(t, types.PageID(30), left.ValueAt(2))
	require.Equal(t, int32(5), left.KeyAt(2).ToInt32())
	require.Equal(t, types.PageID(40), right.ValueAt(0))

	// rotate it back
	newSeparator, movedChild = left.MoveLastToFrontOf(right, key(6))
	require.Equal(t, int32(5), newSeparator.ToInt32())
	require.Equal(t, types.PageID(30), movedChild)
	require.Equal(t, int32(2), left.GetSize())
	require.Equal(t, int32(3), right.GetSize())
	require.Equal(t, types.PageID(30), right.ValueAt(0))
	require.Equal(t, int32(6), right.KeyAt(1).ToInt32())
	require.Equal(t, types.PageID(40), right.ValueAt(1))

	// drain the right page into the left one, the separator key 5
	// traveling down into its slot 0
	right.Remove(2)
	right.MoveAllTo(left, key(5))
	require.Equal(t, int32(4), left.GetSize())
	require.Equal(t, int32(0), right.GetSize())
	require.Equal(t, int32(5), left.KeyAt(2).ToInt32())
	require.Equal(t, types.PageID(30), left.ValueAt(2))
	require.Equal(t, int32(6), left.KeyAt(3).ToInt32())
	require.Equal(t, types.PageID(40), left.ValueAt(3))
}
