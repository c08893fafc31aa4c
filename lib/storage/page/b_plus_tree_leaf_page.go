package page

import (
	"unsafe"

	"github.com/ryogrid/UzushioDB/lib/common"
	"github.com/ryogrid/UzushioDB/lib/storage/index/index_common"
	"github.com/ryogrid/UzushioDB/lib/types"
)

/**
 * BPlusTreeLeafPage stores ordered (key, RID) pairs and points at the next
 * leaf, so that the leaf level forms a singly linked list in key order.
 * Unlike the internal page, the slot 0 key is a real key.
 *
 * Leaf page format (keys are stored in increasing order):
 * ---------------------------------------------------------------------
 * | HEADER (24) | NextPageId (4) | KEY(1)+RID(1) | KEY(2)+RID(2) | ... |
 * ---------------------------------------------------------------------
 */
type BPlusTreeLeafPage struct {
	BPlusTreePage
}

const (
	offsetNextPageId = sizeBPlusTreeHeader
	sizeLeafHeader   = sizeBPlusTreeHeader + 4
	sizeRID          = 8
	sizeLeafPair     = index_common.KeySize + sizeRID
	offsetLeafPairs  = sizeLeafHeader
)

// DefaultLeafMaxSize leaves one slot free to hold the overflow pair between
// insertion and split.
const DefaultLeafMaxSize = (common.PageSize-sizeLeafHeader)/sizeLeafPair - 1

// CastPageAsBPTreeLeafPage casts the abstract Page into the leaf node view,
// validating the node tag.
func CastPageAsBPTreeLeafPage(page *Page) *BPlusTreeLeafPage {
	lp := (*BPlusTreeLeafPage)(unsafe.Pointer(page))
	common.SH_Assert(lp.GetPageType() == LeafPage, "page is not a leaf node")
	return lp
}

// NewBPlusTreeLeafPage formats page as an empty leaf node.
// maxSize <= 0 selects the capacity derived from the page size.
func NewBPlusTreeLeafPage(page *Page, pageId types.PageID, parentId types.PageID, maxSize int32) *BPlusTreeLeafPage {
	lp := (*BPlusTreeLeafPage)(unsafe.Pointer(page))
	lp.SetPageType(LeafPage)
	lp.SetLSN(common.InvalidLSN)
	lp.SetSize(0)
	if maxSize <= 0 {
		maxSize = DefaultLeafMaxSize
	}
	lp.SetMaxSize(maxSize)
	lp.SetPageId(pageId)
	lp.SetParentPageId(parentId)
	lp.SetNextPageId(types.InvalidPageID)
	return lp
}

func (lp *BPlusTreeLeafPage) GetNextPageId() types.PageID {
	return types.NewPageIDFromBytes(lp.Data()[offsetNextPageId : offsetNextPageId+4])
}

func (lp *BPlusTreeLeafPage) SetNextPageId(nextPageId types.PageID) {
	copy(lp.Data()[offsetNextPageId:offsetNextPageId+4], nextPageId.Serialize())
}

func (lp *BPlusTreeLeafPage) entryOffset(index int32) int32 {
	return offsetLeafPairs + index*sizeLeafPair
}

// KeyIndex returns the first slot whose key is >= key: the slot key lives
// at when present, the insertion point otherwise.
func (lp *BPlusTreeLeafPage) KeyIndex(key index_common.GenericKey, comparator index_common.KeyComparator) int32 {
	left := int32(0)
	right := lp.GetSize() - 1
	for left <= right {
		mid := left + (right-left)/2
		compareResult := comparator(lp.KeyAt(mid), key)
		if compareResult == 0 {
			return mid
		} else if compareResult < 0 {
			left = mid + 1
		} else {
			right = mid - 1
		}
	}
	return left
}

func (lp *BPlusTreeLeafPage) KeyAt(index int32) index_common.GenericKey {
	common.SH_Assert(index >= 0 && index < lp.GetSize(), "KeyAt: index out of range")
	offset := lp.entryOffset(index)
	return index_common.NewGenericKeyFromBytes(lp.Data()[offset : offset+index_common.KeySize])
}

// GetItem returns the pair at index
func (lp *BPlusTreeLeafPage) GetItem(index int32) (index_common.GenericKey, RID) {
	common.SH_Assert(index >= 0 && index < lp.GetSize(), "GetItem: index out of range")
	offset := lp.entryOffset(index)
	key := index_common.NewGenericKeyFromBytes(lp.Data()[offset : offset+index_common.KeySize])
	pageId := types.NewPageIDFromBytes(lp.Data()[offset+index_common.KeySize : offset+index_common.KeySize+4])
	slot := uint32(types.NewPageIDFromBytes(lp.Data()[offset+index_common.KeySize+4 : offset+index_common.KeySize+8]))
	return key, RID{pageId, slot}
}

func (lp *BPlusTreeLeafPage) setItem(index int32, key index_common.GenericKey, rid RID) {
	offset := lp.entryOffset(index)
	copy(lp.Data()[offset:offset+index_common.KeySize], key.Serialize())
	copy(lp.Data()[offset+index_common.KeySize:offset+index_common.KeySize+4], rid.GetPageId().Serialize())
	copy(lp.Data()[offset+index_common.KeySize+4:offset+index_common.KeySize+8], types.PageID(rid.GetSlot()).Serialize())
}

// Insert stores (key, value) keeping the pairs ordered.
// Returns the size after insertion.
func (lp *BPlusTreeLeafPage) Insert(key index_common.GenericKey, value RID, comparator index_common.KeyComparator) int32 {
	common.SH_Assert(lp.GetSize() < lp.GetMaxSize()+1, "Insert: leaf has no room for the overflow pair")
	targetIndex := lp.KeyIndex(key, comparator)

	from := lp.entryOffset(targetIndex)
	to := lp.entryOffset(targetIndex + 1)
	end := lp.entryOffset(lp.GetSize())
	copy(lp.Data()[to:], lp.Data()[from:end])

	lp.setItem(targetIndex, key, value)
	lp.IncreaseSize(1)
	return lp.GetSize()
}

// Lookup finds the value stored under key
func (lp *BPlusTreeLeafPage) Lookup(key index_common.GenericKey, comparator index_common.KeyComparator) (RID, bool) {
	index := lp.KeyIndex(key, comparator)
	if lp.GetSize() > 0 && index < lp.GetSize() {
		k, v := lp.GetItem(index)
		if comparator(key, k) == 0 {
			return v, true
		}
	}
	return RID{}, false
}

// RemoveAndDeleteRecord deletes the pair of key when present.
// Returns the size after deletion.
func (lp *BPlusTreeLeafPage) RemoveAndDeleteRecord(key index_common.GenericKey, comparator index_common.KeyComparator) int32 {
	index := lp.KeyIndex(key, comparator)
	if lp.GetSize() > 0 && index < lp.GetSize() && comparator(key, lp.KeyAt(index)) == 0 {
		from := lp.entryOffset(index + 1)
		to := lp.entryOffset(index)
		end := lp.entryOffset(lp.GetSize())
		copy(lp.Data()[to:], lp.Data()[from:end])
		lp.IncreaseSize(-1)
	}
	return lp.GetSize()
}

// MoveHalfTo moves the upper half of the pairs (slots floor(n/2)+1 and up)
// to the empty recipient and splices recipient into the leaf chain right
// after this page.
func (lp *BPlusTreeLeafPage) MoveHalfTo(recipient *BPlusTreeLeafPage) {
	common.SH_Assert(lp.GetSize() == lp.GetMaxSize()+1, "MoveHalfTo: leaf is not overflowed")

	recipient.SetNextPageId(lp.GetNextPageId())
	lp.SetNextPageId(recipient.GetPageId())

	lastIndex := lp.GetSize() - 1
	copyStartIndex := lastIndex/2 + 1
	moved := lastIndex - copyStartIndex + 1

	from := lp.entryOffset(copyStartIndex)
	end := lp.entryOffset(lp.GetSize())
	copy(recipient.Data()[recipient.entryOffset(0):], lp.Data()[from:end])

	lp.SetSize(copyStartIndex)
	recipient.SetSize(moved)
}

// MoveAllTo drains every pair into the tail of recipient, which must be the
// left neighbor of this page in the leaf chain. The caller deletes this page.
func (lp *BPlusTreeLeafPage) MoveAllTo(recipient *BPlusTreeLeafPage) {
	common.SH_Assert(lp.GetSize()+recipient.GetSize() <= lp.GetMaxSize(), "MoveAllTo: recipient cannot hold every pair")
	common.SH_Assert(lp.GetParentPageId() == recipient.GetParentPageId(), "MoveAllTo: nodes are not siblings")
	common.SH_Assert(recipient.GetNextPageId() == lp.GetPageId(), "MoveAllTo: recipient is not the left neighbor")

	size := lp.GetSize()
	from := lp.entryOffset(0)
	end := lp.entryOffset(size)
	copy(recipient.Data()[recipient.entryOffset(recipient.GetSize()):], lp.Data()[from:end])
	recipient.IncreaseSize(size)
	lp.SetSize(0)

	recipient.SetNextPageId(lp.GetNextPageId())
	lp.SetNextPageId(types.InvalidPageID)
}

// MoveFirstToEndOf moves the first pair to the tail of recipient, which must
// be the left neighbor. The caller refreshes the parent separator with the
// new first key of this page.
func (lp *BPlusTreeLeafPage) MoveFirstToEndOf(recipient *BPlusTreeLeafPage) {
	common.SH_Assert(lp.GetParentPageId() == recipient.GetParentPageId(), "MoveFirstToEndOf: nodes are not siblings")
	common.SH_Assert(recipient.GetNextPageId() == lp.GetPageId(), "MoveFirstToEndOf: recipient is not the left neighbor")

	key, value := lp.GetItem(0)
	recipient.setItem(recipient.GetSize(), key, value)
	recipient.IncreaseSize(1)

	from := lp.entryOffset(1)
	to := lp.entryOffset(0)
	end := lp.entryOffset(lp.GetSize())
	copy(lp.Data()[to:], lp.Data()[from:end])
	lp.IncreaseSize(-1)
}

// MoveLastToFrontOf moves the last pair to the head of recipient, which must
// be the right neighbor. The caller refreshes the parent separator with the
// moved key.
func (lp *BPlusTreeLeafPage) MoveLastToFrontOf(recipient *BPlusTreeLeafPage) {
	common.SH_Assert(lp.GetParentPageId() == recipient.GetParentPageId(), "MoveLastToFrontOf: nodes are not siblings")
	common.SH_Assert(lp.GetNextPageId() == recipient.GetPageId(), "MoveLastToFrontOf: recipient is not the right neighbor")

	key, value := lp.GetItem(lp.GetSize() - 1)
	lp.IncreaseSize(-1)

	from := recipient.entryOffset(0)
	to := recipient.entryOffset(1)
	end := recipient.entryOffset(recipient.GetSize())
	copy(recipient.Data()[to:], recipient.Data()[from:end])
	recipient.IncreaseSize(1)
	recipient.setItem(0, key, value)
}
