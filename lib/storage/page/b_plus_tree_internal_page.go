package page

import (
	"unsafe"

	"github.com/ryogrid/UzushioDB/lib/common"
	"github.com/ryogrid/UzushioDB/lib/storage/index/index_common"
	"github.com/ryogrid/UzushioDB/lib/types"
)

/**
 * BPlusTreeInternalPage stores n directed pointers to children with n-1
 * ordered keys. The pair at slot 0 carries no key: every key k in the
 * subtree at Value(i) with i >= 1 satisfies Key(i) <= k < Key(i+1).
 *
 * Internal page format (keys are stored in increasing order):
 * --------------------------------------------------------------------------
 * | HEADER (24) | KEY(1)+PAGE_ID(1) | KEY(2)+PAGE_ID(2) | ... |
 * --------------------------------------------------------------------------
 */
type BPlusTreeInternalPage struct {
	BPlusTreePage
}

const (
	sizeInternalPair    = index_common.KeySize + 4
	offsetInternalPairs = sizeBPlusTreeHeader
)

// DefaultInternalMaxSize leaves one slot free to hold the overflow pair
// between insertion and split.
const DefaultInternalMaxSize = (common.PageSize-sizeBPlusTreeHeader)/sizeInternalPair - 1

// CastPageAsBPTreeInternalPage casts the abstract Page into the internal
// node view, validating the node tag.
func CastPageAsBPTreeInternalPage(page *Page) *BPlusTreeInternalPage {
	ip := (*BPlusTreeInternalPage)(unsafe.Pointer(page))
	common.SH_Assert(ip.GetPageType() == InternalPage, "page is not an internal node")
	return ip
}

// NewBPlusTreeInternalPage formats page as an empty internal node.
// maxSize <= 0 selects the capacity derived from the page size.
func NewBPlusTreeInternalPage(page *Page, pageId types.PageID, parentId types.PageID, maxSize int32) *BPlusTreeInternalPage {
	ip := (*BPlusTreeInternalPage)(unsafe.Pointer(page))
	ip.SetPageType(InternalPage)
	ip.SetLSN(common.InvalidLSN)
	ip.SetSize(0)
	if maxSize <= 0 {
		maxSize = DefaultInternalMaxSize
	}
	ip.SetMaxSize(maxSize)
	ip.SetParentPageId(parentId)
	ip.SetPageId(pageId)
	return ip
}

func (ip *BPlusTreeInternalPage) entryOffset(index int32) int32 {
	return offsetInternalPairs + index*sizeInternalPair
}

func (ip *BPlusTreeInternalPage) KeyAt(index int32) index_common.GenericKey {
	common.SH_Assert(index >= 0 && index < ip.GetSize(), "KeyAt: index out of range")
	offset := ip.entryOffset(index)
	return index_common.NewGenericKeyFromBytes(ip.Data()[offset : offset+index_common.KeySize])
}

func (ip *BPlusTreeInternalPage) SetKeyAt(index int32, key index_common.GenericKey) {
	common.SH_Assert(index > 0 && index < ip.GetMaxSize()+1, "SetKeyAt: index out of range")
	offset := ip.entryOffset(index)
	copy(ip.Data()[offset:offset+index_common.KeySize], key.Serialize())
}

func (ip *BPlusTreeInternalPage) ValueAt(index int32) types.PageID {
	common.SH_Assert(index >= 0 && index < ip.GetSize(), "ValueAt: index out of range")
	offset := ip.entryOffset(index) + index_common.KeySize
	return types.NewPageIDFromBytes(ip.Data()[offset : offset+4])
}

func (ip *BPlusTreeInternalPage) SetValueAt(index int32, value types.PageID) {
	offset := ip.entryOffset(index) + index_common.KeySize
	copy(ip.Data()[offset:offset+4], value.Serialize())
}

func (ip *BPlusTreeInternalPage) setPairAt(index int32, key index_common.GenericKey, value types.PageID) {
	offset := ip.entryOffset(index)
	copy(ip.Data()[offset:offset+index_common.KeySize], key.Serialize())
	copy(ip.Data()[offset+index_common.KeySize:offset+sizeInternalPair], value.Serialize())
}

// ValueIndex returns the slot whose value equals value, or -1
func (ip *BPlusTreeInternalPage) ValueIndex(value types.PageID) int32 {
	for i := int32(0); i < ip.GetSize(); i++ {
		if ip.ValueAt(i) == value {
			return i
		}
	}
	return -1
}

// Lookup returns the child which covers key: the value of the largest slot
// i >= 1 whose key is <= key, or the slot 0 child when no such slot exists.
func (ip *BPlusTreeInternalPage) Lookup(key index_common.GenericKey, comparator index_common.KeyComparator) types.PageID {
	common.SH_Assert(ip.GetSize() >= 2, "Lookup: internal node is underfilled")
	// binary search for the first slot whose key is >= key, starting from
	// slot 1 because slot 0 carries no key
	left := int32(1)
	right := ip.GetSize() - 1
	for left <= right {
		mid := left + (right-left)/2
		compareResult := comparator(ip.KeyAt(mid), key)
		if compareResult == 0 {
			left = mid
			break
		} else if compareResult < 0 {
			left = mid + 1
		} else {
			right = mid - 1
		}
	}
	targetIndex := left

	if targetIndex >= ip.GetSize() {
		return ip.ValueAt(ip.GetSize() - 1)
	}
	if comparator(ip.KeyAt(targetIndex), key) == 0 {
		return ip.ValueAt(targetIndex)
	}
	return ip.ValueAt(targetIndex - 1)
}

// PopulateNewRoot installs the two children of a freshly created root.
// Called only when an insertion overflows up to the old root.
func (ip *BPlusTreeInternalPage) PopulateNewRoot(oldValue types.PageID, newKey index_common.GenericKey, newValue types.PageID) {
	ip.SetValueAt(0, oldValue)
	ip.setPairAt(1, newKey, newValue)
	ip.SetSize(2)
}

// InsertNodeAfter inserts the pair (newKey, newValue) right after the slot
// holding oldValue. Returns the size after insertion.
func (ip *BPlusTreeInternalPage) InsertNodeAfter(oldValue types.PageID, newKey index_common.GenericKey, newValue types.PageID) int32 {
	index := ip.ValueIndex(oldValue)
	common.SH_Assert(index != -1, "InsertNodeAfter: old value not found")

	from := ip.entryOffset(index + 1)
	to := ip.entryOffset(index + 2)
	end := ip.entryOffset(ip.GetSize())
	copy(ip.Data()[to:], ip.Data()[from:end])

	ip.setPairAt(index+1, newKey, newValue)
	ip.IncreaseSize(1)
	return ip.GetSize()
}

// Remove deletes the pair at index, keeping the remaining pairs packed
func (ip *BPlusTreeInternalPage) Remove(index int32) {
	common.SH_Assert(0 <= index && index < ip.GetSize(), "Remove: index out of range")
	from := ip.entryOffset(index + 1)
	to := ip.entryOffset(index)
	end := ip.entryOffset(ip.GetSize())
	copy(ip.Data()[to:], ip.Data()[from:end])
	ip.IncreaseSize(-1)
}

// MoveHalfTo moves the upper half of the pairs (slots floor(n/2)+1 and up)
// to the empty recipient. The caller must rewire the parent pointer of every
// moved child to the recipient afterwards.
func (ip *BPlusTreeInternalPage) MoveHalfTo(recipient *BPlusTreeInternalPage) {
	common.SH_Assert(ip.GetSize() == ip.GetMaxSize()+1, "MoveHalfTo: node is not overflowed")

	lastIndex := ip.GetSize() - 1
	start := lastIndex/2 + 1
	moved := lastIndex - start + 1

	from := ip.entryOffset(start)
	end := ip.entryOffset(ip.GetSize())
	copy(recipient.Data()[recipient.entryOffset(0):], ip.Data()[from:end])

	ip.SetSize(start)
	recipient.SetSize(moved)
}

// MoveAllTo drains every pair of this page into the tail of recipient.
// middleKey is the separator between recipient and this page in the parent;
// it takes the place of the slot 0 key which carries none. The caller must
// rewire the moved children and delete this page.
func (ip *BPlusTreeInternalPage) MoveAllTo(recipient *BPlusTreeInternalPage, middleKey index_common.GenericKey) {
	common.SH_Assert(ip.GetSize()+recipient.GetSize() <= ip.GetMaxSize(), "MoveAllTo: recipient cannot hold every pair")
	common.SH_Assert(ip.GetParentPageId() == recipient.GetParentPageId(), "MoveAllTo: nodes are not siblings")

	size := ip.GetSize()
	start := recipient.GetSize()
	from := ip.entryOffset(0)
	end := ip.entryOffset(size)
	copy(recipient.Data()[recipient.entryOffset(start):], ip.Data()[from:end])
	recipient.IncreaseSize(size)
	recipient.SetKeyAt(start, middleKey)
	ip.SetSize(0)
}

// MoveFirstToEndOf moves the slot 0 child to the tail of recipient, keyed by
// middleKey (the parent separator). Returns the key which must replace the
// separator in the parent and the moved child page id for rewiring.
func (ip *BPlusTreeInternalPage) MoveFirstToEndOf(recipient *BPlusTreeInternalPage, middleKey index_common.GenericKey) (index_common.GenericKey, types.PageID) {
	common.SH_Assert(ip.GetParentPageId() == recipient.GetParentPageId(), "MoveFirstToEndOf: nodes are not siblings")

	movedChild := ip.ValueAt(0)
	newSeparator := ip.KeyAt(1)
	ip.SetValueAt(0, ip.ValueAt(1))
	ip.Remove(1)

	recipient.setPairAt(recipient.GetSize(), middleKey, movedChild)
	recipient.IncreaseSize(1)
	return newSeparator, movedChild
}

// MoveLastToFrontOf moves the last pair to the head of recipient. The old
// parent separator middleKey becomes the key of recipient's previous first
// child. Returns the key which must replace the separator in the parent and
// the moved child page id for rewiring.
func (ip *BPlusTreeInternalPage) MoveLastToFrontOf(recipient *BPlusTreeInternalPage, middleKey index_common.GenericKey) (index_common.GenericKey, types.PageID) {
	common.SH_Assert(ip.GetParentPageId() == recipient.GetParentPageId(), "MoveLastToFrontOf: nodes are not siblings")

	last := ip.GetSize() - 1
	newSeparator := ip.KeyAt(last)
	movedChild := ip.ValueAt(last)
	ip.IncreaseSize(-1)

	// shift recipient one slot right, then install the moved child at the
	// head with its previous first child keyed by the old separator
	from := recipient.entryOffset(0)
	to := recipient.entryOffset(1)
	end := recipient.entryOffset(recipient.GetSize())
	copy(recipient.Data()[to:], recipient.Data()[from:end])
	recipient.IncreaseSize(1)
	recipient.SetKeyAt(1, middleKey)
	recipient.SetValueAt(0, movedChild)
	return newSeparator, movedChild
}
