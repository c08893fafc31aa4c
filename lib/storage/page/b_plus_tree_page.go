package page

import (
	"encoding/binary"
	"unsafe"

	"github.com/ryogrid/UzushioDB/lib/common"
	"github.com/ryogrid/UzushioDB/lib/types"
)

/**
 * BPlusTreePage is the header part shared by the internal page and the leaf
 * page of the B+tree. The page bytes are the canonical representation; every
 * accessor reads and writes the frame's data directly, so a node reference
 * is nothing more than a pinned frame viewed through typed accessors.
 *
 * Header format (size in byte, 24 bytes in total):
 * ----------------------------------------------------------------------------
 * | PageType (4) | LSN (4) | CurrentSize (4) | MaxSize (4) |
 * ----------------------------------------------------------------------------
 * | ParentPageId (4) | PageId (4) |
 * ----------------------------------------------------------------------------
 */
type BPlusTreePage struct {
	Page
}

// IndexPageType distinguishes the node kinds of the B+tree
type IndexPageType int32

const (
	InvalidIndexPage IndexPageType = iota
	LeafPage
	InternalPage
)

// OpType is the kind of B+tree operation a traversal runs on behalf of
type OpType int32

const (
	GetOp OpType = iota
	InsertOp
	DeleteOp
)

const (
	offsetPageType      = 0
	offsetSize          = 8
	offsetMaxSize       = 12
	offsetParentPageId  = 16
	offsetPageId        = 20
	sizeBPlusTreeHeader = 24
)

// CastPageAsBPlusTreePage casts the abstract Page into the shared node view.
// The page must already carry a valid node tag.
func CastPageAsBPlusTreePage(page *Page) *BPlusTreePage {
	bp := (*BPlusTreePage)(unsafe.Pointer(page))
	common.SH_Assert(bp.GetPageType() == LeafPage || bp.GetPageType() == InternalPage,
		"page is not a B+tree node")
	return bp
}

func (bp *BPlusTreePage) GetPageType() IndexPageType {
	return IndexPageType(binary.LittleEndian.Uint32(bp.Data()[offsetPageType:]))
}

func (bp *BPlusTreePage) SetPageType(pageType IndexPageType) {
	binary.LittleEndian.PutUint32(bp.Data()[offsetPageType:], uint32(pageType))
}

func (bp *BPlusTreePage) IsLeafPage() bool {
	return bp.GetPageType() == LeafPage
}

// IsRootPage reports whether this node is the root. The root is the only
// node without a parent.
func (bp *BPlusTreePage) IsRootPage() bool {
	return bp.GetParentPageId() == types.InvalidPageID
}

func (bp *BPlusTreePage) GetSize() int32 {
	return int32(binary.LittleEndian.Uint32(bp.Data()[offsetSize:]))
}

func (bp *BPlusTreePage) SetSize(size int32) {
	binary.LittleEndian.PutUint32(bp.Data()[offsetSize:], uint32(size))
}

func (bp *BPlusTreePage) IncreaseSize(amount int32) {
	bp.SetSize(bp.GetSize() + amount)
}

func (bp *BPlusTreePage) GetMaxSize() int32 {
	return int32(binary.LittleEndian.Uint32(bp.Data()[offsetMaxSize:]))
}

func (bp *BPlusTreePage) SetMaxSize(maxSize int32) {
	binary.LittleEndian.PutUint32(bp.Data()[offsetMaxSize:], uint32(maxSize))
}

// GetMinSize returns the fill bound below which a node underflows. Only the
// root may hold fewer entries: an empty leaf root means the tree is empty,
// an internal root with a single child collapses into that child.
func (bp *BPlusTreePage) GetMinSize() int32 {
	if bp.IsRootPage() {
		if bp.IsLeafPage() {
			return 1
		}
		return 2
	}
	return (bp.GetMaxSize() + 1) / 2
}

func (bp *BPlusTreePage) GetParentPageId() types.PageID {
	return types.NewPageIDFromBytes(bp.Data()[offsetParentPageId : offsetParentPageId+4])
}

func (bp *BPlusTreePage) SetParentPageId(parentPageId types.PageID) {
	copy(bp.Data()[offsetParentPageId:offsetParentPageId+4], parentPageId.Serialize())
}

func (bp *BPlusTreePage) GetPageId() types.PageID {
	return types.NewPageIDFromBytes(bp.Data()[offsetPageId : offsetPageId+4])
}

func (bp *BPlusTreePage) SetPageId(pageId types.PageID) {
	copy(bp.Data()[offsetPageId:offsetPageId+4], pageId.Serialize())
}

// IsSafe reports whether op applied to this node cannot propagate to the
// parent: an insert cannot split it, a delete cannot underflow it.
func (bp *BPlusTreePage) IsSafe(op OpType) bool {
	switch op {
	case GetOp:
		return true
	case InsertOp:
		return bp.GetSize() < bp.GetMaxSize()
	case DeleteOp:
		return bp.GetSize() > bp.GetMinSize()
	}
	return false
}
