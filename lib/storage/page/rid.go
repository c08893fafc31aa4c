package page

import "github.com/ryogrid/UzushioDB/lib/types"

// RID is the record identifier for the given page identifier and slot number
type RID struct {
	pageId  types.PageID
	slotNum uint32
}

// NewRID creates a record identifier
func NewRID(pageId types.PageID, slot uint32) *RID {
	return &RID{pageId, slot}
}

// Set sets the record identifier
func (r *RID) Set(pageId types.PageID, slot uint32) {
	r.pageId = pageId
	r.slotNum = slot
}

// GetPageId gets the page id
func (r *RID) GetPageId() types.PageID {
	return r.pageId
}

// GetSlot gets the slot number
func (r *RID) GetSlot() uint32 {
	return r.slotNum
}
