// this code is based on https://github.com/brunocalza/go-bustub

package page

import (
	"sync/atomic"

	"github.com/ryogrid/UzushioDB/lib/common"
	"github.com/ryogrid/UzushioDB/lib/types"
)

const SizePageHeader = 8
const OffsetPageStart = 0
const OffsetLSN = 4

/**
 * Page is the basic unit of storage within the database system. Page provides a wrapper for actual data pages being
 * held in main memory. Page also contains book-keeping information that is used by the buffer pool manager, e.g.
 * pin count, dirty flag, page id, etc.
 *
 * Pinning keeps the frame resident. Latching protects the contents. The two
 * are independent: B+tree code must latch every page it pins before touching
 * the data.
 */
type Page struct {
	id            types.PageID // identifies the page. It is used to find the offset of the page on disk
	pinCount      int32        // counts how many callers are accessing it
	isDirty       bool         // the page was modified but not flushed
	isDeallocated bool         // whether this page is deallocated or not
	data          *[common.PageSize]byte
	rwlatch       common.ReaderWriterLatch
}

// IncPinCount increments pin count
func (p *Page) IncPinCount() {
	atomic.AddInt32(&p.pinCount, 1)
}

// DecPinCount decrements pin count
func (p *Page) DecPinCount() {
	atomic.AddInt32(&p.pinCount, -1)
}

// PinCount returns the pin count
func (p *Page) PinCount() int32 {
	return atomic.LoadInt32(&p.pinCount)
}

// GetPageId returns the page id
func (p *Page) GetPageId() types.PageID {
	return p.id
}

// Data returns the data of the page
func (p *Page) Data() *[common.PageSize]byte {
	return p.data
}

// SetIsDirty sets the isDirty bit
func (p *Page) SetIsDirty(isDirty bool) {
	p.isDirty = isDirty
}

// IsDirty checks if the page is dirty
func (p *Page) IsDirty() bool {
	return p.isDirty
}

func (p *Page) IsDeallocated() bool {
	return p.isDeallocated
}

func (p *Page) SetIsDeallocated(isDeallocated bool) {
	p.isDeallocated = isDeallocated
}

// Copy copies data to the page's data starting at offset
func (p *Page) Copy(offset uint32, data []byte) {
	copy(p.data[offset:], data)
}

// New creates a page holding data
func New(id types.PageID, isDirty bool, data *[common.PageSize]byte) *Page {
	return &Page{id, int32(1), isDirty, false, data, common.NewRWLatch()}
}

// NewEmpty creates a new empty page
func NewEmpty(id types.PageID) *Page {
	return &Page{id, int32(1), false, false, &[common.PageSize]byte{}, common.NewRWLatch()}
}

/** @return the page LSN. */
func (p *Page) GetLSN() types.LSN {
	return types.NewLSNFromBytes(p.data[OffsetLSN : OffsetLSN+types.SizeOfLSN])
}

/** Sets the page LSN. */
func (p *Page) SetLSN(lsn types.LSN) {
	copy(p.data[OffsetLSN:OffsetLSN+types.SizeOfLSN], lsn.Serialize())
}

/** Acquire the page write latch. */
func (p *Page) WLatch() {
	p.rwlatch.WLock()
}

/** Release the page write latch. */
func (p *Page) WUnlatch() {
	p.rwlatch.WUnlock()
}

/** Acquire the page read latch. */
func (p *Page) RLatch() {
	p.rwlatch.RLock()
}

/** Release the page read latch. */
func (p *Page) RUnlatch() {
	p.rwlatch.RUnlock()
}
