// this code is based on https://github.com/brunocalza/go-bustub

package buffer

import (
	"github.com/ncw/directio"
	"github.com/ryogrid/UzushioDB/lib/common"
	"github.com/ryogrid/UzushioDB/lib/container/hash"
	"github.com/ryogrid/UzushioDB/lib/recovery"
	"github.com/ryogrid/UzushioDB/lib/storage/disk"
	"github.com/ryogrid/UzushioDB/lib/storage/page"
	"github.com/ryogrid/UzushioDB/lib/types"
	"github.com/sasha-s/go-deadlock"
)

/**
 * BufferPoolManager manages a fixed pool of frames. Every frame is in
 * exactly one of three states: free (on the free list), resident and pinned
 * (in the page table, absent from the replacer), or resident and unpinned
 * (in the page table and in the replacer).
 *
 * A single mutex guards every operation, disk I/O included. Coarse on
 * purpose: correctness of the pin/eviction bookkeeping comes first here,
 * throughput is bounded by the index layer's latching anyway.
 */
type BufferPoolManager struct {
	diskManager disk.DiskManager
	pages       []*page.Page // index is FrameID. nil when the frame is free
	replacer    *LRUReplacer
	freeList    []FrameID
	pageTable   *hash.ExtendibleHash[types.PageID, FrameID]
	logManager  *recovery.LogManager
	mutex       *deadlock.Mutex
}

// FetchPage fetches the requested page from the buffer pool.
// Returns nil when the page has to be read from disk and every frame is
// pinned.
func (b *BufferPoolManager) FetchPage(pageID types.PageID) *page.Page {
	b.mutex.Lock()
	if frameID, ok := b.pageTable.Find(pageID); ok {
		pg := b.pages[frameID]
		pg.IncPinCount()
		b.replacer.Erase(frameID)
		b.mutex.Unlock()
		if common.EnableDebug {
			common.Logger.Debugf("FetchPage: pageID=%d pinCount=%d", pg.GetPageId(), pg.PinCount())
		}
		return pg
	}

	frameID := b.getFrameID()
	if frameID == nil {
		b.mutex.Unlock()
		return nil
	}

	data := directio.AlignedBlock(common.PageSize)
	err := b.diskManager.ReadPage(pageID, data)
	if err != nil {
		// hand the frame back before giving up
		b.freeList = append(b.freeList, *frameID)
		b.mutex.Unlock()
		if err != types.DeallocatedPageErr {
			common.Logger.Debugf("FetchPage: read of page %d failed: %v", pageID, err)
		}
		return nil
	}
	pageData := *(*[common.PageSize]byte)(data)
	pg := page.New(pageID, false, &pageData)

	b.pageTable.Insert(pageID, *frameID)
	b.pages[*frameID] = pg
	b.mutex.Unlock()

	return pg
}

// UnpinPage unpins the target page from the buffer pool. isDirty is ORed
// into the frame's dirty flag: once a page is dirty it stays dirty until
// flushed or evicted. Returns false when the page is not resident or not
// pinned.
func (b *BufferPoolManager) UnpinPage(pageID types.PageID, isDirty bool) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	frameID, ok := b.pageTable.Find(pageID)
	if !ok {
		return false
	}

	pg := b.pages[frameID]
	if pg.PinCount() <= 0 {
		return false
	}
	pg.DecPinCount()
	if pg.PinCount() == 0 {
		b.replacer.Insert(frameID)
	}
	if isDirty {
		pg.SetIsDirty(true)
	}
	return true
}

// FlushPage writes the target page through to disk when dirty and clears
// the dirty flag. A clean flush is a no-op. Returns false when the page is
// not resident.
func (b *BufferPoolManager) FlushPage(pageID types.PageID) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	common.SH_Assert(pageID != types.InvalidPageID, "FlushPage: invalid page id")

	frameID, ok := b.pageTable.Find(pageID)
	if !ok {
		return false
	}

	pg := b.pages[frameID]
	if pg.IsDirty() {
		err := b.diskManager.WritePage(pageID, pg.Data()[:])
		if err != nil {
			return false
		}
		pg.SetIsDirty(false)
	}
	return true
}

// NewPage allocates a new page in the buffer pool with the disk manager's
// help. The returned page is pinned and dirty. Returns nil when every frame
// is pinned.
func (b *BufferPoolManager) NewPage() *page.Page {
	b.mutex.Lock()

	frameID := b.getFrameID()
	if frameID == nil {
		b.mutex.Unlock()
		return nil
	}

	pageID := b.diskManager.AllocatePage()
	pg := page.NewEmpty(pageID)
	pg.SetIsDirty(true)

	b.pageTable.Insert(pageID, *frameID)
	b.pages[*frameID] = pg

	b.mutex.Unlock()

	if common.EnableDebug {
		common.Logger.Debugf("NewPage: allocated pageID=%d", pageID)
	}
	return pg
}

// DeletePage frees the frame of a resident unpinned page and hands the page
// back to the disk manager. Returns false, without touching the frame, when
// the page is resident and still pinned. The disk level deallocation runs
// in every case: callers must not ask for deallocation of a page they still
// pin.
func (b *BufferPoolManager) DeletePage(pageID types.PageID) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	ret := true
	if frameID, ok := b.pageTable.Find(pageID); ok {
		pg := b.pages[frameID]
		if pg.PinCount() != 0 {
			ret = false
		} else {
			pg.SetIsDeallocated(true)
			b.replacer.Erase(frameID)
			b.pageTable.Remove(pageID)
			b.pages[frameID] = nil
			b.freeList = append(b.freeList, frameID)
		}
	}

	if b.logManager.IsEnabledLogging() {
		logRecord := recovery.NewLogRecordDeallocatePage(pageID)
		b.logManager.AppendLogRecord(logRecord)
		b.logManager.Flush()
	}
	b.diskManager.DeallocatePage(pageID)
	return ret
}

// FlushAllPages flushes all the pages in the buffer pool to disk.
func (b *BufferPoolManager) FlushAllPages() {
	pageIDs := make([]types.PageID, 0)
	b.mutex.Lock()
	for _, pg := range b.pages {
		if pg != nil {
			pageIDs = append(pageIDs, pg.GetPageId())
		}
	}
	b.mutex.Unlock()

	for _, pageID := range pageIDs {
		b.FlushPage(pageID)
	}
}

// getFrameID hands out a frame satisfying the free frame invariant. The
// free list is preferred; otherwise the replacer picks a victim whose page
// is unmapped and, when dirty, written back first. Returns nil when the
// free list is empty and every frame is pinned.
// The caller must hold the mutex.
func (b *BufferPoolManager) getFrameID() *FrameID {
	if len(b.freeList) > 0 {
		frameID, newFreeList := b.freeList[0], b.freeList[1:]
		b.freeList = newFreeList
		return &frameID
	}

	victim := b.replacer.Victim()
	if victim == nil {
		return nil
	}

	pg := b.pages[*victim]
	if pg != nil {
		common.SH_Assert(pg.PinCount() == 0, "getFrameID: victim page is pinned")
		b.pageTable.Remove(pg.GetPageId())
		if pg.IsDirty() {
			// the WAL must reach disk before the page it covers does
			if b.logManager.IsEnabledLogging() {
				b.logManager.Flush()
			}
			b.diskManager.WritePage(pg.GetPageId(), pg.Data()[:])
			pg.SetIsDirty(false)
		}
		b.pages[*victim] = nil
	}
	return victim
}

// GetPagePinCount is for tests
func (b *BufferPoolManager) GetPagePinCount(pageID types.PageID) int32 {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	frameID, ok := b.pageTable.Find(pageID)
	if !ok {
		return 0
	}
	return b.pages[frameID].PinCount()
}

// AllPagesUnpinned is for tests
func (b *BufferPoolManager) AllPagesUnpinned() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for _, pg := range b.pages {
		if pg != nil && pg.PinCount() != 0 {
			return false
		}
	}
	return true
}

func (b *BufferPoolManager) GetPoolSize() uint32 {
	return uint32(len(b.pages))
}

// NewBufferPoolManager returns an empty buffer pool manager of poolSize
// frames
func NewBufferPoolManager(poolSize uint32, diskManager disk.DiskManager, logManager *recovery.LogManager) *BufferPoolManager {
	freeList := make([]FrameID, poolSize)
	pages := make([]*page.Page, poolSize)
	for i := uint32(0); i < poolSize; i++ {
		freeList[i] = FrameID(i)
		pages[i] = nil
	}

	replacer := NewLRUReplacer()
	pageTable := hash.NewExtendibleHash[types.PageID, FrameID](common.BucketSizeOfPageTable, hash.HashPageID)
	return &BufferPoolManager{diskManager, pages, replacer, freeList, pageTable, logManager, new(deadlock.Mutex)}
}
