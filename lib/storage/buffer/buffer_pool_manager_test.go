// this code is based on https://github.com/brunocalza/go-bustub

package buffer

import (
	"crypto/rand"
	"testing"

	"github.com/ryogrid/UzushioDB/lib/common"
	"github.com/ryogrid/UzushioDB/lib/recovery"
	"github.com/ryogrid/UzushioDB/lib/storage/disk"
	"github.com/ryogrid/UzushioDB/lib/types"
	"github.com/stretchr/testify/require"
)

func newBPMForTest(poolSize uint32) (*BufferPoolManager, disk.DiskManager) {
	dm := disk.NewDiskManagerTest()
	bpm := NewBufferPoolManager(poolSize, dm, recovery.NewLogManager(dm))
	return bpm, dm
}

func TestBinaryData(t *testing.T) {
	poolSize := uint32(10)
	bpm, dm := newBPMForTest(poolSize)
	defer dm.ShutDown()

	page0 := bpm.NewPage()

	// Scenario: The buffer pool is empty. We should be able to create a new page.
	require.Equal(t, types.PageID(0), page0.GetPageId())

	// Generate random binary data
	randomBinaryData := make([]byte, common.PageSize)
	rand.Read(randomBinaryData)

	// Insert terminal characters both in the middle and at end
	randomBinaryData[common.PageSize/2] = '0'
	randomBinaryData[common.PageSize-1] = '0'

	var fixedRandomBinaryData [common.PageSize]byte
	copy(fixedRandomBinaryData[:], randomBinaryData[:common.PageSize])

	// Scenario: Once we have a page, we should be able to read and write content.
	page0.Copy(0, randomBinaryData)
	require.Equal(t, fixedRandomBinaryData, *page0.Data())

	// Scenario: We should be able to create new pages until we fill up the buffer pool.
	for i := uint32(1); i < poolSize; i++ {
		p := bpm.NewPage()
		require.Equal(t, types.PageID(i), p.GetPageId())
	}

	// Scenario: Once the buffer pool is full, we should not be able to create any new pages.
	for i := poolSize; i < poolSize*2; i++ {
		require.Nil(t, bpm.NewPage())
	}

	// Scenario: After unpinning pages {0, 1, 2, 3, 4} and pinning another 4 new pages,
	// there would still be one cache frame left for reading page 0.
	for i := 0; i < 5; i++ {
		require.True(t, bpm.UnpinPage(types.PageID(i), true))
		bpm.FlushPage(types.PageID(i))
	}
	for i := 0; i < 4; i++ {
		p := bpm.NewPage()
		bpm.UnpinPage(p.GetPageId(), false)
	}

	// Scenario: We should be able to fetch the data we wrote a while ago.
	page0 = bpm.FetchPage(types.PageID(0))
	require.Equal(t, fixedRandomBinaryData, *page0.Data())
	require.True(t, bpm.UnpinPage(types.PageID(0), true))
}

func TestSample(t *testing.T) {
	poolSize := uint32(10)
	bpm, dm := newBPMForTest(poolSize)
	defer dm.ShutDown()

	page0 := bpm.NewPage()

	// Scenario: The buffer pool is empty. We should be able to create a new page.
	require.Equal(t, types.PageID(0), page0.GetPageId())

	// Scenario: Once we have a page, we should be able to read and write content.
	page0.Copy(0, []byte("Hello"))
	require.Equal(t, [common.PageSize]byte{'H', 'e', 'l', 'l', 'o'}, *page0.Data())

	// Scenario: We should be able to create new pages until we fill up the buffer pool.
	for i := uint32(1); i < poolSize; i++ {
		p := bpm.NewPage()
		require.Equal(t, types.PageID(i), p.GetPageId())
	}

	// Scenario: Once the buffer pool is full, we should not be able to create any new pages.
	for i := poolSize; i < poolSize*2; i++ {
		require.Nil(t, bpm.NewPage())
	}

	// Scenario: After unpinning pages {0, 1, 2, 3, 4} and pinning another 4 new pages,
	// there would still be one buffer frame left for reading page 0.
	for i := 0; i < 5; i++ {
		require.True(t, bpm.UnpinPage(types.PageID(i), true))
		bpm.FlushPage(types.PageID(i))
	}
	for i := 0; i < 4; i++ {
		bpm.NewPage()
	}
	// Scenario: We should be able to fetch the data we wrote a while ago.
	page0 = bpm.FetchPage(types.PageID(0))
	require.Equal(t, [common.PageSize]byte{'H', 'e', 'l', 'l', 'o'}, *page0.Data())

	// Scenario: If we unpin page 0 and then make a new page, all the buffer pages should
	// now be pinned. Fetching page 0 should fail.
	require.True(t, bpm.UnpinPage(types.PageID(0), true))

	require.Equal(t, types.PageID(14), bpm.NewPage().GetPageId())
	require.Nil(t, bpm.NewPage())
	require.Nil(t, bpm.FetchPage(types.PageID(0)))
}

func TestEvictionWritesVictimBack(t *testing.T) {
	bpm, dm := newBPMForTest(3)
	defer dm.ShutDown()

	page1 := bpm.NewPage()
	page2 := bpm.NewPage()
	page3 := bpm.NewPage()
	require.NotNil(t, page1)
	require.NotNil(t, page2)
	require.NotNil(t, page3)

	// every frame is pinned: no fourth page
	require.Nil(t, bpm.NewPage())

	page2.Copy(0, []byte("dirty"))
	require.True(t, bpm.UnpinPage(page2.GetPageId(), true))

	// the new page reuses page2's frame. the dirty victim goes to disk
	// exactly once
	writesBefore := dm.GetNumWrites()
	page4 := bpm.NewPage()
	require.NotNil(t, page4)
	require.Equal(t, writesBefore+1, dm.GetNumWrites())

	// page2's content survived the round trip
	require.True(t, bpm.UnpinPage(page4.GetPageId(), false))
	page2 = bpm.FetchPage(page2.GetPageId())
	require.NotNil(t, page2)
	require.Equal(t, byte('d'), page2.Data()[0])
	require.False(t, page2.IsDirty())
}

func TestUnpinAndFlushEdgeCases(t *testing.T) {
	bpm, dm := newBPMForTest(3)
	defer dm.ShutDown()

	pg := bpm.NewPage()
	require.NotNil(t, pg)

	// unpin of a page which is not resident fails
	require.False(t, bpm.UnpinPage(types.PageID(42), false))

	// a second unpin finds pin count zero and fails
	require.True(t, bpm.UnpinPage(pg.GetPageId(), true))
	require.False(t, bpm.UnpinPage(pg.GetPageId(), true))

	// flush writes a dirty page through once, a clean flush is a no-op
	writesBefore := dm.GetNumWrites()
	require.True(t, bpm.FlushPage(pg.GetPageId()))
	require.Equal(t, writesBefore+1, dm.GetNumWrites())
	require.True(t, bpm.FlushPage(pg.GetPageId()))
	require.Equal(t, writesBefore+1, dm.GetNumWrites())

	require.False(t, bpm.FlushPage(types.PageID(42)))
}

func TestDirtyFlagIsSticky(t *testing.T) {
	bpm, dm := newBPMForTest(3)
	defer dm.ShutDown()

	pg := bpm.NewPage()
	pageID := pg.GetPageId()

	// a clean unpin after a dirty one must not wash the flag out
	require.True(t, bpm.UnpinPage(pageID, true))
	bpm.FetchPage(pageID)
	require.True(t, bpm.UnpinPage(pageID, false))

	writesBefore := dm.GetNumWrites()
	require.True(t, bpm.FlushPage(pageID))
	require.Equal(t, writesBefore+1, dm.GetNumWrites())
}

func TestDeletePage(t *testing.T) {
	bpm, dm := newBPMForTest(3)
	defer dm.ShutDown()

	pg := bpm.NewPage()
	pageID := pg.GetPageId()

	// a pinned page cannot be deleted
	require.False(t, bpm.DeletePage(pageID))

	require.True(t, bpm.UnpinPage(pageID, false))
	require.True(t, bpm.DeletePage(pageID))

	// the freed frame is available again
	p1 := bpm.NewPage()
	p2 := bpm.NewPage()
	p3 := bpm.NewPage()
	require.NotNil(t, p1)
	require.NotNil(t, p2)
	require.NotNil(t, p3)

	// deleting a page which is not resident still succeeds
	require.True(t, bpm.UnpinPage(p3.GetPageId(), false))
	require.True(t, bpm.DeletePage(types.PageID(90)))
}
