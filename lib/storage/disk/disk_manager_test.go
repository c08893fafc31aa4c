package disk

import (
	"testing"

	"github.com/ryogrid/UzushioDB/lib/common"
	"github.com/ryogrid/UzushioDB/lib/types"
	"github.com/stretchr/testify/require"
)

func TestVirtualDiskManagerReadWrite(t *testing.T) {
	dm := NewDiskManagerTest()
	defer dm.ShutDown()

	pageID := dm.AllocatePage()
	require.Equal(t, types.PageID(0), pageID)

	data := make([]byte, common.PageSize)
	copy(data, "page payload")
	require.NoError(t, dm.WritePage(pageID, data))
	require.Equal(t, uint64(1), dm.GetNumWrites())
	require.Equal(t, int64(common.PageSize), dm.Size())

	readBuf := make([]byte, common.PageSize)
	require.NoError(t, dm.ReadPage(pageID, readBuf))
	require.Equal(t, data, readBuf)

	// an allocated page which was never written reads back zeroed
	pageID2 := dm.AllocatePage()
	require.NoError(t, dm.ReadPage(pageID2, readBuf))
	require.Equal(t, make([]byte, common.PageSize), readBuf)

	// a page which was never allocated does not read at all
	require.Error(t, dm.ReadPage(types.PageID(9), readBuf))
}

func TestVirtualDiskManagerDeallocate(t *testing.T) {
	dm := NewDiskManagerTest()
	defer dm.ShutDown()

	pageID := dm.AllocatePage()
	data := make([]byte, common.PageSize)
	require.NoError(t, dm.WritePage(pageID, data))

	dm.DeallocatePage(pageID)
	err := dm.ReadPage(pageID, data)
	require.ErrorIs(t, err, types.DeallocatedPageErr)
}

func TestVirtualDiskManagerLog(t *testing.T) {
	dm := NewDiskManagerTest()
	defer dm.ShutDown()

	require.NoError(t, dm.WriteLog([]byte("first record")))
	require.NoError(t, dm.WriteLog([]byte("|second")))
	require.Equal(t, int64(len("first record|second")), dm.GetLogFileSize())

	readBuf := make([]byte, len("first record"))
	offset := uint32(0)
	require.True(t, dm.ReadLog(readBuf, int32(len(readBuf)), &offset))
	require.Equal(t, []byte("first record"), readBuf)
	require.Equal(t, uint32(len("first record")), offset)

	// reads past the tail fail
	offset = uint32(1000)
	require.False(t, dm.ReadLog(readBuf, int32(len(readBuf)), &offset))
}
