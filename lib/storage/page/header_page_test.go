package page

import (
	"testing"

	"github.com/ryogrid/UzushioDB/lib/types"
	"github.com/stretchr/testify/require"
)

func TestHeaderPageRecords(t *testing.T) {
	hp := CastPageAsHeaderPage(NewEmpty(types.PageID(0)))
	require.Equal(t, uint32(0), hp.NumRecords())

	require.True(t, hp.InsertRecord("index_a", types.PageID(3)))
	require.True(t, hp.InsertRecord("index_b", types.PageID(7)))
	require.False(t, hp.InsertRecord("index_a", types.PageID(9)))
	require.Equal(t, uint32(2), hp.NumRecords())

	rootId, found := hp.GetRootId("index_a")
	require.True(t, found)
	require.Equal(t, types.PageID(3), rootId)

	require.True(t, hp.UpdateRecord("index_a", types.PageID(11)))
	rootId, _ = hp.GetRootId("index_a")
	require.Equal(t, types.PageID(11), rootId)
	require.False(t, hp.UpdateRecord("no_such_index", types.PageID(1)))

	require.True(t, hp.DeleteRecord("index_a"))
	require.False(t, hp.DeleteRecord("index_a"))
	_, found = hp.GetRootId("index_a")
	require.False(t, found)

	// the record of index_b moved down intact
	rootId, found = hp.GetRootId("index_b")
	require.True(t, found)
	require.Equal(t, types.PageID(7), rootId)
}
