package page

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"github.com/ryogrid/UzushioDB/lib/common"
	"github.com/ryogrid/UzushioDB/lib/types"
)

/**
 * HeaderPage is the view of page 0 of the database file. It is the directory
 * which maps an index name to the page id of the index's root.
 *
 * Header format (size in byte):
 * -----------------------------------------------------------------
 * | RecordCount (4) | LSN (4) | Record 1 | Record 2 | ...
 * -----------------------------------------------------------------
 * Record format:
 * -----------------------------------------------------------------
 * | IndexName (32) | RootPageId (4) |
 * -----------------------------------------------------------------
 */
type HeaderPage struct {
	Page
}

const (
	offsetRecordCount  = 0
	offsetHeaderRecord = 8
	sizeIndexName      = 32
	sizeHeaderRecord   = sizeIndexName + 4
	maxHeaderRecords   = (common.PageSize - offsetHeaderRecord) / sizeHeaderRecord
)

// CastPageAsHeaderPage casts the abstract Page struct into HeaderPage
func CastPageAsHeaderPage(page *Page) *HeaderPage {
	return (*HeaderPage)(unsafe.Pointer(page))
}

func (hp *HeaderPage) NumRecords() uint32 {
	return binary.LittleEndian.Uint32(hp.Data()[offsetRecordCount:])
}

func (hp *HeaderPage) setNumRecords(num uint32) {
	binary.LittleEndian.PutUint32(hp.Data()[offsetRecordCount:], num)
}

func (hp *HeaderPage) recordName(index uint32) string {
	offset := offsetHeaderRecord + index*sizeHeaderRecord
	raw := hp.Data()[offset : offset+sizeIndexName]
	end := bytes.IndexByte(raw, 0)
	if end == -1 {
		end = sizeIndexName
	}
	return string(raw[:end])
}

func (hp *HeaderPage) recordRootId(index uint32) types.PageID {
	offset := offsetHeaderRecord + index*sizeHeaderRecord + sizeIndexName
	return types.NewPageIDFromBytes(hp.Data()[offset : offset+4])
}

func (hp *HeaderPage) setRecordRootId(index uint32, rootPageID types.PageID) {
	offset := offsetHeaderRecord + index*sizeHeaderRecord + sizeIndexName
	copy(hp.Data()[offset:offset+4], rootPageID.Serialize())
}

func (hp *HeaderPage) findRecord(name string) int32 {
	num := hp.NumRecords()
	for i := uint32(0); i < num; i++ {
		if hp.recordName(i) == name {
			return int32(i)
		}
	}
	return -1
}

// InsertRecord adds the record (name, rootPageID). returns false when a
// record of name already exists or the directory is full
func (hp *HeaderPage) InsertRecord(name string, rootPageID types.PageID) bool {
	common.SH_Assert(len(name) <= sizeIndexName, "index name is too long")
	if hp.findRecord(name) != -1 {
		return false
	}
	num := hp.NumRecords()
	if num >= maxHeaderRecords {
		return false
	}

	offset := offsetHeaderRecord + num*sizeHeaderRecord
	nameBuf := make([]byte, sizeIndexName)
	copy(nameBuf, name)
	copy(hp.Data()[offset:offset+sizeIndexName], nameBuf)
	hp.setRecordRootId(num, rootPageID)
	hp.setNumRecords(num + 1)
	return true
}

// UpdateRecord replaces the root page id recorded for name
func (hp *HeaderPage) UpdateRecord(name string, rootPageID types.PageID) bool {
	idx := hp.findRecord(name)
	if idx == -1 {
		return false
	}
	hp.setRecordRootId(uint32(idx), rootPageID)
	return true
}

// DeleteRecord removes the record of name
func (hp *HeaderPage) DeleteRecord(name string) bool {
	idx := hp.findRecord(name)
	if idx == -1 {
		return false
	}
	num := hp.NumRecords()
	from := offsetHeaderRecord + (uint32(idx)+1)*sizeHeaderRecord
	to := offsetHeaderRecord + uint32(idx)*sizeHeaderRecord
	end := offsetHeaderRecord + num*sizeHeaderRecord
	copy(hp.Data()[to:], hp.Data()[from:end])
	hp.setNumRecords(num - 1)
	return true
}

// GetRootId looks up the root page id recorded for name
func (hp *HeaderPage) GetRootId(name string) (types.PageID, bool) {
	idx := hp.findRecord(name)
	if idx == -1 {
		return types.InvalidPageID, false
	}
	return hp.recordRootId(uint32(idx)), true
}
