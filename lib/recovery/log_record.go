package recovery

import (
	"bytes"
	"encoding/binary"

	"github.com/ryogrid/UzushioDB/lib/common"
	"github.com/ryogrid/UzushioDB/lib/types"
)

type LogRecordType int32

const (
	INVALID LogRecordType = iota
	BEGIN
	COMMIT
	ABORT
	// page lifecycle records written by the buffer pool
	NEW_PAGE
	DEALLOCATE_PAGE
	REUSE_PAGE
)

// HeaderSize is the serialized size of the fields every record carries:
// | size (4) | LSN (4) | transID (4) | prevLSN (4) | LogType (4) |
const HeaderSize uint32 = 20

/**
 * LogRecord is the unit the log manager appends to the WAL.
 * Transaction boundary records carry the header only; page lifecycle
 * records additionally carry the page id.
 */
type LogRecord struct {
	Size          uint32
	Lsn           types.LSN
	TxnID         types.TxnID
	PrevLSN       types.LSN
	LogRecordType LogRecordType
	PageID        types.PageID
}

// NewLogRecordTxn creates a transaction boundary record (BEGIN/COMMIT/ABORT)
func NewLogRecordTxn(txnID types.TxnID, prevLSN types.LSN, logRecordType LogRecordType) *LogRecord {
	return &LogRecord{HeaderSize, common.InvalidLSN, txnID, prevLSN, logRecordType, types.InvalidPageID}
}

// NewLogRecordNewPage creates a record of a page allocation
func NewLogRecordNewPage(pageID types.PageID) *LogRecord {
	return &LogRecord{HeaderSize + 4, common.InvalidLSN, types.InvalidTxnID, common.InvalidLSN, NEW_PAGE, pageID}
}

// NewLogRecordDeallocatePage creates a record of a page deallocation
func NewLogRecordDeallocatePage(pageID types.PageID) *LogRecord {
	return &LogRecord{HeaderSize + 4, common.InvalidLSN, types.InvalidTxnID, common.InvalidLSN, DEALLOCATE_PAGE, pageID}
}

// NewLogRecordReusePage creates a record of the reuse of a deallocated page
func NewLogRecordReusePage(pageID types.PageID) *LogRecord {
	return &LogRecord{HeaderSize + 4, common.InvalidLSN, types.InvalidTxnID, common.InvalidLSN, REUSE_PAGE, pageID}
}

// GetLogHeaderData serializes the header fields
func (l *LogRecord) GetLogHeaderData() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, l.Size)
	binary.Write(buf, binary.LittleEndian, l.Lsn)
	binary.Write(buf, binary.LittleEndian, l.TxnID)
	binary.Write(buf, binary.LittleEndian, l.PrevLSN)
	binary.Write(buf, binary.LittleEndian, l.LogRecordType)
	return buf.Bytes()
}

func (l *LogRecord) IsPageRecord() bool {
	return l.LogRecordType == NEW_PAGE || l.LogRecordType == DEALLOCATE_PAGE || l.LogRecordType == REUSE_PAGE
}
