package recovery

import (
	"sync"

	"github.com/ryogrid/UzushioDB/lib/common"
	"github.com/ryogrid/UzushioDB/lib/storage/disk"
	"github.com/ryogrid/UzushioDB/lib/types"
)

/**
 * LogManager appends log records into an on memory buffer and writes the
 * buffer through to the disk manager's log file on Flush. The buffer pool
 * forces a flush before writing back a dirty page, the transaction manager
 * at commit.
 */
type LogManager struct {
	offset       uint32
	logBufferLsn types.LSN
	/** The next log sequence number to hand out. */
	nextLsn types.LSN
	/** The log records before and including the persistent lsn have been written to disk. */
	persistentLsn   types.LSN
	logBuffer       []byte
	flushBuffer     []byte
	latch           common.ReaderWriterLatch
	wlogMutex       *sync.Mutex
	diskManager     disk.DiskManager
	isEnableLogging bool
}

func NewLogManager(diskManager disk.DiskManager) *LogManager {
	ret := new(LogManager)
	ret.nextLsn = 0
	ret.persistentLsn = common.InvalidLSN
	ret.diskManager = diskManager
	ret.logBuffer = make([]byte, common.LogBufferSize)
	ret.flushBuffer = make([]byte, common.LogBufferSize)
	ret.latch = common.NewRWLatch()
	ret.wlogMutex = new(sync.Mutex)
	ret.offset = 0
	ret.isEnableLogging = false
	return ret
}

func (l *LogManager) GetNextLSN() types.LSN       { return l.nextLsn }
func (l *LogManager) SetNextLSN(lsnVal types.LSN) { l.nextLsn = lsnVal }
func (l *LogManager) GetPersistentLSN() types.LSN { return l.persistentLsn }
func (l *LogManager) ActivateLogging()            { l.isEnableLogging = true }
func (l *LogManager) DeactivateLogging()          { l.isEnableLogging = false }
func (l *LogManager) IsEnabledLogging() bool      { return l.isEnableLogging }

// Flush writes the filled part of the log buffer to the log file and
// advances the persistent LSN
func (l *LogManager) Flush() {
	l.wlogMutex.Lock()
	l.latch.WLock()

	lsn := l.logBufferLsn
	offset := l.offset
	l.offset = 0

	// swap the two buffers so appends can go on while the flush runs
	tmp := l.flushBuffer
	l.flushBuffer = l.logBuffer
	l.logBuffer = tmp

	l.latch.WUnlock()

	if offset > 0 {
		l.diskManager.WriteLog(l.flushBuffer[:offset])
	}

	l.persistentLsn = lsn
	l.wlogMutex.Unlock()
}

// AppendLogRecord appends a log record into the log buffer.
// Returns the lsn assigned to the record.
func (l *LogManager) AppendLogRecord(logRecord *LogRecord) types.LSN {
	l.latch.WLock()
	if common.LogBufferSize-l.offset < logRecord.Size {
		l.latch.WUnlock()
		l.Flush()
		l.latch.WLock()
	}

	logRecord.Lsn = l.nextLsn
	l.nextLsn++
	copy(l.logBuffer[l.offset:], logRecord.GetLogHeaderData())

	l.logBufferLsn = logRecord.Lsn
	pos := l.offset + HeaderSize
	l.offset += logRecord.Size

	if logRecord.IsPageRecord() {
		copy(l.logBuffer[pos:], logRecord.PageID.Serialize())
	}

	l.latch.WUnlock()
	return logRecord.Lsn
}
