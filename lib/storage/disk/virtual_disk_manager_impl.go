package disk

import (
	"errors"
	"strings"
	"sync"

	"github.com/dsnet/golib/memfile"
	"github.com/ryogrid/UzushioDB/lib/common"
	"github.com/ryogrid/UzushioDB/lib/types"
)

// VirtualDiskManagerImpl keeps the database and log files on memory.
// it is mainly used on testing
type VirtualDiskManagerImpl struct {
	db             *memfile.File
	fileName       string
	log            *memfile.File
	fileNameLog    string
	nextPageID     types.PageID
	numWrites      uint64
	size           int64
	numFlushes     uint64
	dbFileMutex    *sync.Mutex
	logFileMutex   *sync.Mutex
	deallocedIDMap map[types.PageID]bool
}

func NewVirtualDiskManagerImpl(dbFilename string) DiskManager {
	file := memfile.New(make([]byte, 0))

	periodIdx := strings.LastIndex(dbFilename, ".")
	logfnameBase := dbFilename[:periodIdx]
	logfname := logfnameBase + "." + "log"

	logfile := memfile.New(make([]byte, 0))

	return &VirtualDiskManagerImpl{file, dbFilename, logfile, logfname, types.PageID(0), 0, int64(0), 0, new(sync.Mutex), new(sync.Mutex), make(map[types.PageID]bool)}
}

// WritePage writes a page to the database file
func (d *VirtualDiskManagerImpl) WritePage(pageID types.PageID, pageData []byte) error {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	offset := int64(pageID) * int64(common.PageSize)
	d.db.WriteAt(pageData, offset)

	if offset >= d.size {
		d.size = offset + int64(len(pageData))
	}
	d.numWrites++

	return nil
}

// ReadPage reads a page from the database file
func (d *VirtualDiskManagerImpl) ReadPage(pageID types.PageID, pageData []byte) error {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	if _, ok := d.deallocedIDMap[pageID]; ok {
		return types.DeallocatedPageErr
	}
	if pageID >= d.nextPageID {
		return errors.New("I/O error past end of file")
	}

	offset := int64(pageID) * int64(common.PageSize)
	readBytes, _ := d.db.ReadAt(pageData, offset)

	if readBytes < common.PageSize {
		for i := readBytes; i < common.PageSize; i++ {
			pageData[i] = 0
		}
	}

	return nil
}

// AllocatePage allocates a new page id
func (d *VirtualDiskManagerImpl) AllocatePage() types.PageID {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	ret := d.nextPageID
	d.nextPageID++
	return ret
}

// DeallocatePage marks pageID deallocated. reads of the page fail from then
// on; AllocatePage does not hand the id out again
func (d *VirtualDiskManagerImpl) DeallocatePage(pageID types.PageID) {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	d.deallocedIDMap[pageID] = true
}

// GetNumWrites returns the number of page writes issued so far
func (d *VirtualDiskManagerImpl) GetNumWrites() uint64 {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	return d.numWrites
}

// ShutDown does nothing. data on memory is left to the GC
func (d *VirtualDiskManagerImpl) ShutDown() {
}

// Size returns the size of the database file
func (d *VirtualDiskManagerImpl) Size() int64 {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	return d.size
}

func (d *VirtualDiskManagerImpl) RemoveDBFile() {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	d.db = memfile.New(make([]byte, 0))
	d.size = 0
	d.nextPageID = 0
	d.deallocedIDMap = make(map[types.PageID]bool)
}

func (d *VirtualDiskManagerImpl) RemoveLogFile() {
	d.logFileMutex.Lock()
	defer d.logFileMutex.Unlock()

	d.log = memfile.New(make([]byte, 0))
}

// WriteLog appends log data to the tail of the log file
func (d *VirtualDiskManagerImpl) WriteLog(logData []byte) error {
	d.logFileMutex.Lock()
	defer d.logFileMutex.Unlock()

	curSize := int64(len(d.log.Bytes()))
	d.log.WriteAt(logData, curSize)
	d.numFlushes++

	return nil
}

// ReadLog reads logSize bytes at offset into logData. returns false when
// the read runs past the tail of the log file
func (d *VirtualDiskManagerImpl) ReadLog(logData []byte, logSize int32, offset *uint32) bool {
	d.logFileMutex.Lock()
	defer d.logFileMutex.Unlock()

	if int64(*offset) >= int64(len(d.log.Bytes())) {
		return false
	}

	readBytes, err := d.log.ReadAt(logData[:logSize], int64(*offset))
	if err != nil && readBytes == 0 {
		return false
	}
	*offset += uint32(readBytes)

	return true
}

// GetLogFileSize returns the size of the log file
func (d *VirtualDiskManagerImpl) GetLogFileSize() int64 {
	d.logFileMutex.Lock()
	defer d.logFileMutex.Unlock()

	return int64(len(d.log.Bytes()))
}
