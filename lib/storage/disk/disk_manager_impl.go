// this code is based on https://github.com/brunocalza/go-bustub

package disk

import (
	"errors"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/ncw/directio"
	"github.com/ryogrid/UzushioDB/lib/common"
	"github.com/ryogrid/UzushioDB/lib/types"
)

// DiskManagerImpl is the disk implementation of DiskManager
type DiskManagerImpl struct {
	db           *os.File
	fileName     string
	log          *os.File
	fileNameLog  string
	nextPageID   types.PageID
	numWrites    uint64
	size         int64
	numFlushes   uint64
	dbFileMutex  *sync.Mutex
	logFileMutex *sync.Mutex
}

// NewDiskManagerImpl returns a DiskManager instance backed by dbFilename
func NewDiskManagerImpl(dbFilename string) DiskManager {
	file, err := os.OpenFile(dbFilename, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		log.Fatalln("can't open db file")
		return nil
	}

	periodIdx := strings.LastIndex(dbFilename, ".")
	logfnameBase := dbFilename[:periodIdx]
	logfname := logfnameBase + "." + "log"
	logfile, err := os.OpenFile(logfname, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		log.Fatalln("can't open log file")
		return nil
	}

	fileInfo, err := file.Stat()
	if err != nil {
		log.Fatalln("file info error")
		return nil
	}

	logFileInfo, err := logfile.Stat()
	if err != nil {
		log.Fatalln("file info error (log file)")
		return nil
	}

	logfile.Seek(logFileInfo.Size(), io.SeekStart)

	fileSize := fileInfo.Size()
	nPages := fileSize / common.PageSize

	nextPageID := types.PageID(0)
	if nPages > 0 {
		nextPageID = types.PageID(int32(nPages))
	}

	return &DiskManagerImpl{file, dbFilename, logfile, logfname, nextPageID, 0, fileSize, 0, new(sync.Mutex), new(sync.Mutex)}
}

// ReadPage reads a page from the database file
func (d *DiskManagerImpl) ReadPage(pageID types.PageID, pageData []byte) error {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	offset := int64(pageID) * int64(common.PageSize)

	fileInfo, err := d.db.Stat()
	if err != nil {
		return errors.New("file info error")
	}

	if offset > fileInfo.Size() {
		return errors.New("I/O error past end of file")
	}

	d.db.Seek(offset, io.SeekStart)

	readBuf := directio.AlignedBlock(common.PageSize)
	bytesRead, err := d.db.Read(readBuf)
	if err != nil {
		return errors.New("I/O error while reading")
	}
	copy(pageData, readBuf)

	if bytesRead < common.PageSize {
		for i := bytesRead; i < common.PageSize; i++ {
			pageData[i] = 0
		}
	}

	return nil
}

// WritePage writes a page to the database file
func (d *DiskManagerImpl) WritePage(pageID types.PageID, pageData []byte) error {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	offset := int64(pageID) * int64(common.PageSize)
	d.db.Seek(offset, io.SeekStart)
	bytesWritten, err := d.db.Write(pageData)
	if err != nil {
		return err
	}

	if bytesWritten != common.PageSize {
		return errors.New("bytes written not equals page size")
	}

	if offset >= d.size {
		d.size = offset + int64(bytesWritten)
	}

	d.db.Sync()
	d.numWrites++

	return nil
}

// AllocatePage allocates a new page id
func (d *DiskManagerImpl) AllocatePage() types.PageID {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	ret := d.nextPageID
	d.nextPageID++
	return ret
}

// DeallocatePage deallocates a page
// the corresponding file space is not reclaimed for now
func (d *DiskManagerImpl) DeallocatePage(pageID types.PageID) {
}

// GetNumWrites returns the number of page writes issued so far
func (d *DiskManagerImpl) GetNumWrites() uint64 {
	return d.numWrites
}

// ShutDown closes the database file
func (d *DiskManagerImpl) ShutDown() {
	d.dbFileMutex.Lock()
	err := d.db.Close()
	if err != nil {
		panic("close of db file failed")
	}
	d.dbFileMutex.Unlock()

	d.logFileMutex.Lock()
	err = d.log.Close()
	if err != nil {
		panic("close of log file failed")
	}
	d.logFileMutex.Unlock()
}

// Size returns the size of the database file
func (d *DiskManagerImpl) Size() int64 {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	return d.size
}

func (d *DiskManagerImpl) RemoveDBFile() {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	err := os.Remove(d.fileName)
	if err != nil {
		common.Logger.Warnf("RemoveDBFile: %v", err)
	}
}

func (d *DiskManagerImpl) RemoveLogFile() {
	d.logFileMutex.Lock()
	defer d.logFileMutex.Unlock()

	err := os.Remove(d.fileNameLog)
	if err != nil {
		common.Logger.Warnf("RemoveLogFile: %v", err)
	}
}

// WriteLog appends log data to the tail of the log file
func (d *DiskManagerImpl) WriteLog(logData []byte) error {
	d.logFileMutex.Lock()
	defer d.logFileMutex.Unlock()

	_, err := d.log.Write(logData)
	if err != nil {
		return err
	}
	d.log.Sync()
	d.numFlushes++

	return nil
}

// ReadLog reads logSize bytes at offset into logData. returns false when
// the read runs past the tail of the log file
func (d *DiskManagerImpl) ReadLog(logData []byte, logSize int32, offset *uint32) bool {
	d.logFileMutex.Lock()
	defer d.logFileMutex.Unlock()

	fileInfo, err := d.log.Stat()
	if err != nil {
		return false
	}
	if int64(*offset) >= fileInfo.Size() {
		return false
	}

	d.log.Seek(int64(*offset), io.SeekStart)
	bytesRead, err := d.log.Read(logData[:logSize])
	if err != nil {
		return false
	}
	*offset += uint32(bytesRead)

	return true
}

// GetLogFileSize returns the size of the log file
func (d *DiskManagerImpl) GetLogFileSize() int64 {
	d.logFileMutex.Lock()
	defer d.logFileMutex.Unlock()

	fileInfo, err := d.log.Stat()
	if err != nil {
		return -1
	}
	return fileInfo.Size()
}
