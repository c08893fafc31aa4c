// this code is based on https://github.com/pzhzqt/goostub

package common

import (
	"time"
)

var LogTimeout time.Duration

const EnableDebug bool = false

// use on memory virtual storage or not
const EnableOnMemStorage = true

// when this is true, virtual storage use is suppressed
// for test case which can't work with virtual storage
var TempSuppressOnMemStorage = false

const (
	// invalid page id
	InvalidPageID = -1
	// invalid transaction id
	InvalidTxnID = -1
	// invalid log sequence number
	InvalidLSN = -1
	// the header page id
	HeaderPageID = 0
	// size of a data page in byte
	PageSize = 4096
	// number for calculate log buffer size (number of page size)
	LogBufferSizeBase = 128
	// size of a log buffer in byte
	LogBufferSize = (LogBufferSizeBase + 1) * PageSize
	// number of slots of a bucket of the buffer pool's page table
	BucketSizeOfPageTable = 50
)
