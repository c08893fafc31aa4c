// this code is based on https://github.com/brunocalza/go-bustub

package disk

import (
	"os"

	"github.com/ryogrid/UzushioDB/lib/common"
)

// DiskManagerTest is the disk implementation of DiskManager for testing purposes
type DiskManagerTest struct {
	path string
	DiskManager
}

// NewDiskManagerTest returns a DiskManager instance for testing purposes
func NewDiskManagerTest() DiskManager {
	// Retrieve a temporary path.
	f, err := os.CreateTemp("", "uzushio.")
	if err != nil {
		panic(err)
	}
	path := f.Name()
	f.Close()
	os.Remove(path)
	path = path + ".db"

	if !common.EnableOnMemStorage || common.TempSuppressOnMemStorage {
		diskManager := NewDiskManagerImpl(path)
		return &DiskManagerTest{path, diskManager}
	}
	diskManager := NewVirtualDiskManagerImpl(path)
	return &DiskManagerTest{path, diskManager}
}

// ShutDown closes of the database file
func (d *DiskManagerTest) ShutDown() {
	d.DiskManager.ShutDown()
	if !common.EnableOnMemStorage || common.TempSuppressOnMemStorage {
		os.Remove(d.path)
	}
}
