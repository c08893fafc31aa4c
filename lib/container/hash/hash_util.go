package hash

import (
	"encoding/binary"

	"github.com/ryogrid/UzushioDB/lib/types"
	"github.com/spaolacci/murmur3"
)

// GenHashMurMur hashes arbitrary bytes with murmur3
func GenHashMurMur(key []byte) uint64 {
	h := murmur3.New128()
	h.Write(key)

	hash := h.Sum(nil)

	return binary.LittleEndian.Uint64(hash)
}

// HashPageID is the hash function the buffer pool's page table uses
func HashPageID(pageID types.PageID) uint64 {
	return GenHashMurMur(pageID.Serialize())
}
