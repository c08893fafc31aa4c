package index_common

import (
	"bytes"
	"encoding/binary"
)

// KeySize is the serialized size of an index key in a B+tree node
const KeySize = 8

// GenericKey is a fixed size key stored in B+tree nodes. How the bytes are
// ordered is up to the KeyComparator the index is constructed with.
type GenericKey [KeySize]byte

// KeyComparator compares two keys and returns -1, 0 or 1
type KeyComparator func(a GenericKey, b GenericKey) int

// NewIntegerKey creates a key holding a little endian int32
func NewIntegerKey(value int32) GenericKey {
	var ret GenericKey
	binary.LittleEndian.PutUint32(ret[:], uint32(value))
	return ret
}

// ToInt32 interprets the key as a little endian int32
func (k GenericKey) ToInt32() int32 {
	return int32(binary.LittleEndian.Uint32(k[:]))
}

// Serialize casts the key to []byte
func (k GenericKey) Serialize() []byte {
	return k[:]
}

// NewGenericKeyFromBytes creates a key from serialized bytes
func NewGenericKeyFromBytes(data []byte) (ret GenericKey) {
	copy(ret[:], data)
	return ret
}

// IntegerComparator orders keys as int32 values
func IntegerComparator(a GenericKey, b GenericKey) int {
	av := a.ToInt32()
	bv := b.ToInt32()
	if av < bv {
		return -1
	}
	if av > bv {
		return 1
	}
	return 0
}

// BytesComparator orders keys lexicographically on the raw bytes
func BytesComparator(a GenericKey, b GenericKey) int {
	return bytes.Compare(a[:], b[:])
}
