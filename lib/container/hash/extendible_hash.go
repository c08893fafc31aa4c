package hash

import (
	pair "github.com/notEpsilon/go-pair"
)

/**
 * ExtendibleHash is an in-memory extendible hash table.
 *
 * The directory is a slice of 2^globalDepth bucket pointers. A key is routed
 * by the low globalDepth bits of its hash. Each bucket carries its own
 * localDepth <= globalDepth; when a bucket overflows it is split by the bit
 * 1<<localDepth, doubling the directory first if localDepth == globalDepth.
 * Shrinking and bucket coalescing are not supported.
 *
 * The table has no internal locking. The buffer pool accesses it only while
 * holding its own mutex.
 */
type ExtendibleHash[K comparable, V any] struct {
	globalDepth   uint32
	bucketMaxSize uint32
	numBuckets    int
	hashFn        func(K) uint64
	bucketTable   []*bucket[K, V]
}

type bucket[K comparable, V any] struct {
	localDepth uint32
	items      []pair.Pair[K, V]
}

func newBucket[K comparable, V any](localDepth uint32) *bucket[K, V] {
	return &bucket[K, V]{localDepth, make([]pair.Pair[K, V], 0)}
}

func (b *bucket[K, V]) find(key K) (V, bool) {
	for i := range b.items {
		if b.items[i].First == key {
			return b.items[i].Second, true
		}
	}
	var none V
	return none, false
}

// NewExtendibleHash returns a table whose buckets hold up to bucketMaxSize
// entries. hashFn maps a key to the bits the directory is indexed with.
func NewExtendibleHash[K comparable, V any](bucketMaxSize uint32, hashFn func(K) uint64) *ExtendibleHash[K, V] {
	ret := &ExtendibleHash[K, V]{0, bucketMaxSize, 1, hashFn, make([]*bucket[K, V], 0)}
	ret.bucketTable = append(ret.bucketTable, newBucket[K, V](0))
	return ret
}

func (h *ExtendibleHash[K, V]) getBucketIndex(key K) uint64 {
	return h.hashFn(key) & ((1 << h.globalDepth) - 1)
}

// GetGlobalDepth returns the global depth of the directory
func (h *ExtendibleHash[K, V]) GetGlobalDepth() uint32 {
	return h.globalDepth
}

// GetLocalDepth returns the local depth of the bucket the directory slot
// bucketIndex points at
func (h *ExtendibleHash[K, V]) GetLocalDepth(bucketIndex int) uint32 {
	return h.bucketTable[bucketIndex].localDepth
}

// GetNumBuckets returns the current number of distinct buckets
func (h *ExtendibleHash[K, V]) GetNumBuckets() int {
	return h.numBuckets
}

// Find looks up the value associated with key
func (h *ExtendibleHash[K, V]) Find(key K) (V, bool) {
	idx := h.getBucketIndex(key)
	return h.bucketTable[idx].find(key)
}

// Remove deletes the entry of key. returns false when the key is absent
func (h *ExtendibleHash[K, V]) Remove(key K) bool {
	idx := h.getBucketIndex(key)
	target := h.bucketTable[idx]
	for i := range target.items {
		if target.items[i].First == key {
			target.items = append(target.items[:i], target.items[i+1:]...)
			return true
		}
	}
	return false
}

// Insert stores the key/value entry. An existing key is overwritten in
// place. On overflow the target bucket is split (repeatedly, when every
// entry lands in the same half) and the insert is retried.
func (h *ExtendibleHash[K, V]) Insert(key K, value V) {
	idx := h.getBucketIndex(key)
	target := h.bucketTable[idx]

	for i := range target.items {
		if target.items[i].First == key {
			target.items[i].Second = value
			return
		}
	}

	for uint32(len(target.items)) == h.bucketMaxSize {
		if target.localDepth == h.globalDepth {
			// double the directory, duplicating every entry
			length := len(h.bucketTable)
			for i := 0; i < length; i++ {
				h.bucketTable = append(h.bucketTable, h.bucketTable[i])
			}
			h.globalDepth++
		}
		mask := uint64(1) << target.localDepth

		zeroBucket := newBucket[K, V](target.localDepth + 1)
		oneBucket := newBucket[K, V](target.localDepth + 1)
		for _, item := range target.items {
			if h.hashFn(item.First)&mask != 0 {
				oneBucket.items = append(oneBucket.items, item)
			} else {
				zeroBucket.items = append(zeroBucket.items, item)
			}
		}
		h.numBuckets++

		for i := range h.bucketTable {
			if h.bucketTable[i] == target {
				if uint64(i)&mask != 0 {
					h.bucketTable[i] = oneBucket
				} else {
					h.bucketTable[i] = zeroBucket
				}
			}
		}

		idx = h.getBucketIndex(key)
		target = h.bucketTable[idx]
	}

	target.items = append(target.items, pair.Pair[K, V]{First: key, Second: value})
}
