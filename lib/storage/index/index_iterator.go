package index

import (
	"github.com/ryogrid/UzushioDB/lib/common"
	"github.com/ryogrid/UzushioDB/lib/storage/buffer"
	"github.com/ryogrid/UzushioDB/lib/storage/index/index_common"
	"github.com/ryogrid/UzushioDB/lib/storage/page"
	"github.com/ryogrid/UzushioDB/lib/types"
)

/**
 * IndexIterator walks the leaf chain in key order. It keeps the current
 * leaf read latched and pinned, so concurrent mutations of that leaf block
 * until the iterator moves on. A single reader owns an iterator.
 *
 * Callers which stop before the end must Close the iterator to hand the
 * latch and the pin back.
 */
type IndexIterator struct {
	curPage *page.Page
	leaf    *page.BPlusTreeLeafPage
	index   int32
	bpm     *buffer.BufferPoolManager
}

func newIndexIterator(curPage *page.Page, leaf *page.BPlusTreeLeafPage, index int32, bpm *buffer.BufferPoolManager) *IndexIterator {
	return &IndexIterator{curPage, leaf, index, bpm}
}

// IsEnd reports whether the iteration is exhausted
func (it *IndexIterator) IsEnd() bool {
	return it.leaf == nil || it.index >= it.leaf.GetSize()
}

// Current returns the pair at the iterator position. Undefined when IsEnd
// holds.
func (it *IndexIterator) Current() (index_common.GenericKey, page.RID) {
	return it.leaf.GetItem(it.index)
}

// Next advances the iterator, hopping to the next leaf when the current one
// is exhausted. The next leaf is latched before the current one is let go.
func (it *IndexIterator) Next() {
	it.index++
	if it.index >= it.leaf.GetSize() {
		nextPageId := it.leaf.GetNextPageId()
		if nextPageId == types.InvalidPageID {
			it.release()
		} else {
			nextPage := it.bpm.FetchPage(nextPageId)
			if nextPage == nil {
				panic("buffer pool exhausted")
			}
			nextPage.RLatch()

			it.curPage.RUnlatch()
			it.bpm.UnpinPage(it.curPage.GetPageId(), false)

			it.curPage = nextPage
			it.leaf = page.CastPageAsBPTreeLeafPage(nextPage)
			it.index = 0
		}
	}
}

// Close releases the latch and the pin of the leaf the iterator still
// holds. Harmless on an exhausted iterator.
func (it *IndexIterator) Close() {
	if it.leaf != nil {
		it.release()
	}
}

func (it *IndexIterator) release() {
	common.SH_Assert(it.curPage != nil, "release: no page held")
	it.curPage.RUnlatch()
	it.bpm.UnpinPage(it.curPage.GetPageId(), false)
	it.curPage = nil
	it.leaf = nil
}
