package index

import (
	"sync"

	"github.com/ryogrid/UzushioDB/lib/common"
	"github.com/ryogrid/UzushioDB/lib/storage/access"
	"github.com/ryogrid/UzushioDB/lib/storage/buffer"
	"github.com/ryogrid/UzushioDB/lib/storage/index/index_common"
	"github.com/ryogrid/UzushioDB/lib/storage/page"
	"github.com/ryogrid/UzushioDB/lib/types"
)

/**
 * BPlusTree is a disk resident B+tree mapping unique GenericKeys to RIDs.
 * Internal pages direct the search, leaf pages hold the values and chain
 * left to right for ordered scans.
 *
 * Concurrent operations latch crab top down: a read descent keeps at most
 * one latch, a write descent keeps every ancestor latched until the current
 * node is safe for the operation. The latches a transaction holds live in
 * its page set queue and are drained on every exit path.
 *
 * rootPageId is itself shared mutable state. Any operation which may change
 * it holds rootIdMutex until the descent proves the root cannot move.
 */
type BPlusTree struct {
	indexName       string
	rootPageId      types.PageID
	bpm             *buffer.BufferPoolManager
	comparator      index_common.KeyComparator
	leafMaxSize     int32
	internalMaxSize int32
	rootIdMutex     sync.Mutex
}

// opContext carries the per operation traversal state: the operation kind,
// the owning transaction, and whether this operation still holds the root
// id mutex. The flag makes the release idempotent across the exit paths.
type opContext struct {
	op             page.OpType
	txn            *access.Transaction
	holdsRootLatch bool
}

// NewBPlusTree opens the index named name, recovering its root page id
// from the header page. Node capacities derive from the page size.
func NewBPlusTree(name string, bpm *buffer.BufferPoolManager, comparator index_common.KeyComparator) *BPlusTree {
	return NewBPlusTreeWithMaxSizes(name, bpm, comparator, 0, 0)
}

// NewBPlusTreeWithMaxSizes opens the index with explicit node capacities.
// Small capacities keep split and merge reachable in tests.
func NewBPlusTreeWithMaxSizes(name string, bpm *buffer.BufferPoolManager, comparator index_common.KeyComparator, leafMaxSize int32, internalMaxSize int32) *BPlusTree {
	t := &BPlusTree{
		indexName:       name,
		rootPageId:      types.InvalidPageID,
		bpm:             bpm,
		comparator:      comparator,
		leafMaxSize:     leafMaxSize,
		internalMaxSize: internalMaxSize,
	}

	created := false
	hpPg := bpm.FetchPage(common.HeaderPageID)
	if hpPg == nil {
		// fresh database file. the first allocation is the header page
		hpPg = bpm.NewPage()
		common.SH_Assert(hpPg != nil && hpPg.GetPageId() == common.HeaderPageID,
			"header page must be page 0")
		created = true
	}
	hp := page.CastPageAsHeaderPage(hpPg)
	if rootId, found := hp.GetRootId(name); found {
		t.rootPageId = rootId
	}
	bpm.UnpinPage(common.HeaderPageID, created)
	return t
}

// IsEmpty reports whether the tree holds no entries
func (t *BPlusTree) IsEmpty() bool {
	return t.rootPageId == types.InvalidPageID
}

// GetRootPageId is for tests
func (t *BPlusTree) GetRootPageId() types.PageID {
	return t.rootPageId
}

/*****************************************************************************
 * SEARCH
 *****************************************************************************/

// GetValue finds the value stored under key and appends it to result.
// Returns true when the key exists.
func (t *BPlusTree) GetValue(key index_common.GenericKey, result *[]page.RID, txn *access.Transaction) bool {
	ctx := &opContext{op: page.GetOp, txn: txn}
	leafPg, leaf := t.findLeafPage(key, ctx, false)
	if leafPg == nil {
		return false
	}
	value, found := leaf.Lookup(key, t.comparator)
	if found {
		*result = append(*result, value)
	}

	if txn != nil {
		t.unlatchAndUnpinPageSet(ctx)
	} else {
		leafPg.RUnlatch()
		t.bpm.UnpinPage(leafPg.GetPageId(), false)
	}
	return found
}

/*****************************************************************************
 * INSERTION
 *****************************************************************************/

// Insert stores the key/value pair. Keys are unique: inserting a key which
// already exists changes nothing and returns false.
func (t *BPlusTree) Insert(key index_common.GenericKey, value page.RID, txn *access.Transaction) bool {
	common.SH_Assert(txn != nil, "Insert: transaction is required")
	ctx := &opContext{op: page.InsertOp, txn: txn}

	t.rootIdMutex.Lock()
	ctx.holdsRootLatch = true
	if t.IsEmpty() {
		t.startNewTree()
	}
	t.unlockRoot(ctx)

	return t.insertIntoLeaf(key, value, ctx)
}

// startNewTree creates an empty leaf as the root and publishes its id.
// The caller holds rootIdMutex.
func (t *BPlusTree) startNewTree() {
	rootPg := t.newPage()
	page.NewBPlusTreeLeafPage(rootPg, rootPg.GetPageId(), types.InvalidPageID, t.leafMaxSize)
	t.bpm.UnpinPage(rootPg.GetPageId(), true)

	t.rootPageId = rootPg.GetPageId()
	t.updateRootPageId(true)
	if common.EnableDebug {
		common.Logger.Debugf("startNewTree: index=%s root=%d", t.indexName, t.rootPageId)
	}
}

func (t *BPlusTree) insertIntoLeaf(key index_common.GenericKey, value page.RID, ctx *opContext) bool {
	leafPg, leaf := t.findLeafPage(key, ctx, false)
	if leafPg == nil {
		// a concurrent delete emptied the tree after the root check.
		// start over
		return t.Insert(key, value, ctx.txn)
	}

	if _, exists := leaf.Lookup(key, t.comparator); exists {
		t.unlatchAndUnpinPageSet(ctx)
		return false
	}

	if leaf.GetSize() < leaf.GetMaxSize() {
		leaf.Insert(key, value, t.comparator)
	} else {
		// fill the reserved overflow slot, then split
		leaf.Insert(key, value, t.comparator)
		newLeafPg, newLeaf := t.splitLeaf(leaf)
		t.insertIntoParent(leafPg, newLeaf.KeyAt(0), newLeafPg, ctx)
	}

	t.unlatchAndUnpinPageSet(ctx)
	return true
}

// splitLeaf moves the upper half of leaf into a fresh page. The new leaf is
// returned pinned and is invisible to other operations until the caller
// links it into the parent, because every node on the path there is still
// write latched.
func (t *BPlusTree) splitLeaf(leaf *page.BPlusTreeLeafPage) (*page.Page, *page.BPlusTreeLeafPage) {
	newPg := t.newPage()
	newLeaf := page.NewBPlusTreeLeafPage(newPg, newPg.GetPageId(), leaf.GetParentPageId(), t.leafMaxSize)
	leaf.MoveHalfTo(newLeaf)
	return newPg, newLeaf
}

// splitInternal moves the upper half of node into a fresh page and rewires
// the moved children's parent pointers.
func (t *BPlusTree) splitInternal(node *page.BPlusTreeInternalPage) (*page.Page, *page.BPlusTreeInternalPage) {
	newPg := t.newPage()
	newNode := page.NewBPlusTreeInternalPage(newPg, newPg.GetPageId(), node.GetParentPageId(), t.internalMaxSize)
	node.MoveHalfTo(newNode)

	for i := int32(0); i < newNode.GetSize(); i++ {
		childPg := t.fetchPage(newNode.ValueAt(i))
		child := page.CastPageAsBPlusTreePage(childPg)
		child.SetParentPageId(newNode.GetPageId())
		t.bpm.UnpinPage(childPg.GetPageId(), true)
	}
	return newPg, newNode
}

// insertIntoParent links newPg, freshly split off oldPg, into oldPg's
// parent under key, splitting upward as long as parents overflow. The pages
// on the descent path stay pinned by the transaction's page set; this
// method releases the pins it takes itself and the pin on newPg.
func (t *BPlusTree) insertIntoParent(oldPg *page.Page, key index_common.GenericKey, newPg *page.Page, ctx *opContext) {
	oldNode := page.CastPageAsBPlusTreePage(oldPg)
	newNode := page.CastPageAsBPlusTreePage(newPg)

	if oldNode.IsRootPage() {
		newRootPg := t.newPage()
		newRoot := page.NewBPlusTreeInternalPage(newRootPg, newRootPg.GetPageId(), types.InvalidPageID, t.internalMaxSize)
		newRoot.PopulateNewRoot(oldNode.GetPageId(), key, newNode.GetPageId())

		oldNode.SetParentPageId(newRootPg.GetPageId())
		newNode.SetParentPageId(newRootPg.GetPageId())

		t.rootPageId = newRootPg.GetPageId()
		t.updateRootPageId(false)
		t.unlockRoot(ctx)

		t.bpm.UnpinPage(newRootPg.GetPageId(), true)
		t.bpm.UnpinPage(newNode.GetPageId(), true)
		return
	}

	parentId := oldNode.GetParentPageId()
	// the parent sits in the page set, already write latched by the descent
	parentPg := t.fetchPage(parentId)
	parent := page.CastPageAsBPTreeInternalPage(parentPg)

	newNode.SetParentPageId(parentId)

	if parent.GetSize() < parent.GetMaxSize() {
		parent.InsertNodeAfter(oldNode.GetPageId(), key, newNode.GetPageId())
		t.bpm.UnpinPage(newNode.GetPageId(), true)
	} else {
		parent.InsertNodeAfter(oldNode.GetPageId(), key, newNode.GetPageId())
		t.bpm.UnpinPage(newNode.GetPageId(), true)

		newParentPg, newParent := t.splitInternal(parent)
		t.insertIntoParent(parentPg, newParent.KeyAt(0), newParentPg, ctx)
	}

	t.bpm.UnpinPage(parentId, true)
}

/*****************************************************************************
 * REMOVE
 *****************************************************************************/

// Remove deletes the entry of key. Removing an absent key is a no-op.
func (t *BPlusTree) Remove(key index_common.GenericKey, txn *access.Transaction) {
	common.SH_Assert(txn != nil, "Remove: transaction is required")
	ctx := &opContext{op: page.DeleteOp, txn: txn}

	leafPg, leaf := t.findLeafPage(key, ctx, false)
	if leafPg == nil {
		return
	}

	sizeAfter := leaf.RemoveAndDeleteRecord(key, t.comparator)
	if sizeAfter < leaf.GetMinSize() {
		t.coalesceOrRedistribute(leafPg, ctx)
	}

	t.unlatchAndUnpinPageSet(ctx)
	t.processDeletedPages(ctx)
}

// coalesceOrRedistribute repairs the underflow of nodePg: merge with a
// sibling when both fit into one page, steal one entry from it otherwise.
// The leftmost child pairs with its right sibling, every other node with
// its left sibling.
func (t *BPlusTree) coalesceOrRedistribute(nodePg *page.Page, ctx *opContext) {
	node := page.CastPageAsBPlusTreePage(nodePg)
	common.SH_Assert(node.GetSize() < node.GetMinSize(), "coalesceOrRedistribute: node does not underflow")

	if node.IsRootPage() {
		t.adjustRoot(nodePg, ctx)
		return
	}

	parentPg := t.fetchPage(node.GetParentPageId())
	parent := page.CastPageAsBPTreeInternalPage(parentPg)
	index := parent.ValueIndex(node.GetPageId())
	common.SH_Assert(index != -1, "coalesceOrRedistribute: node is not a child of its parent")

	isLeftSibling := index != 0
	var siblingIndex int32
	if isLeftSibling {
		siblingIndex = index - 1
	} else {
		siblingIndex = index + 1
	}
	siblingPg := t.fetchPage(parent.ValueAt(siblingIndex))
	sibling := page.CastPageAsBPlusTreePage(siblingPg)

	if node.GetSize()+sibling.GetSize() <= node.GetMaxSize() {
		t.coalesce(isLeftSibling, siblingPg, nodePg, parentPg, index, ctx)
	} else {
		t.redistribute(isLeftSibling, siblingPg, nodePg, parent, index)
		t.bpm.UnpinPage(siblingPg.GetPageId(), true)
	}
	t.bpm.UnpinPage(parentPg.GetPageId(), true)
}

// coalesce drains the higher keyed page of the (node, sibling) pair into
// the lower keyed one and removes the drained child's separator from the
// parent. The drained page goes to the transaction's deleted page set; it
// still carries a pin in the page set queue when it is the descent node, so
// the actual delete waits for the drain. Underflow of the parent repairs
// recursively.
func (t *BPlusTree) coalesce(isLeftSibling bool, siblingPg *page.Page, nodePg *page.Page, parentPg *page.Page, index int32, ctx *opContext) {
	node := page.CastPageAsBPlusTreePage(nodePg)
	parent := page.CastPageAsBPTreeInternalPage(parentPg)

	if node.IsLeafPage() {
		nodeLeaf := page.CastPageAsBPTreeLeafPage(nodePg)
		siblingLeaf := page.CastPageAsBPTreeLeafPage(siblingPg)
		if isLeftSibling {
			nodeLeaf.MoveAllTo(siblingLeaf)
			t.bpm.UnpinPage(siblingPg.GetPageId(), true)
			ctx.txn.AddIntoDeletedPageSet(nodePg.GetPageId())
			parent.Remove(index)
		} else {
			siblingLeaf.MoveAllTo(nodeLeaf)
			t.bpm.UnpinPage(siblingPg.GetPageId(), true)
			ctx.txn.AddIntoDeletedPageSet(siblingPg.GetPageId())
			parent.Remove(index + 1)
		}
	} else {
		nodeInternal := page.CastPageAsBPTreeInternalPage(nodePg)
		siblingInternal := page.CastPageAsBPTreeInternalPage(siblingPg)
		if isLeftSibling {
			// the separator of the drained node travels down into its
			// slot 0
			separator := parent.KeyAt(index)
			movedChildren := childPageIds(nodeInternal)
			nodeInternal.MoveAllTo(siblingInternal, separator)
			t.rewireChildren(movedChildren, siblingInternal.GetPageId())
			t.bpm.UnpinPage(siblingPg.GetPageId(), true)
			ctx.txn.AddIntoDeletedPageSet(nodePg.GetPageId())
			parent.Remove(index)
		} else {
			separator := parent.KeyAt(index + 1)
			movedChildren := childPageIds(siblingInternal)
			siblingInternal.MoveAllTo(nodeInternal, separator)
			t.rewireChildren(movedChildren, nodeInternal.GetPageId())
			t.bpm.UnpinPage(siblingPg.GetPageId(), true)
			ctx.txn.AddIntoDeletedPageSet(siblingPg.GetPageId())
			parent.Remove(index + 1)
		}
	}

	if parent.GetSize() < parent.GetMinSize() {
		t.coalesceOrRedistribute(parentPg, ctx)
	}
}

// redistribute steals one entry from the sibling: the last one when the
// sibling sits left of node, the first one when it sits right. The parent
// separator between the two pages is refreshed, and for internal nodes the
// stolen entry rotates through it.
func (t *BPlusTree) redistribute(isLeftSibling bool, siblingPg *page.Page, nodePg *page.Page, parent *page.BPlusTreeInternalPage, index int32) {
	node := page.CastPageAsBPlusTreePage(nodePg)

	if node.IsLeafPage() {
		nodeLeaf := page.CastPageAsBPTreeLeafPage(nodePg)
		siblingLeaf := page.CastPageAsBPTreeLeafPage(siblingPg)
		if isLeftSibling {
			siblingLeaf.MoveLastToFrontOf(nodeLeaf)
			parent.SetKeyAt(index, nodeLeaf.KeyAt(0))
		} else {
			siblingLeaf.MoveFirstToEndOf(nodeLeaf)
			parent.SetKeyAt(index+1, siblingLeaf.KeyAt(0))
		}
	} else {
		nodeInternal := page.CastPageAsBPTreeInternalPage(nodePg)
		siblingInternal := page.CastPageAsBPTreeInternalPage(siblingPg)
		if isLeftSibling {
			separator := parent.KeyAt(index)
			newSeparator, movedChild := siblingInternal.MoveLastToFrontOf(nodeInternal, separator)
			parent.SetKeyAt(index, newSeparator)
			t.rewireChildren([]types.PageID{movedChild}, nodeInternal.GetPageId())
		} else {
			separator := parent.KeyAt(index + 1)
			newSeparator, movedChild := siblingInternal.MoveFirstToEndOf(nodeInternal, separator)
			parent.SetKeyAt(index+1, newSeparator)
			t.rewireChildren([]types.PageID{movedChild}, nodeInternal.GetPageId())
		}
	}
}

// adjustRoot handles underflow of the root. An emptied leaf root means the
// tree is empty; an internal root left with a single child hands the root
// role to that child.
func (t *BPlusTree) adjustRoot(oldRootPg *page.Page, ctx *opContext) {
	oldRoot := page.CastPageAsBPlusTreePage(oldRootPg)

	if oldRoot.IsLeafPage() {
		common.SH_Assert(oldRoot.GetSize() == 0, "adjustRoot: leaf root is not empty")

		t.deleteRootPageId()
		t.rootPageId = types.InvalidPageID
		t.unlockRoot(ctx)

		ctx.txn.AddIntoDeletedPageSet(oldRootPg.GetPageId())
		return
	}

	common.SH_Assert(oldRoot.GetSize() == 1, "adjustRoot: internal root keeps more than one child")
	oldRootInternal := page.CastPageAsBPTreeInternalPage(oldRootPg)
	newRootId := oldRootInternal.ValueAt(0)

	t.rootPageId = newRootId
	t.updateRootPageId(false)

	childPg := t.fetchPage(newRootId)
	child := page.CastPageAsBPlusTreePage(childPg)
	child.SetParentPageId(types.InvalidPageID)
	t.bpm.UnpinPage(newRootId, true)

	t.unlockRoot(ctx)
	ctx.txn.AddIntoDeletedPageSet(oldRootPg.GetPageId())
}

/*****************************************************************************
 * ITERATION
 *****************************************************************************/

// Begin returns an iterator positioned at the smallest key
func (t *BPlusTree) Begin() *IndexIterator {
	ctx := &opContext{op: page.GetOp, txn: nil}
	var leftMostKey index_common.GenericKey
	leafPg, leaf := t.findLeafPage(leftMostKey, ctx, true)
	return newIndexIterator(leafPg, leaf, 0, t.bpm)
}

// BeginFromKey returns an iterator positioned at key when it exists, and
// at the end slot of key's leaf otherwise, so that advancing reaches the
// next leaf.
func (t *BPlusTree) BeginFromKey(key index_common.GenericKey) *IndexIterator {
	ctx := &opContext{op: page.GetOp, txn: nil}
	leafPg, leaf := t.findLeafPage(key, ctx, false)
	startIndex := int32(0)
	if leafPg != nil {
		index := leaf.KeyIndex(key, t.comparator)
		if leaf.GetSize() > 0 && index < leaf.GetSize() && t.comparator(key, leaf.KeyAt(index)) == 0 {
			startIndex = index
		} else {
			startIndex = leaf.GetSize()
		}
	}
	return newIndexIterator(leafPg, leaf, startIndex, t.bpm)
}

/*****************************************************************************
 * TRAVERSAL INTERNALS
 *****************************************************************************/

// findLeafPage descends to the leaf covering key (the leftmost leaf when
// leftMost is set), latch crabbing according to ctx.op.
//
// With a transaction, every latched page joins its page set; write descents
// keep ancestors queued until the current node is safe. Without one (read
// descents of iterators), ancestors release immediately and the leaf comes
// back read latched and pinned, the root id mutex already dropped: the
// latch on the path's topmost page is what fences writers.
//
// Returns nils when the tree is empty.
func (t *BPlusTree) findLeafPage(key index_common.GenericKey, ctx *opContext, leftMost bool) (*page.Page, *page.BPlusTreeLeafPage) {
	t.rootIdMutex.Lock()
	ctx.holdsRootLatch = true
	if t.IsEmpty() {
		t.unlockRoot(ctx)
		return nil, nil
	}

	pg := t.fetchPage(t.rootPageId)
	if ctx.op == page.GetOp {
		pg.RLatch()
	} else {
		pg.WLatch()
	}
	if ctx.txn != nil {
		ctx.txn.AddIntoPageSet(pg)
	}
	node := page.CastPageAsBPlusTreePage(pg)

	for !node.IsLeafPage() {
		internal := page.CastPageAsBPTreeInternalPage(pg)
		var nextPageId types.PageID
		if leftMost {
			nextPageId = internal.ValueAt(0)
		} else {
			nextPageId = internal.Lookup(key, t.comparator)
		}

		lastPg := pg
		lastNode := node
		pg = t.fetchPage(nextPageId)
		if ctx.op == page.GetOp {
			pg.RLatch()
		} else {
			pg.WLatch()
		}
		node = page.CastPageAsBPlusTreePage(pg)

		if ctx.txn != nil {
			if ctx.op == page.GetOp || node.IsSafe(ctx.op) {
				t.unlatchAndUnpinPageSet(ctx)
			}
			ctx.txn.AddIntoPageSet(pg)
		} else {
			common.SH_Assert(ctx.op == page.GetOp, "findLeafPage: write descent requires a transaction")
			lastPg.RUnlatch()
			if lastNode.IsRootPage() {
				t.unlockRoot(ctx)
			}
			t.bpm.UnpinPage(lastPg.GetPageId(), false)
		}
	}

	if ctx.txn == nil {
		// the leaf may be the root itself; its read latch is protection
		// enough from here on
		t.unlockRoot(ctx)
	}
	return pg, page.CastPageAsBPTreeLeafPage(pg)
}

// unlatchAndUnpinPageSet drains the transaction's page set: each page is
// unlatched in the mode the operation took it in, then unpinned. Draining
// the page still marked as root also releases the root id mutex.
func (t *BPlusTree) unlatchAndUnpinPageSet(ctx *opContext) {
	pageSet := ctx.txn.GetPageSet()
	for pageSet.Len() > 0 {
		front := pageSet.Dequeue().(*page.Page)
		isRoot := page.CastPageAsBPlusTreePage(front).IsRootPage()
		if ctx.op == page.GetOp {
			front.RUnlatch()
		} else {
			front.WUnlatch()
		}
		if isRoot {
			t.unlockRoot(ctx)
		}
		t.bpm.UnpinPage(front.GetPageId(), ctx.op != page.GetOp)
	}
}

// processDeletedPages deletes the pages the operation emptied, after the
// drain released their last pins
func (t *BPlusTree) processDeletedPages(ctx *opContext) {
	for _, pageID := range ctx.txn.GetDeletedPageSet() {
		isSuccess := t.bpm.DeletePage(pageID)
		common.SH_Assert(isSuccess, "processDeletedPages: page is still pinned")
	}
	ctx.txn.ClearDeletedPageSet()
}

// unlockRoot releases the root id mutex when this operation still holds it
func (t *BPlusTree) unlockRoot(ctx *opContext) {
	if ctx.holdsRootLatch {
		t.rootIdMutex.Unlock()
		ctx.holdsRootLatch = false
	}
}

func (t *BPlusTree) rewireChildren(childIDs []types.PageID, newParentId types.PageID) {
	for _, childId := range childIDs {
		childPg := t.fetchPage(childId)
		child := page.CastPageAsBPlusTreePage(childPg)
		child.SetParentPageId(newParentId)
		t.bpm.UnpinPage(childId, true)
	}
}

func childPageIds(node *page.BPlusTreeInternalPage) []types.PageID {
	ret := make([]types.PageID, 0, node.GetSize())
	for i := int32(0); i < node.GetSize(); i++ {
		ret = append(ret, node.ValueAt(i))
	}
	return ret
}

// updateRootPageId records the root page id of this index on the header
// page. insertRecord selects insertion of a fresh record over update of
// the existing one.
func (t *BPlusTree) updateRootPageId(insertRecord bool) {
	hp := page.CastPageAsHeaderPage(t.fetchPage(common.HeaderPageID))
	if insertRecord {
		hp.InsertRecord(t.indexName, t.rootPageId)
	} else {
		hp.UpdateRecord(t.indexName, t.rootPageId)
	}
	t.bpm.UnpinPage(common.HeaderPageID, true)
}

func (t *BPlusTree) deleteRootPageId() {
	hp := page.CastPageAsHeaderPage(t.fetchPage(common.HeaderPageID))
	hp.DeleteRecord(t.indexName)
	t.bpm.UnpinPage(common.HeaderPageID, true)
}

// fetchPage wraps the buffer pool fetch. Pool exhaustion is fatal for the
// index: there is no way to back out of a half done structure change.
func (t *BPlusTree) fetchPage(pageId types.PageID) *page.Page {
	pg := t.bpm.FetchPage(pageId)
	if pg == nil {
		panic("buffer pool exhausted")
	}
	return pg
}

func (t *BPlusTree) newPage() *page.Page {
	pg := t.bpm.NewPage()
	if pg == nil {
		panic("buffer pool exhausted")
	}
	return pg
}
