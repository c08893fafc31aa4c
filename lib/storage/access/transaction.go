package access

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/golang-collections/collections/queue"
	"github.com/ryogrid/UzushioDB/lib/common"
	"github.com/ryogrid/UzushioDB/lib/storage/page"
	"github.com/ryogrid/UzushioDB/lib/types"
)

/**
 * Transaction states:
 *
 *     _________________________
 *    |                         v
 * GROWING -> SHRINKING -> COMMITTED   ABORTED
 *    |__________|________________________^
 *
 * Under strict two-phase locking SHRINKING is never entered: locks are
 * released only at commit or abort.
 **/

type TransactionState int32

const (
	GROWING TransactionState = iota
	SHRINKING
	COMMITTED
	ABORTED
)

/**
 * Transaction tracks the state a running transaction accumulates: the rows
 * it has locked, the tree pages the current index operation has latched,
 * and the pages that operation has scheduled for deletion.
 */
type Transaction struct {
	/** The current transaction state. */
	state TransactionState

	/** The id of this transaction. */
	txnID types.TxnID

	/** The LSN of the last record written by the transaction. */
	prevLsn types.LSN

	// the set of shared-locked tuples held by this transaction
	sharedLockSet mapset.Set[page.RID]
	// the set of exclusive-locked tuples held by this transaction
	exclusiveLockSet mapset.Set[page.RID]

	// the pages latched by the index operation running under this
	// transaction, in acquisition order. drained on every exit path
	pageSet *queue.Queue
	// the pages the running index operation has emptied. deleted through
	// the buffer pool once the latch queue is drained
	deletedPageIDs []types.PageID
}

func NewTransaction(txnID types.TxnID) *Transaction {
	return &Transaction{
		GROWING,
		txnID,
		common.InvalidLSN,
		mapset.NewSet[page.RID](),
		mapset.NewSet[page.RID](),
		queue.New(),
		make([]types.PageID, 0),
	}
}

/** @return the id of this transaction */
func (txn *Transaction) GetTransactionId() types.TxnID { return txn.txnID }

/** @return the current state of the transaction */
func (txn *Transaction) GetState() TransactionState { return txn.state }

func (txn *Transaction) SetState(state TransactionState) { txn.state = state }

/** @return the previous LSN */
func (txn *Transaction) GetPrevLSN() types.LSN { return txn.prevLsn }

func (txn *Transaction) SetPrevLSN(prevLsn types.LSN) { txn.prevLsn = prevLsn }

/** @return the set of rows under a shared lock */
func (txn *Transaction) GetSharedLockSet() mapset.Set[page.RID] { return txn.sharedLockSet }

/** @return the set of rows under an exclusive lock */
func (txn *Transaction) GetExclusiveLockSet() mapset.Set[page.RID] { return txn.exclusiveLockSet }

/** @return true if rid is shared locked by this transaction */
func (txn *Transaction) IsSharedLocked(rid *page.RID) bool {
	return txn.sharedLockSet.Contains(*rid)
}

/** @return true if rid is exclusively locked by this transaction */
func (txn *Transaction) IsExclusiveLocked(rid *page.RID) bool {
	return txn.exclusiveLockSet.Contains(*rid)
}

// AddIntoPageSet records a page the running index operation latched
func (txn *Transaction) AddIntoPageSet(pg *page.Page) {
	txn.pageSet.Enqueue(pg)
}

// GetPageSet returns the latched page queue of the running index operation
func (txn *Transaction) GetPageSet() *queue.Queue {
	return txn.pageSet
}

// AddIntoDeletedPageSet schedules a page for deletion after the latch
// queue is drained
func (txn *Transaction) AddIntoDeletedPageSet(pageID types.PageID) {
	txn.deletedPageIDs = append(txn.deletedPageIDs, pageID)
}

func (txn *Transaction) GetDeletedPageSet() []types.PageID {
	return txn.deletedPageIDs
}

func (txn *Transaction) ClearDeletedPageSet() {
	txn.deletedPageIDs = make([]types.PageID, 0)
}
