package access

import (
	"sync"

	"github.com/ryogrid/UzushioDB/lib/common"
	"github.com/ryogrid/UzushioDB/lib/storage/page"
	"github.com/ryogrid/UzushioDB/lib/types"
	"github.com/sasha-s/go-deadlock"
)

/** Two-Phase Locking mode. */
type TwoPLMode int32

const (
	REGULAR TwoPLMode = iota
	STRICT
)

type LockMode int32

const (
	SHARED LockMode = iota
	EXCLUSIVE
)

// LockRequest is one entry of a RID's wait list, granted or still queued
type LockRequest struct {
	txnID    types.TxnID
	lockMode LockMode
	granted  bool
}

type lockRequestQueue struct {
	requests []*LockRequest
}

/**
 * LockManager handles transactions asking for row locks. Each RID carries a
 * FIFO wait list of requests; a request is granted when its granting
 * predicate over the list prefix holds. Shared requests forming a
 * contiguous granted prefix run in parallel, everything else queues.
 *
 * No deadlock handling: a cycle of waiting transactions waits forever.
 * TODO: (UZS) wait-die preemption needs a birth timestamp plumbed into
 * Transaction before it can be implemented here.
 *
 * [LOCK_NOTE]: For all locking functions, we:
 * 1. return false if the transaction is aborted; and
 * 2. block on wait, return true when the lock request is granted; and
 * 3. it is undefined behavior to try locking an already locked RID in the
 *    same transaction, i.e. the transaction is responsible for keeping
 *    track of its current locks.
 */
type LockManager struct {
	twoPLMode TwoPLMode

	mutex *deadlock.Mutex
	// notifies blocked transactions that some wait list changed
	cv        *sync.Cond
	lockTable map[page.RID]*lockRequestQueue
}

// NewLockManager creates a lock manager configured for the given type of
// 2-phase locking
func NewLockManager(twoPLMode TwoPLMode) *LockManager {
	ret := new(LockManager)
	ret.twoPLMode = twoPLMode
	ret.mutex = new(deadlock.Mutex)
	ret.cv = sync.NewCond(ret.mutex)
	ret.lockTable = make(map[page.RID]*lockRequestQueue)
	return ret
}

func (lm *LockManager) isStrict() bool { return lm.twoPLMode == STRICT }

func (lm *LockManager) getWaitList(rid page.RID) *lockRequestQueue {
	if list, ok := lm.lockTable[rid]; ok {
		return list
	}
	list := &lockRequestQueue{make([]*LockRequest, 0)}
	lm.lockTable[rid] = list
	return list
}

// sharedGrantable holds when every request queued before txnID's request is
// a granted shared request
func (lm *LockManager) sharedGrantable(rid page.RID, txnID types.TxnID) bool {
	for _, req := range lm.lockTable[rid].requests {
		if req.txnID == txnID {
			return true
		}
		if req.lockMode != SHARED || !req.granted {
			return false
		}
	}
	return true
}

// exclusiveGrantable holds when txnID's request heads the wait list
func (lm *LockManager) exclusiveGrantable(rid page.RID, txnID types.TxnID) bool {
	requests := lm.lockTable[rid].requests
	return len(requests) > 0 && requests[0].txnID == txnID
}

// upgradable holds when txnID's request heads the wait list and no other
// request in the list is granted
func (lm *LockManager) upgradable(rid page.RID, txnID types.TxnID) bool {
	requests := lm.lockTable[rid].requests
	if len(requests) == 0 || requests[0].txnID != txnID {
		return false
	}
	for _, req := range requests[1:] {
		if req.granted {
			return false
		}
	}
	return true
}

/**
 * LockShared acquires a lock on rid in shared mode. See [LOCK_NOTE].
 * @return true if the lock is granted, false otherwise
 */
func (lm *LockManager) LockShared(txn *Transaction, rid *page.RID) bool {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()
	if txn.GetState() == ABORTED {
		return false
	}
	common.SH_Assert(txn.GetState() == GROWING, "LockShared: transaction is not growing")
	common.SH_Assert(!txn.IsSharedLocked(rid), "LockShared: rid is already shared locked")

	request := &LockRequest{txn.GetTransactionId(), SHARED, false}
	list := lm.getWaitList(*rid)
	list.requests = append(list.requests, request)

	for !lm.sharedGrantable(*rid, txn.GetTransactionId()) {
		lm.cv.Wait()
	}

	request.granted = true
	txn.GetSharedLockSet().Add(*rid)

	// a just granted shared request may unblock the shared requests queued
	// behind it
	lm.cv.Broadcast()
	return true
}

/**
 * LockExclusive acquires a lock on rid in exclusive mode. See [LOCK_NOTE].
 * @return true if the lock is granted, false otherwise
 */
func (lm *LockManager) LockExclusive(txn *Transaction, rid *page.RID) bool {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()
	if txn.GetState() == ABORTED {
		return false
	}
	common.SH_Assert(txn.GetState() == GROWING, "LockExclusive: transaction is not growing")
	common.SH_Assert(!txn.IsExclusiveLocked(rid), "LockExclusive: rid is already exclusive locked")

	request := &LockRequest{txn.GetTransactionId(), EXCLUSIVE, false}
	list := lm.getWaitList(*rid)
	list.requests = append(list.requests, request)

	for !lm.exclusiveGrantable(*rid, txn.GetTransactionId()) {
		lm.cv.Wait()
	}

	request.granted = true
	txn.GetExclusiveLockSet().Add(*rid)

	// nothing behind an exclusive lock can proceed until it unlocks, so
	// there is no point in waking anyone
	return true
}

/**
 * LockUpgrade upgrades a shared lock on rid to an exclusive one. The
 * transaction must already hold rid in shared mode. Only one upgrade may be
 * pending per RID: two concurrent upgraders deadlock against each other.
 * @return true if the upgrade is successful, false otherwise
 */
func (lm *LockManager) LockUpgrade(txn *Transaction, rid *page.RID) bool {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()
	if txn.GetState() == ABORTED {
		return false
	}
	common.SH_Assert(txn.GetState() == GROWING, "LockUpgrade: transaction is not growing")
	common.SH_Assert(txn.IsSharedLocked(rid), "LockUpgrade: rid is not shared locked")

	for !lm.upgradable(*rid, txn.GetTransactionId()) {
		lm.cv.Wait()
	}

	lm.lockTable[*rid].requests[0].lockMode = EXCLUSIVE
	txn.GetSharedLockSet().Remove(*rid)
	txn.GetExclusiveLockSet().Add(*rid)
	return true
}

/**
 * Unlock releases the lock the transaction holds on rid.
 *
 * Under strict 2PL an unlock before COMMITTED/ABORTED is a protocol
 * violation: the transaction is moved to ABORTED and false is returned.
 * Under regular 2PL the first unlock moves a growing transaction to
 * SHRINKING.
 *
 * @return true if the unlock is successful, false otherwise
 */
func (lm *LockManager) Unlock(txn *Transaction, rid *page.RID) bool {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	if lm.isStrict() {
		if txn.GetState() != COMMITTED && txn.GetState() != ABORTED {
			txn.SetState(ABORTED)
			return false
		}
	} else if txn.GetState() == GROWING {
		txn.SetState(SHRINKING)
	}

	list, ok := lm.lockTable[*rid]
	if !ok {
		return false
	}
	for i, req := range list.requests {
		if req.txnID == txn.GetTransactionId() {
			if req.lockMode == SHARED {
				txn.GetSharedLockSet().Remove(*rid)
			} else {
				txn.GetExclusiveLockSet().Remove(*rid)
			}
			list.requests = append(list.requests[:i], list.requests[i+1:]...)

			lm.cv.Broadcast()
			return true
		}
	}
	return false
}
