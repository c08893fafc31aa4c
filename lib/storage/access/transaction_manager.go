package access

import (
	"sync"

	"github.com/ryogrid/UzushioDB/lib/common"
	"github.com/ryogrid/UzushioDB/lib/recovery"
	"github.com/ryogrid/UzushioDB/lib/types"
)

/**
 * TransactionManager keeps track of all the transactions running in the
 * system and drives their state transitions. Lock release happens here, so
 * that under strict 2PL every lock is held until commit or abort.
 */
type TransactionManager struct {
	nextTxnID   types.TxnID
	lockManager *LockManager
	logManager  *recovery.LogManager
	/** The global transaction latch is used for checkpointing. */
	globalTxnLatch common.ReaderWriterLatch
	txnMap         map[types.TxnID]*Transaction
	mutex          *sync.Mutex
}

func NewTransactionManager(lockManager *LockManager, logManager *recovery.LogManager) *TransactionManager {
	return &TransactionManager{0, lockManager, logManager, common.NewRWLatch(), make(map[types.TxnID]*Transaction), new(sync.Mutex)}
}

// Begin starts a new transaction, or registers txn when one is passed in
func (tm *TransactionManager) Begin(txn *Transaction) *Transaction {
	// Acquire the global transaction latch in shared mode.
	tm.globalTxnLatch.RLock()
	ret := txn

	if ret == nil {
		tm.mutex.Lock()
		tm.nextTxnID++
		ret = NewTransaction(tm.nextTxnID)
		tm.mutex.Unlock()
	}

	if tm.logManager.IsEnabledLogging() {
		logRecord := recovery.NewLogRecordTxn(ret.GetTransactionId(), ret.GetPrevLSN(), recovery.BEGIN)
		lsn := tm.logManager.AppendLogRecord(logRecord)
		ret.SetPrevLSN(lsn)
	}

	tm.mutex.Lock()
	tm.txnMap[ret.GetTransactionId()] = ret
	tm.mutex.Unlock()
	return ret
}

// Commit commits txn and releases every lock it holds
func (tm *TransactionManager) Commit(txn *Transaction) {
	if tm.logManager.IsEnabledLogging() {
		logRecord := recovery.NewLogRecordTxn(txn.GetTransactionId(), txn.GetPrevLSN(), recovery.COMMIT)
		lsn := tm.logManager.AppendLogRecord(logRecord)
		txn.SetPrevLSN(lsn)
		tm.logManager.Flush()
	}

	// the state moves first: under strict 2PL Unlock refuses anything
	// still running
	txn.SetState(COMMITTED)
	tm.releaseLocks(txn)

	// Release the global transaction latch.
	tm.globalTxnLatch.RUnlock()
}

// Abort aborts txn and releases every lock it holds
func (tm *TransactionManager) Abort(txn *Transaction) {
	if tm.logManager.IsEnabledLogging() {
		logRecord := recovery.NewLogRecordTxn(txn.GetTransactionId(), txn.GetPrevLSN(), recovery.ABORT)
		lsn := tm.logManager.AppendLogRecord(logRecord)
		txn.SetPrevLSN(lsn)
	}

	txn.SetState(ABORTED)
	tm.releaseLocks(txn)

	// Release the global transaction latch.
	tm.globalTxnLatch.RUnlock()
}

// GetTransaction returns the running transaction of txnID
func (tm *TransactionManager) GetTransaction(txnID types.TxnID) *Transaction {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()
	return tm.txnMap[txnID]
}

// BlockAllTransactions waits until every running transaction has committed
// or aborted, and keeps new transactions from beginning until
// ResumeTransactions. Used while a checkpoint flushes the pool.
func (tm *TransactionManager) BlockAllTransactions() {
	tm.globalTxnLatch.WLock()
}

// ResumeTransactions resumes transaction processing
func (tm *TransactionManager) ResumeTransactions() {
	tm.globalTxnLatch.WUnlock()
}

func (tm *TransactionManager) releaseLocks(txn *Transaction) {
	for _, rid := range txn.GetExclusiveLockSet().ToSlice() {
		lockedRID := rid
		tm.lockManager.Unlock(txn, &lockedRID)
	}
	for _, rid := range txn.GetSharedLockSet().ToSlice() {
		lockedRID := rid
		tm.lockManager.Unlock(txn, &lockedRID)
	}
}
