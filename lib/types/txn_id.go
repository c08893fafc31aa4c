package types

// TxnID is the type of the transaction identifier
type TxnID int32

// InvalidTxnID represents an invalid transaction id
const InvalidTxnID = TxnID(-1)
