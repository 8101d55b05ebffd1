package domain

// LedgerReceipt is the confirmed outcome of a ledger submission.
type LedgerReceipt struct {
	TxHash      string
	BlockNumber uint64
	GasUsed     uint64
}

// CrimeRecord is an entry appended to the record registry. CID points at
// the published evidence document.
type CrimeRecord struct {
	RecordID    string
	Description string
	CID         string
}
