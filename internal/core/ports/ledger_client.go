package ports

import (
	"context"

	"github.com/recordlink/registrar/internal/core/domain"
)

// LedgerClient anchors CIDs to account identifiers on the registry contract.
type LedgerClient interface {
	// SubmitAndConfirm sends registerUser(accountID, cid) with the given gas
	// ceiling and waits for one block confirmation. Errors wrap
	// domain.ErrLedgerRejected (mined but reverted, or refused by the node)
	// or domain.ErrLedgerUnavailable (could not submit or confirm).
	SubmitAndConfirm(ctx context.Context, accountID, cid string, gasCeiling uint64) (*domain.LedgerReceipt, error)
	// LookupCID reads the CID stored for accountID. Returns
	// domain.ErrLedgerRecordAbsent when the contract holds none.
	LookupCID(ctx context.Context, accountID string) (string, error)
}

// RecordLedger writes criminal records to the registry contract. Both calls
// wait for one block confirmation and classify errors like LedgerClient.
type RecordLedger interface {
	// RegisterCriminal sends registerCriminal(subject) for a 20-byte hex
	// address.
	RegisterCriminal(ctx context.Context, subject string) (*domain.LedgerReceipt, error)
	// AddCrime sends addCrime(recordId, description, ipfsHash).
	AddCrime(ctx context.Context, record domain.CrimeRecord) (*domain.LedgerReceipt, error)
}
