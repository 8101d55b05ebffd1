package ports

import (
	"context"

	"github.com/recordlink/registrar/internal/core/domain"
)

// AccountRepository is the durable credential store.
type AccountRepository interface {
	// FindByUsername returns domain.ErrAccountNotFound when no account matches.
	// Usernames are compared case-sensitively.
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	// Create persists a new account. A username collision detected by the
	// storage layer must surface as domain.ErrDuplicateAccount.
	Create(ctx context.Context, account *domain.Account) error
	AttachLedgerReference(ctx context.Context, id string, ref domain.LedgerReference) error
	// ListUnlinked returns accounts that have no ledger reference, oldest first.
	ListUnlinked(ctx context.Context, limit int) ([]*domain.Account, error)
}
