package ports

import (
	"context"

	"github.com/recordlink/registrar/internal/core/domain"
)

// RegisterInput carries the registration request after transport decoding.
type RegisterInput struct {
	Username string
	Password string
	Role     string
}

// RegistrationResult is returned only when every pipeline stage succeeded.
type RegistrationResult struct {
	Token       *domain.Token
	Account     domain.AccountSummary
	Publication *domain.LedgerReference
}

// LoginResult carries the session token and the caller-safe account view.
type LoginResult struct {
	Token   *domain.Token
	Account domain.AccountSummary
}

// RegistrationService is the registration pipeline plus login.
type RegistrationService interface {
	// Register creates the account, issues a token, publishes the account
	// document and anchors it on the ledger. Failures after the account was
	// persisted are returned as *domain.PipelineError.
	Register(ctx context.Context, in RegisterInput) (*RegistrationResult, error)
	// Login never distinguishes an unknown username from a wrong password.
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

// LinkageService re-drives publication and ledger commit for accounts left
// without a ledger reference. It is only ever triggered by an operator.
type LinkageService interface {
	Relink(ctx context.Context, accountID string) (*domain.LedgerReference, error)
	ListUnlinked(ctx context.Context, limit int) ([]domain.AccountSummary, error)
}
