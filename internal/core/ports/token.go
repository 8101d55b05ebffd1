package ports

import "github.com/recordlink/registrar/internal/core/domain"

// TokenIssuer mints signed session tokens.
type TokenIssuer interface {
	Mint(account *domain.Account) (*domain.Token, error)
}

// TokenVerifier checks a raw bearer token. Errors wrap one of
// domain.ErrMalformedToken, domain.ErrInvalidSignature or domain.ErrTokenExpired.
type TokenVerifier interface {
	Verify(raw string) (*domain.Token, error)
}
