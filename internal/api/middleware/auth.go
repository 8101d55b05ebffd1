package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/recordlink/registrar/internal/core/domain"
	"github.com/recordlink/registrar/internal/core/ports"
	"github.com/recordlink/registrar/internal/pkg/metrics"
)

// Context keys set by Auth for downstream handlers.
const (
	ContextAccountID = "account_id"
	ContextRole      = "role"
	ContextToken     = "token"
)

// Auth admits requests carrying a valid "Authorization: Bearer <token>"
// header and injects the subject and role into the context. Rejections are
// 401 errors whose internal cause is the domain token error.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
			if authHeader == "" {
				return reject(domain.ErrMissingToken)
			}

			scheme, raw, ok := strings.Cut(authHeader, " ")
			raw = strings.TrimSpace(raw)
			if !ok || !strings.EqualFold(scheme, "bearer") || raw == "" {
				return reject(domain.ErrMalformedToken)
			}

			token, err := verifier.Verify(raw)
			if err != nil {
				return reject(err)
			}

			c.Set(ContextAccountID, token.Subject)
			c.Set(ContextRole, string(token.Role))
			c.Set(ContextToken, token)

			return next(c)
		}
	}
}

func reject(err error) error {
	kind := domain.KindOf(err)
	switch kind {
	case domain.KindMissingToken, domain.KindMalformedToken, domain.KindInvalidSignature, domain.KindTokenExpired:
	default:
		// Anything unexpected from the verifier is still a refusal.
		err = domain.As(domain.ErrMalformedToken, err)
		kind = domain.KindMalformedToken
	}
	metrics.TokenRejectionsTotal.WithLabelValues(string(kind)).Inc()
	return echo.NewHTTPError(http.StatusUnauthorized, domain.Message(err)).SetInternal(err)
}
