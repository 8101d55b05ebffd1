package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/recordlink/registrar/internal/api/middleware"
	"github.com/recordlink/registrar/internal/core/domain"
)

// principal extracts what the Auth middleware injected. A missing subject
// means the route was mounted without Auth.
func principal(c echo.Context) (accountID string, role domain.Role, token *domain.Token, err error) {
	accountID, _ = c.Get(middleware.ContextAccountID).(string)
	roleStr, _ := c.Get(middleware.ContextRole).(string)
	token, _ = c.Get(middleware.ContextToken).(*domain.Token)
	if accountID == "" || roleStr == "" {
		return "", "", nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims").
			SetInternal(domain.ErrMissingToken)
	}
	return accountID, domain.Role(roleStr), token, nil
}

// bind decodes and validates the request body into req.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Validationf("invalid payload")
	}
	return c.Validate(req)
}
