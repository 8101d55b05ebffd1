package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/recordlink/registrar/internal/api/apierr"
	"github.com/recordlink/registrar/internal/core/domain"
	"github.com/recordlink/registrar/internal/core/service"
)

var testAccount = &domain.Account{ID: "acc-1", Username: "alice", Role: domain.RoleRegistrar}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = apierr.NewHTTPErrorHandler(zerolog.Nop(), false)
	return e
}

// runAuth drives the middleware with header and returns the recorder and
// whether next was reached.
func runAuth(t *testing.T, svc *service.TokenService, header string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(svc)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func kindOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	kind, _ := body["kind"].(string)
	return kind
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	svc := service.NewTokenService("secret", "registrar", time.Hour)
	tok, err := svc.Mint(testAccount)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Value)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(svc)(func(c echo.Context) error {
		called = true
		if c.Get(ContextAccountID) != "acc-1" {
			t.Fatalf("account_id not set")
		}
		if c.Get(ContextRole) != "registrar" {
			t.Fatalf("role not set")
		}
		if _, ok := c.Get(ContextToken).(*domain.Token); !ok {
			t.Fatalf("token not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := service.NewTokenService("secret", "registrar", time.Hour, service.WithClock(func() time.Time { return now }))

	valid, err := svc.Mint(testAccount)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	forged, err := service.NewTokenService("other", "registrar", time.Hour, service.WithClock(func() time.Time { return now })).Mint(testAccount)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	expired, err := service.NewTokenService("secret", "registrar", time.Hour,
		service.WithClock(func() time.Time { return now.Add(-2 * time.Hour) })).Mint(testAccount)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	cases := []struct {
		name   string
		header string
		kind   domain.Kind
	}{
		{"no header", "", domain.KindMissingToken},
		{"wrong scheme", "Token " + valid.Value, domain.KindMalformedToken},
		{"bearer without token", "Bearer ", domain.KindMalformedToken},
		{"garbage token", "Bearer not-a-token", domain.KindMalformedToken},
		{"foreign signature", "Bearer " + forged.Value, domain.KindInvalidSignature},
		{"expired", "Bearer " + expired.Value, domain.KindTokenExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, called := runAuth(t, svc, tc.header)
			if called {
				t.Fatalf("should not reach next")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if got := kindOf(t, rec); got != string(tc.kind) {
				t.Fatalf("expected kind %s, got %s", tc.kind, got)
			}
		})
	}
}

func TestAuthMiddleware_DefaultErrorHandlerStillUnauthorized(t *testing.T) {
	svc := service.NewTokenService("secret", "registrar", time.Hour)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(svc)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})
	err := handler(c)
	if !errors.Is(err, domain.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken cause, got %v", err)
	}
	e.HTTPErrorHandler(err, c)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
