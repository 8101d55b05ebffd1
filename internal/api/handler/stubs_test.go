package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/recordlink/registrar/internal/api/apierr"
	"github.com/recordlink/registrar/internal/core/domain"
	"github.com/recordlink/registrar/internal/core/ports"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = apierr.NewHTTPErrorHandler(zerolog.Nop(), false)
	return e
}

// serve runs h and renders any returned error the way the router would.
func serve(e *echo.Echo, c echo.Context, h echo.HandlerFunc) {
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return body
}

type stubRegistrationService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.RegistrationResult, error)
	loginFn    func(ctx context.Context, username, password string) (*ports.LoginResult, error)
}

func (s *stubRegistrationService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegistrationResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubRegistrationService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, username, password)
}

type stubLinkageService struct {
	relinkFn       func(ctx context.Context, accountID string) (*domain.LedgerReference, error)
	listUnlinkedFn func(ctx context.Context, limit int) ([]domain.AccountSummary, error)
}

func (s *stubLinkageService) Relink(ctx context.Context, accountID string) (*domain.LedgerReference, error) {
	return s.relinkFn(ctx, accountID)
}

func (s *stubLinkageService) ListUnlinked(ctx context.Context, limit int) ([]domain.AccountSummary, error) {
	return s.listUnlinkedFn(ctx, limit)
}

type stubQueue struct {
	capacity int
	queued   []string
}

func (q *stubQueue) Enqueue(accountID string) bool {
	if len(q.queued) >= q.capacity {
		return false
	}
	q.queued = append(q.queued, accountID)
	return true
}

type stubPublisher struct {
	publishFn func(ctx context.Context, content []byte, name string) (string, error)
}

func (p *stubPublisher) Publish(ctx context.Context, content []byte, name string) (string, error) {
	return p.publishFn(ctx, content, name)
}

type stubLedger struct {
	lookupFn func(ctx context.Context, accountID string) (string, error)
}

func (l *stubLedger) SubmitAndConfirm(context.Context, string, string, uint64) (*domain.LedgerReceipt, error) {
	panic("not used by handlers")
}

func (l *stubLedger) LookupCID(ctx context.Context, accountID string) (string, error) {
	return l.lookupFn(ctx, accountID)
}

type stubRecordLedger struct {
	registerFn func(ctx context.Context, subject string) (*domain.LedgerReceipt, error)
	addFn      func(ctx context.Context, record domain.CrimeRecord) (*domain.LedgerReceipt, error)
}

func (s *stubRecordLedger) RegisterCriminal(ctx context.Context, subject string) (*domain.LedgerReceipt, error) {
	return s.registerFn(ctx, subject)
}

func (s *stubRecordLedger) AddCrime(ctx context.Context, record domain.CrimeRecord) (*domain.LedgerReceipt, error) {
	return s.addFn(ctx, record)
}
