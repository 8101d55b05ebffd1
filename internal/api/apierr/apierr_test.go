package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordlink/registrar/internal/core/domain"
)

func render(t *testing.T, debug bool, err error) (int, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop(), debug)(err, c)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHandler_DomainKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   domain.Kind
	}{
		{domain.Validationf("username must be at least 3 characters"), http.StatusBadRequest, domain.KindValidation},
		{fmt.Errorf("create: %w", domain.ErrDuplicateAccount), http.StatusConflict, domain.KindDuplicateAccount},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, domain.KindInvalidCredentials},
		{domain.ErrTokenExpired, http.StatusUnauthorized, domain.KindTokenExpired},
		{domain.ErrLedgerRecordAbsent, http.StatusNotFound, domain.KindNotFound},
		{domain.ErrRateLimited, http.StatusTooManyRequests, domain.KindRateLimited},
		{errors.New("boom"), http.StatusInternalServerError, domain.KindInternal},
	}
	for _, tc := range cases {
		code, body := render(t, false, tc.err)
		assert.Equal(t, tc.status, code, tc.err.Error())
		assert.Equal(t, string(tc.kind), body["kind"], tc.err.Error())
		assert.NotContains(t, body, "details")
	}
}

func TestHandler_ValidationMessageIsKept(t *testing.T) {
	_, body := render(t, false, domain.Validationf("password must be at least 6 characters"))
	assert.Equal(t, "validation failed: password must be at least 6 characters", body["error"])
}

func TestHandler_InternalCauseIsHidden(t *testing.T) {
	_, body := render(t, false, errors.New("mongo: connection refused at 10.0.0.3"))
	assert.Equal(t, "internal server error", body["error"])
}

func TestHandler_PipelineError(t *testing.T) {
	err := &domain.PipelineError{
		Stage:     domain.StagePublication,
		AccountID: "acc-1",
		Completed: []domain.Stage{domain.StageAccount, domain.StageToken},
		Err:       fmt.Errorf("%w: pinata returned 502", domain.ErrPublicationFailed),
	}

	code, body := render(t, false, err)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, string(domain.KindPublicationFailed), body["kind"])
	assert.Equal(t, "content publication failed", body["error"])
	assert.Equal(t, "content_publication", body["stage"])
	assert.Equal(t, "acc-1", body["account_id"])
	assert.Equal(t, []any{"account_creation", "token_issuance"}, body["completed_stages"])
	assert.NotContains(t, body, "token")
}

func TestHandler_DetailsOnlyInDebug(t *testing.T) {
	err := fmt.Errorf("%w: tx reverted", domain.ErrLedgerRejected)

	_, body := render(t, true, err)
	assert.Equal(t, "ledger transaction rejected: tx reverted", body["details"])

	_, body = render(t, false, err)
	assert.NotContains(t, body, "details")
}

func TestHandler_EchoErrors(t *testing.T) {
	code, body := render(t, false, echo.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, string(domain.KindNotFound), body["kind"])

	code, body = render(t, false, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Request Entity Too Large"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	assert.Equal(t, string(domain.KindValidation), body["kind"])
}

func TestHandler_EchoErrorCarryingDomainCause(t *testing.T) {
	err := echo.NewHTTPError(http.StatusUnauthorized, "invalid token signature").SetInternal(domain.ErrInvalidSignature)

	code, body := render(t, false, err)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, string(domain.KindInvalidSignature), body["kind"])
	assert.Equal(t, "invalid token signature", body["error"])
}

func TestHandler_CommittedResponseIsLeftAlone(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, c.String(http.StatusOK, "done"))

	NewHTTPErrorHandler(zerolog.Nop(), false)(errors.New("late"), c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}
