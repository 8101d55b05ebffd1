// Package apierr renders every error returned by handlers and middleware as
// the JSON envelope {"error", "kind"} with the status its kind maps to.
package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/recordlink/registrar/internal/core/domain"
)

// Response is the canonical error envelope.
type Response struct {
	Error           string      `json:"error"`
	Kind            domain.Kind `json:"kind"`
	Stage           string      `json:"stage,omitempty"`
	AccountID       string      `json:"account_id,omitempty"`
	CompletedStages []string    `json:"completed_stages,omitempty"`
	Details         string      `json:"details,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler. When debug is true the
// wrapped cause is included as "details".
func NewHTTPErrorHandler(log zerolog.Logger, debug bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := Resolve(err)
		if debug {
			body.Details = err.Error()
		}

		if code >= http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("kind", string(body.Kind)).
				Str("stage", body.Stage).
				Str("account_id", body.AccountID).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

// Resolve maps err to a status code and envelope without details.
func Resolve(err error) (int, Response) {
	kind := domain.KindOf(err)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := fmt.Sprint(he.Message)
		if kind == domain.KindInternal {
			// Raised by echo itself: routing, binding, body limit.
			kind = kindForStatus(he.Code)
			if he.Code >= http.StatusInternalServerError {
				msg = http.StatusText(http.StatusInternalServerError)
			}
		}
		return he.Code, Response{Error: msg, Kind: kind}
	}

	body := Response{Error: domain.Message(err), Kind: kind}
	if kind == domain.KindInternal {
		body.Error = "internal server error"
	}

	var pe *domain.PipelineError
	if errors.As(err, &pe) {
		body.Stage = string(pe.Stage)
		body.AccountID = pe.AccountID
		for _, s := range pe.Completed {
			body.CompletedStages = append(body.CompletedStages, string(s))
		}
	}
	return StatusFor(kind), body
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindDuplicateAccount:
		return http.StatusConflict
	case domain.KindInvalidCredentials,
		domain.KindMissingToken,
		domain.KindMalformedToken,
		domain.KindInvalidSignature,
		domain.KindTokenExpired:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func kindForStatus(code int) domain.Kind {
	switch {
	case code == http.StatusForbidden:
		return domain.KindForbidden
	case code == http.StatusNotFound, code == http.StatusMethodNotAllowed:
		return domain.KindNotFound
	case code == http.StatusTooManyRequests:
		return domain.KindRateLimited
	case code == http.StatusUnauthorized:
		return domain.KindMissingToken
	case code >= 400 && code < 500:
		return domain.KindValidation
	default:
		return domain.KindInternal
	}
}
