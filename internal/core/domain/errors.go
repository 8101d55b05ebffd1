package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the machine-readable error classification returned to callers.
type Kind string

const (
	KindValidation         Kind = "ValidationError"
	KindDuplicateAccount   Kind = "DuplicateAccount"
	KindInvalidCredentials Kind = "InvalidCredentials"
	KindPublicationFailed  Kind = "PublicationFailed"
	KindLedgerRejected     Kind = "LedgerRejected"
	KindLedgerUnavailable  Kind = "LedgerUnavailable"
	KindInternal           Kind = "InternalError"
	KindNotFound           Kind = "NotFound"
	KindForbidden          Kind = "Forbidden"
	KindRateLimited        Kind = "RateLimited"

	KindMissingToken     Kind = "MissingToken"
	KindMalformedToken   Kind = "MalformedToken"
	KindInvalidSignature Kind = "InvalidSignature"
	KindTokenExpired     Kind = "TokenExpired"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateAccount   = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("account not found")
	ErrPublicationFailed  = errors.New("content publication failed")
	ErrLedgerRejected     = errors.New("ledger transaction rejected")
	ErrLedgerUnavailable  = errors.New("ledger unavailable")
	ErrLedgerRecordAbsent = errors.New("no ledger record for account")
	ErrInternal           = errors.New("internal error")
	ErrForbidden          = errors.New("access forbidden")
	ErrRateLimited        = errors.New("too many requests")

	ErrMissingToken     = errors.New("authorization header missing")
	ErrMalformedToken   = errors.New("invalid token format")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrValidation, KindValidation},
	{ErrDuplicateAccount, KindDuplicateAccount},
	{ErrInvalidCredentials, KindInvalidCredentials},
	{ErrPublicationFailed, KindPublicationFailed},
	{ErrLedgerRejected, KindLedgerRejected},
	{ErrLedgerUnavailable, KindLedgerUnavailable},
	{ErrAccountNotFound, KindNotFound},
	{ErrLedgerRecordAbsent, KindNotFound},
	{ErrForbidden, KindForbidden},
	{ErrRateLimited, KindRateLimited},
	{ErrMissingToken, KindMissingToken},
	{ErrMalformedToken, KindMalformedToken},
	{ErrInvalidSignature, KindInvalidSignature},
	{ErrTokenExpired, KindTokenExpired},
	{ErrInternal, KindInternal},
}

// KindOf classifies err. Unknown errors are InternalError.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// Message returns the caller-safe text for err: the full text for
// validation errors, the matching sentinel's text otherwise.
func Message(err error) string {
	if errors.Is(err, ErrValidation) {
		return err.Error()
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.err.Error()
		}
	}
	return ErrInternal.Error()
}

// Validationf builds an error wrapping ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// As wraps err with sentinel unless it already matches it.
func As(sentinel, err error) error {
	if err == nil || errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// Stage names a step of the registration pipeline.
type Stage string

const (
	StageAccount     Stage = "account_creation"
	StageToken       Stage = "token_issuance"
	StagePublication Stage = "content_publication"
	StageLedger      Stage = "ledger_commit"
)

// PipelineError reports a failure after the account was persisted. The
// completed stages are kept so callers can decide how to re-drive linkage.
type PipelineError struct {
	Stage     Stage
	AccountID string
	Completed []Stage
	Err       error
}

func (e *PipelineError) Error() string {
	done := make([]string, 0, len(e.Completed))
	for _, s := range e.Completed {
		done = append(done, string(s))
	}
	return fmt.Sprintf("registration incomplete at %s (account %s, completed: %s): %v",
		e.Stage, e.AccountID, strings.Join(done, ","), e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
