package domain

import (
	"errors"
	"fmt"
	"time"
)

// Categorias de erro da sincronização. Os tipos abaixo embrulham uma destas
// sentinelas, então errors.Is funciona em qualquer ponto da cadeia.
var (
	ErrCredentialMissing   = errors.New("credential missing")
	ErrCredentialMalformed = errors.New("credential malformed")

	ErrProviderRejected    = errors.New("provider rejected request")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrProviderAuthExpired = errors.New("provider credential expired")
	ErrProviderRateLimited = errors.New("provider rate limited")

	ErrCrossTenantReference = errors.New("cross tenant reference")
	ErrStoreWriteFailed     = errors.New("store write failed")

	ErrClockSkew = errors.New("clock skew")
)

// CredentialError é devolvido pelo resolvedor de credenciais.
type CredentialError struct {
	Err     error
	Field   string
	Details string
}

func (e *CredentialError) Error() string {
	msg := e.Err.Error()
	if e.Field != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Field)
	}
	if e.Details != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Details)
	}
	return msg
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

func NewCredentialError(err error, field, details string) *CredentialError {
	return &CredentialError{Err: err, Field: field, Details: details}
}

// ProviderError classifica uma falha de chamada ao provedor.
type ProviderError struct {
	Err        error
	StatusCode int
	Code       int
	Subcode    int
	RetryAfter time.Duration
	Details    string
	Cause      error
}

func (e *ProviderError) Error() string {
	msg := e.Err.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d", msg, e.StatusCode)
		if e.Code != 0 {
			msg = fmt.Sprintf("%s, code %d", msg, e.Code)
		}
		msg += ")"
	}
	if e.Details != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Details)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ProviderError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NewProviderError(err error, statusCode int, details string) *ProviderError {
	return &ProviderError{Err: err, StatusCode: statusCode, Details: details}
}

// ReconciliationError descreve uma entidade que não pôde ser gravada.
type ReconciliationError struct {
	Err        error
	EntityType EntityType
	ExternalID string
	Details    string
	Cause      error
}

func (e *ReconciliationError) Error() string {
	msg := fmt.Sprintf("%s: %s %s", e.Err.Error(), e.EntityType, e.ExternalID)
	if e.Details != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Details)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ReconciliationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// LedgerError é informativo: o ledger registra e segue em frente.
type LedgerError struct {
	Err       error
	EntityID  string
	Requested time.Time
	Applied   time.Time
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("%s: entity %s requested %s applied %s",
		e.Err.Error(), e.EntityID, e.Requested.Format(time.RFC3339Nano), e.Applied.Format(time.RFC3339Nano))
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// OutcomeForError mapeia a falha de uma conta para o resultado reportado.
func OutcomeForError(err error) AccountOutcome {
	switch {
	case err == nil:
		return AccountOutcomeOK
	case errors.Is(err, ErrProviderAuthExpired):
		return AccountOutcomeAuthExpired
	case errors.Is(err, ErrProviderRejected):
		return AccountOutcomeRejected
	case errors.Is(err, ErrCredentialMissing), errors.Is(err, ErrCredentialMalformed):
		return AccountOutcomeCredentialError
	case errors.Is(err, ErrCrossTenantReference), errors.Is(err, ErrStoreWriteFailed):
		return AccountOutcomeDegraded
	default:
		return AccountOutcomeUnavailable
	}
}
