package tracking

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEntityType = errors.New("invalid entity type")
	ErrEntityIDRequired  = errors.New("entity ID is required")
	ErrTenantIDRequired  = errors.New("tenant ID is required")
	ErrInvalidChangeType = errors.New("invalid change type")
	ErrEmptyChange       = errors.New("change record without fields")
	ErrReasonRequired    = errors.New("compensation reason is required")
	ErrInvalidWindow     = errors.New("invalid time window")
	ErrEntityNotFound    = errors.New("entity has no change history")
	ErrLedgerStore       = errors.New("ledger store error")
)

// LedgerOperationError carrega o código da API junto do erro de negócio.
type LedgerOperationError struct {
	Err     error
	Code    string
	Details string
}

func (e *LedgerOperationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *LedgerOperationError) Unwrap() error {
	return e.Err
}

func NewLedgerError(err error, code string, details string) *LedgerOperationError {
	return &LedgerOperationError{
		Err:     err,
		Code:    code,
		Details: details,
	}
}
