package syncing

import (
	"errors"
	"fmt"
)

var (
	ErrTenantIDRequired = errors.New("tenant ID is required")
	ErrTenantNotFound   = errors.New("tenant not found")
	ErrSyncStore        = errors.New("sync store error")
)

// SyncError é uma falha que impede a sincronização do tenant como um todo.
// Falhas de uma conta ou conexão viram resultados, não erros.
type SyncError struct {
	Err     error
	Code    string
	Details string
}

func (e *SyncError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

func NewSyncError(err error, code string, details string) *SyncError {
	return &SyncError{
		Err:     err,
		Code:    code,
		Details: details,
	}
}
