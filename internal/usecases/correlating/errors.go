package correlating

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidWindowDays = errors.New("invalid window days")
	ErrInsightStore      = errors.New("insight store error")
)

type CorrelationError struct {
	Err     error
	Code    string
	Details string
}

func (e *CorrelationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *CorrelationError) Unwrap() error {
	return e.Err
}

func NewCorrelationError(err error, code string, details string) *CorrelationError {
	return &CorrelationError{
		Err:     err,
		Code:    code,
		Details: details,
	}
}
