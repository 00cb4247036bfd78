package analytics

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports caller input the core cannot work with.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// MissingDataError reports that historical or latest price data is unavailable.
type MissingDataError struct {
	Tickers []string
	Reason  string
}

func (e *MissingDataError) Error() string {
	if len(e.Tickers) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Tickers, ", "))
}

// IsValidation reports whether err is, or wraps, a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsMissingData reports whether err is, or wraps, a MissingDataError
func IsMissingData(err error) bool {
	var m *MissingDataError
	return errors.As(err, &m)
}
