package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchema is the sentinel behind every SchemaError.
	ErrSchema = errors.New("schema error")

	// ErrValidation is the sentinel behind every ValidationError.
	ErrValidation = errors.New("validation error")

	// ErrConfig is the sentinel behind every ConfigError.
	ErrConfig = errors.New("config error")
)

// SchemaError reports required columns missing from an input table.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Source, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// ValidationError reports a malformed value on a single row.
type ValidationError struct {
	Source string
	Row    int
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("%s row %d: invalid %s %q: %s", e.Source, e.Row, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("%s: invalid %s %q: %s", e.Source, e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConfigError reports an invalid run parameter or an ambiguous rulebook.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

func (e *ConfigError) Unwrap() error { return ErrConfig }

// NewConfigError formats a ConfigError.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// TooManyRejectionsError is returned when excluded rows exceed the allowed ratio.
type TooManyRejectionsError struct {
	Rejected int
	Total    int
	MaxRatio float64
	First    *ValidationError
}

func (e *TooManyRejectionsError) Error() string {
	msg := fmt.Sprintf("%d of %d rows rejected, above allowed ratio %.4f", e.Rejected, e.Total, e.MaxRatio)
	if e.First != nil {
		msg += " (first: " + e.First.Error() + ")"
	}
	return msg
}

func (e *TooManyRejectionsError) Unwrap() error { return ErrValidation }
