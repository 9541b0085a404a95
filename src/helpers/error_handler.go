package helpers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type DashboardError struct {
	Message string
	Cause   error
}

func (e *DashboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DashboardError) Unwrap() error {
	return e.Cause
}

// Distinct error kinds so callers can branch with errors.As.
type ConfigurationError struct{ DashboardError }
type NetworkError struct{ DashboardError }
type ValidationError struct{ DashboardError }
type ChannelError struct{ DashboardError }
type DatabaseError struct{ DashboardError }

// -----------------------------------------------------------------------------

func NewConfigurationError(format string, args ...interface{}) error {
	return &ConfigurationError{DashboardError{Message: fmt.Sprintf(format, args...)}}
}

func NewNetworkError(cause error, format string, args ...interface{}) error {
	return &NetworkError{DashboardError{Message: fmt.Sprintf(format, args...), Cause: cause}}
}

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{DashboardError{Message: fmt.Sprintf(format, args...)}}
}

func NewChannelError(cause error, format string, args ...interface{}) error {
	return &ChannelError{DashboardError{Message: fmt.Sprintf(format, args...), Cause: cause}}
}

func NewDatabaseError(cause error, format string, args ...interface{}) error {
	return &DatabaseError{DashboardError{Message: fmt.Sprintf(format, args...), Cause: cause}}
}

// -----------------------------------------------------------------------------

// IsValidation reports whether err (or anything it wraps) is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsConfiguration reports whether err (or anything it wraps) is a ConfigurationError.
func IsConfiguration(err error) bool {
	var c *ConfigurationError
	return errors.As(err, &c)
}

// IsNetwork reports whether err (or anything it wraps) is a NetworkError.
func IsNetwork(err error) bool {
	var n *NetworkError
	return errors.As(err, &n)
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff runs fn up to 1+maxRetries times, sleeping baseDelay*2^attempt
// between tries. Validation errors are not retried. Cancelling ctx aborts the wait.
func RetryWithBackoff[T any](ctx context.Context, maxRetries int, baseDelay time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseDelay * (1 << (attempt - 1))
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}

		res, err := fn()
		if err == nil {
			return res, nil
		}
		lastErr = err
		if IsValidation(err) {
			break
		}
	}

	return zero, lastErr
}
