package util

import (
	"errors"
	"fmt"
)

// Common sentinel errors. The gateway middleware carries the request-path
// sentinels in its log fields; every ConfigError wraps ErrConfigInvalid.
var (
	ErrCircuitOpen   = errors.New("circuit breaker open")
	ErrTimeout       = errors.New("timeout")
	ErrRateLimited   = errors.New("rate limit exceeded")
	ErrConfigInvalid = errors.New("invalid configuration")
)

// ServerError signals that a handler chain produced a 5xx status code.
// The circuit breaker classifies it as a failure.
type ServerError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: status %d", e.StatusCode)
}

// NewServerError creates a new ServerError with the given status code.
func NewServerError(statusCode int) *ServerError {
	return &ServerError{StatusCode: statusCode}
}

// ConfigError represents a configuration-related error.
type ConfigError struct {
	Field   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error at %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *ConfigError) Is(target error) bool {
	_, ok := target.(*ConfigError)
	return ok || errors.Is(e.Cause, target)
}

// NewConfigError creates a new ConfigError. It wraps ErrConfigInvalid so
// callers can match any configuration failure with a single errors.Is.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message, Cause: ErrConfigInvalid}
}
