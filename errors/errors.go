// Package errors provides the error handling system for the recipegen gateway.
// It includes typed errors for each failure category the pipeline can produce,
// JSON response formatting, request ID tracking, and integrated logging with
// Uber's zap logger.
//
// Every component in the pipeline signals failures through a *GatewayError
// rather than letting raw errors cross the handler boundary. The handler is
// the single point that converts a typed failure into an HTTP response, so
// clients always receive a JSON body with an "error" string and an
// appropriate status, never a raw upstream message.
//
// Basic usage:
//
//	errors.WriteError(w, errors.NewRateLimitError(requestID))
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// DefaultLogger is the default zap logger instance used throughout the package.
// It is initialized to a production configuration but can be overridden using SetLogger.
var DefaultLogger *zap.Logger

func init() {
	var err error
	DefaultLogger, err = zap.NewProduction()
	if err != nil {
		DefaultLogger = zap.NewNop()
	}
}

// SetLogger allows setting a custom zap logger instance.
// If nil is provided, the function will do nothing to prevent
// accidentally disabling logging.
func SetLogger(logger *zap.Logger) {
	if logger != nil {
		DefaultLogger = logger
	}
}

// ErrorType categorizes the failures the pipeline can produce. Each type maps
// to a fixed HTTP status code and client-visible message.
type ErrorType string

const (
	// ValidationError represents input validation failures (bad method,
	// bad content type, invalid prompt)
	ValidationError ErrorType = "validation_error"

	// RateLimitError represents fixed-window rate limit rejections
	RateLimitError ErrorType = "rate_limit_error"

	// TimeoutError represents an abandoned provider call
	TimeoutError ErrorType = "timeout_error"

	// QuotaError represents upstream quota/usage limit failures
	QuotaError ErrorType = "quota_error"

	// ProviderError represents any other upstream failure
	ProviderError ErrorType = "provider_error"

	// InternalError represents unexpected internal server errors
	InternalError ErrorType = "internal_error"
)

// GatewayError is the typed error used across the pipeline. It carries the
// failure category, the client-visible message, and the HTTP status code,
// while keeping the underlying cause for logs only. The JSON encoding is
// exactly the wire contract: {"error": "<message>"}.
type GatewayError struct {
	// Type categorizes the error; logged, never sent to clients
	Type ErrorType `json:"-"`

	// Message is the client-visible error description
	Message string `json:"error"`

	// Code is the HTTP status code
	Code int `json:"-"`

	// RequestID links the error to a specific request
	RequestID string `json:"-"`

	// err is the underlying cause
	err error
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error, implementing the unwrap
// interface for error chains.
func (e *GatewayError) Unwrap() error {
	return e.err
}

// Is implements error matching for errors.Is, allowing type-based
// error matching while ignoring other fields.
func (e *GatewayError) Is(target error) bool {
	t, ok := target.(*GatewayError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WriteError formats and writes a GatewayError to an http.ResponseWriter.
// It sets the content type and status code, then writes the error as the
// canonical {"error": "<message>"} JSON body.
func WriteError(w http.ResponseWriter, err *GatewayError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	if encErr := json.NewEncoder(w).Encode(err); encErr != nil {
		DefaultLogger.Error("failed to encode error response", zap.Error(encErr))
	}
}
