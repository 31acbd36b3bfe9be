package errors

import (
	"net/http"
)

// Client-visible messages for the fixed entries of the classification table.
// Field-specific validation messages are built at the call site.
const (
	MsgMethodNotAllowed = "Method not allowed"
	MsgContentType      = "Content-Type must be application/json"
	MsgRateLimited      = "Too many requests, please try again later"
	MsgTimeout          = "Request timeout"
	MsgQuotaExceeded    = "API quota exceeded. Please try again later"
	MsgGenerateFailed   = "Failed to generate recipe"
)

// NewError creates a new GatewayError with the given parameters.
// It is a general-purpose constructor that allows full control over the
// error's fields. For most cases, use one of the specialized constructors.
func NewError(errType ErrorType, message string, code int, requestID string, err error) *GatewayError {
	return &GatewayError{
		Type:      errType,
		Message:   message,
		Code:      code,
		RequestID: requestID,
		err:       err,
	}
}

// NewValidationError creates a 400 error with a field-specific message,
// such as "Prompt is required" or "Prompt must not be empty".
func NewValidationError(requestID, message string) *GatewayError {
	return &GatewayError{
		Type:      ValidationError,
		Message:   message,
		Code:      http.StatusBadRequest,
		RequestID: requestID,
	}
}

// NewMethodNotAllowedError creates the 405 error returned for any
// request method other than POST.
func NewMethodNotAllowedError(requestID string) *GatewayError {
	return &GatewayError{
		Type:      ValidationError,
		Message:   MsgMethodNotAllowed,
		Code:      http.StatusMethodNotAllowed,
		RequestID: requestID,
	}
}

// NewContentTypeError creates the 415 error returned when the request
// body is not declared as application/json.
func NewContentTypeError(requestID string) *GatewayError {
	return &GatewayError{
		Type:      ValidationError,
		Message:   MsgContentType,
		Code:      http.StatusUnsupportedMediaType,
		RequestID: requestID,
	}
}

// NewRateLimitError creates the 429 error returned when a client has
// exhausted its fixed-window admission budget.
func NewRateLimitError(requestID string) *GatewayError {
	return &GatewayError{
		Type:      RateLimitError,
		Message:   MsgRateLimited,
		Code:      http.StatusTooManyRequests,
		RequestID: requestID,
	}
}

// NewTimeoutError creates the 408 error returned when the provider call
// was abandoned by the timeout guard.
func NewTimeoutError(requestID string, err error) *GatewayError {
	return &GatewayError{
		Type:      TimeoutError,
		Message:   MsgTimeout,
		Code:      http.StatusRequestTimeout,
		RequestID: requestID,
		err:       err,
	}
}

// NewQuotaError creates the 429 error returned when the upstream provider
// reports a quota or usage limit.
func NewQuotaError(requestID string, err error) *GatewayError {
	return &GatewayError{
		Type:      QuotaError,
		Message:   MsgQuotaExceeded,
		Code:      http.StatusTooManyRequests,
		RequestID: requestID,
		err:       err,
	}
}

// NewUpstreamError creates the generic 500 error for any other upstream
// failure. The upstream's own message stays in the wrapped error and is
// never sent to the client.
func NewUpstreamError(requestID string, err error) *GatewayError {
	return &GatewayError{
		Type:      ProviderError,
		Message:   MsgGenerateFailed,
		Code:      http.StatusInternalServerError,
		RequestID: requestID,
		err:       err,
	}
}

// NewInternalError creates a 500 error for unexpected failures such as
// panics. Clients receive the same generic message as upstream failures.
func NewInternalError(requestID string, err error) *GatewayError {
	return &GatewayError{
		Type:      InternalError,
		Message:   MsgGenerateFailed,
		Code:      http.StatusInternalServerError,
		RequestID: requestID,
		err:       err,
	}
}
