// internal/common/errors/errors.go

// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeGenerationFailed  ErrorCode = "GENERATION_FAILED"
	ErrCodeGenerationTimeout ErrorCode = "GENERATION_TIMEOUT"
	ErrCodeGenerationEmpty   ErrorCode = "GENERATION_EMPTY"
	ErrCodeInvalidPayload    ErrorCode = "INVALID_PAYLOAD"

	ErrCodeCacheReadFailed  ErrorCode = "CACHE_READ_FAILED"
	ErrCodeCacheWriteFailed ErrorCode = "CACHE_WRITE_FAILED"

	ErrCodeBackendFailed ErrorCode = "BACKEND_FAILED"
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeSearchFailed  ErrorCode = "SEARCH_FAILED"

	ErrCodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeUnauthenticated  ErrorCode = "UNAUTHENTICATED"
	ErrCodeSessionConflict  ErrorCode = "SESSION_CONFLICT"
	ErrCodeUnavailable      ErrorCode = "UNAVAILABLE"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewGenerationFailedError creates a retryable generator error.
func NewGenerationFailedError(kind string, err error) *StandardError {
	return newError(ErrCodeGenerationFailed, fmt.Sprintf("Content generation failed for %s", kind), err, true)
}

// NewGenerationTimeoutError creates a retryable generator timeout error.
func NewGenerationTimeoutError(kind string, err error) *StandardError {
	return newError(ErrCodeGenerationTimeout, fmt.Sprintf("Content generation timed out for %s", kind), err, true)
}

// NewGenerationEmptyError is returned when the generator produced no data.
// It is not retried automatically; the caller regenerates explicitly.
func NewGenerationEmptyError(kind string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationEmpty,
		Message:   fmt.Sprintf("No content generated for %s", kind),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidPayloadError(err error) *StandardError {
	return newError(ErrCodeInvalidPayload, "Generated payload failed validation", err, true)
}

func NewCacheReadFailedError(key string, err error) *StandardError {
	e := newError(ErrCodeCacheReadFailed, "Cache read failed", err, true)
	e.Metadata = map[string]interface{}{"key": key}
	return e
}

func NewCacheWriteFailedError(key string, err error) *StandardError {
	e := newError(ErrCodeCacheWriteFailed, "Cache write failed", err, true)
	e.Metadata = map[string]interface{}{"key": key}
	return e
}

func NewBackendFailedError(op string, err error) *StandardError {
	return newError(ErrCodeBackendFailed, fmt.Sprintf("Backend operation %s failed", op), err, true)
}

func NewNotFoundError(resource, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewSearchFailedError(err error) *StandardError {
	return newError(ErrCodeSearchFailed, "Idea search failed", err, true)
}

func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnavailableError reports a dependency that could not be reached.
func NewUnavailableError(service string, err error) *StandardError {
	return newError(ErrCodeUnavailable, fmt.Sprintf("%s is unavailable", service), err, true)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	e := newError(ErrCodeNotificationSendFailed, "Notification delivery failed", err, true)
	e.Details = fmt.Sprintf("channel: %s, error: %s", channel, e.Details)
	return e
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeGenerationFailed,
		ErrCodeBackendFailed,
		ErrCodeCacheReadFailed,
		ErrCodeCacheWriteFailed,
		ErrCodeSearchFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeUnavailable:
		return 3
	case ErrCodeInvalidPayload:
		return 2
	case ErrCodeGenerationTimeout:
		return 1
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}
	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"errorCategory":     GetErrorCategory(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}
	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// AsStandardError finds a StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes into generation, persistence (local cache),
// backend and the remaining infrastructure categories.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "GENERATION") || code == ErrCodeInvalidPayload:
		return "GENERATION"
	case strings.HasPrefix(codeStr, "CACHE"):
		return "PERSISTENCE"
	case code == ErrCodeBackendFailed || code == ErrCodeNotFound:
		return "BACKEND"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
