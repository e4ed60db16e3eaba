// Package errors provides standardized error handling for the chat and
// storefront services.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeCatalogUnavailable ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodeCatalogTimeout     ErrorCode = "CATALOG_TIMEOUT"
	ErrCodeProductNotFound    ErrorCode = "PRODUCT_NOT_FOUND"

	ErrCodeAssistFailed  ErrorCode = "AI_ASSIST_FAILED"
	ErrCodeAssistTimeout ErrorCode = "AI_ASSIST_TIMEOUT"

	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeCacheUnavailable         ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeChatLogWriteFailed       ErrorCode = "CHATLOG_WRITE_FAILED"

	ErrCodeBundleGenerationFailed ErrorCode = "BUNDLE_GENERATION_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewCatalogUnavailableError creates a retryable storefront error.
func NewCatalogUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogUnavailable,
		Message:   "Storefront catalog request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogTimeoutError creates a retryable storefront timeout error.
func NewCatalogTimeoutError(endpoint string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogTimeout,
		Message:   "Storefront catalog request timed out",
		Details:   fmt.Sprintf("endpoint: %s", endpoint),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProductNotFoundError creates a non-retryable lookup error.
func NewProductNotFoundError(ref string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProductNotFound,
		Message:   "Product not found in catalog",
		Details:   fmt.Sprintf("ref: %s", ref),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAssistFailedError creates a retryable AI assist error.
func NewAssistFailedError(task string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAssistFailed,
		Message:   "AI assist call failed",
		Details:   fmt.Sprintf("task: %s, error: %s", task, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAssistTimeoutError creates a retryable AI assist timeout error.
func NewAssistTimeoutError(task string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAssistTimeout,
		Message:   "AI assist call timed out",
		Details:   fmt.Sprintf("task: %s", task),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError creates a non-retryable input error.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid request input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable schema validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Cache backend error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewChatLogWriteFailedError creates a retryable chat log persistence error.
func NewChatLogWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeChatLogWriteFailed,
		Message:   "Chat log write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBundleGenerationFailedError creates a non-retryable bundle assembly error.
func NewBundleGenerationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBundleGenerationFailed,
		Message:   "Bundle generation produced no result",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryable reports whether the error (or any wrapped error) is a retryable
// StandardError. Unknown errors are treated as retryable.
func IsRetryable(err error) bool {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return true
}

// CodeOf extracts the error code, or empty string for unknown errors.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsTimeout reports whether the error looks like a timeout, either by code or
// by message content.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	switch CodeOf(err) {
	case ErrCodeCatalogTimeout, ErrCodeAssistTimeout:
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded")
}
