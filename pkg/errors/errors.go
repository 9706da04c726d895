package errors

import (
	"fmt"
	"net/http"
)

const statusError = "error"

// StandardError represents a standardized error response
type StandardError struct {
	Status  string `json:"status"`            // Always "error"
	Code    string `json:"error"`             // Error code/type (e.g., "InvalidRequest", "ScanInProgress")
	Message string `json:"message"`           // Human-readable error message
	Details string `json:"details,omitempty"` // Additional details (field name, validation info, etc.)
}

// Error implements the error interface
func (e *StandardError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case "InvalidRequest", "ValidationError":
		return http.StatusBadRequest
	case "Unauthorized":
		return http.StatusUnauthorized
	case "ItemNotFound", "ScanNotFound", "NoInventory":
		return http.StatusNotFound
	case "ScanInProgress":
		return http.StatusConflict
	case "TooManyRequests":
		return http.StatusTooManyRequests
	case "InventoryUnavailable":
		return http.StatusBadGateway
	case "CacheError", "InternalError":
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// NewStandardError creates a new StandardError
func NewStandardError(errorCode, message, details string) *StandardError {
	return &StandardError{
		Status:  statusError,
		Code:    errorCode,
		Message: message,
		Details: details,
	}
}

// Common error constructors
func NewInvalidRequest(message, details string) *StandardError {
	return NewStandardError("InvalidRequest", message, details)
}

func NewValidationError(message, field string) *StandardError {
	return NewStandardError("ValidationError", message, fmt.Sprintf("Field: %s", field))
}

func NewUnauthorized(message, details string) *StandardError {
	return NewStandardError("Unauthorized", message, details)
}

func NewItemNotFound(drugName string) *StandardError {
	return NewStandardError("ItemNotFound", "item not found in the latest scan", fmt.Sprintf("Drug: %s", drugName))
}

func NewScanNotFound() *StandardError {
	return NewStandardError("ScanNotFound", "no scan results available, run a scan first", "")
}

func NewNoInventory() *StandardError {
	return NewStandardError("NoInventory", "no inventory data found", "")
}

func NewScanInProgress() *StandardError {
	return NewStandardError("ScanInProgress", "a scan is already running for this session", "")
}

func NewInventoryUnavailable(err error) *StandardError {
	return NewStandardError("InventoryUnavailable", "inventory source unavailable", detailsOf(err))
}

func NewTooManyRequests(details string) *StandardError {
	return NewStandardError("TooManyRequests", "too many requests", details)
}

func NewCacheError(operation string, err error) *StandardError {
	return NewStandardError("CacheError", fmt.Sprintf("cache operation failed: %s", operation), detailsOf(err))
}

func NewInternalError(message string, err error) *StandardError {
	return NewStandardError("InternalError", message, detailsOf(err))
}

func detailsOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
