// internal/common/errors/errors.go

// Package errors provides standardized error handling for the matching engine.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Matching engine errors
const (
	ErrCodeInvalidProfile ErrorCode = "INVALID_PROFILE"
	ErrCodePoolTooLarge   ErrorCode = "POOL_TOO_LARGE"
	ErrCodeInvalidPage    ErrorCode = "INVALID_PAGE"
	ErrCodeInvalidQuery   ErrorCode = "INVALID_QUERY"
	ErrCodeMatchTimeout   ErrorCode = "MATCH_TIMEOUT"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeEntityNotFound           ErrorCode = "ENTITY_NOT_FOUND"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeIndexNotFound     ErrorCode = "INDEX_NOT_FOUND"
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

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidProfileError creates a non-retryable error for an entity record
// missing its required identity fields.
func NewInvalidProfileError(entityID, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidProfile,
		Message:   "Entity record cannot be normalized into a profile",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"entityId": entityID},
		Timestamp: time.Now().UTC(),
	}
}

// NewPoolTooLargeError creates a non-retryable error telling the caller to
// narrow their filter criteria.
func NewPoolTooLargeError(poolSize, maxPoolSize int) *StandardError {
	return &StandardError{
		Code:      ErrCodePoolTooLarge,
		Message:   "Counterpart pool exceeds the configured scan limit",
		Details:   fmt.Sprintf("poolSize: %d, maxPoolSize: %d", poolSize, maxPoolSize),
		Retryable: false,
		Metadata:  map[string]interface{}{"poolSize": poolSize, "maxPoolSize": maxPoolSize},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidPageError creates a non-retryable pagination error.
func NewInvalidPageError(page, pageSize, maxPageSize int) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPage,
		Message:   "Pagination parameters out of bounds",
		Details:   fmt.Sprintf("page: %d, pageSize: %d, maxPageSize: %d", page, pageSize, maxPageSize),
		Retryable: false,
		Metadata:  map[string]interface{}{"page": page, "pageSize": pageSize},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidQueryError creates a non-retryable error for malformed query
// parameters outside of pagination.
func NewInvalidQueryError(field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidQuery,
		Message:   "Invalid recommendation query",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewMatchTimeoutError creates a retryable error for a recommend call that
// exceeded its deadline during fetch or scoring.
func NewMatchTimeoutError(stage string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMatchTimeout,
		Message:   "Deadline exceeded during matching",
		Details:   fmt.Sprintf("stage: %s", stage),
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

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEntityNotFoundError creates a non-retryable missing-entity error.
func NewEntityNotFoundError(kind, entityID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEntityNotFound,
		Message:   "Entity not found",
		Details:   fmt.Sprintf("kind: %s, entityId: %s", kind, entityID),
		Retryable: false,
		Metadata:  map[string]interface{}{"entityId": entityID},
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Elasticsearch query error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexNotFoundError creates a non-retryable index not found error.
func NewIndexNotFoundError(indexName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Elasticsearch index not found",
		Details:   fmt.Sprintf("indexName: %s", indexName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Mapping
// ==========================

// HTTPStatusMapping maps internal error codes to HTTP response codes.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeInvalidProfile:           http.StatusBadRequest,
	ErrCodeInvalidPage:              http.StatusBadRequest,
	ErrCodeInvalidQuery:             http.StatusBadRequest,
	ErrCodePoolTooLarge:             http.StatusUnprocessableEntity,
	ErrCodeMatchTimeout:             http.StatusGatewayTimeout,
	ErrCodeEntityNotFound:           http.StatusNotFound,
	ErrCodeDatabaseConnectionFailed: http.StatusServiceUnavailable,
	ErrCodeQueryExecutionFailed:     http.StatusInternalServerError,
	ErrCodeSearchQueryFailed:        http.StatusInternalServerError,
	ErrCodeIndexNotFound:            http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status for an error, defaulting to 500.
func HTTPStatus(err error) int {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		if status, ok := HTTPStatusMapping[stdErr.Code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// ==========================
// 4. Utility Functions
// ==========================

// IsCode reports whether err is a StandardError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return errors.As(err, &stdErr) && stdErr.Code == code
}

// AsStandard extracts a *StandardError from err, or wraps err as a generic
// non-retryable internal error.
func AsStandard(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected internal error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
