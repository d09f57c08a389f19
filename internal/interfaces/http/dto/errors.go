package dto

import (
	"net/http"
	"strings"
)

// Error codes produced by the HTTP layer itself. Domain errors keep their own
// stable codes and are mapped to a status by GetHTTPStatus.
const (
	ErrCodeInternal      = "INTERNAL_ERROR"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeInvalidJSON   = "INVALID_JSON"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeRateLimited   = "RATE_LIMIT_EXCEEDED"
	ErrCodeTooLarge      = "REQUEST_TOO_LARGE"
	ErrCodeTenantMissing = "TENANT_REQUIRED"
	ErrCodeFeatureOff    = "FEATURE_DISABLED"
)

// ErrorCodeHTTPStatus lists codes whose status cannot be derived from their shape
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:       http.StatusInternalServerError,
	"SAVE_FAILED":         http.StatusInternalServerError,
	"PASSWORD_HASH_ERROR": http.StatusInternalServerError,
	"TOKEN_ERROR":         http.StatusInternalServerError,

	ErrCodeValidation:    http.StatusBadRequest,
	ErrCodeBadRequest:    http.StatusBadRequest,
	ErrCodeInvalidJSON:   http.StatusBadRequest,
	ErrCodeTenantMissing: http.StatusBadRequest,

	ErrCodeUnauthorized:   http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"TOKEN_INVALID":       http.StatusUnauthorized,
	"TOKEN_REVOKED":       http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":   http.StatusUnauthorized,

	ErrCodeForbidden:      http.StatusForbidden,
	ErrCodeFeatureOff:     http.StatusForbidden,
	"NOT_A_SELLER":        http.StatusForbidden,
	"ACCOUNT_SUSPENDED":   http.StatusForbidden,
	"ACCOUNT_LOCKED":      http.StatusForbidden,
	"ACCOUNT_INACTIVE":    http.StatusForbidden,
	"TENANT_SUSPENDED":    http.StatusForbidden,
	"CHECKOUT_DISABLED":   http.StatusForbidden,
	"CANNOT_SUSPEND_SELF": http.StatusForbidden,

	ErrCodeConflict:         http.StatusConflict,
	"ALREADY_EXISTS":        http.StatusConflict,
	"CONCURRENCY_CONFLICT":  http.StatusConflict,
	"OPTIMISTIC_LOCK_ERROR": http.StatusConflict,
	"CHECKOUT_IN_PROGRESS":  http.StatusConflict,
	"DISPUTE_EXISTS":        http.StatusConflict,
	"REQUEST_OPEN":          http.StatusConflict,
	"ALREADY_PAID":          http.StatusConflict,

	"INVALID_STATE":      http.StatusUnprocessableEntity,
	"INVALID_TRANSITION": http.StatusUnprocessableEntity,

	ErrCodeTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited: http.StatusTooManyRequests,

	"DOCUMENTS_UNAVAILABLE": http.StatusServiceUnavailable,
}

// GetHTTPStatus maps an error code to a status. Codes not listed explicitly
// follow their naming: *NOT_FOUND is 404, *_TAKEN and *_EXISTS are 409,
// INVALID_* is 400. Every other domain code is a broken business rule (422).
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case code == "":
		return http.StatusInternalServerError
	case strings.HasSuffix(code, "NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "_TAKEN"), strings.HasSuffix(code, "_EXISTS"):
		return http.StatusConflict
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}
