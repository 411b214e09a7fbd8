package dto

import "net/http"

// Transport-level error codes. Domain codes (ACCOUNT_NOT_FOUND etc.) are
// passed through unchanged.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "TOKEN_INVALID"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeRateLimited     = "RATE_LIMIT_EXCEEDED"
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400
	ErrCodeBadRequest:     http.StatusBadRequest,
	ErrCodeValidation:     http.StatusBadRequest,
	ErrCodeInvalidInput:   http.StatusBadRequest,
	ErrCodeInvalidJSON:    http.StatusBadRequest,
	"INVALID_FILE_TYPE":   http.StatusBadRequest,
	"INVALID_CATEGORY":    http.StatusBadRequest,
	"INVALID_DATE":        http.StatusBadRequest,
	"INVALID_DESCRIPTION": http.StatusBadRequest,
	"INVALID_NAME":        http.StatusBadRequest,
	"INVALID_ACCOUNT":     http.StatusBadRequest,
	"INVALID_USER":        http.StatusBadRequest,
	"INVALID_EMAIL":       http.StatusBadRequest,
	"INVALID_EXTERNAL_ID": http.StatusBadRequest,

	// Business rule errors -> 422
	"INVALID_BALANCE":            http.StatusUnprocessableEntity,
	"INVALID_AMOUNT":             http.StatusUnprocessableEntity,
	"INVALID_ACCOUNT_TYPE":       http.StatusUnprocessableEntity,
	"INVALID_TRANSACTION_TYPE":   http.StatusUnprocessableEntity,
	"INVALID_RECURRING_INTERVAL": http.StatusUnprocessableEntity,
	"INVALID_STATE":              http.StatusUnprocessableEntity,
	"NOT_DUE":                    http.StatusUnprocessableEntity,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	"USER_NOT_FOUND":    http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	// Resource errors -> 404
	ErrCodeNotFound:         http.StatusNotFound,
	"ACCOUNT_NOT_FOUND":     http.StatusNotFound,
	"TRANSACTION_NOT_FOUND": http.StatusNotFound,
	"NO_TRANSACTIONS_FOUND": http.StatusNotFound,

	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	"FILE_TOO_LARGE":       http.StatusRequestEntityTooLarge,

	ErrCodeRateLimited: http.StatusTooManyRequests,

	// Upstream AI failures -> 502
	"RECEIPT_SCAN_FAILED": http.StatusBadGateway,
	"INVALID_AI_RESPONSE": http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
