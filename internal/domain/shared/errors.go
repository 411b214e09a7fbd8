package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code.
// This lets errors.Is match a freshly built error against the sentinels below.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound     = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized = NewDomainError("UNAUTHORIZED", "Unauthorised")
	ErrForbidden    = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState = NewDomainError("INVALID_STATE", "Operation not allowed in current state")

	ErrUserNotFound         = NewDomainError("USER_NOT_FOUND", "User not found")
	ErrAccountNotFound      = NewDomainError("ACCOUNT_NOT_FOUND", "Account Not Found")
	ErrTransactionNotFound  = NewDomainError("TRANSACTION_NOT_FOUND", "Transaction not found")
	ErrNoTransactionsFound  = NewDomainError("NO_TRANSACTIONS_FOUND", "No transactions found for the provided IDs.")
	ErrInvalidBalance       = NewDomainError("INVALID_BALANCE", "Invalid balance amount")
	ErrInvalidAmount        = NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	ErrRateLimitExceeded    = NewDomainError("RATE_LIMIT_EXCEEDED", "Too many requests. Please try again later.")
	ErrReceiptScanFailed    = NewDomainError("RECEIPT_SCAN_FAILED", "Failed to scan receipt")
	ErrInvalidModelResponse = NewDomainError("INVALID_AI_RESPONSE", "Invalid response format from Gemini")
	ErrInvalidFileType      = NewDomainError("INVALID_FILE_TYPE", "Only image files are allowed")
	ErrFileTooLarge         = NewDomainError("FILE_TOO_LARGE", "File size should be less than 5MB")
)
