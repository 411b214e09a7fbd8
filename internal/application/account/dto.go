package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	apptxn "github.com/welth/backend/internal/application/transaction"
	"github.com/welth/backend/internal/domain/account"
)

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Type             string          `json:"type"`
	Balance          decimal.Decimal `json:"balance"`
	IsDefault        bool            `json:"isDefault"`
	TransactionCount int64           `json:"transactionCount"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// AccountDetailResponse is an account with its transactions
type AccountDetailResponse struct {
	AccountResponse
	Transactions []apptxn.TransactionResponse `json:"transactions"`
}

// CreateAccountRequest carries the fields for a new account.
// Balance is the raw user input and is parsed as a decimal.
type CreateAccountRequest struct {
	Name      string
	Type      string
	Balance   string
	IsDefault bool
}

// ToAccountResponse converts a domain Account to a response
func ToAccountResponse(a *account.Account) AccountResponse {
	return AccountResponse{
		ID:               a.ID,
		Name:             a.Name,
		Type:             a.Type.String(),
		Balance:          a.Balance,
		IsDefault:        a.IsDefault,
		TransactionCount: a.TransactionCount,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

// ToAccountResponses converts a slice of domain Accounts
func ToAccountResponses(accounts []*account.Account) []AccountResponse {
	out := make([]AccountResponse, len(accounts))
	for i, a := range accounts {
		out[i] = ToAccountResponse(a)
	}
	return out
}
