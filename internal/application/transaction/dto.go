package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/welth/backend/internal/domain/transaction"
)

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID                uuid.UUID       `json:"id"`
	AccountID         uuid.UUID       `json:"accountId"`
	Type              string          `json:"type"`
	Amount            decimal.Decimal `json:"amount"`
	Description       string          `json:"description"`
	Date              time.Time       `json:"date"`
	Category          string          `json:"category"`
	ReceiptURL        string          `json:"receiptUrl,omitempty"`
	IsRecurring       bool            `json:"isRecurring"`
	RecurringInterval string          `json:"recurringInterval,omitempty"`
	NextRecurringDate *time.Time      `json:"nextRecurringDate,omitempty"`
	LastProcessed     *time.Time      `json:"lastProcessed,omitempty"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// TransactionRequest carries the editable fields for create and update
type TransactionRequest struct {
	AccountID         uuid.UUID
	Type              string
	Amount            decimal.Decimal
	Description       string
	Date              time.Time
	Category          string
	ReceiptURL        string
	IsRecurring       bool
	RecurringInterval string
}

// BulkDeleteResult reports how many transactions a bulk delete removed
type BulkDeleteResult struct {
	Deleted    int         `json:"deleted"`
	AccountIDs []uuid.UUID `json:"accountIds"`
}

// RecurringResult summarizes a recurring-transactions run
type RecurringResult struct {
	Templates int `json:"templates"`
	Created   int `json:"created"`
	Failed    int `json:"failed"`
}

func (r TransactionRequest) details() transaction.Details {
	return transaction.Details{
		AccountID:         r.AccountID,
		Type:              transaction.TransactionType(r.Type),
		Amount:            r.Amount,
		Description:       r.Description,
		Date:              r.Date,
		Category:          r.Category,
		ReceiptURL:        r.ReceiptURL,
		IsRecurring:       r.IsRecurring,
		RecurringInterval: transaction.RecurringInterval(r.RecurringInterval),
	}
}

// ToTransactionResponse converts a domain Transaction to a response
func ToTransactionResponse(t *transaction.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                t.ID,
		AccountID:         t.AccountID,
		Type:              t.Type.String(),
		Amount:            t.Amount,
		Description:       t.Description,
		Date:              t.Date,
		Category:          t.Category,
		ReceiptURL:        t.ReceiptURL,
		IsRecurring:       t.IsRecurring,
		RecurringInterval: t.RecurringInterval.String(),
		NextRecurringDate: t.NextRecurringDate,
		LastProcessed:     t.LastProcessed,
		Status:            t.Status.String(),
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

// ToTransactionResponses converts a slice of domain Transactions
func ToTransactionResponses(txs []*transaction.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txs))
	for i, t := range txs {
		out[i] = ToTransactionResponse(t)
	}
	return out
}
