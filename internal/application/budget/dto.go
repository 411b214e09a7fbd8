package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/welth/backend/internal/domain/budget"
)

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID            uuid.UUID       `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	LastAlertSent *time.Time      `json:"lastAlertSent,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// CurrentBudgetResponse is the budget together with month-to-date expenses.
// Budget is nil when the user has not set one.
type CurrentBudgetResponse struct {
	Budget          *BudgetResponse `json:"budget"`
	CurrentExpenses decimal.Decimal `json:"currentExpenses"`
}

// AlertSummary reports the outcome of one budget alert run
type AlertSummary struct {
	Checked int `json:"checked"`
	Skipped int `json:"skipped"`
	Alerted int `json:"alerted"`
	Failed  int `json:"failed"`
}

// ToBudgetResponse converts a domain Budget to a response
func ToBudgetResponse(b *budget.Budget) *BudgetResponse {
	return &BudgetResponse{
		ID:            b.ID,
		Amount:        b.Amount,
		LastAlertSent: b.LastAlertSent,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}
