package budget

import (
	"github.com/shopspring/decimal"
	"github.com/welth/backend/internal/domain/shared"
)

// Aggregate type constant for Budget
const AggregateTypeBudget = "Budget"

// Budget domain event types
const (
	EventTypeBudgetUpdated = "BudgetUpdated"
)

// BudgetUpdatedEvent is published when a budget is created or its amount changes
type BudgetUpdatedEvent struct {
	shared.BaseDomainEvent
	Amount decimal.Decimal `json:"amount"`
}

// NewBudgetUpdatedEvent creates a new BudgetUpdatedEvent
func NewBudgetUpdatedEvent(b *Budget) *BudgetUpdatedEvent {
	return &BudgetUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBudgetUpdated, AggregateTypeBudget, b.ID, b.UserID),
		Amount:          b.Amount,
	}
}
