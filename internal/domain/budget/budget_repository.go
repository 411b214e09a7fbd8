package budget

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetRepository defines the interface for budget persistence
type BudgetRepository interface {
	// FindByUser returns the user's budget
	FindByUser(ctx context.Context, userID uuid.UUID) (*Budget, error)

	// Upsert creates the user's budget or updates its amount, keyed on user
	Upsert(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*Budget, error)

	// FindAll returns every budget, for the alert job
	FindAll(ctx context.Context) ([]*Budget, error)

	// UpdateLastAlertSent records when the last alert went out
	UpdateLastAlertSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
}
