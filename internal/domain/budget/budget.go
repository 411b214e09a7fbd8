package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/welth/backend/internal/domain/shared"
)

// DefaultAlertThreshold is the percentage of the budget at which an alert is sent
var DefaultAlertThreshold = decimal.NewFromInt(80)

var hundred = decimal.NewFromInt(100)

// Budget is a user's monthly spending limit. Each user has at most one.
type Budget struct {
	shared.BaseAggregateRoot
	UserID        uuid.UUID
	Amount        decimal.Decimal
	LastAlertSent *time.Time
}

// NewBudget creates a budget for the user
func NewBudget(userID uuid.UUID, amount decimal.Decimal) (*Budget, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.ErrInvalidAmount
	}

	b := &Budget{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Amount:            amount,
	}
	b.AddDomainEvent(NewBudgetUpdatedEvent(b))
	return b, nil
}

// SetAmount changes the monthly limit
func (b *Budget) SetAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount
	}
	b.Amount = amount
	b.UpdatedAt = time.Now()
	b.AddDomainEvent(NewBudgetUpdatedEvent(b))
	return nil
}

// PercentageUsed returns expenses as a percentage of the budget
func (b *Budget) PercentageUsed(expenses decimal.Decimal) decimal.Decimal {
	if !b.Amount.IsPositive() {
		return decimal.Zero
	}
	return expenses.Div(b.Amount).Mul(hundred)
}

// ShouldAlert reports whether an alert is due: usage at or above the
// threshold and no alert sent yet in now's calendar month.
func (b *Budget) ShouldAlert(expenses decimal.Decimal, now time.Time, threshold decimal.Decimal) bool {
	if b.PercentageUsed(expenses).LessThan(threshold) {
		return false
	}
	return b.LastAlertSent == nil || IsNewMonth(*b.LastAlertSent, now)
}

// MarkAlertSent records that the alert for now's month went out
func (b *Budget) MarkAlertSent(now time.Time) {
	sent := now
	b.LastAlertSent = &sent
	b.UpdatedAt = now
}

// IsNewMonth reports whether current falls in a different calendar month than last.
// last is compared in current's location.
func IsNewMonth(last, current time.Time) bool {
	last = last.In(current.Location())
	return last.Month() != current.Month() || last.Year() != current.Year()
}

// MonthRange returns the first instant of now's month and the last
// instant of its final day, in now's location.
func MonthRange(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}
