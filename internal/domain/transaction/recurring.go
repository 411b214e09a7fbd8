package transaction

import (
	"time"

	"github.com/welth/backend/internal/domain/shared"
)

// RecurringInterval is how often a recurring transaction repeats
type RecurringInterval string

const (
	RecurringDaily   RecurringInterval = "DAILY"
	RecurringWeekly  RecurringInterval = "WEEKLY"
	RecurringMonthly RecurringInterval = "MONTHLY"
	RecurringYearly  RecurringInterval = "YEARLY"
)

// IsValid checks if the interval is a valid RecurringInterval
func (i RecurringInterval) IsValid() bool {
	switch i {
	case RecurringDaily, RecurringWeekly, RecurringMonthly, RecurringYearly:
		return true
	}
	return false
}

// String returns the string representation of RecurringInterval
func (i RecurringInterval) String() string {
	return string(i)
}

// Next returns the occurrence after from. Month and year steps follow
// time.AddDate, so Jan 31 + 1 month normalizes to early March.
func (i RecurringInterval) Next(from time.Time) time.Time {
	switch i {
	case RecurringDaily:
		return from.AddDate(0, 0, 1)
	case RecurringWeekly:
		return from.AddDate(0, 0, 7)
	case RecurringMonthly:
		return from.AddDate(0, 1, 0)
	case RecurringYearly:
		return from.AddDate(1, 0, 0)
	default:
		return from
	}
}

// NextRecurringDate returns the next occurrence for a transaction dated at
// date, or nil unless it is recurring with a known interval.
func NextRecurringDate(isRecurring bool, date time.Time, interval RecurringInterval) *time.Time {
	if !isRecurring || !interval.IsValid() {
		return nil
	}
	next := interval.Next(date)
	return &next
}

// IsDue reports whether a recurring template has an occurrence at or before now
func (t *Transaction) IsDue(now time.Time) bool {
	return t.IsRecurring &&
		t.Status == TransactionStatusCompleted &&
		t.NextRecurringDate != nil &&
		!t.NextRecurringDate.After(now)
}

// SpawnOccurrence materializes the pending occurrence of a recurring
// template as a new one-off transaction and advances the template.
func (t *Transaction) SpawnOccurrence(now time.Time) (*Transaction, error) {
	if !t.IsDue(now) {
		return nil, shared.NewDomainError("NOT_DUE", "Recurring transaction is not due")
	}

	occurrence, err := NewTransaction(t.UserID, Details{
		AccountID:   t.AccountID,
		Type:        t.Type,
		Amount:      t.Amount,
		Description: t.Description,
		Date:        *t.NextRecurringDate,
		Category:    t.Category,
	})
	if err != nil {
		return nil, err
	}

	next := t.RecurringInterval.Next(*t.NextRecurringDate)
	processed := now
	t.NextRecurringDate = &next
	t.LastProcessed = &processed
	t.UpdatedAt = now

	return occurrence, nil
}
