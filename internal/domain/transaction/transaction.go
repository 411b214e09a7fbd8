package transaction

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/welth/backend/internal/domain/shared"
)

// TransactionType represents the direction of money movement
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// IsValid checks if the type is a valid TransactionType
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// TransactionStatus represents the processing status of a transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// IsValid checks if the status is a valid TransactionStatus
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of TransactionStatus
func (s TransactionStatus) String() string {
	return string(s)
}

// BalanceChange returns the signed effect of a transaction on its account:
// -amount for EXPENSE, +amount for INCOME.
func BalanceChange(t TransactionType, amount decimal.Decimal) decimal.Decimal {
	if t == TransactionTypeExpense {
		return amount.Neg()
	}
	return amount
}

// Details holds the user-editable fields of a transaction
type Details struct {
	AccountID         uuid.UUID
	Type              TransactionType
	Amount            decimal.Decimal
	Description       string
	Date              time.Time
	Category          string
	ReceiptURL        string
	IsRecurring       bool
	RecurringInterval RecurringInterval
}

func (d Details) validate() error {
	if d.AccountID == uuid.Nil {
		return shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if !d.Type.IsValid() {
		return shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Transaction type must be INCOME or EXPENSE")
	}
	if !d.Amount.IsPositive() {
		return shared.ErrInvalidAmount
	}
	if d.Date.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Transaction date is required")
	}
	if strings.TrimSpace(d.Category) == "" {
		return shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	}
	if len(d.Description) > 500 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	if d.IsRecurring && d.RecurringInterval != "" && !d.RecurringInterval.IsValid() {
		return shared.NewDomainError("INVALID_RECURRING_INTERVAL", "Recurring interval must be DAILY, WEEKLY, MONTHLY or YEARLY")
	}
	return nil
}

// Transaction is a single income or expense entry on an account
type Transaction struct {
	shared.BaseAggregateRoot
	UserID            uuid.UUID
	AccountID         uuid.UUID
	Type              TransactionType
	Amount            decimal.Decimal
	Description       string
	Date              time.Time
	Category          string
	ReceiptURL        string
	IsRecurring       bool
	RecurringInterval RecurringInterval
	NextRecurringDate *time.Time
	LastProcessed     *time.Time
	Status            TransactionStatus
}

// NewTransaction creates a completed transaction for the user
func NewTransaction(userID uuid.UUID, d Details) (*Transaction, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if err := d.validate(); err != nil {
		return nil, err
	}

	t := &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Status:            TransactionStatusCompleted,
	}
	t.apply(d)
	t.AddDomainEvent(NewTransactionCreatedEvent(t))

	return t, nil
}

func (t *Transaction) apply(d Details) {
	t.AccountID = d.AccountID
	t.Type = d.Type
	t.Amount = d.Amount
	t.Description = strings.TrimSpace(d.Description)
	t.Date = d.Date
	t.Category = strings.TrimSpace(d.Category)
	t.ReceiptURL = d.ReceiptURL
	t.IsRecurring = d.IsRecurring
	t.RecurringInterval = d.RecurringInterval
	if !d.IsRecurring {
		t.RecurringInterval = ""
	}
	t.NextRecurringDate = NextRecurringDate(d.IsRecurring, d.Date, d.RecurringInterval)
}

// BalanceChange returns the signed effect of this transaction on its account
func (t *Transaction) BalanceChange() decimal.Decimal {
	return BalanceChange(t.Type, t.Amount)
}

// Revise replaces the editable fields and returns the balance adjustments
// needed to keep the affected accounts consistent.
func (t *Transaction) Revise(d Details) (BalanceAdjustments, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	oldAccount := t.AccountID
	oldChange := t.BalanceChange()

	t.apply(d)
	t.UpdatedAt = time.Now()

	adjustments := make(BalanceAdjustments)
	adjustments.Add(oldAccount, oldChange.Neg())
	adjustments.Add(t.AccountID, t.BalanceChange())

	t.AddDomainEvent(NewTransactionUpdatedEvent(t, oldAccount))

	return adjustments.NonZero(), nil
}
