package account

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/welth/backend/internal/domain/shared"
)

// AccountType represents the kind of bank account
type AccountType string

const (
	AccountTypeCurrent AccountType = "CURRENT"
	AccountTypeSavings AccountType = "SAVINGS"
)

// IsValid checks if the type is a valid AccountType
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeCurrent, AccountTypeSavings:
		return true
	}
	return false
}

// String returns the string representation of AccountType
func (t AccountType) String() string {
	return string(t)
}

// DisplayName returns a human-readable name for the type
func (t AccountType) DisplayName() string {
	switch t {
	case AccountTypeCurrent:
		return "Current"
	case AccountTypeSavings:
		return "Savings"
	default:
		return string(t)
	}
}

// Account is a user's bank account. Balance is only ever moved by
// transactions after creation, and at most one account per user is default.
type Account struct {
	shared.BaseAggregateRoot
	UserID    uuid.UUID
	Name      string
	Type      AccountType
	Balance   decimal.Decimal
	IsDefault bool

	// TransactionCount is a read-side projection filled by list queries
	TransactionCount int64
}

// ParseBalance parses a user-entered opening balance
func ParseBalance(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, shared.ErrInvalidBalance
	}
	return d, nil
}

// NewAccount creates a new account for a user
func NewAccount(userID uuid.UUID, name string, accountType AccountType, balance decimal.Decimal, isDefault bool) (*Account, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Account name cannot exceed 100 characters")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Account type must be CURRENT or SAVINGS")
	}

	acc := &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Name:              name,
		Type:              accountType,
		Balance:           balance,
		IsDefault:         isDefault,
	}
	acc.AddDomainEvent(NewAccountCreatedEvent(acc))

	return acc, nil
}

// MakeDefault marks the account as the user's default account
func (a *Account) MakeDefault() {
	if a.IsDefault {
		return
	}
	a.IsDefault = true
	a.UpdatedAt = time.Now()
	a.AddDomainEvent(NewDefaultAccountChangedEvent(a))
}

// ApplyBalanceChange moves the in-memory balance by delta.
// Persistence applies the same delta as an atomic increment.
func (a *Account) ApplyBalanceChange(delta decimal.Decimal) {
	a.Balance = a.Balance.Add(delta)
	a.UpdatedAt = time.Now()
}
