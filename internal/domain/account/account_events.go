package account

import (
	"github.com/shopspring/decimal"
	"github.com/welth/backend/internal/domain/shared"
)

// Aggregate type constant for Account
const AggregateTypeAccount = "Account"

// Account domain event types
const (
	EventTypeAccountCreated        = "AccountCreated"
	EventTypeDefaultAccountChanged = "DefaultAccountChanged"
)

// AccountCreatedEvent is published when an account is created
type AccountCreatedEvent struct {
	shared.BaseDomainEvent
	Name      string          `json:"name"`
	Type      AccountType     `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	IsDefault bool            `json:"is_default"`
}

// NewAccountCreatedEvent creates a new AccountCreatedEvent
func NewAccountCreatedEvent(a *Account) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountCreated, AggregateTypeAccount, a.ID, a.UserID),
		Name:            a.Name,
		Type:            a.Type,
		Balance:         a.Balance,
		IsDefault:       a.IsDefault,
	}
}

// DefaultAccountChangedEvent is published when a user picks a new default account
type DefaultAccountChangedEvent struct {
	shared.BaseDomainEvent
}

// NewDefaultAccountChangedEvent creates a new DefaultAccountChangedEvent
func NewDefaultAccountChangedEvent(a *Account) *DefaultAccountChangedEvent {
	return &DefaultAccountChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDefaultAccountChanged, AggregateTypeAccount, a.ID, a.UserID),
	}
}
