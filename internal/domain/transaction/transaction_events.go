package transaction

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/welth/backend/internal/domain/shared"
)

// Aggregate type constant for Transaction
const AggregateTypeTransaction = "Transaction"

// Transaction domain event types
const (
	EventTypeTransactionCreated  = "TransactionCreated"
	EventTypeTransactionUpdated  = "TransactionUpdated"
	EventTypeTransactionsDeleted = "TransactionsDeleted"
)

// TransactionCreatedEvent is published when a transaction is recorded
type TransactionCreatedEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID       `json:"account_id"`
	Type      TransactionType `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
}

// NewTransactionCreatedEvent creates a new TransactionCreatedEvent
func NewTransactionCreatedEvent(t *Transaction) *TransactionCreatedEvent {
	return &TransactionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionCreated, AggregateTypeTransaction, t.ID, t.UserID),
		AccountID:       t.AccountID,
		Type:            t.Type,
		Amount:          t.Amount,
		Category:        t.Category,
	}
}

// TransactionUpdatedEvent is published when a transaction is edited
type TransactionUpdatedEvent struct {
	shared.BaseDomainEvent
	AccountID         uuid.UUID `json:"account_id"`
	PreviousAccountID uuid.UUID `json:"previous_account_id"`
}

// NewTransactionUpdatedEvent creates a new TransactionUpdatedEvent
func NewTransactionUpdatedEvent(t *Transaction, previousAccountID uuid.UUID) *TransactionUpdatedEvent {
	return &TransactionUpdatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeTransactionUpdated, AggregateTypeTransaction, t.ID, t.UserID),
		AccountID:         t.AccountID,
		PreviousAccountID: previousAccountID,
	}
}

// TransactionsDeletedEvent is published after a bulk delete.
// The aggregate is the owning user since several transactions are involved.
type TransactionsDeletedEvent struct {
	shared.BaseDomainEvent
	TransactionIDs []uuid.UUID `json:"transaction_ids"`
	AccountIDs     []uuid.UUID `json:"account_ids"`
}

// NewTransactionsDeletedEvent creates a new TransactionsDeletedEvent
func NewTransactionsDeletedEvent(userID uuid.UUID, txs []*Transaction) *TransactionsDeletedEvent {
	ids := make([]uuid.UUID, 0, len(txs))
	seen := make(map[uuid.UUID]bool)
	accounts := make([]uuid.UUID, 0)
	for _, t := range txs {
		ids = append(ids, t.ID)
		if !seen[t.AccountID] {
			seen[t.AccountID] = true
			accounts = append(accounts, t.AccountID)
		}
	}
	return &TransactionsDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionsDeleted, AggregateTypeTransaction, userID, userID),
		TransactionIDs:  ids,
		AccountIDs:      accounts,
	}
}
