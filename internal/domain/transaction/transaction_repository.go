package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRepository defines the interface for transaction persistence.
// Reads and deletes are scoped to the owning user.
type TransactionRepository interface {
	// Create creates a new transaction
	Create(ctx context.Context, t *Transaction) error

	// Update saves the editable fields and recurrence state of a transaction
	Update(ctx context.Context, t *Transaction) error

	// FindByIDForUser finds a transaction owned by the user
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*Transaction, error)

	// FindByIDsForUser returns the user's transactions among ids
	FindByIDsForUser(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*Transaction, error)

	// DeleteByIDsForUser deletes the user's transactions among ids
	DeleteByIDsForUser(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)

	// FindAllForUser returns all of the user's transactions, newest date first
	FindAllForUser(ctx context.Context, userID uuid.UUID) ([]*Transaction, error)

	// FindByAccount returns the transactions of one account, newest date first
	FindByAccount(ctx context.Context, userID, accountID uuid.UUID) ([]*Transaction, error)

	// SumExpenses sums EXPENSE amounts on an account with from <= date <= to
	SumExpenses(ctx context.Context, userID, accountID uuid.UUID, from, to time.Time) (decimal.Decimal, error)

	// FindDueRecurring returns recurring templates whose next occurrence is at or before now
	FindDueRecurring(ctx context.Context, now time.Time, limit int) ([]*Transaction, error)
}
