package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account persistence.
// Every lookup is scoped to the owning user.
type AccountRepository interface {
	// Create creates a new account
	Create(ctx context.Context, account *Account) error

	// FindByIDForUser finds an account owned by the user
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*Account, error)

	// FindAllForUser returns the user's accounts, newest first, with transaction counts
	FindAllForUser(ctx context.Context, userID uuid.UUID) ([]*Account, error)

	// FindDefaultForUser returns the user's default account
	FindDefaultForUser(ctx context.Context, userID uuid.UUID) (*Account, error)

	// CountForUser counts the user's accounts
	CountForUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// ClearDefaultForUser unsets the default flag on every account of the user
	ClearDefaultForUser(ctx context.Context, userID uuid.UUID) error

	// SetDefault marks one of the user's accounts as default
	SetDefault(ctx context.Context, userID, id uuid.UUID) error

	// IncrementBalance atomically adds delta to the account balance
	IncrementBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
}
