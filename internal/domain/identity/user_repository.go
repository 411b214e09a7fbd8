package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository persists users. Lookups that miss return shared.ErrUserNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByExternalAuthID resolves the identity provider's subject claim
	FindByExternalAuthID(ctx context.Context, externalAuthID string) (*User, error)
}
