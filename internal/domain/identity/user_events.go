package identity

import (
	"github.com/welth/backend/internal/domain/shared"
)

// Aggregate type constant for User
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserCreated = "UserCreated"
)

// UserCreatedEvent is published when a user is provisioned
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	ExternalAuthID string `json:"external_auth_id"`
	Email          string `json:"email"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, user.ID, user.ID),
		ExternalAuthID:  user.ExternalAuthID,
		Email:           user.Email,
	}
}
