package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/welth/backend/internal/domain/shared"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is a person signed in through the external identity provider.
// ExternalAuthID is the provider's subject and is unique.
type User struct {
	shared.BaseAggregateRoot
	ExternalAuthID string
	Email          string
	Name           string
	ImageURL       string
}

// Profile carries the identity-provider claims used to provision a user
type Profile struct {
	Email    string
	Name     string
	ImageURL string
}

// NewUser creates a user linked to an external identity
func NewUser(externalAuthID string, profile Profile) (*User, error) {
	externalAuthID = strings.TrimSpace(externalAuthID)
	if externalAuthID == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External auth ID cannot be empty")
	}
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ExternalAuthID:    externalAuthID,
		Email:             email,
		Name:              strings.TrimSpace(profile.Name),
		ImageURL:          strings.TrimSpace(profile.ImageURL),
	}
	user.AddDomainEvent(NewUserCreatedEvent(user))

	return user, nil
}

// DisplayName returns the name used when addressing the user
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}

// UpdateProfile refreshes the cached profile fields. Empty values are ignored.
// Returns true if anything changed.
func (u *User) UpdateProfile(profile Profile) bool {
	changed := false
	if name := strings.TrimSpace(profile.Name); name != "" && name != u.Name {
		u.Name = name
		changed = true
	}
	if img := strings.TrimSpace(profile.ImageURL); img != "" && img != u.ImageURL {
		u.ImageURL = img
		changed = true
	}
	if email := strings.ToLower(strings.TrimSpace(profile.Email)); email != "" && email != u.Email {
		if validateEmail(email) == nil {
			u.Email = email
			changed = true
		}
	}
	if changed {
		u.UpdatedAt = time.Now()
	}
	return changed
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email is required")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
