package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates user with normalized email", func(t *testing.T) {
		user, err := NewUser("user_2abc", Profile{Email: " Jane@Example.COM ", Name: "Jane"})

		require.NoError(t, err)
		assert.Equal(t, "user_2abc", user.ExternalAuthID)
		assert.Equal(t, "jane@example.com", user.Email)
		assert.Equal(t, "Jane", user.Name)

		events := user.GetDomainEvents()
		require.Len(t, events, 1)
		created, ok := events[0].(*UserCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, user.ID, created.UserID())
	})

	t.Run("rejects empty external id", func(t *testing.T) {
		_, err := NewUser("  ", Profile{Email: "a@b.io"})
		assert.Error(t, err)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewUser("user_1", Profile{Email: "not-an-email"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid email format")
	})
}

func TestUser_DisplayName(t *testing.T) {
	user, err := NewUser("user_1", Profile{Email: "sam@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "sam", user.DisplayName())

	user.Name = "Sam Doe"
	assert.Equal(t, "Sam Doe", user.DisplayName())
}

func TestUser_UpdateProfile(t *testing.T) {
	user, err := NewUser("user_1", Profile{Email: "sam@example.com", Name: "Sam"})
	require.NoError(t, err)

	assert.False(t, user.UpdateProfile(Profile{Name: "Sam"}))
	assert.True(t, user.UpdateProfile(Profile{Name: "Samuel", Email: "bad"}))
	assert.Equal(t, "Samuel", user.Name)
	assert.Equal(t, "sam@example.com", user.Email)
}
