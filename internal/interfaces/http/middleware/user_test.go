package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/welth/backend/internal/domain/identity"
	"github.com/welth/backend/internal/domain/shared"
	"github.com/welth/backend/internal/infrastructure/logger"
)

type mockUserResolver struct {
	mock.Mock
}

func (m *mockUserResolver) ResolveUser(ctx context.Context, externalID string, profile identity.Profile) (*identity.User, error) {
	args := m.Called(ctx, externalID, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func newUserRouter(t *testing.T, resolver UserResolver) (*gin.Engine, string) {
	svc := newTestJWTService(time.Minute)
	r := gin.New()
	r.Use(JWTAuthMiddleware(svc), ResolveUser(resolver, nil))
	r.GET("/me", func(c *gin.Context) {
		id, ok := GetUserUUID(c)
		assert.True(t, ok)
		assert.Equal(t, id.String(), logger.GetUserID(c.Request.Context()))
		c.JSON(http.StatusOK, gin.H{"id": id.String(), "email": GetUser(c).Email})
	})
	return r, newTestToken(t, svc)
}

func TestResolveUser(t *testing.T) {
	user, err := identity.NewUser("user_2abc", identity.Profile{Email: "ana@example.com", Name: "Ana"})
	require.NoError(t, err)

	t.Run("sets local user", func(t *testing.T) {
		resolver := new(mockUserResolver)
		resolver.On("ResolveUser", mock.Anything, "user_2abc", identity.Profile{Email: "ana@example.com", Name: "Ana"}).
			Return(user, nil)
		r, token := newUserRouter(t, resolver)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := serve(r, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":"`+user.ID.String()+`","email":"ana@example.com"}`, w.Body.String())
	})

	t.Run("unknown user", func(t *testing.T) {
		resolver := new(mockUserResolver)
		resolver.On("ResolveUser", mock.Anything, mock.Anything, mock.Anything).Return(nil, shared.ErrUserNotFound)
		r, token := newUserRouter(t, resolver)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := serve(r, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "USER_NOT_FOUND", decodeError(t, w).Code)
	})

	t.Run("store failure", func(t *testing.T) {
		resolver := new(mockUserResolver)
		resolver.On("ResolveUser", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
		r, token := newUserRouter(t, resolver)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := serve(r, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "INTERNAL_ERROR", decodeError(t, w).Code)
	})

	t.Run("without claims", func(t *testing.T) {
		r := gin.New()
		r.Use(ResolveUser(new(mockUserResolver), nil))
		r.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, w).Code)
	})
}
