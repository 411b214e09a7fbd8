package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/welth/backend/internal/domain/identity"
	"github.com/welth/backend/internal/domain/shared"
	"github.com/welth/backend/internal/infrastructure/logger"
	"github.com/welth/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Context keys set by UserResolver
const (
	UserIDKey = logger.GinUserIDKey
	UserKey   = "user"
)

// UserResolver finds or provisions the local user for a token subject
type UserResolver interface {
	ResolveUser(ctx context.Context, externalID string, profile identity.Profile) (*identity.User, error)
}

// ResolveUser maps the authenticated token subject to a local user. It must
// run after JWTAuthMiddleware.
func ResolveUser(resolver UserResolver, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithDomainError(c, shared.ErrUnauthorized)
			return
		}

		user, err := resolver.ResolveUser(c.Request.Context(), claims.Subject, claims.Profile())
		if err != nil {
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) {
				abortWithDomainError(c, domainErr)
				return
			}
			log.Error("Failed to resolve user", zap.String("subject", claims.Subject), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeInternal, "An unexpected error occurred", GetRequestID(c)))
			return
		}

		userID := user.ID.String()
		c.Set(UserKey, user)
		c.Set(UserIDKey, userID)

		ctx, _ := logger.WithUserID(c.Request.Context(), logger.FromContext(c.Request.Context()), userID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortWithDomainError(c *gin.Context, err *shared.DomainError) {
	c.AbortWithStatusJSON(dto.GetHTTPStatus(err.Code), dto.NewErrorResponseWithRequestID(err.Code, err.Message, GetRequestID(c)))
}

// GetUserID returns the local user id set by ResolveUser, or ""
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// GetUser returns the local user set by ResolveUser, or nil
func GetUser(c *gin.Context) *identity.User {
	if v, ok := c.Get(UserKey); ok {
		if user, ok := v.(*identity.User); ok {
			return user
		}
	}
	return nil
}

// GetUserUUID returns the local user id as a UUID
func GetUserUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(GetUserID(c))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
