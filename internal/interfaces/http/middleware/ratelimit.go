package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/welth/backend/internal/domain/shared"
	"github.com/welth/backend/internal/infrastructure/ratelimit"
	"github.com/welth/backend/internal/infrastructure/telemetry"
	"github.com/welth/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Rate limit response headers
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter         = "Retry-After"
)

// Decider consumes one token for key
type Decider interface {
	Decide(key string) ratelimit.Decision
}

// RateLimitConfig configures the rate limiting middleware
type RateLimitConfig struct {
	Limiter Decider
	// Prefix isolates this route's buckets from other limiters sharing the same store
	Prefix  string
	Metrics *telemetry.FinanceMetrics
	Logger  *zap.Logger
}

// RateLimit limits requests per signed-in user, falling back to the
// client IP for anonymous requests.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	return RateLimitByKey(cfg, func(c *gin.Context) string {
		if userID := GetUserID(c); userID != "" {
			return userID
		}
		return "ip:" + c.ClientIP()
	})
}

// RateLimitByKey limits requests using a custom key extractor
func RateLimitByKey(cfg RateLimitConfig, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := cfg.Prefix + keyFunc(c)
		decision := cfg.Limiter.Decide(key)
		SetRateLimitHeaders(c, decision)

		if !decision.Allowed {
			log.Warn("RATE_LIMIT_EXCEEDED",
				zap.String("key", key),
				zap.String("path", c.FullPath()),
				zap.Int("remaining", decision.Remaining),
				zap.Int64("reset_in_seconds", resetSeconds(decision)),
			)
			cfg.Metrics.RecordRateLimitDenied(c.Request.Context())
			c.Header(HeaderRetryAfter, strconv.FormatInt(resetSeconds(decision), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				shared.ErrRateLimitExceeded.Code,
				shared.ErrRateLimitExceeded.Message,
				GetRequestID(c),
			))
			return
		}

		c.Next()
	}
}

// SetRateLimitHeaders writes the X-RateLimit-* headers for decision
func SetRateLimitHeaders(c *gin.Context, decision ratelimit.Decision) {
	c.Header(HeaderRateLimitLimit, strconv.Itoa(decision.Limit))
	c.Header(HeaderRateLimitRemaining, strconv.Itoa(decision.Remaining))
	c.Header(HeaderRateLimitReset, strconv.FormatInt(resetSeconds(decision), 10))
}

func resetSeconds(decision ratelimit.Decision) int64 {
	return int64(math.Ceil(decision.ResetIn.Seconds()))
}
