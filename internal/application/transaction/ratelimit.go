package transaction

import (
	"github.com/welth/backend/internal/domain/shared"
	"github.com/welth/backend/internal/infrastructure/ratelimit"
)

// RateLimiter consumes one token for key
type RateLimiter interface {
	Decide(key string) ratelimit.Decision
}

// RateLimitError is returned when the caller's bucket is empty.
// It matches shared.ErrRateLimitExceeded under errors.Is.
type RateLimitError struct {
	Decision ratelimit.Decision
}

func (e *RateLimitError) Error() string {
	return shared.ErrRateLimitExceeded.Message
}

// Unwrap exposes the domain error so HTTP mapping can read its code
func (e *RateLimitError) Unwrap() error {
	return shared.ErrRateLimitExceeded
}
