package ports

import (
	"context"
	"time"
)

// RateLimitStore counts requests per key in fixed windows. retryAfter is the
// number of seconds until the current window resets and is only meaningful
// when allowed is false.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, retryAfter int)
}
