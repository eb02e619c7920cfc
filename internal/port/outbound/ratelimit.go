package outbound

import (
	"context"
	"time"
)

// RateLimiterPort defines rate limiting operations.
type RateLimiterPort interface {
	// Allow counts one request against key and reports whether it fits within
	// limit for the current window, along with the requests left in it.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, remaining int, err error)
}
