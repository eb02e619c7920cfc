package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"github.com/uniedit/checkout/internal/port/outbound"
)

const (
	rateLimitKeyPrefix = "checkout:ratelimit:"

	// The breaker opens after this many consecutive Redis failures and
	// tries redis again once breakerTimeout has passed.
	breakerMaxFailures = 5
	breakerTimeout     = 30 * time.Second
)

type rateLimitResult struct {
	allowed   bool
	remaining int
}

// rateLimiter implements outbound.RateLimiterPort with a fixed window counter.
// Calls go through a circuit breaker so a Redis outage fails fast.
type rateLimiter struct {
	client  redis.UniversalClient
	breaker *gobreaker.CircuitBreaker[rateLimitResult]
}

// NewRateLimiter creates a new rate limiter adapter.
func NewRateLimiter(client redis.UniversalClient) outbound.RateLimiterPort {
	return &rateLimiter{
		client: client,
		breaker: gobreaker.NewCircuitBreaker[rateLimitResult](gobreaker.Settings{
			Name:        "redis-rate-limiter",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     breakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerMaxFailures
			},
		}),
	}
}

func (r *rateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	res, err := r.breaker.Execute(func() (rateLimitResult, error) {
		return r.count(ctx, key, limit, window)
	})
	if err != nil {
		return false, 0, err
	}
	return res.allowed, res.remaining, nil
}

func (r *rateLimiter) count(ctx context.Context, key string, limit int, window time.Duration) (rateLimitResult, error) {
	bucket := time.Now().UnixNano() / window.Nanoseconds()
	fullKey := rateLimitKeyPrefix + key + ":" + strconv.FormatInt(bucket, 10)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.PExpire(ctx, fullKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return rateLimitResult{}, err
	}

	count := int(incr.Val())
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return rateLimitResult{allowed: count <= limit, remaining: remaining}, nil
}

var _ outbound.RateLimiterPort = (*rateLimiter)(nil)
