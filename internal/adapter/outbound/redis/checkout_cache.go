package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/uniedit/checkout/internal/port/outbound"
)

// checkoutCache implements outbound.CheckoutCachePort.
type checkoutCache struct {
	client redis.UniversalClient
}

// NewCheckoutCache creates a checkout data cache adapter.
func NewCheckoutCache(client redis.UniversalClient) outbound.CheckoutCachePort {
	return &checkoutCache{client: client}
}

func (c *checkoutCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get checkout data: %w", err)
	}
	return data, nil
}

func (c *checkoutCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set checkout data: %w", err)
	}
	return nil
}

func (c *checkoutCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete checkout data: %w", err)
	}
	return nil
}

// Compile-time check
var _ outbound.CheckoutCachePort = (*checkoutCache)(nil)
