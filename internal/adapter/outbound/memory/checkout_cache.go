package memory

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/uniedit/checkout/internal/port/outbound"
)

// CheckoutCache implements outbound.CheckoutCachePort in memory.
type CheckoutCache struct {
	items *ttlcache.Cache[string, []byte]
}

// NewCheckoutCache creates an in-memory checkout data cache and starts its
// expiry loop. Call Close to stop it.
func NewCheckoutCache() *CheckoutCache {
	items := ttlcache.New[string, []byte](ttlcache.WithDisableTouchOnHit[string, []byte]())
	go items.Start()
	return &CheckoutCache{items: items}
}

func (c *CheckoutCache) Get(_ context.Context, key string) ([]byte, error) {
	item := c.items.Get(key)
	if item == nil {
		return nil, nil
	}
	return append([]byte(nil), item.Value()...), nil
}

func (c *CheckoutCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	c.items.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

func (c *CheckoutCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		c.items.Delete(key)
	}
	return nil
}

// Close stops the expiry loop.
func (c *CheckoutCache) Close() {
	c.items.Stop()
}

// Compile-time check
var _ outbound.CheckoutCachePort = (*CheckoutCache)(nil)
