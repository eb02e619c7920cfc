package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/uniedit/checkout/internal/model"
	"github.com/uniedit/checkout/internal/port/outbound"
)

const (
	checkoutSessionKeyPrefix  = "checkout:session:"
	defaultCheckoutSessionTTL = 24 * time.Hour
)

// checkoutSessionStore implements outbound.CheckoutSessionPort.
type checkoutSessionStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCheckoutSessionStore creates a checkout session store adapter. Each save
// refreshes the session's expiry to ttl.
func NewCheckoutSessionStore(client redis.UniversalClient, ttl time.Duration) outbound.CheckoutSessionPort {
	if ttl <= 0 {
		ttl = defaultCheckoutSessionTTL
	}
	return &checkoutSessionStore{client: client, ttl: ttl}
}

func (s *checkoutSessionStore) Load(ctx context.Context, sessionID string) (*model.CheckoutSession, error) {
	data, err := s.client.Get(ctx, checkoutSessionKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.NewCheckoutSession(), nil
		}
		return nil, fmt.Errorf("get checkout session: %w", err)
	}

	session := model.NewCheckoutSession()
	if err := json.Unmarshal(data, session); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	return session, nil
}

func (s *checkoutSessionStore) Save(ctx context.Context, sessionID string, session *model.CheckoutSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode checkout session: %w", err)
	}
	if err := s.client.Set(ctx, checkoutSessionKeyPrefix+sessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set checkout session: %w", err)
	}
	return nil
}

func (s *checkoutSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, checkoutSessionKeyPrefix+sessionID).Err()
}

// Compile-time check
var _ outbound.CheckoutSessionPort = (*checkoutSessionStore)(nil)
