// Package memory provides process-local adapters for single-instance deployments and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/uniedit/checkout/internal/model"
	"github.com/uniedit/checkout/internal/port/outbound"
)

// CheckoutSessionStore implements outbound.CheckoutSessionPort in memory.
// Sessions are stored encoded so callers never share state.
type CheckoutSessionStore struct {
	sessions *ttlcache.Cache[string, []byte]
}

// NewCheckoutSessionStore creates an in-memory session store and starts its
// expiry loop. A ttl of zero keeps sessions forever. Call Close to stop it.
func NewCheckoutSessionStore(ttl time.Duration) *CheckoutSessionStore {
	sessions := ttlcache.New[string, []byte](
		ttlcache.WithTTL[string, []byte](ttl),
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go sessions.Start()
	return &CheckoutSessionStore{sessions: sessions}
}

func (s *CheckoutSessionStore) Load(_ context.Context, sessionID string) (*model.CheckoutSession, error) {
	session := model.NewCheckoutSession()
	item := s.sessions.Get(sessionID)
	if item == nil {
		return session, nil
	}
	if err := json.Unmarshal(item.Value(), session); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	return session, nil
}

func (s *CheckoutSessionStore) Save(_ context.Context, sessionID string, session *model.CheckoutSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode checkout session: %w", err)
	}
	s.sessions.Set(sessionID, data, ttlcache.DefaultTTL)
	return nil
}

func (s *CheckoutSessionStore) Delete(_ context.Context, sessionID string) error {
	s.sessions.Delete(sessionID)
	return nil
}

// Len returns the number of live sessions.
func (s *CheckoutSessionStore) Len() int {
	s.sessions.DeleteExpired()
	return s.sessions.Len()
}

// Close stops the expiry loop.
func (s *CheckoutSessionStore) Close() {
	s.sessions.Stop()
}

// Compile-time check
var _ outbound.CheckoutSessionPort = (*CheckoutSessionStore)(nil)
