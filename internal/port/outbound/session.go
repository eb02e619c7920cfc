package outbound

import (
	"context"
	"time"

	"github.com/uniedit/checkout/internal/model"
)

// CheckoutSessionPort persists per-session checkout data between requests.
type CheckoutSessionPort interface {
	// Load returns the session data. A missing session yields an empty one.
	Load(ctx context.Context, sessionID string) (*model.CheckoutSession, error)

	// Save stores the session data.
	Save(ctx context.Context, sessionID string, session *model.CheckoutSession) error

	// Delete removes the session data.
	Delete(ctx context.Context, sessionID string) error
}

// CheckoutCachePort stores short-lived checkout data by key.
type CheckoutCachePort interface {
	// Get returns the stored value, or nil when the key is missing or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}
