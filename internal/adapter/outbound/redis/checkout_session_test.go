package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniedit/checkout/internal/model"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, redis.UniversalClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCheckoutSessionStore(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	store := NewCheckoutSessionStore(client, time.Hour)

	t.Run("missing session is empty", func(t *testing.T) {
		session, err := store.Load(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, session.OrderID)
		assert.NotNil(t, session.PaymentStates)
		assert.Empty(t, session.PaymentStates)
	})

	t.Run("round trip", func(t *testing.T) {
		orderID := uuid.New()
		session := model.NewCheckoutSession()
		session.OrderID = &orderID
		session.PaymentStates["cash"] = model.NewPaymentState(model.PaymentMethodComplete, decimal.RequireFromString("2.00"), nil)
		session.PaymentStates["card"] = model.NewFormPostRequired(decimal.RequireFromString("8.00"), "get-token", "/pay", nil)

		require.NoError(t, store.Save(ctx, "s1", session))
		assert.Equal(t, time.Hour, mr.TTL(checkoutSessionKeyPrefix+"s1"))

		loaded, err := store.Load(ctx, "s1")
		require.NoError(t, err)
		require.NotNil(t, loaded.OrderID)
		assert.Equal(t, orderID, *loaded.OrderID)
		assert.Equal(t, model.PaymentMethodComplete, loaded.PaymentStates["cash"].Status)
		assert.Equal(t, "8.00", loaded.PaymentStates["card"].Amount.StringFixed(2))
		assert.IsType(t, model.FormAction{}, loaded.PaymentStates["card"].RequiredAction)
	})

	t.Run("expired session is empty", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "s2", model.NewCheckoutSession()))
		mr.FastForward(2 * time.Hour)

		loaded, err := store.Load(ctx, "s2")
		require.NoError(t, err)
		assert.Empty(t, loaded.PaymentStates)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "s3", model.NewCheckoutSession()))
		require.NoError(t, store.Delete(ctx, "s3"))
		assert.False(t, mr.Exists(checkoutSessionKeyPrefix+"s3"))
	})

	t.Run("corrupt payload", func(t *testing.T) {
		require.NoError(t, mr.Set(checkoutSessionKeyPrefix+"s4", "{not json"))
		_, err := store.Load(ctx, "s4")
		assert.Error(t, err)
	})
}
