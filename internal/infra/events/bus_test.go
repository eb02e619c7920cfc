package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniedit/checkout/internal/model"
	"go.uber.org/zap"
)

type ctxKey struct{}

func testOrder() *model.Order {
	return &model.Order{ID: uuid.New(), Number: "ORD-1", BasketID: uuid.New(), TotalInclTax: decimal.RequireFromString("10.00")}
}

func TestBus_Publish(t *testing.T) {
	t.Run("handlers run in registration order", func(t *testing.T) {
		bus := NewBus(zap.NewNop())
		var calls []string
		for _, name := range []string{"first", "second", "third"} {
			name := name
			bus.Register(NewHandlerFunc([]string{OrderPlacedType}, func(context.Context, Event) error {
				calls = append(calls, name)
				return nil
			}))
		}

		require.NoError(t, bus.Publish(context.Background(), NewOrderPlacedEvent(testOrder(), nil, nil)))
		assert.Equal(t, []string{"first", "second", "third"}, calls)
	})

	t.Run("events reach only their handlers", func(t *testing.T) {
		bus := NewBus(zap.NewNop())
		var seen []string
		record := func(_ context.Context, e Event) error {
			seen = append(seen, e.EventType())
			return nil
		}
		bus.Register(NewHandlerFunc([]string{OrderPaymentAuthorizedType, OrderPaymentDeclinedType}, record))

		ctx := context.Background()
		o := testOrder()
		require.NoError(t, bus.Publish(ctx, NewOrderPlacedEvent(o, nil, nil)))
		require.NoError(t, bus.Publish(ctx, NewOrderPaymentDeclinedEvent(o, "s")))
		require.NoError(t, bus.Publish(ctx, NewOrderPaymentAuthorizedEvent(o, "s")))
		assert.Equal(t, []string{OrderPaymentDeclinedType, OrderPaymentAuthorizedType}, seen)
	})

	t.Run("a failing handler does not stop the rest", func(t *testing.T) {
		bus := NewBus(zap.NewNop())
		var ran bool
		bus.Register(NewHandlerFunc([]string{OrderPlacedType}, func(context.Context, Event) error {
			return errors.New("boom")
		}))
		bus.Register(NewHandlerFunc([]string{OrderPlacedType}, func(context.Context, Event) error {
			ran = true
			return nil
		}))

		assert.NoError(t, bus.Publish(context.Background(), NewOrderPlacedEvent(testOrder(), nil, nil)))
		assert.True(t, ran)
	})

	t.Run("handlers receive the publisher context", func(t *testing.T) {
		bus := NewBus(zap.NewNop())
		var got interface{}
		bus.Register(NewHandlerFunc([]string{OrderPlacedType}, func(ctx context.Context, _ Event) error {
			got = ctx.Value(ctxKey{})
			return nil
		}))

		ctx := context.WithValue(context.Background(), ctxKey{}, "tx")
		require.NoError(t, bus.Publish(ctx, NewOrderPlacedEvent(testOrder(), nil, nil)))
		assert.Equal(t, "tx", got)
	})

	t.Run("no handlers", func(t *testing.T) {
		bus := NewBus(zap.NewNop())
		assert.NoError(t, bus.Publish(context.Background(), NewOrderPlacedEvent(testOrder(), nil, nil)))
	})

	t.Run("rejects values that are not events", func(t *testing.T) {
		bus := NewBus(zap.NewNop())
		assert.Error(t, bus.Publish(context.Background(), "order_placed"))
	})
}

func TestEvents_Constructors(t *testing.T) {
	o := testOrder()
	score := 0.9

	placed := NewOrderPlacedEvent(o, nil, &score)
	assert.Equal(t, OrderPlacedType, placed.EventType())
	assert.Equal(t, o.ID, placed.AggregateID())
	assert.Equal(t, "Order", placed.AggregateType())
	assert.NotEqual(t, uuid.Nil, placed.EventID())
	assert.False(t, placed.OccurredAt().IsZero())

	basket := &model.Basket{ID: uuid.New()}
	pre := NewPreCalculateTotalEvent(basket, nil, decimal.Zero)
	assert.Equal(t, PreCalculateTotalType, pre.EventType())
	assert.Equal(t, basket.ID, pre.AggregateID())
	assert.Equal(t, "Basket", pre.AggregateType())

	declined := NewOrderPaymentDeclinedEvent(o, "session-1")
	assert.Equal(t, "session-1", declined.SessionID)
}
