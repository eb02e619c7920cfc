package requestctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestFields(t *testing.T) {
	t.Run("empty context", func(t *testing.T) {
		assert.Empty(t, Fields(context.Background()))
		assert.Equal(t, "", CheckoutSession(context.Background()))
	})

	t.Run("request id and session", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-1")
		ctx = WithCheckoutSession(ctx, "sess-1")

		assert.Equal(t, "req-1", RequestID(ctx))
		assert.Equal(t, "sess-1", CheckoutSession(ctx))
		assert.Equal(t, []zap.Field{
			zap.String("request_id", "req-1"),
			zap.String("checkout_session", "sess-1"),
		}, Fields(ctx))
	})
}
