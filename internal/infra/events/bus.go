package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/uniedit/checkout/internal/utils/requestctx"
	"go.uber.org/zap"
)

// Bus is a synchronous event bus for checkout lifecycle signals.
// Handlers run in registration order on the publishing goroutine, with the
// publisher's context, so database work they do joins any open transaction.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

// NewBus creates a new event bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Register registers a handler for the events it handles.
func (b *Bus) Register(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, eventType := range handler.Handles() {
		b.handlers[eventType] = append(b.handlers[eventType], handler)
		b.logger.Debug("registered event handler",
			zap.String("event_type", eventType),
		)
	}
}

// Publish dispatches an event to all registered handlers.
// A failing handler is logged and the remaining handlers still run.
// Publish only fails when event does not implement Event.
func (b *Bus) Publish(ctx context.Context, event interface{}) error {
	ev, ok := event.(Event)
	if !ok {
		return fmt.Errorf("publish: %T is not an event", event)
	}

	b.mu.RLock()
	handlers := b.handlers[ev.EventType()]
	b.mu.RUnlock()

	log := b.logger.With(requestctx.Fields(ctx)...)
	if len(handlers) == 0 {
		log.Debug("no handlers registered for event",
			zap.String("event_type", ev.EventType()),
			zap.String("event_id", ev.EventID().String()),
		)
		return nil
	}

	log.Info("publishing event",
		zap.String("event_type", ev.EventType()),
		zap.String("event_id", ev.EventID().String()),
		zap.String("aggregate_id", ev.AggregateID().String()),
		zap.Int("handler_count", len(handlers)),
	)

	for _, handler := range handlers {
		if err := handler.Handle(ctx, ev); err != nil {
			log.Error("event handler failed",
				zap.String("event_type", ev.EventType()),
				zap.String("event_id", ev.EventID().String()),
				zap.Error(err),
			)
		}
	}
	return nil
}
