package events

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uniedit/checkout/internal/model"
)

// Checkout lifecycle signal types, emitted in this order during a checkout.
const (
	PreCalculateTotalType      = "pre_calculate_total"
	OrderPlacedType            = "order_placed"
	OrderPaymentAuthorizedType = "order_payment_authorized"
	OrderPaymentDeclinedType   = "order_payment_declined"
	OrderStatusChangedType     = "order_status_changed"
)

// PreCalculateTotalEvent fires during validation, before the order total is computed.
type PreCalculateTotalEvent struct {
	BaseEvent

	Basket          *model.Basket   `json:"basket"`
	ShippingAddress *model.Address  `json:"shipping_address,omitempty"`
	ShippingCharge  decimal.Decimal `json:"shipping_charge"`
}

// NewPreCalculateTotalEvent creates a new PreCalculateTotalEvent.
func NewPreCalculateTotalEvent(basket *model.Basket, shippingAddress *model.Address, shippingCharge decimal.Decimal) *PreCalculateTotalEvent {
	return &PreCalculateTotalEvent{
		BaseEvent:       NewBaseEvent(PreCalculateTotalType, basket.ID, "Basket"),
		Basket:          basket,
		ShippingAddress: shippingAddress,
		ShippingCharge:  shippingCharge,
	}
}

// OrderPlacedEvent fires once an order is created or updated from a basket.
type OrderPlacedEvent struct {
	BaseEvent

	Order          *model.Order `json:"order"`
	UserID         *uuid.UUID   `json:"user_id,omitempty"`
	RecaptchaScore *float64     `json:"recaptcha_score,omitempty"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent.
func NewOrderPlacedEvent(order *model.Order, userID *uuid.UUID, recaptchaScore *float64) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseEvent:      NewBaseEvent(OrderPlacedType, order.ID, "Order"),
		Order:          order,
		UserID:         userID,
		RecaptchaScore: recaptchaScore,
	}
}

// OrderPaymentAuthorizedEvent fires when every payment method of an order completed.
type OrderPaymentAuthorizedEvent struct {
	BaseEvent

	Order     *model.Order `json:"order"`
	SessionID string       `json:"session_id"`
}

// NewOrderPaymentAuthorizedEvent creates a new OrderPaymentAuthorizedEvent.
func NewOrderPaymentAuthorizedEvent(order *model.Order, sessionID string) *OrderPaymentAuthorizedEvent {
	return &OrderPaymentAuthorizedEvent{
		BaseEvent: NewBaseEvent(OrderPaymentAuthorizedType, order.ID, "Order"),
		Order:     order,
		SessionID: sessionID,
	}
}

// OrderPaymentDeclinedEvent fires when any payment method of an order was declined.
type OrderPaymentDeclinedEvent struct {
	BaseEvent

	Order     *model.Order `json:"order"`
	SessionID string       `json:"session_id"`
}

// NewOrderPaymentDeclinedEvent creates a new OrderPaymentDeclinedEvent.
func NewOrderPaymentDeclinedEvent(order *model.Order, sessionID string) *OrderPaymentDeclinedEvent {
	return &OrderPaymentDeclinedEvent{
		BaseEvent: NewBaseEvent(OrderPaymentDeclinedType, order.ID, "Order"),
		Order:     order,
		SessionID: sessionID,
	}
}

// OrderStatusChangedEvent fires on every order status transition.
type OrderStatusChangedEvent struct {
	BaseEvent

	Order     *model.Order `json:"order"`
	OldStatus string       `json:"old_status"`
	NewStatus string       `json:"new_status"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent.
func NewOrderStatusChangedEvent(order *model.Order, oldStatus, newStatus string) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseEvent: NewBaseEvent(OrderStatusChangedType, order.ID, "Order"),
		Order:     order,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}
}
