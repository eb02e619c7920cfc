package order

import (
	"errors"

	"github.com/uniedit/checkout/internal/model"
)

// OrderStatus represents the status of an order.
type OrderStatus string

const (
	StatusPending         OrderStatus = model.OrderStatusPending
	StatusPaymentDeclined OrderStatus = model.OrderStatusPaymentDeclined
	StatusAuthorized      OrderStatus = model.OrderStatusAuthorized
	StatusShipped         OrderStatus = model.OrderStatusShipped
	StatusCanceled        OrderStatus = model.OrderStatusCanceled
)

// String returns the string representation of the status.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid order status.
func (s OrderStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal returns true if the status is a terminal state.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusShipped || s == StatusCanceled
}

// transitions is the order status pipeline.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:         {StatusPaymentDeclined, StatusAuthorized, StatusCanceled},
	StatusPaymentDeclined: {StatusAuthorized, StatusCanceled},
	StatusAuthorized:      {StatusShipped, StatusCanceled},
	StatusShipped:         {}, // Terminal state
	StatusCanceled:        {}, // Terminal state
}

// CanTransitionTo checks if a transition from the current status to target is valid.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, a := range transitions[s] {
		if a == target {
			return true
		}
	}
	return false
}

// AllowedTransitions returns all allowed transitions from the current status.
func (s OrderStatus) AllowedTransitions() []OrderStatus {
	allowed := transitions[s]
	result := make([]OrderStatus, len(allowed))
	copy(result, allowed)
	return result
}

// ErrInvalidTransition is returned when a state transition is not allowed.
var ErrInvalidTransition = errors.New("invalid state transition")
