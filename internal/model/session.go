package model

import "github.com/google/uuid"

// CheckoutSession is the server-side state kept for one checkout session.
type CheckoutSession struct {
	OrderID       *uuid.UUID              `json:"order_id,omitempty"`
	BasketID      *uuid.UUID              `json:"basket_id,omitempty"`
	PaymentStates map[string]PaymentState `json:"payment_states,omitempty"`
}

// NewCheckoutSession returns an empty session.
func NewCheckoutSession() *CheckoutSession {
	return &CheckoutSession{PaymentStates: make(map[string]PaymentState)}
}
