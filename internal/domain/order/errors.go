package order

import "errors"

// Domain errors for order.
var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrInvalidStatus  = errors.New("invalid order status")
	ErrBasketNotFound = errors.New("basket not found")
)

// Note: ErrInvalidTransition is defined in status.go
