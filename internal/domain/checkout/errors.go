package checkout

import (
	"errors"
	"sort"
	"strings"
)

// Domain errors for checkout.
var (
	ErrValidation             = errors.New("checkout validation failed")
	ErrAmountRequired         = errors.New("amount must be specified")
	ErrUnknownMethod          = errors.New("unknown payment method")
	ErrUnknownPermission      = errors.New("unknown payment method permission")
	ErrNoMethodsPermitted     = errors.New("no payment methods are permitted")
	ErrOrderExists            = errors.New("an non-declined order already exists for this basket")
	ErrMultipleOrders         = errors.New("multiple orders exist for this basket")
	ErrDuplicateOrderNumber   = errors.New("there is already an order with this number")
	ErrOrderNotDeclined       = errors.New("can not update an order that isn't in payment declined state")
	ErrOrderNotFound          = errors.New("order not found")
	ErrBasketNotFound         = errors.New("basket not found")
	ErrNoSessionOrder         = errors.New("no order in checkout session")
	ErrStateNotFound          = errors.New("payment method state not found")
	ErrInvalidStateTransition = errors.New("invalid payment method state transition")
	ErrMethodNotAuthorizable  = errors.New("payment method does not take authorization callbacks")
	ErrInvalidToken           = errors.New("invalid token")
	ErrDataCacheDisabled      = errors.New("checkout data staging is disabled")
)

// ValidationError carries client-correctable problems keyed by field.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates a ValidationError with a single message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

// Add appends a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors reports whether any message was added.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Merge adds every message of other.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for field, msgs := range other.Fields {
		for _, m := range msgs {
			e.Add(field, m)
		}
	}
}
