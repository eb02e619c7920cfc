package checkout

import (
	"github.com/shopspring/decimal"
	"github.com/uniedit/checkout/internal/model"
)

// States maps method keys to their payment state.
type States map[string]model.PaymentState

// Clone returns a shallow copy of the mapping.
func (s States) Clone() States {
	out := make(States, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// WithoutConsumed returns the states that are not Consumed.
func (s States) WithoutConsumed() States {
	out := make(States, len(s))
	for k, v := range s {
		if v.Status != model.PaymentMethodConsumed {
			out[k] = v
		}
	}
	return out
}

// Total sums the amounts of all states.
func (s States) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range s {
		total = total.Add(v.Amount)
	}
	return total
}

// ToResponse converts the mapping to its client-facing view, nil when empty.
func (s States) ToResponse() map[string]model.PaymentStateResponse {
	if len(s) == 0 {
		return nil
	}
	out := make(map[string]model.PaymentStateResponse, len(s))
	for k, v := range s {
		out[k] = v.ToResponse()
	}
	return out
}
