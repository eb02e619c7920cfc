package checkout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

const maxReferenceLength = 128

// MethodPayment is the validated instruction for one method key.
type MethodPayment struct {
	MethodType string
	PayBalance bool
	// Amount is nil for the pay-balance method until the recorder assigns the remainder.
	Amount    *decimal.Decimal
	Reference string
}

// PaymentSplit maps method keys to their payment instruction. Only enabled entries are kept.
type PaymentSplit map[string]MethodPayment

// Keys returns the method keys in sorted order.
func (s PaymentSplit) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SpecifiedTotal sums the amounts of the methods that do not pay the balance.
func (s PaymentSplit) SpecifiedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s {
		if !p.PayBalance && p.Amount != nil {
			total = total.Add(*p.Amount)
		}
	}
	return total
}

// rawMethodPayment is the wire form of one payment entry.
type rawMethodPayment struct {
	MethodType *string          `json:"method_type"`
	Enabled    bool             `json:"enabled"`
	PayBalance *bool            `json:"pay_balance"`
	Amount     *decimal.Decimal `json:"amount"`
	Reference  string           `json:"reference"`
}

// ParsePaymentSplit decodes and validates the payment block of a checkout request.
//
// Each entry is dispatched on its method_type, which defaults to the method
// key. Entries whose defaulted type is not a permitted method are ignored;
// an explicit unknown method_type is rejected. At least one and at most
// maxMethods (0 means unlimited) entries may be enabled, and exactly one of
// them must pay the balance.
func ParsePaymentSplit(raw map[string]json.RawMessage, methods map[string]PaymentMethod, maxMethods int) (PaymentSplit, error) {
	verr := &ValidationError{}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	split := make(PaymentSplit)
	for _, key := range keys {
		field := "payment." + key

		var entry rawMethodPayment
		dec := json.NewDecoder(bytes.NewReader(raw[key]))
		if err := dec.Decode(&entry); err != nil {
			verr.Add(field, "Invalid payment method data.")
			continue
		}

		methodType := key
		if entry.MethodType != nil {
			methodType = *entry.MethodType
			if _, ok := methods[methodType]; !ok {
				verr.Add(field, fmt.Sprintf("%q is not a valid choice.", methodType))
				continue
			}
		} else if _, ok := methods[methodType]; !ok {
			continue
		}

		if !entry.Enabled {
			continue
		}

		if len(entry.Reference) > maxReferenceLength {
			verr.Add(field, fmt.Sprintf("Ensure reference has no more than %d characters.", maxReferenceLength))
			continue
		}

		payment := MethodPayment{
			MethodType: methodType,
			PayBalance: entry.PayBalance == nil || *entry.PayBalance,
			Reference:  entry.Reference,
		}
		if !payment.PayBalance {
			if entry.Amount == nil || !entry.Amount.IsPositive() {
				verr.Add(field, "Amount must be greater then 0.00 or pay_balance must be enabled.")
				continue
			}
			if !entry.Amount.Equal(entry.Amount.Round(2)) {
				verr.Add(field, "Ensure that there are no more than 2 decimal places.")
				continue
			}
			amount := *entry.Amount
			payment.Amount = &amount
		}
		split[key] = payment
	}
	if verr.HasErrors() {
		return nil, verr
	}

	if len(split) == 0 {
		return nil, NewValidationError("payment", "At least one payment method must be enabled.")
	}
	if maxMethods > 0 && len(split) > maxMethods {
		return nil, NewValidationError("payment", fmt.Sprintf("No more than %d payment method can be enabled.", maxMethods))
	}

	balance := 0
	for _, p := range split {
		if p.PayBalance {
			balance++
		}
	}
	switch {
	case balance > 1:
		return nil, NewValidationError("payment", "Can not set pay_balance flag on multiple payment methods.")
	case balance < 1:
		return nil, NewValidationError("payment", "Must set pay_balance flag on at least one payment method.")
	}
	return split, nil
}
