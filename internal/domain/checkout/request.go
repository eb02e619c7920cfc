package checkout

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uniedit/checkout/internal/model"
)

// User is the authenticated requester.
type User struct {
	ID      uuid.UUID
	Email   string
	IsStaff bool
}

// RequestContext carries per-request data the checkout flow depends on.
type RequestContext struct {
	SessionID      string
	User           *User
	RecaptchaScore *float64
}

// IsAuthenticated reports whether a user is attached to the request.
func (r RequestContext) IsAuthenticated() bool {
	return r.User != nil
}

// UserID returns the requester's id, or nil for anonymous requests.
func (r RequestContext) UserID() *uuid.UUID {
	if r.User == nil {
		return nil
	}
	id := r.User.ID
	return &id
}

// CheckoutInput is a checkout submission.
type CheckoutInput struct {
	BasketID           uuid.UUID
	BasketToken        string
	GuestEmail         string
	Total              *decimal.Decimal
	ShippingMethodCode string
	ShippingCharge     ShippingCharge
	ShippingAddress    *model.Address
	BillingAddress     *model.Address
	Payment            RawPayment
}

// BasketRef names a basket by id, or by signed token.
type BasketRef struct {
	ID    uuid.UUID
	Token string
}

// CheckoutDataInput stages checkout data for a basket.
type CheckoutDataInput struct {
	Basket BasketRef
	Data   CheckoutData
}

// RawPayment is the undecoded payment block keyed by method key.
type RawPayment map[string]json.RawMessage

// DeferredPaymentInput completes the payment of an order placed with a deferred method.
type DeferredPaymentInput struct {
	OrderToken string
	Payment    RawPayment
}

// CallbackInput is an out-of-band report from a multi-step payment method.
type CallbackInput struct {
	MethodCode    string
	OrderNumber   string
	TransactionID string
	Amount        decimal.Decimal
	Reference     string
	Deny          bool
}

// ShippingCharge is the shipping price chosen by the client.
type ShippingCharge struct {
	Currency string
	ExclTax  decimal.Decimal
	Tax      decimal.Decimal
}

// InclTax returns the charge including tax.
func (c ShippingCharge) InclTax() decimal.Decimal {
	return c.ExclTax.Add(c.Tax)
}

// CheckoutResult is returned by PlaceOrder and CompleteDeferredPayment.
type CheckoutResult struct {
	Order      *model.Order
	States     States
	OrderToken string
}

// PaymentStatesResult is the aggregate view of an order's payment progress.
type PaymentStatesResult struct {
	OrderStatus string
	States      States
}
