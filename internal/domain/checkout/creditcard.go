package checkout

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/uniedit/checkout/internal/model"
)

// Default callback URLs for the card methods.
const (
	DefaultGetTokenURL        = "/api/v1/creditcards/get-token/"
	DefaultAuthorizeURL       = "/api/v1/creditcards/authorize/"
	DefaultClientSideURL      = "/api/v1/clientside/authorize/"
	DefaultClientSideSDKURL   = "https://sandbox.example.com/sdk.js"
	DefaultClientSideToken    = "sandbox-client-token-xyz"
	DefaultClientSideProvider = "sandbox-processor"
)

// CreditCard is an off-site card payment. The client first posts to the
// get-token URL, then to the authorize URL, which reports the outcome back.
type CreditCard struct {
	methodBase
	getTokenURL  string
	authorizeURL string
}

// NewCreditCard creates the credit card payment method.
// Recognised kwargs: get_token_url, authorize_url.
func NewCreditCard(deps MethodDeps, kwargs map[string]any) *CreditCard {
	return &CreditCard{
		methodBase:   newMethodBase("credit-card", "Credit Card", deps),
		getTokenURL:  stringKwarg(kwargs, "get_token_url", DefaultGetTokenURL),
		authorizeURL: stringKwarg(kwargs, "authorize_url", DefaultAuthorizeURL),
	}
}

// RecordPayment asks the client to post the card to the get-token URL.
func (m *CreditCard) RecordPayment(_ context.Context, _ RequestContext, order *model.Order, methodKey string, amount *decimal.Decimal, _ string) (model.PaymentState, error) {
	if amount == nil {
		return model.PaymentState{}, ErrAmountRequired
	}
	return m.formPost(order, methodKey, *amount, "get-token", m.getTokenURL)
}

// RequireAuthorizationPost asks the client to post to the authorize URL.
func (m *CreditCard) RequireAuthorizationPost(order *model.Order, methodKey string, amount decimal.Decimal) (model.PaymentState, error) {
	return m.formPost(order, methodKey, amount, "authorize", m.authorizeURL)
}

// RecordSuccessfulAuthorization allocates the authorized amount.
func (m *CreditCard) RecordSuccessfulAuthorization(ctx context.Context, order *model.Order, amount decimal.Decimal, reference string) (model.PaymentState, error) {
	return m.recordAuthorization(ctx, order, amount, reference)
}

// RecordDeclinedAuthorization records the declined attempt.
func (m *CreditCard) RecordDeclinedAuthorization(ctx context.Context, order *model.Order, amount decimal.Decimal, reference string) (model.PaymentState, error) {
	return m.recordDeclined(ctx, order, amount, reference)
}

func (m *CreditCard) formPost(order *model.Order, methodKey string, amount decimal.Decimal, name, url string) (model.PaymentState, error) {
	transactionID, err := m.signMethodKey(methodKey)
	if err != nil {
		return model.PaymentState{}, err
	}
	fields := []model.FormField{
		{Key: "amount", Value: amount.StringFixed(2)},
		{Key: "reference_number", Value: order.Number},
		{Key: "transaction_id", Value: transactionID},
	}
	return model.NewFormPostRequired(amount, name, url, fields), nil
}

var (
	_ PaymentMethod         = (*CreditCard)(nil)
	_ AuthorizationPoster   = (*CreditCard)(nil)
	_ AuthorizationRecorder = (*CreditCard)(nil)
)
