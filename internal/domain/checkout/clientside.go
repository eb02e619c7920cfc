package checkout

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/uniedit/checkout/internal/model"
)

// ClientSideCard is a card payment run by a provider-hosted SDK in the client.
// The client reports the SDK result to the clientside authorize callback.
type ClientSideCard struct {
	methodBase
	processor   string
	clientToken string
	sdkURL      string
}

// NewClientSideCard creates the client-side card payment method.
// Recognised kwargs: payment_processor, client_token, sdk_url.
func NewClientSideCard(deps MethodDeps, kwargs map[string]any) *ClientSideCard {
	return &ClientSideCard{
		methodBase:  newMethodBase("client-side-card", "Client-Side Card", deps),
		processor:   stringKwarg(kwargs, "payment_processor", DefaultClientSideProvider),
		clientToken: stringKwarg(kwargs, "client_token", DefaultClientSideToken),
		sdkURL:      stringKwarg(kwargs, "sdk_url", DefaultClientSideSDKURL),
	}
}

// RecordPayment returns the data the client needs to start the SDK.
func (m *ClientSideCard) RecordPayment(_ context.Context, _ RequestContext, order *model.Order, methodKey string, amount *decimal.Decimal, _ string) (model.PaymentState, error) {
	if amount == nil {
		return model.PaymentState{}, ErrAmountRequired
	}
	transactionID, err := m.signMethodKey(methodKey)
	if err != nil {
		return model.PaymentState{}, err
	}
	return model.NewClientSidePaymentRequired(*amount, m.processor, map[string]any{
		"amount":           amount.StringFixed(2),
		"token":            m.clientToken,
		"sdk_url":          m.sdkURL,
		"reference_number": order.Number,
		"transaction_id":   transactionID,
	}), nil
}

// RecordSuccessfulAuthorization allocates the authorized amount.
func (m *ClientSideCard) RecordSuccessfulAuthorization(ctx context.Context, order *model.Order, amount decimal.Decimal, reference string) (model.PaymentState, error) {
	return m.recordAuthorization(ctx, order, amount, reference)
}

// RecordDeclinedAuthorization records the declined attempt.
func (m *ClientSideCard) RecordDeclinedAuthorization(ctx context.Context, order *model.Order, amount decimal.Decimal, reference string) (model.PaymentState, error) {
	return m.recordDeclined(ctx, order, amount, reference)
}

var (
	_ PaymentMethod         = (*ClientSideCard)(nil)
	_ AuthorizationRecorder = (*ClientSideCard)(nil)
)
