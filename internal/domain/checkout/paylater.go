package checkout

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/uniedit/checkout/internal/model"
	"go.uber.org/zap"
)

// PayLater places a zero-amount placeholder. The real charge happens when the
// deferred payment is completed with another method.
type PayLater struct {
	methodBase
}

// NewPayLater creates the pay-later payment method.
func NewPayLater(deps MethodDeps) *PayLater {
	return &PayLater{methodBase: newMethodBase("pay-later", "Pay Later", deps)}
}

// RecordPayment creates the placeholder source and returns Deferred with a zero amount.
func (m *PayLater) RecordPayment(ctx context.Context, _ RequestContext, order *model.Order, methodKey string, amount *decimal.Decimal, reference string) (model.PaymentState, error) {
	if amount == nil {
		return model.PaymentState{}, ErrAmountRequired
	}

	source, err := m.getSource(ctx, order, reference)
	if err != nil {
		return model.PaymentState{}, err
	}
	if err := m.sources.Save(ctx, source); err != nil {
		return model.PaymentState{}, fmt.Errorf("save payment source: %w", err)
	}

	m.logger.Info("deferred payment",
		zap.String("order_number", order.Number),
		zap.String("method_key", methodKey),
		zap.String("requested", amount.StringFixed(2)),
	)
	return model.NewPaymentState(model.PaymentMethodDeferred, decimal.Zero, &source.ID), nil
}

var _ PaymentMethod = (*PayLater)(nil)
