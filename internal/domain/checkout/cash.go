package checkout

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/uniedit/checkout/internal/model"
	"go.uber.org/zap"
)

// Cash records a payment that is collected on the spot.
// It allocates and debits the amount in one step.
type Cash struct {
	methodBase
}

// NewCash creates the cash payment method.
func NewCash(deps MethodDeps) *Cash {
	return &Cash{methodBase: newMethodBase("cash", "Cash", deps)}
}

// RecordPayment moves the source's allocated and debited totals to amount.
func (m *Cash) RecordPayment(ctx context.Context, _ RequestContext, order *model.Order, methodKey string, amount *decimal.Decimal, reference string) (model.PaymentState, error) {
	if amount == nil {
		return model.PaymentState{}, ErrAmountRequired
	}

	source, err := m.getSource(ctx, order, reference)
	if err != nil {
		return model.PaymentState{}, err
	}

	// Both deltas are signed so a lowered amount moves the source down to it.
	var txns []*model.PaymentTransaction
	if toAllocate := amount.Sub(source.AmountAllocated); !toAllocate.IsZero() {
		txns = append(txns, source.Allocate(toAllocate, reference, model.TxnStatusAccepted))
	}
	toDebit := amount.Sub(source.AmountDebited)
	if !toDebit.IsZero() {
		txns = append(txns, source.Debit(toDebit, reference, model.TxnStatusAccepted))
	}
	if err := m.sources.Save(ctx, source, txns...); err != nil {
		return model.PaymentState{}, fmt.Errorf("save payment source: %w", err)
	}

	if err := m.makeEvent(ctx, model.TxnTypeDebit, order, toDebit, reference); err != nil {
		return model.PaymentState{}, err
	}

	m.logger.Info("recorded cash payment",
		zap.String("order_number", order.Number),
		zap.String("method_key", methodKey),
		zap.String("amount", source.AmountDebited.StringFixed(2)),
	)
	return model.NewPaymentState(model.PaymentMethodComplete, source.AmountDebited, &source.ID), nil
}

var _ PaymentMethod = (*Cash)(nil)
