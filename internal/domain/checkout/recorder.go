package checkout

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/uniedit/checkout/internal/model"
	"go.uber.org/zap"
)

// RecordDecision is what the recorder did for one method key.
type RecordDecision string

const (
	DecisionRecycle  RecordDecision = "recycle"
	DecisionRecharge RecordDecision = "void_and_recharge"
	DecisionFresh    RecordDecision = "fresh"
)

// DecisionObserver is notified of every recorder decision.
type DecisionObserver func(methodType string, decision RecordDecision)

// Recorder turns a payment split into payment states, reusing the previous
// attempt's states where the amount did not change.
type Recorder struct {
	observe DecisionObserver
	logger  *zap.Logger
}

// NewRecorder creates a payment recorder. observe may be nil.
func NewRecorder(observe DecisionObserver, logger *zap.Logger) *Recorder {
	return &Recorder{observe: observe, logger: logger}
}

// Record resolves every method of split against the order.
//
// Methods with an explicit amount are resolved first, then the pay-balance
// method is charged whatever remains of the order total. The returned mapping
// replaces previous entirely.
func (r *Recorder) Record(
	ctx context.Context,
	req RequestContext,
	previous States,
	order *model.Order,
	methods map[string]PaymentMethod,
	split PaymentSplit,
) (States, error) {
	balance := order.TotalInclTax
	next := make(States, len(split))

	var specified, payBalance []string
	for _, key := range split.Keys() {
		if split[key].PayBalance {
			payBalance = append(payBalance, key)
		} else {
			specified = append(specified, key)
		}
	}

	record := func(key string, payment MethodPayment) error {
		method, ok := methods[payment.MethodType]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownMethod, payment.MethodType)
		}

		state, err := r.resolve(ctx, req, previous, order, methods, method, key, payment)
		if err != nil {
			return err
		}
		next[key] = state
		balance = balance.Sub(state.Amount)
		return nil
	}

	for _, key := range specified {
		if err := record(key, split[key]); err != nil {
			return nil, err
		}
	}

	for _, key := range payBalance {
		payment := split[key]
		remainder := balance
		if remainder.IsNegative() {
			r.logger.Warn("payment balance is negative, charging zero",
				zap.String("order_number", order.Number),
				zap.String("method_key", key),
				zap.String("balance", remainder.StringFixed(2)),
			)
			remainder = decimal.Zero
		}
		payment.Amount = &remainder
		if err := record(key, payment); err != nil {
			return nil, err
		}
	}

	return next, nil
}

func (r *Recorder) resolve(
	ctx context.Context,
	req RequestContext,
	previous States,
	order *model.Order,
	methods map[string]PaymentMethod,
	method PaymentMethod,
	key string,
	payment MethodPayment,
) (model.PaymentState, error) {
	if prev, ok := previous[key]; ok && prev.Status.IsReusable() {
		sameMethod := prev.MethodCode == "" || prev.MethodCode == method.Code()
		if sameMethod && payment.Amount != nil && prev.Amount.Equal(*payment.Amount) {
			r.decided(order, key, payment, DecisionRecycle)
			return prev, nil
		}

		// The previous state is voided by whichever method produced it.
		voider := method
		if !sameMethod {
			voider, ok = methods[prev.MethodCode]
			if !ok {
				return model.PaymentState{}, fmt.Errorf("void %s payment: %w: %q", key, ErrUnknownMethod, prev.MethodCode)
			}
		}
		if err := voider.VoidExistingPayment(ctx, req, order, key, prev); err != nil {
			return model.PaymentState{}, fmt.Errorf("void %s payment: %w", key, err)
		}
		r.decided(order, key, payment, DecisionRecharge)
	} else {
		r.decided(order, key, payment, DecisionFresh)
	}

	state, err := method.RecordPayment(ctx, req, order, key, payment.Amount, payment.Reference)
	if err != nil {
		return model.PaymentState{}, fmt.Errorf("record %s payment: %w", key, err)
	}
	state.MethodCode = method.Code()
	return state, nil
}

func (r *Recorder) decided(order *model.Order, key string, payment MethodPayment, decision RecordDecision) {
	r.logger.Debug("payment record decision",
		zap.String("order_number", order.Number),
		zap.String("method_key", key),
		zap.String("method_type", payment.MethodType),
		zap.String("decision", string(decision)),
	)
	if r.observe != nil {
		r.observe(payment.MethodType, decision)
	}
}
