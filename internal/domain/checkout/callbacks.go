package checkout

import (
	"context"
	"fmt"

	"github.com/uniedit/checkout/internal/model"
	"go.uber.org/zap"
)

// callbackTarget is the state a callback is about to move.
type callbackTarget struct {
	method  PaymentMethod
	order   *model.Order
	key     string
	prior   model.PaymentState
	session *model.CheckoutSession
}

func (d *checkoutDomain) RequireAuthorization(ctx context.Context, req RequestContext, input *CallbackInput) (model.PaymentState, error) {
	target, err := d.loadCallback(ctx, req, input)
	if err != nil {
		return model.PaymentState{}, err
	}
	poster, ok := target.method.(AuthorizationPoster)
	if !ok {
		return model.PaymentState{}, fmt.Errorf("%w: %s", ErrMethodNotAuthorizable, target.method.Code())
	}

	return d.applyCallback(ctx, req, target, func(ctx context.Context) (model.PaymentState, error) {
		if input.Deny {
			return model.NewPaymentState(model.PaymentMethodDeclined, target.prior.Amount, nil), nil
		}
		return poster.RequireAuthorizationPost(target.order, target.key, target.prior.Amount)
	})
}

func (d *checkoutDomain) CompleteAuthorization(ctx context.Context, req RequestContext, input *CallbackInput) (model.PaymentState, error) {
	target, err := d.loadCallback(ctx, req, input)
	if err != nil {
		return model.PaymentState{}, err
	}
	recorder, ok := target.method.(AuthorizationRecorder)
	if !ok {
		return model.PaymentState{}, fmt.Errorf("%w: %s", ErrMethodNotAuthorizable, target.method.Code())
	}

	return d.applyCallback(ctx, req, target, func(ctx context.Context) (model.PaymentState, error) {
		if input.Deny {
			return recorder.RecordDeclinedAuthorization(ctx, target.order, target.prior.Amount, input.Reference)
		}
		return recorder.RecordSuccessfulAuthorization(ctx, target.order, target.prior.Amount, input.Reference)
	})
}

// loadCallback verifies a callback and finds the state it refers to.
func (d *checkoutDomain) loadCallback(ctx context.Context, req RequestContext, input *CallbackInput) (*callbackTarget, error) {
	method, ok := d.registry.Method(input.MethodCode)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, input.MethodCode)
	}

	key, err := d.signer.Unsign(TransactionIDSalt, input.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("%w: transaction_id", ErrInvalidToken)
	}

	o, err := d.orderDB.GetByNumber(ctx, input.OrderNumber)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}

	session, err := d.store.Session(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if session.OrderID == nil || *session.OrderID != o.ID {
		return nil, ErrStateNotFound
	}
	prior, ok := session.PaymentStates[key]
	if !ok {
		return nil, ErrStateNotFound
	}
	if prior.MethodCode != "" && prior.MethodCode != method.Code() {
		return nil, fmt.Errorf("%w: %s did not record %s", ErrStateNotFound, method.Code(), key)
	}
	if !input.Amount.Equal(prior.Amount) {
		return nil, NewValidationError("amount", "Amount does not match the pending payment.")
	}

	return &callbackTarget{
		method:  method,
		order:   o,
		key:     key,
		prior:   prior,
		session: session,
	}, nil
}

// applyCallback computes the next state of the target inside a transaction,
// reconciles the order against the updated mapping and saves the session.
func (d *checkoutDomain) applyCallback(
	ctx context.Context,
	req RequestContext,
	target *callbackTarget,
	next func(ctx context.Context) (model.PaymentState, error),
) (model.PaymentState, error) {
	var (
		state   model.PaymentState
		states  States
		outcome Outcome
	)
	err := d.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		locked, err := d.orderDB.LockByID(ctx, target.order.ID)
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}
		if locked == nil {
			return ErrOrderNotFound
		}
		target.order = locked

		state, err = next(ctx)
		if err != nil {
			return err
		}
		state.MethodCode = target.method.Code()
		if !target.prior.Status.CanTransitionTo(state.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, target.prior.Status, state.Status)
		}

		updated := States(target.session.PaymentStates).Clone()
		updated[target.key] = state
		states, outcome, err = d.reconciler.Reconcile(ctx, req, target.order, updated)
		return err
	})
	if err != nil {
		return model.PaymentState{}, err
	}

	if err := d.saveSession(ctx, req, target.session, target.order, states, outcome); err != nil {
		return model.PaymentState{}, err
	}
	d.forgetStagedData(ctx, target.order, outcome)

	d.logger.Info("payment method state updated",
		zap.String("order_number", target.order.Number),
		zap.String("method_key", target.key),
		zap.String("status", state.Status.String()),
		zap.String("order_status", target.order.Status),
	)
	return states[target.key], nil
}
