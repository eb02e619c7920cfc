package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uniedit/checkout/internal/domain/order"
	"github.com/uniedit/checkout/internal/infra/events"
	"github.com/uniedit/checkout/internal/model"
	"github.com/uniedit/checkout/internal/port/outbound"
	"go.uber.org/zap"
)

// Outcome is the aggregate result of an order's payment states.
type Outcome string

const (
	OutcomePending    Outcome = "pending"
	OutcomeDeclined   Outcome = "declined"
	OutcomeAuthorized Outcome = "authorized"
)

// Evaluate derives the outcome of a set of states. Any Declined state
// declines the order; the order is authorized only when every state is
// Complete. An empty mapping stays pending.
func Evaluate(states States) Outcome {
	if len(states) == 0 {
		return OutcomePending
	}
	complete := 0
	for _, s := range states {
		switch s.Status {
		case model.PaymentMethodDeclined:
			return OutcomeDeclined
		case model.PaymentMethodComplete:
			complete++
		}
	}
	if complete == len(states) {
		return OutcomeAuthorized
	}
	return OutcomePending
}

// Reconciler applies the outcome of an order's payment states to the order and its basket.
type Reconciler struct {
	orders    order.OrderDomain
	orderDB   outbound.OrderDatabasePort
	basketDB  outbound.BasketDatabasePort
	voucherDB outbound.VoucherDatabasePort
	publisher outbound.EventPublisherPort
	logger    *zap.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(
	orders order.OrderDomain,
	orderDB outbound.OrderDatabasePort,
	basketDB outbound.BasketDatabasePort,
	voucherDB outbound.VoucherDatabasePort,
	publisher outbound.EventPublisherPort,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		orders:    orders,
		orderDB:   orderDB,
		basketDB:  basketDB,
		voucherDB: voucherDB,
		publisher: publisher,
		logger:    logger,
	}
}

// Reconcile moves the order to Payment Declined or Authorized when the
// states call for it and returns the states to persist. On authorization
// every state is rewritten to Consumed.
func (r *Reconciler) Reconcile(ctx context.Context, req RequestContext, o *model.Order, states States) (States, Outcome, error) {
	outcome := Evaluate(states)
	switch outcome {
	case OutcomeDeclined:
		if err := r.setDeclined(ctx, req, o); err != nil {
			return nil, outcome, err
		}
		return states, outcome, nil
	case OutcomeAuthorized:
		if err := r.setAuthorized(ctx, req, o); err != nil {
			return nil, outcome, err
		}
		consumed := make(States, len(states))
		for k, s := range states {
			consumed[k] = s.WithStatus(model.PaymentMethodConsumed)
		}
		return consumed, outcome, nil
	default:
		return states, outcome, nil
	}
}

func (r *Reconciler) setDeclined(ctx context.Context, req RequestContext, o *model.Order) error {
	if err := r.orders.SetStatus(ctx, o, order.StatusPaymentDeclined); err != nil {
		return fmt.Errorf("set order payment declined: %w", err)
	}

	if err := r.orderDB.ReplaceDiscounts(ctx, o.ID, nil); err != nil {
		return fmt.Errorf("delete order discounts: %w", err)
	}
	o.Discounts = nil
	if err := r.orderDB.DeleteLinePrices(ctx, o.ID); err != nil {
		return fmt.Errorf("delete order line prices: %w", err)
	}
	if _, err := r.voucherDB.DeleteApplicationsByOrder(ctx, o.ID); err != nil {
		return fmt.Errorf("delete voucher applications: %w", err)
	}

	if err := r.basketDB.UpdateStatus(ctx, o.BasketID, model.BasketStatusOpen); err != nil {
		return fmt.Errorf("thaw basket: %w", err)
	}

	r.logger.Info("order payment declined",
		zap.String("order_number", o.Number),
		zap.String("basket_id", o.BasketID.String()),
	)
	return r.publisher.Publish(ctx, events.NewOrderPaymentDeclinedEvent(o, req.SessionID))
}

func (r *Reconciler) setAuthorized(ctx context.Context, req RequestContext, o *model.Order) error {
	if err := r.orders.SetStatus(ctx, o, order.StatusAuthorized); err != nil {
		return fmt.Errorf("set order authorized: %w", err)
	}

	basket, err := r.basketDB.GetByID(ctx, o.BasketID)
	if err != nil {
		return fmt.Errorf("get basket: %w", err)
	}
	if basket == nil {
		return ErrBasketNotFound
	}
	if err := r.basketDB.UpdateStatus(ctx, basket.ID, model.BasketStatusSubmitted); err != nil {
		return fmt.Errorf("submit basket: %w", err)
	}
	if !sameOwner(basket.OwnerID, o.UserID) {
		if err := r.basketDB.UpdateOwner(ctx, basket.ID, o.UserID); err != nil {
			return fmt.Errorf("update basket owner: %w", err)
		}
	}

	r.logger.Info("order payment authorized",
		zap.String("order_number", o.Number),
		zap.String("total", o.TotalInclTax.StringFixed(2)),
	)
	return r.publisher.Publish(ctx, events.NewOrderPaymentAuthorizedEvent(o, req.SessionID))
}

func sameOwner(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
