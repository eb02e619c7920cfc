package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uniedit/checkout/internal/infra/events"
	"github.com/uniedit/checkout/internal/model"
	"github.com/uniedit/checkout/internal/port/outbound"
	"github.com/uniedit/checkout/internal/utils/requestctx"
	"go.uber.org/zap"
)

// Config holds checkout settings.
type Config struct {
	// MaxPaymentMethods caps the number of enabled methods per checkout. Zero means unlimited.
	MaxPaymentMethods int
}

// FraudRules is the ordered list of enabled fraud rules.
type FraudRules []FraudRule

// CheckoutDomain defines the interface for checkout business logic.
type CheckoutDomain interface {
	// PaymentMethods lists the methods the request may pay with.
	PaymentMethods(req RequestContext) ([]MethodInfo, error)

	// PlaceOrder validates a checkout, places or updates its order and records its payments.
	PlaceOrder(ctx context.Context, req RequestContext, input *CheckoutInput) (*CheckoutResult, error)

	// CompleteDeferredPayment records a fresh payment split against an existing order.
	CompleteDeferredPayment(ctx context.Context, req RequestContext, input *DeferredPaymentInput) (*CheckoutResult, error)

	// PaymentStates returns the status and payment states of the session's order.
	// A non-nil orderID must match the session's order.
	PaymentStates(ctx context.Context, req RequestContext, orderID *uuid.UUID) (*PaymentStatesResult, error)

	// RequireAuthorization handles the first callback of a form-post method.
	RequireAuthorization(ctx context.Context, req RequestContext, input *CallbackInput) (model.PaymentState, error)

	// CompleteAuthorization handles the final callback of a multi-step method.
	CompleteAuthorization(ctx context.Context, req RequestContext, input *CallbackInput) (model.PaymentState, error)

	// OrderToken signs an order number for CompleteDeferredPayment.
	OrderToken(order *model.Order) (string, error)

	// BasketToken signs a basket id so it can be checked out without an owner check.
	BasketToken(basketID uuid.UUID) (string, error)

	// StageCheckoutData stores checkout data for a basket ahead of PlaceOrder
	// and returns everything staged for it.
	StageCheckoutData(ctx context.Context, req RequestContext, input *CheckoutDataInput) (*CheckoutData, error)

	// StagedCheckoutData returns the checkout data staged for a basket.
	StagedCheckoutData(ctx context.Context, req RequestContext, basket BasketRef) (*CheckoutData, error)

	// ClearCheckoutData drops the checkout data staged for a basket.
	ClearCheckoutData(ctx context.Context, req RequestContext, basket BasketRef) error
}

// checkoutDomain implements CheckoutDomain.
type checkoutDomain struct {
	registry   *Registry
	store      *StateStore
	dataCache  *DataCache
	placer     OrderPlacer
	recorder   *Recorder
	reconciler *Reconciler
	orderDB    outbound.OrderDatabasePort
	basketDB   outbound.BasketDatabasePort
	stockDB    outbound.StockDatabasePort
	txManager  outbound.TransactionPort
	publisher  outbound.EventPublisherPort
	signer     outbound.SignerPort
	fraudRules FraudRules
	ownership  OwnershipFunc
	cfg        *Config
	logger     *zap.Logger
}

// NewCheckoutDomain creates a new checkout domain service.
func NewCheckoutDomain(
	registry *Registry,
	store *StateStore,
	dataCache *DataCache,
	placer OrderPlacer,
	recorder *Recorder,
	reconciler *Reconciler,
	orderDB outbound.OrderDatabasePort,
	basketDB outbound.BasketDatabasePort,
	stockDB outbound.StockDatabasePort,
	txManager outbound.TransactionPort,
	publisher outbound.EventPublisherPort,
	signer outbound.SignerPort,
	fraudRules FraudRules,
	ownership OwnershipFunc,
	cfg *Config,
	logger *zap.Logger,
) CheckoutDomain {
	if ownership == nil {
		ownership = DefaultOwnership
	}
	if cfg == nil {
		cfg = &Config{}
	}
	return &checkoutDomain{
		registry:   registry,
		store:      store,
		dataCache:  dataCache,
		placer:     placer,
		recorder:   recorder,
		reconciler: reconciler,
		orderDB:    orderDB,
		basketDB:   basketDB,
		stockDB:    stockDB,
		txManager:  txManager,
		publisher:  publisher,
		signer:     signer,
		fraudRules: fraudRules,
		ownership:  ownership,
		cfg:        cfg,
		logger:     logger,
	}
}

func (d *checkoutDomain) PlaceOrder(ctx context.Context, req RequestContext, input *CheckoutInput) (*CheckoutResult, error) {
	if err := d.store.ClearConsumed(ctx, req.SessionID); err != nil {
		return nil, err
	}
	session, err := d.store.Session(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	v, err := d.validate(ctx, req, session, input)
	if err != nil {
		return nil, err
	}

	var (
		placed  *model.Order
		states  States
		outcome Outcome
	)
	err = d.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// A concurrent checkout of the same basket may have frozen it since validation.
		locked, err := d.basketDB.LockByID(ctx, v.basket.ID)
		if err != nil {
			return fmt.Errorf("lock basket: %w", err)
		}
		if locked == nil {
			return ErrBasketNotFound
		}
		if !locked.CanBeEdited() {
			return NewValidationError("basket", "This basket has already been submitted.")
		}

		if err := d.basketDB.UpdateStatus(ctx, v.basket.ID, model.BasketStatusFrozen); err != nil {
			return fmt.Errorf("freeze basket: %w", err)
		}

		o, err := d.placeOrUpdate(ctx, v)
		if err != nil {
			return err
		}

		if err := d.publisher.Publish(ctx, events.NewOrderPlacedEvent(o, req.UserID(), req.RecaptchaScore)); err != nil {
			return fmt.Errorf("publish order placed: %w", err)
		}

		recorded, err := d.recorder.Record(ctx, req, previousStates(session, o.ID), o, v.methods, v.split)
		if err != nil {
			return err
		}

		states, outcome, err = d.reconciler.Reconcile(ctx, req, o, recorded)
		if err != nil {
			return err
		}
		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := d.saveSession(ctx, req, session, placed, states, outcome); err != nil {
		return nil, err
	}
	d.forgetStagedData(ctx, placed, outcome)

	d.logger.With(requestctx.Fields(ctx)...).Info("checkout complete",
		zap.String("order_number", placed.Number),
		zap.String("order_status", placed.Status),
		zap.Int("payment_methods", len(states)),
	)
	return d.result(placed, states)
}

// placeOrUpdate creates the basket's order, or rewrites its single declined order.
func (d *checkoutDomain) placeOrUpdate(ctx context.Context, v *validatedCheckout) (*model.Order, error) {
	existing, err := d.orderDB.ListByBasket(ctx, v.basket.ID)
	if err != nil {
		return nil, fmt.Errorf("list basket orders: %w", err)
	}
	for _, o := range existing {
		if !o.IsPaymentDeclined() {
			return nil, ErrOrderExists
		}
	}
	if len(existing) > 1 {
		return nil, ErrMultipleOrders
	}

	req := PlacementRequest{
		Basket:             v.basket,
		User:               v.user,
		GuestEmail:         v.guestEmail,
		Total:              v.total,
		ShippingMethodCode: v.input.ShippingMethodCode,
		ShippingCharge:     v.input.ShippingCharge,
		ShippingAddress:    v.input.ShippingAddress,
		BillingAddress:     v.input.BillingAddress,
	}
	if len(existing) == 0 {
		return d.placer.PlaceOrder(ctx, req)
	}

	locked, err := d.orderDB.LockByID(ctx, existing[0].ID)
	if err != nil {
		return nil, fmt.Errorf("lock order: %w", err)
	}
	if locked == nil {
		return nil, ErrOrderNotFound
	}
	return d.placer.UpdateOrder(ctx, locked, req)
}

func (d *checkoutDomain) CompleteDeferredPayment(ctx context.Context, req RequestContext, input *DeferredPaymentInput) (*CheckoutResult, error) {
	if err := d.store.ClearConsumed(ctx, req.SessionID); err != nil {
		return nil, err
	}
	session, err := d.store.Session(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	o, err := d.orderFromToken(ctx, input.OrderToken)
	if err != nil && !mergeValidation(verr, err) {
		return nil, err
	}
	methods, err := d.registry.Permitted(req)
	if err != nil {
		return nil, err
	}
	split, err := ParsePaymentSplit(input.Payment, methods, d.cfg.MaxPaymentMethods)
	if err != nil && !mergeValidation(verr, err) {
		return nil, err
	}
	if verr.HasErrors() {
		return nil, verr
	}

	if o.Status != model.OrderStatusPending && !o.IsPaymentDeclined() {
		return nil, NewValidationError("order", "This order is not awaiting payment.")
	}
	if split.SpecifiedTotal().GreaterThan(o.TotalInclTax) {
		return nil, NewValidationError("non_field_errors", "Specified payment amounts exceed order total.")
	}

	var (
		states  States
		outcome Outcome
	)
	err = d.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		locked, err := d.orderDB.LockByID(ctx, o.ID)
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}
		if locked == nil {
			return ErrOrderNotFound
		}
		o = locked

		recorded, err := d.recorder.Record(ctx, req, previousStates(session, o.ID), o, methods, split)
		if err != nil {
			return err
		}
		states, outcome, err = d.reconciler.Reconcile(ctx, req, o, recorded)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := d.saveSession(ctx, req, session, o, states, outcome); err != nil {
		return nil, err
	}
	d.forgetStagedData(ctx, o, outcome)

	d.logger.With(requestctx.Fields(ctx)...).Info("deferred payment recorded",
		zap.String("order_number", o.Number),
		zap.String("order_status", o.Status),
	)
	return d.result(o, states)
}

func (d *checkoutDomain) orderFromToken(ctx context.Context, token string) (*model.Order, error) {
	if token == "" {
		return nil, NewValidationError("order", "This field is required.")
	}
	number, err := d.signer.Unsign(OrderTokenSalt, token)
	if err != nil {
		return nil, NewValidationError("order", "Invalid order token.")
	}
	o, err := d.orderDB.GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if o == nil {
		return nil, NewValidationError("order", fmt.Sprintf("Object with number=%s does not exist.", number))
	}
	return o, nil
}

func (d *checkoutDomain) PaymentStates(ctx context.Context, req RequestContext, orderID *uuid.UUID) (*PaymentStatesResult, error) {
	session, err := d.store.Session(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if orderID != nil && (session.OrderID == nil || *orderID != *session.OrderID) {
		return nil, ErrOrderNotFound
	}
	if session.OrderID == nil {
		return nil, ErrNoSessionOrder
	}

	o, err := d.orderDB.GetByID(ctx, *session.OrderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return &PaymentStatesResult{
		OrderStatus: o.Status,
		States:      States(session.PaymentStates),
	}, nil
}

func (d *checkoutDomain) OrderToken(o *model.Order) (string, error) {
	token, err := d.signer.Sign(OrderTokenSalt, o.Number)
	if err != nil {
		return "", fmt.Errorf("sign order token: %w", err)
	}
	return token, nil
}

func (d *checkoutDomain) BasketToken(basketID uuid.UUID) (string, error) {
	token, err := d.signer.Sign(BasketTokenSalt, basketID.String())
	if err != nil {
		return "", fmt.Errorf("sign basket token: %w", err)
	}
	return token, nil
}

// previousStates returns the session's payment states when they belong to
// orderID. States left over from another order are never reused.
func previousStates(session *model.CheckoutSession, orderID uuid.UUID) States {
	if session.OrderID == nil || *session.OrderID != orderID {
		return States{}
	}
	return States(session.PaymentStates)
}

// saveSession stores the outcome of a committed payment run on the session.
// A declined order hands its basket back so the checkout can be retried.
//
// The payment run is already committed, so a failed save is retried once
// before it is reported.
func (d *checkoutDomain) saveSession(ctx context.Context, req RequestContext, session *model.CheckoutSession, o *model.Order, states States, outcome Outcome) error {
	orderID := o.ID
	session.OrderID = &orderID
	session.PaymentStates = states.Clone()
	if outcome == OutcomeDeclined {
		basketID := o.BasketID
		session.BasketID = &basketID
	}

	err := d.store.Save(ctx, req.SessionID, session)
	if err == nil {
		return nil
	}
	d.logger.Warn("retrying checkout session save",
		zap.String("order_number", o.Number),
		zap.Error(err),
	)
	if err = d.store.Save(ctx, req.SessionID, session); err != nil {
		d.logger.With(requestctx.Fields(ctx)...).Error("checkout session lost after commit",
			zap.String("order_number", o.Number),
			zap.String("order_status", o.Status),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// forgetStagedData drops the staged checkout data of an authorized order's basket.
func (d *checkoutDomain) forgetStagedData(ctx context.Context, o *model.Order, outcome Outcome) {
	if d.dataCache == nil || outcome != OutcomeAuthorized {
		return
	}
	if err := d.dataCache.Invalidate(ctx, o.BasketID); err != nil {
		d.logger.Warn("staged checkout data not invalidated",
			zap.String("order_number", o.Number),
			zap.Error(err),
		)
	}
}

func (d *checkoutDomain) result(o *model.Order, states States) (*CheckoutResult, error) {
	token, err := d.OrderToken(o)
	if err != nil {
		return nil, err
	}
	return &CheckoutResult{Order: o, States: states, OrderToken: token}, nil
}
