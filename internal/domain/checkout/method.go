package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uniedit/checkout/internal/model"
	"github.com/uniedit/checkout/internal/port/outbound"
	"go.uber.org/zap"
)

// Token salts. Each token kind is signed under its own salt.
const (
	TransactionIDSalt = "checkout.transaction-id"
	OrderTokenSalt    = "checkout.order"
	BasketTokenSalt   = "checkout.basket"
)

// PaymentMethod records and voids payments for one kind of tender.
type PaymentMethod interface {
	// Code is the identifier clients use as method_type.
	Code() string

	// Name is the display name; it also names the payment source type.
	Name() string

	// RecordPayment charges amount against the order and returns the resulting state.
	// A nil amount fails with ErrAmountRequired.
	RecordPayment(ctx context.Context, req RequestContext, order *model.Order, methodKey string, amount *decimal.Decimal, reference string) (model.PaymentState, error)

	// VoidExistingPayment releases the allocation behind a state that is being replaced.
	VoidExistingPayment(ctx context.Context, req RequestContext, order *model.Order, methodKey string, prior model.PaymentState) error
}

// AuthorizationRecorder is implemented by methods completed by an out-of-band authorization.
type AuthorizationRecorder interface {
	RecordSuccessfulAuthorization(ctx context.Context, order *model.Order, amount decimal.Decimal, reference string) (model.PaymentState, error)
	RecordDeclinedAuthorization(ctx context.Context, order *model.Order, amount decimal.Decimal, reference string) (model.PaymentState, error)
}

// AuthorizationPoster is implemented by methods with a second form-post step.
type AuthorizationPoster interface {
	RequireAuthorizationPost(order *model.Order, methodKey string, amount decimal.Decimal) (model.PaymentState, error)
}

// MethodDeps are the collaborators shared by payment methods.
type MethodDeps struct {
	Sources outbound.PaymentSourceDatabasePort
	Events  outbound.PaymentEventDatabasePort
	Signer  outbound.SignerPort
	Logger  *zap.Logger
}

// methodBase holds the source and event bookkeeping every method shares.
type methodBase struct {
	code    string
	name    string
	sources outbound.PaymentSourceDatabasePort
	events  outbound.PaymentEventDatabasePort
	signer  outbound.SignerPort
	logger  *zap.Logger
}

func newMethodBase(code, name string, deps MethodDeps) methodBase {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return methodBase{
		code:    code,
		name:    name,
		sources: deps.Sources,
		events:  deps.Events,
		signer:  deps.Signer,
		logger:  logger.With(zap.String("payment_method", code)),
	}
}

func (m *methodBase) Code() string { return m.code }

func (m *methodBase) Name() string { return m.name }

// getSource returns the order's source for this method and reference.
func (m *methodBase) getSource(ctx context.Context, order *model.Order, reference string) (*model.PaymentSource, error) {
	source, err := m.sources.GetOrCreate(ctx, order.ID, m.name, reference, order.Currency)
	if err != nil {
		return nil, fmt.Errorf("get payment source: %w", err)
	}
	return source, nil
}

// makeEvent records a payment event covering the full quantity of every order line.
func (m *methodBase) makeEvent(ctx context.Context, eventType string, order *model.Order, amount decimal.Decimal, reference string) error {
	event := &model.PaymentEvent{
		ID:        uuid.New(),
		OrderID:   order.ID,
		EventType: eventType,
		Amount:    amount,
		Reference: reference,
		CreatedAt: time.Now(),
	}
	for _, line := range order.Lines {
		event.Quantities = append(event.Quantities, model.PaymentEventQuantity{
			ID:       uuid.New(),
			EventID:  event.ID,
			LineID:   line.ID,
			Quantity: line.Quantity,
		})
	}
	if err := m.events.Create(ctx, event); err != nil {
		return fmt.Errorf("create payment event: %w", err)
	}
	return nil
}

// VoidExistingPayment reduces the prior state's source allocation by its amount, floored at zero.
func (m *methodBase) VoidExistingPayment(ctx context.Context, _ RequestContext, order *model.Order, methodKey string, prior model.PaymentState) error {
	var source *model.PaymentSource
	if prior.SourceID != nil {
		var err error
		source, err = m.sources.GetByID(ctx, *prior.SourceID)
		if err != nil {
			return fmt.Errorf("get payment source: %w", err)
		}
	}
	if source == nil {
		m.logger.Warn("no payment source to void",
			zap.String("order_number", order.Number),
			zap.String("method_key", methodKey),
		)
		return nil
	}

	released := source.Void(prior.Amount)
	if released.LessThan(prior.Amount) {
		m.logger.Warn("void exceeds allocated amount",
			zap.String("order_number", order.Number),
			zap.String("method_key", methodKey),
			zap.String("requested", prior.Amount.StringFixed(2)),
			zap.String("released", released.StringFixed(2)),
		)
	}
	if err := m.sources.Save(ctx, source); err != nil {
		return fmt.Errorf("save payment source: %w", err)
	}

	m.logger.Info("voided payment",
		zap.String("order_number", order.Number),
		zap.String("method_key", methodKey),
		zap.String("source_id", source.ID.String()),
		zap.String("amount", released.StringFixed(2)),
	)
	return nil
}

// signMethodKey binds a method key into a tamper-proof transaction id.
func (m *methodBase) signMethodKey(methodKey string) (string, error) {
	token, err := m.signer.Sign(TransactionIDSalt, methodKey)
	if err != nil {
		return "", fmt.Errorf("sign method key: %w", err)
	}
	return token, nil
}

// recordAuthorization allocates amount on the reference's source and writes an authorise event.
func (m *methodBase) recordAuthorization(ctx context.Context, order *model.Order, amount decimal.Decimal, reference string) (model.PaymentState, error) {
	source, err := m.getSource(ctx, order, reference)
	if err != nil {
		return model.PaymentState{}, err
	}
	txn := source.Allocate(amount, reference, model.TxnStatusAccepted)
	if err := m.sources.Save(ctx, source, txn); err != nil {
		return model.PaymentState{}, fmt.Errorf("save payment source: %w", err)
	}
	if err := m.makeEvent(ctx, model.TxnTypeAuthorise, order, amount, reference); err != nil {
		return model.PaymentState{}, err
	}
	return model.NewPaymentState(model.PaymentMethodComplete, amount, &source.ID), nil
}

// recordDeclined writes a declined authorise transaction on the reference's source.
func (m *methodBase) recordDeclined(ctx context.Context, order *model.Order, amount decimal.Decimal, reference string) (model.PaymentState, error) {
	source, err := m.getSource(ctx, order, reference)
	if err != nil {
		return model.PaymentState{}, err
	}
	txn := source.NewTransaction(model.TxnTypeAuthorise, amount, reference, model.TxnStatusDeclined)
	if err := m.sources.Save(ctx, source, txn); err != nil {
		return model.PaymentState{}, fmt.Errorf("save payment source: %w", err)
	}
	return model.NewPaymentState(model.PaymentMethodDeclined, amount, &source.ID), nil
}

func stringKwarg(kwargs map[string]any, key, def string) string {
	if v, ok := kwargs[key].(string); ok && v != "" {
		return v
	}
	return def
}
