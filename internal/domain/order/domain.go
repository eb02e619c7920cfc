package order

import (
	"context"
	"fmt"

	"github.com/uniedit/checkout/internal/infra/events"
	"github.com/uniedit/checkout/internal/model"
	"github.com/uniedit/checkout/internal/port/outbound"
	"github.com/uniedit/checkout/internal/utils/requestctx"
	"go.uber.org/zap"
)

// OrderDomain defines the interface for order business logic.
type OrderDomain interface {
	// GetOrderByNumber returns an order or ErrOrderNotFound.
	GetOrderByNumber(ctx context.Context, number string) (*model.Order, error)

	// SetStatus moves the order along the status pipeline and fires order_status_changed.
	// Setting the current status again is a no-op.
	SetStatus(ctx context.Context, order *model.Order, status OrderStatus) error

	// UpdateStatusByNumber locks the order and applies SetStatus in its own transaction.
	UpdateStatusByNumber(ctx context.Context, number string, status OrderStatus) (*model.Order, error)
}

// orderDomain implements OrderDomain.
type orderDomain struct {
	orderDB   outbound.OrderDatabasePort
	txManager outbound.TransactionPort
	publisher outbound.EventPublisherPort
	logger    *zap.Logger
}

// NewOrderDomain creates a new order domain service.
func NewOrderDomain(
	orderDB outbound.OrderDatabasePort,
	txManager outbound.TransactionPort,
	publisher outbound.EventPublisherPort,
	logger *zap.Logger,
) OrderDomain {
	return &orderDomain{
		orderDB:   orderDB,
		txManager: txManager,
		publisher: publisher,
		logger:    logger,
	}
}

func (d *orderDomain) GetOrderByNumber(ctx context.Context, number string) (*model.Order, error) {
	order, err := d.orderDB.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (d *orderDomain) SetStatus(ctx context.Context, order *model.Order, status OrderStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	current := OrderStatus(order.Status)
	if current == status {
		return nil
	}
	if !current.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, status)
	}

	if err := d.orderDB.UpdateStatus(ctx, order.ID, status.String()); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	order.Status = status.String()

	d.logger.With(requestctx.Fields(ctx)...).Info("order status changed",
		zap.String("order_number", order.Number),
		zap.String("old_status", current.String()),
		zap.String("new_status", status.String()),
	)

	return d.publisher.Publish(ctx, events.NewOrderStatusChangedEvent(order, current.String(), status.String()))
}

func (d *orderDomain) UpdateStatusByNumber(ctx context.Context, number string, status OrderStatus) (*model.Order, error) {
	order, err := d.GetOrderByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	err = d.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		locked, err := d.orderDB.LockByID(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}
		if locked == nil {
			return ErrOrderNotFound
		}
		order = locked
		return d.SetStatus(ctx, order, status)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
