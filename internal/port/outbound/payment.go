package outbound

import (
	"context"

	"github.com/google/uuid"
	"github.com/uniedit/checkout/internal/model"
)

// PaymentSourceDatabasePort defines payment source operations.
type PaymentSourceDatabasePort interface {
	// GetOrCreate returns the source for (order, source type, reference), creating it when missing.
	GetOrCreate(ctx context.Context, orderID uuid.UUID, sourceType, reference, currency string) (*model.PaymentSource, error)

	// GetByID returns a source, or nil when missing.
	GetByID(ctx context.Context, id uuid.UUID) (*model.PaymentSource, error)

	// ListByOrder returns the order's sources with transactions.
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*model.PaymentSource, error)

	// Save updates the source balances and inserts any new transactions.
	Save(ctx context.Context, source *model.PaymentSource, txns ...*model.PaymentTransaction) error
}

// PaymentEventDatabasePort defines payment event operations.
type PaymentEventDatabasePort interface {
	// Create inserts the event together with its line quantities.
	Create(ctx context.Context, event *model.PaymentEvent) error

	// ListByOrder returns the order's events.
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*model.PaymentEvent, error)
}
