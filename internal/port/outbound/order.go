package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uniedit/checkout/internal/model"
)

// OrderDatabasePort defines the interface for order database operations.
type OrderDatabasePort interface {
	// Create inserts the order together with its lines and discounts.
	Create(ctx context.Context, order *model.Order) error

	// Update saves the order header fields.
	Update(ctx context.Context, order *model.Order) error

	// GetByID returns the order with lines, or nil when missing.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetByNumber returns the order with lines, or nil when missing.
	GetByNumber(ctx context.Context, number string) (*model.Order, error)

	// LockByID reads the order with lines using SELECT ... FOR UPDATE.
	LockByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByBasket returns every order placed from a basket.
	ListByBasket(ctx context.Context, basketID uuid.UUID) ([]*model.Order, error)

	// UpdateStatus sets the order status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error

	// ReplaceLines deletes the order's lines and line prices and inserts lines.
	ReplaceLines(ctx context.Context, orderID uuid.UUID, lines []model.OrderLine) error

	// CreateLinePrices records line prices.
	CreateLinePrices(ctx context.Context, prices []model.OrderLinePrice) error

	// DeleteLinePrices removes the order's line prices.
	DeleteLinePrices(ctx context.Context, orderID uuid.UUID) error

	// ReplaceDiscounts deletes the order's discounts and inserts discounts.
	ReplaceDiscounts(ctx context.Context, orderID uuid.UUID, discounts []model.OrderDiscount) error

	// CountByAddress counts orders placed since a time whose address of the given kind has the hash.
	CountByAddress(ctx context.Context, kind model.AddressKind, addressHash string, since time.Time) (int64, error)
}
