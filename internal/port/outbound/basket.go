package outbound

import (
	"context"

	"github.com/google/uuid"
	"github.com/uniedit/checkout/internal/model"
)

// BasketDatabasePort defines the interface for basket database operations.
type BasketDatabasePort interface {
	// GetByID returns the basket with lines and vouchers, or nil when missing.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Basket, error)

	// LockByID reads the basket like GetByID using SELECT ... FOR UPDATE.
	LockByID(ctx context.Context, id uuid.UUID) (*model.Basket, error)

	// GetOpenByOwner returns the owner's open basket, or nil when none exists.
	GetOpenByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Basket, error)

	// UpdateStatus sets the basket status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error

	// UpdateOwner sets the basket owner.
	UpdateOwner(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) error
}

// StockDatabasePort defines stock record operations.
type StockDatabasePort interface {
	// GetBySKUs returns stock records keyed by SKU. Unknown SKUs are absent.
	GetBySKUs(ctx context.Context, skus []string) (map[string]*model.StockRecord, error)

	// Allocate reserves qty units of a SKU.
	Allocate(ctx context.Context, sku string, qty int) error

	// CancelAllocation releases qty previously reserved units of a SKU.
	CancelAllocation(ctx context.Context, sku string, qty int) error
}

// VoucherDatabasePort defines voucher operations.
type VoucherDatabasePort interface {
	// LockByIDs reads vouchers using SELECT ... FOR UPDATE.
	LockByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Voucher, error)

	// CreateApplication records a voucher use and increments its order count.
	CreateApplication(ctx context.Context, app *model.VoucherApplication) error

	// DeleteApplicationsByOrder removes the order's voucher applications, decrements
	// the order count of each voucher and returns the removed applications.
	DeleteApplicationsByOrder(ctx context.Context, orderID uuid.UUID) ([]*model.VoucherApplication, error)
}
