package model

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Basket statuses.
const (
	BasketStatusOpen      = "Open"
	BasketStatusFrozen    = "Frozen"
	BasketStatusSubmitted = "Submitted"
)

// Basket represents a shopping basket owned by a customer or an anonymous session.
type Basket struct {
	ID        uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID   *uuid.UUID   `json:"owner_id,omitempty" gorm:"type:uuid;index"`
	Status    string       `json:"status" gorm:"not null;default:Open"`
	Currency  string       `json:"currency" gorm:"not null;default:USD"`
	Lines     []BasketLine `json:"lines" gorm:"foreignKey:BasketID"`
	Vouchers  []Voucher    `json:"vouchers,omitempty" gorm:"many2many:basket_vouchers"`
	FrozenAt  *time.Time   `json:"frozen_at,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Basket) TableName() string {
	return "baskets"
}

// CanBeEdited reports whether lines may still change.
func (b *Basket) CanBeEdited() bool {
	return b.Status == BasketStatusOpen
}

// IsEmpty reports whether the basket has no lines.
func (b *Basket) IsEmpty() bool {
	return len(b.Lines) == 0
}

// LinesTotal returns the sum of line prices, inclusive and exclusive of tax.
func (b *Basket) LinesTotal() (inclTax, exclTax decimal.Decimal) {
	for _, l := range b.Lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		inclTax = inclTax.Add(l.UnitPriceInclTax.Mul(qty))
		exclTax = exclTax.Add(l.UnitPriceExclTax.Mul(qty))
	}
	return inclTax, exclTax
}

// BasketLine represents a product and quantity in a basket.
type BasketLine struct {
	ID               uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	BasketID         uuid.UUID       `json:"basket_id" gorm:"type:uuid;not null;index"`
	SKU              string          `json:"sku" gorm:"not null"`
	Title            string          `json:"title"`
	Quantity         int             `json:"quantity" gorm:"not null"`
	UnitPriceInclTax decimal.Decimal `json:"unit_price_incl_tax" gorm:"type:numeric(12,2)"`
	UnitPriceExclTax decimal.Decimal `json:"unit_price_excl_tax" gorm:"type:numeric(12,2)"`
	CreatedAt        time.Time       `json:"created_at"`
}

// TableName returns the table name for GORM.
func (BasketLine) TableName() string {
	return "basket_lines"
}

// StockRecord tracks availability of a SKU.
type StockRecord struct {
	SKU          string    `json:"sku" gorm:"primaryKey"`
	TrackStock   bool      `json:"track_stock" gorm:"not null"`
	NumInStock   int       `json:"num_in_stock" gorm:"not null;default:0"`
	NumAllocated int       `json:"num_allocated" gorm:"not null;default:0"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (StockRecord) TableName() string {
	return "stock_records"
}

// NetStockLevel returns the stock not yet allocated to orders.
func (s *StockRecord) NetStockLevel() int {
	return s.NumInStock - s.NumAllocated
}

// IsPurchasePermitted reports whether qty units may be bought, with a reason when not.
func (s *StockRecord) IsPurchasePermitted(qty int) (bool, string) {
	if !s.TrackStock {
		return true, ""
	}
	if s.NetStockLevel() <= 0 {
		return false, "no stock available"
	}
	if qty > s.NetStockLevel() {
		return false, "a maximum of " + strconv.Itoa(s.NetStockLevel()) + " can be bought"
	}
	return true, ""
}

// Voucher is a discount code applied to a basket.
type Voucher struct {
	ID                 uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Code               string          `json:"code" gorm:"uniqueIndex;not null"`
	Name               string          `json:"name"`
	Discount           decimal.Decimal `json:"discount" gorm:"type:numeric(12,2)"`
	StartAt            time.Time       `json:"start_at"`
	EndAt              time.Time       `json:"end_at"`
	SingleUse          bool            `json:"single_use"`
	NumBasketAdditions int             `json:"num_basket_additions" gorm:"not null;default:0"`
	NumOrders          int             `json:"num_orders" gorm:"not null;default:0"`
	CreatedAt          time.Time       `json:"created_at"`
}

// TableName returns the table name for GORM.
func (Voucher) TableName() string {
	return "vouchers"
}

// IsActive reports whether the voucher is valid at the given time.
func (v *Voucher) IsActive(at time.Time) bool {
	return !at.Before(v.StartAt) && at.Before(v.EndAt)
}

// VoucherApplication records the use of a voucher by an order.
type VoucherApplication struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	VoucherID uuid.UUID  `json:"voucher_id" gorm:"type:uuid;not null;index"`
	OrderID   uuid.UUID  `json:"order_id" gorm:"type:uuid;not null;index"`
	UserID    *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName returns the table name for GORM.
func (VoucherApplication) TableName() string {
	return "voucher_applications"
}
