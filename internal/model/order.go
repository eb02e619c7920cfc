package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Order statuses, in pipeline order.
const (
	OrderStatusPending         = "Pending"
	OrderStatusPaymentDeclined = "Payment Declined"
	OrderStatusAuthorized      = "Authorized"
	OrderStatusShipped         = "Shipped"
	OrderStatusCanceled        = "Canceled"
)

// Address is a postal address stored as JSON on the order.
type Address struct {
	Title       string `json:"title,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Line1       string `json:"line1" binding:"required"`
	Line2       string `json:"line2,omitempty"`
	Line3       string `json:"line3,omitempty"`
	Line4       string `json:"line4,omitempty"`
	State       string `json:"state,omitempty"`
	Postcode    string `json:"postcode,omitempty"`
	Country     string `json:"country" binding:"required"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// AddressKind selects the shipping or billing address of an order.
type AddressKind string

const (
	AddressShipping AddressKind = "shipping"
	AddressBilling  AddressKind = "billing"
)

// Hash fingerprints the address lines, postcode and country, ignoring case.
// Velocity checks compare orders by this value.
func (a *Address) Hash() string {
	if a == nil {
		return ""
	}
	parts := []string{a.Line1, a.Line2, a.Line3, a.Line4, a.Postcode}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	parts = append(parts, strings.ToUpper(strings.TrimSpace(a.Country)))
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

// Order represents a placed order.
type Order struct {
	ID                  uuid.UUID                    `json:"id" gorm:"type:uuid;primaryKey"`
	Number              string                       `json:"number" gorm:"uniqueIndex;not null"`
	BasketID            uuid.UUID                    `json:"basket_id" gorm:"type:uuid;not null;index"`
	UserID              *uuid.UUID                   `json:"user_id,omitempty" gorm:"type:uuid;index"`
	GuestEmail          string                       `json:"guest_email,omitempty"`
	Status              string                       `json:"status" gorm:"not null;index"`
	Currency            string                       `json:"currency" gorm:"not null;default:USD"`
	TotalInclTax        decimal.Decimal              `json:"total_incl_tax" gorm:"type:numeric(12,2);not null"`
	TotalExclTax        decimal.Decimal              `json:"total_excl_tax" gorm:"type:numeric(12,2);not null"`
	ShippingInclTax     decimal.Decimal              `json:"shipping_incl_tax" gorm:"type:numeric(12,2);not null"`
	ShippingExclTax     decimal.Decimal              `json:"shipping_excl_tax" gorm:"type:numeric(12,2);not null"`
	ShippingMethodCode  string                       `json:"shipping_method_code"`
	ShippingAddress     *datatypes.JSONType[Address] `json:"shipping_address,omitempty"`
	BillingAddress      *datatypes.JSONType[Address] `json:"billing_address,omitempty"`
	ShippingAddressHash string                       `json:"-" gorm:"index"`
	BillingAddressHash  string                       `json:"-" gorm:"index"`
	Lines               []OrderLine                  `json:"lines,omitempty" gorm:"foreignKey:OrderID"`
	Discounts           []OrderDiscount              `json:"discounts,omitempty" gorm:"foreignKey:OrderID"`
	PlacedAt            time.Time                    `json:"placed_at"`
	CreatedAt           time.Time                    `json:"created_at"`
	UpdatedAt           time.Time                    `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Order) TableName() string {
	return "orders"
}

// IsPaymentDeclined reports whether the order can be retried.
func (o *Order) IsPaymentDeclined() bool {
	return o.Status == OrderStatusPaymentDeclined
}

// NumItems returns the total quantity across all lines.
func (o *Order) NumItems() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

// OrderLine represents a line of an order.
type OrderLine struct {
	ID               uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID          uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	SKU              string          `json:"sku" gorm:"not null"`
	Title            string          `json:"title"`
	Quantity         int             `json:"quantity" gorm:"not null"`
	TrackStock       bool            `json:"-"`
	UnitPriceInclTax decimal.Decimal `json:"unit_price_incl_tax" gorm:"type:numeric(12,2)"`
	UnitPriceExclTax decimal.Decimal `json:"unit_price_excl_tax" gorm:"type:numeric(12,2)"`
	LinePriceInclTax decimal.Decimal `json:"line_price_incl_tax" gorm:"type:numeric(12,2)"`
	LinePriceExclTax decimal.Decimal `json:"line_price_excl_tax" gorm:"type:numeric(12,2)"`
	CreatedAt        time.Time       `json:"created_at"`
}

// TableName returns the table name for GORM.
func (OrderLine) TableName() string {
	return "order_lines"
}

// OrderLinePrice records the price paid for a quantity of a line.
type OrderLinePrice struct {
	ID           uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID      uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	LineID       uuid.UUID       `json:"line_id" gorm:"type:uuid;not null;index"`
	Quantity     int             `json:"quantity"`
	PriceInclTax decimal.Decimal `json:"price_incl_tax" gorm:"type:numeric(12,2)"`
	PriceExclTax decimal.Decimal `json:"price_excl_tax" gorm:"type:numeric(12,2)"`
}

// TableName returns the table name for GORM.
func (OrderLinePrice) TableName() string {
	return "order_line_prices"
}

// OrderDiscount records a voucher discount applied to an order.
type OrderDiscount struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	VoucherID   *uuid.UUID      `json:"voucher_id,omitempty" gorm:"type:uuid"`
	VoucherCode string          `json:"voucher_code,omitempty"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(12,2)"`
}

// TableName returns the table name for GORM.
func (OrderDiscount) TableName() string {
	return "order_discounts"
}

// OrderResponse is the public representation of an order.
type OrderResponse struct {
	ID           uuid.UUID       `json:"id"`
	Number       string          `json:"number"`
	Status       string          `json:"status"`
	Currency     string          `json:"currency"`
	TotalInclTax decimal.Decimal `json:"total_incl_tax"`
	TotalExclTax decimal.Decimal `json:"total_excl_tax"`
	GuestEmail   string          `json:"guest_email,omitempty"`
	NumItems     int             `json:"num_items"`
	Lines        []OrderLine     `json:"lines"`
	PlacedAt     time.Time       `json:"placed_at"`
}

// ToResponse converts an order to its public representation.
func (o *Order) ToResponse() *OrderResponse {
	return &OrderResponse{
		ID:           o.ID,
		Number:       o.Number,
		Status:       o.Status,
		Currency:     o.Currency,
		TotalInclTax: o.TotalInclTax,
		TotalExclTax: o.TotalExclTax,
		GuestEmail:   o.GuestEmail,
		NumItems:     o.NumItems(),
		Lines:        o.Lines,
		PlacedAt:     o.PlacedAt,
	}
}
