package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction and event types recorded against payment sources.
const (
	TxnTypeAuthorise = "Authorise"
	TxnTypeDebit     = "Debit"
	TxnTypeRefund    = "Refund"
)

// Transaction statuses reported by payment processors.
const (
	TxnStatusAccepted = "ACCEPTED"
	TxnStatusDeclined = "DECLINED"
)

// PaymentSource tracks the money allocated, debited and refunded through one payment method for an order.
type PaymentSource struct {
	ID              uuid.UUID            `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID         uuid.UUID            `json:"order_id" gorm:"type:uuid;not null;uniqueIndex:idx_source_order_type_ref"`
	SourceType      string               `json:"source_type" gorm:"not null;uniqueIndex:idx_source_order_type_ref"`
	Reference       string               `json:"reference" gorm:"not null;default:'';uniqueIndex:idx_source_order_type_ref"`
	Currency        string               `json:"currency" gorm:"not null;default:USD"`
	AmountAllocated decimal.Decimal      `json:"amount_allocated" gorm:"type:numeric(12,2);not null"`
	AmountDebited   decimal.Decimal      `json:"amount_debited" gorm:"type:numeric(12,2);not null"`
	AmountRefunded  decimal.Decimal      `json:"amount_refunded" gorm:"type:numeric(12,2);not null"`
	Transactions    []PaymentTransaction `json:"transactions,omitempty" gorm:"foreignKey:SourceID"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (PaymentSource) TableName() string {
	return "payment_sources"
}

// Allocate records an authorisation of amount against the source.
func (s *PaymentSource) Allocate(amount decimal.Decimal, reference, status string) *PaymentTransaction {
	s.AmountAllocated = s.AmountAllocated.Add(amount)
	return s.newTransaction(TxnTypeAuthorise, amount, reference, status)
}

// Debit records a capture of amount against the source.
func (s *PaymentSource) Debit(amount decimal.Decimal, reference, status string) *PaymentTransaction {
	s.AmountDebited = s.AmountDebited.Add(amount)
	return s.newTransaction(TxnTypeDebit, amount, reference, status)
}

// Void reduces the allocated amount, never below zero. It returns the amount actually released.
func (s *PaymentSource) Void(amount decimal.Decimal) decimal.Decimal {
	released := decimal.Min(amount, s.AmountAllocated)
	if released.IsNegative() {
		released = decimal.Zero
	}
	s.AmountAllocated = s.AmountAllocated.Sub(released)
	return released
}

// NewTransaction builds a transaction against the source without changing its balances.
func (s *PaymentSource) NewTransaction(txnType string, amount decimal.Decimal, reference, status string) *PaymentTransaction {
	return s.newTransaction(txnType, amount, reference, status)
}

func (s *PaymentSource) newTransaction(txnType string, amount decimal.Decimal, reference, status string) *PaymentTransaction {
	return &PaymentTransaction{
		ID:        uuid.New(),
		SourceID:  s.ID,
		TxnType:   txnType,
		Amount:    amount,
		Reference: reference,
		Status:    status,
		CreatedAt: time.Now(),
	}
}

// PaymentTransaction is a ledger entry on a payment source.
type PaymentTransaction struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	SourceID  uuid.UUID       `json:"source_id" gorm:"type:uuid;not null;index"`
	TxnType   string          `json:"txn_type" gorm:"not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName returns the table name for GORM.
func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}

// PaymentEvent is an order-level audit record of money movement.
type PaymentEvent struct {
	ID         uuid.UUID              `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID              `json:"order_id" gorm:"type:uuid;not null;index"`
	EventType  string                 `json:"event_type" gorm:"not null"`
	Amount     decimal.Decimal        `json:"amount" gorm:"type:numeric(12,2);not null"`
	Reference  string                 `json:"reference"`
	Quantities []PaymentEventQuantity `json:"quantities,omitempty" gorm:"foreignKey:EventID"`
	CreatedAt  time.Time              `json:"created_at"`
}

// TableName returns the table name for GORM.
func (PaymentEvent) TableName() string {
	return "payment_events"
}

// PaymentEventQuantity links a payment event to the quantity of an order line it covers.
type PaymentEventQuantity struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	EventID  uuid.UUID `json:"event_id" gorm:"type:uuid;not null;index"`
	LineID   uuid.UUID `json:"line_id" gorm:"type:uuid;not null"`
	Quantity int       `json:"quantity"`
}

// TableName returns the table name for GORM.
func (PaymentEventQuantity) TableName() string {
	return "payment_event_quantities"
}
