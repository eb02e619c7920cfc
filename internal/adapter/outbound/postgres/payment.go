package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uniedit/checkout/internal/model"
	"github.com/uniedit/checkout/internal/port/outbound"
	"gorm.io/gorm"
)

// paymentSourceAdapter implements outbound.PaymentSourceDatabasePort.
type paymentSourceAdapter struct {
	db *gorm.DB
}

// NewPaymentSourceAdapter creates a new payment source database adapter.
func NewPaymentSourceAdapter(db *gorm.DB) outbound.PaymentSourceDatabasePort {
	return &paymentSourceAdapter{db: db}
}

func (a *paymentSourceAdapter) GetOrCreate(ctx context.Context, orderID uuid.UUID, sourceType, reference, currency string) (*model.PaymentSource, error) {
	var source model.PaymentSource
	err := conn(ctx, a.db).
		Where("order_id = ? AND source_type = ? AND reference = ?", orderID, sourceType, reference).
		Attrs(model.PaymentSource{
			ID:              uuid.New(),
			OrderID:         orderID,
			SourceType:      sourceType,
			Reference:       reference,
			Currency:        currency,
			AmountAllocated: decimal.Zero,
			AmountDebited:   decimal.Zero,
			AmountRefunded:  decimal.Zero,
		}).
		FirstOrCreate(&source).Error
	if err != nil {
		return nil, fmt.Errorf("get or create payment source: %w", err)
	}
	return &source, nil
}

func (a *paymentSourceAdapter) GetByID(ctx context.Context, id uuid.UUID) (*model.PaymentSource, error) {
	var source model.PaymentSource
	err := conn(ctx, a.db).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		First(&source, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find payment source by id: %w", err)
	}
	return &source, nil
}

func (a *paymentSourceAdapter) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*model.PaymentSource, error) {
	var sources []*model.PaymentSource
	err := conn(ctx, a.db).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		Where("order_id = ?", orderID).
		Order("created_at").
		Find(&sources).Error
	if err != nil {
		return nil, fmt.Errorf("list payment sources: %w", err)
	}
	return sources, nil
}

func (a *paymentSourceAdapter) Save(ctx context.Context, source *model.PaymentSource, txns ...*model.PaymentTransaction) error {
	return conn(ctx, a.db).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.PaymentSource{}).
			Where("id = ?", source.ID).
			Updates(map[string]interface{}{
				"amount_allocated": source.AmountAllocated,
				"amount_debited":   source.AmountDebited,
				"amount_refunded":  source.AmountRefunded,
			}).Error
		if err != nil {
			return fmt.Errorf("update payment source: %w", err)
		}
		if len(txns) == 0 {
			return nil
		}
		if err := tx.Create(&txns).Error; err != nil {
			return fmt.Errorf("create payment transactions: %w", err)
		}
		return nil
	})
}

// paymentEventAdapter implements outbound.PaymentEventDatabasePort.
type paymentEventAdapter struct {
	db *gorm.DB
}

// NewPaymentEventAdapter creates a new payment event database adapter.
func NewPaymentEventAdapter(db *gorm.DB) outbound.PaymentEventDatabasePort {
	return &paymentEventAdapter{db: db}
}

func (a *paymentEventAdapter) Create(ctx context.Context, event *model.PaymentEvent) error {
	if err := conn(ctx, a.db).Create(event).Error; err != nil {
		return fmt.Errorf("create payment event: %w", err)
	}
	return nil
}

func (a *paymentEventAdapter) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*model.PaymentEvent, error) {
	var events []*model.PaymentEvent
	err := conn(ctx, a.db).
		Preload("Quantities").
		Where("order_id = ?", orderID).
		Order("created_at").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list payment events: %w", err)
	}
	return events, nil
}

// Compile-time checks
var (
	_ outbound.PaymentSourceDatabasePort = (*paymentSourceAdapter)(nil)
	_ outbound.PaymentEventDatabasePort  = (*paymentEventAdapter)(nil)
)
