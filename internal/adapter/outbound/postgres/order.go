package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uniedit/checkout/internal/model"
	"github.com/uniedit/checkout/internal/port/outbound"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderAdapter implements outbound.OrderDatabasePort.
type orderAdapter struct {
	db *gorm.DB
}

// NewOrderAdapter creates a new order database adapter.
func NewOrderAdapter(db *gorm.DB) outbound.OrderDatabasePort {
	return &orderAdapter{db: db}
}

func (a *orderAdapter) Create(ctx context.Context, order *model.Order) error {
	if err := conn(ctx, a.db).Create(order).Error; err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (a *orderAdapter) Update(ctx context.Context, order *model.Order) error {
	if err := conn(ctx, a.db).Omit(clause.Associations).Save(order).Error; err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}

func (a *orderAdapter) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return a.first(conn(ctx, a.db), "id = ?", id)
}

func (a *orderAdapter) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	return a.first(conn(ctx, a.db), "number = ?", number)
}

func (a *orderAdapter) LockByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return a.first(conn(ctx, a.db).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

func (a *orderAdapter) first(query *gorm.DB, cond string, arg interface{}) (*model.Order, error) {
	var order model.Order
	err := query.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, sku") }).
		Preload("Discounts").
		First(&order, cond, arg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &order, nil
}

func (a *orderAdapter) ListByBasket(ctx context.Context, basketID uuid.UUID) ([]*model.Order, error) {
	var orders []*model.Order
	err := conn(ctx, a.db).
		Where("basket_id = ?", basketID).
		Order("created_at").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list orders by basket: %w", err)
	}
	return orders, nil
}

func (a *orderAdapter) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result := conn(ctx, a.db).
		Model(&model.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (a *orderAdapter) ReplaceLines(ctx context.Context, orderID uuid.UUID, lines []model.OrderLine) error {
	db := conn(ctx, a.db)
	if err := db.Where("order_id = ?", orderID).Delete(&model.OrderLinePrice{}).Error; err != nil {
		return fmt.Errorf("delete line prices: %w", err)
	}
	if err := db.Where("order_id = ?", orderID).Delete(&model.OrderLine{}).Error; err != nil {
		return fmt.Errorf("delete order lines: %w", err)
	}
	if len(lines) == 0 {
		return nil
	}
	if err := db.Create(&lines).Error; err != nil {
		return fmt.Errorf("create order lines: %w", err)
	}
	return nil
}

func (a *orderAdapter) CreateLinePrices(ctx context.Context, prices []model.OrderLinePrice) error {
	if len(prices) == 0 {
		return nil
	}
	if err := conn(ctx, a.db).Create(&prices).Error; err != nil {
		return fmt.Errorf("create line prices: %w", err)
	}
	return nil
}

func (a *orderAdapter) DeleteLinePrices(ctx context.Context, orderID uuid.UUID) error {
	if err := conn(ctx, a.db).Where("order_id = ?", orderID).Delete(&model.OrderLinePrice{}).Error; err != nil {
		return fmt.Errorf("delete line prices: %w", err)
	}
	return nil
}

func (a *orderAdapter) ReplaceDiscounts(ctx context.Context, orderID uuid.UUID, discounts []model.OrderDiscount) error {
	db := conn(ctx, a.db)
	if err := db.Where("order_id = ?", orderID).Delete(&model.OrderDiscount{}).Error; err != nil {
		return fmt.Errorf("delete order discounts: %w", err)
	}
	if len(discounts) == 0 {
		return nil
	}
	if err := db.Create(&discounts).Error; err != nil {
		return fmt.Errorf("create order discounts: %w", err)
	}
	return nil
}

func (a *orderAdapter) CountByAddress(ctx context.Context, kind model.AddressKind, addressHash string, since time.Time) (int64, error) {
	column := "shipping_address_hash"
	if kind == model.AddressBilling {
		column = "billing_address_hash"
	}

	var count int64
	err := conn(ctx, a.db).
		Model(&model.Order{}).
		Where(column+" = ? AND placed_at >= ?", addressHash, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count orders by address: %w", err)
	}
	return count, nil
}

// Compile-time check
var _ outbound.OrderDatabasePort = (*orderAdapter)(nil)
