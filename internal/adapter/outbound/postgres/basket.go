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

// basketAdapter implements outbound.BasketDatabasePort.
type basketAdapter struct {
	db *gorm.DB
}

// NewBasketAdapter creates a new basket database adapter.
func NewBasketAdapter(db *gorm.DB) outbound.BasketDatabasePort {
	return &basketAdapter{db: db}
}

func (a *basketAdapter) GetByID(ctx context.Context, id uuid.UUID) (*model.Basket, error) {
	return a.first(conn(ctx, a.db), id)
}

func (a *basketAdapter) LockByID(ctx context.Context, id uuid.UUID) (*model.Basket, error) {
	return a.first(conn(ctx, a.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (a *basketAdapter) first(query *gorm.DB, id uuid.UUID) (*model.Basket, error) {
	var basket model.Basket
	err := query.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, sku") }).
		Preload("Vouchers").
		First(&basket, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get basket: %w", err)
	}
	return &basket, nil
}

func (a *basketAdapter) GetOpenByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Basket, error) {
	var basket model.Basket
	err := conn(ctx, a.db).
		Where("owner_id = ? AND status = ?", ownerID, model.BasketStatusOpen).
		Order("updated_at DESC").
		First(&basket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open basket: %w", err)
	}
	return &basket, nil
}

func (a *basketAdapter) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	updates := map[string]interface{}{"status": status}
	if status == model.BasketStatusFrozen {
		updates["frozen_at"] = time.Now()
	}
	result := conn(ctx, a.db).Model(&model.Basket{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("update basket status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (a *basketAdapter) UpdateOwner(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) error {
	err := conn(ctx, a.db).
		Model(&model.Basket{}).
		Where("id = ?", id).
		Update("owner_id", ownerID).Error
	if err != nil {
		return fmt.Errorf("update basket owner: %w", err)
	}
	return nil
}

// stockAdapter implements outbound.StockDatabasePort.
type stockAdapter struct {
	db *gorm.DB
}

// NewStockAdapter creates a new stock record adapter.
func NewStockAdapter(db *gorm.DB) outbound.StockDatabasePort {
	return &stockAdapter{db: db}
}

func (a *stockAdapter) GetBySKUs(ctx context.Context, skus []string) (map[string]*model.StockRecord, error) {
	out := make(map[string]*model.StockRecord, len(skus))
	if len(skus) == 0 {
		return out, nil
	}

	var records []*model.StockRecord
	if err := conn(ctx, a.db).Where("sku IN ?", skus).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("get stock records: %w", err)
	}
	for _, r := range records {
		out[r.SKU] = r
	}
	return out, nil
}

func (a *stockAdapter) Allocate(ctx context.Context, sku string, qty int) error {
	result := conn(ctx, a.db).
		Model(&model.StockRecord{}).
		Where("sku = ?", sku).
		Update("num_allocated", gorm.Expr("num_allocated + ?", qty))
	if result.Error != nil {
		return fmt.Errorf("allocate stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("allocate stock %s: %w", sku, gorm.ErrRecordNotFound)
	}
	return nil
}

func (a *stockAdapter) CancelAllocation(ctx context.Context, sku string, qty int) error {
	err := conn(ctx, a.db).
		Model(&model.StockRecord{}).
		Where("sku = ?", sku).
		Update("num_allocated", gorm.Expr("CASE WHEN num_allocated < ? THEN 0 ELSE num_allocated - ? END", qty, qty)).Error
	if err != nil {
		return fmt.Errorf("cancel stock allocation: %w", err)
	}
	return nil
}

// Compile-time checks
var (
	_ outbound.BasketDatabasePort = (*basketAdapter)(nil)
	_ outbound.StockDatabasePort  = (*stockAdapter)(nil)
)
