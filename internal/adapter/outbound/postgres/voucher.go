package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uniedit/checkout/internal/model"
	"github.com/uniedit/checkout/internal/port/outbound"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// voucherAdapter implements outbound.VoucherDatabasePort.
type voucherAdapter struct {
	db *gorm.DB
}

// NewVoucherAdapter creates a new voucher database adapter.
func NewVoucherAdapter(db *gorm.DB) outbound.VoucherDatabasePort {
	return &voucherAdapter{db: db}
}

func (a *voucherAdapter) LockByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Voucher, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var vouchers []*model.Voucher
	err := conn(ctx, a.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("code").
		Find(&vouchers).Error
	if err != nil {
		return nil, fmt.Errorf("lock vouchers: %w", err)
	}
	return vouchers, nil
}

func (a *voucherAdapter) CreateApplication(ctx context.Context, app *model.VoucherApplication) error {
	return conn(ctx, a.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(app).Error; err != nil {
			return fmt.Errorf("create voucher application: %w", err)
		}
		err := tx.Model(&model.Voucher{}).
			Where("id = ?", app.VoucherID).
			Update("num_orders", gorm.Expr("num_orders + 1")).Error
		if err != nil {
			return fmt.Errorf("increment voucher usage: %w", err)
		}
		return nil
	})
}

func (a *voucherAdapter) DeleteApplicationsByOrder(ctx context.Context, orderID uuid.UUID) ([]*model.VoucherApplication, error) {
	var removed []*model.VoucherApplication
	err := conn(ctx, a.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Find(&removed).Error; err != nil {
			return fmt.Errorf("find voucher applications: %w", err)
		}
		for _, app := range removed {
			err := tx.Model(&model.Voucher{}).
				Where("id = ? AND num_orders > 0", app.VoucherID).
				Update("num_orders", gorm.Expr("num_orders - 1")).Error
			if err != nil {
				return fmt.Errorf("decrement voucher usage: %w", err)
			}
		}
		if len(removed) == 0 {
			return nil
		}
		if err := tx.Where("order_id = ?", orderID).Delete(&model.VoucherApplication{}).Error; err != nil {
			return fmt.Errorf("delete voucher applications: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// Compile-time check
var _ outbound.VoucherDatabasePort = (*voucherAdapter)(nil)
