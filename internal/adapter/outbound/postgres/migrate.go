package postgres

import (
	"fmt"

	"github.com/uniedit/checkout/internal/model"
	"gorm.io/gorm"
)

// Models lists every table owned by the checkout service, in creation order.
func Models() []interface{} {
	return []interface{}{
		&model.Voucher{},
		&model.Basket{},
		&model.BasketLine{},
		&model.StockRecord{},
		&model.Order{},
		&model.OrderLine{},
		&model.OrderLinePrice{},
		&model.OrderDiscount{},
		&model.VoucherApplication{},
		&model.PaymentSource{},
		&model.PaymentTransaction{},
		&model.PaymentEvent{},
		&model.PaymentEventQuantity{},
	}
}

// AutoMigrate creates or updates the checkout tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
