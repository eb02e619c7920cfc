package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniedit/checkout/internal/model"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newOrder(basketID uuid.UUID, number string) *model.Order {
	id := uuid.New()
	addr := model.Address{Line1: "1 Main St", Country: "US"}
	shipping := datatypes.NewJSONType(addr)
	return &model.Order{
		ID:                  id,
		Number:              number,
		BasketID:            basketID,
		Status:              model.OrderStatusPending,
		Currency:            "USD",
		TotalInclTax:        money("10.00"),
		TotalExclTax:        money("8.00"),
		ShippingAddress:     &shipping,
		ShippingAddressHash: addr.Hash(),
		PlacedAt:            time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		Lines: []model.OrderLine{
			{ID: uuid.New(), OrderID: id, SKU: "SKU-1", Title: "Widget", Quantity: 2, UnitPriceInclTax: money("5.00")},
		},
	}
}

func TestOrderAdapter(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	orders := NewOrderAdapter(db)
	basketID := uuid.New()

	o := newOrder(basketID, "100001")
	require.NoError(t, orders.Create(ctx, o))

	t.Run("get with lines", func(t *testing.T) {
		got, err := orders.GetByNumber(ctx, "100001")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, o.ID, got.ID)
		require.Len(t, got.Lines, 1)
		assert.Equal(t, 2, got.Lines[0].Quantity)
		assert.True(t, got.TotalInclTax.Equal(money("10.00")))
		require.NotNil(t, got.ShippingAddress)
		assert.Equal(t, "1 Main St", got.ShippingAddress.Data().Line1)
	})

	t.Run("missing order", func(t *testing.T) {
		got, err := orders.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("lock by id", func(t *testing.T) {
		got, err := orders.LockByID(ctx, o.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Len(t, got.Lines, 1)
	})

	t.Run("list by basket", func(t *testing.T) {
		list, err := orders.ListByBasket(ctx, basketID)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		list, err = orders.ListByBasket(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("update status", func(t *testing.T) {
		require.NoError(t, orders.UpdateStatus(ctx, o.ID, model.OrderStatusPaymentDeclined))
		got, err := orders.GetByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusPaymentDeclined, got.Status)

		assert.ErrorIs(t, orders.UpdateStatus(ctx, uuid.New(), model.OrderStatusPending), gorm.ErrRecordNotFound)
	})

	t.Run("update keeps lines", func(t *testing.T) {
		o.TotalInclTax = money("15.00")
		o.Lines = nil
		require.NoError(t, orders.Update(ctx, o))

		got, err := orders.GetByID(ctx, o.ID)
		require.NoError(t, err)
		assert.True(t, got.TotalInclTax.Equal(money("15.00")))
		assert.Len(t, got.Lines, 1)
	})

	t.Run("replace lines and prices", func(t *testing.T) {
		require.NoError(t, orders.CreateLinePrices(ctx, []model.OrderLinePrice{
			{ID: uuid.New(), OrderID: o.ID, LineID: uuid.New(), Quantity: 2},
		}))

		lines := []model.OrderLine{
			{ID: uuid.New(), OrderID: o.ID, SKU: "SKU-1", Quantity: 3},
			{ID: uuid.New(), OrderID: o.ID, SKU: "SKU-2", Quantity: 1},
		}
		require.NoError(t, orders.ReplaceLines(ctx, o.ID, lines))

		got, err := orders.GetByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, got.NumItems())

		var prices int64
		require.NoError(t, db.Model(&model.OrderLinePrice{}).Where("order_id = ?", o.ID).Count(&prices).Error)
		assert.Zero(t, prices)
	})

	t.Run("replace discounts", func(t *testing.T) {
		require.NoError(t, orders.ReplaceDiscounts(ctx, o.ID, []model.OrderDiscount{
			{ID: uuid.New(), OrderID: o.ID, VoucherCode: "TENOFF", Amount: money("1.00")},
		}))
		got, err := orders.GetByID(ctx, o.ID)
		require.NoError(t, err)
		require.Len(t, got.Discounts, 1)

		require.NoError(t, orders.ReplaceDiscounts(ctx, o.ID, nil))
		got, err = orders.GetByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Discounts)
	})

	t.Run("count by address", func(t *testing.T) {
		hash := o.ShippingAddressHash
		n, err := orders.CountByAddress(ctx, model.AddressShipping, hash, o.PlacedAt.Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = orders.CountByAddress(ctx, model.AddressShipping, hash, o.PlacedAt.Add(time.Hour))
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = orders.CountByAddress(ctx, model.AddressBilling, hash, o.PlacedAt.Add(-time.Hour))
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestTransactionAdapter(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	orders := NewOrderAdapter(db)
	txn := NewTransactionAdapter(db)

	t.Run("rollback on error", func(t *testing.T) {
		o := newOrder(uuid.New(), "200001")
		boom := errors.New("boom")
		err := txn.RunInTransaction(ctx, func(ctx context.Context) error {
			require.NoError(t, orders.Create(ctx, o))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := orders.GetByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("commit", func(t *testing.T) {
		o := newOrder(uuid.New(), "200002")
		require.NoError(t, txn.RunInTransaction(ctx, func(ctx context.Context) error {
			return orders.Create(ctx, o)
		}))

		got, err := orders.GetByID(ctx, o.ID)
		require.NoError(t, err)
		assert.NotNil(t, got)
	})
}

func TestBasketAndStockAdapters(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	baskets := NewBasketAdapter(db)
	stock := NewStockAdapter(db)

	owner := uuid.New()
	basket := &model.Basket{
		ID:       uuid.New(),
		OwnerID:  &owner,
		Status:   model.BasketStatusOpen,
		Currency: "USD",
		Vouchers: []model.Voucher{{ID: uuid.New(), Code: "TENOFF", Discount: money("1.00")}},
	}
	basket.Lines = []model.BasketLine{{ID: uuid.New(), BasketID: basket.ID, SKU: "SKU-1", Quantity: 2}}
	require.NoError(t, db.Create(basket).Error)
	require.NoError(t, db.Create(&model.StockRecord{SKU: "SKU-1", TrackStock: true, NumInStock: 10}).Error)

	t.Run("get with lines and vouchers", func(t *testing.T) {
		got, err := baskets.GetByID(ctx, basket.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Len(t, got.Lines, 1)
		require.Len(t, got.Vouchers, 1)
		assert.Equal(t, "TENOFF", got.Vouchers[0].Code)

		missing, err := baskets.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("lock inside a transaction", func(t *testing.T) {
		txn := NewTransactionAdapter(db)
		require.NoError(t, txn.RunInTransaction(ctx, func(ctx context.Context) error {
			got, err := baskets.LockByID(ctx, basket.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Len(t, got.Lines, 1)
			assert.Len(t, got.Vouchers, 1)

			missing, err := baskets.LockByID(ctx, uuid.New())
			require.NoError(t, err)
			assert.Nil(t, missing)
			return nil
		}))
	})

	t.Run("open basket by owner", func(t *testing.T) {
		got, err := baskets.GetOpenByOwner(ctx, owner)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, basket.ID, got.ID)
	})

	t.Run("freeze hides the basket from its owner", func(t *testing.T) {
		require.NoError(t, baskets.UpdateStatus(ctx, basket.ID, model.BasketStatusFrozen))
		got, err := baskets.GetByID(ctx, basket.ID)
		require.NoError(t, err)
		assert.Equal(t, model.BasketStatusFrozen, got.Status)
		assert.NotNil(t, got.FrozenAt)

		open, err := baskets.GetOpenByOwner(ctx, owner)
		require.NoError(t, err)
		assert.Nil(t, open)
	})

	t.Run("update owner", func(t *testing.T) {
		other := uuid.New()
		require.NoError(t, baskets.UpdateOwner(ctx, basket.ID, &other))
		got, err := baskets.GetByID(ctx, basket.ID)
		require.NoError(t, err)
		require.NotNil(t, got.OwnerID)
		assert.Equal(t, other, *got.OwnerID)
	})

	t.Run("allocate and cancel stock", func(t *testing.T) {
		require.NoError(t, stock.Allocate(ctx, "SKU-1", 3))
		records, err := stock.GetBySKUs(ctx, []string{"SKU-1", "SKU-404"})
		require.NoError(t, err)
		require.Contains(t, records, "SKU-1")
		assert.NotContains(t, records, "SKU-404")
		assert.Equal(t, 3, records["SKU-1"].NumAllocated)

		require.NoError(t, stock.CancelAllocation(ctx, "SKU-1", 5))
		records, err = stock.GetBySKUs(ctx, []string{"SKU-1"})
		require.NoError(t, err)
		assert.Zero(t, records["SKU-1"].NumAllocated)

		assert.ErrorIs(t, stock.Allocate(ctx, "SKU-404", 1), gorm.ErrRecordNotFound)
	})
}

func TestVoucherAdapter(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	vouchers := NewVoucherAdapter(db)

	v := &model.Voucher{ID: uuid.New(), Code: "TENOFF", Discount: money("1.00")}
	require.NoError(t, db.Create(v).Error)
	orderID := uuid.New()

	locked, err := vouchers.LockByIDs(ctx, []uuid.UUID{v.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, locked, 1)

	require.NoError(t, vouchers.CreateApplication(ctx, &model.VoucherApplication{
		ID: uuid.New(), VoucherID: v.ID, OrderID: orderID,
	}))
	locked, err = vouchers.LockByIDs(ctx, []uuid.UUID{v.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, locked[0].NumOrders)

	removed, err := vouchers.DeleteApplicationsByOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Len(t, removed, 1)
	locked, err = vouchers.LockByIDs(ctx, []uuid.UUID{v.ID})
	require.NoError(t, err)
	assert.Zero(t, locked[0].NumOrders)

	removed, err = vouchers.DeleteApplicationsByOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestPaymentAdapters(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	sources := NewPaymentSourceAdapter(db)
	events := NewPaymentEventAdapter(db)
	orderID := uuid.New()

	t.Run("get or create is idempotent", func(t *testing.T) {
		first, err := sources.GetOrCreate(ctx, orderID, "Cash", "", "USD")
		require.NoError(t, err)
		second, err := sources.GetOrCreate(ctx, orderID, "Cash", "", "USD")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		other, err := sources.GetOrCreate(ctx, orderID, "Credit Card", "ref-1", "USD")
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, other.ID)

		list, err := sources.ListByOrder(ctx, orderID)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("save balances and transactions", func(t *testing.T) {
		source, err := sources.GetOrCreate(ctx, orderID, "Cash", "", "USD")
		require.NoError(t, err)
		alloc := source.Allocate(money("4.00"), "", "")
		debit := source.Debit(money("4.00"), "", "")
		require.NoError(t, sources.Save(ctx, source, alloc, debit))

		got, err := sources.GetByID(ctx, source.ID)
		require.NoError(t, err)
		assert.True(t, got.AmountAllocated.Equal(money("4.00")))
		assert.True(t, got.AmountDebited.Equal(money("4.00")))
		assert.Len(t, got.Transactions, 2)

		source.Void(money("1.50"))
		require.NoError(t, sources.Save(ctx, source))
		got, err = sources.GetByID(ctx, source.ID)
		require.NoError(t, err)
		assert.Equal(t, "2.50", got.AmountAllocated.StringFixed(2))
		assert.Len(t, got.Transactions, 2)
	})

	t.Run("missing source", func(t *testing.T) {
		got, err := sources.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("events with quantities", func(t *testing.T) {
		eventID := uuid.New()
		require.NoError(t, events.Create(ctx, &model.PaymentEvent{
			ID:        eventID,
			OrderID:   orderID,
			EventType: model.TxnTypeDebit,
			Amount:    money("4.00"),
			Quantities: []model.PaymentEventQuantity{
				{ID: uuid.New(), LineID: uuid.New(), Quantity: 2},
			},
		}))

		list, err := events.ListByOrder(ctx, orderID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Len(t, list[0].Quantities, 1)
		assert.Equal(t, eventID, list[0].Quantities[0].EventID)
	})
}
