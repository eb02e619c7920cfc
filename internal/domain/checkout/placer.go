package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uniedit/checkout/internal/model"
	"github.com/uniedit/checkout/internal/port/outbound"
	"github.com/uniedit/checkout/internal/utils/random"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// PlacementRequest is everything needed to write an order from a basket.
type PlacementRequest struct {
	Basket             *model.Basket
	Number             string
	User               *User
	GuestEmail         string
	Total              OrderTotal
	ShippingMethodCode string
	ShippingCharge     ShippingCharge
	ShippingAddress    *model.Address
	BillingAddress     *model.Address
}

// OrderPlacer writes orders from baskets.
type OrderPlacer interface {
	// PlaceOrder creates a new order.
	PlaceOrder(ctx context.Context, req PlacementRequest) (*model.Order, error)

	// UpdateOrder rewrites a Payment Declined order in place, keeping its id and number.
	UpdateOrder(ctx context.Context, existing *model.Order, req PlacementRequest) (*model.Order, error)
}

// orderCreator implements OrderPlacer on the database ports.
type orderCreator struct {
	orderDB   outbound.OrderDatabasePort
	stockDB   outbound.StockDatabasePort
	voucherDB outbound.VoucherDatabasePort
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderPlacer creates the default order placer.
func NewOrderPlacer(
	orderDB outbound.OrderDatabasePort,
	stockDB outbound.StockDatabasePort,
	voucherDB outbound.VoucherDatabasePort,
	logger *zap.Logger,
) OrderPlacer {
	return &orderCreator{
		orderDB:   orderDB,
		stockDB:   stockDB,
		voucherDB: voucherDB,
		logger:    logger,
		now:       time.Now,
	}
}

// GenerateOrderNumber returns a new order number like ORD-20260102-7QK2M.
func GenerateOrderNumber(now time.Time) (string, error) {
	code, err := random.OrderCode(5)
	if err != nil {
		return "", fmt.Errorf("generate order number: %w", err)
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), code), nil
}

func (c *orderCreator) PlaceOrder(ctx context.Context, req PlacementRequest) (*model.Order, error) {
	if req.Basket.IsEmpty() {
		return nil, NewValidationError("basket", "Empty baskets cannot be submitted.")
	}
	if req.Number == "" {
		number, err := GenerateOrderNumber(c.now())
		if err != nil {
			return nil, err
		}
		req.Number = number
	}

	existing, err := c.orderDB.GetByNumber(ctx, req.Number)
	if err != nil {
		return nil, fmt.Errorf("check order number: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateOrderNumber, req.Number)
	}

	order := c.buildOrder(uuid.New(), req)
	if err := c.writeLines(ctx, order, req, true); err != nil {
		return nil, err
	}

	c.logger.Info("order placed",
		zap.String("order_number", order.Number),
		zap.String("basket_id", req.Basket.ID.String()),
		zap.String("total", order.TotalInclTax.StringFixed(2)),
	)
	return order, nil
}

func (c *orderCreator) UpdateOrder(ctx context.Context, existing *model.Order, req PlacementRequest) (*model.Order, error) {
	if req.Basket.IsEmpty() {
		return nil, NewValidationError("basket", "Empty baskets cannot be submitted.")
	}
	if !existing.IsPaymentDeclined() {
		return nil, ErrOrderNotDeclined
	}
	req.Number = existing.Number

	other, err := c.orderDB.GetByNumber(ctx, req.Number)
	if err != nil {
		return nil, fmt.Errorf("check order number: %w", err)
	}
	if other != nil && other.ID != existing.ID {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateOrderNumber, req.Number)
	}

	for _, line := range existing.Lines {
		if !line.TrackStock {
			continue
		}
		if err := c.stockDB.CancelAllocation(ctx, line.SKU, line.Quantity); err != nil {
			return nil, fmt.Errorf("cancel stock allocation: %w", err)
		}
	}

	order := c.buildOrder(existing.ID, req)
	order.CreatedAt = existing.CreatedAt
	if err := c.writeLines(ctx, order, req, false); err != nil {
		return nil, err
	}

	c.logger.Info("order updated",
		zap.String("order_number", order.Number),
		zap.String("basket_id", req.Basket.ID.String()),
		zap.String("total", order.TotalInclTax.StringFixed(2)),
	)
	return order, nil
}

func (c *orderCreator) buildOrder(id uuid.UUID, req PlacementRequest) *model.Order {
	now := c.now()
	order := &model.Order{
		ID:                 id,
		Number:             req.Number,
		BasketID:           req.Basket.ID,
		GuestEmail:         req.GuestEmail,
		Status:             model.OrderStatusPending,
		Currency:           req.Basket.Currency,
		TotalInclTax:       req.Total.InclTax,
		TotalExclTax:       req.Total.ExclTax,
		ShippingInclTax:    req.ShippingCharge.InclTax(),
		ShippingExclTax:    req.ShippingCharge.ExclTax,
		ShippingMethodCode: req.ShippingMethodCode,
		PlacedAt:           now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if req.User != nil {
		userID := req.User.ID
		order.UserID = &userID
	}
	if req.ShippingAddress != nil {
		addr := datatypes.NewJSONType(*req.ShippingAddress)
		order.ShippingAddress = &addr
		order.ShippingAddressHash = req.ShippingAddress.Hash()
	}
	if req.BillingAddress != nil {
		addr := datatypes.NewJSONType(*req.BillingAddress)
		order.BillingAddress = &addr
		order.BillingAddressHash = req.BillingAddress.Hash()
	}
	return order
}

// writeLines creates the order lines, allocates their stock and records voucher use.
func (c *orderCreator) writeLines(ctx context.Context, order *model.Order, req PlacementRequest, create bool) error {
	skus := make([]string, 0, len(req.Basket.Lines))
	for _, l := range req.Basket.Lines {
		skus = append(skus, l.SKU)
	}
	stock, err := c.stockDB.GetBySKUs(ctx, skus)
	if err != nil {
		return fmt.Errorf("get stock records: %w", err)
	}

	lines := make([]model.OrderLine, 0, len(req.Basket.Lines))
	prices := make([]model.OrderLinePrice, 0, len(req.Basket.Lines))
	for _, bl := range req.Basket.Lines {
		qty := decimalFromInt(bl.Quantity)
		line := model.OrderLine{
			ID:               uuid.New(),
			OrderID:          order.ID,
			SKU:              bl.SKU,
			Title:            bl.Title,
			Quantity:         bl.Quantity,
			UnitPriceInclTax: bl.UnitPriceInclTax,
			UnitPriceExclTax: bl.UnitPriceExclTax,
			LinePriceInclTax: bl.UnitPriceInclTax.Mul(qty),
			LinePriceExclTax: bl.UnitPriceExclTax.Mul(qty),
			CreatedAt:        order.CreatedAt,
		}
		if rec, ok := stock[bl.SKU]; ok && rec.TrackStock {
			line.TrackStock = true
		}
		lines = append(lines, line)
		prices = append(prices, model.OrderLinePrice{
			ID:           uuid.New(),
			OrderID:      order.ID,
			LineID:       line.ID,
			Quantity:     line.Quantity,
			PriceInclTax: line.UnitPriceInclTax,
			PriceExclTax: line.UnitPriceExclTax,
		})
	}

	vouchers, err := c.lockVouchers(ctx, req.Basket)
	if err != nil {
		return err
	}
	discounts := make([]model.OrderDiscount, 0, len(vouchers))
	for _, v := range vouchers {
		voucherID := v.ID
		discounts = append(discounts, model.OrderDiscount{
			ID:          uuid.New(),
			OrderID:     order.ID,
			VoucherID:   &voucherID,
			VoucherCode: v.Code,
			Amount:      v.Discount,
		})
	}

	if create {
		order.Lines = lines
		order.Discounts = discounts
		if err := c.orderDB.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
	} else {
		if err := c.orderDB.Update(ctx, order); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if err := c.orderDB.ReplaceLines(ctx, order.ID, lines); err != nil {
			return fmt.Errorf("replace order lines: %w", err)
		}
		if err := c.orderDB.ReplaceDiscounts(ctx, order.ID, discounts); err != nil {
			return fmt.Errorf("replace order discounts: %w", err)
		}
		order.Lines = lines
		order.Discounts = discounts
	}

	if err := c.orderDB.CreateLinePrices(ctx, prices); err != nil {
		return fmt.Errorf("create line prices: %w", err)
	}

	for _, line := range lines {
		if !line.TrackStock {
			continue
		}
		if err := c.stockDB.Allocate(ctx, line.SKU, line.Quantity); err != nil {
			return fmt.Errorf("allocate stock: %w", err)
		}
	}

	for _, v := range vouchers {
		app := &model.VoucherApplication{
			ID:        uuid.New(),
			VoucherID: v.ID,
			OrderID:   order.ID,
			CreatedAt: c.now(),
		}
		if req.User != nil {
			userID := req.User.ID
			app.UserID = &userID
		}
		if err := c.voucherDB.CreateApplication(ctx, app); err != nil {
			return fmt.Errorf("record voucher usage: %w", err)
		}
	}
	return nil
}

// lockVouchers locks the basket's vouchers and checks they can still be used.
func (c *orderCreator) lockVouchers(ctx context.Context, basket *model.Basket) ([]*model.Voucher, error) {
	if len(basket.Vouchers) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(basket.Vouchers))
	for _, v := range basket.Vouchers {
		ids = append(ids, v.ID)
	}

	vouchers, err := c.voucherDB.LockByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lock vouchers: %w", err)
	}
	now := c.now()
	for _, v := range vouchers {
		if !v.IsActive(now) {
			return nil, NewValidationError("basket", fmt.Sprintf("The '%s' voucher has expired.", v.Code))
		}
		if v.SingleUse && v.NumOrders > 0 {
			return nil, NewValidationError("basket", fmt.Sprintf("The '%s' voucher has already been used.", v.Code))
		}
	}
	return vouchers, nil
}
