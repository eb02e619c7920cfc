package checkout

import (
	"context"

	"github.com/uniedit/checkout/internal/model"
	"go.uber.org/zap"
)

func (d *checkoutDomain) StageCheckoutData(ctx context.Context, req RequestContext, input *CheckoutDataInput) (*CheckoutData, error) {
	basket, err := d.stagingBasket(ctx, req, input.Basket)
	if err != nil {
		return nil, err
	}
	if err := d.dataCache.Store(ctx, basket.ID, &input.Data); err != nil {
		return nil, err
	}
	return d.dataCache.Load(ctx, basket.ID)
}

func (d *checkoutDomain) StagedCheckoutData(ctx context.Context, req RequestContext, ref BasketRef) (*CheckoutData, error) {
	basket, err := d.stagingBasket(ctx, req, ref)
	if err != nil {
		return nil, err
	}
	return d.dataCache.Load(ctx, basket.ID)
}

func (d *checkoutDomain) ClearCheckoutData(ctx context.Context, req RequestContext, ref BasketRef) error {
	basket, err := d.stagingBasket(ctx, req, ref)
	if err != nil {
		return err
	}
	return d.dataCache.Invalidate(ctx, basket.ID)
}

// stagingBasket resolves a basket the requester may stage checkout data for.
func (d *checkoutDomain) stagingBasket(ctx context.Context, req RequestContext, ref BasketRef) (*model.Basket, error) {
	if d.dataCache == nil {
		return nil, ErrDataCacheDisabled
	}
	session, err := d.store.Session(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	return d.resolveBasket(ctx, req, session, ref.ID, ref.Token)
}

// withStagedData fills the fields a submission left empty from the basket's
// staged checkout data. A cache failure is logged and the input used as is.
func (d *checkoutDomain) withStagedData(ctx context.Context, basket *model.Basket, input *CheckoutInput) *CheckoutInput {
	if d.dataCache == nil {
		return input
	}
	staged, err := d.dataCache.Load(ctx, basket.ID)
	if err != nil {
		d.logger.Warn("staged checkout data unavailable",
			zap.String("basket_id", basket.ID.String()),
			zap.Error(err),
		)
		return input
	}
	if staged.IsEmpty() {
		return input
	}

	out := *input
	if out.GuestEmail == "" {
		out.GuestEmail = staged.Email
	}
	if out.ShippingAddress == nil {
		out.ShippingAddress = staged.ShippingAddress
	}
	if out.BillingAddress == nil {
		out.BillingAddress = staged.BillingAddress
	}
	if m := staged.ShippingMethod; m != nil && out.ShippingMethodCode == "" {
		out.ShippingMethodCode = m.Code
		if out.ShippingCharge.InclTax().IsZero() {
			out.ShippingCharge = ShippingCharge{Currency: basket.Currency, ExclTax: m.Price}
		}
	}
	return &out
}
