package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uniedit/checkout/internal/infra/events"
	"github.com/uniedit/checkout/internal/model"
)

// validatedCheckout is a checkout that passed every check and may be placed.
type validatedCheckout struct {
	input      *CheckoutInput
	basket     *model.Basket
	user       *User
	guestEmail string
	total      OrderTotal
	methods    map[string]PaymentMethod
	split      PaymentSplit
}

// validate runs the checks of a checkout submission in order: field checks
// (basket access, payment split), stock availability, fraud rules,
// ownership, then the order total. Nothing is written.
func (d *checkoutDomain) validate(ctx context.Context, req RequestContext, session *model.CheckoutSession, input *CheckoutInput) (*validatedCheckout, error) {
	verr := &ValidationError{}

	basket, err := d.resolveBasket(ctx, req, session, input.BasketID, input.BasketToken)
	if err != nil && !mergeValidation(verr, err) {
		return nil, err
	}

	methods, err := d.registry.Permitted(req)
	if err != nil {
		return nil, err
	}
	split, err := ParsePaymentSplit(input.Payment, methods, d.cfg.MaxPaymentMethods)
	if err != nil && !mergeValidation(verr, err) {
		return nil, err
	}
	if verr.HasErrors() {
		return nil, verr
	}
	input = d.withStagedData(ctx, basket, input)

	if err := d.checkAvailability(ctx, basket); err != nil {
		return nil, err
	}

	fraudData := &FraudCheckData{
		Basket:          basket,
		GuestEmail:      input.GuestEmail,
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  input.BillingAddress,
	}
	for _, rule := range d.fraudRules {
		if err := rule.Validate(ctx, fraudData, req.RecaptchaScore, req); err != nil {
			return nil, err
		}
	}

	user, guestEmail := d.ownership(req, req.User, input.GuestEmail)
	if !((user != nil && user.Email != "") || guestEmail != "") {
		return nil, NewValidationError("non_field_errors", "Email address is required.")
	}

	if err := d.publisher.Publish(ctx, events.NewPreCalculateTotalEvent(basket, input.ShippingAddress, input.ShippingCharge.InclTax())); err != nil {
		return nil, fmt.Errorf("publish pre calculate total: %w", err)
	}

	total := CalculateOrderTotal(basket, input.ShippingCharge)
	if input.Total != nil && !input.Total.Equal(total.InclTax) {
		return nil, NewValidationError("non_field_errors", "Total incorrect.")
	}
	if split.SpecifiedTotal().GreaterThan(total.InclTax) {
		return nil, NewValidationError("non_field_errors", "Specified payment amounts exceed order total.")
	}

	return &validatedCheckout{
		input:      input,
		basket:     basket,
		user:       user,
		guestEmail: guestEmail,
		total:      total,
		methods:    methods,
		split:      split,
	}, nil
}

// resolveBasket finds the basket of a checkout. A signed basket token proves
// access on its own; a bare id must belong to the requester or the session.
func (d *checkoutDomain) resolveBasket(ctx context.Context, req RequestContext, session *model.CheckoutSession, id uuid.UUID, token string) (*model.Basket, error) {
	trusted := false
	if token != "" {
		raw, err := d.signer.Unsign(BasketTokenSalt, token)
		if err != nil {
			return nil, NewValidationError("basket", "Invalid basket token.")
		}
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return nil, NewValidationError("basket", "Invalid basket token.")
		}
		id = parsed
		trusted = true
	}
	if id == uuid.Nil {
		return nil, NewValidationError("basket", "This field is required.")
	}

	basket, err := d.basketDB.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get basket: %w", err)
	}
	if basket == nil || (!trusted && !canAccessBasket(req, session, basket)) {
		return nil, NewValidationError("basket", "Invalid basket.")
	}
	if !basket.CanBeEdited() {
		return nil, NewValidationError("basket", "This basket has already been submitted.")
	}
	if basket.IsEmpty() {
		return nil, NewValidationError("basket", "Cannot checkout with an empty basket.")
	}
	return basket, nil
}

func canAccessBasket(req RequestContext, session *model.CheckoutSession, basket *model.Basket) bool {
	if req.User != nil && basket.OwnerID != nil && *basket.OwnerID == req.User.ID {
		return true
	}
	return session.BasketID != nil && *session.BasketID == basket.ID
}

// checkAvailability rejects baskets with lines that can no longer be bought.
func (d *checkoutDomain) checkAvailability(ctx context.Context, basket *model.Basket) error {
	skus := make([]string, 0, len(basket.Lines))
	for _, l := range basket.Lines {
		skus = append(skus, l.SKU)
	}
	stock, err := d.stockDB.GetBySKUs(ctx, skus)
	if err != nil {
		return fmt.Errorf("get stock records: %w", err)
	}

	verr := &ValidationError{}
	for _, line := range basket.Lines {
		permitted, reason := false, "unavailable"
		if rec, ok := stock[line.SKU]; ok {
			permitted, reason = rec.IsPurchasePermitted(line.Quantity)
		}
		if !permitted {
			verr.Add("basket", fmt.Sprintf("'%s' is no longer available to buy (%s). Please adjust your basket to continue.", line.Title, reason))
		}
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// mergeValidation folds err into verr when it is a validation error.
func mergeValidation(verr *ValidationError, err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		verr.Merge(ve)
		return true
	}
	return false
}
