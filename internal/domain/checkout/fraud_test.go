package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniedit/checkout/internal/model"
	"go.uber.org/zap"
)

func TestAddressVelocity(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	addr := testAddress()

	seed := func(db *memOrderDB, placedAt time.Time, shipping, billing string) {
		db.orders[uuid.New()] = &model.Order{
			ID:                  uuid.New(),
			ShippingAddressHash: shipping,
			BillingAddressHash:  billing,
			PlacedAt:            placedAt,
		}
	}

	newRule := func(db *memOrderDB, threshold int) *AddressVelocity {
		r := NewAddressVelocity(db, time.Hour, threshold, zap.NewNop())
		r.now = func() time.Time { return now }
		return r
	}

	t.Run("below threshold", func(t *testing.T) {
		db := newMemOrderDB()
		seed(db, now.Add(-time.Minute), addr.Hash(), "")
		err := newRule(db, 2).Validate(ctx, &FraudCheckData{ShippingAddress: addr}, nil, anonymous())
		assert.NoError(t, err)
	})

	t.Run("shipping address at threshold", func(t *testing.T) {
		db := newMemOrderDB()
		seed(db, now.Add(-time.Minute), addr.Hash(), "")
		seed(db, now.Add(-2*time.Minute), addr.Hash(), "")

		err := newRule(db, 2).Validate(ctx, &FraudCheckData{ShippingAddress: addr}, nil, anonymous())
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"Order rejected."}, verr.Fields["non_field_errors"])
	})

	t.Run("billing address is checked too", func(t *testing.T) {
		db := newMemOrderDB()
		seed(db, now.Add(-time.Minute), "", addr.Hash())

		err := newRule(db, 1).Validate(ctx, &FraudCheckData{BillingAddress: addr}, nil, anonymous())
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("orders outside the window are ignored", func(t *testing.T) {
		db := newMemOrderDB()
		seed(db, now.Add(-2*time.Hour), addr.Hash(), "")

		err := newRule(db, 1).Validate(ctx, &FraudCheckData{ShippingAddress: addr}, nil, anonymous())
		assert.NoError(t, err)
	})

	t.Run("address comparison ignores case", func(t *testing.T) {
		upper := *addr
		upper.Line1 = "12 ANALYTICAL ROW"
		upper.Country = "gb"
		assert.Equal(t, addr.Hash(), upper.Hash())
	})
}

func TestBuildFraudRules(t *testing.T) {
	db := newMemOrderDB()

	rules, err := BuildFraudRules([]FraudRuleConfig{
		{Rule: "address_velocity", Kwargs: map[string]any{"period": "2h", "threshold": float64(3)}},
	}, db, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, rules, 1)

	rule, ok := rules[0].(*AddressVelocity)
	require.True(t, ok)
	assert.Equal(t, 2*time.Hour, rule.period)
	assert.Equal(t, int64(3), rule.threshold)

	rules, err = BuildFraudRules([]FraudRuleConfig{{Rule: "address_velocity"}}, db, zap.NewNop())
	require.NoError(t, err)
	rule = rules[0].(*AddressVelocity)
	assert.Equal(t, DefaultVelocityPeriod, rule.period)
	assert.Equal(t, int64(DefaultVelocityThreshold), rule.threshold)

	_, err = BuildFraudRules([]FraudRuleConfig{{Rule: "geoip"}}, db, zap.NewNop())
	assert.Error(t, err)

	_, err = BuildFraudRules([]FraudRuleConfig{{Rule: "address_velocity", Kwargs: map[string]any{"period": "soon"}}}, db, zap.NewNop())
	assert.Error(t, err)
}

func TestCalculateOrderTotal(t *testing.T) {
	basket := &model.Basket{
		Lines: []model.BasketLine{
			{Quantity: 2, UnitPriceInclTax: amount("6.00"), UnitPriceExclTax: amount("5.00")},
			{Quantity: 1, UnitPriceInclTax: amount("1.20"), UnitPriceExclTax: amount("1.00")},
		},
	}
	shipping := ShippingCharge{ExclTax: amount("4.00"), Tax: amount("0.80")}

	total := CalculateOrderTotal(basket, shipping)
	assert.Equal(t, "18.00", total.InclTax.StringFixed(2))
	assert.Equal(t, "15.00", total.ExclTax.StringFixed(2))

	basket.Vouchers = []model.Voucher{{Discount: amount("50.00")}}
	total = CalculateOrderTotal(basket, shipping)
	assert.Equal(t, "4.80", total.InclTax.StringFixed(2))
	assert.Equal(t, "4.00", total.ExclTax.StringFixed(2))
}

func TestValidationError(t *testing.T) {
	verr := NewValidationError("basket", "Invalid basket.")
	verr.Add("payment", "At least one payment method must be enabled.")
	verr.Merge(NewValidationError("basket", "Second."))

	assert.True(t, verr.HasErrors())
	assert.ErrorIs(t, verr, ErrValidation)
	assert.Equal(t, []string{"Invalid basket.", "Second."}, verr.Fields["basket"])
	assert.Equal(t,
		"validation failed: basket: Invalid basket. Second.; payment: At least one payment method must be enabled.",
		verr.Error())

	var empty *ValidationError
	assert.False(t, empty.HasErrors())
}

func TestDefaultOwnership(t *testing.T) {
	t.Run("authenticated requester owns the order", func(t *testing.T) {
		user := &User{ID: uuid.New(), Email: "shopper@example.com"}
		owner, email := DefaultOwnership(RequestContext{User: user}, nil, "guest@example.com")
		assert.Equal(t, user, owner)
		assert.Empty(t, email)
	})

	t.Run("anonymous requester checks out as guest", func(t *testing.T) {
		owner, email := DefaultOwnership(RequestContext{}, nil, "guest@example.com")
		assert.Nil(t, owner)
		assert.Equal(t, "guest@example.com", email)
	})
}
