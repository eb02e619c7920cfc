package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/uniedit/checkout/internal/model"
	"github.com/uniedit/checkout/internal/port/outbound"
	"go.uber.org/zap"
)

// FraudRule screens a checkout before the order is placed.
// A rule rejects the checkout by returning a *ValidationError.
type FraudRule interface {
	Validate(ctx context.Context, data *FraudCheckData, recaptchaScore *float64, req RequestContext) error
}

// FraudCheckData is the part of a checkout fraud rules look at.
type FraudCheckData struct {
	Basket          *model.Basket
	GuestEmail      string
	ShippingAddress *model.Address
	BillingAddress  *model.Address
}

// FraudRuleConfig enables one fraud rule.
type FraudRuleConfig struct {
	Rule   string
	Kwargs map[string]any
}

// FraudRuleFactory builds a fraud rule from its kwargs.
type FraudRuleFactory func(orderDB outbound.OrderDatabasePort, logger *zap.Logger, kwargs map[string]any) (FraudRule, error)

var fraudRuleFactories = map[string]FraudRuleFactory{
	"address_velocity": newAddressVelocityFromKwargs,
}

// BuildFraudRules instantiates the configured fraud rules in order.
func BuildFraudRules(configs []FraudRuleConfig, orderDB outbound.OrderDatabasePort, logger *zap.Logger) ([]FraudRule, error) {
	rules := make([]FraudRule, 0, len(configs))
	for _, cfg := range configs {
		factory, ok := fraudRuleFactories[cfg.Rule]
		if !ok {
			return nil, fmt.Errorf("unknown fraud rule %q", cfg.Rule)
		}
		rule, err := factory(orderDB, logger, cfg.Kwargs)
		if err != nil {
			return nil, fmt.Errorf("build fraud rule %q: %w", cfg.Rule, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Address velocity defaults.
const (
	DefaultVelocityPeriod    = 24 * time.Hour
	DefaultVelocityThreshold = 10
)

// AddressVelocity rejects a checkout when too many orders used the same
// shipping or billing address within a rolling window.
type AddressVelocity struct {
	orders    outbound.OrderDatabasePort
	period    time.Duration
	threshold int64
	logger    *zap.Logger
	now       func() time.Time
}

// NewAddressVelocity creates an address velocity rule. Zero values take the defaults.
func NewAddressVelocity(orders outbound.OrderDatabasePort, period time.Duration, threshold int, logger *zap.Logger) *AddressVelocity {
	if period <= 0 {
		period = DefaultVelocityPeriod
	}
	if threshold <= 0 {
		threshold = DefaultVelocityThreshold
	}
	return &AddressVelocity{
		orders:    orders,
		period:    period,
		threshold: int64(threshold),
		logger:    logger,
		now:       time.Now,
	}
}

func newAddressVelocityFromKwargs(orderDB outbound.OrderDatabasePort, logger *zap.Logger, kwargs map[string]any) (FraudRule, error) {
	var period time.Duration
	if raw := stringKwarg(kwargs, "period", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parse period: %w", err)
		}
		period = d
	}

	threshold := 0
	switch v := kwargs["threshold"].(type) {
	case int:
		threshold = v
	case int64:
		threshold = int(v)
	case float64:
		threshold = int(v)
	}
	return NewAddressVelocity(orderDB, period, threshold, logger), nil
}

// Validate checks the shipping and then the billing address.
func (r *AddressVelocity) Validate(ctx context.Context, data *FraudCheckData, _ *float64, _ RequestContext) error {
	if err := r.validateAddress(ctx, model.AddressShipping, data.ShippingAddress); err != nil {
		return err
	}
	return r.validateAddress(ctx, model.AddressBilling, data.BillingAddress)
}

func (r *AddressVelocity) validateAddress(ctx context.Context, kind model.AddressKind, addr *model.Address) error {
	if addr == nil {
		return nil
	}
	since := r.now().Add(-r.period)
	count, err := r.orders.CountByAddress(ctx, kind, addr.Hash(), since)
	if err != nil {
		return fmt.Errorf("count orders by address: %w", err)
	}
	if count >= r.threshold {
		r.logger.Info("rejected order due to address velocity rules",
			zap.String("address_kind", string(kind)),
			zap.Int64("count", count),
		)
		return NewValidationError("non_field_errors", "Order rejected.")
	}
	return nil
}
