//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	// Domains
	"github.com/uniedit/checkout/internal/domain/checkout"
	"github.com/uniedit/checkout/internal/domain/order"

	// Ports
	"github.com/uniedit/checkout/internal/port/inbound"
	"github.com/uniedit/checkout/internal/port/outbound"

	// Infrastructure
	"github.com/uniedit/checkout/internal/infra/events"
	"github.com/uniedit/checkout/internal/shared/config"

	// Utils
	"github.com/uniedit/checkout/internal/utils/metrics"
)

// Dependencies holds all injected dependencies.
type Dependencies struct {
	Config          *config.Config
	DB              *gorm.DB
	Redis           goredis.UniversalClient
	RateLimiter     outbound.RateLimiterPort
	Logger          *zap.Logger
	MetricsRegistry *prometheus.Registry
	Metrics         *metrics.Metrics
	EventBus        *events.Bus
	AccessTokens    outbound.AccessTokenPort

	// Domains
	OrderDomain    order.OrderDomain
	CheckoutDomain checkout.CheckoutDomain
	Registry       *checkout.Registry

	// HTTP Handlers
	CheckoutHandler        inbound.CheckoutHttpPort
	PaymentCallbackHandler inbound.PaymentCallbackHttpPort
	OrderHandler           inbound.OrderHttpPort
}

// InitializeDependencies creates all dependencies using Wire.
func InitializeDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	wire.Build(
		AppSet,
		wire.Struct(new(Dependencies), "*"),
	)
	return nil, nil, nil
}
