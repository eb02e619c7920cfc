package app

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	// Domains
	"github.com/uniedit/checkout/internal/domain/checkout"
	"github.com/uniedit/checkout/internal/domain/order"

	// Inbound adapters
	ginadapter "github.com/uniedit/checkout/internal/adapter/inbound/gin"

	// Ports
	"github.com/uniedit/checkout/internal/port/inbound"
	"github.com/uniedit/checkout/internal/port/outbound"

	// Outbound adapters
	"github.com/uniedit/checkout/internal/adapter/outbound/memory"
	"github.com/uniedit/checkout/internal/adapter/outbound/postgres"
	redisadapter "github.com/uniedit/checkout/internal/adapter/outbound/redis"
	"github.com/uniedit/checkout/internal/adapter/outbound/token"

	// Infrastructure
	"github.com/uniedit/checkout/internal/infra/events"
	"github.com/uniedit/checkout/internal/shared/cache"
	"github.com/uniedit/checkout/internal/shared/config"
	"github.com/uniedit/checkout/internal/shared/database"
	"github.com/uniedit/checkout/internal/shared/logger"

	// Utils
	"github.com/uniedit/checkout/internal/utils/metrics"
)

// ===== Infrastructure Providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideLogger,
	ProvideDatabase,
	ProvideRedisClient,
	ProvideRateLimiter,
	ProvideMetricsRegistry,
	ProvideMetrics,
	ProvideEventBus,
	wire.Bind(new(outbound.EventPublisherPort), new(*events.Bus)),
)

// ProvideLogger creates the zap logger.
func ProvideLogger(cfg *config.Config) (*zap.Logger, func()) {
	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	return log, func() { _ = log.Sync() }
}

// ProvideDatabase opens the database and migrates the schema when enabled.
func ProvideDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = database.Close(db) }

	if cfg.Database.AutoMigrate {
		if err := postgres.AutoMigrate(db); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("database schema migrated")
	}
	return db, cleanup, nil
}

// ProvideRedisClient creates a Redis client. A failed connection is logged
// and yields nil so that Redis-backed features can fall back.
func ProvideRedisClient(cfg *config.Config, log *zap.Logger) (goredis.UniversalClient, func()) {
	if cfg.Redis.Address == "" {
		return nil, func() {}
	}
	client, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Warn("redis connection failed, continuing without redis", zap.Error(err))
		return nil, func() {}
	}
	return client, func() { _ = cache.Close(client) }
}

// ProvideRateLimiter creates a rate limiter.
func ProvideRateLimiter(redis goredis.UniversalClient) outbound.RateLimiterPort {
	if redis == nil {
		return nil
	}
	return redisadapter.NewRateLimiter(redis)
}

// ProvideMetricsRegistry creates the registry served on /metrics.
func ProvideMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a metrics instance.
func ProvideMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New("checkout", reg)
}

// ProvideEventBus creates the event bus and registers the order lifecycle handlers.
func ProvideEventBus(basketDB outbound.BasketDatabasePort, m *metrics.Metrics, log *zap.Logger) *events.Bus {
	bus := events.NewBus(log)
	bus.Register(order.NewEventHandler(basketDB, log))
	bus.Register(events.NewHandlerFunc(
		[]string{events.OrderStatusChangedType},
		func(_ context.Context, event events.Event) error {
			if e, ok := event.(*events.OrderStatusChangedEvent); ok {
				m.RecordOrderStatus(e.OldStatus, e.NewStatus)
			}
			return nil
		},
	))
	return bus
}

// ===== Persistence Providers =====

// PersistenceSet provides database adapters.
var PersistenceSet = wire.NewSet(
	postgres.NewTransactionAdapter,
	postgres.NewOrderAdapter,
	postgres.NewBasketAdapter,
	postgres.NewStockAdapter,
	postgres.NewVoucherAdapter,
	postgres.NewPaymentSourceAdapter,
	postgres.NewPaymentEventAdapter,
)

// ===== Order Domain Providers =====

// OrderSet provides order domain dependencies.
var OrderSet = wire.NewSet(
	ProvideOrderDomain,
)

// ProvideOrderDomain creates the order domain.
func ProvideOrderDomain(
	orderDB outbound.OrderDatabasePort,
	txManager outbound.TransactionPort,
	publisher outbound.EventPublisherPort,
	log *zap.Logger,
) order.OrderDomain {
	return order.NewOrderDomain(orderDB, txManager, publisher, log.Named("order"))
}

// ===== Checkout Domain Providers =====

// CheckoutSet provides checkout domain dependencies.
var CheckoutSet = wire.NewSet(
	ProvideSigner,
	ProvideAccessTokens,
	ProvideCheckoutSessionStore,
	ProvideCheckoutCache,
	ProvideDataCache,
	ProvideRegistry,
	ProvideFraudRules,
	ProvideCheckoutConfig,
	ProvideOwnership,
	checkout.NewStateStore,
	ProvideOrderPlacer,
	ProvideRecorder,
	ProvideReconciler,
	ProvideCheckoutDomain,
)

// ProvideSigner creates the order and basket token signer.
func ProvideSigner(cfg *config.Config) outbound.SignerPort {
	return token.NewSigner(&token.SignerConfig{
		Secret: cfg.Checkout.SigningSecret,
		TTL:    cfg.Checkout.TokenTTL,
	})
}

// ProvideAccessTokens creates the bearer token manager.
func ProvideAccessTokens(cfg *config.Config) outbound.AccessTokenPort {
	return token.NewAccessManager(&token.AccessConfig{
		Secret: cfg.Auth.JWTSecret,
		Expiry: cfg.Auth.AccessTokenExpiry,
	})
}

// ProvideCheckoutSessionStore creates the payment state store selected by
// checkout.state_store. Without a Redis connection the in-memory store is used.
func ProvideCheckoutSessionStore(cfg *config.Config, redis goredis.UniversalClient, log *zap.Logger) (outbound.CheckoutSessionPort, func()) {
	if cfg.Checkout.StateStore == "redis" {
		if redis != nil {
			return redisadapter.NewCheckoutSessionStore(redis, cfg.Checkout.StateTTL), func() {}
		}
		log.Warn("redis unavailable, checkout sessions are kept in memory")
	}
	store := memory.NewCheckoutSessionStore(cfg.Checkout.StateTTL)
	return store, store.Close
}

// ProvideCheckoutCache creates the cache for staged checkout data, in Redis
// when connected and in memory otherwise.
func ProvideCheckoutCache(redis goredis.UniversalClient, log *zap.Logger) (outbound.CheckoutCachePort, func()) {
	if redis != nil {
		return redisadapter.NewCheckoutCache(redis), func() {}
	}
	log.Warn("redis unavailable, staged checkout data is kept in memory")
	cache := memory.NewCheckoutCache()
	return cache, cache.Close
}

// ProvideDataCache creates the staged checkout data cache.
func ProvideDataCache(cache outbound.CheckoutCachePort, cfg *config.Config) *checkout.DataCache {
	return checkout.NewDataCache(cache, cfg.Checkout.DataCacheTTL, cfg.Checkout.ValidateCachedData)
}

// ProvideRegistry builds the payment method registry from configuration.
func ProvideRegistry(
	cfg *config.Config,
	sources outbound.PaymentSourceDatabasePort,
	paymentEvents outbound.PaymentEventDatabasePort,
	signer outbound.SignerPort,
	log *zap.Logger,
) (*checkout.Registry, error) {
	methods := make([]checkout.MethodConfig, 0, len(cfg.Checkout.EnabledPaymentMethods))
	for _, m := range cfg.Checkout.EnabledPaymentMethods {
		methods = append(methods, checkout.MethodConfig{
			Method:           m.Method,
			Permission:       m.Permission,
			MethodKwargs:     m.MethodKwargs,
			PermissionKwargs: m.PermissionKwargs,
		})
	}

	registry := checkout.NewRegistry()
	deps := checkout.MethodDeps{
		Sources: sources,
		Events:  paymentEvents,
		Signer:  signer,
		Logger:  log.Named("payment"),
	}
	if err := registry.Configure(deps, methods); err != nil {
		return nil, fmt.Errorf("configure payment methods: %w", err)
	}
	log.Info("payment methods enabled", zap.Strings("methods", registry.Codes()))
	return registry, nil
}

// ProvideFraudRules builds the enabled fraud rules.
func ProvideFraudRules(cfg *config.Config, orderDB outbound.OrderDatabasePort, log *zap.Logger) (checkout.FraudRules, error) {
	configs := make([]checkout.FraudRuleConfig, 0, len(cfg.Checkout.FraudChecks))
	for _, fc := range cfg.Checkout.FraudChecks {
		configs = append(configs, checkout.FraudRuleConfig{Rule: fc.Rule, Kwargs: fc.Kwargs})
	}
	rules, err := checkout.BuildFraudRules(configs, orderDB, log.Named("fraud"))
	if err != nil {
		return nil, fmt.Errorf("configure fraud checks: %w", err)
	}
	return rules, nil
}

// ProvideCheckoutConfig maps checkout settings to the domain config.
func ProvideCheckoutConfig(cfg *config.Config) *checkout.Config {
	return &checkout.Config{MaxPaymentMethods: cfg.Checkout.MaxPaymentMethods}
}

// ProvideOwnership returns the order ownership policy.
func ProvideOwnership() checkout.OwnershipFunc {
	return checkout.DefaultOwnership
}

// ProvideOrderPlacer creates the order placer.
func ProvideOrderPlacer(
	orderDB outbound.OrderDatabasePort,
	stockDB outbound.StockDatabasePort,
	voucherDB outbound.VoucherDatabasePort,
	log *zap.Logger,
) checkout.OrderPlacer {
	return checkout.NewOrderPlacer(orderDB, stockDB, voucherDB, log.Named("placer"))
}

// ProvideRecorder creates the payment recorder, reporting its decisions as metrics.
func ProvideRecorder(m *metrics.Metrics, log *zap.Logger) *checkout.Recorder {
	return checkout.NewRecorder(func(methodType string, d checkout.RecordDecision) {
		m.RecordRecorderDecision(methodType, string(d))
	}, log.Named("recorder"))
}

// ProvideReconciler creates the payment reconciler.
func ProvideReconciler(
	orders order.OrderDomain,
	orderDB outbound.OrderDatabasePort,
	basketDB outbound.BasketDatabasePort,
	voucherDB outbound.VoucherDatabasePort,
	publisher outbound.EventPublisherPort,
	log *zap.Logger,
) *checkout.Reconciler {
	return checkout.NewReconciler(orders, orderDB, basketDB, voucherDB, publisher, log.Named("reconciler"))
}

// ProvideCheckoutDomain creates the checkout domain.
func ProvideCheckoutDomain(
	registry *checkout.Registry,
	store *checkout.StateStore,
	dataCache *checkout.DataCache,
	placer checkout.OrderPlacer,
	recorder *checkout.Recorder,
	reconciler *checkout.Reconciler,
	orderDB outbound.OrderDatabasePort,
	basketDB outbound.BasketDatabasePort,
	stockDB outbound.StockDatabasePort,
	txManager outbound.TransactionPort,
	publisher outbound.EventPublisherPort,
	signer outbound.SignerPort,
	fraudRules checkout.FraudRules,
	ownership checkout.OwnershipFunc,
	checkoutCfg *checkout.Config,
	log *zap.Logger,
) checkout.CheckoutDomain {
	return checkout.NewCheckoutDomain(
		registry,
		store,
		dataCache,
		placer,
		recorder,
		reconciler,
		orderDB,
		basketDB,
		stockDB,
		txManager,
		publisher,
		signer,
		fraudRules,
		ownership,
		checkoutCfg,
		log.Named("checkout"),
	)
}

// ===== HTTP Handler Providers =====

// HandlerSet provides HTTP handlers.
var HandlerSet = wire.NewSet(
	ProvideCheckoutHandler,
	ProvidePaymentCallbackHandler,
	ProvideOrderHandler,
)

// ProvideCheckoutHandler creates the checkout handler.
func ProvideCheckoutHandler(domain checkout.CheckoutDomain, m *metrics.Metrics, log *zap.Logger) inbound.CheckoutHttpPort {
	return ginadapter.NewCheckoutHandler(domain, m, log)
}

// ProvidePaymentCallbackHandler creates the payment callback handler.
func ProvidePaymentCallbackHandler(domain checkout.CheckoutDomain, m *metrics.Metrics, log *zap.Logger) inbound.PaymentCallbackHttpPort {
	return ginadapter.NewPaymentCallbackHandler(domain, m, log)
}

// ProvideOrderHandler creates the order handler.
func ProvideOrderHandler(domain order.OrderDomain, log *zap.Logger) inbound.OrderHttpPort {
	return ginadapter.NewOrderHandler(domain, log)
}

// ===== All Providers =====

// AppSet is the master provider set that includes all dependencies.
var AppSet = wire.NewSet(
	InfraSet,
	PersistenceSet,
	OrderSet,
	CheckoutSet,
	HandlerSet,
)
