package app

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/uniedit/checkout/cmd/server/docs" // swagger docs
	"github.com/uniedit/checkout/internal/shared/config"
	"github.com/uniedit/checkout/internal/utils/middleware"
)

// App represents the checkout service.
type App struct {
	config *config.Config
	deps   *Dependencies
	router *gin.Engine
	logger *zap.Logger

	// Cleanup functions
	cleanupFuncs []func()
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	deps, cleanup, err := InitializeDependencies(cfg)
	if err != nil {
		return nil, fmt.Errorf("init dependencies: %w", err)
	}

	return newApp(cfg, deps, cleanup), nil
}

func newApp(cfg *config.Config, deps *Dependencies, cleanup func()) *App {
	app := &App{
		config:       cfg,
		deps:         deps,
		logger:       deps.Logger,
		cleanupFuncs: []func(){cleanup},
	}

	app.router = app.setupRouter()
	app.registerRoutes()

	return app
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	// Set Gin mode based on environment
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	cors := middleware.DefaultCORSConfig()
	if len(a.config.Server.AllowedOrigins) > 0 {
		cors.AllowOrigins = a.config.Server.AllowedOrigins
	}

	// Apply global middleware
	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.Metrics(a.deps.Metrics))
	r.Use(middleware.CORS(cors))

	// Health check endpoint
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.deps.MetricsRegistry, promhttp.HandlerOpts{})))

	// Swagger documentation endpoint
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	return r
}

// registerRoutes registers all HTTP routes.
func (a *App) registerRoutes() {
	limits := a.config.Server.RateLimit
	limiter := a.deps.RateLimiter
	idempotent := middleware.Idempotency(a.deps.Redis, a.config.Server.IdempotencyTTL)

	// API v1 group. Every request carries a checkout session and, optionally, a user.
	v1 := a.router.Group("/api/v1")
	v1.Use(middleware.CheckoutSession(a.config.Server.SecureCookies))
	v1.Use(middleware.OptionalAuth(a.deps.AccessTokens))

	checkoutHandler := a.deps.CheckoutHandler
	checkoutGroup := v1.Group("/checkout")
	{
		checkoutGroup.GET("/payment-methods/", checkoutHandler.PaymentMethods)
		checkoutGroup.GET("/payment-states/", checkoutHandler.PaymentStates)
		checkoutGroup.GET("/payment-states/:id/", checkoutHandler.PaymentStates)
		checkoutGroup.GET("/data/", checkoutHandler.CheckoutData)
		checkoutGroup.PUT("/data/", checkoutHandler.StageCheckoutData)
		checkoutGroup.DELETE("/data/", checkoutHandler.ClearCheckoutData)

		placing := checkoutGroup.Group("")
		placing.Use(middleware.RateLimitByEndpoint(limiter, limits.CheckoutLimit, limits.Window))
		placing.Use(idempotent)
		placing.POST("/", checkoutHandler.Checkout)
		placing.POST("/complete-deferred-payment/", checkoutHandler.CompleteDeferredPayment)
	}

	callbackHandler := a.deps.PaymentCallbackHandler
	callbacks := v1.Group("")
	callbacks.Use(middleware.RateLimitByEndpoint(limiter, limits.CallbackLimit, limits.Window))
	{
		callbacks.POST("/creditcards/get-token/", callbackHandler.CardGetToken)
		callbacks.POST("/creditcards/authorize/", callbackHandler.CardAuthorize)
		callbacks.POST("/clientside/authorize/", callbackHandler.ClientSideAuthorize)
	}

	orderHandler := a.deps.OrderHandler
	orders := v1.Group("/orders")
	orders.Use(middleware.RequireAuth(a.deps.AccessTokens))
	{
		orders.GET("/:number", orderHandler.GetOrder)
		orders.PATCH("/:number/status", middleware.RequireStaff(), orderHandler.UpdateStatus)
	}
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Stop stops the application and releases resources.
func (a *App) Stop() {
	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}
}
