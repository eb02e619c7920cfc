package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniedit/checkout/internal/adapter/outbound/token"
	"github.com/uniedit/checkout/internal/shared/config"
	"github.com/uniedit/checkout/internal/utils/metrics"
	"github.com/uniedit/checkout/internal/utils/middleware"
	"go.uber.org/zap"
)

// stubHandlers answers every route with 204 and remembers which one ran.
type stubHandlers struct {
	called  string
	session string
}

func (s *stubHandlers) hit(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.called = name
		s.session = middleware.GetCheckoutSessionID(c)
		c.Status(http.StatusNoContent)
	}
}

func (s *stubHandlers) PaymentMethods(c *gin.Context)          { s.hit("payment_methods")(c) }
func (s *stubHandlers) Checkout(c *gin.Context)                { s.hit("checkout")(c) }
func (s *stubHandlers) CompleteDeferredPayment(c *gin.Context) { s.hit("deferred")(c) }
func (s *stubHandlers) PaymentStates(c *gin.Context)           { s.hit("payment_states")(c) }
func (s *stubHandlers) CheckoutData(c *gin.Context)            { s.hit("checkout_data")(c) }
func (s *stubHandlers) StageCheckoutData(c *gin.Context)       { s.hit("stage_checkout_data")(c) }
func (s *stubHandlers) ClearCheckoutData(c *gin.Context)       { s.hit("clear_checkout_data")(c) }
func (s *stubHandlers) CardGetToken(c *gin.Context)            { s.hit("get_token")(c) }
func (s *stubHandlers) CardAuthorize(c *gin.Context)           { s.hit("card_authorize")(c) }
func (s *stubHandlers) ClientSideAuthorize(c *gin.Context)     { s.hit("client_authorize")(c) }
func (s *stubHandlers) GetOrder(c *gin.Context)                { s.hit("get_order")(c) }
func (s *stubHandlers) UpdateStatus(c *gin.Context)            { s.hit("update_status")(c) }

func newTestApp(t *testing.T) (*App, *stubHandlers) {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{AllowedOrigins: []string{"https://shop.example.com"}},
		Auth:   config.AuthConfig{JWTSecret: "test-secret", AccessTokenExpiry: time.Minute},
		Log:    config.LogConfig{Level: "info"},
	}
	reg := prometheus.NewRegistry()
	stub := &stubHandlers{}
	deps := &Dependencies{
		Config:                 cfg,
		Logger:                 zap.NewNop(),
		MetricsRegistry:        reg,
		Metrics:                metrics.New("checkout_test", reg),
		AccessTokens:           ProvideAccessTokens(cfg),
		CheckoutHandler:        stub,
		PaymentCallbackHandler: stub,
		OrderHandler:           stub,
	}
	return newApp(cfg, deps, func() {}), stub
}

func bearer(t *testing.T, isStaff bool) string {
	t.Helper()
	tokens := token.NewAccessManager(&token.AccessConfig{Secret: "test-secret", Expiry: time.Minute})
	tok, _, err := tokens.GenerateAccessToken(uuid.New(), "shopper@example.com", isStaff)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestApp_Routes(t *testing.T) {
	a, stub := newTestApp(t)
	router := a.Router()

	serve := func(method, path, auth string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.CheckoutSessionHeader, "session-abc")
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("health", func(t *testing.T) {
		w := serve(http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("metrics", func(t *testing.T) {
		serve(http.MethodGet, "/healthz", "")
		w := serve(http.MethodGet, "/metrics", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "checkout_test_http_requests_total")
	})

	routes := []struct {
		method, path, want string
	}{
		{http.MethodGet, "/api/v1/checkout/payment-methods/", "payment_methods"},
		{http.MethodPost, "/api/v1/checkout/", "checkout"},
		{http.MethodPost, "/api/v1/checkout/complete-deferred-payment/", "deferred"},
		{http.MethodGet, "/api/v1/checkout/payment-states/", "payment_states"},
		{http.MethodGet, "/api/v1/checkout/payment-states/" + uuid.NewString() + "/", "payment_states"},
		{http.MethodGet, "/api/v1/checkout/data/", "checkout_data"},
		{http.MethodPut, "/api/v1/checkout/data/", "stage_checkout_data"},
		{http.MethodDelete, "/api/v1/checkout/data/", "clear_checkout_data"},
		{http.MethodPost, "/api/v1/creditcards/get-token/", "get_token"},
		{http.MethodPost, "/api/v1/creditcards/authorize/", "card_authorize"},
		{http.MethodPost, "/api/v1/clientside/authorize/", "client_authorize"},
	}
	for _, tt := range routes {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			stub.called = ""
			w := serve(tt.method, tt.path, "")
			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, tt.want, stub.called)
			assert.Equal(t, "session-abc", stub.session)
		})
	}

	t.Run("orders require a user", func(t *testing.T) {
		stub.called = ""
		w := serve(http.MethodGet, "/api/v1/orders/ORD-1", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, stub.called)

		w = serve(http.MethodGet, "/api/v1/orders/ORD-1", bearer(t, false))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "get_order", stub.called)
	})

	t.Run("status updates require staff", func(t *testing.T) {
		stub.called = ""
		w := serve(http.MethodPatch, "/api/v1/orders/ORD-1/status", bearer(t, false))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, stub.called)

		w = serve(http.MethodPatch, "/api/v1/orders/ORD-1/status", bearer(t, true))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "update_status", stub.called)
	})

	t.Run("cors uses configured origins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/checkout/", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})
}
