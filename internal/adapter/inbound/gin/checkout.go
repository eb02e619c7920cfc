package gin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uniedit/checkout/internal/domain/checkout"
	"github.com/uniedit/checkout/internal/model"
	"github.com/uniedit/checkout/internal/port/inbound"
	"github.com/uniedit/checkout/internal/utils/metrics"
	"go.uber.org/zap"
)

// checkoutHandler implements inbound.CheckoutHttpPort.
type checkoutHandler struct {
	checkoutDomain checkout.CheckoutDomain
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler. m may be nil.
func NewCheckoutHandler(checkoutDomain checkout.CheckoutDomain, m *metrics.Metrics, logger *zap.Logger) inbound.CheckoutHttpPort {
	return &checkoutHandler{checkoutDomain: checkoutDomain, metrics: m, logger: logger}
}

type shippingChargeRequest struct {
	Currency string          `json:"currency"`
	ExclTax  decimal.Decimal `json:"excl_tax"`
	Tax      decimal.Decimal `json:"tax"`
}

// CheckoutRequest is the body of POST /checkout/.
type CheckoutRequest struct {
	BasketID           uuid.UUID             `json:"basket_id"`
	BasketToken        string                `json:"basket_token"`
	GuestEmail         string                `json:"guest_email" binding:"omitempty,email"`
	Total              *decimal.Decimal      `json:"total"`
	ShippingMethodCode string                `json:"shipping_method_code"`
	ShippingCharge     shippingChargeRequest `json:"shipping_charge"`
	ShippingAddress    *model.Address        `json:"shipping_address"`
	BillingAddress     *model.Address        `json:"billing_address"`
	Payment            checkout.RawPayment   `json:"payment" binding:"required"`
}

// CompleteDeferredPaymentRequest is the body of POST /checkout/complete-deferred-payment/.
type CompleteDeferredPaymentRequest struct {
	Order   string              `json:"order" binding:"required"`
	Payment checkout.RawPayment `json:"payment" binding:"required"`
}

// CheckoutResponse is returned once an order has been placed or its payment re-run.
type CheckoutResponse struct {
	Order               *model.OrderResponse                  `json:"order"`
	OrderToken          string                                `json:"order_token"`
	PaymentMethodStates map[string]model.PaymentStateResponse `json:"payment_method_states"`
}

// PaymentStatesResponse is the body of GET /checkout/payment-states/.
type PaymentStatesResponse struct {
	OrderStatus         string                                `json:"order_status"`
	PaymentMethodStates map[string]model.PaymentStateResponse `json:"payment_method_states"`
}

// PaymentMethods lists the methods the caller may pay with, keyed by code.
//
//	@Summary	List permitted payment methods
//	@Tags		checkout
//	@Produce	json
//	@Success	200	{object}	map[string]checkout.MethodInfo
//	@Router		/checkout/payment-methods/ [get]
func (h *checkoutHandler) PaymentMethods(c *gin.Context) {
	methods, err := h.checkoutDomain.PaymentMethods(requestContext(c))
	if err != nil {
		handleCheckoutError(c, h.logger, err)
		return
	}

	out := make(map[string]checkout.MethodInfo, len(methods))
	for _, m := range methods {
		out[m.Code] = m
	}
	c.JSON(http.StatusOK, out)
}

// Checkout places the order for a basket and starts collecting its payments.
//
//	@Summary	Place an order
//	@Tags		checkout
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CheckoutRequest	true	"Checkout"
//	@Success	200		{object}	CheckoutResponse
//	@Failure	406		{object}	map[string][]string
//	@Router		/checkout/ [post]
func (h *checkoutHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	start := time.Now()
	result, err := h.checkoutDomain.PlaceOrder(c.Request.Context(), requestContext(c), &checkout.CheckoutInput{
		BasketID:           req.BasketID,
		BasketToken:        req.BasketToken,
		GuestEmail:         req.GuestEmail,
		Total:              req.Total,
		ShippingMethodCode: req.ShippingMethodCode,
		ShippingCharge: checkout.ShippingCharge{
			Currency: req.ShippingCharge.Currency,
			ExclTax:  req.ShippingCharge.ExclTax,
			Tax:      req.ShippingCharge.Tax,
		},
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		Payment:         req.Payment,
	})
	h.record("checkout", result, err, start)
	if err != nil {
		handleCheckoutError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, h.checkoutResponse(result))
}

// CompleteDeferredPayment pays for an order placed with a deferred method.
//
//	@Summary	Complete a deferred payment
//	@Tags		checkout
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CompleteDeferredPaymentRequest	true	"Signed order token and payment"
//	@Success	200		{object}	CheckoutResponse
//	@Failure	406		{object}	map[string][]string
//	@Router		/checkout/complete-deferred-payment/ [post]
func (h *checkoutHandler) CompleteDeferredPayment(c *gin.Context) {
	var req CompleteDeferredPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	start := time.Now()
	result, err := h.checkoutDomain.CompleteDeferredPayment(c.Request.Context(), requestContext(c), &checkout.DeferredPaymentInput{
		OrderToken: req.Order,
		Payment:    req.Payment,
	})
	h.record("complete_deferred_payment", result, err, start)
	if err != nil {
		handleCheckoutError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, h.checkoutResponse(result))
}

// PaymentStates reports the status of the session's order and its payment states.
//
//	@Summary	Poll payment states
//	@Tags		checkout
//	@Produce	json
//	@Param		id	path		string	false	"Order ID"
//	@Success	200	{object}	PaymentStatesResponse
//	@Failure	404	{object}	model.ErrorResponse
//	@Router		/checkout/payment-states/ [get]
func (h *checkoutHandler) PaymentStates(c *gin.Context) {
	var orderID *uuid.UUID
	if raw := c.Param("id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusNotFound, model.ErrorResponse{Code: "order_not_found", Message: "Order not found"})
			return
		}
		orderID = &id
	}

	result, err := h.checkoutDomain.PaymentStates(c.Request.Context(), requestContext(c), orderID)
	if err != nil {
		handleCheckoutError(c, h.logger, err)
		return
	}

	resp := PaymentStatesResponse{OrderStatus: result.OrderStatus}
	if len(result.States) > 0 {
		resp.PaymentMethodStates = result.States.ToResponse()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *checkoutHandler) checkoutResponse(result *checkout.CheckoutResult) CheckoutResponse {
	if h.metrics != nil {
		for _, state := range result.States {
			h.metrics.RecordPaymentState(state.Status.String())
		}
	}
	return CheckoutResponse{
		Order:               result.Order.ToResponse(),
		OrderToken:          result.OrderToken,
		PaymentMethodStates: result.States.ToResponse(),
	}
}

// record counts a checkout run by the order status it left behind.
func (h *checkoutHandler) record(operation string, result *checkout.CheckoutResult, err error, start time.Time) {
	if h.metrics == nil {
		return
	}
	outcome := "error"
	switch {
	case err != nil && isValidation(err):
		outcome = "rejected"
	case err == nil:
		outcome = result.Order.Status
	}
	h.metrics.RecordCheckout(operation, outcome, time.Since(start))
}
