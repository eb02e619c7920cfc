package gin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/uniedit/checkout/internal/domain/checkout"
	"github.com/uniedit/checkout/internal/model"
	"github.com/uniedit/checkout/internal/port/inbound"
	"github.com/uniedit/checkout/internal/utils/metrics"
	"go.uber.org/zap"
)

// Method codes of the callback-driven payment methods.
const (
	creditCardMethod = "credit-card"
	clientSideMethod = "client-side-card"
)

// callbackHandler implements inbound.PaymentCallbackHttpPort.
type callbackHandler struct {
	checkoutDomain checkout.CheckoutDomain
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

// NewPaymentCallbackHandler creates the HTTP handler for payment method callbacks. m may be nil.
func NewPaymentCallbackHandler(checkoutDomain checkout.CheckoutDomain, m *metrics.Metrics, logger *zap.Logger) inbound.PaymentCallbackHttpPort {
	return &callbackHandler{checkoutDomain: checkoutDomain, metrics: m, logger: logger}
}

// CallbackRequest is posted by the payment form or processor. Any field
// carrying a value in deny marks the payment declined.
type CallbackRequest struct {
	Amount          decimal.Decimal `json:"amount" form:"amount"`
	ReferenceNumber string          `json:"reference_number" form:"reference_number" binding:"required"`
	TransactionID   string          `json:"transaction_id" form:"transaction_id" binding:"required"`
	Deny            string          `json:"deny" form:"deny"`
	UUID            string          `json:"uuid" form:"uuid"`
	ResultToken     string          `json:"result_token" form:"result_token"`
}

// CallbackResponse reports whether the callback succeeded or declined the payment.
type CallbackResponse struct {
	Status string `json:"status"`
}

// CardGetToken handles the first credit card form post.
//
//	@Summary	Credit card token callback
//	@Tags		payment-callbacks
//	@Accept		json,x-www-form-urlencoded
//	@Produce	json
//	@Success	200	{object}	CallbackResponse
//	@Router		/creditcards/get-token/ [post]
func (h *callbackHandler) CardGetToken(c *gin.Context) {
	h.handle(c, "get_token", creditCardMethod, func(*CallbackRequest) string { return "" }, h.checkoutDomain.RequireAuthorization)
}

// CardAuthorize handles the final credit card form post.
//
//	@Summary	Credit card authorization callback
//	@Tags		payment-callbacks
//	@Accept		json,x-www-form-urlencoded
//	@Produce	json
//	@Success	200	{object}	CallbackResponse
//	@Router		/creditcards/authorize/ [post]
func (h *callbackHandler) CardAuthorize(c *gin.Context) {
	h.handle(c, "authorize", creditCardMethod, func(req *CallbackRequest) string { return req.UUID }, h.checkoutDomain.CompleteAuthorization)
}

// ClientSideAuthorize handles the client-side processor's result.
//
//	@Summary	Client-side payment callback
//	@Tags		payment-callbacks
//	@Accept		json,x-www-form-urlencoded
//	@Produce	json
//	@Success	200	{object}	CallbackResponse
//	@Router		/clientside/authorize/ [post]
func (h *callbackHandler) ClientSideAuthorize(c *gin.Context) {
	h.handle(c, "authorize", clientSideMethod, func(req *CallbackRequest) string {
		if req.Deny != "" {
			return ""
		}
		return req.ResultToken
	}, h.checkoutDomain.CompleteAuthorization)
}

type callbackFunc func(ctx context.Context, req checkout.RequestContext, input *checkout.CallbackInput) (model.PaymentState, error)

func (h *callbackHandler) handle(c *gin.Context, step, method string, reference func(*CallbackRequest) string, fn callbackFunc) {
	var req CallbackRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	state, err := fn(c.Request.Context(), requestContext(c), &checkout.CallbackInput{
		MethodCode:    method,
		OrderNumber:   req.ReferenceNumber,
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
		Reference:     reference(&req),
		Deny:          req.Deny != "",
	})
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordCallback(method, step, "error")
		}
		handleCheckoutError(c, h.logger, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordCallback(method, step, state.Status.String())
	}

	status := "Success"
	if state.Status == model.PaymentMethodDeclined {
		status = "Declined"
	}
	c.JSON(http.StatusOK, CallbackResponse{Status: status})
}
