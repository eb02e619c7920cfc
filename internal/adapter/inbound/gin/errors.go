package gin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uniedit/checkout/internal/domain/checkout"
	"github.com/uniedit/checkout/internal/domain/order"
	"github.com/uniedit/checkout/internal/model"
	"go.uber.org/zap"
)

// nonFieldErrors is the field key for problems not tied to one input.
const nonFieldErrors = "non_field_errors"

// handleCheckoutError maps checkout and order domain errors to HTTP responses.
// Client-correctable problems answer 406 with a field map, the way a
// checkout form expects them.
func handleCheckoutError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusNotAcceptable, verr.Fields)
		return
	}

	var statusCode int
	var errorCode string
	var message string

	switch {
	case errors.Is(err, checkout.ErrOrderExists):
		c.JSON(http.StatusNotAcceptable, gin.H{nonFieldErrors: []string{"An non-declined order already exists for this basket."}})
		return

	case errors.Is(err, checkout.ErrMultipleOrders):
		c.JSON(http.StatusNotAcceptable, gin.H{nonFieldErrors: []string{"Multiple orders exist for this basket."}})
		return

	case errors.Is(err, checkout.ErrDuplicateOrderNumber):
		c.JSON(http.StatusNotAcceptable, gin.H{nonFieldErrors: []string{"There is already an order with this number."}})
		return

	case errors.Is(err, checkout.ErrOrderNotDeclined):
		c.JSON(http.StatusNotAcceptable, gin.H{nonFieldErrors: []string{"Can not update an order that isn't in payment declined state."}})
		return

	case errors.Is(err, checkout.ErrDataCacheDisabled):
		statusCode = http.StatusNotImplemented
		errorCode = "checkout_data_disabled"
		message = "Checkout data staging is disabled"

	case errors.Is(err, checkout.ErrNoMethodsPermitted):
		statusCode = http.StatusForbidden
		errorCode = "no_payment_methods"
		message = "No payment methods are permitted"

	case errors.Is(err, checkout.ErrOrderNotFound), errors.Is(err, order.ErrOrderNotFound):
		statusCode = http.StatusNotFound
		errorCode = "order_not_found"
		message = "Order not found"

	case errors.Is(err, checkout.ErrNoSessionOrder):
		statusCode = http.StatusNotFound
		errorCode = "no_checkout_order"
		message = "No order in checkout session"

	case errors.Is(err, checkout.ErrBasketNotFound):
		statusCode = http.StatusNotFound
		errorCode = "basket_not_found"
		message = "Basket not found"

	case errors.Is(err, checkout.ErrStateNotFound):
		statusCode = http.StatusNotFound
		errorCode = "payment_state_not_found"
		message = "Payment method state not found"

	case errors.Is(err, checkout.ErrInvalidToken):
		statusCode = http.StatusBadRequest
		errorCode = "invalid_token"
		message = "Invalid token"

	case errors.Is(err, checkout.ErrUnknownMethod):
		statusCode = http.StatusBadRequest
		errorCode = "unknown_payment_method"
		message = "Unknown payment method"

	case errors.Is(err, checkout.ErrMethodNotAuthorizable):
		statusCode = http.StatusBadRequest
		errorCode = "method_not_authorizable"
		message = "Payment method does not take authorization callbacks"

	case errors.Is(err, checkout.ErrInvalidStateTransition):
		statusCode = http.StatusConflict
		errorCode = "invalid_state_transition"
		message = "Payment method state can not change like that"

	case errors.Is(err, order.ErrInvalidStatus):
		statusCode = http.StatusBadRequest
		errorCode = "invalid_status"
		message = "Invalid order status"

	case errors.Is(err, order.ErrInvalidTransition):
		statusCode = http.StatusConflict
		errorCode = "invalid_transition"
		message = "Order status can not change like that"

	default:
		logger.Error("checkout request failed", zap.String("path", c.FullPath()), zap.Error(err))
		statusCode = http.StatusInternalServerError
		errorCode = "internal_error"
		message = "Internal server error"
	}

	c.JSON(statusCode, model.ErrorResponse{
		Code:    errorCode,
		Message: message,
	})
}

// badRequest answers a request that could not be bound.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, model.ErrorResponse{
		Code:    "invalid_request",
		Message: err.Error(),
	})
}

func isValidation(err error) bool {
	return errors.Is(err, checkout.ErrValidation)
}
