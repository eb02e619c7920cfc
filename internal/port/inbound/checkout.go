package inbound

import "github.com/gin-gonic/gin"

// CheckoutHttpPort defines HTTP handler interface for checkout operations.
type CheckoutHttpPort interface {
	// PaymentMethods handles GET /checkout/payment-methods/
	PaymentMethods(c *gin.Context)

	// Checkout handles POST /checkout/
	Checkout(c *gin.Context)

	// CompleteDeferredPayment handles POST /checkout/complete-deferred-payment/
	CompleteDeferredPayment(c *gin.Context)

	// PaymentStates handles GET /checkout/payment-states/ and /checkout/payment-states/:id/
	PaymentStates(c *gin.Context)

	// CheckoutData handles GET /checkout/data/
	CheckoutData(c *gin.Context)

	// StageCheckoutData handles PUT /checkout/data/
	StageCheckoutData(c *gin.Context)

	// ClearCheckoutData handles DELETE /checkout/data/
	ClearCheckoutData(c *gin.Context)
}

// PaymentCallbackHttpPort defines HTTP handler interface for payment method callbacks.
type PaymentCallbackHttpPort interface {
	// CardGetToken handles POST /creditcards/get-token/
	CardGetToken(c *gin.Context)

	// CardAuthorize handles POST /creditcards/authorize/
	CardAuthorize(c *gin.Context)

	// ClientSideAuthorize handles POST /clientside/authorize/
	ClientSideAuthorize(c *gin.Context)
}
