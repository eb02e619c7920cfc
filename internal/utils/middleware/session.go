package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uniedit/checkout/internal/utils/random"
	"github.com/uniedit/checkout/internal/utils/requestctx"
)

const (
	// CheckoutSessionHeader carries the checkout session id for API clients.
	CheckoutSessionHeader = "X-Checkout-Session"
	// CheckoutSessionCookie carries the checkout session id for browsers.
	CheckoutSessionCookie = "checkout_session"
	// CheckoutSessionKey is the context key for the checkout session id.
	CheckoutSessionKey = "checkout_session"

	checkoutSessionIDLength = 32
	checkoutSessionMaxAge   = 14 * 24 * 60 * 60
)

// CheckoutSession resolves the caller's checkout session id from the header or
// cookie, minting a new one when neither is present. The id is echoed back on
// both so that either kind of client can carry it forward.
func CheckoutSession(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CheckoutSessionHeader)
		if id == "" {
			id, _ = c.Cookie(CheckoutSessionCookie)
		}
		if id == "" || len(id) > 128 {
			minted, err := random.SecureToken(checkoutSessionIDLength)
			if err != nil {
				_ = c.Error(err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": gin.H{
						"code":    "INTERNAL_ERROR",
						"message": "internal server error",
					},
				})
				return
			}
			id = minted
		}

		c.Set(CheckoutSessionKey, id)
		c.Request = c.Request.WithContext(requestctx.WithCheckoutSession(c.Request.Context(), id))
		c.Header(CheckoutSessionHeader, id)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CheckoutSessionCookie, id, checkoutSessionMaxAge, "/", "", secureCookie, true)

		c.Next()
	}
}

// GetCheckoutSessionID returns the checkout session id set by CheckoutSession.
func GetCheckoutSessionID(c *gin.Context) string {
	return c.GetString(CheckoutSessionKey)
}
