package gin

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/uniedit/checkout/internal/domain/checkout"
	"github.com/uniedit/checkout/internal/utils/middleware"
)

// RecaptchaScoreHeader carries the score computed by the edge for this request.
const RecaptchaScoreHeader = "X-Recaptcha-Score"

// requestContext builds the checkout request context from what the
// session and auth middlewares put on the gin context.
func requestContext(c *gin.Context) checkout.RequestContext {
	req := checkout.RequestContext{SessionID: middleware.GetCheckoutSessionID(c)}

	if userID := middleware.GetUserID(c); userID != uuid.Nil {
		req.User = &checkout.User{
			ID:      userID,
			Email:   middleware.GetEmail(c),
			IsStaff: middleware.IsStaff(c),
		}
	}

	if raw := c.GetHeader(RecaptchaScoreHeader); raw != "" {
		if score, err := strconv.ParseFloat(raw, 64); err == nil {
			req.RecaptchaScore = &score
		}
	}
	return req
}
