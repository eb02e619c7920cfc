package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/uniedit/checkout/internal/domain/checkout"
	"github.com/uniedit/checkout/internal/model"
)

// CheckoutDataRequest is the body of PUT /checkout/data/.
type CheckoutDataRequest struct {
	BasketID        uuid.UUID                      `json:"basket_id"`
	BasketToken     string                         `json:"basket_token"`
	EmailAddress    string                         `json:"email_address"`
	ShippingAddress *model.Address                 `json:"shipping_address"`
	BillingAddress  *model.Address                 `json:"billing_address"`
	ShippingMethod  *checkout.ShippingMethodChoice `json:"shipping_method"`
}

// basketQuery names a basket in the query string of GET and DELETE /checkout/data/.
type basketQuery struct {
	BasketID    string `form:"basket_id"`
	BasketToken string `form:"basket_token"`
}

func (q basketQuery) ref() (checkout.BasketRef, bool) {
	ref := checkout.BasketRef{Token: q.BasketToken}
	if q.BasketID == "" {
		return ref, true
	}
	id, err := uuid.Parse(q.BasketID)
	if err != nil {
		return ref, false
	}
	ref.ID = id
	return ref, true
}

// CheckoutData returns what is staged for a basket ahead of checkout.
//
//	@Summary	Get staged checkout data
//	@Tags		checkout
//	@Produce	json
//	@Param		basket_id		query		string	false	"Basket ID"
//	@Param		basket_token	query		string	false	"Signed basket token"
//	@Success	200				{object}	checkout.CheckoutData
//	@Failure	406				{object}	map[string][]string
//	@Router		/checkout/data/ [get]
func (h *checkoutHandler) CheckoutData(c *gin.Context) {
	ref, ok := h.basketRef(c)
	if !ok {
		return
	}
	data, err := h.checkoutDomain.StagedCheckoutData(c.Request.Context(), requestContext(c), ref)
	if err != nil {
		handleCheckoutError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// StageCheckoutData stages email, addresses and shipping method for a basket.
// Fields left out of the body keep their staged value.
//
//	@Summary	Stage checkout data
//	@Tags		checkout
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CheckoutDataRequest	true	"Checkout data"
//	@Success	200		{object}	checkout.CheckoutData
//	@Failure	406		{object}	map[string][]string
//	@Router		/checkout/data/ [put]
func (h *checkoutHandler) StageCheckoutData(c *gin.Context) {
	var req CheckoutDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	data, err := h.checkoutDomain.StageCheckoutData(c.Request.Context(), requestContext(c), &checkout.CheckoutDataInput{
		Basket: checkout.BasketRef{ID: req.BasketID, Token: req.BasketToken},
		Data: checkout.CheckoutData{
			Email:           req.EmailAddress,
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  req.BillingAddress,
			ShippingMethod:  req.ShippingMethod,
		},
	})
	if err != nil {
		handleCheckoutError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// ClearCheckoutData drops everything staged for a basket.
//
//	@Summary	Clear staged checkout data
//	@Tags		checkout
//	@Param		basket_id		query	string	false	"Basket ID"
//	@Param		basket_token	query	string	false	"Signed basket token"
//	@Success	204
//	@Failure	406	{object}	map[string][]string
//	@Router		/checkout/data/ [delete]
func (h *checkoutHandler) ClearCheckoutData(c *gin.Context) {
	ref, ok := h.basketRef(c)
	if !ok {
		return
	}
	if err := h.checkoutDomain.ClearCheckoutData(c.Request.Context(), requestContext(c), ref); err != nil {
		handleCheckoutError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *checkoutHandler) basketRef(c *gin.Context) (checkout.BasketRef, bool) {
	var q basketQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return checkout.BasketRef{}, false
	}
	ref, ok := q.ref()
	if !ok {
		c.JSON(http.StatusNotAcceptable, gin.H{"basket": []string{"Invalid basket."}})
		return checkout.BasketRef{}, false
	}
	return ref, true
}
