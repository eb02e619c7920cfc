package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uniedit/checkout/internal/domain/order"
	"github.com/uniedit/checkout/internal/model"
	"github.com/uniedit/checkout/internal/port/inbound"
	"github.com/uniedit/checkout/internal/utils/middleware"
	"go.uber.org/zap"
)

// orderHandler implements inbound.OrderHttpPort.
type orderHandler struct {
	orderDomain order.OrderDomain
	logger      *zap.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(orderDomain order.OrderDomain, logger *zap.Logger) inbound.OrderHttpPort {
	return &orderHandler{orderDomain: orderDomain, logger: logger}
}

// UpdateStatusRequest is the body of PATCH /orders/:number/status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetOrder returns an order to its owner or to staff.
//
//	@Summary	Get an order
//	@Tags		orders
//	@Produce	json
//	@Security	BearerAuth
//	@Param		number	path		string	true	"Order number"
//	@Success	200		{object}	model.OrderResponse
//	@Failure	404		{object}	model.ErrorResponse
//	@Router		/orders/{number} [get]
func (h *orderHandler) GetOrder(c *gin.Context) {
	ord, err := h.orderDomain.GetOrderByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		handleCheckoutError(c, h.logger, err)
		return
	}

	// Other customers' orders are reported missing.
	userID := middleware.GetUserID(c)
	if !middleware.IsStaff(c) && (ord.UserID == nil || *ord.UserID != userID) {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Code: "order_not_found", Message: "Order not found"})
		return
	}

	c.JSON(http.StatusOK, ord.ToResponse())
}

// UpdateStatus moves an order along the status pipeline.
//
//	@Summary	Change an order's status
//	@Tags		orders
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		number	path		string				true	"Order number"
//	@Param		request	body		UpdateStatusRequest	true	"New status"
//	@Success	200		{object}	model.OrderResponse
//	@Failure	409		{object}	model.ErrorResponse
//	@Router		/orders/{number}/status [patch]
func (h *orderHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ord, err := h.orderDomain.UpdateStatusByNumber(c.Request.Context(), c.Param("number"), order.OrderStatus(req.Status))
	if err != nil {
		handleCheckoutError(c, h.logger, err)
		return
	}

	h.logger.Info("order status updated by staff",
		zap.String("order_number", ord.Number),
		zap.String("status", ord.Status),
		zap.Stringer("staff_id", middleware.GetUserID(c)),
	)
	c.JSON(http.StatusOK, ord.ToResponse())
}
