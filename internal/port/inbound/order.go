package inbound

import "github.com/gin-gonic/gin"

// OrderHttpPort defines HTTP handler interface for order operations.
type OrderHttpPort interface {
	// GetOrder handles GET /orders/:number
	GetOrder(c *gin.Context)

	// UpdateStatus handles PATCH /orders/:number/status
	UpdateStatus(c *gin.Context)
}
