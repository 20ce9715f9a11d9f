package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/api/middleware"
	"github.com/uriel-reyes/sellertools-sub000/internal/service"
)

// UpdatePriceRequest carries the new decimal price for a product on the
// store's channel.
type UpdatePriceRequest struct {
	Price        float64 `json:"price" binding:"required"`
	KnownPriceID string  `json:"knownPriceId"`
}

// HandleUpdatePrice handles PUT /v1/products/:id/price
func HandleUpdatePrice(prices *service.PriceService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req UpdatePriceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price is required"})
			return
		}

		wf, err := prices.UpdatePrice(c.Request.Context(), service.UpdatePriceRequest{
			ProductID:    c.Param("id"),
			ChannelKey:   session.StoreKey,
			Price:        req.Price,
			KnownPriceID: req.KnownPriceID,
		})
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"workflow": wf})
	}
}

// HandleListPriceWorkflows handles GET /v1/price-workflows. It surfaces
// interrupted runs so an operator can resume them.
func HandleListPriceWorkflows(prices *service.PriceService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		workflows, err := prices.ListInterrupted(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"workflows": workflows})
	}
}

// HandleResumePriceWorkflow handles POST /v1/price-workflows/:id/resume
func HandleResumePriceWorkflow(prices *service.PriceService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		wf, err := prices.Resume(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"workflow": wf})
	}
}
