package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/api/middleware"
	"github.com/uriel-reyes/sellertools-sub000/internal/domain"
	"github.com/uriel-reyes/sellertools-sub000/internal/service"
)

// OrderRow is a list row: the raw timestamp is kept alongside the display
// string so the client never has to re-parse a formatted date.
type OrderRow struct {
	domain.Order
	CreatedAtDisplay string `json:"createdAtDisplay"`
}

func toOrderRow(order domain.Order) OrderRow {
	return OrderRow{
		Order:            order,
		CreatedAtDisplay: order.CreatedAt.Format(time.RFC822),
	}
}

// HandleListOrders handles GET /v1/orders
func HandleListOrders(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		page, err := orders.List(c.Request.Context(), session.StoreKey, listOptionsFromQuery(c))
		if err != nil {
			respondError(c, logger, err)
			return
		}

		rows := make([]OrderRow, 0, len(page.Orders))
		for _, order := range page.Orders {
			rows = append(rows, toOrderRow(order))
		}
		c.JSON(http.StatusOK, gin.H{
			"orders":  rows,
			"total":   page.Total,
			"page":    page.Page,
			"perPage": page.PerPage,
		})
	}
}

// HandleGetOrder handles GET /v1/orders/:id
func HandleGetOrder(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := orders.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toOrderRow(*order))
	}
}

// ChangeOrderStateRequest carries the target business status and the current
// version.
type ChangeOrderStateRequest struct {
	Version    int64             `json:"version" binding:"required"`
	OrderState domain.OrderState `json:"orderState" binding:"required"`
}

// HandleChangeOrderState handles POST /v1/orders/:id/order-state
func HandleChangeOrderState(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChangeOrderStateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "version and orderState are required"})
			return
		}

		order, err := orders.ChangeOrderState(c.Request.Context(), c.Param("id"), req.Version, req.OrderState)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// TransitionOrderStateRequest carries the target workflow state key and the
// current version.
type TransitionOrderStateRequest struct {
	Version  int64  `json:"version" binding:"required"`
	StateKey string `json:"stateKey" binding:"required"`
}

// HandleTransitionOrderState handles POST /v1/orders/:id/state
func HandleTransitionOrderState(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TransitionOrderStateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "version and stateKey are required"})
			return
		}

		order, err := orders.TransitionState(c.Request.Context(), c.Param("id"), req.Version, req.StateKey)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
