package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/api/middleware"
	"github.com/uriel-reyes/sellertools-sub000/internal/service"
)

// HandleListCustomers handles GET /v1/customers
func HandleListCustomers(customers *service.CustomerService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		page, err := customers.List(c.Request.Context(), session.StoreKey, listOptionsFromQuery(c))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"customers": page.Customers,
			"total":     page.Total,
			"page":      page.Page,
			"perPage":   page.PerPage,
		})
	}
}

// HandleGetCustomer handles GET /v1/customers/:id
func HandleGetCustomer(customers *service.CustomerService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer, err := customers.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

// HandleCustomerOrders handles GET /v1/customers/:id/orders
func HandleCustomerOrders(customers *service.CustomerService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		page, err := customers.Orders(c.Request.Context(), session.StoreKey, c.Param("id"), listOptionsFromQuery(c))
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
