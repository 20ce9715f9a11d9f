package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/api/handlers"
	"github.com/uriel-reyes/sellertools-sub000/internal/api/middleware"
	"github.com/uriel-reyes/sellertools-sub000/internal/config"
	"github.com/uriel-reyes/sellertools-sub000/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, services *service.Services, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	idempotency := middleware.NewIdempotencyStore(24 * time.Hour)

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Seller Console API",
			"endpoints": []string{
				"GET /health",
				"POST /v1/session/login",
				"GET /v1/business-units",
				"GET /v1/orders",
				"GET /v1/customers",
				"GET /v1/products",
				"PUT /v1/products/:id/price",
				"GET /v1/promotions",
				"GET /v1/reports/sales",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Login is the only unauthenticated v1 route; it is still rate limited.
	router.POST("/v1/session/login", limiter.Middleware(), handlers.HandleLogin(services.Sessions, logger))

	// API v1 routes
	v1 := router.Group("/v1")
	v1.Use(limiter.Middleware())
	v1.Use(middleware.SessionMiddleware(services.Sessions, logger))
	{
		v1.POST("/session/logout", handlers.HandleLogout(services.Sessions))

		v1.GET("/business-units", handlers.HandleListBusinessUnits(services.BusinessUnits, logger))

		v1.GET("/orders", handlers.HandleListOrders(services.Orders, logger))
		v1.GET("/orders/:id", handlers.HandleGetOrder(services.Orders, logger))

		v1.GET("/customers", handlers.HandleListCustomers(services.Customers, logger))
		v1.GET("/customers/:id", handlers.HandleGetCustomer(services.Customers, logger))
		v1.GET("/customers/:id/orders", handlers.HandleCustomerOrders(services.Customers, logger))

		v1.GET("/products", handlers.HandleListProducts(services.Products, logger))
		v1.GET("/products/search", handlers.HandleSearchProducts(services.Products, logger))

		v1.GET("/promotions", handlers.HandleListPromotions(services.Promotions, logger))
		v1.GET("/promotions/:id", handlers.HandleGetPromotion(services.Promotions, logger))

		v1.GET("/price-workflows", handlers.HandleListPriceWorkflows(services.Prices, logger))

		v1.GET("/reports/sales", handlers.HandleSalesReport(services.Reports, logger))

		v1.GET("/assistant/token", handlers.HandleAssistantToken(services.Assistant, logger))
		v1.GET("/content/embed", handlers.HandleContentEmbed(cfg.Content))

		// Mutating routes replay safely behind an idempotency key.
		mutating := v1.Group("")
		mutating.Use(middleware.IdempotencyMiddleware(idempotency, logger))
		{
			mutating.PUT("/business-units/selected", handlers.HandleSelectBusinessUnit(services.BusinessUnits, services.Sessions, logger))
			mutating.POST("/business-units/:id/custom-field", handlers.HandleSetBusinessUnitField(services.BusinessUnits, logger))

			mutating.POST("/orders/:id/order-state", handlers.HandleChangeOrderState(services.Orders, logger))
			mutating.POST("/orders/:id/state", handlers.HandleTransitionOrderState(services.Orders, logger))

			mutating.POST("/products/selection", handlers.HandleAddToSelection(services.Products, logger))
			mutating.DELETE("/products/selection", handlers.HandleRemoveFromSelection(services.Products, logger))

			mutating.PUT("/products/:id/price", handlers.HandleUpdatePrice(services.Prices, logger))
			mutating.POST("/price-workflows/:id/resume", handlers.HandleResumePriceWorkflow(services.Prices, logger))

			mutating.POST("/promotions", handlers.HandleCreatePromotion(services.Promotions, logger))
			mutating.PUT("/promotions/:id", handlers.HandleUpdatePromotion(services.Promotions, logger))
			mutating.DELETE("/promotions/:id", handlers.HandleDeletePromotion(services.Promotions, logger))

			mutating.POST("/assistant/chat", handlers.HandleAssistantChat(services.Assistant, logger))
		}
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
