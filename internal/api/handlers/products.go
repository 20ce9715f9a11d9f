package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/api/middleware"
	"github.com/uriel-reyes/sellertools-sub000/internal/domain"
	"github.com/uriel-reyes/sellertools-sub000/internal/service"
)

// HandleListProducts handles GET /v1/products
func HandleListProducts(products *service.ProductService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		page, err := products.ListStoreProducts(c.Request.Context(), session.StoreKey, listOptionsFromQuery(c))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// HandleSearchProducts handles GET /v1/products/search
func HandleSearchProducts(products *service.ProductService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		result, committed, err := products.Search(c.Request.Context(), session.StoreKey, c.Query("q"), listOptionsFromQuery(c))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"query":    result.Query,
			"products": result.Products,
			"total":    result.Total,
			"latest":   committed,
		})
	}
}

// SelectionChangeRequest names the product to add or remove.
type SelectionChangeRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// HandleAddToSelection handles POST /v1/products/selection
func HandleAddToSelection(products *service.ProductService, logger *zap.Logger) gin.HandlerFunc {
	return changeSelection(products, logger, products.AddToSelection)
}

// HandleRemoveFromSelection handles DELETE /v1/products/selection
func HandleRemoveFromSelection(products *service.ProductService, logger *zap.Logger) gin.HandlerFunc {
	return changeSelection(products, logger, products.RemoveFromSelection)
}

type selectionChangeFn func(ctx context.Context, selection *domain.ProductSelection, productID string) (int64, error)

// changeSelection resolves the store's selection fresh on every call so the
// update always runs against the current version.
func changeSelection(products *service.ProductService, logger *zap.Logger, apply selectionChangeFn) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req SelectionChangeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "productId is required"})
			return
		}

		selection, err := products.Selection(c.Request.Context(), session.StoreKey)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		version, err := apply(c.Request.Context(), selection, req.ProductID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"selectionId": selection.ID, "version": version})
	}
}
