package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/api/middleware"
	"github.com/uriel-reyes/sellertools-sub000/internal/service"
)

// HandleListPromotions handles GET /v1/promotions
func HandleListPromotions(promotions *service.PromotionService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		results, err := promotions.List(c.Request.Context(), session.StoreKey, listOptionsFromQuery(c))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"promotions": results})
	}
}

// HandleGetPromotion handles GET /v1/promotions/:id
func HandleGetPromotion(promotions *service.PromotionService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := promotions.GetForEdit(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// HandleCreatePromotion handles POST /v1/promotions
func HandleCreatePromotion(promotions *service.PromotionService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var input service.PromotionInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid promotion payload"})
			return
		}

		promotion, err := promotions.Create(c.Request.Context(), session.StoreKey, input)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, promotion)
	}
}

// UpdatePromotionRequest wraps the promotion fields with the expected version.
type UpdatePromotionRequest struct {
	Version int64 `json:"version" binding:"required"`
	service.PromotionInput
}

// HandleUpdatePromotion handles PUT /v1/promotions/:id
func HandleUpdatePromotion(promotions *service.PromotionService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req UpdatePromotionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "version and promotion fields are required"})
			return
		}

		version, err := promotions.Update(c.Request.Context(), c.Param("id"), req.Version, session.StoreKey, req.PromotionInput)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "version": version})
	}
}

// HandleDeletePromotion handles DELETE /v1/promotions/:id
func HandleDeletePromotion(promotions *service.PromotionService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		version, err := parseVersion(c.Query("version"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "version query parameter is required"})
			return
		}

		if err := promotions.Delete(c.Request.Context(), c.Param("id"), version); err != nil {
			respondError(c, logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
