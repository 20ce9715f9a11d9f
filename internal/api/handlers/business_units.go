package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/api/middleware"
	"github.com/uriel-reyes/sellertools-sub000/internal/domain"
	"github.com/uriel-reyes/sellertools-sub000/internal/service"
)

// HandleListBusinessUnits handles GET /v1/business-units
func HandleListBusinessUnits(units *service.BusinessUnitService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		list, err := units.ListForCustomer(c.Request.Context(), session.CustomerID)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		selected, err := units.Select(list, session.BusinessUnitID)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"businessUnits": list,
			"selectedId":    selected.ID,
		})
	}
}

// SelectBusinessUnitRequest names the unit to remember as selected.
type SelectBusinessUnitRequest struct {
	BusinessUnitID string `json:"businessUnitId" binding:"required"`
}

// HandleSelectBusinessUnit handles PUT /v1/business-units/selected. The
// selection is remembered by reissuing the session token with the unit baked
// in, mirroring the original's session-storage blob.
func HandleSelectBusinessUnit(units *service.BusinessUnitService, sessions *service.SessionService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req SelectBusinessUnitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "businessUnitId is required"})
			return
		}

		list, err := units.ListForCustomer(c.Request.Context(), session.CustomerID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		selected, err := units.Select(list, req.BusinessUnitID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if selected.ID != req.BusinessUnitID {
			c.JSON(http.StatusNotFound, gin.H{"error": "business unit not found for customer"})
			return
		}

		token, err := sessions.IssueToken(&domain.Session{
			SchemaVersion:          domain.SessionSchemaVersion,
			IsLoggedIn:             true,
			CustomerID:             session.CustomerID,
			Email:                  session.Email,
			StoreKey:               session.StoreKey,
			SelectedBusinessUnitID: selected.ID,
		})
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"selectedId": selected.ID,
			"token":      token,
		})
	}
}

// SetBusinessUnitFieldRequest writes one custom field on the unit.
type SetBusinessUnitFieldRequest struct {
	Version int64       `json:"version" binding:"required"`
	Name    string      `json:"name" binding:"required"`
	Value   interface{} `json:"value"`
}

// HandleSetBusinessUnitField handles POST /v1/business-units/:id/custom-field
func HandleSetBusinessUnitField(units *service.BusinessUnitService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SetBusinessUnitFieldRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "version and name are required"})
			return
		}

		version, err := units.SetCustomField(c.Request.Context(), c.Param("id"), req.Version, req.Name, req.Value)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"version": version})
	}
}
