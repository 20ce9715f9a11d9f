package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uriel-reyes/sellertools-sub000/internal/api/middleware"
	"github.com/uriel-reyes/sellertools-sub000/internal/config"
)

// HandleContentEmbed handles GET /v1/content/embed. The response is the
// attribute set for the CMS web component; data flows one way, the component
// never calls back into this API.
func HandleContentEmbed(cfg config.ContentConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if cfg.BaseURL == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "content embed is not configured"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"baseUrl":         cfg.BaseURL,
			"businessUnitKey": session.BusinessUnitID,
			"locale":          cfg.Locale,
		})
	}
}
