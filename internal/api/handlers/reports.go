package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/api/middleware"
	"github.com/uriel-reyes/sellertools-sub000/internal/service"
)

// HandleSalesReport handles GET /v1/reports/sales. The range defaults to the
// trailing 30 days.
func HandleSalesReport(reports *service.ReportService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		to := time.Now().UTC()
		from := to.AddDate(0, 0, -30)
		if raw := c.Query("from"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC 3339"})
				return
			}
			from = parsed
		}
		if raw := c.Query("to"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC 3339"})
				return
			}
			to = parsed
		}
		topN, _ := strconv.Atoi(c.DefaultQuery("top", "5"))

		summary, err := reports.Sales(c.Request.Context(), session.StoreKey, from, to, topN)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}
