package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/service"
	"github.com/uriel-reyes/sellertools-sub000/pkg/errors"
)

// respondError maps the service error taxonomy onto HTTP statuses. Expected
// failures are returned as inline error payloads; only genuinely unexpected
// ones are logged at error level.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch typed := err.(type) {
	case *errors.ErrValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": typed.Error(), "fields": typed.Fields})
	case *errors.ErrUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": typed.Error()})
	case *errors.ErrAccessDenied:
		c.JSON(http.StatusForbidden, gin.H{"error": "accessDenied", "message": typed.Error()})
	case *errors.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": typed.Error()})
	case *errors.ErrVersionConflict:
		c.JSON(http.StatusConflict, gin.H{"error": typed.Error()})
	case *errors.ErrRemote:
		logger.Error("Remote platform call failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "platform request failed"})
	default:
		logger.Error("Unexpected error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// listOptionsFromQuery reads the table's pagination/sorting state from the
// query string.
func listOptionsFromQuery(c *gin.Context) service.ListOptions {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", "20"))
	return service.ListOptions{
		Page:    page,
		PerPage: perPage,
		SortBy:  c.Query("sortBy"),
		SortDir: c.Query("sortDir"),
	}
}

// parseVersion reads the required optimistic-concurrency version from a
// mutation payload field.
func parseVersion(raw string) (int64, error) {
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || version < 1 {
		return 0, &errors.ErrValidation{Message: "a current version is required"}
	}
	return version, nil
}
