package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/service"
)

const SessionContextKey = "session"

// SessionMiddleware authenticates requests using the console session token.
func SessionMiddleware(sessions *service.SessionService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		// Extract Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := sessions.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			logger.Warn("Failed to authenticate session", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			c.Abort()
			return
		}

		// A token without a store key should not exist; treat it as the
		// accessDenied case rather than letting store-less queries through.
		if claims.StoreKey == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "no store assigned"})
			c.Abort()
			return
		}

		c.Set(SessionContextKey, claims)
		c.Next()
	}
}

// GetSessionFromContext retrieves the session claims from the Gin context
func GetSessionFromContext(c *gin.Context) (*service.SessionClaims, bool) {
	value, exists := c.Get(SessionContextKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*service.SessionClaims)
	return claims, ok
}
