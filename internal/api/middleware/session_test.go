package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/config"
	"github.com/uriel-reyes/sellertools-sub000/internal/domain"
	"github.com/uriel-reyes/sellertools-sub000/internal/service"
)

func newSessionRouter(sessions *service.SessionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SessionMiddleware(sessions, zap.NewNop()))
	router.GET("/whoami", func(c *gin.Context) {
		claims, ok := GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no session in context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"storeKey": claims.StoreKey})
	})
	return router
}

func get(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSessionMiddlewareAcceptsValidToken(t *testing.T) {
	sessions := service.NewSessionService(nil, config.SessionConfig{Secret: "secret", TTL: time.Hour}, zap.NewNop())
	token, err := sessions.IssueToken(&domain.Session{CustomerID: "cust-1", StoreKey: "store-1"})
	require.NoError(t, err)

	w := get(newSessionRouter(sessions), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "store-1")
}

func TestSessionMiddlewareRejectsMissingHeader(t *testing.T) {
	sessions := service.NewSessionService(nil, config.SessionConfig{Secret: "secret", TTL: time.Hour}, zap.NewNop())
	w := get(newSessionRouter(sessions), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionMiddlewareRejectsMalformedHeader(t *testing.T) {
	sessions := service.NewSessionService(nil, config.SessionConfig{Secret: "secret", TTL: time.Hour}, zap.NewNop())
	w := get(newSessionRouter(sessions), "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionMiddlewareRejectsBadToken(t *testing.T) {
	sessions := service.NewSessionService(nil, config.SessionConfig{Secret: "secret", TTL: time.Hour}, zap.NewNop())
	w := get(newSessionRouter(sessions), "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionMiddlewareForbidsTokenWithoutStore(t *testing.T) {
	sessions := service.NewSessionService(nil, config.SessionConfig{Secret: "secret", TTL: time.Hour}, zap.NewNop())
	token, err := sessions.IssueToken(&domain.Session{CustomerID: "cust-1"})
	require.NoError(t, err)

	w := get(newSessionRouter(sessions), "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "no store assigned")
}
