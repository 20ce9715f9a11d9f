package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/api/middleware"
	"github.com/uriel-reyes/sellertools-sub000/internal/service"
)

// HandleAssistantToken handles GET /v1/assistant/token. The short-lived token
// lets the browser talk to the assistant backend directly.
func HandleAssistantToken(assistant *service.AssistantService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !assistant.Enabled() {
			c.JSON(http.StatusNotFound, gin.H{"error": "assistant is not configured"})
			return
		}

		token, err := assistant.MintToken(session.CustomerID, session.StoreKey)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

// ChatRequest is one user message to the assistant.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// HandleAssistantChat handles POST /v1/assistant/chat, relaying the message
// to the assistant backend with the seller's store context.
func HandleAssistantChat(assistant *service.AssistantService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
			return
		}

		reply, err := assistant.Chat(c.Request.Context(), session.CustomerID, session.StoreKey, req.Message)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, reply)
	}
}
