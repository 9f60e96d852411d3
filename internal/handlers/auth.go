package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"netrunner-rpg-backend/internal/services"
)

// AuthHandler issues session tokens to the chat gateway. The gateway
// authenticates end users on its platform and exchanges their identity
// for a token here, proving itself with the shared gateway key.
type AuthHandler struct {
	jwtService *services.JWTService
	gatewayKey string
}

func NewAuthHandler(jwtService *services.JWTService, gatewayKey string) *AuthHandler {
	return &AuthHandler{
		jwtService: jwtService,
		gatewayKey: gatewayKey,
	}
}

type sessionRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Username string `json:"username" binding:"required"`
	IsAdmin  bool   `json:"is_admin"`
}

// CreateSession exchanges a gateway-verified identity for a session
// token.
func (h *AuthHandler) CreateSession(c *gin.Context) {
	key := c.GetHeader("X-Gateway-Key")
	if h.gatewayKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.gatewayKey)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid gateway key"})
		return
	}

	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "INVALID_INPUT"})
		return
	}

	token, err := h.jwtService.GenerateToken(req.UserID, req.Username, req.IsAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
