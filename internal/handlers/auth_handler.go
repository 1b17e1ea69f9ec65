package handlers

import (
	"net/http"

	"github.com/ArowuTest/homeradio-cashout/internal/models"
	"github.com/ArowuTest/homeradio-cashout/internal/services"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication related HTTP requests
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// IssueToken handles POST /auth/token
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req models.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.authService.IssueToken(c.Request.Context(), req)
	if err != nil {
		respondError(c, "issue token", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
