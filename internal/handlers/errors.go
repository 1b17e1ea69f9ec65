package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ArowuTest/homeradio-cashout/internal/middleware"
	"github.com/ArowuTest/homeradio-cashout/internal/services"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slog"
)

// respondError maps service errors onto admin API status codes
func respondError(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidConfig):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, services.ErrConfigNotFound):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "System config not initialised"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	default:
		slog.Error("Admin request failed", "action", action, "error", err, "requestId", c.GetString(middleware.ContextRequestID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

// queryLimit reads ?limit= within [1, max], falling back to def
func queryLimit(c *gin.Context, def, max int) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func actor(c *gin.Context) string {
	if op := c.GetString(middleware.ContextOperator); op != "" {
		return op
	}
	return "unknown"
}
