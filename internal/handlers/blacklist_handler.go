package handlers

import (
	"net/http"

	"github.com/ArowuTest/homeradio-cashout/internal/models"
	"github.com/ArowuTest/homeradio-cashout/internal/services"
	"github.com/gin-gonic/gin"
)

// BlacklistHandler handles blacklist HTTP requests
type BlacklistHandler struct {
	blacklistService services.BlacklistService
}

// NewBlacklistHandler creates a new BlacklistHandler
func NewBlacklistHandler(blacklistService services.BlacklistService) *BlacklistHandler {
	return &BlacklistHandler{blacklistService: blacklistService}
}

// ListBlacklist handles GET /admin/blacklist
func (h *BlacklistHandler) ListBlacklist(c *gin.Context) {
	entries, err := h.blacklistService.List(c.Request.Context())
	if err != nil {
		respondError(c, "list blacklist", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// AddToBlacklist handles POST /admin/blacklist
func (h *BlacklistHandler) AddToBlacklist(c *gin.Context) {
	var entry models.BlacklistEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry.AddedBy = actor(c)

	if err := h.blacklistService.Add(c.Request.Context(), entry); err != nil {
		respondError(c, "add to blacklist", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Number blacklisted"})
}

// RemoveFromBlacklist handles DELETE /admin/blacklist/:msisdn
func (h *BlacklistHandler) RemoveFromBlacklist(c *gin.Context) {
	if err := h.blacklistService.Remove(c.Request.Context(), c.Param("msisdn"), actor(c)); err != nil {
		respondError(c, "remove from blacklist", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Number removed from blacklist"})
}
