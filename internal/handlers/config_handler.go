package handlers

import (
	"net/http"

	"github.com/ArowuTest/homeradio-cashout/internal/models"
	"github.com/ArowuTest/homeradio-cashout/internal/services"
	"github.com/gin-gonic/gin"
)

// ConfigHandler handles SystemConfig HTTP requests
type ConfigHandler struct {
	configService services.ConfigService
}

// NewConfigHandler creates a new ConfigHandler
func NewConfigHandler(configService services.ConfigService) *ConfigHandler {
	return &ConfigHandler{
		configService: configService,
	}
}

// GetConfig handles GET /admin/config
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	cfg, err := h.configService.Get(c.Request.Context())
	if err != nil {
		respondError(c, "get config", err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// UpdateConfig handles PATCH /admin/config. Only the fields present in the
// body change; the jackpot is not writable.
func (h *ConfigHandler) UpdateConfig(c *gin.Context) {
	var update models.SystemConfigUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.configService.Update(c.Request.Context(), update, actor(c))
	if err != nil {
		respondError(c, "update config", err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}
