package handlers

import (
	"errors"
	"net/http"

	"github.com/ArowuTest/homeradio-cashout/internal/models"
	"github.com/ArowuTest/homeradio-cashout/internal/services"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slog"
)

// DrawHandler handles draw-related HTTP requests
type DrawHandler struct {
	drawService services.DrawService
}

// NewDrawHandler creates a new DrawHandler
func NewDrawHandler(drawService services.DrawService) *DrawHandler {
	return &DrawHandler{
		drawService: drawService,
	}
}

// ExecuteDraw handles POST /admin/draws/execute
func (h *DrawHandler) ExecuteDraw(c *gin.Context) {
	slog.Info("Manual draw requested", "operator", actor(c))
	draw, err := h.drawService.ExecuteDraw(c.Request.Context(), models.DrawTriggerManual)
	if err != nil {
		if errors.Is(err, services.ErrDrawInProgress) {
			c.JSON(http.StatusConflict, gin.H{"status": "skipped", "reason": "draw already in progress"})
			return
		}
		if draw != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Draw execution failed", "draw": draw})
			return
		}
		respondError(c, "execute draw", err)
		return
	}
	c.JSON(http.StatusOK, draw)
}

// ListDraws handles GET /admin/draws
func (h *DrawHandler) ListDraws(c *gin.Context) {
	draws, err := h.drawService.ListDraws(c.Request.Context(), queryLimit(c, 20, 100))
	if err != nil {
		respondError(c, "list draws", err)
		return
	}
	c.JSON(http.StatusOK, draws)
}

// GetDrawByID handles GET /admin/draws/:id
func (h *DrawHandler) GetDrawByID(c *gin.Context) {
	draw, err := h.drawService.GetDraw(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "retrieve draw", err)
		return
	}
	c.JSON(http.StatusOK, draw)
}

// GetDrawTickets handles GET /admin/draws/:id/tickets
func (h *DrawHandler) GetDrawTickets(c *gin.Context) {
	tickets, err := h.drawService.GetDrawTickets(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "retrieve draw tickets", err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// GetJackpotStatus handles GET /jackpot
func (h *DrawHandler) GetJackpotStatus(c *gin.Context) {
	status, err := h.drawService.JackpotStatus(c.Request.Context())
	if err != nil {
		respondError(c, "get jackpot status", err)
		return
	}
	c.JSON(http.StatusOK, status)
}
