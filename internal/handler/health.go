package handler

import (
	"net/http"
	"time"

	"stockpulse/internal/domain"

	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary      Health check
// @Description  Returns the health status of the service and cache freshness
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	var lastUpdate any
	if t := h.market.LastRefresh(); !t.IsZero() {
		lastUpdate = t.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"stocks_tracked": len(domain.TrackedSymbols),
		"last_update":    lastUpdate,
	})
}
