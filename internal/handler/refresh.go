package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TriggerRefresh godoc
// @Summary      Trigger a refresh cycle
// @Description  Forces one refresh cycle. A cycle already in flight absorbs the trigger and triggered is false.
// @Tags         market
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /refresh [get]
func (h *Handler) TriggerRefresh(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.trigger-refresh")
	defer span.End()

	triggered, err := h.market.Refresh(ctx, true)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"triggered": triggered,
	})
}
