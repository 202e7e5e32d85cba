package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetNews godoc
// @Summary      Latest market news
// @Description  Returns the most recent cached articles, newest first
// @Tags         market
// @Produce      json
// @Success      200  {array}  domain.NewsRecord
// @Router       /news [get]
func (h *Handler) GetNews(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-news")
	defer span.End()

	c.JSON(http.StatusOK, h.market.News())
}

// GetInsights godoc
// @Summary      Market-wide AI insights
// @Description  Aggregates cached analyses into bullish/bearish lists, high-confidence recommendations and risk buckets
// @Tags         market
// @Produce      json
// @Success      200  {object}  domain.MarketInsights
// @Router       /insights [get]
func (h *Handler) GetInsights(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-insights")
	defer span.End()

	c.JSON(http.StatusOK, h.market.Insights())
}

// GetPerformance godoc
// @Summary      Market performance summary
// @Description  Counts gainers/losers and the day's extremes across tracked stocks
// @Tags         market
// @Produce      json
// @Success      200  {object}  domain.PerformanceSummary
// @Router       /performance [get]
func (h *Handler) GetPerformance(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-performance")
	defer span.End()

	c.JSON(http.StatusOK, h.market.Performance())
}
