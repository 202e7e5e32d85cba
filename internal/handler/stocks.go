package handler

import (
	"net/http"
	"strings"

	"stockpulse/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetStocks godoc
// @Summary      List all tracked stocks
// @Description  Returns cached quote and analysis data for every tracked stock. Empty before the first refresh cycle.
// @Tags         stocks
// @Produce      json
// @Success      200  {array}  domain.StockData
// @Router       /stocks [get]
func (h *Handler) GetStocks(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-stocks")
	defer span.End()

	c.JSON(http.StatusOK, h.market.Stocks())
}

// GetStock godoc
// @Summary      Get one stock
// @Description  Returns cached quote and analysis data for a single ticker
// @Tags         stocks
// @Produce      json
// @Param        ticker  path  string  true  "Stock ticker"
// @Success      200  {object}  domain.StockData
// @Failure      404  {object}  map[string]string
// @Router       /stocks/{ticker} [get]
func (h *Handler) GetStock(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-stock")
	defer span.End()

	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	span.SetAttributes(attribute.String("ticker", ticker))

	if !domain.IsValidTicker(ticker) {
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid ticker: " + c.Param("ticker")})
		return
	}

	stock, ok := h.market.Stock(ticker)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no data for ticker " + ticker})
		return
	}
	c.JSON(http.StatusOK, stock)
}

// GetAnalysis godoc
// @Summary      Get AI analysis for one stock
// @Description  Returns only the analysis portion of a cached stock entry
// @Tags         stocks
// @Produce      json
// @Param        ticker  path  string  true  "Stock ticker"
// @Success      200  {object}  domain.AIAnalysis
// @Failure      404  {object}  map[string]string
// @Router       /analysis/{ticker} [get]
func (h *Handler) GetAnalysis(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-analysis")
	defer span.End()

	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	span.SetAttributes(attribute.String("ticker", ticker))

	analysis, ok := h.market.Analysis(ticker)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no analysis for ticker " + ticker})
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// GetTickers godoc
// @Summary      List tracked tickers
// @Description  Returns the fixed set of tracked companies
// @Tags         stocks
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /tickers [get]
func (h *Handler) GetTickers(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-tickers")
	defer span.End()

	c.JSON(http.StatusOK, gin.H{
		"tickers": domain.TrackedTickers(),
		"count":   len(domain.TrackedSymbols),
	})
}
