package handler

import (
	"context"
	"time"

	"stockpulse/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// MarketReader serves cached market data and triggers refresh cycles.
type MarketReader interface {
	Stocks() []domain.StockData
	Stock(ticker string) (domain.StockData, bool)
	Analysis(ticker string) (*domain.AIAnalysis, bool)
	News() []domain.NewsRecord
	Insights() domain.MarketInsights
	Performance() domain.PerformanceSummary
	LastRefresh() time.Time
	Refresh(ctx context.Context, force bool) (bool, error)
}

type Handler struct {
	tracer trace.Tracer
	market MarketReader
}

func New(tracer trace.Tracer, market MarketReader) *Handler {
	return &Handler{
		tracer: tracer,
		market: market,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/stocks", h.GetStocks)
	r.GET("/stocks/:ticker", h.GetStock)
	r.GET("/analysis/:ticker", h.GetAnalysis)
	r.GET("/news", h.GetNews)
	r.GET("/insights", h.GetInsights)
	r.GET("/performance", h.GetPerformance)
	r.GET("/tickers", h.GetTickers)
	r.GET("/refresh", h.TriggerRefresh)
}
