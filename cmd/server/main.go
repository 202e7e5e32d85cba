package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockpulse/internal/analyst"
	"stockpulse/internal/cache"
	"stockpulse/internal/config"
	"stockpulse/internal/handler"
	"stockpulse/internal/job"
	"stockpulse/internal/provider"
	"stockpulse/internal/service"
	"stockpulse/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "stockpulse/docs"
)

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initTracerFunc   = tracing.InitTracer
	newLLMClientFunc = analyst.NewOpenAIClient
	newQuoteProvider = func(tracer trace.Tracer, cfg *config.Config) service.QuoteFetcher {
		return provider.NewQuoteProvider(tracer, cfg.QuoteAPIBaseURL, time.Duration(cfg.FetchTimeoutSecs)*time.Second, cfg.FetchMaxRetries)
	}
	newNewsProvider = func(tracer trace.Tracer, cfg *config.Config) service.NewsFetcher {
		return provider.NewNewsProvider(tracer, cfg.NewsFeedBaseURL, time.Duration(cfg.FetchTimeoutSecs)*time.Second)
	}
	startJobFunc           = func(j *job.RefreshJob, ctx context.Context) { go j.Start(ctx) }
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           StockPulse API
// @version         1.0
// @description     AI-enhanced stock tracker serving cached quotes, news and market insights.

// @host      localhost:8000
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	quotes := newQuoteProvider(tracer, cfg)
	news := newNewsProvider(tracer, cfg)

	engine := analyst.New(tracer, newLLMClientFunc(cfg.OpenAIAPIKey), analyst.Config{
		Model:               cfg.OpenAIModel,
		Timeout:             time.Duration(cfg.AnalysisTimeoutSecs) * time.Second,
		FallbackConfidence:  cfg.FallbackConfidence,
		ChangeThreshold:     cfg.FallbackChangeThreshold,
		StrongMoveThreshold: cfg.StrongMoveThreshold,
	})

	store := cache.NewStore()
	journal := cache.NewJournal(cfg.OutputDir)

	market := service.NewMarketService(tracer, quotes, news, engine, store, journal, service.Config{
		RefreshInterval:         time.Duration(cfg.RefreshIntervalSecs) * time.Second,
		CycleTimeout:            time.Duration(cfg.CycleTimeoutSecs) * time.Second,
		NewsMaxArticles:         cfg.NewsMaxArticles,
		NewsPerSourceLimit:      cfg.NewsPerSourceLimit,
		HighConfidenceThreshold: cfg.HighConfidenceThreshold,
	})

	// Background refresh, stopped by ctx cancel
	refreshJob := job.NewRefreshJob(tracer, market, cfg.RefreshIntervalSecs)
	startJobFunc(refreshJob, ctx)

	h := handler.New(tracer, market)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("stockpulse"))
	r.Use(handler.CORS())

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
