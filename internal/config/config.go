package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	OpenAIAPIKey string
	OpenAIModel  string

	QuoteAPIBaseURL string
	NewsFeedBaseURL string

	RefreshIntervalSecs int
	CycleTimeoutSecs    int
	AnalysisTimeoutSecs int
	NewsMaxArticles     int
	NewsPerSourceLimit  int
	FetchMaxRetries     int
	FetchTimeoutSecs    int

	HighConfidenceThreshold float64
	FallbackConfidence      float64
	FallbackChangeThreshold float64
	StrongMoveThreshold     float64

	OutputDir string
	APIHost   string
	APIPort   int
}

func Load() *Config {
	cfg := &Config{
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
	}

	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, analysis will use the rule-based fallback")
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.QuoteAPIBaseURL = strings.TrimSpace(os.Getenv("QUOTE_API_BASE_URL"))
	cfg.NewsFeedBaseURL = strings.TrimSpace(os.Getenv("NEWS_FEED_BASE_URL"))

	cfg.RefreshIntervalSecs = 60
	if v := os.Getenv("STOCK_REFRESH_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RefreshIntervalSecs = n
		}
	}

	cfg.CycleTimeoutSecs = 30
	if v := strings.TrimSpace(os.Getenv("REFRESH_CYCLE_TIMEOUT_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CycleTimeoutSecs = n
		}
	}

	cfg.AnalysisTimeoutSecs = 12
	if v := strings.TrimSpace(os.Getenv("ANALYSIS_TIMEOUT_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AnalysisTimeoutSecs = n
		}
	}

	cfg.NewsMaxArticles = 6
	if v := strings.TrimSpace(os.Getenv("NEWS_MAX_ARTICLES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.NewsMaxArticles = n
		}
	}

	cfg.NewsPerSourceLimit = 5
	if v := strings.TrimSpace(os.Getenv("NEWS_PER_SOURCE_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.NewsPerSourceLimit = n
		}
	}

	cfg.FetchMaxRetries = 2
	if v := strings.TrimSpace(os.Getenv("FETCH_MAX_RETRIES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.FetchMaxRetries = n
		}
	}

	cfg.FetchTimeoutSecs = 10
	if v := strings.TrimSpace(os.Getenv("FETCH_TIMEOUT_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FetchTimeoutSecs = n
		}
	}

	cfg.HighConfidenceThreshold = 0.7
	if v := strings.TrimSpace(os.Getenv("HIGH_CONFIDENCE_THRESHOLD")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 && n < 1 {
			cfg.HighConfidenceThreshold = n
		}
	}

	cfg.FallbackConfidence = 0.5
	if v := strings.TrimSpace(os.Getenv("FALLBACK_CONFIDENCE")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n >= 0 && n <= 1 {
			cfg.FallbackConfidence = n
		}
	}

	cfg.FallbackChangeThreshold = 2.0
	if v := strings.TrimSpace(os.Getenv("FALLBACK_CHANGE_THRESHOLD")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			cfg.FallbackChangeThreshold = n
		}
	}

	cfg.StrongMoveThreshold = 5.0
	if v := strings.TrimSpace(os.Getenv("STRONG_MOVE_THRESHOLD")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			cfg.StrongMoveThreshold = n
		}
	}

	cfg.OutputDir = strings.TrimSpace(os.Getenv("OUTPUT_DIR"))
	if cfg.OutputDir == "" {
		cfg.OutputDir = "data"
	}

	cfg.APIHost = strings.TrimSpace(os.Getenv("API_HOST"))
	if cfg.APIHost == "" {
		cfg.APIHost = "0.0.0.0"
	}

	cfg.APIPort = 8000
	if v := strings.TrimSpace(os.Getenv("API_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.APIPort = n
		}
	}

	return cfg
}
