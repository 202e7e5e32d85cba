package domain

import "time"

type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
)

func (s Sentiment) IsValid() bool {
	return s == SentimentBullish || s == SentimentBearish || s == SentimentNeutral
}

type Recommendation string

const (
	RecommendationBuy  Recommendation = "buy"
	RecommendationSell Recommendation = "sell"
	RecommendationHold Recommendation = "hold"
)

func (r Recommendation) IsValid() bool {
	return r == RecommendationBuy || r == RecommendationSell || r == RecommendationHold
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

func (r RiskLevel) IsValid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// QuoteRecord is one symbol's latest market snapshot. A fresh record fully
// replaces the previous one on each refresh cycle.
type QuoteRecord struct {
	Ticker           string    `json:"ticker"`
	CompanyName      string    `json:"company_name"`
	Price            float64   `json:"price"`
	PreviousClose    float64   `json:"previous_close"`
	ChangePercent    float64   `json:"change_percent"`
	Volume           int64     `json:"volume"`
	MarketCap        int64     `json:"market_cap,omitempty"`
	PERatio          float64   `json:"pe_ratio,omitempty"`
	FiftyTwoWeekHigh float64   `json:"fifty_two_week_high,omitempty"`
	FiftyTwoWeekLow  float64   `json:"fifty_two_week_low,omitempty"`
	Sector           string    `json:"sector,omitempty"`
	Industry         string    `json:"industry,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// NewsRecord is one fetched article. Identity is the URL, or title+source when
// the feed carries no link.
type NewsRecord struct {
	Title         string    `json:"title"`
	Content       string    `json:"content,omitempty"`
	URL           string    `json:"url"`
	PublishedDate time.Time `json:"published_date"`
	Source        string    `json:"source"`
	Sentiment     Sentiment `json:"sentiment,omitempty"`
	AISummary     string    `json:"ai_summary,omitempty"`
}

func (n NewsRecord) Identity() string {
	if n.URL != "" {
		return n.URL
	}
	return n.Title + "|" + n.Source
}

// AIAnalysis is attached 1:1 to a quote or article at analysis time and is
// immutable once produced; the next cycle supersedes it wholesale.
// Model names the producing path: "llm:<model>" or "fallback:rule_based_v1".
type AIAnalysis struct {
	Sentiment       Sentiment      `json:"sentiment"`
	ConfidenceScore float64        `json:"confidence_score"`
	KeyInsights     []string       `json:"key_insights"`
	Recommendation  Recommendation `json:"recommendation"`
	RiskLevel       RiskLevel      `json:"risk_level"`
	PriceTarget     *float64       `json:"price_target,omitempty"`
	Reasoning       string         `json:"reasoning"`
	Model           string         `json:"model,omitempty"`
	AnalyzedAt      time.Time      `json:"analyzed_at"`
}

// StockData is the HTTP projection of a cache entry.
type StockData struct {
	QuoteRecord
	AIAnalysis *AIAnalysis `json:"ai_analysis,omitempty"`
}

// CacheEntry pairs a quote with its analysis. Entries are created on first
// fetch and overwritten whole on later cycles, never patched.
type CacheEntry struct {
	Quote     QuoteRecord `json:"quote"`
	Analysis  *AIAnalysis `json:"analysis,omitempty"`
	FetchedAt time.Time   `json:"fetched_at"`
}

// Snapshot is the complete, internally consistent cache state at one point in
// time. Refresh builds a replacement off to the side and swaps it in whole.
type Snapshot struct {
	Entries     map[string]CacheEntry
	News        []NewsRecord
	RefreshedAt time.Time
}

func EmptySnapshot() *Snapshot {
	return &Snapshot{Entries: map[string]CacheEntry{}}
}

type InsightEntry struct {
	Ticker     string  `json:"ticker"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

type RecommendationEntry struct {
	Ticker         string         `json:"ticker"`
	Recommendation Recommendation `json:"recommendation"`
	Confidence     float64        `json:"confidence"`
	PriceTarget    *float64       `json:"price_target,omitempty"`
}

type RiskBuckets struct {
	Low    []string `json:"low"`
	Medium []string `json:"medium"`
	High   []string `json:"high"`
}

// MarketInsights is recomputed on read from the current snapshot; it is never
// stored independently.
type MarketInsights struct {
	BullishStocks                 []InsightEntry        `json:"bullish_stocks"`
	BearishStocks                 []InsightEntry        `json:"bearish_stocks"`
	HighConfidenceRecommendations []RecommendationEntry `json:"high_confidence_recommendations"`
	RiskAnalysis                  RiskBuckets           `json:"risk_analysis"`
	Summary                       string                `json:"summary"`
}

type PerformanceSummary struct {
	TotalStocks      int        `json:"total_stocks"`
	Gainers          int        `json:"gainers"`
	Losers           int        `json:"losers"`
	Flat             int        `json:"flat"`
	AvgChangePercent float64    `json:"avg_change_percent"`
	TopGainer        string     `json:"top_gainer,omitempty"`
	TopLoser         string     `json:"top_loser,omitempty"`
	LastUpdated      *time.Time `json:"last_updated,omitempty"`
}
