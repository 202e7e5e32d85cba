package insights

import (
	"testing"

	"stockpulse/internal/domain"
)

func entryWith(ticker string, sentiment domain.Sentiment, confidence float64, rec domain.Recommendation, risk domain.RiskLevel) domain.CacheEntry {
	return domain.CacheEntry{
		Quote: domain.QuoteRecord{Ticker: ticker},
		Analysis: &domain.AIAnalysis{
			Sentiment:       sentiment,
			ConfidenceScore: confidence,
			Recommendation:  rec,
			RiskLevel:       risk,
			Reasoning:       "test",
		},
	}
}

func TestComputeBucketsAndOrdering(t *testing.T) {
	t.Parallel()

	entries := map[string]domain.CacheEntry{
		"AAPL":  entryWith("AAPL", domain.SentimentBullish, 0.9, domain.RecommendationBuy, domain.RiskLow),
		"MSFT":  entryWith("MSFT", domain.SentimentBullish, 0.6, domain.RecommendationHold, domain.RiskMedium),
		"TSLA":  entryWith("TSLA", domain.SentimentBearish, 0.8, domain.RecommendationSell, domain.RiskHigh),
		"GOOGL": entryWith("GOOGL", domain.SentimentNeutral, 0.75, domain.RecommendationHold, domain.RiskMedium),
	}

	got := Compute(domain.TrackedSymbols, entries, 0.7)

	if len(got.BullishStocks) != 2 {
		t.Fatalf("expected 2 bullish, got %d", len(got.BullishStocks))
	}
	if got.BullishStocks[0].Ticker != "AAPL" || got.BullishStocks[1].Ticker != "MSFT" {
		t.Fatalf("expected confidence-descending bullish order, got %+v", got.BullishStocks)
	}
	if len(got.BearishStocks) != 1 || got.BearishStocks[0].Ticker != "TSLA" {
		t.Fatalf("unexpected bearish bucket: %+v", got.BearishStocks)
	}

	if len(got.HighConfidenceRecommendations) != 3 {
		t.Fatalf("expected 3 high-confidence entries, got %d", len(got.HighConfidenceRecommendations))
	}
	recs := got.HighConfidenceRecommendations
	if recs[0].Ticker != "AAPL" || recs[1].Ticker != "TSLA" || recs[2].Ticker != "GOOGL" {
		t.Fatalf("unexpected recommendation order: %+v", recs)
	}
	// Neutral GOOGL still qualifies: the cut is confidence alone, not sentiment.
	if recs[2].Recommendation != domain.RecommendationHold {
		t.Fatalf("unexpected recommendation: %+v", recs[2])
	}

	if len(got.RiskAnalysis.Low) != 1 || got.RiskAnalysis.Low[0] != "AAPL" {
		t.Fatalf("unexpected low-risk bucket: %+v", got.RiskAnalysis.Low)
	}
	if len(got.RiskAnalysis.Medium) != 2 || len(got.RiskAnalysis.High) != 1 {
		t.Fatalf("unexpected risk buckets: %+v", got.RiskAnalysis)
	}
	// Tracked-symbol order within buckets: MSFT before GOOGL.
	if got.RiskAnalysis.Medium[0] != "MSFT" || got.RiskAnalysis.Medium[1] != "GOOGL" {
		t.Fatalf("unexpected medium bucket order: %+v", got.RiskAnalysis.Medium)
	}
	if got.Summary == "" {
		t.Fatal("expected a non-empty summary")
	}
}

func TestComputeThresholdIsExclusive(t *testing.T) {
	t.Parallel()

	entries := map[string]domain.CacheEntry{
		"AAPL": entryWith("AAPL", domain.SentimentBullish, 0.7, domain.RecommendationBuy, domain.RiskLow),
	}

	got := Compute(domain.TrackedSymbols, entries, 0.7)
	if len(got.HighConfidenceRecommendations) != 0 {
		t.Fatalf("confidence equal to the threshold must not qualify, got %+v", got.HighConfidenceRecommendations)
	}
}

func TestComputeSkipsUnanalyzedEntries(t *testing.T) {
	t.Parallel()

	entries := map[string]domain.CacheEntry{
		"AAPL": {Quote: domain.QuoteRecord{Ticker: "AAPL"}},
	}

	got := Compute(domain.TrackedSymbols, entries, 0.7)
	if len(got.BullishStocks) != 0 || len(got.BearishStocks) != 0 {
		t.Fatalf("entries without analysis must be skipped: %+v", got)
	}
	if got.Summary != "No analyzed stocks available yet." {
		t.Fatalf("unexpected summary: %q", got.Summary)
	}
}

func TestComputeEmptyInput(t *testing.T) {
	t.Parallel()

	got := Compute(domain.TrackedSymbols, map[string]domain.CacheEntry{}, 0.7)
	if got.BullishStocks == nil || got.BearishStocks == nil || got.HighConfidenceRecommendations == nil {
		t.Fatal("buckets must serialize as empty arrays, not null")
	}
	if got.RiskAnalysis.Low == nil || got.RiskAnalysis.Medium == nil || got.RiskAnalysis.High == nil {
		t.Fatal("risk buckets must serialize as empty arrays, not null")
	}
}
