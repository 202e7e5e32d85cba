// Package insights aggregates per-stock analyses into a market-wide view.
package insights

import (
	"fmt"
	"sort"
	"strings"

	"stockpulse/internal/domain"
)

// Compute builds market-wide insights from the cached analyses. Pure over its
// inputs: entries without an analysis are skipped, tickers are walked in the
// tracked-symbol order so risk buckets and summaries are stable.
func Compute(symbols []domain.TrackedSymbol, entries map[string]domain.CacheEntry, highConfidenceThreshold float64) domain.MarketInsights {
	insights := domain.MarketInsights{
		BullishStocks:                 []domain.InsightEntry{},
		BearishStocks:                 []domain.InsightEntry{},
		HighConfidenceRecommendations: []domain.RecommendationEntry{},
		RiskAnalysis: domain.RiskBuckets{
			Low:    []string{},
			Medium: []string{},
			High:   []string{},
		},
	}

	analyzed := 0
	for _, symbol := range symbols {
		entry, ok := entries[symbol.Ticker]
		if !ok || entry.Analysis == nil {
			continue
		}
		analyzed++
		analysis := *entry.Analysis

		item := domain.InsightEntry{
			Ticker:     symbol.Ticker,
			Confidence: analysis.ConfidenceScore,
			Reasoning:  analysis.Reasoning,
		}
		switch analysis.Sentiment {
		case domain.SentimentBullish:
			insights.BullishStocks = append(insights.BullishStocks, item)
		case domain.SentimentBearish:
			insights.BearishStocks = append(insights.BearishStocks, item)
		}

		if analysis.ConfidenceScore > highConfidenceThreshold {
			insights.HighConfidenceRecommendations = append(insights.HighConfidenceRecommendations, domain.RecommendationEntry{
				Ticker:         symbol.Ticker,
				Recommendation: analysis.Recommendation,
				Confidence:     analysis.ConfidenceScore,
				PriceTarget:    analysis.PriceTarget,
			})
		}

		switch analysis.RiskLevel {
		case domain.RiskLow:
			insights.RiskAnalysis.Low = append(insights.RiskAnalysis.Low, symbol.Ticker)
		case domain.RiskMedium:
			insights.RiskAnalysis.Medium = append(insights.RiskAnalysis.Medium, symbol.Ticker)
		case domain.RiskHigh:
			insights.RiskAnalysis.High = append(insights.RiskAnalysis.High, symbol.Ticker)
		}
	}

	sortByConfidence(insights.BullishStocks)
	sortByConfidence(insights.BearishStocks)
	sort.SliceStable(insights.HighConfidenceRecommendations, func(i, j int) bool {
		return insights.HighConfidenceRecommendations[i].Confidence > insights.HighConfidenceRecommendations[j].Confidence
	})

	insights.Summary = buildSummary(analyzed, insights)
	return insights
}

func sortByConfidence(items []domain.InsightEntry) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Confidence > items[j].Confidence
	})
}

func buildSummary(analyzed int, in domain.MarketInsights) string {
	if analyzed == 0 {
		return "No analyzed stocks available yet."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyzed %d stocks: %d bullish, %d bearish.",
		analyzed, len(in.BullishStocks), len(in.BearishStocks))
	if n := len(in.HighConfidenceRecommendations); n > 0 {
		fmt.Fprintf(&sb, " %d high-confidence recommendations.", n)
	}
	if n := len(in.RiskAnalysis.High); n > 0 {
		fmt.Fprintf(&sb, " Elevated risk: %s.", strings.Join(in.RiskAnalysis.High, ", "))
	}
	return sb.String()
}
