package analyst

import (
	"fmt"
	"strings"

	"stockpulse/internal/domain"
)

// FallbackModel names the deterministic rule-based analysis path.
const FallbackModel = "fallback:rule_based_v1"

const fallbackReasoning = "rule-based fallback analysis"

// fallbackQuote derives an analysis from the sign and magnitude of the price
// change: beyond the change threshold the sentiment turns bullish/bearish, and
// beyond the strong-move threshold the recommendation turns buy/sell.
func (a *Analyst) fallbackQuote(q domain.QuoteRecord) domain.AIAnalysis {
	change := q.ChangePercent

	sentiment := domain.SentimentNeutral
	if change > a.cfg.ChangeThreshold {
		sentiment = domain.SentimentBullish
	} else if change < -a.cfg.ChangeThreshold {
		sentiment = domain.SentimentBearish
	}

	recommendation := domain.RecommendationHold
	if change >= a.cfg.StrongMoveThreshold {
		recommendation = domain.RecommendationBuy
	} else if change <= -a.cfg.StrongMoveThreshold {
		recommendation = domain.RecommendationSell
	}

	return domain.AIAnalysis{
		Sentiment:       sentiment,
		ConfidenceScore: a.cfg.FallbackConfidence,
		KeyInsights:     []string{fmt.Sprintf("Price change: %+.2f%%", change)},
		Recommendation:  recommendation,
		RiskLevel:       domain.RiskMedium,
		Reasoning:       fallbackReasoning,
		Model:           FallbackModel,
		AnalyzedAt:      a.now().UTC(),
	}
}

var bullishTokens = []string{"beat", "surge", "rally", "upgrade", "growth", "record", "soar", "jump", "profit", "buyback"}
var bearishTokens = []string{"miss", "plunge", "downgrade", "lawsuit", "recall", "decline", "drop", "sell-off", "loss", "probe"}

// fallbackNews scores an article by keyword counts over title and content.
func (a *Analyst) fallbackNews(n domain.NewsRecord) (domain.AIAnalysis, string) {
	text := strings.ToLower(n.Title + " " + n.Content)

	bullCount := countMatches(text, bullishTokens)
	bearCount := countMatches(text, bearishTokens)

	sentiment := domain.SentimentNeutral
	if bullCount > bearCount {
		sentiment = domain.SentimentBullish
	} else if bearCount > bullCount {
		sentiment = domain.SentimentBearish
	}

	analysis := domain.AIAnalysis{
		Sentiment:       sentiment,
		ConfidenceScore: a.cfg.FallbackConfidence,
		KeyInsights:     []string{fmt.Sprintf("keyword match bull=%d bear=%d", bullCount, bearCount)},
		Recommendation:  domain.RecommendationHold,
		RiskLevel:       domain.RiskMedium,
		Reasoning:       fallbackReasoning,
		Model:           FallbackModel,
		AnalyzedAt:      a.now().UTC(),
	}
	return analysis, ""
}

func countMatches(text string, tokens []string) int {
	count := 0
	for _, token := range tokens {
		if strings.Contains(text, token) {
			count++
		}
	}
	return count
}
