package analyst

import (
	"fmt"
	"strings"

	"stockpulse/internal/domain"
)

const quoteSystemPrompt = "You are an expert financial analyst. Return ONLY a JSON object with keys: " +
	"sentiment (bullish|bearish|neutral), confidence_score (0..1), key_insights (array of short strings), " +
	"recommendation (buy|sell|hold), risk_level (low|medium|high), price_target (number or null), " +
	"reasoning (short text). No markdown."

const newsSystemPrompt = "You are an expert financial analyst. Return ONLY a JSON object with keys: " +
	"sentiment (bullish|bearish|neutral), confidence_score (0..1), key_insights (array of short strings), " +
	"recommendation (buy|sell|hold), risk_level (low|medium|high), price_target (number or null), " +
	"summary (one sentence), reasoning (short text). No markdown."

// BuildQuotePrompt embeds the quote's fields into the analysis request.
func BuildQuotePrompt(q domain.QuoteRecord) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Analyze: %s (%s) - $%.2f (%+.2f%% change)\n", q.CompanyName, q.Ticker, q.Price, q.ChangePercent))
	sb.WriteString(fmt.Sprintf("Previous close: %.2f, Volume: %d\n", q.PreviousClose, q.Volume))
	if q.MarketCap > 0 {
		sb.WriteString(fmt.Sprintf("Market cap: %d\n", q.MarketCap))
	}
	if q.PERatio > 0 {
		sb.WriteString(fmt.Sprintf("Trailing P/E: %.2f\n", q.PERatio))
	}
	if q.FiftyTwoWeekHigh > 0 {
		sb.WriteString(fmt.Sprintf("52-week range: %.2f - %.2f\n", q.FiftyTwoWeekLow, q.FiftyTwoWeekHigh))
	}
	if q.Sector != "" {
		sb.WriteString(fmt.Sprintf("Sector: %s, Industry: %s\n", q.Sector, q.Industry))
	}
	return sb.String()
}

// BuildNewsPrompt embeds the article's fields into the analysis request.
func BuildNewsPrompt(n domain.NewsRecord) string {
	var sb strings.Builder
	sb.WriteString("Analyze this market news article.\n")
	sb.WriteString("title=" + strings.TrimSpace(n.Title) + "\n")
	if content := strings.TrimSpace(n.Content); content != "" {
		sb.WriteString("content=" + content + "\n")
	}
	sb.WriteString("source=" + n.Source + "\n")
	return sb.String()
}
