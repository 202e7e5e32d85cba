package analyst

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"stockpulse/internal/domain"

	"github.com/openai/openai-go"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type stubLLMClient struct {
	content string
	err     error
	calls   int
	delay   time.Duration
	lastReq openai.ChatCompletionNewParams
}

func (s *stubLLMClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	s.calls++
	s.lastReq = params
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func appleQuote(change float64) domain.QuoteRecord {
	return domain.QuoteRecord{
		Ticker:        "AAPL",
		CompanyName:   "Apple Inc.",
		Price:         210,
		PreviousClose: 200,
		ChangePercent: change,
		Volume:        1000,
		Sector:        "Technology",
	}
}

const validAnalysisJSON = `{
	"sentiment": "bullish",
	"confidence_score": 0.82,
	"key_insights": ["strong momentum"],
	"recommendation": "buy",
	"risk_level": "low",
	"price_target": 240.0,
	"reasoning": "earnings beat with raised guidance"
}`

func TestAnalyzeQuoteLLMPath(t *testing.T) {
	t.Parallel()

	llm := &stubLLMClient{content: validAnalysisJSON}
	a := New(testTracer, llm, Config{Model: "gpt-4o-mini"})

	analysis := a.AnalyzeQuote(context.Background(), appleQuote(5.0))
	if analysis.Sentiment != domain.SentimentBullish {
		t.Fatalf("expected bullish, got %s", analysis.Sentiment)
	}
	if analysis.ConfidenceScore != 0.82 {
		t.Fatalf("unexpected confidence: %f", analysis.ConfidenceScore)
	}
	if analysis.Recommendation != domain.RecommendationBuy || analysis.RiskLevel != domain.RiskLow {
		t.Fatalf("unexpected analysis: %+v", analysis)
	}
	if analysis.PriceTarget == nil || *analysis.PriceTarget != 240.0 {
		t.Fatalf("unexpected price target: %v", analysis.PriceTarget)
	}
	if analysis.Model != "llm:gpt-4o-mini" {
		t.Fatalf("unexpected model: %s", analysis.Model)
	}
	if llm.calls != 1 {
		t.Fatalf("expected exactly one LLM attempt, got %d", llm.calls)
	}
}

func TestAnalyzeQuoteCodeFencedResponse(t *testing.T) {
	t.Parallel()

	llm := &stubLLMClient{content: "```json\n" + validAnalysisJSON + "\n```"}
	a := New(testTracer, llm, Config{})

	analysis := a.AnalyzeQuote(context.Background(), appleQuote(1.0))
	if analysis.Model == FallbackModel {
		t.Fatal("fenced but valid JSON should not fall back")
	}
}

func TestAnalyzeQuoteFallbackWithoutCredential(t *testing.T) {
	t.Parallel()

	a := New(testTracer, nil, Config{})

	analysis := a.AnalyzeQuote(context.Background(), appleQuote(5.0))
	if analysis.Sentiment != domain.SentimentBullish {
		t.Fatalf("expected bullish for +5.0%%, got %s", analysis.Sentiment)
	}
	if analysis.ConfidenceScore != 0.5 {
		t.Fatalf("expected confidence 0.5, got %f", analysis.ConfidenceScore)
	}
	if analysis.Recommendation != domain.RecommendationBuy {
		t.Fatalf("expected buy at strong-move threshold, got %s", analysis.Recommendation)
	}
	if analysis.RiskLevel != domain.RiskMedium {
		t.Fatalf("expected medium risk, got %s", analysis.RiskLevel)
	}
	if analysis.Model != FallbackModel {
		t.Fatalf("expected fallback model tag, got %s", analysis.Model)
	}
}

func TestAnalyzeQuoteFallbackDirections(t *testing.T) {
	t.Parallel()

	a := New(testTracer, nil, Config{})

	cases := []struct {
		change    float64
		sentiment domain.Sentiment
		rec       domain.Recommendation
	}{
		{change: 3.0, sentiment: domain.SentimentBullish, rec: domain.RecommendationHold},
		{change: -3.0, sentiment: domain.SentimentBearish, rec: domain.RecommendationHold},
		{change: 0.5, sentiment: domain.SentimentNeutral, rec: domain.RecommendationHold},
		{change: -6.0, sentiment: domain.SentimentBearish, rec: domain.RecommendationSell},
	}
	for _, tc := range cases {
		got := a.AnalyzeQuote(context.Background(), appleQuote(tc.change))
		if got.Sentiment != tc.sentiment || got.Recommendation != tc.rec {
			t.Fatalf("change %.1f: expected %s/%s, got %s/%s", tc.change, tc.sentiment, tc.rec, got.Sentiment, got.Recommendation)
		}
	}
}

func TestAnalyzeQuoteFallbackOnLLMError(t *testing.T) {
	t.Parallel()

	llm := &stubLLMClient{err: errors.New("api down")}
	a := New(testTracer, llm, Config{})

	analysis := a.AnalyzeQuote(context.Background(), appleQuote(0.1))
	if analysis.Model != FallbackModel {
		t.Fatalf("expected fallback on provider error, got %s", analysis.Model)
	}
	if llm.calls != 1 {
		t.Fatalf("expected a single attempt with no retries, got %d", llm.calls)
	}
}

func TestAnalyzeQuoteFallbackOnTimeout(t *testing.T) {
	t.Parallel()

	llm := &stubLLMClient{content: validAnalysisJSON, delay: 200 * time.Millisecond}
	a := New(testTracer, llm, Config{Timeout: 20 * time.Millisecond})

	analysis := a.AnalyzeQuote(context.Background(), appleQuote(0.1))
	if analysis.Model != FallbackModel {
		t.Fatalf("expected fallback on timeout, got %s", analysis.Model)
	}
}

func TestAnalyzeQuoteRejectsInvalidResponses(t *testing.T) {
	t.Parallel()

	responses := []string{
		`not json at all`,
		`{"sentiment":"bullish","recommendation":"buy","risk_level":"low","reasoning":"x"}`,
		`{"sentiment":"bullish","confidence_score":1.4,"recommendation":"buy","risk_level":"low","reasoning":"x"}`,
		`{"sentiment":"upbeat","confidence_score":0.5,"recommendation":"buy","risk_level":"low","reasoning":"x"}`,
		`{"sentiment":"bullish","confidence_score":0.5,"recommendation":"short","risk_level":"low","reasoning":"x"}`,
		`{"sentiment":"bullish","confidence_score":0.5,"recommendation":"buy","risk_level":"extreme","reasoning":"x"}`,
		`{"sentiment":"bullish","confidence_score":0.5,"recommendation":"buy","risk_level":"low","reasoning":""}`,
	}

	for i, resp := range responses {
		llm := &stubLLMClient{content: resp}
		a := New(testTracer, llm, Config{})
		analysis := a.AnalyzeQuote(context.Background(), appleQuote(1.0))
		if analysis.Model != FallbackModel {
			t.Fatalf("response %d should have been rejected: %s", i, resp)
		}
	}
}

func TestAnalysisAlwaysWithinBounds(t *testing.T) {
	t.Parallel()

	a := New(testTracer, nil, Config{})
	for _, change := range []float64{-12, -5, -2, 0, 2, 5, 12} {
		got := a.AnalyzeQuote(context.Background(), appleQuote(change))
		if got.ConfidenceScore < 0 || got.ConfidenceScore > 1 {
			t.Fatalf("confidence out of range: %f", got.ConfidenceScore)
		}
		if !got.Sentiment.IsValid() || !got.Recommendation.IsValid() || !got.RiskLevel.IsValid() {
			t.Fatalf("invalid enum in analysis: %+v", got)
		}
	}
}

func TestAnalyzeNewsLLMPath(t *testing.T) {
	t.Parallel()

	llm := &stubLLMClient{content: `{
		"sentiment": "bearish",
		"confidence_score": 0.6,
		"key_insights": ["regulatory pressure"],
		"recommendation": "hold",
		"risk_level": "high",
		"summary": "Regulators open a probe into the company.",
		"reasoning": "headline risk"
	}`}
	a := New(testTracer, llm, Config{})

	analysis, summary := a.AnalyzeNews(context.Background(), domain.NewsRecord{Title: "Probe opened", Source: "Google News"})
	if analysis.Sentiment != domain.SentimentBearish || analysis.RiskLevel != domain.RiskHigh {
		t.Fatalf("unexpected analysis: %+v", analysis)
	}
	if summary != "Regulators open a probe into the company." {
		t.Fatalf("unexpected summary: %q", summary)
	}
}

func TestAnalyzeNewsFallbackHeuristic(t *testing.T) {
	t.Parallel()

	a := New(testTracer, nil, Config{})

	bull, _ := a.AnalyzeNews(context.Background(), domain.NewsRecord{Title: "Shares surge after earnings beat, growth on record"})
	if bull.Sentiment != domain.SentimentBullish {
		t.Fatalf("expected bullish, got %s", bull.Sentiment)
	}

	bear, _ := a.AnalyzeNews(context.Background(), domain.NewsRecord{Title: "Stock drops as lawsuit and probe widen the decline"})
	if bear.Sentiment != domain.SentimentBearish {
		t.Fatalf("expected bearish, got %s", bear.Sentiment)
	}

	flat, _ := a.AnalyzeNews(context.Background(), domain.NewsRecord{Title: "Company schedules annual shareholder meeting"})
	if flat.Sentiment != domain.SentimentNeutral {
		t.Fatalf("expected neutral, got %s", flat.Sentiment)
	}
}

func TestBuildQuotePromptIncludesFields(t *testing.T) {
	t.Parallel()

	prompt := BuildQuotePrompt(appleQuote(5.0))
	for _, want := range []string{"AAPL", "Apple Inc.", "+5.00%", "Technology"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestNewOpenAIClientWithoutKey(t *testing.T) {
	t.Parallel()

	if c := NewOpenAIClient("  "); c != nil {
		t.Fatal("expected nil client without an API key")
	}
	if c := NewOpenAIClient("sk-test"); c == nil {
		t.Fatal("expected client with an API key")
	}
}
