package analyst

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"stockpulse/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LLMClient abstracts the OpenAI chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

type Config struct {
	Model               string
	Timeout             time.Duration
	FallbackConfidence  float64
	ChangeThreshold     float64
	StrongMoveThreshold float64
}

// Analyst turns raw quote/news records into structured analyses. The LLM path
// gets exactly one attempt under a hard timeout; everything else falls back to
// the deterministic rule-based path, so Analyze never fails.
type Analyst struct {
	tracer trace.Tracer
	llm    LLMClient
	cfg    Config
	now    func() time.Time
}

func New(tracer trace.Tracer, llm LLMClient, cfg Config) *Analyst {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 12 * time.Second
	}
	if cfg.FallbackConfidence <= 0 || cfg.FallbackConfidence > 1 {
		cfg.FallbackConfidence = 0.5
	}
	if cfg.ChangeThreshold <= 0 {
		cfg.ChangeThreshold = 2.0
	}
	if cfg.StrongMoveThreshold <= 0 {
		cfg.StrongMoveThreshold = 5.0
	}
	return &Analyst{
		tracer: tracer,
		llm:    llm,
		cfg:    cfg,
		now:    time.Now,
	}
}

// AnalyzeQuote produces an analysis for a quote record.
func (a *Analyst) AnalyzeQuote(ctx context.Context, q domain.QuoteRecord) domain.AIAnalysis {
	ctx, span := a.tracer.Start(ctx, "analyst.analyze-quote")
	defer span.End()
	span.SetAttributes(attribute.String("ticker", q.Ticker))

	if a.llm == nil {
		return a.fallbackQuote(q)
	}

	raw, err := a.complete(ctx, quoteSystemPrompt, BuildQuotePrompt(q))
	if err != nil {
		span.RecordError(err)
		return a.fallbackQuote(q)
	}

	analysis, err := a.parseAnalysis(raw)
	if err != nil {
		span.RecordError(err)
		return a.fallbackQuote(q)
	}
	return analysis
}

// AnalyzeNews produces an analysis plus a short summary for an article.
func (a *Analyst) AnalyzeNews(ctx context.Context, n domain.NewsRecord) (domain.AIAnalysis, string) {
	ctx, span := a.tracer.Start(ctx, "analyst.analyze-news")
	defer span.End()

	if a.llm == nil {
		return a.fallbackNews(n)
	}

	raw, err := a.complete(ctx, newsSystemPrompt, BuildNewsPrompt(n))
	if err != nil {
		span.RecordError(err)
		return a.fallbackNews(n)
	}

	var payload struct {
		analysisPayload
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(trimCodeFence(raw)), &payload); err != nil {
		span.RecordError(err)
		return a.fallbackNews(n)
	}
	analysis, err := a.validate(payload.analysisPayload)
	if err != nil {
		span.RecordError(err)
		return a.fallbackNews(n)
	}
	return analysis, strings.TrimSpace(payload.Summary)
}

// complete performs the single LLM attempt under the configured hard timeout.
func (a *Analyst) complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	completion, err := a.llm.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: a.cfg.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion")
	}
	return completion.Choices[0].Message.Content, nil
}

type analysisPayload struct {
	Sentiment       string   `json:"sentiment"`
	ConfidenceScore *float64 `json:"confidence_score"`
	KeyInsights     []string `json:"key_insights"`
	Recommendation  string   `json:"recommendation"`
	RiskLevel       string   `json:"risk_level"`
	PriceTarget     *float64 `json:"price_target"`
	Reasoning       string   `json:"reasoning"`
}

func (a *Analyst) parseAnalysis(raw string) (domain.AIAnalysis, error) {
	var payload analysisPayload
	if err := json.Unmarshal([]byte(trimCodeFence(raw)), &payload); err != nil {
		return domain.AIAnalysis{}, fmt.Errorf("parse analysis json: %w", err)
	}
	return a.validate(payload)
}

// validate rejects any response that misses required fields, carries a
// confidence outside [0,1], or uses values outside the enumerated sets.
func (a *Analyst) validate(payload analysisPayload) (domain.AIAnalysis, error) {
	if payload.ConfidenceScore == nil {
		return domain.AIAnalysis{}, fmt.Errorf("missing confidence_score")
	}
	confidence := *payload.ConfidenceScore
	if confidence < 0 || confidence > 1 {
		return domain.AIAnalysis{}, fmt.Errorf("confidence_score %f out of range", confidence)
	}

	sentiment := domain.Sentiment(strings.ToLower(strings.TrimSpace(payload.Sentiment)))
	if !sentiment.IsValid() {
		return domain.AIAnalysis{}, fmt.Errorf("invalid sentiment %q", payload.Sentiment)
	}
	recommendation := domain.Recommendation(strings.ToLower(strings.TrimSpace(payload.Recommendation)))
	if !recommendation.IsValid() {
		return domain.AIAnalysis{}, fmt.Errorf("invalid recommendation %q", payload.Recommendation)
	}
	risk := domain.RiskLevel(strings.ToLower(strings.TrimSpace(payload.RiskLevel)))
	if !risk.IsValid() {
		return domain.AIAnalysis{}, fmt.Errorf("invalid risk_level %q", payload.RiskLevel)
	}

	reasoning := strings.TrimSpace(payload.Reasoning)
	if reasoning == "" {
		return domain.AIAnalysis{}, fmt.Errorf("missing reasoning")
	}

	return domain.AIAnalysis{
		Sentiment:       sentiment,
		ConfidenceScore: confidence,
		KeyInsights:     payload.KeyInsights,
		Recommendation:  recommendation,
		RiskLevel:       risk,
		PriceTarget:     payload.PriceTarget,
		Reasoning:       reasoning,
		Model:           "llm:" + a.cfg.Model,
		AnalyzedAt:      a.now().UTC(),
	}, nil
}

func trimCodeFence(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "```") {
		v = strings.TrimPrefix(v, "```")
		v = strings.TrimSpace(v)
		if strings.HasPrefix(strings.ToLower(v), "json") {
			v = strings.TrimSpace(v[4:])
		}
		v = strings.TrimSuffix(v, "```")
		v = strings.TrimSpace(v)
	}
	return v
}

// openaiClient wraps the official SDK's chat completions service.
type openaiClient struct {
	client openai.Client
}

// NewOpenAIClient returns an LLMClient, or nil when no API key is configured.
func NewOpenAIClient(apiKey string) LLMClient {
	if strings.TrimSpace(apiKey) == "" {
		return nil
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openaiClient{client: client}
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
