package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stockpulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const quoteBaseURL = "https://query1.finance.yahoo.com"

// QuoteProvider fetches current market quotes from a Yahoo-style quote API.
type QuoteProvider struct {
	client     *http.Client
	baseURL    string
	tracer     trace.Tracer
	limiter    *RateLimiter
	maxRetries int
}

// NewQuoteProvider creates a provider with built-in rate limiting.
// Rate limited to 8 requests per minute (one token every 7.5 seconds).
func NewQuoteProvider(tracer trace.Tracer, baseURL string, timeout time.Duration, maxRetries int) *QuoteProvider {
	if baseURL == "" {
		baseURL = quoteBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &QuoteProvider{
		client:     &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		tracer:     tracer,
		limiter:    NewRateLimiter(8, 7500*time.Millisecond),
		maxRetries: maxRetries,
	}
}

type quotePayload struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string  `json:"symbol"`
			LongName                   string  `json:"longName"`
			ShortName                  string  `json:"shortName"`
			RegularMarketPrice         float64 `json:"regularMarketPrice"`
			RegularMarketPreviousClose float64 `json:"regularMarketPreviousClose"`
			RegularMarketVolume        int64   `json:"regularMarketVolume"`
			MarketCap                  int64   `json:"marketCap"`
			TrailingPE                 float64 `json:"trailingPE"`
			FiftyTwoWeekHigh           float64 `json:"fiftyTwoWeekHigh"`
			FiftyTwoWeekLow            float64 `json:"fiftyTwoWeekLow"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// FetchQuotes fetches current quotes for all given symbols in a single
// batched API call. Symbols missing from the payload are skipped, not fatal.
func (p *QuoteProvider) FetchQuotes(ctx context.Context, symbols []domain.TrackedSymbol) (map[string]domain.QuoteRecord, error) {
	_, span := p.tracer.Start(ctx, "quote.fetch-quotes")
	defer span.End()

	if len(symbols) == 0 {
		return map[string]domain.QuoteRecord{}, nil
	}

	tickers := make([]string, 0, len(symbols))
	bySymbol := make(map[string]domain.TrackedSymbol, len(symbols))
	for _, s := range symbols {
		tickers = append(tickers, s.Ticker)
		bySymbol[s.Ticker] = s
	}

	url := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", p.baseURL, strings.Join(tickers, ","))

	body, err := p.doRequest(ctx, "fetch quotes", url)
	if err != nil {
		return nil, err
	}

	var raw quotePayload
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &FetchError{Op: "fetch quotes", URL: url, Err: fmt.Errorf("parse payload: %w", err)}
	}

	now := time.Now().UTC()
	result := make(map[string]domain.QuoteRecord, len(raw.QuoteResponse.Result))
	for _, row := range raw.QuoteResponse.Result {
		tracked, ok := bySymbol[row.Symbol]
		if !ok {
			continue
		}

		name := row.LongName
		if name == "" {
			name = row.ShortName
		}
		if name == "" {
			name = tracked.Name
		}

		changePercent := 0.0
		if row.RegularMarketPreviousClose > 0 {
			changePercent = (row.RegularMarketPrice - row.RegularMarketPreviousClose) / row.RegularMarketPreviousClose * 100
		}

		result[row.Symbol] = domain.QuoteRecord{
			Ticker:           row.Symbol,
			CompanyName:      name,
			Price:            row.RegularMarketPrice,
			PreviousClose:    row.RegularMarketPreviousClose,
			ChangePercent:    roundTwo(changePercent),
			Volume:           row.RegularMarketVolume,
			MarketCap:        row.MarketCap,
			PERatio:          row.TrailingPE,
			FiftyTwoWeekHigh: row.FiftyTwoWeekHigh,
			FiftyTwoWeekLow:  row.FiftyTwoWeekLow,
			Sector:           tracked.Sector,
			Industry:         tracked.Industry,
			Timestamp:        now,
		}
	}

	return result, nil
}

// doRequest performs a rate-limited GET with bounded retries. Only transient
// failures are retried, with doubling backoff between attempts.
func (p *QuoteProvider) doRequest(ctx context.Context, op, url string) ([]byte, error) {
	backoff := 500 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, &FetchError{Op: op, URL: url, Transient: true, Err: ctx.Err()}
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		body, err := p.attempt(ctx, op, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !IsTransient(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

func (p *QuoteProvider) attempt(ctx context.Context, op, url string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Op: op, URL: url, Transient: true, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Op: op, URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; stockpulse/1.0)")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &FetchError{Op: op, URL: url, Transient: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &FetchError{
			Op:         op,
			URL:        url,
			StatusCode: resp.StatusCode,
			Transient:  transientStatus(resp.StatusCode),
			Err:        fmt.Errorf("quote API error: %s", string(body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Op: op, URL: url, Transient: true, Err: err}
	}
	return body, nil
}

func roundTwo(v float64) float64 {
	if v < 0 {
		return float64(int64(v*100-0.5)) / 100
	}
	return float64(int64(v*100+0.5)) / 100
}
