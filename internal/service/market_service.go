package service

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"stockpulse/internal/cache"
	"stockpulse/internal/domain"
	"stockpulse/internal/insights"
	"stockpulse/internal/provider"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type QuoteFetcher interface {
	FetchQuotes(ctx context.Context, symbols []domain.TrackedSymbol) (map[string]domain.QuoteRecord, error)
}

type NewsFetcher interface {
	FetchNews(ctx context.Context, query string, limit int) ([]domain.NewsRecord, error)
}

type AnalysisEngine interface {
	AnalyzeQuote(ctx context.Context, q domain.QuoteRecord) domain.AIAnalysis
	AnalyzeNews(ctx context.Context, n domain.NewsRecord) (domain.AIAnalysis, string)
}

type Config struct {
	RefreshInterval         time.Duration
	CycleTimeout            time.Duration
	NewsMaxArticles         int
	NewsPerSourceLimit      int
	HighConfidenceThreshold float64
}

// MarketService orchestrates refresh cycles and serves reads from the snapshot
// store. At most one cycle runs at a time; concurrent triggers coalesce into
// the running one. A cycle builds a complete replacement snapshot off to the
// side and publishes it with one swap, so reads never observe partial state.
type MarketService struct {
	tracer  trace.Tracer
	quotes  QuoteFetcher
	news    NewsFetcher
	analyst AnalysisEngine
	store   *cache.Store
	journal *cache.Journal
	cfg     Config

	refreshing    atomic.Bool
	mu            sync.Mutex
	lastCompleted time.Time
	now           func() time.Time
}

func NewMarketService(
	tracer trace.Tracer,
	quotes QuoteFetcher,
	news NewsFetcher,
	analyst AnalysisEngine,
	store *cache.Store,
	journal *cache.Journal,
	cfg Config,
) *MarketService {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 60 * time.Second
	}
	if cfg.CycleTimeout <= 0 {
		cfg.CycleTimeout = 30 * time.Second
	}
	if cfg.NewsMaxArticles <= 0 {
		cfg.NewsMaxArticles = 6
	}
	if cfg.NewsPerSourceLimit <= 0 {
		cfg.NewsPerSourceLimit = 5
	}
	if cfg.HighConfidenceThreshold <= 0 {
		cfg.HighConfidenceThreshold = 0.7
	}
	return &MarketService{
		tracer:  tracer,
		quotes:  quotes,
		news:    news,
		analyst: analyst,
		store:   store,
		journal: journal,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Refresh runs one refresh cycle. Returns false when the cycle was skipped,
// either because another cycle is in flight or because the last completed
// cycle is younger than the refresh interval. force bypasses the interval
// gate but never the single-flight guard.
func (s *MarketService) Refresh(ctx context.Context, force bool) (bool, error) {
	if !s.refreshing.CompareAndSwap(false, true) {
		return false, nil
	}
	defer s.refreshing.Store(false)

	if !force {
		s.mu.Lock()
		tooSoon := !s.lastCompleted.IsZero() && s.now().Sub(s.lastCompleted) < s.cfg.RefreshInterval
		s.mu.Unlock()
		if tooSoon {
			return false, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.CycleTimeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "market-service.refresh")
	defer span.End()
	span.SetAttributes(attribute.Bool("force", force))

	started := s.now()
	prev := s.store.Snapshot()

	next, err := s.buildSnapshot(ctx, prev)
	if err != nil {
		span.RecordError(err)
		return false, err
	}

	s.store.Swap(next)
	s.mu.Lock()
	s.lastCompleted = s.now()
	s.mu.Unlock()

	if s.journal != nil {
		if err := s.journal.Append(next); err != nil {
			log.Printf("journal write error: %v", err)
		}
	}

	log.Printf("Refresh cycle complete: %d stocks, %d articles in %s",
		len(next.Entries), len(next.News), time.Since(started).Round(time.Millisecond))
	return true, nil
}

// buildSnapshot assembles the replacement snapshot. Per-ticker fetch failures
// carry the prior entry forward; a cycle overrunning its timeout returns the
// context error and nothing is swapped.
func (s *MarketService) buildSnapshot(ctx context.Context, prev *domain.Snapshot) (*domain.Snapshot, error) {
	next := domain.EmptySnapshot()

	quotes, err := s.quotes.FetchQuotes(ctx, domain.TrackedSymbols)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Upstream down: prior entries carry forward, only the news refreshes.
		log.Printf("quote fetch error (transient=%t): %v", provider.IsTransient(err), err)
		quotes = nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, symbol := range domain.TrackedSymbols {
		quote, ok := quotes[symbol.Ticker]
		if !ok {
			if entry, had := prev.Entries[symbol.Ticker]; had {
				mu.Lock()
				next.Entries[symbol.Ticker] = entry
				mu.Unlock()
			}
			continue
		}
		g.Go(func() error {
			analysis := s.analyst.AnalyzeQuote(gctx, quote)
			mu.Lock()
			next.Entries[symbol.Ticker] = domain.CacheEntry{
				Quote:     quote,
				Analysis:  &analysis,
				FetchedAt: s.now().UTC(),
			}
			mu.Unlock()
			return gctx.Err()
		})
	}

	g.Go(func() error {
		next.News = s.refreshNews(gctx, prev.News)
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return next, nil
}

// refreshNews fetches fresh articles, analyzes the ones not seen before, and
// merges them with the prior set. Failures leave the prior articles in place.
func (s *MarketService) refreshNews(ctx context.Context, prev []domain.NewsRecord) []domain.NewsRecord {
	ctx, span := s.tracer.Start(ctx, "market-service.refresh-news")
	defer span.End()

	var fetched []domain.NewsRecord
	for _, query := range s.newsQueries() {
		articles, err := s.news.FetchNews(ctx, query, s.cfg.NewsPerSourceLimit)
		if err != nil {
			span.RecordError(err)
			log.Printf("news fetch error for %q: %v", query, err)
			continue
		}
		fetched = append(fetched, articles...)
	}
	if len(fetched) == 0 {
		return prev
	}

	known := make(map[string]domain.NewsRecord, len(prev))
	for _, n := range prev {
		known[n.Identity()] = n
	}

	seen := make(map[string]struct{}, len(fetched))
	fresh := make([]domain.NewsRecord, 0, len(fetched))
	for _, n := range fetched {
		id := n.Identity()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if prior, ok := known[id]; ok {
			// Already analyzed in an earlier cycle.
			n.Sentiment = prior.Sentiment
			n.AISummary = prior.AISummary
		} else {
			analysis, summary := s.analyst.AnalyzeNews(ctx, n)
			n.Sentiment = analysis.Sentiment
			n.AISummary = summary
		}
		fresh = append(fresh, n)
	}

	return cache.MergeNews(prev, fresh, s.cfg.NewsMaxArticles)
}

// newsQueries yields one search query per tracked company.
func (s *MarketService) newsQueries() []string {
	queries := make([]string, 0, len(domain.TrackedSymbols))
	for _, symbol := range domain.TrackedSymbols {
		queries = append(queries, symbol.Name)
	}
	return queries
}

// Stocks returns the cached stock data in tracked-symbol order.
func (s *MarketService) Stocks() []domain.StockData {
	snap := s.store.Snapshot()
	stocks := make([]domain.StockData, 0, len(snap.Entries))
	for _, ticker := range domain.TrackedTickers() {
		entry, ok := snap.Entries[ticker]
		if !ok {
			continue
		}
		stocks = append(stocks, domain.StockData{
			QuoteRecord: entry.Quote,
			AIAnalysis:  entry.Analysis,
		})
	}
	return stocks
}

// Stock returns the cached data for one ticker.
func (s *MarketService) Stock(ticker string) (domain.StockData, bool) {
	entry, ok := s.store.Entry(ticker)
	if !ok {
		return domain.StockData{}, false
	}
	return domain.StockData{QuoteRecord: entry.Quote, AIAnalysis: entry.Analysis}, true
}

// Analysis returns the cached analysis for one ticker.
func (s *MarketService) Analysis(ticker string) (*domain.AIAnalysis, bool) {
	entry, ok := s.store.Entry(ticker)
	if !ok || entry.Analysis == nil {
		return nil, false
	}
	return entry.Analysis, true
}

// News returns the cached articles, newest first.
func (s *MarketService) News() []domain.NewsRecord {
	news := s.store.Snapshot().News
	if news == nil {
		return []domain.NewsRecord{}
	}
	return news
}

// Insights recomputes market-wide insights from the current snapshot.
func (s *MarketService) Insights() domain.MarketInsights {
	snap := s.store.Snapshot()
	return insights.Compute(domain.TrackedSymbols, snap.Entries, s.cfg.HighConfidenceThreshold)
}

// LastRefresh reports when the current snapshot was published.
func (s *MarketService) LastRefresh() time.Time {
	return s.store.LastRefresh()
}

// Performance summarizes gainers and losers across the current snapshot.
func (s *MarketService) Performance() domain.PerformanceSummary {
	snap := s.store.Snapshot()

	summary := domain.PerformanceSummary{TotalStocks: len(snap.Entries)}
	if len(snap.Entries) == 0 {
		return summary
	}

	var total float64
	var topGainer, topLoser string
	var topGain, topLoss float64
	for _, ticker := range domain.TrackedTickers() {
		entry, ok := snap.Entries[ticker]
		if !ok {
			continue
		}
		change := entry.Quote.ChangePercent
		total += change
		switch {
		case change > 0:
			summary.Gainers++
		case change < 0:
			summary.Losers++
		default:
			summary.Flat++
		}
		if topGainer == "" || change > topGain {
			topGainer, topGain = ticker, change
		}
		if topLoser == "" || change < topLoss {
			topLoser, topLoss = ticker, change
		}
	}

	summary.AvgChangePercent = total / float64(len(snap.Entries))
	summary.TopGainer = topGainer
	summary.TopLoser = topLoser
	if t := s.store.LastRefresh(); !t.IsZero() {
		summary.LastUpdated = &t
	}
	return summary
}
