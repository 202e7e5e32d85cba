package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"stockpulse/internal/domain"
)

func TestStoreStartsEmpty(t *testing.T) {
	t.Parallel()

	s := NewStore()
	snap := s.Snapshot()
	if snap == nil {
		t.Fatal("expected non-nil snapshot before first refresh")
	}
	if len(snap.Entries) != 0 || len(snap.News) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
	if !s.LastRefresh().IsZero() {
		t.Fatal("expected zero last refresh before first swap")
	}
}

func TestStoreSwapPublishesWholeSnapshot(t *testing.T) {
	t.Parallel()

	s := NewStore()
	next := domain.EmptySnapshot()
	next.Entries["AAPL"] = domain.CacheEntry{
		Quote: domain.QuoteRecord{Ticker: "AAPL", Price: 210},
	}
	s.Swap(next)

	entry, ok := s.Entry("AAPL")
	if !ok {
		t.Fatal("expected AAPL entry after swap")
	}
	if entry.Quote.Price != 210 {
		t.Fatalf("unexpected price: %f", entry.Quote.Price)
	}
	if s.LastRefresh().IsZero() {
		t.Fatal("expected refresh time to be stamped")
	}
}

func TestStoreReadersNeverSeePartialState(t *testing.T) {
	t.Parallel()

	s := NewStore()
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			next := domain.EmptySnapshot()
			for _, ticker := range domain.TrackedTickers() {
				next.Entries[ticker] = domain.CacheEntry{
					Quote: domain.QuoteRecord{Ticker: ticker, Price: float64(i)},
				}
			}
			s.Swap(next)
		}
		close(done)
	}()

	for {
		snap := s.Snapshot()
		if n := len(snap.Entries); n != 0 && n != len(domain.TrackedTickers()) {
			t.Errorf("observed partial snapshot with %d entries", n)
			break
		}
		select {
		case <-done:
			wg.Wait()
			return
		default:
		}
	}
	wg.Wait()
}

func newsAt(url string, minutesAgo int) domain.NewsRecord {
	return domain.NewsRecord{
		Title:         "article " + url,
		URL:           url,
		Source:        "Google News",
		PublishedDate: time.Now().Add(-time.Duration(minutesAgo) * time.Minute),
	}
}

func TestMergeNewsDeduplicatesByIdentity(t *testing.T) {
	t.Parallel()

	prev := []domain.NewsRecord{newsAt("https://a", 30), newsAt("https://b", 20)}
	fresh := []domain.NewsRecord{newsAt("https://b", 20), newsAt("https://c", 10)}

	merged := MergeNews(prev, fresh, 10)
	if len(merged) != 3 {
		t.Fatalf("expected 3 unique articles, got %d", len(merged))
	}
	if merged[0].URL != "https://c" || merged[1].URL != "https://b" || merged[2].URL != "https://a" {
		t.Fatalf("expected newest-first order, got %+v", merged)
	}
}

func TestMergeNewsFreshWinsDuplicate(t *testing.T) {
	t.Parallel()

	stale := newsAt("https://a", 30)
	stale.Sentiment = domain.SentimentNeutral
	updated := newsAt("https://a", 30)
	updated.Sentiment = domain.SentimentBullish

	merged := MergeNews([]domain.NewsRecord{stale}, []domain.NewsRecord{updated}, 10)
	if len(merged) != 1 {
		t.Fatalf("expected 1 article, got %d", len(merged))
	}
	if merged[0].Sentiment != domain.SentimentBullish {
		t.Fatalf("expected fresh record to win, got %s", merged[0].Sentiment)
	}
}

func TestMergeNewsTruncatesToMax(t *testing.T) {
	t.Parallel()

	var fresh []domain.NewsRecord
	for i := 0; i < 10; i++ {
		fresh = append(fresh, newsAt(fmt.Sprintf("https://n%d", i), i))
	}

	merged := MergeNews(nil, fresh, 6)
	if len(merged) != 6 {
		t.Fatalf("expected 6 articles, got %d", len(merged))
	}
	for i := 1; i < len(merged); i++ {
		if merged[i].PublishedDate.After(merged[i-1].PublishedDate) {
			t.Fatal("expected descending publish order")
		}
	}
}

func TestMergeNewsFallsBackToTitleIdentity(t *testing.T) {
	t.Parallel()

	a := domain.NewsRecord{Title: "Same headline", Source: "Google News", PublishedDate: time.Now()}
	b := domain.NewsRecord{Title: "Same headline", Source: "Google News", PublishedDate: time.Now()}

	merged := MergeNews([]domain.NewsRecord{a}, []domain.NewsRecord{b}, 10)
	if len(merged) != 1 {
		t.Fatalf("expected title-based dedupe, got %d articles", len(merged))
	}
}
