package cache

import (
	"sort"
	"sync/atomic"
	"time"

	"stockpulse/internal/domain"
)

// Store holds the current market snapshot behind an atomic pointer. Readers
// always see a complete snapshot; a refresh builds the next snapshot aside and
// publishes it with a single swap.
type Store struct {
	current atomic.Pointer[domain.Snapshot]
	now     func() time.Time
}

func NewStore() *Store {
	s := &Store{now: time.Now}
	s.current.Store(domain.EmptySnapshot())
	return s
}

// Snapshot returns the currently published snapshot. Never nil.
func (s *Store) Snapshot() *domain.Snapshot {
	return s.current.Load()
}

// Entry returns the cache entry for a ticker from the current snapshot.
func (s *Store) Entry(ticker string) (domain.CacheEntry, bool) {
	entry, ok := s.current.Load().Entries[ticker]
	return entry, ok
}

// Swap publishes a fully built snapshot, stamping its refresh time.
func (s *Store) Swap(next *domain.Snapshot) {
	if next.RefreshedAt.IsZero() {
		next.RefreshedAt = s.now().UTC()
	}
	s.current.Store(next)
}

// LastRefresh reports when the current snapshot was published. The zero time
// means no refresh has completed yet.
func (s *Store) LastRefresh() time.Time {
	return s.current.Load().RefreshedAt
}

// MergeNews combines previously cached articles with freshly fetched ones,
// drops duplicates by identity, and keeps the newest max articles. Fresh
// articles win ties so re-fetched records carry their latest analysis.
func MergeNews(prev, fresh []domain.NewsRecord, max int) []domain.NewsRecord {
	seen := make(map[string]struct{}, len(prev)+len(fresh))
	merged := make([]domain.NewsRecord, 0, len(prev)+len(fresh))

	for _, n := range fresh {
		id := n.Identity()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, n)
	}
	for _, n := range prev {
		id := n.Identity()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, n)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedDate.After(merged[j].PublishedDate)
	})

	if max > 0 && len(merged) > max {
		merged = merged[:max]
	}
	return merged
}
