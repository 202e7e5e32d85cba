package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"stockpulse/internal/domain"
)

const journalFile = "latest_stocks.jsonl"

// Journal appends refreshed stock records to an NDJSON file, one line per
// ticker per refresh. Best effort: the caller logs and moves on when a write
// fails, a refresh never fails because of the journal.
type Journal struct {
	dir string
	now func() time.Time
}

func NewJournal(dir string) *Journal {
	return &Journal{dir: dir, now: time.Now}
}

type journalLine struct {
	RecordedAt time.Time          `json:"recorded_at"`
	Ticker     string             `json:"ticker"`
	Quote      domain.QuoteRecord `json:"quote"`
	Analysis   *domain.AIAnalysis `json:"ai_analysis,omitempty"`
}

// Append writes one line per entry for the given snapshot.
func (j *Journal) Append(snapshot *domain.Snapshot) error {
	if j.dir == "" {
		return nil
	}
	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(j.dir, journalFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	recordedAt := j.now().UTC()
	for _, ticker := range domain.TrackedTickers() {
		entry, ok := snapshot.Entries[ticker]
		if !ok {
			continue
		}
		line := journalLine{
			RecordedAt: recordedAt,
			Ticker:     ticker,
			Quote:      entry.Quote,
			Analysis:   entry.Analysis,
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("write journal line for %s: %w", ticker, err)
		}
	}
	return nil
}
