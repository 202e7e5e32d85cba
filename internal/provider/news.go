package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stockpulse/internal/domain"

	"github.com/mmcdole/gofeed"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const newsBaseURL = "https://news.google.com"

// NewsProvider fetches articles from the Google News RSS search feed.
type NewsProvider struct {
	parser  *gofeed.Parser
	baseURL string
	tracer  trace.Tracer
}

func NewNewsProvider(tracer trace.Tracer, baseURL string, timeout time.Duration) *NewsProvider {
	if baseURL == "" {
		baseURL = newsBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = "Mozilla/5.0 (compatible; stockpulse/1.0)"
	return &NewsProvider{
		parser:  parser,
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
	}
}

// FetchNews searches the news feed for query and returns up to limit records,
// newest first as emitted by the feed.
func (p *NewsProvider) FetchNews(ctx context.Context, query string, limit int) ([]domain.NewsRecord, error) {
	_, span := p.tracer.Start(ctx, "news.fetch-news")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &FetchError{Op: "fetch news", Err: fmt.Errorf("query is required")}
	}
	if limit <= 0 {
		limit = 5
	}

	feedURL := fmt.Sprintf("%s/rss/search?q=%s", p.baseURL, url.QueryEscape(query+" stock"))

	feed, err := p.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &FetchError{
				Op:         "fetch news",
				URL:        feedURL,
				StatusCode: httpErr.StatusCode,
				Transient:  transientStatus(httpErr.StatusCode),
				Err:        err,
			}
		}
		return nil, &FetchError{Op: "fetch news", URL: feedURL, Transient: true, Err: err}
	}

	records := make([]domain.NewsRecord, 0, min(limit, len(feed.Items)))
	for _, item := range feed.Items {
		if len(records) >= limit {
			break
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		published := time.Now().UTC()
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC()
		}
		records = append(records, domain.NewsRecord{
			Title:         title,
			Content:       strings.TrimSpace(item.Description),
			URL:           strings.TrimSpace(item.Link),
			PublishedDate: published,
			Source:        "Google News",
		})
	}

	span.SetAttributes(attribute.Int("articles", len(records)))
	return records, nil
}
