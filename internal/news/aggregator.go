// Package news aggregates headlines from a set of RSS/Atom feeds and
// optionally asks an LLM to organize them into topical groups.
package news

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

type Item struct {
	Title string
	Link  string
}

const (
	defaultPerFeed     = 5
	defaultFeedTimeout = 10 * time.Second
)

type Aggregator struct {
	http        *http.Client
	parser      *gofeed.Parser
	feeds       []string
	perFeed     int
	feedTimeout time.Duration
	log         *slog.Logger
}

func NewAggregator(httpClient *http.Client, feeds []string, logger *slog.Logger) *Aggregator {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultFeedTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		http:        httpClient,
		parser:      gofeed.NewParser(),
		feeds:       feeds,
		perFeed:     defaultPerFeed,
		feedTimeout: defaultFeedTimeout,
		log:         logger,
	}
}

// Headlines fetches each configured feed in turn, keeps the first items of
// each, and merges them deduplicated by exact title with first-seen order
// preserved. A failing feed is logged and skipped; the result may be empty.
func (a *Aggregator) Headlines(ctx context.Context) []Item {
	var merged []Item
	seen := make(map[string]bool)
	for _, feedURL := range a.feeds {
		items, err := a.fetchFeed(ctx, feedURL)
		if err != nil {
			a.log.Warn("news_feed_fetch_error", "feed", feedURL, "error", err.Error())
			continue
		}
		for _, item := range items {
			if seen[item.Title] {
				continue
			}
			seen[item.Title] = true
			merged = append(merged, item)
		}
	}
	return merged
}

func (a *Aggregator) fetchFeed(ctx context.Context, feedURL string) ([]Item, error) {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return nil, fmt.Errorf("feed url is empty")
	}
	ctx, cancel := context.WithTimeout(ctx, a.feedTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("feed http %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	feed, err := a.parser.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]Item, 0, a.perFeed)
	for _, entry := range feed.Items {
		if len(items) >= a.perFeed {
			break
		}
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}
		items = append(items, Item{Title: title, Link: strings.TrimSpace(entry.Link)})
	}
	return items, nil
}
