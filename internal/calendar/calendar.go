// Package calendar fetches an iCalendar feed and answers "what is coming up
// in the next N days" queries against it.
package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// Event is a single upcoming occurrence. Start is always timezone-aware.
type Event struct {
	Start   time.Time
	Summary string
}

type Client struct {
	http    *http.Client
	url     string
	now     func() time.Time
	circuit *gobreaker.CircuitBreaker
}

func NewClient(httpClient *http.Client, feedURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "calendar",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Client{
		http:    httpClient,
		url:     strings.TrimSpace(feedURL),
		now:     time.Now,
		circuit: cb,
	}
}

// EventsWithin returns events starting in [now, now+days), sorted ascending
// by start time, with all start times expressed in loc. Naive feed
// timestamps are localized to loc. A fetch or parse failure is an error,
// distinct from a valid empty result.
func (c *Client) EventsWithin(ctx context.Context, loc *time.Location, days int) ([]Event, error) {
	if c == nil || c.http == nil {
		return nil, fmt.Errorf("calendar client is not initialized")
	}
	if c.url == "" {
		return nil, fmt.Errorf("calendar feed url is not configured")
	}
	if loc == nil {
		loc = time.Local
	}
	if days <= 0 {
		return nil, fmt.Errorf("window days must be positive")
	}

	data, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	from := c.now().In(loc)
	to := from.AddDate(0, 0, days)
	events, err := parseEvents(data, loc, from, to)
	if err != nil {
		return nil, err
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	return events, nil
}

func (c *Client) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("calendar feed http %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}
