package briefing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/quailyquaily/snuffles/internal/news"
	"github.com/quailyquaily/snuffles/internal/weather"
)

type stubWeather struct {
	snap weather.Snapshot
	err  error
}

func (s *stubWeather) Forecast(context.Context) (weather.Snapshot, error) { return s.snap, s.err }

type stubNews struct{ items []news.Item }

func (s *stubNews) Headlines(context.Context) []news.Item { return s.items }

type stubOrganizer struct {
	out string
	err error
}

func (s *stubOrganizer) Organize(context.Context, []news.Item) (string, error) {
	return s.out, s.err
}

func testGenerator(t *testing.T, opts Options) *Generator {
	t.Helper()
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	opts.Location = func() *time.Location { return chicago }
	opts.Now = func() time.Time { return time.Date(2026, 3, 11, 13, 30, 0, 0, time.UTC) }
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewGenerator(opts)
}

func TestGenerate_FullBriefing(t *testing.T) {
	current := 3.4
	g := testGenerator(t, Options{
		Weather: &stubWeather{snap: weather.Snapshot{
			CurrentTemp: &current, MaxTemp: 8.1, MinTemp: 1.2, PrecipProb: 55, WeatherCode: 61,
		}},
		News: &stubNews{items: []news.Item{{Title: "Headline", Link: "https://example.com/1"}}},
	})

	got := g.Generate(context.Background())

	wantParts := []string{
		"☀️ *Good Morning! Daily Briefing for Wednesday, March 11, 2026*",
		"*Weather in Evanston:*",
		"🌡️ *Current:* 3.4°C | *High:* 8.1°C | *Low:* 1.2°C",
		"*Dressing Recommendation:*",
		"👗 It's cold.",
		"umbrella",
		"*Major News:*",
		"• <https://example.com/1|Headline>",
	}
	for _, part := range wantParts {
		if !strings.Contains(got, part) {
			t.Fatalf("briefing missing %q:\n%s", part, got)
		}
	}
}

func TestGenerate_WeatherFailureDegrades(t *testing.T) {
	g := testGenerator(t, Options{
		Weather: &stubWeather{err: fmt.Errorf("upstream down")},
		News:    &stubNews{},
	})

	got := g.Generate(context.Background())

	if !strings.Contains(got, "Weather data unavailable.") {
		t.Fatalf("missing degraded weather line:\n%s", got)
	}
	if !strings.Contains(got, "Could not fetch weather data, so wear whatever you feel like!") {
		t.Fatalf("missing fallback clothing line:\n%s", got)
	}
	if !strings.Contains(got, "Could not fetch news at this time.") {
		t.Fatalf("missing degraded news line:\n%s", got)
	}
}

func TestGenerate_OrganizerOutputPreferred(t *testing.T) {
	g := testGenerator(t, Options{
		News:      &stubNews{items: []news.Item{{Title: "Headline"}}},
		Organizer: &stubOrganizer{out: "*Economy:*\n• Headline"},
	})

	got := g.Generate(context.Background())
	if !strings.Contains(got, "*Economy:*") {
		t.Fatalf("organized news not used:\n%s", got)
	}
}

func TestGenerate_OrganizerFailureFallsBackToFlatList(t *testing.T) {
	g := testGenerator(t, Options{
		News:      &stubNews{items: []news.Item{{Title: "Headline", Link: "https://example.com/1"}}},
		Organizer: &stubOrganizer{err: fmt.Errorf("no quota")},
	})

	got := g.Generate(context.Background())
	if !strings.Contains(got, "• <https://example.com/1|Headline>") {
		t.Fatalf("flat fallback missing:\n%s", got)
	}
}

func TestGenerate_CurrentTempAbsent(t *testing.T) {
	g := testGenerator(t, Options{
		Weather: &stubWeather{snap: weather.Snapshot{MaxTemp: 20, MinTemp: 10}},
		News:    &stubNews{},
	})

	got := g.Generate(context.Background())
	if !strings.Contains(got, "*Current:* n/a") {
		t.Fatalf("missing n/a current temp:\n%s", got)
	}
}
