// Package briefing composes the daily briefing message out of the weather,
// clothing and news sections and can post it on a schedule.
package briefing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/quailyquaily/snuffles/internal/news"
	"github.com/quailyquaily/snuffles/internal/weather"
)

type WeatherSource interface {
	Forecast(ctx context.Context) (weather.Snapshot, error)
}

type NewsSource interface {
	Headlines(ctx context.Context) []news.Item
}

// NewsOrganizer is the optional LLM enhancement. A nil organizer falls back
// to the flat headline list.
type NewsOrganizer interface {
	Organize(ctx context.Context, items []news.Item) (string, error)
}

type Options struct {
	Weather      WeatherSource
	News         NewsSource
	Organizer    NewsOrganizer
	LocationName string
	Location     func() *time.Location
	Now          func() time.Time
	Logger       *slog.Logger
}

type Generator struct {
	weather      WeatherSource
	news         NewsSource
	organizer    NewsOrganizer
	locationName string
	location     func() *time.Location
	now          func() time.Time
	log          *slog.Logger
}

func NewGenerator(opts Options) *Generator {
	g := &Generator{
		weather:      opts.Weather,
		news:         opts.News,
		organizer:    opts.Organizer,
		locationName: strings.TrimSpace(opts.LocationName),
		location:     opts.Location,
		now:          opts.Now,
		log:          opts.Logger,
	}
	if g.locationName == "" {
		g.locationName = "Evanston"
	}
	if g.location == nil {
		g.location = func() *time.Location { return time.Local }
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.log == nil {
		g.log = slog.Default()
	}
	return g
}

// Generate builds the full briefing. Every section degrades independently;
// the function never fails.
func (g *Generator) Generate(ctx context.Context) string {
	now := g.now().In(g.location())
	today := now.Format("Monday, January 02, 2006")

	var snap *weather.Snapshot
	if g.weather != nil {
		s, err := g.weather.Forecast(ctx)
		if err != nil {
			g.log.Warn("briefing_weather_error", "error", err.Error())
		} else {
			snap = &s
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "☀️ *Good Morning! Daily Briefing for %s*\n\n", today)
	fmt.Fprintf(&b, "*Weather in %s:*\n%s\n\n", g.locationName, weatherLine(snap))
	fmt.Fprintf(&b, "*Dressing Recommendation:*\n👗 %s\n\n", weather.ClothingRecommendation(snap))
	fmt.Fprintf(&b, "*Major News:*\n%s", g.newsSection(ctx))
	return b.String()
}

func weatherLine(snap *weather.Snapshot) string {
	if snap == nil {
		return "Weather data unavailable."
	}
	current := "n/a"
	if snap.CurrentTemp != nil {
		current = fmt.Sprintf("%.1f°C", *snap.CurrentTemp)
	}
	return fmt.Sprintf("🌡️ *Current:* %s | *High:* %.1f°C | *Low:* %.1f°C",
		current, snap.MaxTemp, snap.MinTemp)
}

func (g *Generator) newsSection(ctx context.Context) string {
	var items []news.Item
	if g.news != nil {
		items = g.news.Headlines(ctx)
	}
	if len(items) > 0 && g.organizer != nil {
		organized, err := g.organizer.Organize(ctx, items)
		if err == nil && strings.TrimSpace(organized) != "" {
			return organized
		}
		if err != nil {
			g.log.Warn("briefing_news_organize_error", "error", err.Error())
		}
	}
	return news.RenderBullets(items, 5)
}
