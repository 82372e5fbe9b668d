// Package setup builds the bot's components from viper configuration. It is
// shared by the serve and briefing commands.
package setup

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/quailyquaily/snuffles/internal/briefing"
	"github.com/quailyquaily/snuffles/internal/calendar"
	"github.com/quailyquaily/snuffles/internal/news"
	"github.com/quailyquaily/snuffles/internal/router"
	"github.com/quailyquaily/snuffles/internal/weather"
)

type Components struct {
	Timezone  *router.Timezone
	Weather   *weather.Client
	News      *news.Aggregator
	Organizer *news.Summarizer
	Calendar  *calendar.Client
	Generator *briefing.Generator
}

// Build assembles every fetcher and the briefing generator from viper. The
// OpenAI key is optional; leaving it unset only disables the news-ranking
// enhancement.
func Build(logger *slog.Logger) (*Components, error) {
	if logger == nil {
		logger = slog.Default()
	}

	zoneName := viper.GetString("timezone")
	loc, err := time.LoadLocation(zoneName)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", zoneName, err)
	}
	tz := router.NewTimezone(loc)

	fetchClient := &http.Client{Timeout: 10 * time.Second}

	weatherClient := weather.NewClient(fetchClient, weather.Config{
		Latitude:  viper.GetFloat64("weather.latitude"),
		Longitude: viper.GetFloat64("weather.longitude"),
		Timezone:  zoneName,
	})

	aggregator := news.NewAggregator(fetchClient, viper.GetStringSlice("news.feeds"), logger)

	// Nil when no API key is configured.
	organizer := news.NewSummarizer(viper.GetString("openai.api_key"), viper.GetString("openai.model"))

	calendarClient := calendar.NewClient(fetchClient, viper.GetString("calendar.ics_url"))

	generator := briefing.NewGenerator(briefing.Options{
		Weather:      weatherClient,
		News:         aggregator,
		Organizer:    organizerOrNil(organizer),
		LocationName: viper.GetString("weather.location_name"),
		Location:     tz.Location,
		Logger:       logger,
	})

	return &Components{
		Timezone:  tz,
		Weather:   weatherClient,
		News:      aggregator,
		Organizer: organizer,
		Calendar:  calendarClient,
		Generator: generator,
	}, nil
}

// organizerOrNil avoids handing a typed nil to the generator's interface
// field.
func organizerOrNil(s *news.Summarizer) briefing.NewsOrganizer {
	if s == nil {
		return nil
	}
	return s
}
