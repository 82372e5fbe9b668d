package briefing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
)

// Poster delivers the briefing to a channel.
type Poster interface {
	PostMessage(ctx context.Context, channelID, text string) error
}

const postTimeout = 60 * time.Second

// Scheduler posts the daily briefing on a cron schedule in the briefing
// zone.
type Scheduler struct {
	sched     *gocron.Scheduler
	generator *Generator
	poster    Poster
	channel   string
	log       *slog.Logger
}

func NewScheduler(loc *time.Location, cronExpr, channelID string, generator *Generator, poster Poster, logger *slog.Logger) (*Scheduler, error) {
	cronExpr = strings.TrimSpace(cronExpr)
	channelID = strings.TrimSpace(channelID)
	if cronExpr == "" {
		return nil, fmt.Errorf("briefing cron expression is required")
	}
	if channelID == "" {
		return nil, fmt.Errorf("briefing channel is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("briefing generator is required")
	}
	if poster == nil {
		return nil, fmt.Errorf("briefing poster is required")
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		sched:     gocron.NewScheduler(loc),
		generator: generator,
		poster:    poster,
		channel:   channelID,
		log:       logger,
	}
	if _, err := s.sched.Cron(cronExpr).Do(s.run); err != nil {
		return nil, fmt.Errorf("schedule briefing: %w", err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.sched.StartAsync()
	s.log.Info("briefing_scheduler_started", "channel_id", s.channel)
}

func (s *Scheduler) Stop() {
	s.sched.Stop()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), postTimeout)
	defer cancel()

	text := s.generator.Generate(ctx)
	if err := s.poster.PostMessage(ctx, s.channel, text); err != nil {
		s.log.Warn("briefing_post_error", "channel_id", s.channel, "error", err.Error())
		return
	}
	s.log.Info("briefing_posted", "channel_id", s.channel)
}
