// Package router matches mention text against a fixed catalog of intents and
// executes the handlers of every intent that fires.
package router

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/quailyquaily/snuffles/internal/calendar"
	"github.com/quailyquaily/snuffles/internal/slackevents"
)

// Poster delivers one reply to a channel.
type Poster interface {
	PostMessage(ctx context.Context, channelID, text string) error
}

// CalendarSource answers windowed event queries. Implemented by
// *calendar.Client.
type CalendarSource interface {
	EventsWithin(ctx context.Context, loc *time.Location, days int) ([]calendar.Event, error)
}

// BriefingSource produces the composite briefing text. It never fails; every
// unavailable upstream degrades to placeholder text inside the message.
type BriefingSource interface {
	Generate(ctx context.Context) string
}

// rule pairs a predicate over the normalized (lowercased) text with the
// handler to run when it matches. Handlers receive the original-cased text
// because timezone extraction is case-sensitive.
type rule struct {
	name   string
	match  func(normalized string) bool
	handle func(ctx context.Context, originalText string) (string, error)
}

type Options struct {
	Poster   Poster
	Timezone *Timezone
	Calendar CalendarSource
	Briefing BriefingSource
	Now      func() time.Time
	Logger   *slog.Logger
}

type Router struct {
	poster   Poster
	tz       *Timezone
	calendar CalendarSource
	briefing BriefingSource
	now      func() time.Time
	log      *slog.Logger

	// Independent rules all fire; calendar rules are mutually exclusive and
	// only the first match fires, so one message never produces two
	// calendar replies.
	independent   []rule
	calendarRules []rule
}

func New(opts Options) *Router {
	r := &Router{
		poster:   opts.Poster,
		tz:       opts.Timezone,
		calendar: opts.Calendar,
		briefing: opts.Briefing,
		now:      opts.Now,
		log:      opts.Logger,
	}
	if r.tz == nil {
		r.tz = NewTimezone(time.UTC)
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.log == nil {
		r.log = slog.Default()
	}

	r.independent = []rule{
		{
			name:   "greeting",
			match:  containsAny("hi", "hello"),
			handle: r.handleGreeting,
		},
		{
			name:   "current_time",
			match:  containsAny("date", "time", "day"),
			handle: r.handleCurrentTime,
		},
		{
			name:   "set_timezone",
			match:  containsAny("timezone"),
			handle: r.handleSetTimezone,
		},
	}
	if r.briefing != nil {
		r.independent = append(r.independent, rule{
			name:   "briefing",
			match:  containsAny("briefing", "weather"),
			handle: r.handleBriefing,
		})
	}
	r.calendarRules = []rule{
		{
			name:   "calendar_next",
			match:  containsAny("next event"),
			handle: r.handleCalendarNext,
		},
		{
			name: "calendar_today",
			match: func(text string) bool {
				return strings.Contains(text, "today") && containsAny("event", "calendar")(text)
			},
			handle: r.handleCalendarToday,
		},
		{
			name: "calendar_week",
			match: func(text string) bool {
				return strings.Contains(text, "this week") && containsAny("event", "calendar")(text)
			},
			handle: r.handleCalendarWeek,
		},
		{
			name:   "calendar_default",
			match:  containsAny("calendar"),
			handle: r.handleCalendarDefault,
		},
	}
	return r
}

// Dispatch runs every matching intent for one inbound event. Bot-authored
// events are dropped to keep the bot from replying to itself or another bot,
// and only app mentions are handled. Intent failures are logged and never
// block sibling intents.
func (r *Router) Dispatch(ctx context.Context, ev slackevents.Event) {
	if ev.IsBotAuthored() {
		r.log.Debug("router_drop_bot_event", "subtype", ev.Subtype, "bot_id", ev.BotID)
		return
	}
	if ev.Type != slackevents.EventAppMention {
		return
	}
	channelID := strings.TrimSpace(ev.Channel)
	if channelID == "" {
		r.log.Warn("router_event_missing_channel", "event_ts", ev.EventTS)
		return
	}
	normalized := strings.ToLower(ev.Text)

	for _, rl := range r.independent {
		if !rl.match(normalized) {
			continue
		}
		r.run(ctx, rl, ev.Text, channelID)
	}
	for _, rl := range r.calendarRules {
		if !rl.match(normalized) {
			continue
		}
		r.run(ctx, rl, ev.Text, channelID)
		break
	}
}

func (r *Router) run(ctx context.Context, rl rule, originalText, channelID string) {
	reply, err := rl.handle(ctx, originalText)
	if err != nil {
		r.log.Warn("intent_error", "intent", rl.name, "error", err.Error())
		return
	}
	if strings.TrimSpace(reply) == "" {
		return
	}
	if err := r.poster.PostMessage(ctx, channelID, reply); err != nil {
		r.log.Warn("slack_post_error", "intent", rl.name, "channel_id", channelID, "error", err.Error())
	}
}

func containsAny(needles ...string) func(string) bool {
	return func(text string) bool {
		for _, n := range needles {
			if strings.Contains(text, n) {
				return true
			}
		}
		return false
	}
}
