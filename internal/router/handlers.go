package router

import (
	"context"
	"fmt"
	"strings"
)

const (
	greetingReply = "Hi there! I am Snuffles."

	currentTimeLayout = "2006-01-02 15:04:05 MST"

	calendarUnavailableReply = "Sorry, I could not fetch the calendar right now."
)

func (r *Router) handleGreeting(_ context.Context, _ string) (string, error) {
	return greetingReply, nil
}

func (r *Router) handleCurrentTime(_ context.Context, _ string) (string, error) {
	now := r.now().In(r.tz.Location())
	return "The current date and time is: " + now.Format(currentTimeLayout), nil
}

// handleSetTimezone takes everything after the last "timezone" in the
// original-cased text as the candidate zone name. IANA lookups are
// case-sensitive, so extraction must not use the lowercased copy.
func (r *Router) handleSetTimezone(_ context.Context, originalText string) (string, error) {
	raw := textAfterLast(originalText, "timezone")
	loc, err := r.tz.Set(raw)
	if err != nil {
		return fmt.Sprintf("Error: '%s' is not a valid timezone. Use format like 'America/New_York', 'Europe/Berlin'", raw), nil
	}
	return "Timezone updated to: " + loc.String(), nil
}

func (r *Router) handleBriefing(ctx context.Context, _ string) (string, error) {
	return r.briefing.Generate(ctx), nil
}

func (r *Router) handleCalendarNext(ctx context.Context, _ string) (string, error) {
	loc := r.tz.Location()
	events, err := r.calendar.EventsWithin(ctx, loc, 30)
	if err != nil {
		r.log.Warn("calendar_fetch_error", "intent", "calendar_next", "error", err.Error())
		return calendarUnavailableReply, nil
	}
	if len(events) == 0 {
		return "No upcoming events in the next 30 days.", nil
	}
	next := events[0]
	return fmt.Sprintf("Next event: *%s* on %s", next.Summary, next.Start.Format("Monday, Jan 2 at 15:04")), nil
}

func (r *Router) handleCalendarToday(ctx context.Context, _ string) (string, error) {
	loc := r.tz.Location()
	events, err := r.calendar.EventsWithin(ctx, loc, 1)
	if err != nil {
		r.log.Warn("calendar_fetch_error", "intent", "calendar_today", "error", err.Error())
		return calendarUnavailableReply, nil
	}
	if len(events) == 0 {
		return "No events today.", nil
	}
	return "*Today's events:*\n" + bulletedEvents(events, "15:04"), nil
}

func (r *Router) handleCalendarWeek(ctx context.Context, _ string) (string, error) {
	loc := r.tz.Location()
	events, err := r.calendar.EventsWithin(ctx, loc, 7)
	if err != nil {
		r.log.Warn("calendar_fetch_error", "intent", "calendar_week", "error", err.Error())
		return calendarUnavailableReply, nil
	}
	if len(events) == 0 {
		return "No events this week.", nil
	}
	return "*Events this week:*\n" + bulletedEvents(events, "Mon 15:04"), nil
}

func (r *Router) handleCalendarDefault(ctx context.Context, _ string) (string, error) {
	loc := r.tz.Location()
	events, err := r.calendar.EventsWithin(ctx, loc, 7)
	if err != nil {
		r.log.Warn("calendar_fetch_error", "intent", "calendar_default", "error", err.Error())
		return calendarUnavailableReply, nil
	}
	if len(events) == 0 {
		return "No events in the next 7 days.", nil
	}
	return "*Upcoming events (next 7 days):*\n" + bulletedEvents(events, "Mon Jan 2, 15:04"), nil
}

// textAfterLast returns the trimmed remainder of text after the last
// case-insensitive occurrence of marker, or "" when marker is absent.
func textAfterLast(text, marker string) string {
	idx := strings.LastIndex(strings.ToLower(text), marker)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(text[idx+len(marker):])
}
