package router

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/quailyquaily/snuffles/internal/calendar"
	"github.com/quailyquaily/snuffles/internal/slackevents"
)

type recordingPoster struct {
	mu       sync.Mutex
	messages []string
	channels []string
	err      error
}

func (p *recordingPoster) PostMessage(_ context.Context, channelID, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channelID)
	p.messages = append(p.messages, text)
	return p.err
}

type stubCalendar struct {
	events   []calendar.Event
	err      error
	lastDays int
	calls    int
}

func (c *stubCalendar) EventsWithin(_ context.Context, _ *time.Location, days int) ([]calendar.Event, error) {
	c.calls++
	c.lastDays = days
	return c.events, c.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mention(text string) slackevents.Event {
	return slackevents.Event{Type: slackevents.EventAppMention, Channel: "C42", Text: text, User: "U1"}
}

func newTestRouter(t *testing.T, poster *recordingPoster, cal *stubCalendar) *Router {
	t.Helper()
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		t.Fatalf("load default zone: %v", err)
	}
	return New(Options{
		Poster:   poster,
		Timezone: NewTimezone(loc),
		Calendar: cal,
		Now:      func() time.Time { return time.Date(2026, 3, 11, 18, 0, 0, 0, time.UTC) },
		Logger:   testLogger(),
	})
}

func TestDispatch_Greeting(t *testing.T) {
	poster := &recordingPoster{}
	r := newTestRouter(t, poster, &stubCalendar{})

	r.Dispatch(context.Background(), mention("<@UBOT> hello there"))

	if len(poster.messages) != 1 || poster.messages[0] != greetingReply {
		t.Fatalf("messages = %#v", poster.messages)
	}
	if poster.channels[0] != "C42" {
		t.Fatalf("channel = %q", poster.channels[0])
	}
}

func TestDispatch_CurrentTimeUsesConfiguredZone(t *testing.T) {
	poster := &recordingPoster{}
	r := newTestRouter(t, poster, &stubCalendar{})

	r.Dispatch(context.Background(), mention("<@UBOT> what time is it?"))

	if len(poster.messages) != 1 {
		t.Fatalf("messages = %#v", poster.messages)
	}
	// 18:00 UTC on 2026-03-11 is 13:00 CDT in America/Chicago.
	want := "The current date and time is: 2026-03-11 13:00:00 CDT"
	if poster.messages[0] != want {
		t.Fatalf("reply = %q, want %q", poster.messages[0], want)
	}
}

func TestDispatch_TimezoneRoundTrip(t *testing.T) {
	poster := &recordingPoster{}
	r := newTestRouter(t, poster, &stubCalendar{})

	// "timezone" also contains "time", so the current_time intent fires too.
	r.Dispatch(context.Background(), mention("<@UBOT> set timezone Europe/Berlin"))
	if len(poster.messages) != 2 || poster.messages[1] != "Timezone updated to: Europe/Berlin" {
		t.Fatalf("messages = %#v", poster.messages)
	}

	poster.messages = nil
	r.Dispatch(context.Background(), mention("<@UBOT> what time is it?"))
	// 18:00 UTC is 19:00 CET in Europe/Berlin on 2026-03-11.
	want := "The current date and time is: 2026-03-11 19:00:00 CET"
	if len(poster.messages) != 1 || poster.messages[0] != want {
		t.Fatalf("messages = %#v, want %q", poster.messages, want)
	}
}

func TestDispatch_InvalidTimezoneLeavesStateAndNamesValue(t *testing.T) {
	poster := &recordingPoster{}
	r := newTestRouter(t, poster, &stubCalendar{})

	r.Dispatch(context.Background(), mention("<@UBOT> set timezone Mars/Olympus"))
	if len(poster.messages) != 2 {
		t.Fatalf("messages = %#v", poster.messages)
	}
	if !strings.Contains(poster.messages[1], "'Mars/Olympus' is not a valid timezone") {
		t.Fatalf("reply = %q", poster.messages[1])
	}

	// The previous zone is still in effect.
	poster.messages = nil
	r.Dispatch(context.Background(), mention("<@UBOT> what time is it?"))
	if !strings.Contains(poster.messages[0], "CDT") {
		t.Fatalf("zone changed after invalid update: %q", poster.messages[0])
	}
}

func TestDispatch_TimezoneExtractionAfterLastMarker(t *testing.T) {
	poster := &recordingPoster{}
	r := newTestRouter(t, poster, &stubCalendar{})

	r.Dispatch(context.Background(), mention("<@UBOT> change the timezone, set timezone UTC"))
	if len(poster.messages) != 2 || poster.messages[1] != "Timezone updated to: UTC" {
		t.Fatalf("messages = %#v", poster.messages)
	}
}

func TestDispatch_MultipleIndependentIntentsFire(t *testing.T) {
	poster := &recordingPoster{}
	r := newTestRouter(t, poster, &stubCalendar{})

	r.Dispatch(context.Background(), mention("<@UBOT> hi, what's the date?"))

	if len(poster.messages) != 2 {
		t.Fatalf("expected greeting and time replies, got %#v", poster.messages)
	}
	if poster.messages[0] != greetingReply {
		t.Fatalf("first reply = %q", poster.messages[0])
	}
	if !strings.HasPrefix(poster.messages[1], "The current date and time is:") {
		t.Fatalf("second reply = %q", poster.messages[1])
	}
}

func TestDispatch_CalendarIntentsAreExclusive(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		wantDays int
		want     string
	}{
		{"next event wins over default", "any next event on my calendar?", 30, "Next event:"},
		{"today", "calendar events today please", 1, "No events today."},
		{"this week", "what events are there this week", 7, "No events this week."},
		{"default", "show my calendar", 7, "No events in the next 7 days."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			poster := &recordingPoster{}
			cal := &stubCalendar{}
			if tc.want == "Next event:" {
				cal.events = []calendar.Event{{Start: time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC), Summary: "Standup"}}
			}
			r := newTestRouter(t, poster, cal)

			r.Dispatch(context.Background(), mention("<@UBOT> "+tc.text))

			if cal.calls != 1 {
				t.Fatalf("calendar calls = %d, want exactly 1", cal.calls)
			}
			if cal.lastDays != tc.wantDays {
				t.Fatalf("window days = %d, want %d", cal.lastDays, tc.wantDays)
			}
			// "today" also matches the independent current_time intent
			// ("today" contains "day"); the calendar reply is always last.
			last := poster.messages[len(poster.messages)-1]
			if !strings.Contains(last, tc.want) {
				t.Fatalf("messages = %#v, want last to contain %q", poster.messages, tc.want)
			}
		})
	}
}

func TestDispatch_CalendarUnavailableIsDistinctFromEmpty(t *testing.T) {
	poster := &recordingPoster{}
	cal := &stubCalendar{err: fmt.Errorf("feed down")}
	r := newTestRouter(t, poster, cal)

	r.Dispatch(context.Background(), mention("<@UBOT> show my calendar"))

	if len(poster.messages) != 1 || poster.messages[0] != calendarUnavailableReply {
		t.Fatalf("messages = %#v", poster.messages)
	}
}

func TestDispatch_CalendarFailureDoesNotBlockOtherIntents(t *testing.T) {
	poster := &recordingPoster{}
	cal := &stubCalendar{err: fmt.Errorf("feed down")}
	r := newTestRouter(t, poster, cal)

	r.Dispatch(context.Background(), mention("<@UBOT> hi, any calendar events?"))

	if len(poster.messages) != 2 {
		t.Fatalf("messages = %#v", poster.messages)
	}
	if poster.messages[0] != greetingReply {
		t.Fatalf("greeting missing: %#v", poster.messages)
	}
}

func TestDispatch_BotAuthoredEventsAreDropped(t *testing.T) {
	poster := &recordingPoster{}
	r := newTestRouter(t, poster, &stubCalendar{})

	ev := mention("<@UBOT> hello")
	ev.Subtype = slackevents.SubtypeBotMessage
	r.Dispatch(context.Background(), ev)

	ev = mention("<@UBOT> hello")
	ev.Subtype = ""
	ev.BotID = "B99"
	r.Dispatch(context.Background(), ev)

	if len(poster.messages) != 0 {
		t.Fatalf("bot events must produce no replies, got %#v", poster.messages)
	}
}

func TestDispatch_NonMentionEventsAreIgnored(t *testing.T) {
	poster := &recordingPoster{}
	r := newTestRouter(t, poster, &stubCalendar{})

	r.Dispatch(context.Background(), slackevents.Event{Type: "message", Channel: "C42", Text: "hello"})

	if len(poster.messages) != 0 {
		t.Fatalf("plain messages must be ignored, got %#v", poster.messages)
	}
}

func TestDispatch_PostFailureDoesNotBlockSiblings(t *testing.T) {
	poster := &recordingPoster{err: fmt.Errorf("slack down")}
	r := newTestRouter(t, poster, &stubCalendar{})

	r.Dispatch(context.Background(), mention("<@UBOT> hi, what day is it?"))

	if len(poster.messages) != 2 {
		t.Fatalf("both intents should attempt delivery, got %#v", poster.messages)
	}
}
