package router

import (
	"strings"

	"github.com/quailyquaily/snuffles/internal/calendar"
)

// bulletedEvents renders events one per line with the given start-time
// layout, Slack bullet style.
func bulletedEvents(events []calendar.Event, layout string) string {
	lines := make([]string, 0, len(events))
	for _, ev := range events {
		summary := ev.Summary
		if summary == "" {
			summary = "(untitled)"
		}
		lines = append(lines, "• "+ev.Start.Format(layout)+" - "+summary)
	}
	return strings.Join(lines, "\n")
}
