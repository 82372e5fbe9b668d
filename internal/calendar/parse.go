package calendar

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
)

const (
	dateTimeUTCLayout   = "20060102T150405Z"
	dateTimeLocalLayout = "20060102T150405"
	dateLayout          = "20060102"
)

// parseEvents extracts every VEVENT occurrence that starts in [from, to).
// Recurring events are expanded through their RRULE inside the window.
func parseEvents(data []byte, loc *time.Location, from, to time.Time) ([]Event, error) {
	cal, err := ics.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	var events []Event
	for _, ve := range cal.Events() {
		summary := propertyValue(ve, ics.ComponentPropertySummary)
		start, err := eventStart(ve, loc)
		if err != nil {
			// A single malformed component does not poison the feed.
			continue
		}

		if rr := ve.GetProperty(ics.ComponentPropertyRrule); rr != nil {
			occurrences, err := expandRecurrence(rr.Value, start, from, to)
			if err != nil {
				continue
			}
			for _, occ := range occurrences {
				events = append(events, Event{Start: occ.In(loc), Summary: summary})
			}
			continue
		}

		if inWindow(start, from, to) {
			events = append(events, Event{Start: start, Summary: summary})
		}
	}
	return events, nil
}

func inWindow(start, from, to time.Time) bool {
	return !start.Before(from) && start.Before(to)
}

func expandRecurrence(rule string, dtstart, from, to time.Time) ([]time.Time, error) {
	opt, err := rrule.StrToROption(strings.TrimSpace(rule))
	if err != nil {
		return nil, fmt.Errorf("parse rrule: %w", err)
	}
	opt.Dtstart = dtstart
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("build rrule: %w", err)
	}
	var out []time.Time
	for _, occ := range r.Between(from, to, true) {
		if inWindow(occ, from, to) {
			out = append(out, occ)
		}
	}
	return out, nil
}

// eventStart parses DTSTART into a timezone-aware time. UTC values keep UTC,
// TZID values use their named zone, and floating values (including all-day
// DATE values) are localized to loc.
func eventStart(ve *ics.VEvent, loc *time.Location) (time.Time, error) {
	prop := ve.GetProperty(ics.ComponentPropertyDtStart)
	if prop == nil {
		return time.Time{}, fmt.Errorf("event has no dtstart")
	}
	value := strings.TrimSpace(prop.Value)
	if value == "" {
		return time.Time{}, fmt.Errorf("dtstart is empty")
	}

	if tzid := firstParam(prop, "TZID"); tzid != "" {
		zone, err := time.LoadLocation(tzid)
		if err != nil {
			return time.Time{}, fmt.Errorf("unknown tzid %q", tzid)
		}
		t, err := time.ParseInLocation(dateTimeLocalLayout, value, zone)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse dtstart %q: %w", value, err)
		}
		return t.In(loc), nil
	}

	switch {
	case strings.HasSuffix(value, "Z"):
		t, err := time.Parse(dateTimeUTCLayout, value)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse dtstart %q: %w", value, err)
		}
		return t.In(loc), nil
	case len(value) == len(dateLayout):
		t, err := time.ParseInLocation(dateLayout, value, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse dtstart %q: %w", value, err)
		}
		return t, nil
	default:
		t, err := time.ParseInLocation(dateTimeLocalLayout, value, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse dtstart %q: %w", value, err)
		}
		return t, nil
	}
}

func propertyValue(ve *ics.VEvent, name ics.ComponentProperty) string {
	prop := ve.GetProperty(name)
	if prop == nil {
		return ""
	}
	return strings.TrimSpace(prop.Value)
}

func firstParam(prop *ics.IANAProperty, name string) string {
	if prop == nil {
		return ""
	}
	values, ok := prop.ICalParameters[name]
	if !ok || len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
