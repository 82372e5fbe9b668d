package router

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultTimezone is the zone used until a "set timezone" command succeeds.
const DefaultTimezone = "America/Chicago"

// Timezone is the process-wide display zone. Reads and writes may come from
// concurrent webhook requests, so access is guarded; Set swaps the value only
// after the name parsed as a valid IANA zone.
type Timezone struct {
	mu  sync.RWMutex
	loc *time.Location
}

func NewTimezone(loc *time.Location) *Timezone {
	if loc == nil {
		loc = time.UTC
	}
	return &Timezone{loc: loc}
}

func (t *Timezone) Location() *time.Location {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loc
}

// Set validates name as an IANA zone and, on success, atomically replaces
// the current zone. On failure the previous zone stays in effect.
func (t *Timezone) Set(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("timezone name is empty")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q", name)
	}
	t.mu.Lock()
	t.loc = loc
	t.mu.Unlock()
	return loc, nil
}
