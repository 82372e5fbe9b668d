// Package slackevents holds the wire types for the Slack Events API payloads
// this bot consumes.
package slackevents

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	TypeURLVerification = "url_verification"
	TypeEventCallback   = "event_callback"

	EventAppMention = "app_mention"

	SubtypeBotMessage = "bot_message"
)

type Envelope struct {
	Type      string          `json:"type,omitempty"`
	Token     string          `json:"token,omitempty"`
	Challenge string          `json:"challenge,omitempty"`
	TeamID    string          `json:"team_id,omitempty"`
	EventID   string          `json:"event_id,omitempty"`
	EventTime int64           `json:"event_time,omitempty"`
	Event     json.RawMessage `json:"event,omitempty"`
}

type Event struct {
	Type        string `json:"type,omitempty"`
	Subtype     string `json:"subtype,omitempty"`
	User        string `json:"user,omitempty"`
	Text        string `json:"text,omitempty"`
	Channel     string `json:"channel,omitempty"`
	ChannelType string `json:"channel_type,omitempty"`
	TS          string `json:"ts,omitempty"`
	ThreadTS    string `json:"thread_ts,omitempty"`
	BotID       string `json:"bot_id,omitempty"`
	Team        string `json:"team,omitempty"`
	EventTS     string `json:"event_ts,omitempty"`
}

func ParseEnvelope(body []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, fmt.Errorf("parse event envelope: %w", err)
	}
	return env, nil
}

// IsHandshake reports whether the envelope is the one-time URL verification
// handshake. Detection is based on explicit field presence, never on absence
// of event data.
func (e Envelope) IsHandshake() bool {
	return e.Type == TypeURLVerification && strings.TrimSpace(e.Challenge) != ""
}

func (e Envelope) InnerEvent() (Event, error) {
	if len(e.Event) == 0 {
		return Event{}, fmt.Errorf("envelope has no event")
	}
	var ev Event
	if err := json.Unmarshal(e.Event, &ev); err != nil {
		return Event{}, fmt.Errorf("parse inner event: %w", err)
	}
	return ev, nil
}

// IsBotAuthored reports whether the event was produced by a bot, either via
// the bot_message subtype or a bot_id on the message itself.
func (e Event) IsBotAuthored() bool {
	return e.Subtype == SubtypeBotMessage || strings.TrimSpace(e.BotID) != ""
}
