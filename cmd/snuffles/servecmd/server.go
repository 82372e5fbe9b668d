package servecmd

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/quailyquaily/snuffles/internal/router"
	"github.com/quailyquaily/snuffles/internal/signature"
	"github.com/quailyquaily/snuffles/internal/slackevents"
)

const maxEventBodyBytes = 1 << 20

type server struct {
	log      *slog.Logger
	verifier *signature.Verifier
	router   *router.Router
}

func newServer(logger *slog.Logger, verifier *signature.Verifier, rt *router.Router) *server {
	return &server{log: logger, verifier: verifier, router: rt}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/slack/events", s.handleEvents)
	return mux
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleEvents verifies the request signature before trusting anything in
// the body, including the url_verification handshake. Downstream failures
// never turn into non-200 responses; only authentication does.
func (s *server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	requestID := uuid.NewString()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEventBodyBytes))
	if err != nil {
		s.log.Warn("events_body_read_error", "request_id", requestID, "error", err.Error())
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}

	if err := s.verifier.Verify(
		body,
		r.Header.Get("X-Slack-Request-Timestamp"),
		r.Header.Get("X-Slack-Signature"),
	); err != nil {
		s.log.Warn("events_signature_rejected", "request_id", requestID, "reason", err.Error())
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid signature"})
		return
	}

	env, err := slackevents.ParseEnvelope(body)
	if err != nil {
		// Signed but unparseable: fail closed with a plain ack.
		s.log.Warn("events_envelope_parse_error", "request_id", requestID, "error", err.Error())
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	if env.IsHandshake() {
		s.log.Info("events_url_verification", "request_id", requestID)
		writeJSON(w, http.StatusOK, map[string]string{"challenge": env.Challenge})
		return
	}

	ev, err := env.InnerEvent()
	if err != nil {
		s.log.Warn("events_inner_event_error", "request_id", requestID, "error", err.Error())
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	s.log.Info("events_received",
		"request_id", requestID,
		"event_id", env.EventID,
		"event_type", ev.Type,
		"channel_id", ev.Channel,
	)
	s.router.Dispatch(r.Context(), ev)

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
