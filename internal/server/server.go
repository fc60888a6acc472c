// Package server exposes the assistant over HTTP for local frontends.
// Every mutating route goes through the same coordinator the CLI uses,
// so the confirmation token contract holds across both surfaces.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ankimate/ankimate/internal/anki"
	"github.com/ankimate/ankimate/internal/browse"
	"github.com/ankimate/ankimate/internal/compaction"
	"github.com/ankimate/ankimate/internal/observe"
	"github.com/ankimate/ankimate/internal/provider"
	"github.com/ankimate/ankimate/internal/store"
)

// Pinger reports whether the AnkiConnect endpoint is reachable.
type Pinger interface {
	Ping(ctx context.Context) bool
}

// Server wires the HTTP routes to the application services.
type Server struct {
	coord        *compaction.Coordinator
	browser      *browse.Browser
	completer    provider.Completer
	history      store.Store
	anki         Pinger
	obs          *observe.Observer
	providerName string
}

func New(coord *compaction.Coordinator, browser *browse.Browser, completer provider.Completer,
	history store.Store, pinger Pinger, obs *observe.Observer, providerName string) *Server {
	return &Server{
		coord:        coord,
		browser:      browser,
		completer:    completer,
		history:      history,
		anki:         pinger,
		obs:          obs,
		providerName: providerName,
	}
}

// Handler builds the route table with the common middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /decks", s.handleDecks)
	mux.HandleFunc("GET /ops/cards", s.handleCards)
	mux.HandleFunc("POST /ops/compact/preview", s.handlePreview)
	mux.HandleFunc("POST /ops/compact/apply", s.handleApply)
	mux.HandleFunc("POST /ops/rollback", s.handleRollback)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("POST /chat", s.handleChat)

	var handler http.Handler = mux
	handler = jsonMiddleware(handler)
	handler = s.loggingMiddleware(handler)
	handler = s.recoveryMiddleware(handler)
	return handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":   "ok",
		"provider": s.providerName,
		"anki":     true,
	}
	if !s.anki.Ping(r.Context()) {
		resp["anki"] = false
		resp["status"] = "degraded"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := s.browser.ListDecks(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"decks": decks})
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	cards, err := s.browser.ListCards(r.Context(), browse.CardsRequest{
		Deck:  q.Get("deck"),
		Field: q.Get("field"),
		Limit: limit,
		Order: q.Get("order"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cards": cards})
}

type previewPayload struct {
	Deck         string `json:"deck"`
	Field        string `json:"field"`
	PreviewCount int    `json:"preview_count"`
	Limit        int    `json:"limit"`
	DryRun       bool   `json:"dry_run"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var payload previewPayload
	if err := decodeBody(r, &payload); err != nil {
		s.writeError(w, err)
		return
	}

	preview, err := s.coord.Preview(r.Context(), compaction.PreviewRequest{
		Deck:         payload.Deck,
		Field:        payload.Field,
		PreviewCount: payload.PreviewCount,
		Limit:        payload.Limit,
		DryRun:       payload.DryRun,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

type applyPayload struct {
	ConfirmToken string `json:"confirm_token"`
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var payload applyPayload
	if err := decodeBody(r, &payload); err != nil {
		s.writeError(w, err)
		return
	}
	if payload.ConfirmToken == "" {
		s.writeError(w, errValidation("confirm_token is required"))
		return
	}

	summary, err := s.coord.Apply(r.Context(), payload.ConfirmToken)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.recordRun(&store.Run{
		Op:       store.OpCompact,
		Deck:     summary.Deck,
		Field:    summary.Field,
		Provider: s.providerName,
		Updated:  summary.Updated,
		Skipped:  summary.Skipped,
	})
	writeJSON(w, http.StatusOK, summary)
}

type rollbackPayload struct {
	Deck  string `json:"deck"`
	Field string `json:"field"`
}

func (s *Server) handleRollback(w http.ResponseWriter, r *http.Request) {
	var payload rollbackPayload
	if err := decodeBody(r, &payload); err != nil {
		s.writeError(w, err)
		return
	}

	summary, err := s.coord.Rollback(r.Context(), payload.Deck, payload.Field)
	if err != nil {
		s.writeError(w, err)
		return
	}

	field := payload.Field
	if field == "" {
		field = compaction.DefaultField
	}
	s.recordRun(&store.Run{
		Op:       store.OpRollback,
		Deck:     payload.Deck,
		Field:    field,
		Restored: summary.Restored,
	})
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusOK, map[string]any{"runs": []*store.Run{}})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.history.ListRuns(limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// recordRun persists a history entry, logging instead of failing the
// request when the local database is unavailable.
func (s *Server) recordRun(run *store.Run) {
	if s.history == nil {
		return
	}
	if err := s.history.RecordRun(run); err != nil {
		s.obs.Component("server").Warn().Err(err).Msg("failed to record run history")
	}
}

// decodeBody parses a JSON request body, rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errValidation("invalid request body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// validationError carries a 422 with a human-readable message.
type validationError struct{ msg string }

func (e validationError) Error() string { return e.msg }

func errValidation(msg string) error { return validationError{msg: msg} }

// writeError maps domain errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var vErr validationError
	var remote *anki.RemoteError
	switch {
	case errors.Is(err, compaction.ErrTokenNotFound):
		status = http.StatusBadRequest
	case errors.Is(err, compaction.ErrPolicyViolation):
		status = http.StatusForbidden
	case errors.Is(err, anki.ErrTransport):
		status = http.StatusBadGateway
	case errors.Is(err, anki.ErrEmptyDeck),
		errors.Is(err, provider.ErrBadIntent),
		errors.As(err, &vErr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &remote):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		s.obs.Component("server").Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
