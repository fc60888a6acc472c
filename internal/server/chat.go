package server

import (
	"fmt"
	"net/http"

	"github.com/ankimate/ankimate/internal/browse"
	"github.com/ankimate/ankimate/internal/compaction"
	"github.com/ankimate/ankimate/internal/provider"
	"github.com/ankimate/ankimate/internal/store"
)

type chatPayload struct {
	Message string `json:"message"`
}

// chatResponse is the reply to one chat turn. Exactly one of the result
// fields is set, matching the parsed action.
type chatResponse struct {
	Action   string                      `json:"action"`
	Reply    string                      `json:"reply"`
	Preview  *compaction.Preview         `json:"preview,omitempty"`
	Rollback *compaction.RollbackSummary `json:"rollback,omitempty"`
	Decks    []browse.DeckInfo           `json:"decks,omitempty"`
	Cards    []browse.Card               `json:"cards,omitempty"`
}

// handleChat parses a free-text command into an intent and executes it.
// Compaction intents only ever reach the preview stage here; applying
// still requires the explicit confirm endpoint with the token.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatPayload
	if err := decodeBody(r, &payload); err != nil {
		s.writeError(w, err)
		return
	}
	if payload.Message == "" {
		s.writeError(w, errValidation("message is required"))
		return
	}

	intent, err := provider.ParseIntent(r.Context(), s.completer, payload.Message)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := chatResponse{Action: intent.Action}
	switch intent.Action {
	case provider.ActionListDecks:
		decks, err := s.browser.ListDecks(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp.Decks = decks
		resp.Reply = fmt.Sprintf("You have %d decks.", len(decks))

	case provider.ActionListCards:
		cards, err := s.browser.ListCards(r.Context(), browse.CardsRequest{
			Deck:  intent.Deck,
			Field: intent.Field,
			Limit: intent.Limit,
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp.Cards = cards
		resp.Reply = fmt.Sprintf("Here are the %d longest %s fields in %q.", len(cards), intent.Field, intent.Deck)

	case provider.ActionCompact:
		preview, err := s.coord.Preview(r.Context(), compaction.PreviewRequest{
			Deck:         intent.Deck,
			Field:        intent.Field,
			PreviewCount: intent.PreviewCount,
			Limit:        intent.Limit,
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp.Preview = preview
		if preview.Count == 0 {
			resp.Reply = fmt.Sprintf("Nothing to compact in %q.", intent.Deck)
		} else {
			resp.Reply = fmt.Sprintf("Prepared %d rewrites for %q. Review the preview and confirm with the token to apply.", preview.Count, intent.Deck)
		}

	case provider.ActionRollback:
		summary, err := s.coord.Rollback(r.Context(), intent.Deck, intent.Field)
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp.Rollback = summary
		resp.Reply = fmt.Sprintf("Restored %d notes in %q.", summary.Restored, intent.Deck)
		s.recordRun(&store.Run{
			Op:       store.OpRollback,
			Deck:     intent.Deck,
			Field:    intent.Field,
			Restored: summary.Restored,
		})

	default:
		s.writeError(w, provider.ErrBadIntent)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
