package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Actions recognized by the intent parser.
const (
	ActionCompact   = "compact_examples"
	ActionRollback  = "rollback"
	ActionListCards = "list_cards"
	ActionListDecks = "list_decks"
)

// Defaults applied when the parsed intent leaves a field unset.
const (
	DefaultField        = "Example"
	DefaultLimit        = 30
	DefaultPreviewCount = 5
)

var ErrBadIntent = errors.New("provider: could not parse intent")

// Intent is a structured operation extracted from a natural-language
// command.
type Intent struct {
	Action       string `json:"action"`
	Deck         string `json:"deck,omitempty"`
	Field        string `json:"field,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	PreviewCount int    `json:"preview_count,omitempty"`
	Confirm      bool   `json:"confirm,omitempty"`
}

const intentPrompt = `Parse this natural language command into structured parameters for an Anki assistant.

Command: %s

Return a JSON object with these fields:
- action: "compact_examples", "rollback", "list_cards", or "list_decks"
- deck: deck name (string, required for all actions except "list_decks")
- field: field name (string, default "Example", not needed for "list_decks")
- limit: maximum number of notes (integer, default 30, not needed for "list_decks")
- preview_count: number of preview items (integer, default 5, not needed for "list_decks")
- confirm: whether to confirm (boolean, default false, not needed for "list_decks")

Examples:
- "Compact examples in deck 'News B2', preview 5, apply 30" -> {"action": "compact_examples", "deck": "News B2", "preview_count": 5, "limit": 30, "confirm": false}
- "Rollback compacted examples in 'News B2'" -> {"action": "rollback", "deck": "News B2"}
- "List 10 longest examples in 'News B2'" -> {"action": "list_cards", "deck": "News B2", "limit": 10}
- "Show longest Back fields in deck B" -> {"action": "list_cards", "deck": "B", "field": "Back"}
- "List my decks" -> {"action": "list_decks"}

JSON response:`

// ParseIntent turns a free-text command into an Intent via the LLM,
// then validates and applies defaults.
func ParseIntent(ctx context.Context, c Completer, message string) (*Intent, error) {
	reply, err := c.Complete(ctx, fmt.Sprintf(intentPrompt, message))
	if err != nil {
		return nil, fmt.Errorf("parse intent: %w", err)
	}
	return DecodeIntent(reply)
}

// DecodeIntent parses the model's JSON reply, tolerating markdown code
// fences, and normalizes the result.
func DecodeIntent(reply string) (*Intent, error) {
	body := stripFences(reply)
	if !strings.HasPrefix(body, "{") {
		return nil, fmt.Errorf("%w: reply is not a JSON object", ErrBadIntent)
	}

	var intent Intent
	if err := json.Unmarshal([]byte(body), &intent); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadIntent, err)
	}

	switch intent.Action {
	case ActionCompact, ActionRollback, ActionListCards:
		if intent.Deck == "" {
			return nil, fmt.Errorf("%w: missing deck for action %s", ErrBadIntent, intent.Action)
		}
	case ActionListDecks:
	case "":
		return nil, fmt.Errorf("%w: missing action", ErrBadIntent)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrBadIntent, intent.Action)
	}

	if intent.Action != ActionListDecks {
		if intent.Field == "" {
			intent.Field = DefaultField
		}
		if intent.Limit <= 0 {
			intent.Limit = DefaultLimit
		}
		if intent.PreviewCount <= 0 {
			intent.PreviewCount = DefaultPreviewCount
		}
	}
	return &intent, nil
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "```json"); idx >= 0 {
		s = s[idx+len("```json"):]
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	} else if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+3:]
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	}
	return strings.TrimSpace(s)
}
