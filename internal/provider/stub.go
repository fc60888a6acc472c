package provider

import (
	"context"
	"fmt"
	"strings"
)

// StubProvider is a deterministic backend for tests and offline demos.
// Compaction prompts are answered with a canned short sentence that
// contains the headword; intent prompts with a fixed list_decks intent.
type StubProvider struct {
	// Replies, when non-empty, are returned verbatim in order and
	// override the canned behavior.
	Replies []string

	// Err, when set, is returned by every call.
	Err error
}

func NewStubProvider() *StubProvider {
	return &StubProvider{}
}

func (s *StubProvider) Name() string {
	return "stub"
}

func (s *StubProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Replies) > 0 {
		reply := s.Replies[0]
		s.Replies = s.Replies[1:]
		return reply, nil
	}

	if strings.Contains(prompt, "structured parameters") {
		return `{"action": "list_decks"}`, nil
	}

	// Echo the target word back inside a fixed-size sentence so the
	// headword check always passes.
	if word := extractPromptField(prompt, "Target word: "); word != "" {
		return fmt.Sprintf("Every day people use the word %s in short everyday sentences together.", word), nil
	}
	return "ok", nil
}

func extractPromptField(prompt, label string) string {
	idx := strings.Index(prompt, label)
	if idx < 0 {
		return ""
	}
	rest := prompt[idx+len(label):]
	if end := strings.IndexByte(rest, '\n'); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}
