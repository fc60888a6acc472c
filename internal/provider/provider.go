// Package provider contains the LLM adapters. Each backend implements
// the small Completer contract; the compaction and intent prompts are
// built on top of it so every backend behaves identically.
package provider

import (
	"context"
	"fmt"
	"strings"
)

// Completer is the interface all LLM backends implement.
type Completer interface {
	// Complete sends a single-turn prompt and returns the raw text reply.
	Complete(ctx context.Context, prompt string) (string, error)

	// Name returns the backend identifier (e.g. "openai", "ollama").
	Name() string
}

// Sentence rewrites target 10-16 words; CEFR B2 phrasing. The window is
// part of the transformer contract, not enforced by the caller.
const (
	minWords = 10
	maxWords = 16
)

// CompactRequest asks for one sentence rewrite. Strict selects the more
// directive retry prompt used after a failed headword check.
type CompactRequest struct {
	Headword string
	Sentence string
	Strict   bool
}

// Compact rewrites an example sentence to a shorter controlled form
// that keeps the headword. The reply is returned verbatim (trimmed);
// validating headword presence is the caller's job.
func Compact(ctx context.Context, c Completer, req CompactRequest) (string, error) {
	var prompt string
	if req.Strict {
		prompt = fmt.Sprintf(`The target word '%s' must appear in the compacted sentence.

Target word: %s
Current sentence: %s

Compact to %d-%d words, keeping '%s' exactly as is:`,
			req.Headword, req.Headword, req.Sentence, minWords, maxWords, req.Headword)
	} else {
		prompt = fmt.Sprintf(`Compact this example sentence while following these constraints:

Target word: %s
Current sentence: %s

Constraints:
1. Keep the target word EXACTLY as given (unchanged form)
2. Make it %d-%d words total
3. Use CEFR B2 level vocabulary and everyday context
4. No named entities, no rare idioms
5. Use the most common sense of the word
6. Ensure the target word is present in the output

Return only the compacted sentence, nothing else.`,
			req.Headword, req.Sentence, minWords, maxWords)
	}

	reply, err := c.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("compact sentence: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// ContainsHeadword reports whether a rewritten sentence still carries
// the headword, using a case-insensitive substring match.
func ContainsHeadword(sentence, headword string) bool {
	return strings.Contains(strings.ToLower(sentence), strings.ToLower(headword))
}
