// Package guard enforces the operator's mutation policy: which decks a
// bulk edit may touch, how many notes one batch may change, and which
// tags exempt a note from rewriting.
package guard

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Policy defines the limits and scopes for bulk note mutations.
type Policy struct {
	// AllowedDeckGlobs are glob patterns matched against deck paths.
	// Anki's "::" separators are treated as path segments, so
	// "Languages::**" covers a whole subtree.
	AllowedDeckGlobs []string `json:"allowed_deck_globs" yaml:"allowed_deck_globs"`

	// ProtectedTags are excluded from candidate selection entirely;
	// notes carrying one are never offered for compaction.
	ProtectedTags []string `json:"protected_tags" yaml:"protected_tags"`

	// MaxBatchSize caps the number of edits a single confirmation
	// token may cover. Zero means unlimited.
	MaxBatchSize int `json:"max_batch_size" yaml:"max_batch_size"`
}

// DefaultPolicy permits everything; guarding is opt-in.
var DefaultPolicy = Policy{
	AllowedDeckGlobs: []string{"*"},
}

// Violation represents a specific breach of policy.
type Violation struct {
	Rule    string
	Message string
}

// Guard enforces the policy.
type Guard struct {
	policy Policy
}

func New(p Policy) *Guard {
	return &Guard{policy: p}
}

// Policy returns the guard's current policy configuration.
func (g *Guard) Policy() Policy {
	return g.policy
}

// CheckDeck verifies that a deck may be mutated.
func (g *Guard) CheckDeck(deck string) *Violation {
	path := deckPath(deck)
	for _, pattern := range g.policy.AllowedDeckGlobs {
		if pattern == "*" {
			return nil
		}
		match, err := doublestar.Match(deckPath(pattern), path)
		if err == nil && match {
			return nil
		}
	}
	return &Violation{Rule: "allowed_deck_globs", Message: "deck not allowed: " + deck}
}

// CheckBatchSize verifies that a batch stays within the configured cap.
func (g *Guard) CheckBatchSize(n int) *Violation {
	if g.policy.MaxBatchSize > 0 && n > g.policy.MaxBatchSize {
		return &Violation{Rule: "max_batch_size", Message: "batch size limit exceeded"}
	}
	return nil
}

// ProtectedTags returns the tags that exclude a note from selection.
func (g *Guard) ProtectedTags() []string {
	return g.policy.ProtectedTags
}

func deckPath(deck string) string {
	return strings.ReplaceAll(deck, "::", "/")
}
