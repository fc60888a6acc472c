// Package compaction drives the preview -> confirm -> apply -> rollback
// lifecycle for bulk example rewrites. Nothing here talks to Anki or to
// an LLM directly; both sit behind small interfaces.
package compaction

import "time"

const (
	// MarkerTag identifies notes whose example currently holds a
	// compacted value. It is the sole selector for rollback and is
	// shared with previously stored state, so it must not change.
	MarkerTag = "compact_examples"

	// DefaultField is the note field rewritten when none is given.
	DefaultField = "Example"

	DefaultPreviewCount = 5
	DefaultLimit        = 30

	// DefaultPace is the minimum delay between consecutive transformer
	// calls, respecting the backend's rate limits.
	DefaultPace = 250 * time.Millisecond
)

// NoteEdit is one proposed rewrite. Immutable once produced by preview.
type NoteEdit struct {
	NoteID int64  `json:"note_id"`
	Word   string `json:"word"`
	Old    string `json:"old"`
	New    string `json:"new"`
}

// ChangeBatch is the full set of edits behind one confirmation token.
type ChangeBatch struct {
	Deck  string
	Field string
	Edits []NoteEdit
}

// Preview is the outcome of a preview call. Diffs carries at most the
// requested preview count; Count is the size of the whole batch.
type Preview struct {
	Count             int        `json:"count"`
	Diffs             []NoteEdit `json:"diffs"`
	NeedsConfirmation bool       `json:"needs_confirmation"`
	ConfirmToken      string     `json:"confirm_token,omitempty"`
}

// ApplySummary reports the outcome of redeeming a token.
// Updated+Skipped always equals the batch size.
type ApplySummary struct {
	Deck    string `json:"deck"`
	Field   string `json:"field"`
	Updated int    `json:"updated"`
	Skipped int    `json:"skipped"`
	Tagged  int    `json:"tagged"`
}

// RollbackSummary reports the outcome of a rollback pass. A note is
// counted only when restore and untag both succeeded, so
// Restored == Untagged by construction.
type RollbackSummary struct {
	Restored int `json:"restored"`
	Untagged int `json:"untagged"`
}
