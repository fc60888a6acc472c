package compaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/ankimate/ankimate/internal/anki"
	"github.com/ankimate/ankimate/internal/guard"
	"github.com/ankimate/ankimate/internal/observe"
	"github.com/ankimate/ankimate/internal/provider"
)

// ErrPolicyViolation is returned when the operator's guard policy
// forbids the requested mutation.
var ErrPolicyViolation = errors.New("compaction: policy violation")

// Coordinator owns the compaction lifecycle. One instance is shared by
// the HTTP server and the CLI; its pending store is the only mutable
// state.
type Coordinator struct {
	store    anki.Store
	rewriter Rewriter
	pending  *PendingStore
	guard    *guard.Guard
	observe  *observe.Observer
	limiter  *rate.Limiter
}

func New(store anki.Store, rw Rewriter, pending *PendingStore, g *guard.Guard, obs *observe.Observer) *Coordinator {
	return &Coordinator{
		store:    store,
		rewriter: rw,
		pending:  pending,
		guard:    g,
		observe:  obs,
		limiter:  rate.NewLimiter(rate.Every(DefaultPace), 1),
	}
}

// SetPace adjusts the minimum delay between consecutive transformer
// calls. Zero or negative disables pacing (used in tests).
func (c *Coordinator) SetPace(d time.Duration) {
	if d <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 1)
		return
	}
	c.limiter = rate.NewLimiter(rate.Every(d), 1)
}

// PreviewRequest selects the notes to rewrite. Zero values fall back to
// the package defaults.
type PreviewRequest struct {
	Deck         string
	Field        string
	PreviewCount int
	Limit        int
	DryRun       bool
}

func (r *PreviewRequest) normalize() {
	if r.Field == "" {
		r.Field = DefaultField
	}
	if r.PreviewCount <= 0 {
		r.PreviewCount = DefaultPreviewCount
	}
	if r.Limit <= 0 {
		r.Limit = DefaultLimit
	}
}

// Preview computes the batch of rewrites for a deck and, unless DryRun
// is set, registers it under a fresh confirmation token. The remote
// store is never written to.
func (c *Coordinator) Preview(ctx context.Context, req PreviewRequest) (*Preview, error) {
	ctx, span := c.observe.StartSpan(ctx, "compaction.preview")
	defer span.End()

	req.normalize()
	log := c.observe.Component("compaction")

	if v := c.guard.CheckDeck(req.Deck); v != nil {
		return nil, fmt.Errorf("%w: %s", ErrPolicyViolation, v.Message)
	}

	excludes := append([]string{MarkerTag}, c.guard.ProtectedTags()...)
	query, err := anki.CandidateQuery(req.Deck, req.Field, excludes...)
	if err != nil {
		return nil, err
	}

	ids, err := c.store.FindNotes(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(ids) > req.Limit {
		ids = ids[:req.Limit]
	}
	if len(ids) == 0 {
		return &Preview{}, nil
	}

	notes, err := c.store.NotesInfo(ctx, ids)
	if err != nil {
		return nil, err
	}

	edits := make([]NoteEdit, 0, len(notes))
	failures := 0
	first := true
	for _, note := range notes {
		headword := note.Headword()
		if headword == "" {
			log.Warn().Int("note", int(note.NoteID)).Msg("skipping note: no headword found")
			continue
		}
		sentence := note.Field(req.Field)
		if sentence == "" {
			continue
		}

		if !first {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		first = false

		rewritten, err := c.rewrite(ctx, headword, sentence)
		if err != nil {
			failures++
			log.Warn().Int("note", int(note.NoteID)).Str("word", headword).Err(err).Msg("rewrite failed")
			continue
		}

		edits = append(edits, NoteEdit{
			NoteID: note.NoteID,
			Word:   headword,
			Old:    sentence,
			New:    rewritten,
		})
	}

	msg := "preview complete"
	if req.DryRun {
		msg = "dry run complete"
	}
	log.Info().
		Str("deck", req.Deck).
		Int("candidates", len(notes)).
		Int("edits", len(edits)).
		Int("failures", failures).
		Msg(msg)

	if len(edits) == 0 {
		return &Preview{}, nil
	}
	if v := c.guard.CheckBatchSize(len(edits)); v != nil {
		return nil, fmt.Errorf("%w: %s", ErrPolicyViolation, v.Message)
	}

	result := &Preview{Count: len(edits)}
	if len(edits) > req.PreviewCount {
		result.Diffs = edits[:req.PreviewCount]
	} else {
		result.Diffs = edits
	}

	if !req.DryRun {
		token, err := c.pending.Put(ChangeBatch{Deck: req.Deck, Field: req.Field, Edits: edits})
		if err != nil {
			return nil, err
		}
		result.NeedsConfirmation = true
		result.ConfirmToken = token
	}
	return result, nil
}

// rewrite asks the transformer once, verifies the headword survived,
// and retries exactly once with the strict prompt before giving up.
func (c *Coordinator) rewrite(ctx context.Context, headword, sentence string) (string, error) {
	out, err := c.rewriter.Rewrite(ctx, headword, sentence, false)
	if err != nil {
		return "", err
	}
	if provider.ContainsHeadword(out, headword) {
		return out, nil
	}

	out, err = c.rewriter.Rewrite(ctx, headword, sentence, true)
	if err != nil {
		return "", err
	}
	if !provider.ContainsHeadword(out, headword) {
		return "", fmt.Errorf("headword %q missing from rewrite after retry", headword)
	}
	return out, nil
}

// Apply redeems a confirmation token and writes the batch. The token is
// consumed up front, so a second call with the same token fails without
// side effects regardless of how this one goes. Individual note
// failures are counted as skipped, never raised.
func (c *Coordinator) Apply(ctx context.Context, token string) (*ApplySummary, error) {
	ctx, span := c.observe.StartSpan(ctx, "compaction.apply")
	defer span.End()

	batch, ok := c.pending.Take(token)
	if !ok {
		return nil, ErrTokenNotFound
	}

	log := c.observe.Component("compaction")
	backupField := anki.BackupFieldName(batch.Field)
	summary := &ApplySummary{Deck: batch.Deck, Field: batch.Field}

	for _, edit := range batch.Edits {
		// Backup re-reads the live value: the note may have changed
		// between preview and apply, and the backup must hold whatever
		// is being overwritten right now.
		notes, err := c.store.NotesInfo(ctx, []int64{edit.NoteID})
		if err != nil || len(notes) == 0 {
			summary.Skipped++
			log.Warn().Int("note", int(edit.NoteID)).Err(err).Msg("skipping note: unreadable")
			continue
		}
		current := notes[0].Field(batch.Field)
		if current == "" {
			summary.Skipped++
			log.Warn().Int("note", int(edit.NoteID)).Msg("skipping note: source field empty")
			continue
		}

		if err := c.store.UpdateNoteFields(ctx, edit.NoteID, map[string]string{backupField: current}); err != nil {
			summary.Skipped++
			log.Warn().Int("note", int(edit.NoteID)).Err(err).Msg("skipping note: backup write failed")
			continue
		}
		// From here on a backup exists. A failure below still counts
		// the note as skipped, leaving a stray backup field behind;
		// the original content is never lost.
		if err := c.store.UpdateNoteFields(ctx, edit.NoteID, map[string]string{batch.Field: edit.New}); err != nil {
			summary.Skipped++
			log.Error().Int("note", int(edit.NoteID)).Err(err).Msg("content write failed after backup")
			continue
		}
		if err := c.store.AddTags(ctx, []int64{edit.NoteID}, MarkerTag); err != nil {
			summary.Skipped++
			log.Error().Int("note", int(edit.NoteID)).Err(err).Msg("tagging failed after content write")
			continue
		}

		summary.Updated++
		summary.Tagged++
	}

	log.Info().
		Str("deck", batch.Deck).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Msg("apply complete")
	return summary, nil
}

// Rollback restores every note in a deck that carries the marker tag
// and a non-empty backup field. It needs no token, and a second pass
// finds nothing because the first one removed the tags.
func (c *Coordinator) Rollback(ctx context.Context, deck, field string) (*RollbackSummary, error) {
	ctx, span := c.observe.StartSpan(ctx, "compaction.rollback")
	defer span.End()

	if field == "" {
		field = DefaultField
	}
	log := c.observe.Component("compaction")

	if v := c.guard.CheckDeck(deck); v != nil {
		return nil, fmt.Errorf("%w: %s", ErrPolicyViolation, v.Message)
	}

	query, err := anki.RollbackQuery(deck, field, MarkerTag)
	if err != nil {
		return nil, err
	}
	ids, err := c.store.FindNotes(ctx, query)
	if err != nil {
		return nil, err
	}

	backupField := anki.BackupFieldName(field)
	summary := &RollbackSummary{}

	for _, id := range ids {
		notes, err := c.store.NotesInfo(ctx, []int64{id})
		if err != nil || len(notes) == 0 {
			log.Warn().Int("note", int(id)).Err(err).Msg("rollback: note unreadable")
			continue
		}
		backup := notes[0].Field(backupField)
		if backup == "" {
			continue
		}

		// The stale backup field is left in place after restore; only
		// the marker tag decides eligibility.
		if err := c.store.UpdateNoteFields(ctx, id, map[string]string{field: backup}); err != nil {
			log.Warn().Int("note", int(id)).Err(err).Msg("rollback: restore failed")
			continue
		}
		if err := c.store.RemoveTags(ctx, []int64{id}, MarkerTag); err != nil {
			log.Warn().Int("note", int(id)).Err(err).Msg("rollback: untag failed")
			continue
		}

		summary.Restored++
		summary.Untagged++
	}

	log.Info().
		Str("deck", deck).
		Int("restored", summary.Restored).
		Msg("rollback complete")
	return summary, nil
}
