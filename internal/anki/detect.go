package anki

import (
	"context"
	"fmt"
)

const detectSampleSize = 5

// DetectContentField inspects a handful of notes from a deck and picks
// the field most likely to hold example content. Preferred well-known
// field names win outright; otherwise the field with the highest average
// content length is chosen. Returns "" when the deck has no usable field.
func DetectContentField(ctx context.Context, s Store, deck string) (string, error) {
	ids, err := s.FindNotes(ctx, fmt.Sprintf("deck:%q", deck))
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", nil
	}
	if len(ids) > detectSampleSize {
		ids = ids[:detectSampleSize]
	}
	notes, err := s.NotesInfo(ctx, ids)
	if err != nil {
		return "", err
	}

	type stat struct {
		chars    int
		nonEmpty int
	}
	stats := make(map[string]*stat)
	for _, note := range notes {
		for name := range note.Fields {
			v := note.Field(name)
			st := stats[name]
			if st == nil {
				st = &stat{}
				stats[name] = st
			}
			st.chars += len(v)
			if v != "" {
				st.nonEmpty++
			}
		}
	}

	for _, name := range contentFields {
		if st, ok := stats[name]; ok && st.nonEmpty > 0 {
			return name, nil
		}
	}

	best := ""
	bestAvg := 0
	for name, st := range stats {
		if st.nonEmpty == 0 {
			continue
		}
		avg := st.chars / st.nonEmpty
		if avg > bestAvg || (avg == bestAvg && best == "") {
			best = name
			bestAvg = avg
		}
	}
	return best, nil
}
