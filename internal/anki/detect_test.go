package anki

import (
	"context"
	"testing"
)

// memStore is a minimal in-memory Store for detection tests.
type memStore struct {
	ids   []int64
	notes []Note
}

func (m *memStore) FindNotes(ctx context.Context, query string) ([]int64, error) {
	return m.ids, nil
}

func (m *memStore) NotesInfo(ctx context.Context, ids []int64) ([]Note, error) {
	return m.notes, nil
}

func (m *memStore) UpdateNoteFields(ctx context.Context, id int64, fields map[string]string) error {
	return nil
}

func (m *memStore) AddTags(ctx context.Context, ids []int64, tag string) error { return nil }

func (m *memStore) RemoveTags(ctx context.Context, ids []int64, tag string) error { return nil }

func TestDetectContentField(t *testing.T) {
	t.Run("Preferred Field Wins", func(t *testing.T) {
		s := &memStore{
			ids: []int64{1},
			notes: []Note{
				{Fields: map[string]FieldValue{
					"Front":   {Value: "word"},
					"Example": {Value: "A sentence with the word."},
				}},
			},
		}
		got, err := DetectContentField(context.Background(), s, "Deck")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "Example" {
			t.Errorf("expected Example, got %q", got)
		}
	})

	t.Run("Longest Average Fallback", func(t *testing.T) {
		s := &memStore{
			ids: []int64{1, 2},
			notes: []Note{
				{Fields: map[string]FieldValue{
					"Satz":  {Value: "Ein ziemlich langer Beispielsatz mit vielen Worten."},
					"Kurz":  {Value: "kurz"},
					"Empty": {Value: ""},
				}},
				{Fields: map[string]FieldValue{
					"Satz": {Value: "Noch ein langer Satz."},
					"Kurz": {Value: "k"},
				}},
			},
		}
		got, err := DetectContentField(context.Background(), s, "Deck")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "Satz" {
			t.Errorf("expected Satz, got %q", got)
		}
	})

	t.Run("Empty Deck", func(t *testing.T) {
		s := &memStore{}
		got, err := DetectContentField(context.Background(), s, "Deck")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "" {
			t.Errorf("expected empty result, got %q", got)
		}
	})
}
