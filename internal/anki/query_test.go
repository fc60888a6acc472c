package anki

import (
	"errors"
	"testing"
)

func TestCandidateQuery(t *testing.T) {
	t.Run("Full", func(t *testing.T) {
		q, err := CandidateQuery("News B2", "Example", "compact_examples")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `deck:"News B2" Example:* -tag:compact_examples`
		if q != want {
			t.Errorf("expected %q, got %q", want, q)
		}
	})

	t.Run("No Exclude Tag", func(t *testing.T) {
		q, err := CandidateQuery("Core", "Front")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `deck:"Core" Front:*`
		if q != want {
			t.Errorf("expected %q, got %q", want, q)
		}
	})

	t.Run("Protected Tags", func(t *testing.T) {
		q, err := CandidateQuery("Core", "Example", "compact_examples", "leech")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `deck:"Core" Example:* -tag:compact_examples -tag:leech`
		if q != want {
			t.Errorf("expected %q, got %q", want, q)
		}
	})

	t.Run("Empty Deck", func(t *testing.T) {
		if _, err := CandidateQuery("  ", "Example", ""); !errors.Is(err, ErrEmptyDeck) {
			t.Errorf("expected ErrEmptyDeck, got %v", err)
		}
	})
}

func TestRollbackQuery(t *testing.T) {
	q, err := RollbackQuery("News B2", "Example", "compact_examples")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `deck:"News B2" tag:compact_examples Example_Original:*`
	if q != want {
		t.Errorf("expected %q, got %q", want, q)
	}

	if _, err := RollbackQuery("", "Example", "compact_examples"); !errors.Is(err, ErrEmptyDeck) {
		t.Errorf("expected ErrEmptyDeck, got %v", err)
	}
}

func TestBackupFieldName(t *testing.T) {
	// The _Original suffix is shared with existing stored state.
	if got := BackupFieldName("Example"); got != "Example_Original" {
		t.Errorf("expected Example_Original, got %q", got)
	}
	if got := BackupFieldName("Back"); got != "Back_Original" {
		t.Errorf("expected Back_Original, got %q", got)
	}
}
