package anki

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyDeck is returned when a query is requested for a blank deck name.
var ErrEmptyDeck = errors.New("anki: deck name cannot be empty")

// CandidateQuery builds the search for notes eligible for compaction:
// scoped to a deck, with content in the target field, and without any of
// the excluded tags (the compaction marker, plus protected tags).
func CandidateQuery(deck, field string, excludeTags ...string) (string, error) {
	if strings.TrimSpace(deck) == "" {
		return "", ErrEmptyDeck
	}
	parts := []string{
		fmt.Sprintf("deck:%q", deck),
		fmt.Sprintf("%s:*", field),
	}
	for _, tag := range excludeTags {
		if tag != "" {
			parts = append(parts, "-tag:"+tag)
		}
	}
	return strings.Join(parts, " "), nil
}

// DeckQuery builds the search matching every note in a deck, optionally
// narrowed to notes carrying a tag.
func DeckQuery(deck string, tags ...string) (string, error) {
	if strings.TrimSpace(deck) == "" {
		return "", ErrEmptyDeck
	}
	parts := []string{fmt.Sprintf("deck:%q", deck)}
	for _, tag := range tags {
		if tag != "" {
			parts = append(parts, "tag:"+tag)
		}
	}
	return strings.Join(parts, " "), nil
}

// RollbackQuery builds the search for notes that can be rolled back:
// tagged as compacted and still holding a non-empty backup field.
func RollbackQuery(deck, field, markerTag string) (string, error) {
	if strings.TrimSpace(deck) == "" {
		return "", ErrEmptyDeck
	}
	backup := BackupFieldName(field)
	return fmt.Sprintf("deck:%q tag:%s %s:*", deck, markerTag, backup), nil
}

// BackupFieldName derives the sibling field that holds the
// pre-compaction value. The _Original suffix is a wire convention shared
// with previously stored state and must not change.
func BackupFieldName(field string) string {
	return field + "_Original"
}
