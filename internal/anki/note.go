package anki

import "strings"

// headwordFields is the priority order used to pick the vocabulary item
// a note is built around. First non-empty field wins.
var headwordFields = []string{"Word", "Lemma", "Target", "Headword"}

// contentFields is the priority order used when auto-detecting which
// field of a deck holds the example content.
var contentFields = []string{"Example", "Back", "Front", "Definition", "Meaning", "Translation"}

// FieldValue is one named field of a note as AnkiConnect reports it.
type FieldValue struct {
	Value string `json:"value"`
	Order int    `json:"order"`
}

// Note is a full note record from notesInfo.
type Note struct {
	NoteID    int64                 `json:"noteId"`
	ModelName string                `json:"modelName"`
	Tags      []string              `json:"tags"`
	Fields    map[string]FieldValue `json:"fields"`
}

// Field returns the trimmed value of a named field, or "" when absent.
func (n Note) Field(name string) string {
	return strings.TrimSpace(n.Fields[name].Value)
}

// HasTag reports whether the note carries the given tag.
func (n Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Headword extracts the note's target vocabulary item, trying the
// candidate fields in priority order. Returns "" when none is set.
func (n Note) Headword() string {
	for _, name := range headwordFields {
		if v := n.Field(name); v != "" {
			return v
		}
	}
	return ""
}
