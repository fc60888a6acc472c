// Package browse provides read-only views over the Anki collection:
// deck summaries and card listings ordered by content length. Nothing
// in this package mutates notes.
package browse

import (
	"context"
	"sort"
	"strings"

	"github.com/ankimate/ankimate/internal/anki"
	"github.com/ankimate/ankimate/internal/compaction"
)

// maxListNotes bounds how many notes a single listing will fetch.
const maxListNotes = 500

// Source is the slice of the Anki client the browser needs.
type Source interface {
	DeckNames(ctx context.Context) ([]string, error)
	FindNotes(ctx context.Context, query string) ([]int64, error)
	NotesInfo(ctx context.Context, ids []int64) ([]anki.Note, error)
}

// DeckInfo summarizes one deck.
type DeckInfo struct {
	Name      string `json:"name"`
	Notes     int    `json:"notes"`
	Compacted int    `json:"compacted"`
}

// Card is one note's view in a listing.
type Card struct {
	NoteID int64  `json:"note_id"`
	Word   string `json:"word"`
	Text   string `json:"text"`
	Length int    `json:"length"`
}

// Browser answers listing requests against a live collection.
type Browser struct {
	src Source
}

func New(src Source) *Browser {
	return &Browser{src: src}
}

// ListDecks returns every deck with its note count and how many of its
// notes currently hold a compacted example.
func (b *Browser) ListDecks(ctx context.Context) ([]DeckInfo, error) {
	names, err := b.src.DeckNames(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	decks := make([]DeckInfo, 0, len(names))
	for _, name := range names {
		query, err := anki.DeckQuery(name)
		if err != nil {
			continue
		}
		ids, err := b.src.FindNotes(ctx, query)
		if err != nil {
			return nil, err
		}

		tagged, err := anki.DeckQuery(name, compaction.MarkerTag)
		if err != nil {
			continue
		}
		compacted, err := b.src.FindNotes(ctx, tagged)
		if err != nil {
			return nil, err
		}

		decks = append(decks, DeckInfo{
			Name:      name,
			Notes:     len(ids),
			Compacted: len(compacted),
		})
	}
	return decks, nil
}

// CardsRequest selects which cards to list. Order is "longest" or
// "shortest"; longest is the default because oversized examples are
// what compaction goes looking for.
type CardsRequest struct {
	Deck  string
	Field string
	Limit int
	Order string
}

// ListCards returns up to Limit cards from a deck, ordered by the
// length of the requested field.
func (b *Browser) ListCards(ctx context.Context, req CardsRequest) ([]Card, error) {
	if req.Field == "" {
		req.Field = compaction.DefaultField
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}

	query, err := anki.DeckQuery(req.Deck)
	if err != nil {
		return nil, err
	}
	ids, err := b.src.FindNotes(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(ids) > maxListNotes {
		ids = ids[:maxListNotes]
	}
	if len(ids) == 0 {
		return nil, nil
	}

	notes, err := b.src.NotesInfo(ctx, ids)
	if err != nil {
		return nil, err
	}

	cards := make([]Card, 0, len(notes))
	for _, note := range notes {
		text := note.Field(req.Field)
		if text == "" {
			continue
		}
		cards = append(cards, Card{
			NoteID: note.NoteID,
			Word:   note.Headword(),
			Text:   text,
			Length: len([]rune(text)),
		})
	}

	shortest := strings.EqualFold(req.Order, "shortest")
	sort.SliceStable(cards, func(i, j int) bool {
		if shortest {
			return cards[i].Length < cards[j].Length
		}
		return cards[i].Length > cards[j].Length
	})

	if len(cards) > req.Limit {
		cards = cards[:req.Limit]
	}
	return cards, nil
}
