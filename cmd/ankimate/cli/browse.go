package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ankimate/ankimate/internal/browse"
)

var (
	cardsLimit int
	cardsOrder string
	histLimit  int
)

var decksCmd = &cobra.Command{
	Use:   "decks",
	Short: "List decks with note and compacted counts",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(false)
		if err != nil {
			fail("%v", err)
		}
		defer a.close()

		decks, err := a.browser.ListDecks(context.Background())
		if err != nil {
			fail("listing decks failed: %v", err)
		}
		if len(decks) == 0 {
			fmt.Println("No decks found. Is Anki running with AnkiConnect?")
			return
		}
		for _, d := range decks {
			fmt.Printf("%-40s %5d notes  %4d compacted\n", d.Name, d.Notes, d.Compacted)
		}
	},
}

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "List cards in a deck ordered by example length",
	Run: func(cmd *cobra.Command, args []string) {
		if deckFlag == "" {
			fail("--deck is required")
		}
		a, err := newApp(false)
		if err != nil {
			fail("%v", err)
		}
		defer a.close()

		cards, err := a.browser.ListCards(context.Background(), browse.CardsRequest{
			Deck:  deckFlag,
			Field: fieldFlag,
			Limit: cardsLimit,
			Order: cardsOrder,
		})
		if err != nil {
			fail("listing cards failed: %v", err)
		}
		for _, c := range cards {
			fmt.Printf("%-20s %4d chars  %s\n", c.Word, c.Length, c.Text)
		}
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent compact and rollback runs",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(false)
		if err != nil {
			fail("%v", err)
		}
		defer a.close()

		runs, err := a.store.ListRuns(histLimit)
		if err != nil {
			fail("reading history failed: %v", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return
		}
		for _, r := range runs {
			when := r.CreatedAt.Local().Format("2006-01-02 15:04")
			switch r.Op {
			case "rollback":
				fmt.Printf("%s  %-8s %-30s restored %d\n", when, r.Op, r.Deck, r.Restored)
			default:
				fmt.Printf("%s  %-8s %-30s updated %d, skipped %d\n", when, r.Op, r.Deck, r.Updated, r.Skipped)
			}
		}
	},
}

func init() {
	RootCmd.AddCommand(decksCmd)
	RootCmd.AddCommand(cardsCmd)
	RootCmd.AddCommand(historyCmd)

	cardsCmd.Flags().StringVarP(&deckFlag, "deck", "d", "", "Deck to list")
	cardsCmd.Flags().StringVarP(&fieldFlag, "field", "f", "", "Note field (default Example)")
	cardsCmd.Flags().IntVarP(&cardsLimit, "limit", "l", 10, "Number of cards to show")
	cardsCmd.Flags().StringVar(&cardsOrder, "order", "longest", "Ordering: longest or shortest")
	historyCmd.Flags().IntVarP(&histLimit, "limit", "l", 20, "Number of runs to show")
}
