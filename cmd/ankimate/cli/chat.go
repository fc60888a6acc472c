package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ankimate/ankimate/internal/browse"
	"github.com/ankimate/ankimate/internal/compaction"
	"github.com/ankimate/ankimate/internal/provider"
	"github.com/ankimate/ankimate/internal/store"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Run one natural-language command",
	Long: `Chat parses a free-text instruction into a structured operation and
executes it. Compaction requests stop at the preview stage; pass --yes
to apply them in the same invocation.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runChat(strings.Join(args, " "))
	},
}

func init() {
	RootCmd.AddCommand(chatCmd)
	chatCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Apply compaction without asking")
}

func runChat(message string) {
	a, err := newApp(true)
	if err != nil {
		fail("%v", err)
	}
	defer a.close()

	ctx := context.Background()
	intent, err := provider.ParseIntent(ctx, a.completer, message)
	if err != nil {
		fail("could not understand the command: %v", err)
	}

	switch intent.Action {
	case provider.ActionListDecks:
		decksCmd.Run(decksCmd, nil)

	case provider.ActionListCards:
		cards, err := a.browser.ListCards(ctx, browse.CardsRequest{
			Deck:  intent.Deck,
			Field: intent.Field,
			Limit: intent.Limit,
		})
		if err != nil {
			fail("listing cards failed: %v", err)
		}
		for _, c := range cards {
			fmt.Printf("%-20s %4d chars  %s\n", c.Word, c.Length, c.Text)
		}

	case provider.ActionRollback:
		summary, err := a.coord.Rollback(ctx, intent.Deck, intent.Field)
		if err != nil {
			fail("rollback failed: %v", err)
		}
		fmt.Printf("Restored %d notes in %q.\n", summary.Restored, intent.Deck)
		recordRun(a, &store.Run{
			Op:       store.OpRollback,
			Deck:     intent.Deck,
			Field:    intent.Field,
			Restored: summary.Restored,
		})

	case provider.ActionCompact:
		preview, err := a.coord.Preview(ctx, compaction.PreviewRequest{
			Deck:         intent.Deck,
			Field:        intent.Field,
			PreviewCount: intent.PreviewCount,
			Limit:        intent.Limit,
		})
		if err != nil {
			fail("preview failed: %v", err)
		}
		if preview.Count == 0 {
			fmt.Printf("Nothing to compact in %q.\n", intent.Deck)
			return
		}

		fmt.Printf("Prepared %d rewrites in %q:\n\n", preview.Count, intent.Deck)
		for _, edit := range preview.Diffs {
			fmt.Println(renderEdit(edit))
		}

		apply := assumeYes || intent.Confirm
		if !apply {
			apply = confirm(fmt.Sprintf("Apply all %d rewrites?", preview.Count))
		}
		if !apply {
			fmt.Println("Aborted. The confirmation token was discarded.")
			return
		}

		summary, err := a.coord.Apply(ctx, preview.ConfirmToken)
		if err != nil {
			fail("apply failed: %v", err)
		}
		fmt.Printf("Updated %d notes (%d skipped).\n", summary.Updated, summary.Skipped)
		recordRun(a, &store.Run{
			Op:       store.OpCompact,
			Deck:     summary.Deck,
			Field:    summary.Field,
			Provider: providerName(a.cfg),
			Updated:  summary.Updated,
			Skipped:  summary.Skipped,
		})
	}
}
