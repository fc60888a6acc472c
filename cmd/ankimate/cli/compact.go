package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ankimate/ankimate/internal/anki"
	"github.com/ankimate/ankimate/internal/compaction"
	"github.com/ankimate/ankimate/internal/store"
)

var (
	deckFlag    string
	fieldFlag   string
	limitFlag   int
	previewFlag int
	dryRunFlag  bool
	assumeYes   bool
	detectField bool
)

var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Rewrite long example sentences in a deck",
	Long: `Compact previews LLM rewrites of the example field for every eligible
note in a deck, then applies them after confirmation. Originals are kept
in a sibling backup field so the operation can be rolled back.`,
	Run: func(cmd *cobra.Command, args []string) {
		if deckFlag == "" {
			fail("--deck is required")
		}
		runCompact()
	},
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Restore compacted examples from their backup field",
	Run: func(cmd *cobra.Command, args []string) {
		if deckFlag == "" {
			fail("--deck is required")
		}
		runRollback()
	},
}

func init() {
	RootCmd.AddCommand(compactCmd)
	RootCmd.AddCommand(rollbackCmd)

	for _, cmd := range []*cobra.Command{compactCmd, rollbackCmd} {
		cmd.Flags().StringVarP(&deckFlag, "deck", "d", "", "Deck to operate on")
		cmd.Flags().StringVarP(&fieldFlag, "field", "f", "", "Note field (default Example)")
	}
	compactCmd.Flags().IntVarP(&limitFlag, "limit", "l", 0, "Maximum notes to rewrite (default 30)")
	compactCmd.Flags().IntVar(&previewFlag, "preview", 0, "Diffs to show before confirming (default 5)")
	compactCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Preview only, never mint a confirmation token")
	compactCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Apply without asking")
	compactCmd.Flags().BoolVar(&detectField, "detect-field", false, "Pick the content field automatically")
}

func runCompact() {
	a, err := newApp(true)
	if err != nil {
		fail("%v", err)
	}
	defer a.close()

	ctx := context.Background()
	field := fieldFlag
	if detectField && field == "" {
		detected, err := anki.DetectContentField(ctx, a.client, deckFlag)
		if err != nil {
			fail("field detection failed: %v", err)
		}
		if detected == "" {
			fail("could not detect a content field in %q", deckFlag)
		}
		field = detected
		fmt.Printf("Detected content field: %s\n", field)
	}

	preview, err := a.coord.Preview(ctx, compaction.PreviewRequest{
		Deck:         deckFlag,
		Field:        field,
		PreviewCount: previewFlag,
		Limit:        limitFlag,
		DryRun:       dryRunFlag,
	})
	if err != nil {
		fail("preview failed: %v", err)
	}

	if preview.Count == 0 {
		fmt.Println("Nothing to compact.")
		return
	}

	fmt.Printf("Prepared %d rewrites in %q:\n\n", preview.Count, deckFlag)
	for _, edit := range preview.Diffs {
		fmt.Println(renderEdit(edit))
	}
	if preview.Count > len(preview.Diffs) {
		fmt.Printf("...and %d more.\n", preview.Count-len(preview.Diffs))
	}

	if dryRunFlag {
		fmt.Println("\nDry run, nothing applied.")
		return
	}

	if !assumeYes && !confirm(fmt.Sprintf("Apply all %d rewrites?", preview.Count)) {
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

func runRollback() {
	a, err := newApp(false)
	if err != nil {
		fail("%v", err)
	}
	defer a.close()

	// Rollback needs no LLM; build the coordinator without one.
	a.coord = newRollbackCoordinator(a)

	summary, err := a.coord.Rollback(context.Background(), deckFlag, fieldFlag)
	if err != nil {
		fail("rollback failed: %v", err)
	}

	fmt.Printf("Restored %d notes.\n", summary.Restored)
	field := fieldFlag
	if field == "" {
		field = compaction.DefaultField
	}
	recordRun(a, &store.Run{
		Op:       store.OpRollback,
		Deck:     deckFlag,
		Field:    field,
		Restored: summary.Restored,
	})
}

func recordRun(a *app, run *store.Run) {
	if err := a.store.RecordRun(run); err != nil {
		a.obs.Component("cli").Warn().Err(err).Msg("failed to record run history")
	}
}

func confirm(prompt string) bool {
	fmt.Printf("\n%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
