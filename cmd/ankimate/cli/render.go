package cli

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/ankimate/ankimate/internal/compaction"
)

var (
	wordStyle = lipgloss.NewStyle().Bold(true)
	delStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Strikethrough(true)
	addStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

// renderEdit formats one proposed rewrite as an inline diff: deletions
// struck through in red, insertions in green.
func renderEdit(edit compaction.NoteEdit) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(edit.Old, edit.New, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	b.WriteString(wordStyle.Render(edit.Word))
	b.WriteString(dimStyle.Render("  (note " + strconv.FormatInt(edit.NoteID, 10) + ")"))
	b.WriteString("\n  ")
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString(delStyle.Render(d.Text))
		case diffmatchpatch.DiffInsert:
			b.WriteString(addStyle.Render(d.Text))
		default:
			b.WriteString(d.Text)
		}
	}
	b.WriteString("\n")
	return b.String()
}
