package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/quantcrew/tradingcrew/internal/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	summaryBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(1, 2)
)

// renderRunSummary formats the end-of-run symbol table.
func renderRunSummary(summary *pipeline.RunSummary) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Run " + summary.RunDate))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Output: " + summary.OutputRoot))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-10s %-8s %s", "SYMBOL", "STATUS", "DETAIL")))
	b.WriteString("\n")
	for _, o := range summary.Outcomes {
		status := successStyle.Render("ok")
		detail := ""
		if o.Status == pipeline.StatusFailed {
			status = failStyle.Render("failed")
			if o.Err != nil {
				detail = o.Err.Error()
			}
		}
		b.WriteString(fmt.Sprintf("%-10s %-8s %s\n", o.Symbol, status, detail))
	}

	return summaryBoxStyle.Render(b.String())
}

// renderArtifacts formats one symbol's report file listing.
func renderArtifacts(symbol string, files []string) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(symbol))
	b.WriteString("\n")
	if len(files) == 0 {
		b.WriteString(dimStyle.Render("  (no reports)"))
		b.WriteString("\n")
		return b.String()
	}
	for _, f := range files {
		b.WriteString("  " + f + "\n")
	}
	return b.String()
}
