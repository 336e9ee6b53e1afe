// Package cli — styles.go defines the lipgloss styles used by the text
// output of run and ci, and the shared summary-table renderer.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmr-tortoise/matrixctl/internal/model"
)

// Status styles. Colors follow the conventional traffic-light mapping;
// skipped runs are dimmed since they carry no signal.
var (
	stylePassed  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	styleFailed  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	styleErrored = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	styleSkipped = lipgloss.NewStyle().Faint(true)
	styleHeader  = lipgloss.NewStyle().Bold(true).Underline(true)
)

// renderStatus applies the status color to the status word.
func renderStatus(status model.EnvStatus) string {
	switch status {
	case model.StatusPassed:
		return stylePassed.Render(status.String())
	case model.StatusFailed:
		return styleFailed.Render(status.String())
	case model.StatusError:
		return styleErrored.Render(status.String())
	case model.StatusSkipped:
		return styleSkipped.Render(status.String())
	default:
		return status.String()
	}
}

// renderSummaryTable renders per-environment outcomes as an aligned text
// table:
//
//	ENV     STATUS  DURATION  DETAIL
//	py3     passed  42.1s
//	cover   failed  51.3s     coverage 79.10% below threshold 82.00%
func renderSummaryTable(summary *model.RunSummary) string {
	var b strings.Builder

	b.WriteString(styleHeader.Render(fmt.Sprintf("%-16s %-8s %-10s %s", "ENV", "STATUS", "DURATION", "DETAIL")))
	b.WriteString("\n")

	for _, result := range summary.Results {
		detail := result.Reason
		if detail == "" && result.CoverageChecked {
			detail = fmt.Sprintf("coverage %.2f%%", result.CoveragePercent)
		}

		// The colored status word carries invisible escape sequences, so
		// the column is padded on the plain string before styling.
		plain := fmt.Sprintf("%-8s", result.Status.String())
		styled := strings.Replace(plain, result.Status.String(), renderStatus(result.Status), 1)

		b.WriteString(fmt.Sprintf("%-16s %s %-10s %s\n",
			result.Name, styled, formatDuration(result.Duration), detail))
	}

	return b.String()
}

// formatDuration renders a duration with one decimal of seconds, which
// is the useful precision for test runs ("42.1s", "3m12.0s").
func formatDuration(d time.Duration) string {
	if d >= time.Minute {
		return fmt.Sprintf("%dm%04.1fs", int(d.Minutes()), d.Seconds()-60*float64(int(d.Minutes())))
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
