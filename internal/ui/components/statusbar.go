package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/curlcap/internal/capture"
	"github.com/sadopc/curlcap/internal/ui/theme"
)

// Counts summarizes the records in the ledger.
type Counts struct {
	Total   int
	Pending int
	Failed  int
}

// CountRecords tallies records by status.
func CountRecords(records []capture.Record) Counts {
	c := Counts{Total: len(records)}
	for _, r := range records {
		switch {
		case r.Status.IsPending():
			c.Pending++
		case r.Status.IsFailed():
			c.Failed++
		}
	}
	return c
}

// StatusBar is a full-width bottom status bar.
type StatusBar struct {
	target string
	counts Counts
	filter string
	width  int
	theme  theme.Theme
}

// NewStatusBar creates a new status bar.
func NewStatusBar(t theme.Theme) StatusBar {
	return StatusBar{theme: t}
}

// SetTarget sets the label of the captured tab.
func (m *StatusBar) SetTarget(label string) { m.target = label }

// SetCounts sets the record tallies.
func (m *StatusBar) SetCounts(c Counts) { m.counts = c }

// SetFilter sets the active filter query shown on the bar.
func (m *StatusBar) SetFilter(q string) { m.filter = q }

// SetWidth sets the available width.
func (m *StatusBar) SetWidth(w int) { m.width = w }

// View renders the status bar.
func (m StatusBar) View() string {
	bg := m.theme.Surface
	style := func(fg lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(fg).Background(bg)
	}

	var left []string
	if m.target != "" {
		left = append(left, style(m.theme.Teal).Bold(true).Render(m.target))
	}
	left = append(left, style(m.theme.Text).Render(fmt.Sprintf("%d requests", m.counts.Total)))
	if m.counts.Pending > 0 {
		left = append(left, style(m.theme.Subtext).Render(fmt.Sprintf("%d pending", m.counts.Pending)))
	}
	if m.counts.Failed > 0 {
		left = append(left, style(m.theme.Red).Render(fmt.Sprintf("%d failed", m.counts.Failed)))
	}
	if m.filter != "" {
		left = append(left, style(m.theme.Mauve).Render("/"+m.filter))
	}
	leftStr := strings.Join(left, style(m.theme.Muted).Render(" │ "))

	hint := style(m.theme.Muted).Render("s:save  y:copy  H:har  c:clear  /:filter  q:quit")

	gap := m.width - lipgloss.Width(leftStr) - lipgloss.Width(hint) - 2
	if gap < 1 {
		gap = 1
	}
	line := " " + leftStr + style(m.theme.Text).Render(strings.Repeat(" ", gap)) + hint

	return lipgloss.NewStyle().
		Background(bg).
		Foreground(m.theme.Text).
		Width(m.width).
		Render(line)
}
