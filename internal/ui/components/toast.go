package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/curlcap/internal/ui/theme"
)

const toastDuration = 3 * time.Second

// toastDismissMsg dismisses the toast it was scheduled for.
type toastDismissMsg struct {
	id int
}

// Toast is an auto-dismiss notification shown after exports and copies.
type Toast struct {
	Visible bool
	text    string
	isError bool
	id      int
	theme   theme.Theme
}

// NewToast creates a new toast component.
func NewToast(t theme.Theme) Toast {
	return Toast{theme: t}
}

// Show displays a message and returns a Cmd that dismisses it. A newer
// toast is not hidden by an older one's timer.
func (m *Toast) Show(text string, isError bool) tea.Cmd {
	m.id++
	m.Visible = true
	m.text = text
	m.isError = isError
	id := m.id
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastDismissMsg{id: id}
	})
}

// Text returns the message currently shown.
func (m Toast) Text() string {
	if !m.Visible {
		return ""
	}
	return m.text
}

// Update implements tea.Model.
func (m Toast) Update(msg tea.Msg) (Toast, tea.Cmd) {
	if msg, ok := msg.(toastDismissMsg); ok && msg.id == m.id {
		m.Visible = false
		m.text = ""
	}
	return m, nil
}

// View renders the toast notification.
func (m Toast) View() string {
	if !m.Visible || m.text == "" {
		return ""
	}

	fg := m.theme.Green
	if m.isError {
		fg = m.theme.Red
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Background(m.theme.Surface).
		Bold(true).
		Padding(0, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(fg).
		Render(m.text)
}
