package list

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/sahilm/fuzzy"

	"github.com/sadopc/curlcap/internal/capture"
	curlimport "github.com/sadopc/curlcap/internal/import/curl"
	"github.com/sadopc/curlcap/internal/ui/msgs"
	"github.com/sadopc/curlcap/internal/ui/theme"
)

// Model is the panel listing captured records in arrival order.
type Model struct {
	records  []capture.Record
	filtered []int // indices into records that match the filter
	cursor   int   // index into filtered

	// methods caches the method parsed from each record's command, by Seq.
	methods map[uint64]string

	width   int
	height  int
	focused bool

	filtering   bool
	filterInput textinput.Model

	theme  theme.Theme
	styles theme.Styles
}

// New creates a new list model.
func New(t theme.Theme, s theme.Styles) Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.CharLimit = 128

	return Model{
		methods:     make(map[uint64]string),
		filterInput: ti,
		theme:       t,
		styles:      s,
	}
}

// SetRecords replaces the displayed records, keeping the cursor on the
// same record when it is still present.
func (m *Model) SetRecords(records []capture.Record) {
	selected, hadSelection := m.Selected()

	m.records = records
	m.applyFilter()

	if hadSelection {
		for i, idx := range m.filtered {
			if m.records[idx].ID == selected.ID {
				m.cursor = i
				return
			}
		}
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
}

// Selected returns the record under the cursor.
func (m Model) Selected() (capture.Record, bool) {
	if len(m.filtered) == 0 || m.cursor >= len(m.filtered) {
		return capture.Record{}, false
	}
	return m.records[m.filtered[m.cursor]], true
}

// Filtering reports whether the filter input has focus.
func (m Model) Filtering() bool {
	return m.filtering
}

// Query returns the current filter text.
func (m Model) Query() string {
	return m.filterInput.Value()
}

// Visible returns the number of records passing the filter.
func (m Model) Visible() int {
	return len(m.filtered)
}

// SetSize sets the panel dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.filterInput.Width = max(1, w-6)
}

// SetFocused sets whether this panel has focus.
func (m *Model) SetFocused(f bool) {
	m.focused = f
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.filtering {
		return m.updateFilter(msg)
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	prev := m.cursor

	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = max(0, len(m.filtered)-1)
	case "/":
		m.filtering = true
		m.filterInput.Focus()
		return m, textinput.Blink
	case "esc":
		if m.filterInput.Value() != "" {
			m.filterInput.SetValue("")
			m.applyFilter()
		}
	}

	if m.cursor != prev {
		return m, m.selectCmd()
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter", "esc":
			m.filtering = false
			m.filterInput.Blur()
			if key.String() == "esc" {
				m.filterInput.SetValue("")
				m.applyFilter()
			}
			return m, m.selectCmd()
		}
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.applyFilter()
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
	return m, cmd
}

func (m Model) selectCmd() tea.Cmd {
	rec, ok := m.Selected()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		return msgs.RecordSelectedMsg{ID: rec.ID}
	}
}

// applyFilter fuzzy-matches the query against each row's text. Matches
// keep arrival order rather than score order.
func (m *Model) applyFilter() {
	query := strings.TrimSpace(m.filterInput.Value())
	m.filtered = make([]int, 0, len(m.records))

	if query == "" {
		for i := range m.records {
			m.filtered = append(m.filtered, i)
		}
		return
	}

	sources := make([]string, len(m.records))
	for i, rec := range m.records {
		sources[i] = m.rowText(rec)
	}
	for _, match := range fuzzy.Find(query, sources) {
		m.filtered = append(m.filtered, match.Index)
	}
	sort.Ints(m.filtered)
}

// Method returns the HTTP method encoded in a record's command.
func (m *Model) Method(rec capture.Record) string {
	if method, ok := m.methods[rec.Seq]; ok {
		return method
	}
	method := "GET"
	if req, err := curlimport.ParseCurl(rec.Command); err == nil {
		method = req.Method
	}
	m.methods[rec.Seq] = method
	return method
}

// rowText is the plain "status - METHOD url" line for a record.
func (m *Model) rowText(rec capture.Record) string {
	return rec.Status.String() + " - " + m.Method(rec) + " " + rec.URL
}

// View implements tea.Model.
func (m Model) View() string {
	border := m.styles.UnfocusedBorder
	if m.focused {
		border = m.styles.FocusedBorder
	}

	innerW := max(1, m.width-2)
	innerH := max(1, m.height-2)

	showFilter := m.filtering || m.filterInput.Value() != ""
	listH := innerH
	if showFilter {
		listH--
	}
	bodyH := max(0, listH-1) // below the title

	lines := []string{m.styles.Title.Render("Requests")}

	if len(m.filtered) == 0 {
		empty := "Waiting for requests..."
		if len(m.records) > 0 {
			empty = "No matches"
		}
		lines = append(lines, m.styles.Muted.Render("  "+empty))
	} else {
		start := 0
		if m.cursor >= bodyH {
			start = m.cursor - bodyH + 1
		}
		end := min(len(m.filtered), start+bodyH)
		for vi := start; vi < end; vi++ {
			lines = append(lines, m.renderRow(m.records[m.filtered[vi]], vi == m.cursor, innerW))
		}
	}

	content := fitHeight(strings.Join(lines, "\n"), listH)
	if showFilter {
		content += "\n" + m.filterInput.View()
	}

	return border.
		Width(innerW).
		Height(innerH).
		Render(content)
}

func (m Model) renderRow(rec capture.Record, isCursor bool, maxWidth int) string {
	method := m.Method(rec)
	if isCursor {
		plain := stripForWidth(rec.Status.String()+" - "+padMethod(method)+" "+rec.URL, maxWidth)
		return m.styles.Cursor.Width(maxWidth).Render(plain)
	}

	status := lipgloss.NewStyle().
		Foreground(m.theme.StatusColor(rec.Status)).
		Bold(true).
		Render(rec.Status.String())
	badge := m.styles.MethodStyle(method).Render(padMethod(method))
	prefix := status + " - " + badge + " "

	url := stripForWidth(rec.URL, max(1, maxWidth-lipgloss.Width(prefix)))
	return prefix + m.styles.Normal.Render(url)
}

// padMethod pads an HTTP method to 6 chars.
func padMethod(method string) string {
	if len(method) >= 6 {
		return method[:6]
	}
	return method + strings.Repeat(" ", 6-len(method))
}

// fitHeight truncates or pads content to the given height.
func fitHeight(content string, h int) string {
	lines := strings.Split(content, "\n")
	if len(lines) > h {
		lines = lines[:max(0, h)]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// stripForWidth truncates s to at most w cells.
func stripForWidth(s string, w int) string {
	return ansi.Truncate(s, w, "")
}
