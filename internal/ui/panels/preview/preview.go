package preview

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/tidwall/pretty"

	"github.com/sadopc/curlcap/internal/archive"
	"github.com/sadopc/curlcap/internal/capture"
	"github.com/sadopc/curlcap/internal/ui/theme"
)

// Model shows the curl command and response of one record.
type Model struct {
	viewport viewport.Model
	record   capture.Record
	hasRec   bool

	width   int
	height  int
	focused bool
	wrap    bool

	theme  theme.Theme
	styles theme.Styles
}

// New creates a new preview panel.
func New(t theme.Theme, s theme.Styles) Model {
	return Model{
		viewport: viewport.New(0, 0),
		wrap:     true,
		theme:    t,
		styles:   s,
	}
}

// SetRecord shows rec. The scroll position is kept when rec is an update
// of the record already shown.
func (m *Model) SetRecord(rec capture.Record) {
	if m.hasRec && Same(m.record, rec) {
		return
	}
	sameID := m.hasRec && m.record.ID == rec.ID && m.record.Seq == rec.Seq
	m.record = rec
	m.hasRec = true
	m.render()
	if !sameID {
		m.viewport.GotoTop()
	}
}

// Clear empties the panel.
func (m *Model) Clear() {
	m.record = capture.Record{}
	m.hasRec = false
	m.viewport.SetContent("")
	m.viewport.GotoTop()
}

// Record returns the record on display.
func (m Model) Record() (capture.Record, bool) {
	return m.record, m.hasRec
}

// SetSize sets the panel dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = max(1, w-2)
	m.viewport.Height = max(1, h-3)
	if m.hasRec {
		m.render()
	}
}

// SetFocused sets whether this panel has focus.
func (m *Model) SetFocused(f bool) {
	m.focused = f
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "w":
			m.wrap = !m.wrap
			m.render()
			return m, nil
		case "g", "home":
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	border := m.styles.UnfocusedBorder
	if m.focused {
		border = m.styles.FocusedBorder
	}
	innerW := max(1, m.width-2)
	innerH := max(1, m.height-2)

	title := m.styles.Title.Render("Preview")
	var body string
	if !m.hasRec {
		body = m.styles.Muted.Render("Select a request")
	} else {
		body = m.viewport.View()
	}

	return border.
		Width(innerW).
		Height(innerH).
		Render(title + "\n" + body)
}

func (m *Model) render() {
	rec := m.record
	width := m.viewport.Width

	var b strings.Builder
	b.WriteString(m.styles.Key.Render("Command"))
	b.WriteString("\n")
	b.WriteString(m.wrapText(sanitize(rec.Command), width))
	b.WriteString("\n\n")

	status := lipgloss.NewStyle().
		Foreground(m.theme.StatusColor(rec.Status)).
		Bold(true).
		Render(rec.Status.String())
	meta := []string{status}
	if mime := rec.Mime(); mime != "" {
		meta = append(meta, m.styles.Muted.Render(sanitize(mime)))
	}
	if rec.HasBody() {
		meta = append(meta, m.styles.Muted.Render(humanize.IBytes(uint64(len(rec.Body())))))
	}
	b.WriteString(m.styles.Key.Render("Response") + "  " + strings.Join(meta, " │ "))
	b.WriteString("\n")

	if rec.ErrorText != nil {
		b.WriteString(m.styles.Error.Render(sanitize(*rec.ErrorText)))
		b.WriteString("\n")
	}

	switch {
	case rec.Status.IsFailed() && rec.ErrorText != nil && rec.Body() == *rec.ErrorText:
		// Already shown as the error line.
	case !rec.HasBody():
		b.WriteString(m.styles.Muted.Render("No body captured"))
	case rec.Body() == "":
		b.WriteString(m.styles.Muted.Render("Empty body"))
	case isBinary(rec.Body()):
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("binary body, %d bytes", len(rec.Body()))))
	default:
		b.WriteString("\n")
		b.WriteString(m.renderBody(rec.Body(), rec.Mime(), width))
	}

	m.viewport.SetContent(b.String())
}

func (m Model) renderBody(body, mime string, width int) string {
	lexerName := DetectLexer(mime)
	src := sanitize(body)
	if archive.IsJSON(mime) {
		src = string(pretty.Pretty([]byte(src)))
	}
	return m.wrapText(highlight(src, lexerName), width)
}

func (m Model) wrapText(s string, width int) string {
	if !m.wrap || width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

// Same reports whether two snapshots of a record would render the same.
func Same(a, b capture.Record) bool {
	return a.ID == b.ID &&
		a.Seq == b.Seq &&
		a.Status.Equal(b.Status) &&
		eqPtr(a.MimeType, b.MimeType) &&
		eqPtr(a.ResponseBody, b.ResponseBody) &&
		eqPtr(a.ErrorText, b.ErrorText)
}

func eqPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// DetectLexer maps a mime type to a chroma lexer name.
func DetectLexer(mime string) string {
	mt := strings.ToLower(mime)
	switch {
	case archive.IsJSON(mt):
		return "json"
	case strings.Contains(mt, "html"):
		return "html"
	case strings.Contains(mt, "xml"):
		return "xml"
	case strings.Contains(mt, "css"):
		return "css"
	case strings.Contains(mt, "javascript") || strings.Contains(mt, "ecmascript"):
		return "javascript"
	default:
		return "text"
	}
}

// highlight applies chroma syntax highlighting to source code.
func highlight(source, lexerName string) string {
	if lexerName == "text" {
		return source
	}

	lexer := lexers.Get(lexerName)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromastyles.Get("monokai")
	if style == nil {
		style = chromastyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return source
	}
	return buf.String()
}
