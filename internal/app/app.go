package app

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/sadopc/curlcap/internal/archive"
	"github.com/sadopc/curlcap/internal/capture"
	"github.com/sadopc/curlcap/internal/config"
	"github.com/sadopc/curlcap/internal/export/har"
	"github.com/sadopc/curlcap/internal/ui/components"
	"github.com/sadopc/curlcap/internal/ui/layout"
	"github.com/sadopc/curlcap/internal/ui/msgs"
	"github.com/sadopc/curlcap/internal/ui/panels/list"
	"github.com/sadopc/curlcap/internal/ui/panels/preview"
	"github.com/sadopc/curlcap/internal/ui/theme"
)

// RefreshInterval is how often the ledger is polled for changes.
const RefreshInterval = 250 * time.Millisecond

// App is the root Bubble Tea model.
type App struct {
	list      list.Model
	preview   preview.Model
	statusBar components.StatusBar
	toast     components.Toast

	ledger   *capture.Ledger
	exporter *archive.Exporter
	cfg      config.Config

	copyText func(string) error
	now      func() time.Time

	focus  msgs.PanelFocus
	layout layout.PanelLayout
	keys   KeyMap

	theme  theme.Theme
	styles theme.Styles

	width  int
	height int
	ready  bool
}

// New creates a new App reading from ledger. exporter may be nil, in which
// case saving is reported as unavailable.
func New(ledger *capture.Ledger, exporter *archive.Exporter, cfg config.Config) App {
	t := theme.Resolve(cfg.Theme)
	s := theme.NewStyles(t)

	a := App{
		list:      list.New(t, s),
		preview:   preview.New(t, s),
		statusBar: components.NewStatusBar(t),
		toast:     components.NewToast(t),

		ledger:   ledger,
		exporter: exporter,
		cfg:      cfg,

		copyText: clipboard.WriteAll,
		now:      time.Now,

		focus: msgs.FocusList,
		keys:  DefaultKeyMap(),

		theme:  t,
		styles: s,
	}
	a.list.SetFocused(true)
	a.refresh()
	return a
}

// SetTarget sets the label of the captured tab shown in the status bar.
func (a *App) SetTarget(label string) {
	a.statusBar.SetTarget(label)
}

func tick() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg {
		return msgs.TickMsg(t)
	})
}

func (a App) Init() tea.Cmd {
	return tick()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout = layout.HandleResize(msg)
		a.resizePanels()
		a.ready = true
		return a, nil

	case msgs.TickMsg:
		a.refresh()
		return a, tick()

	case tea.KeyMsg:
		if a.list.Filtering() {
			var cmd tea.Cmd
			a.list, cmd = a.list.Update(msg)
			a.statusBar.SetFilter(a.list.Query())
			a.showSelected()
			return a, cmd
		}
		if cmd, handled := a.handleGlobalKey(msg); handled {
			return a, cmd
		}
		return a.handlePanelKey(msg)

	case msgs.RecordSelectedMsg:
		a.showSelected()
		return a, nil

	case msgs.ExportedMsg:
		if msg.Err != nil {
			return a, a.toast.Show("Save failed: "+msg.Err.Error(), true)
		}
		return a, a.toast.Show("Saved "+filepath.Base(msg.Path), false)

	case msgs.HARWrittenMsg:
		if msg.Err != nil {
			return a, a.toast.Show("HAR failed: "+msg.Err.Error(), true)
		}
		return a, a.toast.Show(fmt.Sprintf("Wrote %d entries to %s", msg.Entries, filepath.Base(msg.Path)), false)

	case msgs.CopiedMsg:
		if msg.Err != nil {
			return a, a.toast.Show("Clipboard error: "+msg.Err.Error(), true)
		}
		return a, a.toast.Show("Copied curl command", false)
	}

	var cmd tea.Cmd
	a.toast, cmd = a.toast.Update(msg)
	return a, cmd
}

func (a *App) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return tea.Quit, true
	case key.Matches(msg, a.keys.Save):
		return a.saveSelected(), true
	case key.Matches(msg, a.keys.Copy):
		return a.copySelected(), true
	case key.Matches(msg, a.keys.WriteHAR):
		return a.writeHAR(), true
	case key.Matches(msg, a.keys.Clear):
		a.ledger.Clear()
		a.refresh()
		return a.toast.Show("Cleared", false), true
	case key.Matches(msg, a.keys.CycleFocus):
		a.setFocus(1 - a.focus)
		return nil, true
	}
	return nil, false
}

func (a App) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.focus {
	case msgs.FocusList:
		a.list, cmd = a.list.Update(msg)
		a.statusBar.SetFilter(a.list.Query())
		a.showSelected()
	case msgs.FocusPreview:
		a.preview, cmd = a.preview.Update(msg)
	}
	return a, cmd
}

func (a *App) setFocus(f msgs.PanelFocus) {
	a.focus = f
	a.list.SetFocused(f == msgs.FocusList)
	a.preview.SetFocused(f == msgs.FocusPreview)
}

// refresh pulls a fresh snapshot from the ledger.
func (a *App) refresh() {
	records := capture.Sorted(a.ledger.Snapshot())
	a.list.SetRecords(records)
	a.statusBar.SetCounts(components.CountRecords(records))
	a.showSelected()
}

func (a *App) showSelected() {
	if rec, ok := a.list.Selected(); ok {
		a.preview.SetRecord(rec)
		return
	}
	a.preview.Clear()
}

func (a *App) saveSelected() tea.Cmd {
	rec, ok := a.list.Selected()
	if !ok {
		return a.toast.Show("Nothing to save", true)
	}
	if a.exporter == nil {
		return a.toast.Show("Saving is not configured", true)
	}
	exporter := a.exporter
	id := rec.ID
	return func() tea.Msg {
		path, err := exporter.Export(id)
		return msgs.ExportedMsg{ID: id, Path: path, Err: err}
	}
}

func (a *App) copySelected() tea.Cmd {
	rec, ok := a.list.Selected()
	if !ok {
		return a.toast.Show("Nothing to copy", true)
	}
	copyText := a.copyText
	return func() tea.Msg {
		return msgs.CopiedMsg{ID: rec.ID, Err: copyText(rec.Command)}
	}
}

func (a *App) writeHAR() tea.Cmd {
	records := capture.Sorted(a.ledger.Snapshot())
	if len(records) == 0 {
		return a.toast.Show("Nothing to write", true)
	}
	path := filepath.Join(a.cfg.ExportDir, "curlcap-"+a.now().Format("20060102-150405")+".har")
	return func() tea.Msg {
		return msgs.HARWrittenMsg{Path: path, Entries: len(records), Err: har.WriteFile(path, records)}
	}
}

func (a *App) resizePanels() {
	a.list.SetSize(a.layout.ListWidth, a.layout.ListHeight)
	a.preview.SetSize(a.layout.PreviewWidth, a.layout.PreviewHeight)
	a.statusBar.SetWidth(a.width)
}

func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var panels string
	if a.layout.Stacked {
		panels = lipgloss.JoinVertical(lipgloss.Left, a.list.View(), a.preview.View())
	} else {
		panels = lipgloss.JoinHorizontal(lipgloss.Top, a.list.View(), a.preview.View())
	}

	if a.toast.Visible {
		panels = overlayBottomRight(panels, a.toast.View(), a.width)
	}

	return lipgloss.JoinVertical(lipgloss.Left, panels, a.statusBar.View())
}

// overlayBottomRight draws overlay over the last lines of bg, flush right.
func overlayBottomRight(bg, overlay string, width int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")
	if len(ovLines) > len(bgLines) {
		return bg
	}

	gap := max(0, width-lipgloss.Width(overlay)-2)
	start := len(bgLines) - len(ovLines)
	for i, line := range ovLines {
		left := ansi.Truncate(bgLines[start+i], gap, "")
		if strings.Contains(left, "\x1b") {
			left += ansi.ResetStyle
		}
		if w := ansi.StringWidth(left); w < gap {
			left += strings.Repeat(" ", gap-w)
		}
		bgLines[start+i] = left + line
	}
	return strings.Join(bgLines, "\n")
}
