package msgs

import "time"

// PanelFocus identifies the panel receiving key input.
type PanelFocus int

const (
	FocusList PanelFocus = iota
	FocusPreview
)

// TickMsg asks the app to refresh from the ledger.
type TickMsg time.Time

// RecordSelectedMsg is sent when the list cursor lands on a record.
type RecordSelectedMsg struct {
	ID string
}

// ExportedMsg reports the result of saving a record archive.
type ExportedMsg struct {
	ID   string
	Path string
	Err  error
}

// HARWrittenMsg reports the result of writing a HAR file.
type HARWrittenMsg struct {
	Path    string
	Entries int
	Err     error
}

// CopiedMsg reports the result of copying a curl command.
type CopiedMsg struct {
	ID  string
	Err error
}
