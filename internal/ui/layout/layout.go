package layout

// PanelLayout holds calculated dimensions for the list and preview panels.
type PanelLayout struct {
	Width  int
	Height int

	ListWidth     int
	ListHeight    int
	PreviewWidth  int
	PreviewHeight int

	ContentHeight int // height minus status bar

	// Stacked places the preview under the list on narrow terminals.
	Stacked bool
}

const (
	statusBarHeight = 1
	stackBreakpoint = 100
	minListWidth    = 40
)

// Calculate computes the panel layout from terminal dimensions.
func Calculate(width, height int) PanelLayout {
	l := PanelLayout{
		Width:         width,
		Height:        height,
		ContentHeight: height - statusBarHeight,
	}
	if l.ContentHeight < 2 {
		l.ContentHeight = 2
	}

	if width < stackBreakpoint {
		l.Stacked = true
		l.ListWidth = width
		l.PreviewWidth = width
		l.ListHeight = l.ContentHeight / 2
		l.PreviewHeight = l.ContentHeight - l.ListHeight
		return l
	}

	l.ListWidth = clamp(width*11/20, minListWidth, width-minListWidth)
	l.PreviewWidth = width - l.ListWidth
	l.ListHeight = l.ContentHeight
	l.PreviewHeight = l.ContentHeight
	return l
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
