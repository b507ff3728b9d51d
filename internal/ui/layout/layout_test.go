package layout

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		height  int
		stacked bool
	}{
		{"narrow stacks", 80, 30, true},
		{"wide side by side", 160, 40, false},
		{"breakpoint", 100, 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Calculate(tt.width, tt.height)
			if l.Stacked != tt.stacked {
				t.Fatalf("Stacked = %v, want %v", l.Stacked, tt.stacked)
			}
			if l.ContentHeight != tt.height-1 {
				t.Errorf("ContentHeight = %d, want %d", l.ContentHeight, tt.height-1)
			}
			if tt.stacked {
				if l.ListHeight+l.PreviewHeight != l.ContentHeight {
					t.Errorf("heights %d+%d != %d", l.ListHeight, l.PreviewHeight, l.ContentHeight)
				}
				if l.ListWidth != tt.width || l.PreviewWidth != tt.width {
					t.Errorf("stacked widths = %d/%d, want %d", l.ListWidth, l.PreviewWidth, tt.width)
				}
			} else if l.ListWidth+l.PreviewWidth != tt.width {
				t.Errorf("widths %d+%d != %d", l.ListWidth, l.PreviewWidth, tt.width)
			}
		})
	}
}

func TestCalculateTinyTerminal(t *testing.T) {
	l := Calculate(10, 1)
	if l.ContentHeight < 2 {
		t.Fatalf("ContentHeight = %d, want at least 2", l.ContentHeight)
	}
}

func TestClamp(t *testing.T) {
	if got := clamp(5, 10, 20); got != 10 {
		t.Errorf("clamp low = %d", got)
	}
	if got := clamp(25, 10, 20); got != 20 {
		t.Errorf("clamp high = %d", got)
	}
	if got := clamp(15, 10, 20); got != 15 {
		t.Errorf("clamp mid = %d", got)
	}
}

func TestHandleResize(t *testing.T) {
	got := HandleResize(tea.WindowSizeMsg{Width: 80, Height: 30})
	want := Calculate(80, 30)
	if got != want {
		t.Fatalf("HandleResize = %+v, want %+v", got, want)
	}
}
