package preview

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/curlcap/internal/capture"
	"github.com/sadopc/curlcap/internal/ui/theme"
)

func newPreviewForTest() Model {
	th := theme.Default()
	m := New(th, theme.NewStyles(th))
	m.SetSize(80, 30)
	return m
}

func TestPreview_EmptyState(t *testing.T) {
	m := newPreviewForTest()
	if v := m.View(); !strings.Contains(v, "Select a request") {
		t.Fatalf("view = %q", v)
	}
	if _, ok := m.Record(); ok {
		t.Fatal("no record expected")
	}
}

func TestPreview_ShowsCommandStatusAndBody(t *testing.T) {
	m := newPreviewForTest()
	m.SetRecord(capture.Record{
		ID:           "1",
		Seq:          1,
		URL:          "https://example.com/",
		Command:      "curl 'https://example.com/' -X GET --compressed",
		Status:       capture.Code(200),
		MimeType:     capture.Ptr("text/plain"),
		ResponseBody: capture.Ptr("hello world"),
	})

	v := m.viewport.View()
	for _, want := range []string{"Command", "curl 'https://example.com/'", "200", "text/plain", "11 B", "hello world"} {
		if !strings.Contains(v, want) {
			t.Errorf("preview missing %q: %q", want, v)
		}
	}
}

func TestPreview_PendingAndFailed(t *testing.T) {
	m := newPreviewForTest()
	m.SetRecord(capture.Record{ID: "1", Seq: 1, Command: "curl 'u'", Status: capture.Pending})
	if v := m.viewport.View(); !strings.Contains(v, "pending") || !strings.Contains(v, "No body captured") {
		t.Fatalf("pending preview = %q", v)
	}

	m.SetRecord(capture.Record{
		ID:           "1",
		Seq:          1,
		Command:      "curl 'u'",
		Status:       capture.Failed,
		ErrorText:    capture.Ptr("net::ERR_ABORTED"),
		ResponseBody: capture.Ptr("net::ERR_ABORTED"),
	})
	v := m.viewport.View()
	if !strings.Contains(v, "fail") || strings.Count(v, "net::ERR_ABORTED") != 1 {
		t.Fatalf("failed preview = %q", v)
	}
}

func TestPreview_JSONBodyPrettyPrinted(t *testing.T) {
	m := newPreviewForTest()
	m.SetRecord(capture.Record{
		ID:           "1",
		Seq:          1,
		Command:      "curl 'u'",
		Status:       capture.Code(200),
		MimeType:     capture.Ptr("application/json"),
		ResponseBody: capture.Ptr(`{"id":1,"name":"x"}`),
	})
	v := m.viewport.View()
	if !strings.Contains(v, `"id"`) || !strings.Contains(v, `"name"`) {
		t.Fatalf("json preview = %q", v)
	}
	if strings.Contains(v, `{"id":1`) {
		t.Fatalf("json body not pretty-printed: %q", v)
	}
}

func TestPreview_SameRecordKeepsScroll(t *testing.T) {
	m := newPreviewForTest()
	body := strings.Repeat("line\n", 200)
	rec := capture.Record{ID: "1", Seq: 1, Command: "curl 'u'", Status: capture.Code(200), ResponseBody: capture.Ptr(body)}
	m.SetRecord(rec)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	offset := m.viewport.YOffset
	if offset == 0 {
		t.Fatal("expected scroll to bottom")
	}

	m.SetRecord(rec)
	if m.viewport.YOffset != offset {
		t.Fatalf("offset = %d, want %d kept for unchanged record", m.viewport.YOffset, offset)
	}

	other := rec
	other.ID = "2"
	other.Seq = 2
	m.SetRecord(other)
	if m.viewport.YOffset != 0 {
		t.Fatalf("offset = %d, want reset for a different record", m.viewport.YOffset)
	}

	m.Clear()
	if _, ok := m.Record(); ok {
		t.Fatal("Clear should drop the record")
	}
}

func TestSame(t *testing.T) {
	a := capture.Record{ID: "1", Seq: 1, Status: capture.Pending}
	b := a
	if !Same(a, b) {
		t.Fatal("identical records should be same")
	}
	b.ResponseBody = capture.Ptr("x")
	if Same(a, b) {
		t.Fatal("body change should differ")
	}
	a.ResponseBody = capture.Ptr("x")
	if !Same(a, b) {
		t.Fatal("equal bodies behind different pointers should be same")
	}
	b.Status = capture.Code(200)
	if Same(a, b) {
		t.Fatal("status change should differ")
	}
}

func TestDetectLexer(t *testing.T) {
	tests := map[string]string{
		"application/json":         "json",
		"application/problem+json": "json",
		"text/html; charset=utf-8": "html",
		"application/xml":          "xml",
		"text/css":                 "css",
		"application/javascript":   "javascript",
		"text/plain":               "text",
		"":                         "text",
	}
	for in, want := range tests {
		if got := DetectLexer(in); got != want {
			t.Errorf("DetectLexer(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPreview_BinaryBodyNotRendered(t *testing.T) {
	m := newPreviewForTest()
	body := "\x89PNG\r\n\x1a\n\x1b]0;pwned\x07\x1b[2J\x00"
	m.SetRecord(capture.Record{
		ID:           "1",
		Seq:          1,
		Command:      "curl 'https://a.test/logo.png' -X GET --compressed",
		Status:       capture.Code(200),
		MimeType:     capture.Ptr("image/png"),
		ResponseBody: capture.Ptr(body),
	})

	v := m.View()
	for _, bad := range []string{"\x1b]0;", "pwned", "\x1b[2J", "\x00", "\x07"} {
		if strings.Contains(v, bad) {
			t.Errorf("view contains %q", bad)
		}
	}
	if want := "binary body, 23 bytes"; !strings.Contains(v, want) {
		t.Errorf("view missing %q: %q", want, v)
	}
}

func TestPreview_TextControlsStripped(t *testing.T) {
	m := newPreviewForTest()
	m.SetRecord(capture.Record{
		ID:           "1",
		Seq:          1,
		Command:      "curl 'https://a.test/' -X GET -H 'X-Evil: \x1b[2Jboom' --compressed",
		Status:       capture.Failed,
		MimeType:     capture.Ptr("text/plain"),
		ResponseBody: capture.Ptr("hello\x1b]0;pwned\x07 world\x1b[31m\r\n"),
		ErrorText:    capture.Ptr("net::ERR\x1b[2J_FAILED"),
	})

	v := m.View()
	for _, bad := range []string{"\x1b]0;", "\x1b[2J", "\x07", "\r", "\x1b[31m"} {
		if strings.Contains(v, bad) {
			t.Errorf("view contains %q", bad)
		}
	}
	for _, want := range []string{"hello world", "X-Evil: boom", "net::ERR_FAILED"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q: %q", want, v)
		}
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain text", "plain text"},
		{"a\tb\nc", "a\tb\nc"},
		{"line\r\n", "line\n"},
		{"\x1b[1mbold\x1b[0m", "bold"},
		{"x\x1b]0;title\x07y", "xy"},
		{"bell\x07del\x7f", "belldel"},
		{"c1\u009bz", "c1z"},
		{"日本語", "日本語"},
	}
	for _, tt := range tests {
		if got := sanitize(tt.in); got != tt.want {
			t.Errorf("sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if !isBinary("\xff\xfe") || !isBinary("a\x00b") || isBinary("text\n") {
		t.Error("isBinary misclassifies")
	}
}
