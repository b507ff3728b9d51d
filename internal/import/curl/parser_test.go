package curl

import (
	"errors"
	"testing"
)

// chromeGET is a command recorded for a page navigation in Chrome.
const chromeGET = `curl 'https://news.example.com/?ref=home' -X GET ` +
	`-H 'Accept: text/html,application/xhtml+xml;q=0.9,*/*;q=0.8' ` +
	`-H 'Upgrade-Insecure-Requests: 1' ` +
	`-H 'User-Agent: Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36' ` +
	`-H 'sec-ch-ua: "Chromium";v="124", "Not-A.Brand";v="99"' --compressed`

func TestParseCurl_CapturedNavigation(t *testing.T) {
	req, err := ParseCurl(chromeGET)
	if err != nil {
		t.Fatalf("ParseCurl: %v", err)
	}
	if req.Method != "GET" {
		t.Errorf("Method = %q, want GET", req.Method)
	}
	if req.URL != "https://news.example.com/?ref=home" {
		t.Errorf("URL = %q", req.URL)
	}
	if len(req.Headers) != 4 {
		t.Fatalf("headers = %v, want 4", req.Headers)
	}
	if got := req.Headers["sec-ch-ua"]; got != `"Chromium";v="124", "Not-A.Brand";v="99"` {
		t.Errorf("sec-ch-ua = %q", got)
	}
	if req.HasBody() {
		t.Errorf("unexpected body %q", req.Body)
	}
}

func TestParseCurl_CapturedFetchWithBody(t *testing.T) {
	cmd := `curl 'https://api.example.com/graphql' -X POST ` +
		`-H 'Content-Type: application/json' -H 'X-Empty: ' ` +
		`--data-binary '{"query":"{ viewer { login } }","note":"it'\''s"}' --compressed`

	req, err := ParseCurl(cmd)
	if err != nil {
		t.Fatalf("ParseCurl: %v", err)
	}
	if req.Method != "POST" {
		t.Errorf("Method = %q, want POST", req.Method)
	}
	if want := `{"query":"{ viewer { login } }","note":"it's"}`; string(req.Body) != want {
		t.Errorf("Body = %q, want %q", req.Body, want)
	}
	if v, ok := req.Headers["X-Empty"]; !ok || v != "" {
		t.Errorf("X-Empty = %q, %v; want empty value present", v, ok)
	}
}

func TestParseCurl_MethodDefaults(t *testing.T) {
	tests := []struct {
		cmd  string
		want string
	}{
		{cmd: `curl 'https://a.test/'`, want: "GET"},
		{cmd: `curl 'https://a.test/' --data-binary 'x=1'`, want: "POST"},
		{cmd: `curl 'https://a.test/' -X GET --data-binary 'q=1'`, want: "GET"},
		{cmd: `curl 'https://a.test/' -X 'BREW /pot'`, want: "BREW /pot"},
		{cmd: `curl 'https://a.test/' -X purge`, want: "purge"},
	}
	for _, tt := range tests {
		req, err := ParseCurl(tt.cmd)
		if err != nil {
			t.Fatalf("ParseCurl(%s): %v", tt.cmd, err)
		}
		if req.Method != tt.want {
			t.Errorf("ParseCurl(%s).Method = %q, want %q", tt.cmd, req.Method, tt.want)
		}
	}
}

func TestParseCurl_LineContinuation(t *testing.T) {
	cmd := "curl 'https://a.test/items' \\\n  -X PUT \\\n  -H 'Content-Type: text/plain' \\\n  --data-binary 'hello' \\\n  --compressed"
	req, err := ParseCurl(cmd)
	if err != nil {
		t.Fatalf("ParseCurl: %v", err)
	}
	if req.Method != "PUT" || string(req.Body) != "hello" || req.Headers["Content-Type"] != "text/plain" {
		t.Errorf("req = %+v", req)
	}
}

func TestParseCurl_PseudoHeaderName(t *testing.T) {
	req, err := ParseCurl(`curl 'https://a.test/' -X GET -H ':authority: a.test' -H 'X-Time: 12:30:00'`)
	if err != nil {
		t.Fatalf("ParseCurl: %v", err)
	}
	if req.Headers[":authority"] != "a.test" {
		t.Errorf(":authority = %q", req.Headers[":authority"])
	}
	if req.Headers["X-Time"] != "12:30:00" {
		t.Errorf("X-Time = %q", req.Headers["X-Time"])
	}
}

func TestParseCurl_Errors(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		is   error
	}{
		{name: "empty", cmd: "", is: ErrEmpty},
		{name: "blank", cmd: "  \n ", is: ErrEmpty},
		{name: "no url", cmd: "curl", is: ErrNoURL},
		{name: "empty url", cmd: "curl '' -X GET", is: ErrNoURL},
		{name: "other program", cmd: "wget https://a.test/"},
		{name: "unsupported option", cmd: "curl 'https://a.test/' -u admin:secret"},
		{name: "missing value", cmd: "curl 'https://a.test/' -X"},
		{name: "header without colon", cmd: "curl 'https://a.test/' -H 'Accept'"},
		{name: "header without name", cmd: "curl 'https://a.test/' -H ': x'"},
		{name: "unterminated quote", cmd: "curl 'https://a.test/"},
		{name: "trailing backslash", cmd: `curl 'https://a.test/' \`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseCurl(tt.cmd)
			if err == nil {
				t.Fatalf("ParseCurl(%q) = %+v, want error", tt.cmd, req)
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("err = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: `curl 'a b' -X GET`, want: []string{"curl", "a b", "-X", "GET"}},
		{in: `'it'\''s'`, want: []string{"it's"}},
		{in: `''`, want: []string{""}},
		{in: `a\ b`, want: []string{"a b"}},
		{in: "x\t\ty\r\nz", want: []string{"x", "y", "z"}},
		{in: `'say "hi"'`, want: []string{`say "hi"`}},
		{in: "'\xff\xfe'", want: []string{"\xff\xfe"}},
	}
	for _, tt := range tests {
		got, err := splitWords(tt.in)
		if err != nil {
			t.Fatalf("splitWords(%q): %v", tt.in, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("splitWords(%q) = %q, want %q", tt.in, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitWords(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
