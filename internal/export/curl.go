package export

import (
	"sort"
	"strings"

	"github.com/sadopc/curlcap/internal/protocol"
)

// AsCurl converts a request to a curl command string of the form
//
//	curl '<url>' -X <METHOD> -H '<name>: <value>' ... [--data-binary '<body>'] --compressed
//
// Headers are written in name order. A method that is not a plain word
// (letters, digits, '-', '_', '.') is quoted like every other value. It never fails; a nil request yields a
// bare GET with an empty URL.
func AsCurl(req *protocol.Request) string {
	if req == nil {
		req = &protocol.Request{}
	}

	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = "GET"
	}

	var b strings.Builder
	b.WriteString("curl ")
	b.WriteString(quote(req.URL))
	b.WriteString(" -X ")
	if plainWord(method) {
		b.WriteString(method)
	} else {
		b.WriteString(quote(method))
	}

	names := make([]string, 0, len(req.Headers))
	for k := range req.Headers {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		b.WriteString(" -H ")
		b.WriteString(quote(k + ": " + req.Headers[k]))
	}

	if req.HasBody() {
		b.WriteString(" --data-binary ")
		b.WriteString(quote(string(req.Body)))
	}

	b.WriteString(" --compressed")
	return b.String()
}

// quote wraps s in single quotes, closing and reopening the quote around
// every embedded single quote.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func plainWord(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return s != ""
}
