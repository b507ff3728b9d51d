// Package curl reads back the curl commands recorded for captured requests.
package curl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sadopc/curlcap/internal/protocol"
)

var (
	ErrEmpty = errors.New("empty curl command")
	ErrNoURL = errors.New("curl command has no URL")
)

// ParseCurl recovers the request from a command of the form
//
//	curl '<url>' [-X <METHOD>] [-H '<name>: <value>' ...] [--data-binary '<body>'] [--compressed]
//
// The URL comes first. Any other option is an error, so a command that was
// not recorded by curlcap is reported instead of half-read.
func ParseCurl(cmd string) (*protocol.Request, error) {
	words, err := splitWords(cmd)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrEmpty
	}
	if words[0] != "curl" {
		return nil, fmt.Errorf("not a curl command: %q", words[0])
	}
	if len(words) < 2 || words[1] == "" {
		return nil, ErrNoURL
	}

	req := &protocol.Request{
		URL:     words[1],
		Headers: make(map[string]string),
	}
	for i := 2; i < len(words); i++ {
		opt := words[i]
		if opt == "--compressed" {
			continue
		}
		if i+1 >= len(words) {
			return nil, fmt.Errorf("option %s: missing value", opt)
		}
		i++
		val := words[i]

		switch opt {
		case "-X":
			req.Method = val
		case "-H":
			name, value, err := splitHeader(val)
			if err != nil {
				return nil, err
			}
			req.Headers[name] = value
		case "--data-binary":
			req.Body = []byte(val)
		default:
			return nil, fmt.Errorf("unsupported option %q", opt)
		}
	}

	if req.Method == "" {
		req.Method = "GET"
		if req.HasBody() {
			req.Method = "POST"
		}
	}
	return req, nil
}

// splitHeader splits "Name: value". The separator is the first ": "; a bare
// colon is accepted for hand-edited commands.
func splitHeader(h string) (string, string, error) {
	name, value, ok := strings.Cut(h, ": ")
	if !ok {
		name, value, ok = strings.Cut(h, ":")
	}
	if !ok || name == "" {
		return "", "", fmt.Errorf("malformed header %q", h)
	}
	return name, value, nil
}

// splitWords splits a POSIX shell command line into words. Single quotes are
// literal, a backslash outside quotes escapes the next byte and a
// backslash-newline joins lines. Bytes are copied as-is so bodies that are
// not valid UTF-8 survive.
func splitWords(s string) ([]string, error) {
	var (
		words  []string
		cur    []byte
		inWord bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case ' ', '\t', '\n', '\r':
			if inWord {
				words = append(words, string(cur))
				cur = cur[:0]
				inWord = false
			}
		case '\'':
			end := strings.IndexByte(s[i+1:], '\'')
			if end < 0 {
				return nil, errors.New("unterminated single quote")
			}
			cur = append(cur, s[i+1:i+1+end]...)
			i += end + 1
			inWord = true
		case '\\':
			if i+1 >= len(s) {
				return nil, errors.New("trailing backslash")
			}
			i++
			if s[i] == '\n' {
				continue
			}
			cur = append(cur, s[i])
			inWord = true
		default:
			cur = append(cur, c)
			inWord = true
		}
	}
	if inWord {
		words = append(words, string(cur))
	}
	return words, nil
}
