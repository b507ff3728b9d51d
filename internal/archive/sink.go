package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sink stores a bundle as one downloadable unit and returns where it went.
type Sink interface {
	Save(b Bundle) (string, error)
}

// DirSink writes each bundle as a zip file in Dir.
type DirSink struct {
	Dir string
	Now func() time.Time
}

// Save implements Sink.
func (s DirSink) Save(b Bundle) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	name := fmt.Sprintf("%s-%s.zip", safeName(b.RequestID), uuid.New().String()[:8])
	path := filepath.Join(s.Dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", name, err)
	}
	if err := WriteZip(f, b, now()); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", name, err)
	}
	return path, nil
}

// safeName keeps request ids usable as file names.
func safeName(id string) string {
	if id == "" {
		return "request"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}
