package history

import "time"

// Entry records one archive written for a captured request.
type Entry struct {
	ID        int64
	RequestID string
	URL       string
	Status    string
	MimeType  string
	Path      string
	Size      int64
	Timestamp time.Time
}
