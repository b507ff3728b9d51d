// Package capture holds the per-request records assembled from browser
// network events.
package capture

import "sync"

// Ledger is a keyed store of in-progress and completed request records.
// Callers only ever receive copies of the stored records.
type Ledger struct {
	mu      sync.RWMutex
	records map[string]*Record
	seq     uint64
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{records: make(map[string]*Record)}
}

// Create inserts a pending record for id. An existing record with the same
// id is replaced; the browser only reuses an id after the previous exchange
// has finished.
func (l *Ledger) Create(id, url, command string) Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	rec := &Record{
		ID:      id,
		Seq:     l.seq,
		URL:     url,
		Command: command,
		Status:  Pending,
	}
	l.records[id] = rec
	return rec.clone()
}

// Merge applies p to the record stored under id and reports whether the
// record exists. Unknown ids are left alone.
func (l *Ledger) Merge(id string, p Patch) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[id]
	if !ok {
		return false
	}
	rec.apply(p)
	return true
}

// Get returns a copy of the record stored under id.
func (l *Ledger) Get(id string) (Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, ok := l.records[id]
	if !ok {
		return Record{}, false
	}
	return rec.clone(), true
}

// Snapshot returns a copy of every record keyed by id.
func (l *Ledger) Snapshot() map[string]Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]Record, len(l.records))
	for id, rec := range l.records {
		out[id] = rec.clone()
	}
	return out
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Clear drops every record. Events for cleared ids are then ignored until
// the browser starts a new request.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = make(map[string]*Record)
}
