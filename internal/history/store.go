package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store keeps a log of exported archives.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the export log at the given path.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	// A :memory: database lives on a single connection.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS exports (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL,
			url        TEXT NOT NULL,
			status     TEXT NOT NULL,
			mime_type  TEXT,
			path       TEXT NOT NULL,
			size       INTEGER,
			timestamp  TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_exports_timestamp ON exports(timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_exports_url ON exports(url);
	`)
	if err != nil {
		return fmt.Errorf("creating exports table: %w", err)
	}
	return nil
}

// Add inserts a new entry.
func (s *Store) Add(e Entry) (int64, error) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	result, err := s.db.Exec(`
		INSERT INTO exports (request_id, url, status, mime_type, path, size, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.RequestID, e.URL, e.Status, e.MimeType, e.Path, e.Size,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting export: %w", err)
	}
	return result.LastInsertId()
}

// List returns the most recent entries.
func (s *Store) List(limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, request_id, url, status, mime_type, path, size, timestamp
		FROM exports
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing exports: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Search finds entries by URL substring.
func (s *Store) Search(query string) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, request_id, url, status, mime_type, path, size, timestamp
		FROM exports
		WHERE url LIKE ?
		ORDER BY timestamp DESC, id DESC
		LIMIT 50`, "%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("searching exports: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Clear removes all entries.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM exports")
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var mime sql.NullString
		var size sql.NullInt64
		var ts string
		err := rows.Scan(&e.ID, &e.RequestID, &e.URL, &e.Status, &mime, &e.Path, &size, &ts)
		if err != nil {
			return nil, fmt.Errorf("scanning export row: %w", err)
		}
		e.MimeType = mime.String
		e.Size = size.Int64
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
