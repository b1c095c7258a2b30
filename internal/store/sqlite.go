package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"tipdex/internal/domain"
)

//go:embed schema.sql
var schema string

const fingerprintKey = "source_fingerprint"

// Store is the SQLite-backed catalog cache. It lets repeated
// invocations skip re-parsing an unchanged source tree; the in-memory
// index remains the only query path.
type Store struct {
	db *sql.DB
}

// New opens the cache database at dbPath, creating the schema if needed.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_fk=1")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Sync replaces the cached corpus with entries (in load order) and
// records the source fingerprint, all in one transaction.
func (s *Store) Sync(entries []domain.Entry, fingerprint string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin sync: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entries"); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}

	for pos, e := range entries {
		_, err := tx.Exec(
			"INSERT INTO entries (id, position, title, body, link) VALUES (?, ?, ?, ?, ?)",
			e.ID, pos, e.Title, e.Body, e.Link,
		)
		if err != nil {
			return fmt.Errorf("insert entry %d: %w", e.ID, err)
		}

		for tpos, tag := range e.Tags {
			_, err := tx.Exec(
				"INSERT INTO entry_tags (entry_id, tag, position) VALUES (?, ?, ?)",
				e.ID, tag, tpos,
			)
			if err != nil {
				return fmt.Errorf("insert tag %q for entry %d: %w", tag, e.ID, err)
			}
		}
	}

	_, err = tx.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		fingerprintKey, fingerprint,
	)
	if err != nil {
		return fmt.Errorf("record fingerprint: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sync: %w", err)
	}
	return nil
}

// LoadAll returns the cached corpus in load order.
func (s *Store) LoadAll() ([]domain.Entry, error) {
	rows, err := s.db.Query(
		"SELECT id, title, body, link FROM entries ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.ID, &e.Title, &e.Body, &e.Link); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}

	for i := range entries {
		tags, err := s.entryTags(entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].Tags = tags
	}

	return entries, nil
}

func (s *Store) entryTags(entryID int) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT tag FROM entry_tags WHERE entry_id = ? ORDER BY position",
		entryID,
	)
	if err != nil {
		return nil, fmt.Errorf("load tags for entry %d: %w", entryID, err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// Count returns the number of cached entries.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// Fingerprint returns the recorded source fingerprint, or "" if the
// cache has never been synced.
func (s *Store) Fingerprint() (string, error) {
	var v string
	err := s.db.QueryRow(
		"SELECT value FROM meta WHERE key = ?", fingerprintKey,
	).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read fingerprint: %w", err)
	}
	return v, nil
}
