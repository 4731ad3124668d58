// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists resolved links in a SQLite key-value store so
// repeated resolutions of the same identifier skip the network. Entries
// never expire on their own; callers wanting freshness bypass reads and
// overwrite. A small in-memory layer in front of SQLite keeps hot keys
// out of the database during bulk runs.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	gocache "github.com/patrickmn/go-cache"
)

// Entry is one cached resolution.
type Entry struct {
	Key       string
	Value     string
	CreatedAt time.Time
}

// Store is a single-writer, multi-reader resolved-link cache. The SQLite
// handle and the memory layer are both safe for concurrent use; racing
// writers to the same key settle last-write-wins, which is fine because
// values are idempotent derivations of the key.
type Store struct {
	db  *sql.DB
	mem *gocache.Cache
}

// Open opens or creates the cache database at path and ensures the schema
// exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS links (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &Store{
		db:  db,
		mem: gocache.New(gocache.NoExpiration, 0),
	}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Key derives the deterministic cache key for (operation, input). The
// input is trimmed before hashing so incidental whitespace does not split
// the cache.
func Key(operation, input string) string {
	h := sha256.Sum256([]byte(operation + "\x00" + strings.TrimSpace(input)))
	return fmt.Sprintf("%x", h)
}

// Get returns the cached value for key, reporting whether it was present.
func (s *Store) Get(key string) (string, bool, error) {
	e, ok, err := s.lookup(key)
	if err != nil || !ok {
		return "", false, err
	}
	return e.Value, true, nil
}

// GetNewer returns the cached value only if the entry was written at or
// after cutoff, forcing a refresh of anything older.
func (s *Store) GetNewer(key string, cutoff time.Time) (string, bool, error) {
	e, ok, err := s.lookup(key)
	if err != nil || !ok {
		return "", false, err
	}
	if e.CreatedAt.Before(cutoff) {
		return "", false, nil
	}
	return e.Value, true, nil
}

// Set writes value under key, replacing any previous entry, and updates
// the memory layer.
func (s *Store) Set(key, value string) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO links (key, value, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, created_at = excluded.created_at`,
		key, value, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	s.mem.Set(key, Entry{Key: key, Value: value, CreatedAt: now}, gocache.NoExpiration)
	return nil
}

// Len returns the number of persisted entries.
func (s *Store) Len() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT count(*) FROM links`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cache entries: %w", err)
	}
	return n, nil
}

// Clear removes every entry from both layers.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM links`); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	s.mem.Flush()
	return nil
}

func (s *Store) lookup(key string) (Entry, bool, error) {
	if v, ok := s.mem.Get(key); ok {
		return v.(Entry), true, nil
	}

	var value, created string
	err := s.db.QueryRow(`SELECT value, created_at FROM links WHERE key = ?`, key).
		Scan(&value, &created)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("reading cache entry: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		createdAt = time.Time{}
	}
	e := Entry{Key: key, Value: value, CreatedAt: createdAt}
	s.mem.Set(key, e, gocache.NoExpiration)
	return e, true, nil
}
