// Package cache provides a SQLite-backed cache of parsed content files keyed
// by path and checksum.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS content (
	path       TEXT PRIMARY KEY,
	checksum   TEXT NOT NULL,
	metadata   TEXT NOT NULL DEFAULT '{}',
	html       TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Entry is one cached content file. Metadata holds the raw header values as
// parsed, before date processing.
type Entry struct {
	Path      string
	Checksum  string
	Metadata  map[string]any
	HTML      string
	UpdatedAt time.Time
}

// DB wraps a sql.DB with cache operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cache: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Get returns the entry for path if its stored checksum equals checksum.
func (db *DB) Get(path, checksum string) (*Entry, bool, error) {
	var (
		e    Entry
		meta string
	)
	err := db.conn.QueryRow(`
		SELECT path, checksum, metadata, html, updated_at
		FROM content
		WHERE path = ? AND checksum = ?
	`, path, checksum).Scan(&e.Path, &e.Checksum, &meta, &e.HTML, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get %s: %w", path, err)
	}
	if err := json.Unmarshal([]byte(meta), &e.Metadata); err != nil {
		return nil, false, fmt.Errorf("cache: decode metadata %s: %w", path, err)
	}
	return &e, true, nil
}

// Put inserts or replaces the entry for e.Path.
func (db *DB) Put(e Entry) error {
	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("cache: encode metadata %s: %w", e.Path, err)
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now()
	}
	_, err = db.conn.Exec(`
		INSERT INTO content (path, checksum, metadata, html, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			metadata   = excluded.metadata,
			html       = excluded.html,
			updated_at = excluded.updated_at
	`, e.Path, e.Checksum, string(meta), e.HTML, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("cache: put %s: %w", e.Path, err)
	}
	return nil
}

// Prune deletes every entry whose path is not in live and returns how many
// rows were removed.
func (db *DB) Prune(live map[string]struct{}) (int, error) {
	rows, err := db.conn.Query(`SELECT path FROM content`)
	if err != nil {
		return 0, fmt.Errorf("cache: prune: %w", err)
	}
	var stale []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return 0, err
		}
		if _, ok := live[p]; !ok {
			stale = append(stale, p)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	if len(stale) == 0 {
		return 0, nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("cache: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	stmt, err := tx.Prepare(`DELETE FROM content WHERE path = ?`)
	if err != nil {
		return 0, fmt.Errorf("cache: prepare delete: %w", err)
	}
	defer stmt.Close()
	for _, p := range stale {
		if _, err := stmt.Exec(p); err != nil {
			return 0, fmt.Errorf("cache: delete %s: %w", p, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("cache: commit: %w", err)
	}
	return len(stale), nil
}

// Len returns the number of cached entries.
func (db *DB) Len() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM content`).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache: count: %w", err)
	}
	return n, nil
}
