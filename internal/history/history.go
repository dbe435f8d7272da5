// Package history archives publish outcomes in a local SQLite database so
// the operator can audit what went out and when.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one archived publish attempt.
type Entry struct {
	ID       string
	Topic    string
	Content  string
	Source   string
	Status   string // "published", "published (unconfirmed)", or a failure kind
	Detail   string
	PostedAt time.Time
}

type History struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	h := &History{readDB: readDB, writeDB: writeDB}
	if err := h.init(); err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}

func (h *History) init() error {
	_, err := h.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id        TEXT PRIMARY KEY,
			topic     TEXT NOT NULL DEFAULT '',
			content   TEXT NOT NULL,
			source    TEXT NOT NULL DEFAULT '',
			status    TEXT NOT NULL,
			detail    TEXT NOT NULL DEFAULT '',
			posted_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_posts_posted_at ON posts(posted_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (h *History) Close() error {
	var errs []error
	if h.readDB != nil {
		errs = append(errs, h.readDB.Close())
	}
	if h.writeDB != nil {
		errs = append(errs, h.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// Record upserts one entry; re-recording the same id keeps the latest
// status and detail.
func (h *History) Record(e Entry) error {
	_, err := h.writeDB.Exec(`
		INSERT INTO posts (id, topic, content, source, status, detail, posted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			detail = excluded.detail,
			posted_at = excluded.posted_at
	`, e.ID, e.Topic, e.Content, e.Source, e.Status, e.Detail, e.PostedAt)
	if err != nil {
		return fmt.Errorf("recording post %s: %w", e.ID, err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (h *History) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.readDB.Query(`
		SELECT id, topic, content, source, status, detail, posted_at
		FROM posts ORDER BY posted_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Topic, &e.Content, &e.Source, &e.Status, &e.Detail, &e.PostedAt); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than the retention period and reports how
// many were removed.
func (h *History) Prune(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	res, err := h.writeDB.Exec(`DELETE FROM posts WHERE posted_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats reports the entry count and on-disk size.
func (h *History) Stats(dbPath string) (int, int64, error) {
	var count int
	if err := h.readDB.QueryRow(`SELECT COUNT(*) FROM posts`).Scan(&count); err != nil {
		return 0, 0, err
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, err
	}
	return count, info.Size(), nil
}
