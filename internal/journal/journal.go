// Package journal keeps a local SQLite history of update checks.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go driver, registered as "sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		checked_at TEXT NOT NULL,
		listing_url TEXT NOT NULL,
		major INTEGER NOT NULL,
		stored TEXT NOT NULL DEFAULT '',
		chosen TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL DEFAULT '',
		updated INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT ''
	);
`

// Entry is one recorded check.
type Entry struct {
	ID         int64
	CheckedAt  time.Time
	ListingURL string
	Major      int
	Stored     string
	Chosen     string
	Reason     string
	Updated    bool
	Skipped    bool // listing could not be fetched or verified
	Error      string
}

// Journal is an open decision history database.
type Journal struct {
	db *sql.DB
}

func buildDSN(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(3000)")
	q.Add("_pragma", "journal_mode(WAL)")
	u.RawQuery = q.Encode()
	return u.String()
}

// Open creates the database at path if needed and ensures the schema exists.
func Open(ctx context.Context, path string) (*Journal, error) {
	// #nosec G301 -- parent of a configured journal path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", buildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping journal: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends e. A zero CheckedAt is stamped with the current time.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.CheckedAt.IsZero() {
		e.CheckedAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO decisions (checked_at, listing_url, major, stored, chosen, reason, updated, skipped, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.CheckedAt.UTC().Format(time.RFC3339Nano), e.ListingURL, e.Major, e.Stored, e.Chosen,
		e.Reason, boolInt(e.Updated), boolInt(e.Skipped), e.Error)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. limit <= 0 returns all.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, checked_at, listing_url, major, stored, chosen, reason, updated, skipped, error
		FROM decisions
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []Entry
	for rows.Next() {
		var (
			e                Entry
			checkedAt        string
			updated, skipped int
		)
		if err := rows.Scan(&e.ID, &checkedAt, &e.ListingURL, &e.Major, &e.Stored, &e.Chosen,
			&e.Reason, &updated, &skipped, &e.Error); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		if e.CheckedAt, err = time.Parse(time.RFC3339Nano, checkedAt); err != nil {
			return nil, fmt.Errorf("parse checked_at %q: %w", checkedAt, err)
		}
		e.Updated = updated != 0
		e.Skipped = skipped != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
