package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"spot_picker/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS submissions (
	id          TEXT PRIMARY KEY,
	place_id    TEXT,
	place_name  TEXT NOT NULL,
	lat         REAL NOT NULL,
	lng         REAL NOT NULL,
	files       INTEGER NOT NULL DEFAULT 0,
	outcome     TEXT NOT NULL,
	http_status INTEGER NOT NULL DEFAULT 0,
	message     TEXT,
	created_at  DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_submissions_created ON submissions(created_at, id);
`

// Journal stores submission attempts in a local SQLite file. It is meant for
// development and single-instance deployments.
type Journal struct{ db *sql.DB }

// Open opens or creates the database at path in WAL mode.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create submissions table: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Record(ctx context.Context, e domain.JournalEntry) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO submissions
			(id, place_id, place_name, lat, lng, files, outcome, http_status, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.PlaceID, e.PlaceName, e.Lat, e.Lng, e.Files,
		string(e.Outcome), e.HTTPStatus, e.Message, e.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert submission %s: %w", e.ID, err)
	}
	return nil
}

func (j *Journal) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, COALESCE(place_id, ''), place_name, lat, lng, files, outcome, http_status,
		       COALESCE(message, ''), created_at
		FROM submissions
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var out []domain.JournalEntry
	for rows.Next() {
		var (
			e       domain.JournalEntry
			outcome string
		)
		if err := rows.Scan(&e.ID, &e.PlaceID, &e.PlaceName, &e.Lat, &e.Lng, &e.Files,
			&outcome, &e.HTTPStatus, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		e.Outcome = domain.Outcome(outcome)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *Journal) Close() error { return j.db.Close() }
