package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"spot_picker/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Journal stores submission attempts in MySQL.
type Journal struct{ db *sql.DB }

func New(db *sql.DB) *Journal { return &Journal{db: db} }

// Open connects to dsn, waits for the server and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*Journal, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	j := New(db)
	if err := j.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) EnsureSchema(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, createSubmissionsSQL); err != nil {
		return fmt.Errorf("create submissions table: %w", err)
	}
	return nil
}

func (j *Journal) Record(ctx context.Context, e domain.JournalEntry) error {
	_, err := j.db.ExecContext(ctx, insertSubmissionSQL,
		e.ID,
		valStr(e.PlaceID),
		e.PlaceName,
		e.Lat,
		e.Lng,
		e.Files,
		string(e.Outcome),
		e.HTTPStatus,
		valStr(e.Message),
		e.CreatedAt.UTC(),
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
	rows, err := j.db.QueryContext(ctx, recentSubmissionsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.JournalEntry, 0, limit)
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
