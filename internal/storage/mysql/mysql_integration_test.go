//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"spot_picker/internal/domain"
	mysqljournal "spot_picker/internal/storage/mysql"
)

func startMySQL(t *testing.T) string {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}
	pool.MaxWait = 2 * time.Minute

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=spots",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/spots?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))
	if err := pool.Retry(func() error {
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	return dsn
}

func TestJournal_MySQL_RecordAndRecent(t *testing.T) {
	dsn := startMySQL(t)
	ctx := context.Background()

	j, err := mysqljournal.Open(ctx, dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })

	// schema creation is idempotent
	if err := j.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema again: %v", err)
	}

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	entries := []domain.JournalEntry{
		{ID: "00000000-0000-0000-0000-000000000001", PlaceID: "louvre", PlaceName: "Louvre Museum",
			Lat: 48.8606, Lng: 2.3376, Files: 2, Outcome: domain.OutcomeSucceeded, HTTPStatus: 200, Message: "ok", CreatedAt: base},
		{ID: "00000000-0000-0000-0000-000000000002", PlaceName: domain.ManualPlaceName,
			Lat: 48.85, Lng: 2.35, Outcome: domain.OutcomeFailed, HTTPStatus: 500, Message: "boom", CreatedAt: base.Add(time.Minute)},
	}
	for _, e := range entries {
		if err := j.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := j.Record(ctx, entries[0]); err != nil {
		t.Fatalf("Record duplicate: %v", err)
	}

	got, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 entries, got %d", len(got))
	}
	if got[0].ID != entries[1].ID || got[0].Message != "boom" || got[0].PlaceID != "" {
		t.Fatalf("unexpected newest entry: %+v", got[0])
	}
	if got[1].Outcome != domain.OutcomeSucceeded || got[1].Files != 2 || !got[1].CreatedAt.Equal(base) {
		t.Fatalf("unexpected oldest entry: %+v", got[1])
	}

	one, err := j.Recent(ctx, 1)
	if err != nil || len(one) != 1 {
		t.Fatalf("Recent(1) = %v, %v", one, err)
	}
}
