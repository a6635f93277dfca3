package migration

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("sorts by numeric version and ignores other files", func(t *testing.T) {
		t.Parallel()

		fsys := fstest.MapFS{
			"m/010_later.sql":          {Data: []byte("CREATE TABLE b (id INTEGER);")},
			"m/002_initial_schema.sql": {Data: []byte("-- comment\nCREATE TABLE a (id INTEGER);")},
			"m/README.md":              {Data: []byte("notes")},
		}
		migrations, err := Load(fsys, "m")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(migrations) != 2 || migrations[0].Version != 2 || migrations[1].Version != 10 {
			t.Fatalf("unexpected order: %+v", migrations)
		}
		if migrations[0].Description != "initial schema" || migrations[0].Checksum == "" {
			t.Fatalf("unexpected metadata: %+v", migrations[0])
		}
	})

	t.Run("rejects bad names, duplicates and empty files", func(t *testing.T) {
		t.Parallel()

		cases := map[string]struct {
			fsys fstest.MapFS
			want error
		}{
			"bad name": {
				fsys: fstest.MapFS{"m/initial.sql": {Data: []byte("SELECT 1;")}},
				want: ErrInvalidMigrationFile,
			},
			"duplicate": {
				fsys: fstest.MapFS{
					"m/001_a.sql": {Data: []byte("SELECT 1;")},
					"m/1_b.sql":   {Data: []byte("SELECT 1;")},
				},
				want: ErrDuplicateVersion,
			},
			"empty": {
				fsys: fstest.MapFS{"m/001_a.sql": {Data: []byte("-- nothing here\n")}},
				want: ErrEmptyMigration,
			},
		}
		for name, tc := range cases {
			if _, err := Load(tc.fsys, "m"); !errors.Is(err, tc.want) {
				t.Fatalf("%s: expected %v, got %v", name, tc.want, err)
			}
		}
	})
}

func TestStatements(t *testing.T) {
	t.Parallel()

	got := Statements("-- header\nCREATE TABLE a (id INTEGER);\n\n  ;INSERT INTO a VALUES (1);")
	if len(got) != 2 || got[0] != "CREATE TABLE a (id INTEGER)" || got[1] != "INSERT INTO a VALUES (1)" {
		t.Fatalf("unexpected statements %q", got)
	}
}

func TestManager_Run(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"m/001_items.sql": {Data: []byte("CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT);")},
		"m/002_seed.sql":  {Data: []byte("INSERT INTO items (name) VALUES ('a');\nINSERT INTO items (name) VALUES ('b');")},
	}
	manager := NewManager(db, fsys, "m", quietLogger())

	if err := manager.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// A second run applies nothing.
	if err := manager.Run(ctx); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		t.Fatalf("count items: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected seed to run once, got %d rows", count)
	}

	status, err := manager.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.CurrentVersion != 2 || len(status.Pending) != 0 || len(status.Applied) != 2 {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestManager_RunRollsBackFailedMigration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"m/001_items.sql":  {Data: []byte("CREATE TABLE items (id INTEGER PRIMARY KEY);")},
		"m/002_broken.sql": {Data: []byte("CREATE TABLE other (id INTEGER);\nINSERT INTO missing VALUES (1);")},
	}
	manager := NewManager(db, fsys, "m", quietLogger())

	err := manager.Run(ctx)
	var mErr *Error
	if !errors.As(err, &mErr) || mErr.Version != 2 {
		t.Fatalf("expected migration error for version 2, got %v", err)
	}

	var name string
	err = db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'other'`).Scan(&name)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected table from failed migration to be rolled back, got %q (%v)", name, err)
	}

	status, err := manager.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.CurrentVersion != 1 || len(status.Pending) != 1 {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestManager_DetectsChangedFiles(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	original := fstest.MapFS{"m/001_items.sql": {Data: []byte("CREATE TABLE items (id INTEGER);")}}
	if err := NewManager(db, original, "m", quietLogger()).Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	edited := fstest.MapFS{"m/001_items.sql": {Data: []byte("CREATE TABLE items (id INTEGER, name TEXT);")}}
	if err := NewManager(db, edited, "m", quietLogger()).Run(ctx); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}
