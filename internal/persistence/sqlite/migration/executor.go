package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const versionTableDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TEXT NOT NULL,
	execution_time_ms INTEGER NOT NULL DEFAULT 0
)`

type executor struct {
	db  *sql.DB
	now func() time.Time
}

func (e *executor) initVersionTable(ctx context.Context) error {
	if _, err := e.db.ExecContext(ctx, versionTableDDL); err != nil {
		return fmt.Errorf("migration: create schema_migrations: %w", err)
	}
	return nil
}

// apply runs every statement of m and records it within a single transaction.
func (e *executor) apply(ctx context.Context, m Migration) (err error) {
	started := e.now()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(m, "begin transaction", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
			}
		}
	}()

	for i, stmt := range Statements(m.SQL) {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return wrap(m, fmt.Sprintf("execute statement %d", i+1), err)
		}
	}

	elapsed := e.now().Sub(started)
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, checksum, applied_at, execution_time_ms) VALUES (?, ?, ?, ?, ?)`,
		m.Version, m.Name, m.Checksum, started.UTC().Format(time.RFC3339), elapsed.Milliseconds(),
	); err != nil {
		return wrap(m, "record", err)
	}

	if err = tx.Commit(); err != nil {
		return wrap(m, "commit", err)
	}
	return nil
}

func (e *executor) applied(ctx context.Context) ([]AppliedMigration, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT version, checksum, applied_at, execution_time_ms FROM schema_migrations ORDER BY version ASC`)
	if err != nil {
		return nil, fmt.Errorf("migration: list applied: %w", err)
	}
	defer rows.Close()

	var out []AppliedMigration
	for rows.Next() {
		var (
			item      AppliedMigration
			appliedAt string
			elapsedMS int64
		)
		if err := rows.Scan(&item.Version, &item.Checksum, &appliedAt, &elapsedMS); err != nil {
			return nil, fmt.Errorf("migration: scan applied: %w", err)
		}
		if item.AppliedAt, err = time.Parse(time.RFC3339, appliedAt); err != nil {
			return nil, fmt.Errorf("migration: parse applied_at of %d: %w", item.Version, err)
		}
		item.ExecutionTime = time.Duration(elapsedMS) * time.Millisecond
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("migration: iterate applied: %w", err)
	}
	return out, nil
}
