package migration

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"time"
)

// Manager applies pending migrations from a source directory.
type Manager struct {
	exec   *executor
	fsys   fs.FS
	dir    string
	logger *slog.Logger
}

// NewManager constructs a manager reading migrations from dir within fsys.
func NewManager(db *sql.DB, fsys fs.FS, dir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		exec:   &executor{db: db, now: time.Now},
		fsys:   fsys,
		dir:    dir,
		logger: logger.With("component", "migration"),
	}
}

// Run applies every pending migration in version order. It refuses to continue when an
// applied migration's file changed since it ran.
func (m *Manager) Run(ctx context.Context) error {
	status, err := m.Status(ctx)
	if err != nil {
		return err
	}
	if len(status.Pending) == 0 {
		m.logger.DebugContext(ctx, "schema up to date", "version", status.CurrentVersion)
		return nil
	}

	for _, migration := range status.Pending {
		if err := m.exec.apply(ctx, migration); err != nil {
			m.logger.ErrorContext(ctx, "migration failed", "version", migration.Version, "name", migration.Name, "error", err)
			return err
		}
		m.logger.InfoContext(ctx, "migration applied", "version", migration.Version, "name", migration.Name)
	}
	return nil
}

// Status compares the source files with the schema_migrations table.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	if err := m.exec.initVersionTable(ctx); err != nil {
		return Status{}, err
	}

	available, err := Load(m.fsys, m.dir)
	if err != nil {
		return Status{}, err
	}
	applied, err := m.exec.applied(ctx)
	if err != nil {
		return Status{}, err
	}

	checksums := make(map[int]string, len(applied))
	status := Status{Applied: applied}
	for _, item := range applied {
		checksums[item.Version] = item.Checksum
		if item.Version > status.CurrentVersion {
			status.CurrentVersion = item.Version
		}
	}

	for _, migration := range available {
		sum, ok := checksums[migration.Version]
		if !ok {
			status.Pending = append(status.Pending, migration)
			continue
		}
		if sum != migration.Checksum {
			return Status{}, wrap(migration, "verify", fmt.Errorf("%w: file changed after it was applied", ErrChecksumMismatch))
		}
	}
	return status, nil
}
