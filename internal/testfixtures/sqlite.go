package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/service-order-scheduler/internal/persistence"
	"github.com/example/service-order-scheduler/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Pool        *sqlite.ConnectionPool
	Employees   persistence.EmployeeRepository
	Departments persistence.DepartmentRepository
	Orders      persistence.ServiceOrderRepository
	Sessions    persistence.SessionRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens a migrated database in a temporary directory. The
// harness closes itself through tb.Cleanup; calling Close earlier is allowed.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "scheduler.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pool, err := sqlite.Open(context.Background(), sqlite.DefaultConfig(path), logger)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	harness := &SQLiteHarness{
		Pool:        pool,
		Employees:   sqlite.NewEmployeeRepository(pool),
		Departments: sqlite.NewDepartmentRepository(pool),
		Orders:      sqlite.NewServiceOrderRepository(pool),
		Sessions:    sqlite.NewSessionRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// SeedDepartments inserts the fixtures and returns the stored rows.
func (h *SQLiteHarness) SeedDepartments(tb testing.TB, fixtures ...DepartmentFixture) []persistence.Department {
	tb.Helper()
	out := make([]persistence.Department, 0, len(fixtures))
	for _, fixture := range fixtures {
		department := fixture.Persistence()
		department.ID = 0
		created, err := h.Departments.CreateDepartment(context.Background(), department)
		if err != nil {
			tb.Fatalf("seed department %q: %v", fixture.Name, err)
		}
		out = append(out, created)
	}
	return out
}

// SeedEmployees inserts the fixtures and returns the stored rows.
func (h *SQLiteHarness) SeedEmployees(tb testing.TB, fixtures ...EmployeeFixture) []persistence.Employee {
	tb.Helper()
	out := make([]persistence.Employee, 0, len(fixtures))
	for _, fixture := range fixtures {
		employee := fixture.Persistence()
		employee.ID = 0
		created, err := h.Employees.CreateEmployee(context.Background(), employee)
		if err != nil {
			tb.Fatalf("seed employee %q: %v", fixture.Username, err)
		}
		out = append(out, created)
	}
	return out
}
