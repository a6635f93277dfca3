package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/service-order-scheduler/internal/persistence"
)

// DepartmentRepository implements persistence.DepartmentRepository using SQLite.
type DepartmentRepository struct {
	pool *ConnectionPool
	now  func() time.Time
}

// NewDepartmentRepository creates a new SQLite department repository.
func NewDepartmentRepository(pool *ConnectionPool) *DepartmentRepository {
	return &DepartmentRepository{pool: pool, now: time.Now}
}

// CreateDepartment inserts a department and returns it with its assigned id.
func (r *DepartmentRepository) CreateDepartment(ctx context.Context, department persistence.Department) (persistence.Department, error) {
	department.Name = strings.TrimSpace(department.Name)
	if department.Name == "" {
		return persistence.Department{}, persistence.ErrConstraintViolation
	}

	now := r.now().UTC().Truncate(time.Second)
	department.CreatedAt = now
	department.UpdatedAt = now

	result, err := r.pool.db.ExecContext(ctx,
		`INSERT INTO departments (name, created_at, updated_at) VALUES (?, ?, ?)`,
		department.Name, formatTime(now), formatTime(now),
	)
	if err != nil {
		return persistence.Department{}, mapError(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Department{}, fmt.Errorf("sqlite: department id: %w", err)
	}
	department.ID = int(id)
	return department, nil
}

// UpdateDepartment renames an existing department.
func (r *DepartmentRepository) UpdateDepartment(ctx context.Context, department persistence.Department) (persistence.Department, error) {
	department.Name = strings.TrimSpace(department.Name)
	if department.ID <= 0 || department.Name == "" {
		return persistence.Department{}, persistence.ErrConstraintViolation
	}

	result, err := r.pool.db.ExecContext(ctx,
		`UPDATE departments SET name = ?, updated_at = ? WHERE id = ?`,
		department.Name, formatTime(r.now()), department.ID,
	)
	if err != nil {
		return persistence.Department{}, mapError(err)
	}
	if err := checkAffected(result); err != nil {
		return persistence.Department{}, err
	}
	return r.GetDepartment(ctx, department.ID)
}

// GetDepartment retrieves a department by id.
func (r *DepartmentRepository) GetDepartment(ctx context.Context, id int) (persistence.Department, error) {
	row := r.pool.db.QueryRowContext(ctx, `SELECT id, name, created_at, updated_at FROM departments WHERE id = ?`, id)
	return scanDepartment(row)
}

// ListDepartments returns every department ordered by name.
func (r *DepartmentRepository) ListDepartments(ctx context.Context) ([]persistence.Department, error) {
	rows, err := r.pool.db.QueryContext(ctx, `SELECT id, name, created_at, updated_at FROM departments ORDER BY name COLLATE NOCASE, id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	departments := make([]persistence.Department, 0)
	for rows.Next() {
		department, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		departments = append(departments, department)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return departments, nil
}

// DeleteDepartment removes a department. Memberships cascade; service order
// assignments keep the dangling department id.
func (r *DepartmentRepository) DeleteDepartment(ctx context.Context, id int) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM departments WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return checkAffected(result)
}

func scanDepartment(row rowScanner) (persistence.Department, error) {
	var department persistence.Department
	var createdAt, updatedAt string
	if err := row.Scan(&department.ID, &department.Name, &createdAt, &updatedAt); err != nil {
		return persistence.Department{}, mapError(err)
	}
	var err error
	if department.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Department{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if department.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Department{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return department, nil
}
