package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/service-order-scheduler/internal/persistence"
)

const employeeColumns = `id, name, username, password_hash, work_schedule, created_at, updated_at`

// EmployeeRepository implements persistence.EmployeeRepository using SQLite.
type EmployeeRepository struct {
	pool *ConnectionPool
	now  func() time.Time
}

// NewEmployeeRepository creates a new SQLite employee repository.
func NewEmployeeRepository(pool *ConnectionPool) *EmployeeRepository {
	return &EmployeeRepository{pool: pool, now: time.Now}
}

// CreateEmployee inserts the employee and its department memberships.
func (r *EmployeeRepository) CreateEmployee(ctx context.Context, employee persistence.Employee) (persistence.Employee, error) {
	employee = normalizeEmployee(employee)
	if employee.Name == "" || employee.Username == "" || employee.PasswordHash == "" {
		return persistence.Employee{}, persistence.ErrConstraintViolation
	}

	now := r.now().UTC().Truncate(time.Second)
	employee.CreatedAt = now
	employee.UpdatedAt = now

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO employees (name, username, password_hash, work_schedule, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			employee.Name, employee.Username, employee.PasswordHash, employee.WorkSchedule, formatTime(now), formatTime(now),
		)
		if err != nil {
			return mapError(err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("sqlite: employee id: %w", err)
		}
		employee.ID = int(id)
		return replaceMemberships(ctx, tx, employee.ID, employee.DepartmentIDs)
	})
	if err != nil {
		return persistence.Employee{}, err
	}
	return employee, nil
}

// UpdateEmployee replaces the employee's attributes and memberships. An empty
// PasswordHash keeps the stored one.
func (r *EmployeeRepository) UpdateEmployee(ctx context.Context, employee persistence.Employee) (persistence.Employee, error) {
	employee = normalizeEmployee(employee)
	if employee.ID <= 0 || employee.Name == "" || employee.Username == "" {
		return persistence.Employee{}, persistence.ErrConstraintViolation
	}

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE employees
			SET name = ?, username = ?, password_hash = COALESCE(NULLIF(?, ''), password_hash), work_schedule = ?, updated_at = ?
			WHERE id = ?`,
			employee.Name, employee.Username, employee.PasswordHash, employee.WorkSchedule, formatTime(r.now()), employee.ID,
		)
		if err != nil {
			return mapError(err)
		}
		if err := checkAffected(result); err != nil {
			return err
		}
		return replaceMemberships(ctx, tx, employee.ID, employee.DepartmentIDs)
	})
	if err != nil {
		return persistence.Employee{}, err
	}
	return r.GetEmployee(ctx, employee.ID)
}

// GetEmployee retrieves an employee by id.
func (r *EmployeeRepository) GetEmployee(ctx context.Context, id int) (persistence.Employee, error) {
	return r.getOne(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
}

// GetEmployeeByUsername retrieves an employee by username, ignoring case.
func (r *EmployeeRepository) GetEmployeeByUsername(ctx context.Context, username string) (persistence.Employee, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return persistence.Employee{}, persistence.ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+employeeColumns+` FROM employees WHERE username = ?`, username)
}

func (r *EmployeeRepository) getOne(ctx context.Context, query string, arg any) (persistence.Employee, error) {
	employee, err := scanEmployee(r.pool.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return persistence.Employee{}, err
	}
	memberships, err := r.memberships(ctx, []int{employee.ID})
	if err != nil {
		return persistence.Employee{}, err
	}
	employee.DepartmentIDs = memberships[employee.ID]
	return employee, nil
}

// ListEmployees returns employees ordered by id together with the total number of
// matches before pagination.
func (r *EmployeeRepository) ListEmployees(ctx context.Context, filter persistence.EmployeeFilter) ([]persistence.Employee, int, error) {
	where := ""
	args := []any{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		where = ` WHERE name LIKE ? OR username LIKE ?`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	if err := r.pool.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	query := `SELECT ` + employeeColumns + ` FROM employees` + where + ` ORDER BY id`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, max(filter.Offset, 0))
	}

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	employees := make([]persistence.Employee, 0)
	ids := make([]int, 0)
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		employees = append(employees, employee)
		ids = append(ids, employee.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err)
	}
	rows.Close()

	memberships, err := r.memberships(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range employees {
		employees[i].DepartmentIDs = memberships[employees[i].ID]
	}
	return employees, total, nil
}

// DeleteEmployee removes an employee. Memberships and service order collaborator
// rows cascade.
func (r *EmployeeRepository) DeleteEmployee(ctx context.Context, id int) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return checkAffected(result)
}

func (r *EmployeeRepository) memberships(ctx context.Context, ids []int) (map[int][]int, error) {
	out := make(map[int][]int, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders, args := inClause(ids)
	rows, err := r.pool.db.QueryContext(ctx,
		`SELECT employee_id, department_id FROM employee_departments WHERE employee_id IN (`+placeholders+`) ORDER BY employee_id, position`,
		args...,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var employeeID, departmentID int
		if err := rows.Scan(&employeeID, &departmentID); err != nil {
			return nil, mapError(err)
		}
		out[employeeID] = append(out[employeeID], departmentID)
	}
	return out, mapError(rows.Err())
}

func replaceMemberships(ctx context.Context, tx *sql.Tx, employeeID int, departmentIDs []int) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM employee_departments WHERE employee_id = ?`, employeeID); err != nil {
		return mapError(err)
	}
	for position, departmentID := range departmentIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO employee_departments (employee_id, department_id, position) VALUES (?, ?, ?)`,
			employeeID, departmentID, position,
		); err != nil {
			return mapError(err)
		}
	}
	return nil
}

func normalizeEmployee(employee persistence.Employee) persistence.Employee {
	employee.Name = strings.TrimSpace(employee.Name)
	employee.Username = strings.TrimSpace(employee.Username)
	if strings.TrimSpace(employee.WorkSchedule) == "" {
		employee.WorkSchedule = "{}"
	}
	employee.DepartmentIDs = uniqueInts(employee.DepartmentIDs)
	return employee
}

func scanEmployee(row rowScanner) (persistence.Employee, error) {
	var employee persistence.Employee
	var createdAt, updatedAt string
	if err := row.Scan(
		&employee.ID,
		&employee.Name,
		&employee.Username,
		&employee.PasswordHash,
		&employee.WorkSchedule,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Employee{}, mapError(err)
	}
	var err error
	if employee.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Employee{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if employee.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Employee{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return employee, nil
}

func inClause(ids []int) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","), args
}

func uniqueInts(values []int) []int {
	seen := make(map[int]struct{}, len(values))
	out := make([]int, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
