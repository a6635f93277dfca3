package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/example/service-order-scheduler/internal/persistence"
)

// ServiceOrderRepository implements persistence.ServiceOrderRepository using SQLite.
type ServiceOrderRepository struct {
	pool *ConnectionPool
	now  func() time.Time
}

// NewServiceOrderRepository creates a new SQLite service order repository.
func NewServiceOrderRepository(pool *ConnectionPool) *ServiceOrderRepository {
	return &ServiceOrderRepository{pool: pool, now: time.Now}
}

// CreateServiceOrder inserts the order with its assignments and collaborators.
func (r *ServiceOrderRepository) CreateServiceOrder(ctx context.Context, order persistence.ServiceOrder) (persistence.ServiceOrder, error) {
	order.OSNumber = strings.TrimSpace(order.OSNumber)
	if order.OSNumber == "" {
		return persistence.ServiceOrder{}, persistence.ErrConstraintViolation
	}
	days, err := encodeDays(order.ServiceDays)
	if err != nil {
		return persistence.ServiceOrder{}, err
	}

	now := r.now().UTC().Truncate(time.Second)
	var id int
	err = r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO service_orders (os_number, service_days, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			order.OSNumber, days, formatTime(now), formatTime(now),
		)
		if err != nil {
			return mapError(err)
		}
		lastID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("sqlite: service order id: %w", err)
		}
		id = int(lastID)
		return insertAssignments(ctx, tx, id, order.Assignments)
	})
	if err != nil {
		return persistence.ServiceOrder{}, err
	}
	return r.GetServiceOrder(ctx, id)
}

// UpdateServiceOrder replaces the order's number, days and complete assignment list
// in one transaction.
func (r *ServiceOrderRepository) UpdateServiceOrder(ctx context.Context, order persistence.ServiceOrder) (persistence.ServiceOrder, error) {
	order.OSNumber = strings.TrimSpace(order.OSNumber)
	if order.ID <= 0 || order.OSNumber == "" {
		return persistence.ServiceOrder{}, persistence.ErrConstraintViolation
	}
	days, err := encodeDays(order.ServiceDays)
	if err != nil {
		return persistence.ServiceOrder{}, err
	}

	err = r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE service_orders SET os_number = ?, service_days = ?, updated_at = ? WHERE id = ?`,
			order.OSNumber, days, formatTime(r.now()), order.ID,
		)
		if err != nil {
			return mapError(err)
		}
		if err := checkAffected(result); err != nil {
			return err
		}
		// Collaborator rows cascade from their assignment.
		if _, err := tx.ExecContext(ctx, `DELETE FROM service_order_departments WHERE service_order_id = ?`, order.ID); err != nil {
			return mapError(err)
		}
		return insertAssignments(ctx, tx, order.ID, order.Assignments)
	})
	if err != nil {
		return persistence.ServiceOrder{}, err
	}
	return r.GetServiceOrder(ctx, order.ID)
}

// GetServiceOrder retrieves a service order by id.
func (r *ServiceOrderRepository) GetServiceOrder(ctx context.Context, id int) (persistence.ServiceOrder, error) {
	order, err := scanServiceOrder(r.pool.db.QueryRowContext(ctx,
		`SELECT id, os_number, service_days, created_at, updated_at FROM service_orders WHERE id = ?`, id))
	if err != nil {
		return persistence.ServiceOrder{}, err
	}
	assignments, err := r.assignments(ctx, []int{id})
	if err != nil {
		return persistence.ServiceOrder{}, err
	}
	order.Assignments = assignments[id]
	return order, nil
}

// ListServiceOrders returns every order ordered by id.
func (r *ServiceOrderRepository) ListServiceOrders(ctx context.Context) ([]persistence.ServiceOrder, error) {
	rows, err := r.pool.db.QueryContext(ctx, `SELECT id, os_number, service_days, created_at, updated_at FROM service_orders ORDER BY id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	orders := make([]persistence.ServiceOrder, 0)
	ids := make([]int, 0)
	for rows.Next() {
		order, err := scanServiceOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	rows.Close()

	assignments, err := r.assignments(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Assignments = assignments[orders[i].ID]
	}
	return orders, nil
}

// DeleteServiceOrder removes an order with its assignments.
func (r *ServiceOrderRepository) DeleteServiceOrder(ctx context.Context, id int) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM service_orders WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return checkAffected(result)
}

// assignments loads the assignments of the given orders keyed by order id, each with its
// collaborators in stored order.
func (r *ServiceOrderRepository) assignments(ctx context.Context, orderIDs []int) (map[int][]persistence.Assignment, error) {
	out := make(map[int][]persistence.Assignment, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	placeholders, args := inClause(orderIDs)

	rows, err := r.pool.db.QueryContext(ctx,
		`SELECT d.id, d.service_order_id, d.department_id, d.execution_start, d.execution_end, c.employee_id
		FROM service_order_departments d
		LEFT JOIN service_order_collaborators c ON c.assignment_id = d.id
		WHERE d.service_order_id IN (`+placeholders+`)
		ORDER BY d.service_order_id, d.position, c.position`,
		args...,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var assignment persistence.Assignment
		var orderID int
		var collaborator sql.NullInt64
		if err := rows.Scan(&assignment.ID, &orderID, &assignment.DepartmentID, &assignment.ExecutionStart, &assignment.ExecutionEnd, &collaborator); err != nil {
			return nil, mapError(err)
		}
		list := out[orderID]
		if n := len(list); n == 0 || list[n-1].ID != assignment.ID {
			assignment.CollaboratorIDs = []int{}
			list = append(list, assignment)
		}
		if collaborator.Valid {
			last := &list[len(list)-1]
			last.CollaboratorIDs = append(last.CollaboratorIDs, int(collaborator.Int64))
		}
		out[orderID] = list
	}
	return out, mapError(rows.Err())
}

func insertAssignments(ctx context.Context, tx *sql.Tx, orderID int, assignments []persistence.Assignment) error {
	for position, assignment := range assignments {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO service_order_departments (service_order_id, department_id, position, execution_start, execution_end) VALUES (?, ?, ?, ?, ?)`,
			orderID, assignment.DepartmentID, position, assignment.ExecutionStart, assignment.ExecutionEnd,
		)
		if err != nil {
			return mapError(err)
		}
		assignmentID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("sqlite: assignment id: %w", err)
		}
		for i, employeeID := range uniqueInts(assignment.CollaboratorIDs) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO service_order_collaborators (assignment_id, employee_id, position) VALUES (?, ?, ?)`,
				assignmentID, employeeID, i,
			); err != nil {
				return mapError(err)
			}
		}
	}
	return nil
}

func encodeDays(days []int) (string, error) {
	if days == nil {
		days = []int{}
	}
	raw, err := json.Marshal(days)
	if err != nil {
		return "", fmt.Errorf("sqlite: encode service days: %w", err)
	}
	return string(raw), nil
}

func scanServiceOrder(row rowScanner) (persistence.ServiceOrder, error) {
	var order persistence.ServiceOrder
	var days, createdAt, updatedAt string
	if err := row.Scan(&order.ID, &order.OSNumber, &days, &createdAt, &updatedAt); err != nil {
		return persistence.ServiceOrder{}, mapError(err)
	}
	if err := json.Unmarshal([]byte(days), &order.ServiceDays); err != nil {
		return persistence.ServiceOrder{}, fmt.Errorf("failed to parse service_days of order %d: %w", order.ID, err)
	}
	var err error
	if order.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.ServiceOrder{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if order.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.ServiceOrder{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return order, nil
}
