package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/example/service-order-scheduler/internal/scheduler"
	"github.com/example/service-order-scheduler/internal/workschedule"
)

// EmployeeBackend captures the backend writes needed by the service.
type EmployeeBackend interface {
	CreateEmployee(ctx context.Context, input EmployeeInput) (scheduler.Employee, error)
	UpdateEmployee(ctx context.Context, id int, input EmployeeInput) (scheduler.Employee, error)
	DeleteEmployee(ctx context.Context, id int) error
}

// EmployeeService validates employee writes, forwards them to the backend and
// publishes confirmed results into the snapshot.
type EmployeeService struct {
	backend   EmployeeBackend
	snapshots SnapshotStore
	refresher SnapshotRefresher
	logger    *slog.Logger
}

// NewEmployeeService constructs an employee service with the provided dependencies.
func NewEmployeeService(backend EmployeeBackend, snapshots SnapshotStore, refresher SnapshotRefresher) *EmployeeService {
	return NewEmployeeServiceWithLogger(backend, snapshots, refresher, nil)
}

// NewEmployeeServiceWithLogger constructs an employee service with a specified logger.
func NewEmployeeServiceWithLogger(backend EmployeeBackend, snapshots SnapshotStore, refresher SnapshotRefresher, logger *slog.Logger) *EmployeeService {
	return &EmployeeService{backend: backend, snapshots: snapshots, refresher: refresher, logger: defaultLogger(logger)}
}

func (s *EmployeeService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EmployeeService", operation, attrs...)
}

// ListEmployees returns the loaded employees.
func (s *EmployeeService) ListEmployees(ctx context.Context, principal Principal) ([]scheduler.Employee, error) {
	if s == nil {
		return nil, nilServiceError("EmployeeService")
	}
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	employees := currentSnapshot(s.snapshots).Employees
	if employees == nil {
		employees = []scheduler.Employee{}
	}
	return employees, nil
}

// CreateEmployee validates input and creates the employee in the backend.
func (s *EmployeeService) CreateEmployee(ctx context.Context, principal Principal, input EmployeeInput) (employee scheduler.Employee, err error) {
	if s == nil {
		err = nilServiceError("EmployeeService")
		return
	}
	if s.backend == nil {
		err = errors.New("employee backend not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateEmployee", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create employee", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("employee_id", employee.ID).InfoContext(ctx, "employee created")
	}()

	if err = requireAdmin(principal); err != nil {
		return
	}

	normalized, vErr := validateEmployeeInput(input, true)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if existing, ok := currentSnapshot(s.snapshots).EmployeeByUsername(normalized.Username); ok {
		logger.DebugContext(ctx, "username already loaded", "employee_id", existing.ID)
		err = ErrAlreadyExists
		return
	}

	employee, err = s.backend.CreateEmployee(ctx, normalized)
	if errors.Is(err, ErrNotEchoed) {
		found, ok := resync(ctx, logger, s.refresher, s.snapshots).EmployeeByUsername(normalized.Username)
		if !ok {
			err = notVisible("employee")
			return
		}
		employee, err = found, nil
		return
	}
	if err != nil {
		return
	}

	publish(s.snapshots, func(snap scheduler.Snapshot) scheduler.Snapshot { return snap.WithEmployee(employee) })
	return
}

// UpdateEmployee validates input and replaces the employee's attributes in the backend.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, principal Principal, id int, input EmployeeInput) (employee scheduler.Employee, err error) {
	if s == nil {
		err = nilServiceError("EmployeeService")
		return
	}
	if s.backend == nil {
		err = errors.New("employee backend not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateEmployee",
		"principal_id", principal.UserID,
		"employee_id", id,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update employee", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "employee updated")
	}()

	if err = requireAdmin(principal); err != nil {
		return
	}
	if err = requireID("id", id); err != nil {
		return
	}

	normalized, vErr := validateEmployeeInput(input, false)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if existing, ok := currentSnapshot(s.snapshots).EmployeeByUsername(normalized.Username); ok && existing.ID != id {
		err = ErrAlreadyExists
		return
	}

	employee, err = s.backend.UpdateEmployee(ctx, id, normalized)
	if errors.Is(err, ErrNotEchoed) {
		err = nil
		snap := resync(ctx, logger, s.refresher, s.snapshots)
		if found, ok := snap.Employee(id); ok {
			employee = found
			return
		}
		employee = employeeFromInput(id, normalized, snap.Labels())
		publish(s.snapshots, func(snap scheduler.Snapshot) scheduler.Snapshot { return snap.WithEmployee(employee) })
		return
	}
	if err != nil {
		return
	}

	publish(s.snapshots, func(snap scheduler.Snapshot) scheduler.Snapshot { return snap.WithEmployee(employee) })
	return
}

// DeleteEmployee removes the employee in the backend, then from the snapshot.
func (s *EmployeeService) DeleteEmployee(ctx context.Context, principal Principal, id int) error {
	if s == nil {
		return nilServiceError("EmployeeService")
	}
	if err := requireAdmin(principal); err != nil {
		return err
	}
	if err := requireID("id", id); err != nil {
		return err
	}
	if s.backend == nil {
		return errors.New("employee backend not configured")
	}

	logger := s.loggerWith(ctx, "DeleteEmployee",
		"principal_id", principal.UserID,
		"employee_id", id,
	)

	if err := s.backend.DeleteEmployee(ctx, id); err != nil {
		logger.ErrorContext(ctx, "failed to delete employee", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	publish(s.snapshots, func(snap scheduler.Snapshot) scheduler.Snapshot { return snap.WithoutEmployee(id) })
	logger.InfoContext(ctx, "employee deleted")
	return nil
}

func validateEmployeeInput(input EmployeeInput, creating bool) (EmployeeInput, *ValidationError) {
	vErr := &ValidationError{}
	out := EmployeeInput{
		Name:     strings.TrimSpace(input.Name),
		Username: strings.TrimSpace(input.Username),
		Password: input.Password,
	}

	if out.Name == "" {
		vErr.add("name", "is required")
	}
	switch {
	case out.Username == "":
		vErr.add("username", "is required")
	case strings.ContainsAny(out.Username, " \t/"):
		vErr.add("username", "must not contain spaces or slashes")
	}
	if creating && strings.TrimSpace(out.Password) == "" {
		vErr.add("password", "is required")
	}

	ids, invalid := uniquePositive(input.DepartmentIDs)
	if len(invalid) > 0 {
		vErr.add("departments", "must contain positive department ids")
	}
	out.DepartmentIDs = ids

	out.WorkSchedule = workschedule.Normalize(input.WorkSchedule)
	vErr.merge("", workschedule.Validate(out.WorkSchedule))

	return out, vErr
}

func employeeFromInput(id int, input EmployeeInput, labels *scheduler.Labels) scheduler.Employee {
	names := make([]string, 0, len(input.DepartmentIDs))
	for _, departmentID := range input.DepartmentIDs {
		names = append(names, labels.DepartmentName(departmentID))
	}
	return scheduler.Employee{
		ID:           id,
		Name:         input.Name,
		Username:     input.Username,
		Departments:  names,
		WorkSchedule: input.WorkSchedule,
	}
}
