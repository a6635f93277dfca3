package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/example/service-order-scheduler/internal/scheduler"
)

// DepartmentBackend captures the backend writes needed by the service.
type DepartmentBackend interface {
	CreateDepartment(ctx context.Context, input DepartmentInput) (scheduler.Department, error)
	UpdateDepartment(ctx context.Context, id int, input DepartmentInput) (scheduler.Department, error)
	DeleteDepartment(ctx context.Context, id int) error
}

// DepartmentService manages the department catalog.
type DepartmentService struct {
	backend   DepartmentBackend
	snapshots SnapshotStore
	refresher SnapshotRefresher
	logger    *slog.Logger
}

// NewDepartmentService constructs a department service with the provided dependencies.
func NewDepartmentService(backend DepartmentBackend, snapshots SnapshotStore, refresher SnapshotRefresher) *DepartmentService {
	return NewDepartmentServiceWithLogger(backend, snapshots, refresher, nil)
}

// NewDepartmentServiceWithLogger constructs a department service with a specified logger.
func NewDepartmentServiceWithLogger(backend DepartmentBackend, snapshots SnapshotStore, refresher SnapshotRefresher, logger *slog.Logger) *DepartmentService {
	return &DepartmentService{backend: backend, snapshots: snapshots, refresher: refresher, logger: defaultLogger(logger)}
}

func (s *DepartmentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "DepartmentService", operation, attrs...)
}

// ListDepartments returns the loaded departments for any authenticated principal.
func (s *DepartmentService) ListDepartments(ctx context.Context, principal Principal) ([]scheduler.Department, error) {
	if s == nil {
		return nil, nilServiceError("DepartmentService")
	}
	if !principal.Authenticated() {
		return nil, ErrUnauthorized
	}
	departments := currentSnapshot(s.snapshots).Departments
	if departments == nil {
		departments = []scheduler.Department{}
	}
	return departments, nil
}

// CreateDepartment creates a department whose name is unique among the loaded ones.
func (s *DepartmentService) CreateDepartment(ctx context.Context, principal Principal, input DepartmentInput) (department scheduler.Department, err error) {
	if s == nil {
		err = nilServiceError("DepartmentService")
		return
	}
	if s.backend == nil {
		err = errors.New("department backend not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateDepartment", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create department", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("department_id", department.ID).InfoContext(ctx, "department created")
	}()

	if err = requireAdmin(principal); err != nil {
		return
	}
	name, vErr := validateDepartmentName(input.Name)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if nameTaken(currentSnapshot(s.snapshots), name, 0) {
		err = ErrAlreadyExists
		return
	}

	department, err = s.backend.CreateDepartment(ctx, DepartmentInput{Name: name})
	if errors.Is(err, ErrNotEchoed) {
		for _, candidate := range resync(ctx, logger, s.refresher, s.snapshots).Departments {
			if strings.EqualFold(candidate.Name, name) {
				department, err = candidate, nil
				return
			}
		}
		err = notVisible("department")
		return
	}
	if err != nil {
		return
	}

	publish(s.snapshots, func(snap scheduler.Snapshot) scheduler.Snapshot { return snap.WithDepartment(department) })
	return
}

// UpdateDepartment renames a department.
func (s *DepartmentService) UpdateDepartment(ctx context.Context, principal Principal, id int, input DepartmentInput) (department scheduler.Department, err error) {
	if s == nil {
		err = nilServiceError("DepartmentService")
		return
	}
	if s.backend == nil {
		err = errors.New("department backend not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateDepartment",
		"principal_id", principal.UserID,
		"department_id", id,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update department", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "department updated")
	}()

	if err = requireAdmin(principal); err != nil {
		return
	}
	if err = requireID("id", id); err != nil {
		return
	}
	name, vErr := validateDepartmentName(input.Name)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if nameTaken(currentSnapshot(s.snapshots), name, id) {
		err = ErrAlreadyExists
		return
	}

	department, err = s.backend.UpdateDepartment(ctx, id, DepartmentInput{Name: name})
	if errors.Is(err, ErrNotEchoed) {
		err = nil
		department = scheduler.Department{ID: id, Name: name}
	}
	if err != nil {
		return
	}

	publish(s.snapshots, func(snap scheduler.Snapshot) scheduler.Snapshot { return snap.WithDepartment(department) })
	return
}

// DeleteDepartment removes the department. Orders still referencing it keep their assignments
// and display the unknown department placeholder.
func (s *DepartmentService) DeleteDepartment(ctx context.Context, principal Principal, id int) error {
	if s == nil {
		return nilServiceError("DepartmentService")
	}
	if err := requireAdmin(principal); err != nil {
		return err
	}
	if err := requireID("id", id); err != nil {
		return err
	}
	if s.backend == nil {
		return errors.New("department backend not configured")
	}

	logger := s.loggerWith(ctx, "DeleteDepartment",
		"principal_id", principal.UserID,
		"department_id", id,
	)

	if err := s.backend.DeleteDepartment(ctx, id); err != nil {
		logger.ErrorContext(ctx, "failed to delete department", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	publish(s.snapshots, func(snap scheduler.Snapshot) scheduler.Snapshot { return snap.WithoutDepartment(id) })
	logger.InfoContext(ctx, "department deleted")
	return nil
}

func validateDepartmentName(raw string) (string, *ValidationError) {
	vErr := &ValidationError{}
	name := strings.TrimSpace(raw)
	if name == "" {
		vErr.add("name", "is required")
	}
	return name, vErr
}

func nameTaken(snap scheduler.Snapshot, name string, exceptID int) bool {
	for _, department := range snap.Departments {
		if department.ID != exceptID && strings.EqualFold(strings.TrimSpace(department.Name), name) {
			return true
		}
	}
	return false
}
