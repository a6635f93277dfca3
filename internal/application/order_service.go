package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/service-order-scheduler/internal/recurrence"
	"github.com/example/service-order-scheduler/internal/scheduler"
	"github.com/example/service-order-scheduler/internal/workschedule"
)

// ServiceOrderBackend captures the backend writes needed by the service.
type ServiceOrderBackend interface {
	CreateServiceOrder(ctx context.Context, input ServiceOrderInput) (scheduler.ServiceOrder, error)
	UpdateServiceOrder(ctx context.Context, id int, input ServiceOrderInput) (scheduler.ServiceOrder, error)
	DeleteServiceOrder(ctx context.Context, id int) error
}

// ServiceOrderService validates service order writes. Updates always send the
// complete assignment list and service day set.
type ServiceOrderService struct {
	backend   ServiceOrderBackend
	snapshots SnapshotStore
	refresher SnapshotRefresher
	now       func() time.Time
	logger    *slog.Logger
}

// NewServiceOrderService constructs a service order service with the provided dependencies.
func NewServiceOrderService(backend ServiceOrderBackend, snapshots SnapshotStore, refresher SnapshotRefresher, now func() time.Time) *ServiceOrderService {
	return NewServiceOrderServiceWithLogger(backend, snapshots, refresher, now, nil)
}

// NewServiceOrderServiceWithLogger constructs a service order service with a specified logger.
func NewServiceOrderServiceWithLogger(backend ServiceOrderBackend, snapshots SnapshotStore, refresher SnapshotRefresher, now func() time.Time, logger *slog.Logger) *ServiceOrderService {
	if now == nil {
		now = time.Now
	}
	return &ServiceOrderService{backend: backend, snapshots: snapshots, refresher: refresher, now: now, logger: defaultLogger(logger)}
}

func (s *ServiceOrderService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ServiceOrderService", operation, attrs...)
}

// ListServiceOrders returns every loaded order with resolved labels.
func (s *ServiceOrderService) ListServiceOrders(ctx context.Context, principal Principal) ([]OrderCard, error) {
	if s == nil {
		return nil, nilServiceError("ServiceOrderService")
	}
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	snap := currentSnapshot(s.snapshots)
	labels := snap.Labels()
	cards := make([]OrderCard, 0, len(snap.Orders))
	for _, order := range snap.Orders {
		cards = append(cards, newOrderCard(order, labels))
	}
	return cards, nil
}

// CreateServiceOrder validates input and creates the order in the backend.
func (s *ServiceOrderService) CreateServiceOrder(ctx context.Context, principal Principal, input ServiceOrderInput) (card OrderCard, err error) {
	if s == nil {
		err = nilServiceError("ServiceOrderService")
		return
	}
	if s.backend == nil {
		err = errors.New("service order backend not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateServiceOrder", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create service order", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("order_id", card.ID, "os_number", card.OSNumber).InfoContext(ctx, "service order created")
	}()

	if err = requireAdmin(principal); err != nil {
		return
	}

	normalized, vErr := validateServiceOrderInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	before := currentSnapshot(s.snapshots)
	var order scheduler.ServiceOrder
	order, err = s.backend.CreateServiceOrder(ctx, normalized)
	if errors.Is(err, ErrNotEchoed) {
		snap := resync(ctx, logger, s.refresher, s.snapshots)
		found := false
		for _, candidate := range snap.Orders {
			if candidate.OSNumber != normalized.OSNumber || (found && candidate.ID < order.ID) {
				continue
			}
			// OS numbers may repeat; only an order absent before the write is ours.
			if _, existed := before.Order(candidate.ID); existed {
				continue
			}
			order, found = candidate, true
		}
		if !found {
			err = notVisible("service order")
			return
		}
		err = nil
		card = newOrderCard(order, snap.Labels())
		return
	}
	if err != nil {
		return
	}

	snap := currentSnapshot(s.snapshots)
	publish(s.snapshots, func(current scheduler.Snapshot) scheduler.Snapshot {
		snap = current.WithOrder(order)
		return snap
	})
	card = newOrderCard(order, snap.Labels())
	return
}

// UpdateServiceOrder replaces the order's number, service days and complete assignment list.
func (s *ServiceOrderService) UpdateServiceOrder(ctx context.Context, principal Principal, id int, input ServiceOrderInput) (card OrderCard, err error) {
	if s == nil {
		err = nilServiceError("ServiceOrderService")
		return
	}
	if s.backend == nil {
		err = errors.New("service order backend not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateServiceOrder",
		"principal_id", principal.UserID,
		"order_id", id,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update service order", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "service order updated")
	}()

	if err = requireAdmin(principal); err != nil {
		return
	}
	if err = requireID("id", id); err != nil {
		return
	}

	normalized, vErr := validateServiceOrderInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var order scheduler.ServiceOrder
	order, err = s.backend.UpdateServiceOrder(ctx, id, normalized)
	if errors.Is(err, ErrNotEchoed) {
		err = nil
		createdAt := s.now()
		if previous, ok := currentSnapshot(s.snapshots).Order(id); ok {
			createdAt = previous.CreatedAt
		}
		order = orderFromInput(id, normalized, createdAt)
	}
	if err != nil {
		return
	}

	snap := currentSnapshot(s.snapshots)
	publish(s.snapshots, func(current scheduler.Snapshot) scheduler.Snapshot {
		snap = current.WithOrder(order)
		return snap
	})
	card = newOrderCard(order, snap.Labels())
	return
}

// DeleteServiceOrder deletes the order in the backend and removes it from the snapshot
// without re-fetching.
func (s *ServiceOrderService) DeleteServiceOrder(ctx context.Context, principal Principal, id int) error {
	if s == nil {
		return nilServiceError("ServiceOrderService")
	}
	if err := requireAdmin(principal); err != nil {
		return err
	}
	if err := requireID("id", id); err != nil {
		return err
	}
	if s.backend == nil {
		return errors.New("service order backend not configured")
	}

	logger := s.loggerWith(ctx, "DeleteServiceOrder",
		"principal_id", principal.UserID,
		"order_id", id,
	)

	if err := s.backend.DeleteServiceOrder(ctx, id); err != nil {
		logger.ErrorContext(ctx, "failed to delete service order", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	publish(s.snapshots, func(snap scheduler.Snapshot) scheduler.Snapshot { return snap.WithoutOrder(id) })
	logger.InfoContext(ctx, "service order deleted")
	return nil
}

func validateServiceOrderInput(input ServiceOrderInput) (ServiceOrderInput, *ValidationError) {
	vErr := &ValidationError{}
	out := ServiceOrderInput{OSNumber: strings.TrimSpace(input.OSNumber)}

	if out.OSNumber == "" {
		vErr.add("os_number", "is required")
	}

	days, err := recurrence.NormalizeServiceDays(input.ServiceDays)
	switch {
	case errors.Is(err, recurrence.ErrNoServiceDays):
		vErr.add("service_days", "select at least one day")
	case err != nil:
		vErr.add("service_days", "must contain weekdays between 0 and 6")
	}
	out.ServiceDays = days

	if len(input.Departments) == 0 {
		vErr.add("departments", "at least one department is required")
	}
	out.Departments = make([]AssignmentInput, 0, len(input.Departments))
	for i, assignment := range input.Departments {
		prefix := fmt.Sprintf("departments[%d].", i)
		normalized := AssignmentInput{DepartmentID: assignment.DepartmentID}

		if assignment.DepartmentID <= 0 {
			vErr.add(prefix+"department_id", "is required")
		}
		if normalized.ExecutionStart, err = normalizeExecutionTime(assignment.ExecutionStart); err != nil {
			vErr.add(prefix+"execution_start", "must be HH:MM")
		}
		if normalized.ExecutionEnd, err = normalizeExecutionTime(assignment.ExecutionEnd); err != nil {
			vErr.add(prefix+"execution_end", "must be HH:MM")
		}

		collaborators, invalid := uniquePositive(assignment.CollaboratorIDs)
		if len(invalid) > 0 {
			vErr.add(prefix+"collaborator_ids", "must contain positive employee ids")
		}
		normalized.CollaboratorIDs = collaborators
		out.Departments = append(out.Departments, normalized)
	}

	return out, vErr
}

func normalizeExecutionTime(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if _, err := workschedule.ParseClock(trimmed); err != nil {
		return "", err
	}
	return workschedule.NormalizeClock(trimmed), nil
}

func orderFromInput(id int, input ServiceOrderInput, createdAt time.Time) scheduler.ServiceOrder {
	order := scheduler.ServiceOrder{
		ID:          id,
		OSNumber:    input.OSNumber,
		CreatedAt:   createdAt,
		ServiceDays: input.ServiceDays,
		Departments: make([]scheduler.Assignment, 0, len(input.Departments)),
	}
	for _, assignment := range input.Departments {
		order.Departments = append(order.Departments, scheduler.Assignment{
			DepartmentID:   assignment.DepartmentID,
			ExecutionStart: assignment.ExecutionStart,
			ExecutionEnd:   assignment.ExecutionEnd,
			Collaborators:  assignment.CollaboratorIDs,
		})
	}
	return order
}
