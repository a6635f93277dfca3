package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/service-order-scheduler/internal/recurrence"
	"github.com/example/service-order-scheduler/internal/scheduler"
	"github.com/example/service-order-scheduler/internal/store"
	"github.com/example/service-order-scheduler/internal/workschedule"
)

// SnapshotStore exposes the published snapshot and lets writers publish modified copies.
type SnapshotStore interface {
	Snapshot() scheduler.Snapshot
	Status() store.Status
	Apply(fn func(scheduler.Snapshot) scheduler.Snapshot) scheduler.Snapshot
}

// SnapshotRefresher reloads the snapshot from the backend.
type SnapshotRefresher interface {
	Refresh(ctx context.Context) error
}

// BoardService derives the read-only views (week board, availability, collaborator orders).
type BoardService struct {
	snapshots SnapshotStore
	refresher SnapshotRefresher
	now       func() time.Time
	logger    *slog.Logger
}

// NewBoardService constructs a board service with the provided dependencies.
func NewBoardService(snapshots SnapshotStore, refresher SnapshotRefresher, now func() time.Time) *BoardService {
	return NewBoardServiceWithLogger(snapshots, refresher, now, nil)
}

// NewBoardServiceWithLogger constructs a board service with a specified logger.
func NewBoardServiceWithLogger(snapshots SnapshotStore, refresher SnapshotRefresher, now func() time.Time, logger *slog.Logger) *BoardService {
	if now == nil {
		now = time.Now
	}
	return &BoardService{snapshots: snapshots, refresher: refresher, now: now, logger: defaultLogger(logger)}
}

func (s *BoardService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BoardService", operation, attrs...)
}

func (s *BoardService) snapshot() (scheduler.Snapshot, Freshness) {
	if s.snapshots == nil {
		return scheduler.Snapshot{}, Freshness{}
	}
	status := s.snapshots.Status()
	return s.snapshots.Snapshot(), Freshness{Loaded: status.Loaded, Stale: status.Stale, LoadedAt: status.LoadedAt}
}

// Week projects the loaded orders onto the seven columns of the week containing the reference.
func (s *BoardService) Week(ctx context.Context, params WeekParams) (board WeekBoard, err error) {
	if s == nil {
		err = fmt.Errorf("BoardService is nil")
		return
	}
	if !params.Principal.Authenticated() {
		err = ErrUnauthorized
		return
	}

	logger := s.loggerWith(ctx, "Week",
		"principal_id", params.Principal.UserID,
		"department_filter", params.Filter.Active,
	)

	reference := params.Reference
	if reference.IsZero() {
		reference = s.now()
	}

	snap, freshness := s.snapshot()
	labels := snap.Labels()
	dates := recurrence.WeekDates(reference)
	week := scheduler.ProjectWeek(snap.Orders, params.Filter)

	board = WeekBoard{
		Reference: reference,
		Filter:    params.Filter,
		Days:      make([]DayColumn, 0, recurrence.DaysPerWeek),
		Freshness: freshness,
	}
	if params.Filter.Active {
		board.FilterLabel = labels.DepartmentName(params.Filter.ID)
	}
	total := 0
	for _, day := range recurrence.Days {
		column := newDayColumn(day.Weekday, week[day.Weekday], labels)
		column.Date = dates[day.Weekday]
		total += len(column.Orders)
		board.Days = append(board.Days, column)
	}

	logger.DebugContext(ctx, "week board built", "placements", total, "stale", freshness.Stale)
	return
}

// Day returns the orders active on a single weekday.
func (s *BoardService) Day(ctx context.Context, params DayParams) (column DayColumn, err error) {
	if s == nil {
		err = fmt.Errorf("BoardService is nil")
		return
	}
	if !params.Principal.Authenticated() {
		err = ErrUnauthorized
		return
	}
	if !params.Day.Valid() {
		vErr := &ValidationError{}
		vErr.add("day", "must be between 0 and 6")
		err = vErr
		return
	}

	snap, _ := s.snapshot()
	column = newDayColumn(params.Day, scheduler.OrdersForDay(snap.Orders, params.Day, params.Filter), snap.Labels())
	return
}

// Availability returns the busy/available roster of every loaded employee.
func (s *BoardService) Availability(ctx context.Context, principal Principal) (rows []AvailabilityRow, err error) {
	if s == nil {
		err = fmt.Errorf("BoardService is nil")
		return
	}
	if !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	logger := s.loggerWith(ctx, "Availability", "principal_id", principal.UserID)

	snap, _ := s.snapshot()
	roster := scheduler.Roster(snap)
	rows = make([]AvailabilityRow, 0, len(roster))
	busy := 0
	for _, entry := range roster {
		if entry.Status == scheduler.StatusUnavailable {
			busy++
		}
		rows = append(rows, newAvailabilityRow(entry))
	}

	logger.DebugContext(ctx, "availability computed", "employees", len(rows), "busy", busy)
	return
}

// EmployeeOrders lists the orders assigning the employee. Collaborators may only
// query themselves; an employeeID of zero means the caller's own employee.
func (s *BoardService) EmployeeOrders(ctx context.Context, principal Principal, employeeID int) (cards []OrderCard, err error) {
	if s == nil {
		err = fmt.Errorf("BoardService is nil")
		return
	}
	if !principal.Authenticated() {
		err = ErrUnauthorized
		return
	}
	if employeeID == 0 {
		employeeID = principal.EmployeeID
	}
	if !principal.IsAdmin() && employeeID != principal.EmployeeID {
		err = ErrUnauthorized
		return
	}
	if employeeID <= 0 {
		vErr := &ValidationError{}
		vErr.add("employee_id", "is required")
		err = vErr
		return
	}

	snap, _ := s.snapshot()
	labels := snap.Labels()
	orders := scheduler.OrdersForEmployee(snap.Orders, employeeID)
	cards = make([]OrderCard, 0, len(orders))
	for _, order := range orders {
		cards = append(cards, newOrderCard(order, labels))
	}
	return
}

// Order returns a single service order. Collaborators only see orders they are assigned to.
func (s *BoardService) Order(ctx context.Context, principal Principal, id int) (card OrderCard, err error) {
	if s == nil {
		err = fmt.Errorf("BoardService is nil")
		return
	}
	if !principal.Authenticated() {
		err = ErrUnauthorized
		return
	}

	snap, _ := s.snapshot()
	order, ok := snap.Order(id)
	if !ok {
		err = ErrNotFound
		return
	}
	if !principal.IsAdmin() && !order.HasCollaborator(principal.EmployeeID) {
		err = ErrNotFound
		return
	}
	card = newOrderCard(order, snap.Labels())
	return
}

// Refresh reloads the snapshot from the backend on an administrator's request.
func (s *BoardService) Refresh(ctx context.Context, principal Principal) (freshness Freshness, err error) {
	if s == nil {
		err = fmt.Errorf("BoardService is nil")
		return
	}
	if !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}
	if s.refresher == nil {
		err = fmt.Errorf("snapshot refresher not configured")
		return
	}

	if rerr := s.refresher.Refresh(ctx); rerr != nil {
		err = fmt.Errorf("%w: %v", ErrBackendUnavailable, rerr)
	}
	_, freshness = s.snapshot()
	return
}

// Freshness reports the state of the published snapshot.
func (s *BoardService) Freshness() Freshness {
	if s == nil {
		return Freshness{}
	}
	_, freshness := s.snapshot()
	return freshness
}

func newDayColumn(day recurrence.Weekday, orders []scheduler.ServiceOrder, labels *scheduler.Labels) DayColumn {
	column := DayColumn{
		Weekday: day,
		Key:     day.Key(),
		Label:   day.Label(),
		Orders:  make([]OrderCard, 0, len(orders)),
	}
	for _, order := range orders {
		column.Orders = append(column.Orders, buildOrderCard(order, labels, labels.EmployeeName))
	}
	return column
}

// newOrderCard names missing collaborators by id, as the detail and list views do.
// Board columns use the generic placeholder instead.
func newOrderCard(order scheduler.ServiceOrder, labels *scheduler.Labels) OrderCard {
	return buildOrderCard(order, labels, labels.EmployeeNameOrID)
}

func buildOrderCard(order scheduler.ServiceOrder, labels *scheduler.Labels, collaboratorName func(int) string) OrderCard {
	card := OrderCard{
		ID:               order.ID,
		OSNumber:         order.OSNumber,
		CreatedAt:        order.CreatedAt,
		ServiceDays:      append([]int(nil), order.ServiceDays...),
		ServiceDayLabels: recurrence.Labels(order.ServiceDays),
		Assignments:      make([]AssignmentView, 0, len(order.Departments)),
	}
	for _, assignment := range order.Departments {
		view := AssignmentView{
			ID:             assignment.ID,
			DepartmentID:   assignment.DepartmentID,
			DepartmentName: labels.AssignmentDepartmentName(assignment),
			ExecutionStart: assignment.ExecutionStart,
			ExecutionEnd:   assignment.ExecutionEnd,
			Collaborators:  make([]CollaboratorView, 0, len(assignment.Collaborators)),
		}
		for _, id := range assignment.Collaborators {
			view.Collaborators = append(view.Collaborators, CollaboratorView{ID: id, Name: collaboratorName(id)})
		}
		card.Assignments = append(card.Assignments, view)
	}
	return card
}

func newAvailabilityRow(entry scheduler.EmployeeAvailability) AvailabilityRow {
	display := workschedule.InvalidFormatLabel
	if !entry.Employee.ScheduleInvalid {
		display = workschedule.Display(entry.Employee.WorkSchedule)
	}
	working := entry.WorkingDepartments
	if working == nil {
		working = []string{}
	}
	return AvailabilityRow{
		EmployeeID:         entry.Employee.ID,
		Name:               entry.Employee.Name,
		Username:           entry.Employee.Username,
		Status:             entry.Status,
		StatusLabel:        entry.Status.Label(),
		WorkingDepartments: working,
		Departments:        entry.Employee.Departments,
		WorkSchedule:       entry.Employee.WorkSchedule,
		ScheduleDisplay:    display,
		ScheduleInvalid:    entry.Employee.ScheduleInvalid,
	}
}
