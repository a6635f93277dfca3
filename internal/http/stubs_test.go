package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/service-order-scheduler/internal/application"
	"github.com/example/service-order-scheduler/internal/scheduler"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]application.Session
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: make(map[string]application.Session)}
}

func (m *memorySessions) CreateSession(_ context.Context, session application.Session) (application.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.Token] = session
	return session, nil
}

func (m *memorySessions) GetSession(_ context.Context, token string) (application.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[token]
	if !ok {
		return application.Session{}, application.ErrNotFound
	}
	return session, nil
}

func (m *memorySessions) RevokeSession(_ context.Context, token string, revokedAt time.Time) (application.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[token]
	if !ok {
		return application.Session{}, application.ErrNotFound
	}
	at := revokedAt
	session.RevokedAt = &at
	m.sessions[token] = session
	return session, nil
}

func (m *memorySessions) DeleteExpiredSessions(context.Context, time.Time) error {
	return nil
}

type directoryStub struct {
	employees map[string]scheduler.Employee
	passwords map[string]string
}

func (d directoryStub) Login(_ context.Context, username, password string) error {
	if want, ok := d.passwords[username]; !ok || want != password {
		return application.ErrUnauthorized
	}
	return nil
}

func (d directoryStub) GetEmployeeByUsername(_ context.Context, username string) (scheduler.Employee, error) {
	employee, ok := d.employees[username]
	if !ok {
		return scheduler.Employee{}, application.ErrNotFound
	}
	return employee, nil
}

func verifyPlain(hash, password string) error {
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// catalogBackend echoes every write, assigning ids from nextID.
type catalogBackend struct {
	mu     sync.Mutex
	nextID int
	err    error
}

func (b *catalogBackend) id() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	return b.nextID
}

func (b *catalogBackend) CreateEmployee(_ context.Context, input application.EmployeeInput) (scheduler.Employee, error) {
	if b.err != nil {
		return scheduler.Employee{}, b.err
	}
	return scheduler.Employee{ID: b.id(), Name: input.Name, Username: input.Username, WorkSchedule: input.WorkSchedule}, nil
}

func (b *catalogBackend) UpdateEmployee(_ context.Context, id int, input application.EmployeeInput) (scheduler.Employee, error) {
	if b.err != nil {
		return scheduler.Employee{}, b.err
	}
	return scheduler.Employee{ID: id, Name: input.Name, Username: input.Username, WorkSchedule: input.WorkSchedule}, nil
}

func (b *catalogBackend) DeleteEmployee(context.Context, int) error { return b.err }

func (b *catalogBackend) CreateDepartment(_ context.Context, input application.DepartmentInput) (scheduler.Department, error) {
	if b.err != nil {
		return scheduler.Department{}, b.err
	}
	return scheduler.Department{ID: b.id(), Name: strings.TrimSpace(input.Name)}, nil
}

func (b *catalogBackend) UpdateDepartment(_ context.Context, id int, input application.DepartmentInput) (scheduler.Department, error) {
	if b.err != nil {
		return scheduler.Department{}, b.err
	}
	return scheduler.Department{ID: id, Name: strings.TrimSpace(input.Name)}, nil
}

func (b *catalogBackend) DeleteDepartment(context.Context, int) error { return b.err }

func (b *catalogBackend) CreateServiceOrder(_ context.Context, input application.ServiceOrderInput) (scheduler.ServiceOrder, error) {
	if b.err != nil {
		return scheduler.ServiceOrder{}, b.err
	}
	return orderFromInput(b.id(), input), nil
}

func (b *catalogBackend) UpdateServiceOrder(_ context.Context, id int, input application.ServiceOrderInput) (scheduler.ServiceOrder, error) {
	if b.err != nil {
		return scheduler.ServiceOrder{}, b.err
	}
	return orderFromInput(id, input), nil
}

func (b *catalogBackend) DeleteServiceOrder(context.Context, int) error { return b.err }

func orderFromInput(id int, input application.ServiceOrderInput) scheduler.ServiceOrder {
	order := scheduler.ServiceOrder{ID: id, OSNumber: input.OSNumber, ServiceDays: input.ServiceDays}
	for _, d := range input.Departments {
		order.Departments = append(order.Departments, scheduler.Assignment{
			DepartmentID:   d.DepartmentID,
			ExecutionStart: d.ExecutionStart,
			ExecutionEnd:   d.ExecutionEnd,
			Collaborators:  d.CollaboratorIDs,
		})
	}
	return order
}

type refresherStub struct {
	calls int
	err   error
}

func (r *refresherStub) Refresh(context.Context) error {
	r.calls++
	return r.err
}

type reportObserverStub struct {
	calls int
}

func (r *reportObserverStub) ObserveReport(time.Duration) {
	r.calls++
}
