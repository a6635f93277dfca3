package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/example/service-order-scheduler/internal/scheduler"
	"github.com/example/service-order-scheduler/internal/store"
)

var (
	adminPrincipal = Principal{UserID: "admin:admin@example.com", Role: RoleAdmin}
	anaPrincipal   = Principal{UserID: "employee:7", EmployeeID: 7, Role: RoleCollaborator, DisplayName: "Ana"}
)

func fixedClock() time.Time {
	return time.Date(2024, time.March, 13, 10, 0, 0, 0, time.UTC)
}

// scenarioSnapshot holds two orders: A on Mon/Wed for dept 10 with collaborators 7 and 8,
// B on Mon for dept 20 with collaborator 8.
func scenarioSnapshot() scheduler.Snapshot {
	return scheduler.Snapshot{
		Employees: []scheduler.Employee{
			{ID: 7, Name: "Ana", Username: "ana"},
			{ID: 8, Name: "Bruno", Username: "bruno"},
			{ID: 9, Name: "Carla", Username: "carla", Departments: []string{"Limpeza"}},
		},
		Departments: []scheduler.Department{{ID: 10, Name: "Limpeza"}, {ID: 20, Name: "Portaria"}},
		Orders: []scheduler.ServiceOrder{
			{ID: 1, OSNumber: "OS-A", ServiceDays: []int{1, 3}, Departments: []scheduler.Assignment{{DepartmentID: 10, ExecutionStart: "08:00", ExecutionEnd: "12:00", Collaborators: []int{7, 8}}}},
			{ID: 2, OSNumber: "OS-B", ServiceDays: []int{1}, Departments: []scheduler.Assignment{{DepartmentID: 20, Collaborators: []int{8}}}},
		},
	}
}

func loadedStore(snap scheduler.Snapshot) *store.Store {
	s := store.New()
	s.Replace(snap, fixedClock())
	return s
}

type refresherStub struct {
	calls int
	err   error
	next  *scheduler.Snapshot
	store *store.Store
}

func (r *refresherStub) Refresh(context.Context) error {
	r.calls++
	if r.err != nil {
		if r.store != nil {
			r.store.MarkStale(r.err, fixedClock())
		}
		return r.err
	}
	if r.next != nil && r.store != nil {
		r.store.Replace(*r.next, fixedClock())
	}
	return nil
}

type backendStub struct {
	mu sync.Mutex

	createdEmployee  EmployeeInput
	updatedEmployee  EmployeeInput
	createdOrder     ServiceOrderInput
	updatedOrder     ServiceOrderInput
	updatedOrderID   int
	deletedOrderIDs  []int
	createdDeptNames []string

	employeeResult scheduler.Employee
	deptResult     scheduler.Department
	orderResult    scheduler.ServiceOrder
	err            error
}

func (b *backendStub) CreateEmployee(_ context.Context, input EmployeeInput) (scheduler.Employee, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.createdEmployee = input
	return b.employeeResult, b.err
}

func (b *backendStub) UpdateEmployee(_ context.Context, _ int, input EmployeeInput) (scheduler.Employee, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updatedEmployee = input
	return b.employeeResult, b.err
}

func (b *backendStub) DeleteEmployee(context.Context, int) error {
	return b.err
}

func (b *backendStub) CreateDepartment(_ context.Context, input DepartmentInput) (scheduler.Department, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.createdDeptNames = append(b.createdDeptNames, input.Name)
	return b.deptResult, b.err
}

func (b *backendStub) UpdateDepartment(_ context.Context, _ int, _ DepartmentInput) (scheduler.Department, error) {
	return b.deptResult, b.err
}

func (b *backendStub) DeleteDepartment(context.Context, int) error {
	return b.err
}

func (b *backendStub) CreateServiceOrder(_ context.Context, input ServiceOrderInput) (scheduler.ServiceOrder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.createdOrder = input
	return b.orderResult, b.err
}

func (b *backendStub) UpdateServiceOrder(_ context.Context, id int, input ServiceOrderInput) (scheduler.ServiceOrder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updatedOrderID = id
	b.updatedOrder = input
	return b.orderResult, b.err
}

func (b *backendStub) DeleteServiceOrder(_ context.Context, id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.deletedOrderIDs = append(b.deletedOrderIDs, id)
	return nil
}

type sessionRepositoryStub struct {
	mu          sync.Mutex
	sessions    map[string]Session
	deleteCalls []time.Time
	createErr   error
	deleteErr   error
}

func newSessionRepositoryStub() *sessionRepositoryStub {
	return &sessionRepositoryStub{sessions: make(map[string]Session)}
}

func (r *sessionRepositoryStub) CreateSession(_ context.Context, session Session) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return Session{}, r.createErr
	}
	r.sessions[session.Token] = session
	return session, nil
}

func (r *sessionRepositoryStub) GetSession(_ context.Context, token string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	return session, nil
}

func (r *sessionRepositoryStub) RevokeSession(_ context.Context, token string, revokedAt time.Time) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	session.RevokedAt = &revokedAt
	r.sessions[token] = session
	return session, nil
}

func (r *sessionRepositoryStub) DeleteExpiredSessions(_ context.Context, reference time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteCalls = append(r.deleteCalls, reference)
	return r.deleteErr
}

type directoryStub struct {
	passwords map[string]string
	employees map[string]scheduler.Employee
	loginErr  error
}

func (d *directoryStub) Login(_ context.Context, username, password string) error {
	if d.loginErr != nil {
		return d.loginErr
	}
	if expected, ok := d.passwords[username]; ok && expected == password {
		return nil
	}
	return ErrUnauthorized
}

func (d *directoryStub) GetEmployeeByUsername(_ context.Context, username string) (scheduler.Employee, error) {
	employee, ok := d.employees[username]
	if !ok {
		return scheduler.Employee{}, ErrNotFound
	}
	return employee, nil
}

func plainVerifier(hash, password string) error {
	if hash != password {
		return errors.New("mismatch")
	}
	return nil
}
