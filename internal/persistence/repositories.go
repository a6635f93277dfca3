package persistence

import (
	"context"
	"time"
)

// EmployeeFilter narrows employee listings. A zero Limit returns every match.
type EmployeeFilter struct {
	Search string
	Limit  int
	Offset int
}

// EmployeeRepository stores employees and their department memberships.
type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, employee Employee) (Employee, error)
	UpdateEmployee(ctx context.Context, employee Employee) (Employee, error)
	GetEmployee(ctx context.Context, id int) (Employee, error)
	GetEmployeeByUsername(ctx context.Context, username string) (Employee, error)
	ListEmployees(ctx context.Context, filter EmployeeFilter) ([]Employee, int, error)
	DeleteEmployee(ctx context.Context, id int) error
}

// DepartmentRepository exposes CRUD operations for departments.
type DepartmentRepository interface {
	CreateDepartment(ctx context.Context, department Department) (Department, error)
	UpdateDepartment(ctx context.Context, department Department) (Department, error)
	GetDepartment(ctx context.Context, id int) (Department, error)
	ListDepartments(ctx context.Context) ([]Department, error)
	DeleteDepartment(ctx context.Context, id int) error
}

// ServiceOrderRepository stores service orders with their assignments and collaborators.
// Updates replace the assignment list as a whole.
type ServiceOrderRepository interface {
	CreateServiceOrder(ctx context.Context, order ServiceOrder) (ServiceOrder, error)
	UpdateServiceOrder(ctx context.Context, order ServiceOrder) (ServiceOrder, error)
	GetServiceOrder(ctx context.Context, id int) (ServiceOrder, error)
	ListServiceOrders(ctx context.Context) ([]ServiceOrder, error)
	DeleteServiceOrder(ctx context.Context, id int) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
