package application

import (
	"time"

	"github.com/example/service-order-scheduler/internal/recurrence"
	"github.com/example/service-order-scheduler/internal/scheduler"
	"github.com/example/service-order-scheduler/internal/workschedule"
)

// Role distinguishes the two kinds of sessions.
type Role string

const (
	// RoleAdmin manages the catalog and sees the whole board.
	RoleAdmin Role = "admin"
	// RoleCollaborator is an employee looking at their own assignments.
	RoleCollaborator Role = "collaborator"
)

// Principal represents the authenticated caller of a service method.
type Principal struct {
	UserID      string
	EmployeeID  int
	Role        Role
	DisplayName string
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Authenticated reports whether the principal came from a valid session.
func (p Principal) Authenticated() bool {
	return p.Role == RoleAdmin || p.Role == RoleCollaborator
}

// Session is an issued login. Logging out sets RevokedAt.
type Session struct {
	ID        string
	Token     string
	Principal Principal
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// AdminLoginParams carries the administrator credentials.
type AdminLoginParams struct {
	Email    string
	Password string
}

// CollaboratorLoginParams carries an employee's backend credentials.
type CollaboratorLoginParams struct {
	Username string
	Password string
}

// EmployeeInput captures caller provided employee attributes.
type EmployeeInput struct {
	Name          string
	Username      string
	Password      string
	DepartmentIDs []int
	WorkSchedule  workschedule.Schedule
}

// DepartmentInput captures caller provided department attributes.
type DepartmentInput struct {
	Name string
}

// AssignmentInput captures one department assignment of a service order.
type AssignmentInput struct {
	DepartmentID    int
	ExecutionStart  string
	ExecutionEnd    string
	CollaboratorIDs []int
}

// ServiceOrderInput is the complete replacement state of a service order.
type ServiceOrderInput struct {
	OSNumber    string
	ServiceDays []int
	Departments []AssignmentInput
}

// WeekParams selects the board week.
type WeekParams struct {
	Principal Principal
	Filter    scheduler.DepartmentFilter
	// Reference is any instant within the requested week; zero means now.
	Reference time.Time
}

// DayParams selects a single board column.
type DayParams struct {
	Principal Principal
	Day       recurrence.Weekday
	Filter    scheduler.DepartmentFilter
}

// WeekBoard is the seven column projection of the loaded service orders.
type WeekBoard struct {
	Reference time.Time
	Filter    scheduler.DepartmentFilter
	// FilterLabel names the filtered department, or is empty without a filter.
	FilterLabel string
	Days        []DayColumn
	Freshness   Freshness
}

// Freshness tells the caller whether the board was computed from a stale snapshot.
type Freshness struct {
	Loaded   bool
	Stale    bool
	LoadedAt time.Time
}

// DayColumn lists the orders active on one weekday.
type DayColumn struct {
	Weekday recurrence.Weekday
	Key     string
	Label   string
	Date    time.Time
	Orders  []OrderCard
}

// OrderCard is a service order with every foreign key resolved to a display name.
type OrderCard struct {
	ID               int
	OSNumber         string
	CreatedAt        time.Time
	ServiceDays      []int
	ServiceDayLabels []string
	Assignments      []AssignmentView
}

// AssignmentView is an assignment with resolved labels.
type AssignmentView struct {
	ID             int
	DepartmentID   int
	DepartmentName string
	ExecutionStart string
	ExecutionEnd   string
	Collaborators  []CollaboratorView
}

// CollaboratorView pairs a collaborator id with its display name.
type CollaboratorView struct {
	ID   int
	Name string
}

// AvailabilityRow is one employee of the availability roster.
type AvailabilityRow struct {
	EmployeeID         int
	Name               string
	Username           string
	Status             scheduler.Status
	StatusLabel        string
	WorkingDepartments []string
	Departments        []string
	WorkSchedule       workschedule.Schedule
	ScheduleDisplay    string
	ScheduleInvalid    bool
}
