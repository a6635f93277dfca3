package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/service-order-scheduler/internal/application"
	"github.com/example/service-order-scheduler/internal/persistence"
	"github.com/example/service-order-scheduler/internal/scheduler"
	"github.com/example/service-order-scheduler/internal/workschedule"
)

var (
	employeeCounter   uint64
	departmentCounter uint64
	orderCounter      uint64
	sessionCounter    uint64
)

// referenceTime is a Wednesday.
var referenceTime = time.Date(2024, time.March, 13, 10, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Employee fixtures -----------------------------

// EmployeeFixture represents a deterministic employee that can be materialised
// for application, core or persistence tests.
type EmployeeFixture struct {
	ID            int
	Name          string
	Username      string
	Password      string
	PasswordHash  string
	DepartmentIDs []int
	Departments   []string
	WorkSchedule  workschedule.Schedule
}

// EmployeeOption configures the generated employee fixture.
type EmployeeOption func(*EmployeeFixture)

// NewEmployeeFixture returns a deterministic employee fixture with optional overrides.
func NewEmployeeFixture(opts ...EmployeeOption) EmployeeFixture {
	idx := atomic.AddUint64(&employeeCounter, 1)
	fixture := EmployeeFixture{
		ID:           int(idx),
		Name:         fmt.Sprintf("Colaborador %03d", idx),
		Username:     fmt.Sprintf("colaborador%03d", idx),
		Password:     "segredo",
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		WorkSchedule: workschedule.Schedule{"seg": {"08:00-12:00"}},
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEmployeeID overrides the generated id.
func WithEmployeeID(id int) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.ID = id
	}
}

// WithEmployeeName overrides the generated name.
func WithEmployeeName(name string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.Name = name
	}
}

// WithEmployeeUsername overrides the generated username.
func WithEmployeeUsername(username string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.Username = username
	}
}

// WithEmployeePassword sets the plain password and its stored hash.
func WithEmployeePassword(password, hash string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.Password = password
		f.PasswordHash = hash
	}
}

// WithEmployeeDepartments sets department memberships by id.
func WithEmployeeDepartments(ids ...int) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.DepartmentIDs = ids
	}
}

// WithEmployeeDepartmentNames sets the department names reported by the backend.
func WithEmployeeDepartmentNames(names ...string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.Departments = names
	}
}

// WithEmployeeSchedule overrides the work schedule.
func WithEmployeeSchedule(schedule workschedule.Schedule) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.WorkSchedule = schedule
	}
}

// Scheduler returns the fixture as a scheduler.Employee value.
func (f EmployeeFixture) Scheduler() scheduler.Employee {
	return scheduler.Employee{
		ID:           f.ID,
		Name:         f.Name,
		Username:     f.Username,
		Departments:  append([]string(nil), f.Departments...),
		WorkSchedule: f.WorkSchedule,
	}
}

// Persistence returns the fixture as a persistence.Employee value.
func (f EmployeeFixture) Persistence() persistence.Employee {
	schedule, err := workschedule.Encode(f.WorkSchedule, false)
	if err != nil {
		schedule = "{}"
	}
	return persistence.Employee{
		ID:            f.ID,
		Name:          f.Name,
		Username:      f.Username,
		PasswordHash:  f.PasswordHash,
		DepartmentIDs: append([]int(nil), f.DepartmentIDs...),
		WorkSchedule:  schedule,
	}
}

// Input returns the fixture as an application.EmployeeInput value.
func (f EmployeeFixture) Input() application.EmployeeInput {
	return application.EmployeeInput{
		Name:          f.Name,
		Username:      f.Username,
		Password:      f.Password,
		DepartmentIDs: append([]int(nil), f.DepartmentIDs...),
		WorkSchedule:  f.WorkSchedule,
	}
}

// Principal returns a collaborator principal bound to the fixture.
func (f EmployeeFixture) Principal() application.Principal {
	return application.Principal{
		UserID:      fmt.Sprintf("employee:%d", f.ID),
		EmployeeID:  f.ID,
		Role:        application.RoleCollaborator,
		DisplayName: f.Name,
	}
}

// AdminPrincipal returns the administrator principal used across tests.
func AdminPrincipal() application.Principal {
	return application.Principal{UserID: "admin:admin@example.com", Role: application.RoleAdmin, DisplayName: "admin@example.com"}
}

// ----------------------------- Department fixtures -----------------------------

// DepartmentFixture represents a deterministic department.
type DepartmentFixture struct {
	ID   int
	Name string
}

// DepartmentOption configures the generated department fixture.
type DepartmentOption func(*DepartmentFixture)

// NewDepartmentFixture returns a deterministic department fixture with optional overrides.
func NewDepartmentFixture(opts ...DepartmentOption) DepartmentFixture {
	idx := atomic.AddUint64(&departmentCounter, 1)
	fixture := DepartmentFixture{ID: int(idx), Name: fmt.Sprintf("Departamento %03d", idx)}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithDepartmentID overrides the generated id.
func WithDepartmentID(id int) DepartmentOption {
	return func(f *DepartmentFixture) {
		f.ID = id
	}
}

// WithDepartmentName overrides the generated name.
func WithDepartmentName(name string) DepartmentOption {
	return func(f *DepartmentFixture) {
		f.Name = name
	}
}

// Scheduler returns the fixture as a scheduler.Department value.
func (f DepartmentFixture) Scheduler() scheduler.Department {
	return scheduler.Department{ID: f.ID, Name: f.Name}
}

// Persistence returns the fixture as a persistence.Department value.
func (f DepartmentFixture) Persistence() persistence.Department {
	return persistence.Department{ID: f.ID, Name: f.Name}
}

// ----------------------------- Service order fixtures -----------------------------

// AssignmentFixture is one department line of a service order fixture.
type AssignmentFixture struct {
	DepartmentID  int
	Start         string
	End           string
	Collaborators []int
}

// ServiceOrderFixture represents a deterministic service order.
type ServiceOrderFixture struct {
	ID          int
	OSNumber    string
	ServiceDays []int
	CreatedAt   time.Time
	Assignments []AssignmentFixture
}

// ServiceOrderOption configures the generated service order fixture.
type ServiceOrderOption func(*ServiceOrderFixture)

// NewServiceOrderFixture returns a deterministic order running on Mondays for one department.
func NewServiceOrderFixture(opts ...ServiceOrderOption) ServiceOrderFixture {
	idx := atomic.AddUint64(&orderCounter, 1)
	fixture := ServiceOrderFixture{
		ID:          int(idx),
		OSNumber:    fmt.Sprintf("OS-%03d", idx),
		ServiceDays: []int{1},
		CreatedAt:   referenceTime.Add(time.Duration(idx) * time.Minute),
		Assignments: []AssignmentFixture{{DepartmentID: 1, Start: "08:00", End: "12:00"}},
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithServiceOrderID overrides the generated id.
func WithServiceOrderID(id int) ServiceOrderOption {
	return func(f *ServiceOrderFixture) {
		f.ID = id
	}
}

// WithServiceOrderNumber overrides the order number.
func WithServiceOrderNumber(number string) ServiceOrderOption {
	return func(f *ServiceOrderFixture) {
		f.OSNumber = number
	}
}

// WithServiceDays overrides the weekdays the order runs on.
func WithServiceDays(days ...int) ServiceOrderOption {
	return func(f *ServiceOrderFixture) {
		f.ServiceDays = days
	}
}

// WithAssignments replaces the assignment list.
func WithAssignments(assignments ...AssignmentFixture) ServiceOrderOption {
	return func(f *ServiceOrderFixture) {
		f.Assignments = assignments
	}
}

// Scheduler returns the fixture as a scheduler.ServiceOrder value.
func (f ServiceOrderFixture) Scheduler() scheduler.ServiceOrder {
	order := scheduler.ServiceOrder{
		ID:          f.ID,
		OSNumber:    f.OSNumber,
		CreatedAt:   f.CreatedAt,
		ServiceDays: append([]int(nil), f.ServiceDays...),
	}
	for _, a := range f.Assignments {
		order.Departments = append(order.Departments, scheduler.Assignment{
			DepartmentID:   a.DepartmentID,
			ExecutionStart: a.Start,
			ExecutionEnd:   a.End,
			Collaborators:  append([]int(nil), a.Collaborators...),
		})
	}
	return order
}

// Persistence returns the fixture as a persistence.ServiceOrder value.
func (f ServiceOrderFixture) Persistence() persistence.ServiceOrder {
	order := persistence.ServiceOrder{
		ID:          f.ID,
		OSNumber:    f.OSNumber,
		ServiceDays: append([]int(nil), f.ServiceDays...),
		CreatedAt:   f.CreatedAt,
	}
	for _, a := range f.Assignments {
		order.Assignments = append(order.Assignments, persistence.Assignment{
			DepartmentID:    a.DepartmentID,
			ExecutionStart:  a.Start,
			ExecutionEnd:    a.End,
			CollaboratorIDs: append([]int(nil), a.Collaborators...),
		})
	}
	return order
}

// Input returns the fixture as an application.ServiceOrderInput value.
func (f ServiceOrderFixture) Input() application.ServiceOrderInput {
	input := application.ServiceOrderInput{
		OSNumber:    f.OSNumber,
		ServiceDays: append([]int(nil), f.ServiceDays...),
	}
	for _, a := range f.Assignments {
		input.Departments = append(input.Departments, application.AssignmentInput{
			DepartmentID:    a.DepartmentID,
			ExecutionStart:  a.Start,
			ExecutionEnd:    a.End,
			CollaboratorIDs: append([]int(nil), a.Collaborators...),
		})
	}
	return input
}

// ----------------------------- Snapshot fixtures -----------------------------

// ScenarioSnapshot returns the reference week: order A runs Monday and Wednesday in
// Limpeza (10) with Ana (7) and Bruno (8); order B runs Monday in Portaria (20) with Bruno.
// Carla (9) has no assignment.
func ScenarioSnapshot() scheduler.Snapshot {
	return scheduler.Snapshot{
		Employees: []scheduler.Employee{
			NewEmployeeFixture(WithEmployeeID(7), WithEmployeeName("Ana"), WithEmployeeUsername("ana")).Scheduler(),
			NewEmployeeFixture(WithEmployeeID(8), WithEmployeeName("Bruno"), WithEmployeeUsername("bruno")).Scheduler(),
			NewEmployeeFixture(WithEmployeeID(9), WithEmployeeName("Carla"), WithEmployeeUsername("carla")).Scheduler(),
		},
		Departments: []scheduler.Department{
			NewDepartmentFixture(WithDepartmentID(10), WithDepartmentName("Limpeza")).Scheduler(),
			NewDepartmentFixture(WithDepartmentID(20), WithDepartmentName("Portaria")).Scheduler(),
		},
		Orders: []scheduler.ServiceOrder{
			NewServiceOrderFixture(WithServiceOrderID(1), WithServiceOrderNumber("OS-A"), WithServiceDays(1, 3),
				WithAssignments(AssignmentFixture{DepartmentID: 10, Start: "08:00", End: "12:00", Collaborators: []int{7, 8}})).Scheduler(),
			NewServiceOrderFixture(WithServiceOrderID(2), WithServiceOrderNumber("OS-B"), WithServiceDays(1),
				WithAssignments(AssignmentFixture{DepartmentID: 20, Start: "13:00", End: "17:00", Collaborators: []int{8}})).Scheduler(),
		},
		LoadedAt: referenceTime,
	}
}

// ----------------------------- Session fixtures -----------------------------

// SessionFixture represents a deterministic session.
type SessionFixture struct {
	ID        string
	Token     string
	Principal application.Principal
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic admin session fixture with optional overrides.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	fixture := SessionFixture{
		ID:        fmt.Sprintf("session-%03d", idx),
		Token:     fmt.Sprintf("token-%03d", idx),
		Principal: AdminPrincipal(),
		ExpiresAt: referenceTime.Add(8 * time.Hour),
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionToken overrides the token value.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) {
		f.Token = token
	}
}

// WithSessionPrincipal binds the session to a principal.
func WithSessionPrincipal(principal application.Principal) SessionOption {
	return func(f *SessionFixture) {
		f.Principal = principal
	}
}

// WithSessionExpiresAt sets the expiration timestamp.
func WithSessionExpiresAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.ExpiresAt = t
	}
}

// WithSessionRevokedAt sets the optional revoked timestamp.
func WithSessionRevokedAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		revoked := t
		f.RevokedAt = &revoked
	}
}

// Application returns the fixture as an application.Session value.
func (f SessionFixture) Application() application.Session {
	return application.Session{
		ID:        f.ID,
		Token:     f.Token,
		Principal: f.Principal,
		CreatedAt: f.CreatedAt,
		ExpiresAt: f.ExpiresAt,
		RevokedAt: copyTimePtr(f.RevokedAt),
	}
}

// Persistence returns the fixture as a persistence.Session value.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:          f.ID,
		Token:       f.Token,
		SubjectID:   f.Principal.UserID,
		Role:        string(f.Principal.Role),
		EmployeeID:  f.Principal.EmployeeID,
		DisplayName: f.Principal.DisplayName,
		ExpiresAt:   f.ExpiresAt,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.CreatedAt,
		RevokedAt:   copyTimePtr(f.RevokedAt),
	}
}

func copyTimePtr(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
