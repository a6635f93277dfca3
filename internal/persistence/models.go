package persistence

import "time"

// Employee is a stored collaborator account. WorkSchedule holds the JSON text
// produced by the schedule codec.
type Employee struct {
	ID            int
	Name          string
	Username      string
	PasswordHash  string
	DepartmentIDs []int
	WorkSchedule  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Department is a named organizational unit.
type Department struct {
	ID        int
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Assignment binds one department of a service order to an execution window and
// its collaborators. DepartmentID is not a foreign key: orders outlive departments.
type Assignment struct {
	ID              int
	DepartmentID    int
	ExecutionStart  string
	ExecutionEnd    string
	CollaboratorIDs []int
}

// ServiceOrder is a recurring weekly work order.
type ServiceOrder struct {
	ID          int
	OSNumber    string
	ServiceDays []int
	Assignments []Assignment
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session represents an authentication session persisted for a principal.
type Session struct {
	ID          string
	Token       string
	SubjectID   string
	Role        string
	EmployeeID  int
	DisplayName string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	RevokedAt   *time.Time
}
