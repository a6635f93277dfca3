// Package scheduler derives the weekly board from the loaded employees,
// departments and service orders. Every function here is pure over its input.
package scheduler

import (
	"time"

	"github.com/example/service-order-scheduler/internal/workschedule"
)

// Employee is a collaborator that can be assigned to service orders.
type Employee struct {
	ID       int
	Name     string
	Username string
	// Departments is the nominal membership reported by the backend. It does not
	// influence availability, which is derived from order assignments only.
	Departments  []string
	WorkSchedule workschedule.Schedule
	// ScheduleInvalid flags a work schedule that could not be decoded.
	ScheduleInvalid bool
}

// Department groups collaborators and receives service order assignments.
type Department struct {
	ID   int
	Name string
}

// Assignment binds one department, a time window and a set of collaborators to a service order.
type Assignment struct {
	ID             int
	DepartmentID   int
	DepartmentName string
	ExecutionStart string
	ExecutionEnd   string
	Collaborators  []int
}

// ServiceOrder is a recurring job executed on every weekday listed in ServiceDays.
type ServiceOrder struct {
	ID          int
	OSNumber    string
	CreatedAt   time.Time
	ServiceDays []int
	Departments []Assignment
}

// HasDepartment reports whether any assignment targets the department.
func (o ServiceOrder) HasDepartment(departmentID int) bool {
	for _, assignment := range o.Departments {
		if assignment.DepartmentID == departmentID {
			return true
		}
	}
	return false
}

// HasCollaborator reports whether the employee is listed in any assignment.
func (o ServiceOrder) HasCollaborator(employeeID int) bool {
	for _, assignment := range o.Departments {
		for _, id := range assignment.Collaborators {
			if id == employeeID {
				return true
			}
		}
	}
	return false
}
