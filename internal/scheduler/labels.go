package scheduler

import (
	"fmt"
	"strings"
)

const (
	// UnknownDepartmentLabel is shown for a department id missing from the snapshot.
	UnknownDepartmentLabel = "Departamento Desconhecido"
	// UnknownEmployeeLabel is shown for a collaborator id missing from the snapshot.
	UnknownEmployeeLabel = "Desconhecido"
)

// Labels resolves foreign keys to display names. A nil *Labels resolves every id to its placeholder.
type Labels struct {
	departments map[int]string
	employees   map[int]string
}

// NewLabels indexes department and employee names by id. Blank names are skipped.
func NewLabels(departments []Department, employees []Employee) *Labels {
	l := &Labels{
		departments: make(map[int]string, len(departments)),
		employees:   make(map[int]string, len(employees)),
	}
	for _, department := range departments {
		if name := strings.TrimSpace(department.Name); name != "" {
			l.departments[department.ID] = name
		}
	}
	for _, employee := range employees {
		if name := strings.TrimSpace(employee.Name); name != "" {
			l.employees[employee.ID] = name
		}
	}
	return l
}

// DepartmentName returns the department's name or UnknownDepartmentLabel.
func (l *Labels) DepartmentName(id int) string {
	if l != nil {
		if name, ok := l.departments[id]; ok {
			return name
		}
	}
	return UnknownDepartmentLabel
}

// EmployeeName returns the employee's name or UnknownEmployeeLabel.
func (l *Labels) EmployeeName(id int) string {
	if name, ok := l.lookupEmployee(id); ok {
		return name
	}
	return UnknownEmployeeLabel
}

// EmployeeNameOrID returns the employee's name or "ID {id}".
func (l *Labels) EmployeeNameOrID(id int) string {
	if name, ok := l.lookupEmployee(id); ok {
		return name
	}
	return fmt.Sprintf("ID %d", id)
}

// AssignmentDepartmentName prefers the snapshot's department name, then the name
// embedded in the assignment, then the placeholder.
func (l *Labels) AssignmentDepartmentName(assignment Assignment) string {
	if l != nil {
		if name, ok := l.departments[assignment.DepartmentID]; ok {
			return name
		}
	}
	if name := strings.TrimSpace(assignment.DepartmentName); name != "" {
		return name
	}
	return UnknownDepartmentLabel
}

func (l *Labels) lookupEmployee(id int) (string, bool) {
	if l == nil {
		return "", false
	}
	name, ok := l.employees[id]
	return name, ok
}
