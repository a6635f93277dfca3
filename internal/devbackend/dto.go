package devbackend

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/example/service-order-scheduler/internal/persistence"
	"github.com/example/service-order-scheduler/internal/workschedule"
)

type employeeRequest struct {
	Name         string          `json:"name"`
	Username     string          `json:"username"`
	Password     string          `json:"password"`
	Departments  []int           `json:"departments"`
	WorkSchedule json.RawMessage `json:"work_schedule"`
}

// scheduleText validates and re-encodes the submitted schedule in its stored form.
func (r employeeRequest) scheduleText() (string, map[string]string) {
	schedule, ok := workschedule.Decode(r.WorkSchedule)
	if !ok {
		return "", map[string]string{"work_schedule": "invalid format"}
	}
	schedule = workschedule.Normalize(schedule)
	if problems := workschedule.Validate(schedule); len(problems) > 0 {
		return "", problems
	}
	text, err := workschedule.Encode(schedule, false)
	if err != nil {
		return "", map[string]string{"work_schedule": "invalid format"}
	}
	return text, nil
}

type employeeResponse struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Username     string   `json:"username"`
	Departments  []string `json:"departments"`
	WorkSchedule string   `json:"work_schedule"`
	CreatedAt    string   `json:"created_at"`
}

func toEmployeeResponse(employee persistence.Employee, names map[int]string) employeeResponse {
	departments := make([]string, 0, len(employee.DepartmentIDs))
	for _, id := range employee.DepartmentIDs {
		if name, ok := names[id]; ok {
			departments = append(departments, name)
		}
	}
	return employeeResponse{
		ID:           employee.ID,
		Name:         employee.Name,
		Username:     employee.Username,
		Departments:  departments,
		WorkSchedule: employee.WorkSchedule,
		CreatedAt:    formatTimestamp(employee.CreatedAt),
	}
}

type employeePage struct {
	Data  []employeeResponse `json:"data"`
	Total int                `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type departmentRequest struct {
	Name string `json:"name"`
}

type departmentResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func toDepartmentResponse(department persistence.Department) departmentResponse {
	return departmentResponse{ID: department.ID, Name: department.Name}
}

type assignmentRequest struct {
	DepartmentID    int    `json:"department_id"`
	ExecutionStart  string `json:"execution_start"`
	ExecutionEnd    string `json:"execution_end"`
	CollaboratorIDs []int  `json:"collaborator_ids"`
}

type serviceOrderRequest struct {
	OSNumber    string              `json:"os_number"`
	ServiceDays []int               `json:"service_days"`
	Departments []assignmentRequest `json:"departments"`
}

func (r serviceOrderRequest) validate() map[string]string {
	problems := make(map[string]string)
	if strings.TrimSpace(r.OSNumber) == "" {
		problems["os_number"] = "is required"
	}
	for _, day := range r.ServiceDays {
		if day < 0 || day > 6 {
			problems["service_days"] = "must be between 0 and 6"
		}
	}
	for _, assignment := range r.Departments {
		if assignment.DepartmentID <= 0 {
			problems["departments"] = "department_id is required"
		}
	}
	return problems
}

func (r serviceOrderRequest) toPersistence(id int) persistence.ServiceOrder {
	order := persistence.ServiceOrder{
		ID:          id,
		OSNumber:    strings.TrimSpace(r.OSNumber),
		ServiceDays: r.ServiceDays,
		Assignments: make([]persistence.Assignment, 0, len(r.Departments)),
	}
	for _, assignment := range r.Departments {
		order.Assignments = append(order.Assignments, persistence.Assignment{
			DepartmentID:    assignment.DepartmentID,
			ExecutionStart:  workschedule.NormalizeClock(assignment.ExecutionStart),
			ExecutionEnd:    workschedule.NormalizeClock(assignment.ExecutionEnd),
			CollaboratorIDs: assignment.CollaboratorIDs,
		})
	}
	return order
}

type assignmentResponse struct {
	ID             int    `json:"id"`
	DepartmentID   int    `json:"department_id"`
	DepartmentName string `json:"department_name"`
	ExecutionStart string `json:"execution_start"`
	ExecutionEnd   string `json:"execution_end"`
	Collaborators  []int  `json:"collaborators"`
}

type serviceOrderResponse struct {
	ID          int                  `json:"id"`
	OSNumber    string               `json:"os_number"`
	CreatedAt   string               `json:"created_at"`
	ServiceDays []int                `json:"service_days"`
	Departments []assignmentResponse `json:"departments"`
}

func toServiceOrderResponse(order persistence.ServiceOrder, names map[int]string) serviceOrderResponse {
	resp := serviceOrderResponse{
		ID:          order.ID,
		OSNumber:    order.OSNumber,
		CreatedAt:   formatTimestamp(order.CreatedAt),
		ServiceDays: order.ServiceDays,
		Departments: make([]assignmentResponse, 0, len(order.Assignments)),
	}
	if resp.ServiceDays == nil {
		resp.ServiceDays = []int{}
	}
	for _, assignment := range order.Assignments {
		collaborators := assignment.CollaboratorIDs
		if collaborators == nil {
			collaborators = []int{}
		}
		resp.Departments = append(resp.Departments, assignmentResponse{
			ID:             assignment.ID,
			DepartmentID:   assignment.DepartmentID,
			DepartmentName: names[assignment.DepartmentID],
			ExecutionStart: assignment.ExecutionStart,
			ExecutionEnd:   assignment.ExecutionEnd,
			Collaborators:  collaborators,
		})
	}
	return resp
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type validationResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
