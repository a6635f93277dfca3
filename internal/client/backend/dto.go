package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/service-order-scheduler/internal/scheduler"
	"github.com/example/service-order-scheduler/internal/workschedule"
)

type employeeDTO struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Username     string          `json:"username"`
	Departments  nameList        `json:"departments"`
	WorkSchedule json.RawMessage `json:"work_schedule"`
}

func (d employeeDTO) toEmployee() scheduler.Employee {
	schedule, ok := workschedule.Decode(d.WorkSchedule)
	return scheduler.Employee{
		ID:              d.ID,
		Name:            d.Name,
		Username:        d.Username,
		Departments:     []string(d.Departments),
		WorkSchedule:    schedule,
		ScheduleInvalid: !ok,
	}
}

type departmentDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (d departmentDTO) toDepartment() scheduler.Department {
	return scheduler.Department{ID: d.ID, Name: d.Name}
}

type assignmentDTO struct {
	ID              int    `json:"id"`
	DepartmentID    int    `json:"department_id"`
	DepartmentName  string `json:"department_name"`
	ExecutionStart  string `json:"execution_start"`
	ExecutionEnd    string `json:"execution_end"`
	Collaborators   []int  `json:"collaborators"`
	CollaboratorIDs []int  `json:"collaborator_ids"`
}

func (d assignmentDTO) toAssignment() scheduler.Assignment {
	collaborators := d.Collaborators
	if len(collaborators) == 0 {
		collaborators = d.CollaboratorIDs
	}
	return scheduler.Assignment{
		ID:             d.ID,
		DepartmentID:   d.DepartmentID,
		DepartmentName: d.DepartmentName,
		ExecutionStart: workschedule.NormalizeClock(d.ExecutionStart),
		ExecutionEnd:   workschedule.NormalizeClock(d.ExecutionEnd),
		Collaborators:  collaborators,
	}
}

type serviceOrderDTO struct {
	ID          int             `json:"id"`
	OSNumber    string          `json:"os_number"`
	CreatedAt   timestamp       `json:"created_at"`
	ServiceDays []int           `json:"service_days"`
	Departments []assignmentDTO `json:"departments"`
}

func (d serviceOrderDTO) toServiceOrder() scheduler.ServiceOrder {
	order := scheduler.ServiceOrder{
		ID:          d.ID,
		OSNumber:    d.OSNumber,
		CreatedAt:   time.Time(d.CreatedAt),
		ServiceDays: d.ServiceDays,
		Departments: make([]scheduler.Assignment, 0, len(d.Departments)),
	}
	for _, assignment := range d.Departments {
		order.Departments = append(order.Departments, assignment.toAssignment())
	}
	return order
}

// EmployeeInput is the write payload for employees.
type EmployeeInput struct {
	Name          string                `json:"name"`
	Username      string                `json:"username"`
	Password      string                `json:"password,omitempty"`
	DepartmentIDs []int                 `json:"departments"`
	WorkSchedule  workschedule.Schedule `json:"work_schedule"`
}

// DepartmentInput is the write payload for departments.
type DepartmentInput struct {
	Name string `json:"name"`
}

// AssignmentInput is one department entry of a service order write payload.
type AssignmentInput struct {
	DepartmentID    int    `json:"department_id"`
	ExecutionStart  string `json:"execution_start"`
	ExecutionEnd    string `json:"execution_end"`
	CollaboratorIDs []int  `json:"collaborator_ids"`
}

// ServiceOrderInput is the write payload for service orders. Updates always carry
// the complete departments and service_days arrays.
type ServiceOrderInput struct {
	OSNumber    string            `json:"os_number"`
	ServiceDays []int             `json:"service_days"`
	Departments []AssignmentInput `json:"departments"`
}

type credentialsDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// nameList accepts departments sent as an array of names or ids, or as a comma-joined string.
type nameList []string

func (n *nameList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = nil
		return nil
	}

	if data[0] == '"' {
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return err
		}
		*n = splitNames(joined)
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("departments: %w", err)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		name, err := nameFromItem(item)
		if err != nil {
			return err
		}
		if name != "" {
			out = append(out, name)
		}
	}
	*n = out
	return nil
}

func nameFromItem(item json.RawMessage) (string, error) {
	item = bytes.TrimSpace(item)
	if len(item) == 0 {
		return "", nil
	}
	switch item[0] {
	case '"':
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	case '{':
		var obj struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return "", err
		}
		if name := strings.TrimSpace(obj.Name); name != "" {
			return name, nil
		}
		return strconv.Itoa(obj.ID), nil
	default:
		var num json.Number
		if err := json.Unmarshal(item, &num); err != nil {
			return "", fmt.Errorf("departments: unsupported item %s", item)
		}
		return num.String(), nil
	}
}

func splitNames(joined string) []string {
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// timestamp tolerates the formats backends emit for created_at; unparseable values become the zero time.
type timestamp time.Time

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*t = timestamp{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			*t = timestamp(parsed)
			return nil
		}
	}
	*t = timestamp{}
	return nil
}

// decodeCollection reads either a bare JSON array or an envelope of the form {"data": [...]}.
func decodeCollection[T any](body []byte) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []T{}, nil
	}
	if body[0] == '[' {
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var envelope struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return []T{}, nil
	}
	return envelope.Data, nil
}

// decodeEntity reads an object that may be wrapped as {"data": {...}}.
func decodeEntity[T any](body []byte) (T, error) {
	var zero T
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return zero, ErrEmptyResponse
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 && envelope.Data[0] == '{' {
		body = envelope.Data
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// decodeWritten reads the entity echoed by a successful write. A body that does
// not parse as the entity, such as a plain "OK", counts as no echo.
func decodeWritten[T any](body []byte) (T, error) {
	out, err := decodeEntity[T](body)
	if err != nil && !errors.Is(err, ErrEmptyResponse) {
		return out, fmt.Errorf("%w: %v", ErrEmptyResponse, err)
	}
	return out, err
}
