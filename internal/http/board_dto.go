package http

import (
	"time"

	"github.com/example/service-order-scheduler/internal/application"
	"github.com/example/service-order-scheduler/internal/workschedule"
)

const dateLayout = "2006-01-02"

type freshnessDTO struct {
	Loaded   bool   `json:"loaded"`
	Stale    bool   `json:"stale"`
	LoadedAt string `json:"loaded_at,omitempty"`
}

func newFreshnessDTO(f application.Freshness) freshnessDTO {
	dto := freshnessDTO{Loaded: f.Loaded, Stale: f.Stale}
	if !f.LoadedAt.IsZero() {
		dto.LoadedAt = f.LoadedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

type weekBoardDTO struct {
	Reference       string       `json:"reference"`
	DepartmentID    int          `json:"department_id,omitempty"`
	DepartmentLabel string       `json:"department_label,omitempty"`
	Days            []dayDTO     `json:"days"`
	Freshness       freshnessDTO `json:"freshness"`
}

func newWeekBoardDTO(board application.WeekBoard) weekBoardDTO {
	dto := weekBoardDTO{
		Reference: board.Reference.Format(dateLayout),
		Days:      make([]dayDTO, 0, len(board.Days)),
		Freshness: newFreshnessDTO(board.Freshness),
	}
	if board.Filter.Active {
		dto.DepartmentID = board.Filter.ID
		dto.DepartmentLabel = board.FilterLabel
	}
	for _, day := range board.Days {
		dto.Days = append(dto.Days, newDayDTO(day))
	}
	return dto
}

type dayDTO struct {
	Weekday int            `json:"weekday"`
	Key     string         `json:"key"`
	Label   string         `json:"label"`
	Date    string         `json:"date,omitempty"`
	Orders  []orderCardDTO `json:"orders"`
}

func newDayDTO(column application.DayColumn) dayDTO {
	dto := dayDTO{
		Weekday: int(column.Weekday),
		Key:     column.Key,
		Label:   column.Label,
		Orders:  newOrderCardDTOs(column.Orders),
	}
	if !column.Date.IsZero() {
		dto.Date = column.Date.Format(dateLayout)
	}
	return dto
}

type orderCardDTO struct {
	ID               int             `json:"id"`
	OSNumber         string          `json:"os_number"`
	CreatedAt        string          `json:"created_at,omitempty"`
	ServiceDays      []int           `json:"service_days"`
	ServiceDayLabels []string        `json:"service_day_labels"`
	Departments      []assignmentDTO `json:"departments"`
}

type assignmentDTO struct {
	ID             int               `json:"id,omitempty"`
	DepartmentID   int               `json:"department_id"`
	DepartmentName string            `json:"department_name"`
	ExecutionStart string            `json:"execution_start"`
	ExecutionEnd   string            `json:"execution_end"`
	Collaborators  []collaboratorDTO `json:"collaborators"`
}

type collaboratorDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func newOrderCardDTO(card application.OrderCard) orderCardDTO {
	dto := orderCardDTO{
		ID:               card.ID,
		OSNumber:         card.OSNumber,
		ServiceDays:      nonNilInts(card.ServiceDays),
		ServiceDayLabels: nonNilStrings(card.ServiceDayLabels),
		Departments:      make([]assignmentDTO, 0, len(card.Assignments)),
	}
	if !card.CreatedAt.IsZero() {
		dto.CreatedAt = card.CreatedAt.UTC().Format(time.RFC3339)
	}
	for _, a := range card.Assignments {
		collaborators := make([]collaboratorDTO, 0, len(a.Collaborators))
		for _, c := range a.Collaborators {
			collaborators = append(collaborators, collaboratorDTO{ID: c.ID, Name: c.Name})
		}
		dto.Departments = append(dto.Departments, assignmentDTO{
			ID:             a.ID,
			DepartmentID:   a.DepartmentID,
			DepartmentName: a.DepartmentName,
			ExecutionStart: a.ExecutionStart,
			ExecutionEnd:   a.ExecutionEnd,
			Collaborators:  collaborators,
		})
	}
	return dto
}

func newOrderCardDTOs(cards []application.OrderCard) []orderCardDTO {
	out := make([]orderCardDTO, 0, len(cards))
	for _, card := range cards {
		out = append(out, newOrderCardDTO(card))
	}
	return out
}

type availabilityRowDTO struct {
	EmployeeID         int                   `json:"employee_id"`
	Name               string                `json:"name"`
	Username           string                `json:"username"`
	Status             string                `json:"status"`
	StatusLabel        string                `json:"status_label"`
	WorkingDepartments []string              `json:"working_departments"`
	Departments        []string              `json:"departments"`
	WorkSchedule       workschedule.Schedule `json:"work_schedule"`
	ScheduleDisplay    string                `json:"schedule_display"`
	ScheduleInvalid    bool                  `json:"schedule_invalid,omitempty"`
}

func newAvailabilityRowDTOs(rows []application.AvailabilityRow) []availabilityRowDTO {
	out := make([]availabilityRowDTO, 0, len(rows))
	for _, row := range rows {
		schedule := row.WorkSchedule
		if schedule == nil {
			schedule = workschedule.Schedule{}
		}
		out = append(out, availabilityRowDTO{
			EmployeeID:         row.EmployeeID,
			Name:               row.Name,
			Username:           row.Username,
			Status:             string(row.Status),
			StatusLabel:        row.StatusLabel,
			WorkingDepartments: nonNilStrings(row.WorkingDepartments),
			Departments:        nonNilStrings(row.Departments),
			WorkSchedule:       schedule,
			ScheduleDisplay:    row.ScheduleDisplay,
			ScheduleInvalid:    row.ScheduleInvalid,
		})
	}
	return out
}

func nonNilInts(in []int) []int {
	if in == nil {
		return []int{}
	}
	return in
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
