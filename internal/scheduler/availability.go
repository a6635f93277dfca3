package scheduler

// Status is the derived current-assignment state of an employee.
type Status string

const (
	// StatusAvailable marks an employee absent from every loaded collaborator list.
	StatusAvailable Status = "available"
	// StatusUnavailable marks an employee assigned to at least one loaded order.
	StatusUnavailable Status = "unavailable"
)

// Label returns the Portuguese display text for the status.
func (s Status) Label() string {
	if s == StatusUnavailable {
		return "Indisponível"
	}
	return "Disponível"
}

// BusySet collects every collaborator id referenced by any assignment of any order.
func BusySet(orders []ServiceOrder) map[int]struct{} {
	busy := make(map[int]struct{})
	for _, order := range orders {
		for _, assignment := range order.Departments {
			for _, id := range assignment.Collaborators {
				busy[id] = struct{}{}
			}
		}
	}
	return busy
}

// EmployeeDepartments maps each collaborator id to the names of the departments it
// works under, in first-seen order without duplicates.
func EmployeeDepartments(orders []ServiceOrder, labels *Labels) map[int][]string {
	names := make(map[int][]string)
	seen := make(map[int]map[string]struct{})
	for _, order := range orders {
		for _, assignment := range order.Departments {
			name := labels.AssignmentDepartmentName(assignment)
			for _, id := range assignment.Collaborators {
				if seen[id] == nil {
					seen[id] = make(map[string]struct{})
				}
				if _, dup := seen[id][name]; dup {
					continue
				}
				seen[id][name] = struct{}{}
				names[id] = append(names[id], name)
			}
		}
	}
	return names
}

// StatusOf derives the status of the employee from a busy set.
func StatusOf(busy map[int]struct{}, employeeID int) Status {
	if _, ok := busy[employeeID]; ok {
		return StatusUnavailable
	}
	return StatusAvailable
}

// OrdersForEmployee returns, in input order, the orders listing the employee as a collaborator.
func OrdersForEmployee(orders []ServiceOrder, employeeID int) []ServiceOrder {
	out := make([]ServiceOrder, 0)
	for _, order := range orders {
		if order.HasCollaborator(employeeID) {
			out = append(out, order)
		}
	}
	return out
}

// EmployeeAvailability is one row of the availability roster.
type EmployeeAvailability struct {
	Employee           Employee
	Status             Status
	WorkingDepartments []string
}

// Roster derives the availability row of every employee in the snapshot, in snapshot order.
func Roster(snapshot Snapshot) []EmployeeAvailability {
	busy := BusySet(snapshot.Orders)
	working := EmployeeDepartments(snapshot.Orders, snapshot.Labels())

	rows := make([]EmployeeAvailability, 0, len(snapshot.Employees))
	for _, employee := range snapshot.Employees {
		rows = append(rows, EmployeeAvailability{
			Employee:           employee,
			Status:             StatusOf(busy, employee.ID),
			WorkingDepartments: working[employee.ID],
		})
	}
	return rows
}
