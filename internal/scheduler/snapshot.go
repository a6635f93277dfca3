package scheduler

import "time"

// Snapshot is a consistent view of the three entity sets. A snapshot is never
// mutated after publication; the With/Without helpers return modified copies.
type Snapshot struct {
	Employees   []Employee
	Departments []Department
	Orders      []ServiceOrder
	LoadedAt    time.Time
}

// Empty reports whether nothing has been loaded.
func (s Snapshot) Empty() bool {
	return len(s.Employees) == 0 && len(s.Departments) == 0 && len(s.Orders) == 0
}

// Labels builds the label resolver for the snapshot.
func (s Snapshot) Labels() *Labels {
	return NewLabels(s.Departments, s.Employees)
}

// Employee returns the employee with the id.
func (s Snapshot) Employee(id int) (Employee, bool) {
	for _, employee := range s.Employees {
		if employee.ID == id {
			return employee, true
		}
	}
	return Employee{}, false
}

// EmployeeByUsername returns the employee with the login handle.
func (s Snapshot) EmployeeByUsername(username string) (Employee, bool) {
	for _, employee := range s.Employees {
		if employee.Username == username {
			return employee, true
		}
	}
	return Employee{}, false
}

// Department returns the department with the id.
func (s Snapshot) Department(id int) (Department, bool) {
	for _, department := range s.Departments {
		if department.ID == id {
			return department, true
		}
	}
	return Department{}, false
}

// Order returns the service order with the id.
func (s Snapshot) Order(id int) (ServiceOrder, bool) {
	for _, order := range s.Orders {
		if order.ID == id {
			return order, true
		}
	}
	return ServiceOrder{}, false
}

// WithEmployee replaces the employee with the same id or appends it.
func (s Snapshot) WithEmployee(employee Employee) Snapshot {
	s.Employees = upsert(s.Employees, employee, func(e Employee) int { return e.ID })
	return s
}

// WithoutEmployee drops the employee with the id.
func (s Snapshot) WithoutEmployee(id int) Snapshot {
	s.Employees = remove(s.Employees, id, func(e Employee) int { return e.ID })
	return s
}

// WithDepartment replaces the department with the same id or appends it.
func (s Snapshot) WithDepartment(department Department) Snapshot {
	s.Departments = upsert(s.Departments, department, func(d Department) int { return d.ID })
	return s
}

// WithoutDepartment drops the department with the id. Orders referencing it are kept.
func (s Snapshot) WithoutDepartment(id int) Snapshot {
	s.Departments = remove(s.Departments, id, func(d Department) int { return d.ID })
	return s
}

// WithOrder replaces the order with the same id or appends it.
func (s Snapshot) WithOrder(order ServiceOrder) Snapshot {
	s.Orders = upsert(s.Orders, order, func(o ServiceOrder) int { return o.ID })
	return s
}

// WithoutOrder drops the order with the id.
func (s Snapshot) WithoutOrder(id int) Snapshot {
	s.Orders = remove(s.Orders, id, func(o ServiceOrder) int { return o.ID })
	return s
}

func upsert[T any](items []T, item T, key func(T) int) []T {
	out := make([]T, 0, len(items)+1)
	replaced := false
	for _, existing := range items {
		if key(existing) == key(item) {
			out = append(out, item)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, item)
	}
	return out
}

func remove[T any](items []T, id int, key func(T) int) []T {
	out := make([]T, 0, len(items))
	for _, existing := range items {
		if key(existing) != id {
			out = append(out, existing)
		}
	}
	return out
}
