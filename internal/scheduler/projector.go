package scheduler

import "github.com/example/service-order-scheduler/internal/recurrence"

// DepartmentFilter narrows a projection to orders with an assignment for one department.
// The zero value matches every order.
type DepartmentFilter struct {
	ID     int
	Active bool
}

// AnyDepartment disables department filtering.
var AnyDepartment = DepartmentFilter{}

// OnlyDepartment restricts a projection to the department.
func OnlyDepartment(id int) DepartmentFilter {
	return DepartmentFilter{ID: id, Active: true}
}

func (f DepartmentFilter) matches(order ServiceOrder) bool {
	if !f.Active {
		return true
	}
	return order.HasDepartment(f.ID)
}

// OrdersForDay returns, in input order, the orders recurring on day that pass the filter.
// An invalid weekday yields no orders.
func OrdersForDay(orders []ServiceOrder, day recurrence.Weekday, filter DepartmentFilter) []ServiceOrder {
	out := make([]ServiceOrder, 0)
	if !day.Valid() {
		return out
	}
	for _, order := range orders {
		if recurrence.Contains(order.ServiceDays, day) && filter.matches(order) {
			out = append(out, order)
		}
	}
	return out
}

// ProjectWeek runs OrdersForDay for every weekday, indexed Sunday first.
func ProjectWeek(orders []ServiceOrder, filter DepartmentFilter) [recurrence.DaysPerWeek][]ServiceOrder {
	var week [recurrence.DaysPerWeek][]ServiceOrder
	for _, day := range recurrence.Days {
		week[day.Weekday] = OrdersForDay(orders, day.Weekday, filter)
	}
	return week
}
