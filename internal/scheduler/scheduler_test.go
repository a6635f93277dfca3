package scheduler

import (
	"reflect"
	"testing"

	"github.com/example/service-order-scheduler/internal/recurrence"
)

func scenarioOrders() (ServiceOrder, ServiceOrder) {
	a := ServiceOrder{
		ID:          1,
		OSNumber:    "OS-A",
		ServiceDays: []int{1, 3},
		Departments: []Assignment{{DepartmentID: 10, Collaborators: []int{7, 8}}},
	}
	b := ServiceOrder{
		ID:          2,
		OSNumber:    "OS-B",
		ServiceDays: []int{1},
		Departments: []Assignment{{DepartmentID: 20, Collaborators: []int{8}}},
	}
	return a, b
}

func orderIDs(orders []ServiceOrder) []int {
	ids := make([]int, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
	}
	return ids
}

func TestOrdersForDay(t *testing.T) {
	a, b := scenarioOrders()
	orders := []ServiceOrder{a, b}

	t.Run("monday returns both in input order", func(t *testing.T) {
		got := orderIDs(OrdersForDay(orders, recurrence.Monday, AnyDepartment))
		if want := []int{1, 2}; !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})

	t.Run("wednesday returns only A", func(t *testing.T) {
		got := orderIDs(OrdersForDay(orders, recurrence.Wednesday, AnyDepartment))
		if want := []int{1}; !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})

	t.Run("department filter", func(t *testing.T) {
		got := orderIDs(OrdersForDay(orders, recurrence.Monday, OnlyDepartment(20)))
		if want := []int{2}; !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		got := OrdersForDay(nil, recurrence.Monday, AnyDepartment)
		if got == nil || len(got) != 0 {
			t.Fatalf("expected empty non-nil slice, got %#v", got)
		}
	})

	t.Run("invalid weekday", func(t *testing.T) {
		if got := OrdersForDay(orders, recurrence.Weekday(9), AnyDepartment); len(got) != 0 {
			t.Fatalf("expected no orders, got %v", orderIDs(got))
		}
	})

	t.Run("filtered projection is a subset of the unfiltered one", func(t *testing.T) {
		for _, day := range recurrence.Days {
			all := OrdersForDay(orders, day.Weekday, AnyDepartment)
			for _, filter := range []DepartmentFilter{OnlyDepartment(10), OnlyDepartment(20), OnlyDepartment(99)} {
				for _, order := range OrdersForDay(orders, day.Weekday, filter) {
					found := false
					for _, candidate := range all {
						if candidate.ID == order.ID {
							found = true
						}
					}
					if !found {
						t.Fatalf("day %v filter %+v returned order %d outside unfiltered set", day.Weekday, filter, order.ID)
					}
				}
			}
		}
	})

	t.Run("does not alias input", func(t *testing.T) {
		got := OrdersForDay(orders, recurrence.Monday, AnyDepartment)
		got[0].OSNumber = "changed"
		if orders[0].OSNumber != "OS-A" {
			t.Fatalf("input mutated through result")
		}
	})
}

func TestProjectWeek(t *testing.T) {
	a, b := scenarioOrders()
	week := ProjectWeek([]ServiceOrder{a, b}, AnyDepartment)

	if got := orderIDs(week[recurrence.Monday]); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("monday = %v", got)
	}
	if got := orderIDs(week[recurrence.Wednesday]); !reflect.DeepEqual(got, []int{1}) {
		t.Fatalf("wednesday = %v", got)
	}
	for _, day := range []recurrence.Weekday{recurrence.Sunday, recurrence.Tuesday, recurrence.Thursday, recurrence.Friday, recurrence.Saturday} {
		if len(week[day]) != 0 {
			t.Fatalf("%v should be empty, got %v", day, orderIDs(week[day]))
		}
	}
}

func TestBusySet(t *testing.T) {
	a, b := scenarioOrders()
	a.Departments[0].Collaborators = append(a.Departments[0].Collaborators, 7)

	busy := BusySet([]ServiceOrder{a, b})
	want := map[int]struct{}{7: {}, 8: {}}
	if !reflect.DeepEqual(busy, want) {
		t.Fatalf("BusySet = %v, want %v", busy, want)
	}

	if StatusOf(busy, 8) != StatusUnavailable {
		t.Fatalf("employee 8 should be unavailable")
	}
	if StatusOf(busy, 9) != StatusAvailable {
		t.Fatalf("employee 9 should be available")
	}
	if len(BusySet(nil)) != 0 {
		t.Fatalf("BusySet(nil) should be empty")
	}
}

func TestEmployeeDepartments(t *testing.T) {
	a, b := scenarioOrders()
	labels := NewLabels([]Department{{ID: 10, Name: "Limpeza"}, {ID: 20, Name: "Portaria"}}, nil)

	// A second assignment to the same department must not duplicate the name.
	c := ServiceOrder{ID: 3, ServiceDays: []int{5}, Departments: []Assignment{{DepartmentID: 10, Collaborators: []int{8}}}}

	got := EmployeeDepartments([]ServiceOrder{a, b, c}, labels)
	if want := []string{"Limpeza", "Portaria"}; !reflect.DeepEqual(got[8], want) {
		t.Fatalf("employee 8 = %v, want %v", got[8], want)
	}
	if want := []string{"Limpeza"}; !reflect.DeepEqual(got[7], want) {
		t.Fatalf("employee 7 = %v, want %v", got[7], want)
	}

	t.Run("unresolved department uses placeholder", func(t *testing.T) {
		got := EmployeeDepartments([]ServiceOrder{b}, nil)
		if want := []string{UnknownDepartmentLabel}; !reflect.DeepEqual(got[8], want) {
			t.Fatalf("got %v, want %v", got[8], want)
		}
	})
}

func TestOrdersForEmployee(t *testing.T) {
	a, b := scenarioOrders()
	if got := orderIDs(OrdersForEmployee([]ServiceOrder{a, b}, 8)); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("employee 8 orders = %v", got)
	}
	if got := orderIDs(OrdersForEmployee([]ServiceOrder{a, b}, 7)); !reflect.DeepEqual(got, []int{1}) {
		t.Fatalf("employee 7 orders = %v", got)
	}
	if got := OrdersForEmployee(nil, 7); len(got) != 0 {
		t.Fatalf("expected no orders")
	}
}

func TestRoster(t *testing.T) {
	a, b := scenarioOrders()
	snapshot := Snapshot{
		Employees: []Employee{
			{ID: 7, Name: "Ana", Departments: []string{"Portaria"}},
			{ID: 8, Name: "Bruno"},
			{ID: 9, Name: "Carla", Departments: []string{"Limpeza"}},
		},
		Departments: []Department{{ID: 10, Name: "Limpeza"}, {ID: 20, Name: "Portaria"}},
		Orders:      []ServiceOrder{a, b},
	}

	rows := Roster(snapshot)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Status != StatusUnavailable || !reflect.DeepEqual(rows[0].WorkingDepartments, []string{"Limpeza"}) {
		t.Fatalf("unexpected row for Ana: %+v", rows[0])
	}
	if rows[1].Status != StatusUnavailable || !reflect.DeepEqual(rows[1].WorkingDepartments, []string{"Limpeza", "Portaria"}) {
		t.Fatalf("unexpected row for Bruno: %+v", rows[1])
	}
	// Static department membership does not make an employee busy.
	if rows[2].Status != StatusAvailable || rows[2].WorkingDepartments != nil {
		t.Fatalf("unexpected row for Carla: %+v", rows[2])
	}

	if got := Roster(Snapshot{}); len(got) != 0 {
		t.Fatalf("empty snapshot should yield empty roster")
	}
}

func TestLabels(t *testing.T) {
	labels := NewLabels(
		[]Department{{ID: 10, Name: "Limpeza"}, {ID: 11, Name: "  "}},
		[]Employee{{ID: 7, Name: "Ana"}, {ID: 8, Name: ""}},
	)

	cases := []struct {
		name string
		got  string
		want string
	}{
		{name: "department hit", got: labels.DepartmentName(10), want: "Limpeza"},
		{name: "department miss", got: labels.DepartmentName(99), want: UnknownDepartmentLabel},
		{name: "blank department name", got: labels.DepartmentName(11), want: UnknownDepartmentLabel},
		{name: "employee hit", got: labels.EmployeeName(7), want: "Ana"},
		{name: "employee miss", got: labels.EmployeeName(99), want: UnknownEmployeeLabel},
		{name: "blank employee name", got: labels.EmployeeNameOrID(8), want: "ID 8"},
		{name: "employee id fallback", got: labels.EmployeeNameOrID(42), want: "ID 42"},
		{name: "nil labels", got: (*Labels)(nil).EmployeeName(7), want: UnknownEmployeeLabel},
		{name: "assignment embedded name", got: labels.AssignmentDepartmentName(Assignment{DepartmentID: 55, DepartmentName: "Jardinagem"}), want: "Jardinagem"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got == "" {
				t.Fatalf("label must never be empty")
			}
			if tc.got != tc.want {
				t.Fatalf("got %q, want %q", tc.got, tc.want)
			}
		})
	}
}

func TestSnapshotCopyOnWrite(t *testing.T) {
	a, b := scenarioOrders()
	original := Snapshot{Orders: []ServiceOrder{a, b}}

	updatedA := a
	updatedA.OSNumber = "OS-A2"
	next := original.WithOrder(updatedA).WithoutOrder(b.ID).WithOrder(ServiceOrder{ID: 5})

	if got := orderIDs(next.Orders); !reflect.DeepEqual(got, []int{1, 5}) {
		t.Fatalf("next orders = %v", got)
	}
	if next.Orders[0].OSNumber != "OS-A2" {
		t.Fatalf("order not replaced")
	}
	if original.Orders[0].OSNumber != "OS-A" || len(original.Orders) != 2 {
		t.Fatalf("original snapshot mutated: %+v", original.Orders)
	}

	if _, ok := next.Order(b.ID); ok {
		t.Fatalf("order %d should be gone", b.ID)
	}
}
