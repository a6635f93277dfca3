package persistence_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/example/service-order-scheduler/internal/persistence"
	"github.com/example/service-order-scheduler/internal/testfixtures"
)

func TestEmployeeRepository(t *testing.T) {
	t.Parallel()

	t.Run("creates, reads, updates, and deletes employees", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		departments := harness.SeedDepartments(t,
			testfixtures.NewDepartmentFixture(testfixtures.WithDepartmentName("Limpeza")),
			testfixtures.NewDepartmentFixture(testfixtures.WithDepartmentName("Portaria")),
		)

		fixture := testfixtures.NewEmployeeFixture(
			testfixtures.WithEmployeeName("Ana"),
			testfixtures.WithEmployeeUsername("ana"),
			testfixtures.WithEmployeePassword("segredo", "hash-ana"),
			testfixtures.WithEmployeeDepartments(departments[1].ID, departments[0].ID),
		)
		created := harness.SeedEmployees(t, fixture)[0]
		if created.ID == 0 || created.CreatedAt.IsZero() {
			t.Fatalf("expected generated id and timestamps, got %#v", created)
		}

		fetched, err := harness.Employees.GetEmployee(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetEmployee failed: %v", err)
		}
		if fetched.Username != "ana" || fetched.PasswordHash != "hash-ana" {
			t.Fatalf("unexpected employee data: %#v", fetched)
		}
		if !slices.Equal(fetched.DepartmentIDs, []int{departments[1].ID, departments[0].ID}) {
			t.Fatalf("memberships should keep their order, got %v", fetched.DepartmentIDs)
		}
		if fetched.WorkSchedule != `{"seg":["08:00-12:00"]}` {
			t.Fatalf("unexpected schedule %q", fetched.WorkSchedule)
		}

		fetched.Name = "Ana Maria"
		fetched.PasswordHash = ""
		fetched.DepartmentIDs = []int{departments[0].ID}
		fetched.WorkSchedule = ""
		updated, err := harness.Employees.UpdateEmployee(ctx, fetched)
		if err != nil {
			t.Fatalf("UpdateEmployee failed: %v", err)
		}
		if updated.Name != "Ana Maria" || updated.PasswordHash != "hash-ana" {
			t.Fatalf("update should keep the stored hash, got %#v", updated)
		}
		if !slices.Equal(updated.DepartmentIDs, []int{departments[0].ID}) || updated.WorkSchedule != "{}" {
			t.Fatalf("unexpected updated employee %#v", updated)
		}

		byUsername, err := harness.Employees.GetEmployeeByUsername(ctx, "ANA")
		if err != nil || byUsername.ID != created.ID {
			t.Fatalf("GetEmployeeByUsername = %#v, %v", byUsername, err)
		}

		if err := harness.Employees.DeleteEmployee(ctx, created.ID); err != nil {
			t.Fatalf("DeleteEmployee failed: %v", err)
		}
		if err := harness.Employees.DeleteEmployee(ctx, created.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected persistence.ErrNotFound, got %v", err)
		}
		if _, err := harness.Employees.GetEmployee(ctx, created.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected persistence.ErrNotFound, got %v", err)
		}
	})

	t.Run("enforces unique usernames and required fields", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		harness.SeedEmployees(t, testfixtures.NewEmployeeFixture(testfixtures.WithEmployeeUsername("bruno")))

		duplicate := testfixtures.NewEmployeeFixture(testfixtures.WithEmployeeUsername("Bruno")).Persistence()
		duplicate.ID = 0
		if _, err := harness.Employees.CreateEmployee(ctx, duplicate); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected persistence.ErrDuplicate, got %v", err)
		}

		missing := testfixtures.NewEmployeeFixture(testfixtures.WithEmployeePassword("", "")).Persistence()
		if _, err := harness.Employees.CreateEmployee(ctx, missing); !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected persistence.ErrConstraintViolation, got %v", err)
		}

		unknownDepartment := testfixtures.NewEmployeeFixture(testfixtures.WithEmployeeDepartments(999)).Persistence()
		unknownDepartment.ID = 0
		if _, err := harness.Employees.CreateEmployee(ctx, unknownDepartment); !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected persistence.ErrForeignKeyViolation, got %v", err)
		}
		if _, err := harness.Employees.GetEmployeeByUsername(ctx, unknownDepartment.Username); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("failed insert must roll back, got %v", err)
		}
	})

	t.Run("searches and paginates", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		harness.SeedEmployees(t,
			testfixtures.NewEmployeeFixture(testfixtures.WithEmployeeName("Ana Souza"), testfixtures.WithEmployeeUsername("ana")),
			testfixtures.NewEmployeeFixture(testfixtures.WithEmployeeName("Bruno Lima"), testfixtures.WithEmployeeUsername("bruno")),
			testfixtures.NewEmployeeFixture(testfixtures.WithEmployeeName("Carla Souza"), testfixtures.WithEmployeeUsername("carla")),
		)

		page, total, err := harness.Employees.ListEmployees(ctx, persistence.EmployeeFilter{Limit: 2})
		if err != nil {
			t.Fatalf("ListEmployees failed: %v", err)
		}
		if total != 3 || len(page) != 2 || page[0].Username != "ana" {
			t.Fatalf("unexpected first page: total=%d %#v", total, page)
		}

		page, total, err = harness.Employees.ListEmployees(ctx, persistence.EmployeeFilter{Limit: 2, Offset: 2})
		if err != nil {
			t.Fatalf("ListEmployees failed: %v", err)
		}
		if total != 3 || len(page) != 1 || page[0].Username != "carla" {
			t.Fatalf("unexpected second page: total=%d %#v", total, page)
		}

		matches, total, err := harness.Employees.ListEmployees(ctx, persistence.EmployeeFilter{Search: "souza"})
		if err != nil {
			t.Fatalf("ListEmployees failed: %v", err)
		}
		if total != 2 || len(matches) != 2 {
			t.Fatalf("expected two matches, got total=%d %#v", total, matches)
		}
	})
}

func TestDepartmentRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)

	created := harness.SeedDepartments(t,
		testfixtures.NewDepartmentFixture(testfixtures.WithDepartmentName("Portaria")),
		testfixtures.NewDepartmentFixture(testfixtures.WithDepartmentName("limpeza")),
	)

	if _, err := harness.Departments.CreateDepartment(ctx, persistence.Department{Name: "LIMPEZA"}); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("names must be unique ignoring case, got %v", err)
	}

	list, err := harness.Departments.ListDepartments(ctx)
	if err != nil {
		t.Fatalf("ListDepartments failed: %v", err)
	}
	if len(list) != 2 || list[0].Name != "limpeza" || list[1].Name != "Portaria" {
		t.Fatalf("expected case-insensitive name order, got %#v", list)
	}

	renamed := created[0]
	renamed.Name = "Recepção"
	if _, err := harness.Departments.UpdateDepartment(ctx, renamed); err != nil {
		t.Fatalf("UpdateDepartment failed: %v", err)
	}
	fetched, err := harness.Departments.GetDepartment(ctx, renamed.ID)
	if err != nil || fetched.Name != "Recepção" {
		t.Fatalf("GetDepartment = %#v, %v", fetched, err)
	}

	if err := harness.Departments.DeleteDepartment(ctx, renamed.ID); err != nil {
		t.Fatalf("DeleteDepartment failed: %v", err)
	}
	if err := harness.Departments.DeleteDepartment(ctx, renamed.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected persistence.ErrNotFound, got %v", err)
	}
}

func TestServiceOrderRepository(t *testing.T) {
	t.Parallel()

	t.Run("replaces assignments on update", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		departments := harness.SeedDepartments(t, testfixtures.NewDepartmentFixture(), testfixtures.NewDepartmentFixture())
		employees := harness.SeedEmployees(t, testfixtures.NewEmployeeFixture(), testfixtures.NewEmployeeFixture())

		fixture := testfixtures.NewServiceOrderFixture(
			testfixtures.WithServiceDays(1, 3),
			testfixtures.WithAssignments(testfixtures.AssignmentFixture{
				DepartmentID:  departments[0].ID,
				Start:         "08:00",
				End:           "12:00",
				Collaborators: []int{employees[1].ID, employees[0].ID},
			}),
		)
		created, err := harness.Orders.CreateServiceOrder(ctx, fixture.Persistence())
		if err != nil {
			t.Fatalf("CreateServiceOrder failed: %v", err)
		}
		if !slices.Equal(created.ServiceDays, []int{1, 3}) || len(created.Assignments) != 1 {
			t.Fatalf("unexpected order %#v", created)
		}
		if !slices.Equal(created.Assignments[0].CollaboratorIDs, []int{employees[1].ID, employees[0].ID}) {
			t.Fatalf("collaborators should keep their order, got %v", created.Assignments[0].CollaboratorIDs)
		}

		created.ServiceDays = []int{5}
		created.Assignments = []persistence.Assignment{
			{DepartmentID: departments[1].ID, ExecutionStart: "13:00", ExecutionEnd: "17:00", CollaboratorIDs: []int{employees[0].ID}},
			{DepartmentID: departments[0].ID},
		}
		updated, err := harness.Orders.UpdateServiceOrder(ctx, created)
		if err != nil {
			t.Fatalf("UpdateServiceOrder failed: %v", err)
		}
		if !slices.Equal(updated.ServiceDays, []int{5}) || len(updated.Assignments) != 2 {
			t.Fatalf("unexpected updated order %#v", updated)
		}
		if updated.Assignments[0].DepartmentID != departments[1].ID || updated.Assignments[0].ExecutionStart != "13:00" {
			t.Fatalf("unexpected first assignment %#v", updated.Assignments[0])
		}
		if len(updated.Assignments[1].CollaboratorIDs) != 0 {
			t.Fatalf("expected an assignment without collaborators, got %v", updated.Assignments[1].CollaboratorIDs)
		}

		missing := updated
		missing.ID = 999
		if _, err := harness.Orders.UpdateServiceOrder(ctx, missing); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected persistence.ErrNotFound, got %v", err)
		}
	})

	t.Run("keeps orders when their references are deleted", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		departments := harness.SeedDepartments(t, testfixtures.NewDepartmentFixture())
		employees := harness.SeedEmployees(t, testfixtures.NewEmployeeFixture(), testfixtures.NewEmployeeFixture())

		fixture := testfixtures.NewServiceOrderFixture(testfixtures.WithAssignments(testfixtures.AssignmentFixture{
			DepartmentID:  departments[0].ID,
			Collaborators: []int{employees[0].ID, employees[1].ID},
		}))
		created, err := harness.Orders.CreateServiceOrder(ctx, fixture.Persistence())
		if err != nil {
			t.Fatalf("CreateServiceOrder failed: %v", err)
		}

		if err := harness.Employees.DeleteEmployee(ctx, employees[0].ID); err != nil {
			t.Fatalf("DeleteEmployee failed: %v", err)
		}
		if err := harness.Departments.DeleteDepartment(ctx, departments[0].ID); err != nil {
			t.Fatalf("DeleteDepartment failed: %v", err)
		}

		orders, err := harness.Orders.ListServiceOrders(ctx)
		if err != nil {
			t.Fatalf("ListServiceOrders failed: %v", err)
		}
		if len(orders) != 1 || orders[0].ID != created.ID {
			t.Fatalf("expected the order to survive, got %#v", orders)
		}
		assignment := orders[0].Assignments[0]
		if assignment.DepartmentID != departments[0].ID {
			t.Fatalf("department reference should be kept, got %d", assignment.DepartmentID)
		}
		if !slices.Equal(assignment.CollaboratorIDs, []int{employees[1].ID}) {
			t.Fatalf("deleted collaborator should cascade, got %v", assignment.CollaboratorIDs)
		}

		if err := harness.Orders.DeleteServiceOrder(ctx, created.ID); err != nil {
			t.Fatalf("DeleteServiceOrder failed: %v", err)
		}
		if _, err := harness.Orders.GetServiceOrder(ctx, created.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected persistence.ErrNotFound, got %v", err)
		}
	})

	t.Run("rejects unknown collaborators", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		fixture := testfixtures.NewServiceOrderFixture(testfixtures.WithAssignments(testfixtures.AssignmentFixture{
			DepartmentID:  1,
			Collaborators: []int{404},
		}))
		if _, err := harness.Orders.CreateServiceOrder(ctx, fixture.Persistence()); !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected persistence.ErrForeignKeyViolation, got %v", err)
		}
		orders, err := harness.Orders.ListServiceOrders(ctx)
		if err != nil || len(orders) != 0 {
			t.Fatalf("failed create must roll back, got %#v, %v", orders, err)
		}
	})
}

func TestSessionRepository(t *testing.T) {
	t.Parallel()

	t.Run("creates, reads, and revokes sessions", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		employee := testfixtures.NewEmployeeFixture(testfixtures.WithEmployeeID(7), testfixtures.WithEmployeeName("Ana"))
		session := testfixtures.NewSessionFixture(testfixtures.WithSessionPrincipal(employee.Principal())).Persistence()

		created, err := harness.Sessions.CreateSession(ctx, session)
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		if created.Token != session.Token || created.EmployeeID != 7 {
			t.Fatalf("unexpected session %#v", created)
		}

		fetched, err := harness.Sessions.GetSession(ctx, session.Token)
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if fetched.SubjectID != "employee:7" || fetched.Role != "collaborator" || fetched.DisplayName != "Ana" {
			t.Fatalf("unexpected principal data %#v", fetched)
		}
		if !fetched.ExpiresAt.Equal(session.ExpiresAt) || fetched.RevokedAt != nil {
			t.Fatalf("unexpected timestamps %#v", fetched)
		}

		revokedAt := testfixtures.ReferenceTime().Add(time.Hour)
		revoked, err := harness.Sessions.RevokeSession(ctx, session.Token, revokedAt)
		if err != nil {
			t.Fatalf("RevokeSession failed: %v", err)
		}
		if revoked.RevokedAt == nil || !revoked.RevokedAt.Equal(revokedAt) {
			t.Fatalf("unexpected revoked timestamp %v", revoked.RevokedAt)
		}

		again, err := harness.Sessions.RevokeSession(ctx, session.Token, revokedAt.Add(time.Hour))
		if err != nil {
			t.Fatalf("second RevokeSession failed: %v", err)
		}
		if !again.RevokedAt.Equal(revokedAt) {
			t.Fatalf("revocation time must not move, got %v", again.RevokedAt)
		}

		if _, err := harness.Sessions.RevokeSession(ctx, "missing", revokedAt); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected persistence.ErrNotFound, got %v", err)
		}
		if _, err := harness.Sessions.CreateSession(ctx, session); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected persistence.ErrDuplicate, got %v", err)
		}
	})

	t.Run("deletes expired sessions", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		base := testfixtures.ReferenceTime()

		expired := testfixtures.NewSessionFixture(testfixtures.WithSessionExpiresAt(base.Add(-time.Minute))).Persistence()
		active := testfixtures.NewSessionFixture(testfixtures.WithSessionExpiresAt(base.Add(time.Hour))).Persistence()
		for _, session := range []persistence.Session{expired, active} {
			if _, err := harness.Sessions.CreateSession(ctx, session); err != nil {
				t.Fatalf("CreateSession failed: %v", err)
			}
		}

		if err := harness.Sessions.DeleteExpiredSessions(ctx, base); err != nil {
			t.Fatalf("DeleteExpiredSessions failed: %v", err)
		}
		if _, err := harness.Sessions.GetSession(ctx, expired.Token); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected expired session to be removed, got %v", err)
		}
		if _, err := harness.Sessions.GetSession(ctx, active.Token); err != nil {
			t.Fatalf("active session should remain: %v", err)
		}
	})

	t.Run("requires identifiers", func(t *testing.T) {
		t.Parallel()

		harness := testfixtures.NewSQLiteHarness(t)
		session := testfixtures.NewSessionFixture().Persistence()
		session.Token = ""
		if _, err := harness.Sessions.CreateSession(context.Background(), session); !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected persistence.ErrConstraintViolation, got %v", err)
		}
	})
}
