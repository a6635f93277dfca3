package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/service-order-scheduler/internal/scheduler"
)

type stubSource struct {
	employees   []scheduler.Employee
	departments []scheduler.Department
	orders      []scheduler.ServiceOrder

	employeesErr   error
	departmentsErr error
	ordersErr      error

	// barrier, when set, makes every call wait until all three fetches have started.
	barrier *sync.WaitGroup
}

func (s *stubSource) wait(ctx context.Context) error {
	if s.barrier == nil {
		return nil
	}
	s.barrier.Done()
	done := make(chan struct{})
	go func() {
		s.barrier.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *stubSource) ListEmployees(ctx context.Context) ([]scheduler.Employee, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.employees, s.employeesErr
}

func (s *stubSource) ListDepartments(ctx context.Context) ([]scheduler.Department, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.departments, s.departmentsErr
}

func (s *stubSource) ListServiceOrders(ctx context.Context) ([]scheduler.ServiceOrder, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.orders, s.ordersErr
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveRefresh(outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedNow() time.Time {
	return time.Date(2024, time.March, 11, 9, 0, 0, 0, time.UTC)
}

func TestStoreStartsEmpty(t *testing.T) {
	s := New()
	snap := s.Snapshot()
	assert.True(t, snap.Empty())
	assert.False(t, s.Status().Loaded)

	var nilStore *Store
	assert.True(t, nilStore.Snapshot().Empty())
}

func TestRefreshPublishesAllSetsTogether(t *testing.T) {
	barrier := &sync.WaitGroup{}
	barrier.Add(3)
	source := &stubSource{
		employees:   []scheduler.Employee{{ID: 7, Name: "Ana"}},
		departments: []scheduler.Department{{ID: 10, Name: "Limpeza"}},
		orders:      []scheduler.ServiceOrder{{ID: 1, ServiceDays: []int{1}}},
		barrier:     barrier,
	}
	observer := &recordingObserver{}
	s := New()
	refresher := NewRefresher(source, s, fixedNow, observer, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, refresher.Refresh(ctx), "fetches must run concurrently")

	snap := s.Snapshot()
	assert.Len(t, snap.Employees, 1)
	assert.Len(t, snap.Departments, 1)
	assert.Len(t, snap.Orders, 1)
	assert.Equal(t, fixedNow(), snap.LoadedAt)

	status := s.Status()
	assert.True(t, status.Loaded)
	assert.False(t, status.Stale)
	assert.Equal(t, []string{OutcomeSuccess}, observer.outcomes)
}

func TestRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	source := &stubSource{
		employees:   []scheduler.Employee{{ID: 7, Name: "Ana"}},
		departments: []scheduler.Department{{ID: 10, Name: "Limpeza"}},
		orders:      []scheduler.ServiceOrder{{ID: 1}},
	}
	observer := &recordingObserver{}
	s := New()
	refresher := NewRefresher(source, s, fixedNow, observer, discardLogger())
	require.NoError(t, refresher.Refresh(context.Background()))

	source.employees = []scheduler.Employee{{ID: 8, Name: "Bruno"}}
	source.ordersErr = errors.New("backend down")

	err := refresher.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list service orders")

	snap := s.Snapshot()
	require.Len(t, snap.Employees, 1)
	assert.Equal(t, 7, snap.Employees[0].ID, "no partial snapshot may be published")

	status := s.Status()
	assert.True(t, status.Loaded)
	assert.True(t, status.Stale)
	assert.Contains(t, status.LastError, "backend down")
	assert.Equal(t, []string{OutcomeSuccess, OutcomeFailure}, observer.outcomes)

	source.ordersErr = nil
	require.NoError(t, refresher.Refresh(context.Background()))
	assert.False(t, s.Status().Stale)
	assert.Equal(t, 8, s.Snapshot().Employees[0].ID)
}

func TestRefreshFailureBeforeFirstLoad(t *testing.T) {
	source := &stubSource{departmentsErr: errors.New("timeout")}
	s := New()
	refresher := NewRefresher(source, s, fixedNow, nil, discardLogger())

	require.Error(t, refresher.Refresh(context.Background()))
	assert.True(t, s.Snapshot().Empty())
	assert.False(t, s.Status().Loaded)
	assert.True(t, s.Status().Stale)
}

func TestApplyIsCopyOnWrite(t *testing.T) {
	s := New()
	s.Replace(scheduler.Snapshot{Orders: []scheduler.ServiceOrder{{ID: 1}, {ID: 2}}}, fixedNow())

	before := s.Snapshot()
	after := s.Apply(func(snap scheduler.Snapshot) scheduler.Snapshot {
		return snap.WithoutOrder(1)
	})

	assert.Len(t, before.Orders, 2)
	assert.Len(t, after.Orders, 1)
	assert.Len(t, s.Snapshot().Orders, 1)
}

func TestRefresherNotConfigured(t *testing.T) {
	var r *Refresher
	assert.Error(t, r.Refresh(context.Background()))
}

func TestRunStopsOnCancel(t *testing.T) {
	source := &stubSource{}
	s := New()
	refresher := NewRefresher(source, s, nil, nil, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		refresher.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return s.Status().Loaded }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
