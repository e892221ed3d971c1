package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iehaus/buildboard/internal/authz"
	"github.com/iehaus/buildboard/internal/department"
	"github.com/iehaus/buildboard/internal/employee"
	"github.com/iehaus/buildboard/internal/eventbus"
	"github.com/iehaus/buildboard/internal/project"
	"github.com/iehaus/buildboard/internal/rollup"
	"github.com/iehaus/buildboard/internal/task"
	"github.com/iehaus/buildboard/pkg/cerr"
)

type fakeProjects struct {
	list []*project.Project
}

func (f *fakeProjects) Create(context.Context, *project.Project) error { return nil }
func (f *fakeProjects) Update(context.Context, *project.Project) error { return nil }
func (f *fakeProjects) Delete(context.Context, string) error           { return nil }

func (f *fakeProjects) Get(_ context.Context, id string) (*project.Project, error) {
	for _, p := range f.list {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, cerr.NewError(cerr.NotFound, "project not found", nil)
}

func (f *fakeProjects) List(context.Context) ([]*project.Project, error) {
	return f.list, nil
}

type fakeEmployees struct {
	list []*employee.Employee
}

func (f *fakeEmployees) Create(context.Context, *employee.Employee) error { return nil }
func (f *fakeEmployees) Update(context.Context, *employee.Employee) error { return nil }
func (f *fakeEmployees) Delete(context.Context, string) error             { return nil }

func (f *fakeEmployees) Get(_ context.Context, id string) (*employee.Employee, error) {
	for _, e := range f.list {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, cerr.NewError(cerr.NotFound, "employee not found", nil)
}

func (f *fakeEmployees) List(context.Context) ([]*employee.Employee, error) {
	return f.list, nil
}

type fakeTasks struct {
	byProject map[string][]*task.Task
}

func (f *fakeTasks) Create(context.Context, *task.Task) error          { return nil }
func (f *fakeTasks) Get(context.Context, string) (*task.Task, error)   { return nil, nil }
func (f *fakeTasks) Update(context.Context, *task.Task) error          { return nil }
func (f *fakeTasks) Delete(context.Context, string) error              { return nil }
func (f *fakeTasks) DeleteByProject(context.Context, string) error     { return nil }
func (f *fakeTasks) CountByProject(context.Context, string) (int64, error) {
	return 0, nil
}

func (f *fakeTasks) ReplaceForProject(context.Context, string, []*task.Task) error {
	return nil
}

func (f *fakeTasks) ListByProject(_ context.Context, projectID string) ([]*task.Task, error) {
	return f.byProject[projectID], nil
}

func (f *fakeTasks) ListByProjects(_ context.Context, projectIDs []string) ([]*task.Task, error) {
	var out []*task.Task
	for _, id := range projectIDs {
		out = append(out, f.byProject[id]...)
	}
	return out, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

// fixture: fiscal year 2024 runs 2024-08-01 .. 2025-07-31, "now" is
// 2025-02-15 inside it.
func fixture() (*Builder, *fakeTasks) {
	projects := &fakeProjects{list: []*project.Project{
		{ID: "p-1", AnchorDate: datePtr(2024, time.October, 1), Status: project.StatusUnderConstruction, AssignedSalesID: "emp-1"},
		{ID: "p-2", AnchorDate: datePtr(2025, time.January, 10), Status: project.StatusPostContract, AssignedSalesID: "emp-2"},
		{ID: "p-last-year", AnchorDate: datePtr(2024, time.May, 1), Status: project.StatusCompleted},
		{ID: "p-pipeline", Status: project.StatusPreContract},
	}}
	employees := &fakeEmployees{list: []*employee.Employee{
		{ID: "emp-1", Role: employee.RoleMember, Position: department.PositionSales, Branch: "tokyo"},
		{ID: "emp-2", Role: employee.RoleMember, Position: department.PositionSales, Branch: "osaka"},
	}}
	tasks := &fakeTasks{byProject: map[string][]*task.Task{
		"p-1": {
			{ID: "t-1", ProjectID: "p-1", ResponsibleDepartment: department.PositionSales, DueDate: datePtr(2025, time.February, 1), Status: task.StatusNotStarted},
			{ID: "t-2", ProjectID: "p-1", ResponsibleDepartment: department.PositionDesign, DueDate: datePtr(2025, time.February, 15), Status: task.StatusNotStarted},
		},
		"p-2": {
			{ID: "t-3", ProjectID: "p-2", ResponsibleDepartment: department.PositionSales, DueDate: datePtr(2025, time.February, 18), Status: task.StatusNotStarted},
			{ID: "t-4", ProjectID: "p-2", ResponsibleDepartment: department.PositionConstruction, DueDate: datePtr(2025, time.January, 20), Status: task.StatusCompleted},
		},
	}}
	now := func() time.Time {
		return time.Date(2025, time.February, 15, 9, 0, 0, 0, time.UTC)
	}
	return NewBuilder(projects, employees, tasks, authz.NewEvaluator(), time.UTC, now), tasks
}

func TestBuildCompanySnapshot(t *testing.T) {
	b, _ := fixture()

	snap, err := b.Build(context.Background(), nil, 2024, authz.ScopeCompany)
	require.NoError(t, err)

	assert.Equal(t, 2024, snap.FiscalYear)
	assert.Equal(t, "FY2024", snap.FiscalLabel)

	// p-1, p-2 by contract date, p-pipeline because the running year carries
	// undated projects; p-last-year is out.
	require.Len(t, snap.Projects, 3)
	assert.Equal(t, "p-1", snap.Projects[0].Project.ID)
	assert.Equal(t, "p-2", snap.Projects[1].Project.ID)
	assert.Equal(t, "p-pipeline", snap.Projects[2].Project.ID)

	assert.Equal(t, 2, snap.KPI.ContractCount, "pipeline project has no contract yet")
	assert.Equal(t, 1, snap.KPI.StatusCounts[project.StatusUnderConstruction])
	assert.Equal(t, 1, snap.KPI.StatusCounts[project.StatusPostContract])
	assert.Equal(t, 1, snap.KPI.StatusCounts[project.StatusPreContract])

	assert.Equal(t, 4, snap.KPI.TotalTaskCount)
	assert.Equal(t, 1, snap.KPI.OverdueTaskCount, "t-1 overdue, t-4 closed")
	assert.Equal(t, 1, snap.KPI.DueTodayCount, "t-2")
	assert.Equal(t, 1, snap.KPI.DueThisWeekCount, "t-3")
}

func TestBuildPastFiscalYear(t *testing.T) {
	b, _ := fixture()

	snap, err := b.Build(context.Background(), nil, 2023, authz.ScopeCompany)
	require.NoError(t, err)

	require.Len(t, snap.Projects, 1)
	assert.Equal(t, "p-last-year", snap.Projects[0].Project.ID)
	assert.Equal(t, 1, snap.KPI.ContractCount)
}

func TestBuildPersonalScope(t *testing.T) {
	b, _ := fixture()
	actor := &employee.Employee{ID: "emp-1", Role: employee.RoleMember, Position: department.PositionSales, Branch: "tokyo"}

	snap, err := b.Build(context.Background(), actor, 2024, authz.ScopePersonal)
	require.NoError(t, err)

	require.Len(t, snap.Projects, 1)
	assert.Equal(t, "p-1", snap.Projects[0].Project.ID)
	assert.Equal(t, 1, snap.KPI.OverdueTaskCount)
	// Contract count stays company-wide; only the project list narrows.
	assert.Equal(t, 2, snap.KPI.ContractCount)
}

func TestBuildPerProjectRollup(t *testing.T) {
	b, _ := fixture()

	snap, err := b.Build(context.Background(), nil, 2024, authz.ScopeCompany)
	require.NoError(t, err)

	p1 := snap.Projects[0]
	assert.Equal(t, 1, p1.OverdueTaskCount)
	var sales rollup.DepartmentStatus
	for _, d := range p1.Departments {
		if d.Group == department.GroupSales {
			sales = d
		}
	}
	assert.Equal(t, rollup.TrafficWarning, sales.TrafficLight)
	assert.Equal(t, 1, sales.DelayedTaskCount)
}

func TestRefresherRebuildsOnEvents(t *testing.T) {
	b, _ := fixture()
	bus := eventbus.New()
	r := NewRefresher(b, bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	// Run warms the cache before consuming events.
	require.Eventually(t, func() bool { return r.Current() != nil }, 2*time.Second, 10*time.Millisecond)
	first := r.Current()
	assert.Equal(t, 2, first.KPI.ContractCount)

	bus.PublishNew(eventbus.TypeTaskStatusChanged, "t-1", nil)
	require.Eventually(t, func() bool {
		cur := r.Current()
		return cur != nil && cur != first
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not stop on cancel")
	}
}
