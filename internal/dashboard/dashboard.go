// Package dashboard assembles the KPI and traffic-light view the frontend
// renders. Snapshots are computed on demand from current projects and tasks;
// nothing here is persisted, and delay states are always derived through the
// task status evaluator rather than stored.
package dashboard

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/iehaus/buildboard/internal/authz"
	"github.com/iehaus/buildboard/internal/employee"
	"github.com/iehaus/buildboard/internal/fiscal"
	"github.com/iehaus/buildboard/internal/project"
	"github.com/iehaus/buildboard/internal/rollup"
	"github.com/iehaus/buildboard/internal/task"
)

// fetchConcurrency bounds parallel per-project task queries during a rebuild.
const fetchConcurrency = 4

type KPI struct {
	// ContractCount counts projects whose contract date falls inside the
	// fiscal year window.
	ContractCount    int                    `json:"contract_count"`
	StatusCounts     map[project.Status]int `json:"status_counts"`
	TotalTaskCount   int                    `json:"total_task_count"`
	OverdueTaskCount int                    `json:"overdue_task_count"`
	DueTodayCount    int                    `json:"due_today_count"`
	DueThisWeekCount int                    `json:"due_this_week_count"`
}

// ProjectSummary is one row of the dashboard matrix: the project plus its own
// department rollup.
type ProjectSummary struct {
	Project          *project.Project          `json:"project"`
	Departments      []rollup.DepartmentStatus `json:"departments"`
	OverdueTaskCount int                       `json:"overdue_task_count"`
}

type Snapshot struct {
	FiscalYear  int                       `json:"fiscal_year"`
	FiscalLabel string                    `json:"fiscal_label"`
	Scope       authz.Scope               `json:"scope"`
	GeneratedAt time.Time                 `json:"generated_at"`
	KPI         KPI                       `json:"kpi"`
	Departments []rollup.DepartmentStatus `json:"departments"`
	Projects    []ProjectSummary          `json:"projects"`
}

// Scoper narrows the project set to a view scope.
type Scoper interface {
	FilterProjects(scope authz.Scope, actor *employee.Employee, projects []*project.Project, employeesByID map[string]*employee.Employee) []*project.Project
}

// Builder computes snapshots. The clock and location are injected so fiscal
// windows and overdue-ness are reproducible in tests.
type Builder struct {
	projects  project.Repository
	employees employee.Repository
	tasks     task.Repository
	scoper    Scoper
	loc       *time.Location
	now       func() time.Time
}

func NewBuilder(projects project.Repository, employees employee.Repository, tasks task.Repository, scoper Scoper, loc *time.Location, now func() time.Time) *Builder {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Builder{
		projects:  projects,
		employees: employees,
		tasks:     tasks,
		scoper:    scoper,
		loc:       loc,
		now:       now,
	}
}

// Build computes the snapshot for one fiscal year and scope. Projects without
// a contract date are treated as current pipeline: they appear only in the
// running fiscal year's view and never count toward contracts.
func (b *Builder) Build(ctx context.Context, actor *employee.Employee, fiscalYear int, scope authz.Scope) (*Snapshot, error) {
	now := b.now()
	window := fiscal.WindowOf(fiscalYear, b.loc)
	currentYear := fiscal.YearOf(now.In(b.loc))

	all, err := b.projects.List(ctx)
	if err != nil {
		return nil, err
	}

	var inYear []*project.Project
	contractCount := 0
	for _, p := range all {
		switch {
		case p.AnchorDate != nil && window.Contains(p.AnchorDate.In(b.loc)):
			contractCount++
			inYear = append(inYear, p)
		case p.AnchorDate == nil && fiscalYear == currentYear:
			inYear = append(inYear, p)
		}
	}

	if scope != authz.ScopeCompany {
		byID, err := b.employeesByID(ctx)
		if err != nil {
			return nil, err
		}
		inYear = b.scoper.FilterProjects(scope, actor, inYear, byID)
	}

	tasksByProject, err := b.fetchTasks(ctx, inYear)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		FiscalYear:  fiscalYear,
		FiscalLabel: window.Label(),
		Scope:       scope,
		GeneratedAt: now,
		KPI: KPI{
			ContractCount: contractCount,
			StatusCounts:  map[project.Status]int{},
		},
	}

	var allTasks []*task.Task
	for _, p := range inYear {
		snap.KPI.StatusCounts[p.Status]++

		projectTasks := tasksByProject[p.ID]
		allTasks = append(allTasks, projectTasks...)

		overdue := 0
		for _, t := range projectTasks {
			snap.KPI.TotalTaskCount++
			if task.IsOverdue(t, now) {
				snap.KPI.OverdueTaskCount++
				overdue++
			}
			if task.IsDueToday(t, now) {
				snap.KPI.DueTodayCount++
			}
			if task.IsDueThisWeek(t, now) {
				snap.KPI.DueThisWeekCount++
			}
		}
		snap.Projects = append(snap.Projects, ProjectSummary{
			Project:          p,
			Departments:      rollup.Rollup(projectTasks, now),
			OverdueTaskCount: overdue,
		})
	}
	snap.Departments = rollup.Rollup(allTasks, now)

	sort.Slice(snap.Projects, func(i, j int) bool {
		return snap.Projects[i].Project.ID < snap.Projects[j].Project.ID
	})
	return snap, nil
}

func (b *Builder) employeesByID(ctx context.Context) (map[string]*employee.Employee, error) {
	list, err := b.employees.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*employee.Employee, len(list))
	for _, e := range list {
		byID[e.ID] = e
	}
	return byID, nil
}

// fetchTasks loads every project's task list with bounded concurrency. One
// failed query fails the whole rebuild; a partial dashboard would silently
// understate delays.
func (b *Builder) fetchTasks(ctx context.Context, projects []*project.Project) (map[string][]*task.Task, error) {
	out := make(map[string][]*task.Task, len(projects))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(fetchConcurrency).WithErrors().WithContext(ctx)
	for _, proj := range projects {
		p.Go(func(ctx context.Context) error {
			tasks, err := b.tasks.ListByProject(ctx, proj.ID)
			if err != nil {
				return err
			}
			mu.Lock()
			out[proj.ID] = tasks
			mu.Unlock()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
