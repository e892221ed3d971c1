package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iehaus/buildboard/internal/department"
	"github.com/iehaus/buildboard/internal/eventbus"
	"github.com/iehaus/buildboard/internal/project"
	"github.com/iehaus/buildboard/internal/taskcatalog"
	"github.com/iehaus/buildboard/pkg/cerr"
)

type fakeProjectRepo struct {
	projects map[string]*project.Project
}

func (r *fakeProjectRepo) Create(_ context.Context, p *project.Project) error {
	r.projects[p.ID] = p
	return nil
}

func (r *fakeProjectRepo) Get(_ context.Context, id string) (*project.Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, "project not found", nil)
	}
	return p, nil
}

func (r *fakeProjectRepo) List(_ context.Context) ([]*project.Project, error) {
	out := make([]*project.Project, 0, len(r.projects))
	for _, p := range r.projects {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProjectRepo) Update(_ context.Context, p *project.Project) error {
	r.projects[p.ID] = p
	return nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, id string) error {
	delete(r.projects, id)
	return nil
}

type fakeCatalog struct {
	templates []*taskcatalog.Template
}

func (c *fakeCatalog) List(_ context.Context) ([]*taskcatalog.Template, error) {
	return c.templates, nil
}

func (c *fakeCatalog) Get(_ context.Context, id int) (*taskcatalog.Template, error) {
	for _, tpl := range c.templates {
		if tpl.ID == id {
			return tpl, nil
		}
	}
	return nil, cerr.NewError(cerr.NotFound, "template not found", nil)
}

type fakeTaskRepo struct {
	byProject  map[string][]*Task
	replaceErr error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{byProject: map[string][]*Task{}}
}

func (r *fakeTaskRepo) Create(_ context.Context, t *Task) error {
	r.byProject[t.ProjectID] = append(r.byProject[t.ProjectID], t)
	return nil
}

func (r *fakeTaskRepo) Get(_ context.Context, id string) (*Task, error) {
	for _, tasks := range r.byProject {
		for _, t := range tasks {
			if t.ID == id {
				return t, nil
			}
		}
	}
	return nil, cerr.NewError(cerr.NotFound, "task not found", nil)
}

func (r *fakeTaskRepo) ListByProject(_ context.Context, projectID string) ([]*Task, error) {
	return r.byProject[projectID], nil
}

func (r *fakeTaskRepo) ListByProjects(_ context.Context, projectIDs []string) ([]*Task, error) {
	var out []*Task
	for _, id := range projectIDs {
		out = append(out, r.byProject[id]...)
	}
	return out, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, t *Task) error {
	for projectID, tasks := range r.byProject {
		for i, existing := range tasks {
			if existing.ID == t.ID {
				r.byProject[projectID][i] = t
				return nil
			}
		}
	}
	return cerr.NewError(cerr.NotFound, "task not found", nil)
}

func (r *fakeTaskRepo) Delete(_ context.Context, id string) error {
	for projectID, tasks := range r.byProject {
		for i, existing := range tasks {
			if existing.ID == id {
				r.byProject[projectID] = append(tasks[:i], tasks[i+1:]...)
				return nil
			}
		}
	}
	return cerr.NewError(cerr.NotFound, "task not found", nil)
}

func (r *fakeTaskRepo) DeleteByProject(_ context.Context, projectID string) error {
	delete(r.byProject, projectID)
	return nil
}

func (r *fakeTaskRepo) ReplaceForProject(_ context.Context, projectID string, tasks []*Task) error {
	if r.replaceErr != nil {
		return r.replaceErr
	}
	r.byProject[projectID] = tasks
	return nil
}

func (r *fakeTaskRepo) CountByProject(_ context.Context, projectID string) (int64, error) {
	return int64(len(r.byProject[projectID])), nil
}

func regenFixture() (*Regenerator, *fakeTaskRepo, *fakeProjectRepo) {
	anchor := date(2025, time.January, 1)
	projects := &fakeProjectRepo{projects: map[string]*project.Project{
		"p-1": {
			ID:              "p-1",
			CustomerName:    "Sato residence",
			AnchorDate:      &anchor,
			Status:          project.StatusPostContract,
			AssignedSalesID: "emp-sales",
		},
		"p-no-anchor": {ID: "p-no-anchor", Status: project.StatusPreContract},
	}}
	catalog := &fakeCatalog{templates: []*taskcatalog.Template{
		{ID: 1, Title: "Kickoff", ResponsibleDepartment: department.PositionSales, DaysFromAnchor: intPtr(0)},
		{ID: 2, Title: "Plan draft", ResponsibleDepartment: department.PositionDesign, DaysFromAnchor: intPtr(30)},
	}}
	tasks := newFakeTaskRepo()
	now := func() time.Time { return date(2025, time.January, 2) }
	return NewRegenerator(projects, catalog, tasks, eventbus.New(), now), tasks, projects
}

func TestRegenerateRequiresConfirmation(t *testing.T) {
	r, _, _ := regenFixture()

	_, err := r.Regenerate(context.Background(), "p-1", "emp-head", false)
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.FailedPrecondition))
}

func TestRegenerateRequiresAnchorDate(t *testing.T) {
	r, _, _ := regenFixture()

	_, err := r.Regenerate(context.Background(), "p-no-anchor", "emp-head", true)
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.FailedPrecondition))
}

func TestRegenerateReplacesTasks(t *testing.T) {
	r, tasks, _ := regenFixture()
	stale := &Task{ID: "old-1", ProjectID: "p-1", Title: "stale", Status: StatusCompleted}
	require.NoError(t, tasks.Create(context.Background(), stale))

	out, err := r.Regenerate(context.Background(), "p-1", "emp-head", true)
	require.NoError(t, err)
	require.Len(t, out, 2)

	stored := tasks.byProject["p-1"]
	require.Len(t, stored, 2)
	for _, task := range stored {
		assert.Equal(t, "p-1", task.ProjectID)
		assert.Equal(t, StatusNotStarted, task.Status)
		assert.NotEqual(t, "old-1", task.ID)
	}
	require.NotNil(t, stored[0].DueDate)
	assert.Equal(t, date(2025, time.January, 1), *stored[0].DueDate)
	assert.Equal(t, "emp-sales", stored[0].AssignedTo)
}

func TestRegenerateKeepsTasksWhenReplaceFails(t *testing.T) {
	r, tasks, _ := regenFixture()
	stale := &Task{ID: "old-1", ProjectID: "p-1", Title: "stale"}
	require.NoError(t, tasks.Create(context.Background(), stale))
	tasks.replaceErr = errors.New("disk full")

	_, err := r.Regenerate(context.Background(), "p-1", "emp-head", true)
	require.Error(t, err)

	stored := tasks.byProject["p-1"]
	require.Len(t, stored, 1)
	assert.Equal(t, "old-1", stored[0].ID)
}
