package pushnotification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iehaus/buildboard/internal/eventbus"
	"github.com/iehaus/buildboard/internal/project"
	"github.com/iehaus/buildboard/internal/task"
	"github.com/iehaus/buildboard/pkg/cerr"
)

type fakePusher struct {
	payloads []*NotificationPayload
}

func (f *fakePusher) SendToAll(_ context.Context, payload *NotificationPayload) {
	f.payloads = append(f.payloads, payload)
}

type fakeProjects struct {
	list []*project.Project
}

func (f *fakeProjects) Create(context.Context, *project.Project) error { return nil }
func (f *fakeProjects) Update(context.Context, *project.Project) error { return nil }
func (f *fakeProjects) Delete(context.Context, string) error           { return nil }
func (f *fakeProjects) Get(context.Context, string) (*project.Project, error) {
	return nil, cerr.NewError(cerr.NotFound, "project not found", nil)
}
func (f *fakeProjects) List(context.Context) ([]*project.Project, error) { return f.list, nil }

type fakeTasks struct {
	tasks []*task.Task
}

func (f *fakeTasks) Create(context.Context, *task.Task) error                      { return nil }
func (f *fakeTasks) Update(context.Context, *task.Task) error                      { return nil }
func (f *fakeTasks) Delete(context.Context, string) error                          { return nil }
func (f *fakeTasks) DeleteByProject(context.Context, string) error                 { return nil }
func (f *fakeTasks) CountByProject(context.Context, string) (int64, error)         { return 0, nil }
func (f *fakeTasks) ReplaceForProject(context.Context, string, []*task.Task) error { return nil }

func (f *fakeTasks) Get(_ context.Context, id string) (*task.Task, error) {
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, cerr.NewError(cerr.NotFound, "task not found", nil)
}

func (f *fakeTasks) ListByProject(context.Context, string) ([]*task.Task, error) {
	return f.tasks, nil
}

func (f *fakeTasks) ListByProjects(context.Context, []string) ([]*task.Task, error) {
	return f.tasks, nil
}

func TestCronSpec(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"08:00", "0 8 * * *", false},
		{"23:59", "59 23 * * *", false},
		{"0:05", "5 0 * * *", false},
		{"24:00", "", true},
		{"08:60", "", true},
		{"eight", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := cronSpec(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestHandleTaskDelayed(t *testing.T) {
	pusher := &fakePusher{}
	d := &Dispatcher{
		taskRepo: &fakeTasks{tasks: []*task.Task{
			{ID: "t-1", ProjectID: "p-1", Title: "Pour foundation"},
		}},
		sender: pusher,
		now:    time.Now,
	}

	d.handleTaskDelayed(context.Background(), &eventbus.Event{
		Type:       eventbus.TypeTaskStatusChanged,
		ResourceID: "t-1",
		Metadata:   map[string]string{"status": "delayed"},
	})

	require.Len(t, pusher.payloads, 1)
	assert.Equal(t, "Task delayed", pusher.payloads[0].Title)
	assert.Equal(t, "Pour foundation", pusher.payloads[0].Body)
	assert.Equal(t, "/projects/p-1/tasks/t-1", pusher.payloads[0].URL)
}

func TestSendDigest(t *testing.T) {
	due := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	pusher := &fakePusher{}
	d := &Dispatcher{
		projectRepo: &fakeProjects{list: []*project.Project{{ID: "p-1"}, {ID: "p-2"}}},
		taskRepo: &fakeTasks{tasks: []*task.Task{
			{ID: "t-1", ProjectID: "p-1", DueDate: &due, Status: task.StatusNotStarted},
			{ID: "t-2", ProjectID: "p-1", DueDate: &due, Status: task.StatusRequested},
			{ID: "t-3", ProjectID: "p-2", DueDate: &future, Status: task.StatusNotStarted},
			{ID: "t-4", ProjectID: "p-2", DueDate: &due, Status: task.StatusCompleted},
		}},
		sender: pusher,
		now: func() time.Time {
			return time.Date(2025, time.February, 15, 8, 0, 0, 0, time.UTC)
		},
	}

	d.sendDigest(context.Background())

	require.Len(t, pusher.payloads, 1)
	assert.Equal(t, "Overdue task digest", pusher.payloads[0].Title)
	assert.Equal(t, "2 overdue tasks across 1 projects", pusher.payloads[0].Body)
}

func TestSendDigestSkipsWhenClean(t *testing.T) {
	pusher := &fakePusher{}
	d := &Dispatcher{
		projectRepo: &fakeProjects{list: []*project.Project{{ID: "p-1"}}},
		taskRepo:    &fakeTasks{},
		sender:      pusher,
		now:         time.Now,
	}

	d.sendDigest(context.Background())
	assert.Empty(t, pusher.payloads)
}
