package pushnotification

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/iehaus/buildboard/internal/eventbus"
	"github.com/iehaus/buildboard/internal/project"
	"github.com/iehaus/buildboard/internal/task"
)

type pusher interface {
	SendToAll(ctx context.Context, payload *NotificationPayload)
}

// Dispatcher turns delay signals into web push notifications: an immediate
// push when a task is manually marked delayed, and a scheduled daily digest
// of everything overdue.
type Dispatcher struct {
	eventBus    *eventbus.Bus
	projectRepo project.Repository
	taskRepo    task.Repository
	sender      pusher
	digestAt    string
	loc         *time.Location
	now         func() time.Time
}

func NewDispatcher(eventBus *eventbus.Bus, projectRepo project.Repository, taskRepo task.Repository, sender *Sender, digestAt string, loc *time.Location) *Dispatcher {
	if loc == nil {
		loc = time.Local
	}
	return &Dispatcher{
		eventBus:    eventBus,
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		sender:      sender,
		digestAt:    digestAt,
		loc:         loc,
		now:         time.Now,
	}
}

// Start consumes bus events and runs the digest schedule until ctx is
// cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	scheduler := cron.New(cron.WithLocation(d.loc))
	spec, err := cronSpec(d.digestAt)
	if err != nil {
		slog.Error("push dispatcher: invalid digest time, digest disabled", "digest_at", d.digestAt, "error", err)
	} else {
		if _, err := scheduler.AddFunc(spec, func() { d.sendDigest(ctx) }); err != nil {
			slog.Error("push dispatcher: failed to schedule digest", "error", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	subID, ch := d.eventBus.Subscribe(256)
	defer d.eventBus.Unsubscribe(subID)

	slog.Info("push notification dispatcher started", "digest_at", d.digestAt, "timezone", d.loc.String())
	for {
		select {
		case <-ctx.Done():
			slog.Info("push notification dispatcher stopped")
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if event.Type == eventbus.TypeTaskStatusChanged && event.Metadata["status"] == string(task.StatusDelayed) {
				d.handleTaskDelayed(ctx, event)
			}
		}
	}
}

// cronSpec converts an HH:MM local time into a daily cron expression.
func cronSpec(at string) (string, error) {
	parts := strings.SplitN(at, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("expected HH:MM, got %q", at)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", at)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", at)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

func (d *Dispatcher) handleTaskDelayed(ctx context.Context, event *eventbus.Event) {
	t, err := d.taskRepo.Get(ctx, event.ResourceID)
	if err != nil {
		slog.Error("push dispatcher: failed to get delayed task", "id", event.ResourceID, "error", err)
		return
	}

	d.sender.SendToAll(ctx, &NotificationPayload{
		Title: "Task delayed",
		Body:  t.Title,
		URL:   fmt.Sprintf("/projects/%s/tasks/%s", t.ProjectID, t.ID),
		Tag:   t.ID,
	})
}

// sendDigest pushes one summary of all currently overdue tasks. Nothing is
// sent on a clean day.
func (d *Dispatcher) sendDigest(ctx context.Context) {
	projects, err := d.projectRepo.List(ctx)
	if err != nil {
		slog.Error("push dispatcher: failed to list projects for digest", "error", err)
		return
	}
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}

	tasks, err := d.taskRepo.ListByProjects(ctx, ids)
	if err != nil {
		slog.Error("push dispatcher: failed to list tasks for digest", "error", err)
		return
	}

	now := d.now()
	overdue := 0
	affected := map[string]bool{}
	for _, t := range tasks {
		if task.IsOverdue(t, now) {
			overdue++
			affected[t.ProjectID] = true
		}
	}
	if overdue == 0 {
		slog.Debug("push dispatcher: no overdue tasks, skipping digest")
		return
	}

	d.sender.SendToAll(ctx, &NotificationPayload{
		Title: "Overdue task digest",
		Body:  fmt.Sprintf("%d overdue tasks across %d projects", overdue, len(affected)),
		URL:   "/dashboard",
		Tag:   "overdue-digest",
	})
	slog.Info("push dispatcher: digest sent", "overdue", overdue, "projects", len(affected))
}
