package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iehaus/buildboard/internal/eventbus"
	"github.com/iehaus/buildboard/internal/project"
	"github.com/iehaus/buildboard/internal/taskcatalog"
	"github.com/iehaus/buildboard/pkg/cerr"
)

// Regenerator rebuilds a project's full checklist from the current catalog.
// Regeneration is destructive: manual edits to previously materialized tasks
// (statuses, custom due dates) are lost. The operation therefore requires an
// explicit confirmation, records the acting employee, and runs delete+insert
// atomically so a failure can never leave the project with no tasks.
type Regenerator struct {
	projects project.Repository
	catalog  taskcatalog.Repository
	tasks    Repository
	bus      *eventbus.Bus
	now      func() time.Time
}

func NewRegenerator(projects project.Repository, catalog taskcatalog.Repository, tasks Repository, bus *eventbus.Bus, now func() time.Time) *Regenerator {
	if now == nil {
		now = time.Now
	}
	return &Regenerator{
		projects: projects,
		catalog:  catalog,
		tasks:    tasks,
		bus:      bus,
		now:      now,
	}
}

// Regenerate replaces the project's tasks with a fresh materialization.
func (r *Regenerator) Regenerate(ctx context.Context, projectID, actorID string, confirmed bool) ([]*Task, error) {
	if !confirmed {
		return nil, cerr.NewError(cerr.FailedPrecondition,
			"regeneration discards manual task edits and must be explicitly confirmed", nil)
	}

	p, err := r.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.AnchorDate == nil {
		return nil, cerr.NewError(cerr.FailedPrecondition,
			"project has no contract date to anchor the checklist on", nil)
	}

	templates, err := r.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	priorCount, err := r.tasks.CountByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	drafts := Materialize(templates, *p.AnchorDate, p.Leads(), r.now())
	for _, t := range drafts {
		t.ProjectID = projectID
	}

	if err := r.tasks.ReplaceForProject(ctx, projectID, drafts); err != nil {
		return nil, err
	}

	slog.Info("tasks regenerated",
		"project_id", projectID,
		"actor_id", actorID,
		"prior_count", priorCount,
		"new_count", len(drafts),
	)
	r.bus.PublishNew(eventbus.TypeTasksRegenerated, projectID, map[string]string{
		"actor_id":    actorID,
		"prior_count": fmt.Sprintf("%d", priorCount),
		"new_count":   fmt.Sprintf("%d", len(drafts)),
	})
	return drafts, nil
}
