package task

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/iehaus/buildboard/internal/department"
	"github.com/iehaus/buildboard/internal/taskcatalog"
)

// Materialize expands the template catalog into concrete task instances for
// one project. Due dates are plain calendar offsets from the anchor date (no
// business-day skipping); templates without an offset yield nil due dates and
// are scheduled by hand later. Assignee lookups that miss leave the task
// unassigned — never an error, the checklist must always come out complete.
func Materialize(templates []*taskcatalog.Template, anchor time.Time, assignees map[department.Group]string, now time.Time) []*Task {
	tasks := make([]*Task, 0, len(templates))
	for _, tpl := range templates {
		var due *time.Time
		if tpl.DaysFromAnchor != nil {
			d := anchor.AddDate(0, 0, *tpl.DaysFromAnchor)
			due = &d
		}

		var assignedTo string
		if g, ok := department.GroupOf(tpl.ResponsibleDepartment); ok {
			assignedTo = assignees[g]
		}

		tasks = append(tasks, &Task{
			ID:                    ulid.Make().String(),
			TemplateID:            tpl.ID,
			Title:                 tpl.Title,
			Description:           tpl.Narrative(),
			ResponsibleDepartment: tpl.ResponsibleDepartment,
			DueDate:               due,
			AssignedTo:            assignedTo,
			Status:                StatusNotStarted,
			Priority:              PriorityForTier(tpl.ImportanceTier),
			CreatedAt:             now,
			UpdatedAt:             now,
		})
	}
	return tasks
}
