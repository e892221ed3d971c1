package task

import (
	"time"

	"github.com/iehaus/buildboard/internal/department"
)

type Status string

const (
	StatusNotStarted    Status = "not_started"
	StatusRequested     Status = "requested"
	StatusCompleted     Status = "completed"
	StatusDelayed       Status = "delayed"
	StatusNotApplicable Status = "not_applicable"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Task is one materialized checklist item owned by a project. Whether a task
// is overdue is never stored — it is derived from DueDate, Status and the
// clock at read time.
type Task struct {
	ID        string `gorm:"primaryKey" json:"id"`
	ProjectID string `gorm:"index" json:"project_id"`
	// TemplateID is the catalog ordinal the task was materialized from;
	// zero for ad-hoc tasks created by hand.
	TemplateID            int                 `gorm:"index" json:"template_id"`
	Title                 string              `json:"title"`
	Description           string              `json:"description"`
	ResponsibleDepartment department.Position `json:"responsible_department"`
	DueDate               *time.Time          `json:"due_date"`
	AssignedTo            string              `json:"assigned_to"`
	Status                Status              `json:"status"`
	Priority              Priority            `json:"priority"`
	ActualCompletionDate  *time.Time          `json:"actual_completion_date"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

// Closed reports whether the task no longer needs work. not_applicable counts
// the same as completed everywhere statuses are aggregated.
func (t *Task) Closed() bool {
	return t.Status == StatusCompleted || t.Status == StatusNotApplicable
}

// PriorityForTier maps a template importance tier to a task priority.
func PriorityForTier(tier string) Priority {
	switch tier {
	case "S":
		return PriorityHigh
	case "A":
		return PriorityMedium
	default:
		return PriorityLow
	}
}
