package task

import "time"

// The functions in this file are the single source of truth for temporal task
// status. Dashboards and rollups must call these instead of re-deriving
// overdue-ness locally.

// Bucket is the four-way classification every task view agrees on.
type Bucket string

const (
	BucketCompleted  Bucket = "completed"
	BucketOverdue    Bucket = "overdue"
	BucketInProgress Bucket = "in_progress"
	BucketNotStarted Bucket = "not_started"
)

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsOverdue reports whether the task's due date has passed without the task
// being closed. Tasks without a due date are never overdue.
func IsOverdue(t *Task, now time.Time) bool {
	if t.Closed() || t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(startOfDay(now))
}

// IsDueToday reports whether the due date falls on the same calendar day as now.
func IsDueToday(t *Task, now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	dy, dm, dd := t.DueDate.Date()
	ny, nm, nd := now.Date()
	return dy == ny && dm == nm && dd == nd
}

// IsDueThisWeek reports whether the due date lies strictly between now and
// now+7d. Already-overdue tasks are excluded by the lower bound.
func IsDueThisWeek(t *Task, now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return t.DueDate.After(now) && t.DueDate.Before(now.Add(7*24*time.Hour))
}

// OverdueDays returns the whole-day overdue magnitude, zero when not overdue.
// A task due yesterday evaluates to 1 today.
func OverdueDays(t *Task, now time.Time) int {
	if !IsOverdue(t, now) {
		return 0
	}
	return int(startOfDay(now).Sub(startOfDay(*t.DueDate)).Hours() / 24)
}

// BucketOf classifies the task. Overdue-and-open always wins over requested
// and not_started; a closed status always wins over overdue.
func BucketOf(t *Task, now time.Time) Bucket {
	if t.Closed() {
		return BucketCompleted
	}
	if IsOverdue(t, now) || t.Status == StatusDelayed {
		return BucketOverdue
	}
	if t.Status == StatusRequested {
		return BucketInProgress
	}
	return BucketNotStarted
}
