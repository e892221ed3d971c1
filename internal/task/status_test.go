package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2025, time.February, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		task *Task
		want bool
	}{
		{"due yesterday, open", &Task{DueDate: datePtr(2025, time.February, 14), Status: StatusNotStarted}, true},
		{"due today, open", &Task{DueDate: datePtr(2025, time.February, 15), Status: StatusNotStarted}, false},
		{"due tomorrow, open", &Task{DueDate: datePtr(2025, time.February, 16), Status: StatusNotStarted}, false},
		{"due yesterday, completed", &Task{DueDate: datePtr(2025, time.February, 14), Status: StatusCompleted}, false},
		{"due yesterday, not applicable", &Task{DueDate: datePtr(2025, time.February, 14), Status: StatusNotApplicable}, false},
		{"due yesterday, requested", &Task{DueDate: datePtr(2025, time.February, 14), Status: StatusRequested}, true},
		{"due yesterday, delayed", &Task{DueDate: datePtr(2025, time.February, 14), Status: StatusDelayed}, true},
		{"no due date", &Task{Status: StatusNotStarted}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOverdue(tt.task, now))
		})
	}
}

func TestIsDueToday(t *testing.T) {
	now := time.Date(2025, time.February, 15, 23, 45, 0, 0, time.UTC)

	assert.True(t, IsDueToday(&Task{DueDate: datePtr(2025, time.February, 15)}, now))
	assert.False(t, IsDueToday(&Task{DueDate: datePtr(2025, time.February, 14)}, now))
	assert.False(t, IsDueToday(&Task{DueDate: datePtr(2025, time.February, 16)}, now))
	assert.False(t, IsDueToday(&Task{}, now))
}

func TestIsDueThisWeek(t *testing.T) {
	now := time.Date(2025, time.February, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		due  *time.Time
		want bool
	}{
		{"tomorrow", datePtr(2025, time.February, 16), true},
		{"six days out", datePtr(2025, time.February, 21), true},
		{"exactly seven days out", datePtr(2025, time.February, 22), false},
		{"this morning", datePtr(2025, time.February, 15), false},
		{"yesterday", datePtr(2025, time.February, 14), false},
		{"no due date", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDueThisWeek(&Task{DueDate: tt.due}, now))
		})
	}
}

func TestOverdueDays(t *testing.T) {
	now := time.Date(2025, time.February, 15, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, OverdueDays(&Task{DueDate: datePtr(2025, time.February, 15)}, now))
	assert.Equal(t, 1, OverdueDays(&Task{DueDate: datePtr(2025, time.February, 14)}, now))
	assert.Equal(t, 15, OverdueDays(&Task{DueDate: datePtr(2025, time.January, 31)}, now))
	assert.Equal(t, 0, OverdueDays(&Task{DueDate: datePtr(2025, time.February, 14), Status: StatusCompleted}, now))
	assert.Equal(t, 0, OverdueDays(&Task{}, now))
}

func TestBucketOf(t *testing.T) {
	now := time.Date(2025, time.February, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		task *Task
		want Bucket
	}{
		{"completed wins over overdue", &Task{DueDate: datePtr(2025, time.January, 1), Status: StatusCompleted}, BucketCompleted},
		{"not applicable counts as completed", &Task{Status: StatusNotApplicable}, BucketCompleted},
		{"open past due", &Task{DueDate: datePtr(2025, time.February, 1), Status: StatusRequested}, BucketOverdue},
		{"delayed without due date", &Task{Status: StatusDelayed}, BucketOverdue},
		{"requested, on schedule", &Task{DueDate: datePtr(2025, time.March, 1), Status: StatusRequested}, BucketInProgress},
		{"not started, on schedule", &Task{DueDate: datePtr(2025, time.March, 1), Status: StatusNotStarted}, BucketNotStarted},
		{"not started, no due date", &Task{Status: StatusNotStarted}, BucketNotStarted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BucketOf(tt.task, now))
		})
	}
}

// A task that is overdue stays overdue on every later day until it is closed.
func TestOverdueIsMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dueOffset := rapid.IntRange(-60, 60).Draw(t, "dueOffset")
		later := rapid.IntRange(0, 60).Draw(t, "later")

		base := date(2025, time.June, 1)
		due := base.AddDate(0, 0, dueOffset)
		task := &Task{DueDate: &due, Status: StatusNotStarted}

		now := base
		if IsOverdue(task, now) && !IsOverdue(task, now.AddDate(0, 0, later)) {
			t.Fatalf("task overdue at %s but not at %s", now, now.AddDate(0, 0, later))
		}
	})
}
