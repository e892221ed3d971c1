// Package rollup aggregates task delay counts into per-department
// traffic-light statuses. It is pure computation over already-fetched tasks;
// the same algorithm feeds the project detail view and the company-wide
// dashboard tiles, only the input task set differs.
package rollup

import (
	"time"

	"github.com/iehaus/buildboard/internal/department"
	"github.com/iehaus/buildboard/internal/task"
)

type TrafficLight string

const (
	TrafficNormal  TrafficLight = "normal"
	TrafficWarning TrafficLight = "warning"
	TrafficDelayed TrafficLight = "delayed"
)

// warningThreshold and delayedThreshold are the fixed delay-count cutoffs:
// 0 → normal, 1–2 → warning, 3+ → delayed.
const (
	warningThreshold = 1
	delayedThreshold = 3
)

type DepartmentStatus struct {
	Group            department.Group `json:"group"`
	Name             string           `json:"name"`
	TrafficLight     TrafficLight     `json:"traffic_light"`
	DelayedTaskCount int              `json:"delayed_task_count"`
	TotalTaskCount   int              `json:"total_task_count"`
}

// Rollup computes one DepartmentStatus per department group, in display
// order. Tasks whose department tag is not in the taxonomy are excluded from
// every group rather than erroring; the dashboard must always render.
func Rollup(tasks []*task.Task, now time.Time) []DepartmentStatus {
	delayed := map[department.Group]int{}
	total := map[department.Group]int{}
	for _, t := range tasks {
		g, ok := department.GroupOf(t.ResponsibleDepartment)
		if !ok {
			continue
		}
		total[g]++
		if task.IsOverdue(t, now) {
			delayed[g]++
		}
	}

	groups := department.Groups()
	out := make([]DepartmentStatus, 0, len(groups))
	for _, g := range groups {
		out = append(out, DepartmentStatus{
			Group:            g,
			Name:             g.DisplayName(),
			TrafficLight:     trafficFor(delayed[g]),
			DelayedTaskCount: delayed[g],
			TotalTaskCount:   total[g],
		})
	}
	return out
}

func trafficFor(delayedCount int) TrafficLight {
	switch {
	case delayedCount >= delayedThreshold:
		return TrafficDelayed
	case delayedCount >= warningThreshold:
		return TrafficWarning
	default:
		return TrafficNormal
	}
}
