package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iehaus/buildboard/internal/department"
	"github.com/iehaus/buildboard/internal/taskcatalog"
)

func intPtr(v int) *int {
	return &v
}

func TestMaterialize(t *testing.T) {
	anchor := date(2025, time.January, 1)
	now := date(2025, time.January, 2)
	assignees := map[department.Group]string{
		department.GroupSales:  "emp-sales-lead",
		department.GroupDesign: "emp-design-lead",
	}

	templates := []*taskcatalog.Template{
		{
			ID:                    1,
			Title:                 "Contract kickoff meeting",
			Purpose:               "Align the customer on the schedule",
			ResponsibleDepartment: department.PositionSales,
			ImportanceTier:        "S",
			DaysFromAnchor:        intPtr(0),
		},
		{
			ID:                    2,
			Title:                 "First plan draft",
			ResponsibleDepartment: department.PositionDesign,
			ImportanceTier:        "A",
			DaysFromAnchor:        intPtr(30),
		},
		{
			ID:                    3,
			Title:                 "Exterior estimate",
			ResponsibleDepartment: department.PositionExterior,
			ImportanceTier:        "B",
		},
	}

	tasks := Materialize(templates, anchor, assignees, now)
	require.Len(t, tasks, 3)

	kickoff := tasks[0]
	assert.Equal(t, 1, kickoff.TemplateID)
	assert.Equal(t, "Contract kickoff meeting", kickoff.Title)
	require.NotNil(t, kickoff.DueDate)
	assert.Equal(t, anchor, *kickoff.DueDate)
	assert.Equal(t, "emp-sales-lead", kickoff.AssignedTo)
	assert.Equal(t, PriorityHigh, kickoff.Priority)
	assert.Equal(t, StatusNotStarted, kickoff.Status)
	assert.Contains(t, kickoff.Description, "Purpose: Align the customer on the schedule")

	draft := tasks[1]
	require.NotNil(t, draft.DueDate)
	assert.Equal(t, date(2025, time.January, 31), *draft.DueDate)
	assert.Equal(t, "emp-design-lead", draft.AssignedTo)
	assert.Equal(t, PriorityMedium, draft.Priority)

	estimate := tasks[2]
	assert.Nil(t, estimate.DueDate, "template without an offset gets no due date")
	assert.Equal(t, "", estimate.AssignedTo, "no lead slot for exterior")
	assert.Equal(t, PriorityLow, estimate.Priority)
}

func TestMaterializeNegativeOffset(t *testing.T) {
	anchor := date(2025, time.March, 10)
	templates := []*taskcatalog.Template{{
		ID:                    5,
		Title:                 "Loan pre-approval",
		ResponsibleDepartment: department.PositionLoanAdmin,
		DaysFromAnchor:        intPtr(-14),
	}}

	tasks := Materialize(templates, anchor, nil, anchor)
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].DueDate)
	assert.Equal(t, date(2025, time.February, 24), *tasks[0].DueDate)
}

func TestMaterializeUnknownDepartmentStaysUnassigned(t *testing.T) {
	anchor := date(2025, time.March, 10)
	templates := []*taskcatalog.Template{{
		ID:                    7,
		Title:                 "Mystery step",
		ResponsibleDepartment: department.Position("warehouse"),
		DaysFromAnchor:        intPtr(1),
	}}

	tasks := Materialize(templates, anchor, map[department.Group]string{
		department.GroupSales: "emp-1",
	}, anchor)
	require.Len(t, tasks, 1)
	assert.Equal(t, "", tasks[0].AssignedTo)
}

func TestMaterializeAssignsUniqueIDs(t *testing.T) {
	anchor := date(2025, time.January, 1)
	templates := []*taskcatalog.Template{
		{ID: 1, Title: "a", DaysFromAnchor: intPtr(0)},
		{ID: 2, Title: "b", DaysFromAnchor: intPtr(0)},
		{ID: 3, Title: "c"},
	}

	tasks := Materialize(templates, anchor, nil, anchor)
	seen := map[string]bool{}
	for _, task := range tasks {
		require.NotEmpty(t, task.ID)
		assert.False(t, seen[task.ID])
		seen[task.ID] = true
	}
}
