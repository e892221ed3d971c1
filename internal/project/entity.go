package project

import (
	"time"

	"github.com/iehaus/buildboard/internal/department"
)

type Status string

const (
	StatusPreContract       Status = "pre_contract"
	StatusPostContract      Status = "post_contract"
	StatusUnderConstruction Status = "under_construction"
	StatusCompleted         Status = "completed"
)

// Project tracks one construction contract from signing to handover.
// AnchorDate is the contract date; every templated task due date is an offset
// from it. Editing AnchorDate or assignees never recomputes materialized
// tasks — regeneration is a separate, explicit operation.
type Project struct {
	ID                     string     `gorm:"primaryKey" json:"id"`
	CustomerName           string     `json:"customer_name"`
	AnchorDate             *time.Time `json:"anchor_date"`
	Status                 Status     `json:"status"`
	AssignedSalesID        string     `json:"assigned_sales_id"`
	AssignedDesignID       string     `json:"assigned_design_id"`
	AssignedConstructionID string     `json:"assigned_construction_id"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// LeadIDs returns the three lead assignee ids; empty strings mean unassigned.
func (p *Project) LeadIDs() []string {
	return []string{p.AssignedSalesID, p.AssignedDesignID, p.AssignedConstructionID}
}

// Leads maps each lead department group to its assignee id. Groups without a
// lead slot (exterior) are absent; materialization treats missing entries as
// unassigned.
func (p *Project) Leads() map[department.Group]string {
	return map[department.Group]string{
		department.GroupSales:        p.AssignedSalesID,
		department.GroupDesign:       p.AssignedDesignID,
		department.GroupConstruction: p.AssignedConstructionID,
	}
}
