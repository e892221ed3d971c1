package employee

import (
	"time"

	"github.com/iehaus/buildboard/internal/department"
)

type Role string

const (
	RolePresident      Role = "president"
	RoleExecutive      Role = "executive"
	RoleDepartmentHead Role = "department_head"
	RoleLeader         Role = "leader"
	RoleMember         Role = "member"
)

// Employee is read-mostly master data. The core never mutates employees
// outside the master-data endpoints.
type Employee struct {
	ID        string              `gorm:"primaryKey" json:"id"`
	Name      string              `json:"name"`
	Role      Role                `json:"role"`
	Position  department.Position `json:"position"`
	Branch    string              `json:"branch"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Group returns the employee's department group. ok is false for positions
// missing from the taxonomy; callers treat that as "no department".
func (e *Employee) Group() (department.Group, bool) {
	return department.GroupOf(e.Position)
}
