// Package authz decides view and edit permission from an employee's role and
// department against a project's lead assignees. All decisions are total,
// side-effect free, and deny by default on unrecognized input.
package authz

import (
	"github.com/iehaus/buildboard/internal/employee"
	"github.com/iehaus/buildboard/internal/project"
	"github.com/iehaus/buildboard/pkg/cerr"
)

// Scope is the explicit dashboard view context, always passed by the caller
// instead of being held as ambient state.
type Scope string

const (
	ScopePersonal Scope = "personal"
	ScopeBranch   Scope = "branch"
	ScopeCompany  Scope = "company"
)

// ParseScope validates a scope query parameter. Empty defaults to company.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopePersonal, ScopeBranch, ScopeCompany:
		return Scope(s), nil
	case "":
		return ScopeCompany, nil
	}
	return "", cerr.NewError(cerr.InvalidArgument, "unknown scope: "+s, nil)
}

// Evaluator implements the Authorizer interfaces of the entity servers. It is
// stateless: everything it needs travels in the arguments.
type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// CanView is unconditionally true. Dashboards are company-wide readable;
// only mutation is restricted.
func (e *Evaluator) CanView(_ *employee.Employee, _ *project.Project) bool {
	return true
}

// CanEdit permits department heads and leaders on projects that carry a lead
// assignee in their own department group, and members only when they are one
// of the lead assignees themselves. Each lead slot is group-typed (sales,
// design, construction), so a non-empty slot in the actor's group is exactly
// "a lead belonging to the actor's department". Every other role, and every
// unrecognized role or position, is denied.
func (e *Evaluator) CanEdit(actor *employee.Employee, p *project.Project) bool {
	if actor == nil || p == nil {
		return false
	}
	switch actor.Role {
	case employee.RoleDepartmentHead, employee.RoleLeader:
		g, ok := actor.Group()
		if !ok {
			return false
		}
		return p.Leads()[g] != ""
	case employee.RoleMember:
		for _, id := range p.LeadIDs() {
			if id != "" && id == actor.ID {
				return true
			}
		}
		return false
	}
	return false
}

// CanManageEmployees gates the employee master-data endpoints.
func (e *Evaluator) CanManageEmployees(actor *employee.Employee) bool {
	return actor != nil && actor.Role == employee.RoleDepartmentHead
}

// CanManageTaskMasters gates catalog reload and template administration.
func (e *Evaluator) CanManageTaskMasters(actor *employee.Employee) bool {
	return actor != nil && actor.Role == employee.RoleDepartmentHead
}

// FilterProjects narrows a project list to the given scope. Personal keeps
// projects the actor leads; branch keeps projects with at least one lead from
// the actor's branch, resolved through employeesByID; company keeps all.
// Unknown lead ids are skipped, never an error.
func (e *Evaluator) FilterProjects(scope Scope, actor *employee.Employee, projects []*project.Project, employeesByID map[string]*employee.Employee) []*project.Project {
	if scope == ScopeCompany {
		return projects
	}
	if actor == nil {
		return nil
	}
	out := make([]*project.Project, 0, len(projects))
	for _, p := range projects {
		if e.inScope(scope, actor, p, employeesByID) {
			out = append(out, p)
		}
	}
	return out
}

func (e *Evaluator) inScope(scope Scope, actor *employee.Employee, p *project.Project, employeesByID map[string]*employee.Employee) bool {
	switch scope {
	case ScopePersonal:
		for _, id := range p.LeadIDs() {
			if id != "" && id == actor.ID {
				return true
			}
		}
	case ScopeBranch:
		for _, id := range p.LeadIDs() {
			if id == "" {
				continue
			}
			lead, ok := employeesByID[id]
			if ok && lead.Branch == actor.Branch {
				return true
			}
		}
	}
	return false
}
