// Package department defines the fixed position taxonomy and the grouping of
// positions into departments. The same table drives both the dashboard rollup
// and edit authorization, so it lives in one place.
package department

// Position is a fine-grained role tag carried by employees and task templates.
type Position string

const (
	PositionSales             Position = "sales"
	PositionSalesAdmin        Position = "sales_admin"
	PositionLoanAdmin         Position = "loan_admin"
	PositionDesign            Position = "design"
	PositionDesignAdmin       Position = "design_admin"
	PositionConstruction      Position = "construction"
	PositionConstructionAdmin Position = "construction_admin"
	PositionExterior          Position = "exterior"
)

// Group is one of the department buckets positions roll up into.
type Group string

const (
	GroupSales        Group = "sales"
	GroupDesign       Group = "design"
	GroupConstruction Group = "construction"
	GroupExterior     Group = "exterior"
)

// groups holds the display order used by every dashboard view.
var groups = []Group{GroupSales, GroupDesign, GroupConstruction, GroupExterior}

var groupMembers = map[Group][]Position{
	GroupSales:        {PositionSales, PositionSalesAdmin, PositionLoanAdmin},
	GroupDesign:       {PositionDesign, PositionDesignAdmin},
	GroupConstruction: {PositionConstruction, PositionConstructionAdmin},
	GroupExterior:     {PositionExterior},
}

var positionGroup = func() map[Position]Group {
	m := make(map[Position]Group)
	for g, members := range groupMembers {
		for _, p := range members {
			m[p] = g
		}
	}
	return m
}()

// Groups returns all department groups in display order.
func Groups() []Group {
	out := make([]Group, len(groups))
	copy(out, groups)
	return out
}

// Members returns the positions belonging to the group.
func Members(g Group) []Position {
	members := groupMembers[g]
	out := make([]Position, len(members))
	copy(out, members)
	return out
}

// GroupOf maps a position to its department group. Unknown positions report
// ok == false; callers must treat that as "no department" rather than an error.
func GroupOf(p Position) (Group, bool) {
	g, ok := positionGroup[p]
	return g, ok
}

// DisplayName returns the group's label for dashboard tiles.
func (g Group) DisplayName() string {
	switch g {
	case GroupSales:
		return "Sales Dept."
	case GroupDesign:
		return "Design Dept."
	case GroupConstruction:
		return "Construction Dept."
	case GroupExterior:
		return "Exterior Dept."
	default:
		return string(g)
	}
}
