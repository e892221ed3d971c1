package taskcatalog

import (
	"strings"

	"github.com/iehaus/buildboard/internal/department"
)

// Template is one catalog entry describing a recurring checklist task and its
// offset from the project's contract date. Templates are deploy-time data and
// immutable at runtime; the catalog files are the single source of truth.
type Template struct {
	ID                    int                 `yaml:"id"`
	Title                 string              `yaml:"title"`
	Purpose               string              `yaml:"purpose"`
	Dos                   string              `yaml:"dos"`
	Donts                 string              `yaml:"donts"`
	ToolNotes             string              `yaml:"tool_notes"`
	RequiredMaterials     string              `yaml:"required_materials"`
	Remarks               string              `yaml:"remarks"`
	ResponsibleDepartment department.Position `yaml:"responsible_department"`
	ImportanceTier        string              `yaml:"importance_tier"`
	// DaysFromAnchor is the signed day offset from the contract date.
	// nil means the task has no fixed schedule and is dated manually.
	DaysFromAnchor *int `yaml:"days_from_anchor"`
}

// Narrative assembles the stored task description from the template's
// narrative sections in a fixed order, skipping empty ones. Purely cosmetic;
// partially populated templates are expected.
func (t *Template) Narrative() string {
	sections := []struct {
		label string
		text  string
	}{
		{"Purpose", t.Purpose},
		{"Do", t.Dos},
		{"Don't", t.Donts},
		{"Tools", t.ToolNotes},
		{"Materials", t.RequiredMaterials},
		{"Remarks", t.Remarks},
	}
	var parts []string
	for _, s := range sections {
		if s.text == "" {
			continue
		}
		parts = append(parts, s.label+": "+s.text)
	}
	return strings.Join(parts, "\n\n")
}
