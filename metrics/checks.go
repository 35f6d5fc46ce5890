package metrics

import (
	"fmt"

	"github.com/seo-optimizer/auditor/audit"
)

// Check is one technical checklist row
type Check struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Passed      bool   `json:"passed"`
	Label       string `json:"label"`
}

func TechnicalChecks(r *audit.AuditResult) []Check {
	rows := []struct {
		name, desc string
		ok         bool
	}{
		{"HTTPS Enabled", "Site uses secure HTTPS protocol", r.HTTPSEnabled},
		{"Mobile Optimized", "Site is optimized for mobile devices", r.MobileOptimized},
		{"Schema Markup", "Structured data markup present", r.SchemaMarkup},
		{"Canonical Tag", "Canonical URL specified", r.CanonicalTag},
	}

	checks := make([]Check, 0, len(rows))
	for _, row := range rows {
		label := "Failed"
		if row.ok {
			label = "Passed"
		}
		checks = append(checks, Check{Name: row.name, Description: row.desc, Passed: row.ok, Label: label})
	}
	return checks
}

// Priority of a suggestion, decided by its position in the list
type Priority string

const (
	PriorityHigh   Priority = "High Priority"
	PriorityMedium Priority = "Medium Priority"
	PriorityLow    Priority = "Low Priority"
)

func SuggestionPriority(index int) Priority {
	switch {
	case index < 2:
		return PriorityHigh
	case index < 4:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Tile is a single key metric
type Tile struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// KeyMetrics returns the headline figures shown under the score card.
func KeyMetrics(r *audit.AuditResult) []Tile {
	return []Tile{
		{Label: "Load Time", Value: fmt.Sprintf("%.2fs", r.LoadTime)},
		{Label: "Page Size", Value: fmt.Sprintf("%.1fKB", r.PageSize)},
		{Label: "Images", Value: fmt.Sprint(r.Images)},
		{Label: "Internal Links", Value: fmt.Sprint(r.InternalLinks)},
		{Label: "H1 Tags", Value: fmt.Sprint(r.H1Count)},
		{Label: "Keywords", Value: fmt.Sprint(len(r.Keywords))},
	}
}
