// Package report turns a session snapshot into the report shown to users,
// as JSON, as an HTML page or as plain text.
package report

import (
	"github.com/seo-optimizer/auditor/audit"
	"github.com/seo-optimizer/auditor/metrics"
	"github.com/seo-optimizer/auditor/session"
)

const dateLayout = "January 2, 2006"

// SuggestionItem is one row of the suggestion checklist
type SuggestionItem struct {
	Index     int              `json:"index"`
	Text      string           `json:"text"`
	Priority  metrics.Priority `json:"priority"`
	Completed bool             `json:"completed"`
}

// View is everything needed to render one report.
type View struct {
	SessionID string `json:"sessionId"`
	Pending   bool   `json:"pending"`

	Result              *audit.AuditResult  `json:"result,omitempty"`
	URL                 string              `json:"url,omitempty"`
	AnalyzedOn          string              `json:"analyzedOn,omitempty"`
	ScoreCard           metrics.ScoreCard   `json:"scoreCard"`
	Breakdown           metrics.Breakdown   `json:"breakdown"`
	KeyMetrics          []metrics.Tile      `json:"keyMetrics,omitempty"`
	Vitals              []metrics.Vital     `json:"vitals,omitempty"`
	Checks              []metrics.Check     `json:"checks,omitempty"`
	AccessibilityIssues []string            `json:"accessibilityIssues,omitempty"`
	Suggestions         []SuggestionItem    `json:"suggestions,omitempty"`
	Progress            session.Progress    `json:"progress"`
	Comparison          *metrics.Comparison `json:"comparison,omitempty"`
}

// HasResult reports whether the view carries a finished audit
func (v View) HasResult() bool {
	return v.Result != nil
}

// Build derives the report view from a snapshot. A snapshot without a
// result yields a view with only the session fields set.
func Build(snap session.Snapshot) View {
	v := View{SessionID: snap.ID, Pending: snap.Pending}
	r := snap.Result
	if r == nil {
		return v
	}

	v.Result = r
	v.URL = r.URL
	v.AnalyzedOn = r.GeneratedAt.Format(dateLayout)
	v.ScoreCard = metrics.NewScoreCard("Overall SEO Score", r.SEOScore)
	v.Breakdown = metrics.NewBreakdown(r)
	v.KeyMetrics = metrics.KeyMetrics(r)
	v.Vitals = metrics.Vitals(r.Performance)
	v.Checks = metrics.TechnicalChecks(r)
	v.AccessibilityIssues = r.Accessibility.Issues
	v.Progress = snap.Progress

	v.Suggestions = make([]SuggestionItem, len(r.Suggestions))
	for i, s := range r.Suggestions {
		v.Suggestions[i] = SuggestionItem{
			Index:     i,
			Text:      s,
			Priority:  metrics.SuggestionPriority(i),
			Completed: snap.IsCompleted(i),
		}
	}

	if snap.Competitor != nil {
		c := metrics.Compare(r, snap.Competitor)
		v.Comparison = &c
	}
	return v
}
