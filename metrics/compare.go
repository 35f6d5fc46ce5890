package metrics

import (
	"math"
	"strconv"

	"github.com/seo-optimizer/auditor/audit"
)

// Outcome of one comparison row, from the audited site's point of view
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
	OutcomeTie  Outcome = "tie"
)

// ComparisonRow compares one metric of two audits.
type ComparisonRow struct {
	Name           string  `json:"name"`
	Unit           string  `json:"unit"`
	LowerIsBetter  bool    `json:"lowerIsBetter"`
	Yours          float64 `json:"yours"`
	Theirs         float64 `json:"theirs"`
	YoursDisplay   string  `json:"yoursDisplay"`
	TheirsDisplay  string  `json:"theirsDisplay"`
	YoursBarWidth  float64 `json:"yoursBarWidth"`
	TheirsBarWidth float64 `json:"theirsBarWidth"`
	Outcome        Outcome `json:"outcome"`
}

type ComparisonSummary struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}

type Comparison struct {
	YourURL    string            `json:"yourUrl"`
	TheirURL   string            `json:"theirUrl"`
	YourScore  int               `json:"yourScore"`
	TheirScore int               `json:"theirScore"`
	Rows       []ComparisonRow   `json:"rows"`
	Summary    ComparisonSummary `json:"summary"`
}

type comparedMetric struct {
	name  string
	unit  string
	lower bool
	value func(*audit.AuditResult) float64
}

var comparedMetrics = []comparedMetric{
	{"SEO Score", "", false, func(r *audit.AuditResult) float64 { return float64(r.SEOScore) }},
	{"Load Time", "s", true, func(r *audit.AuditResult) float64 { return r.LoadTime }},
	{"Page Size", "KB", true, func(r *audit.AuditResult) float64 { return r.PageSize }},
	{"Images", "", false, func(r *audit.AuditResult) float64 { return float64(r.Images) }},
	{"Internal Links", "", false, func(r *audit.AuditResult) float64 { return float64(r.InternalLinks) }},
	{"Accessibility", "", false, func(r *audit.AuditResult) float64 { return float64(r.Accessibility.Score) }},
}

// CompareOutcome decides a single row. Lower-is-better metrics invert the comparison.
func CompareOutcome(yours, theirs float64, lowerIsBetter bool) Outcome {
	switch {
	case yours == theirs:
		return OutcomeTie
	case (yours < theirs) == lowerIsBetter:
		return OutcomeWin
	default:
		return OutcomeLose
	}
}

// Compare builds the competitor comparison between two audits
func Compare(yours, theirs *audit.AuditResult) Comparison {
	c := Comparison{
		YourURL:    yours.URL,
		TheirURL:   theirs.URL,
		YourScore:  yours.SEOScore,
		TheirScore: theirs.SEOScore,
		Rows:       make([]ComparisonRow, 0, len(comparedMetrics)),
	}

	for _, m := range comparedMetrics {
		y, t := m.value(yours), m.value(theirs)
		row := ComparisonRow{
			Name:           m.name,
			Unit:           m.unit,
			LowerIsBetter:  m.lower,
			Yours:          y,
			Theirs:         t,
			YoursDisplay:   formatCompared(y, m.unit),
			TheirsDisplay:  formatCompared(t, m.unit),
			YoursBarWidth:  barWidth(y, t),
			TheirsBarWidth: barWidth(t, y),
			Outcome:        CompareOutcome(y, t, m.lower),
		}
		switch row.Outcome {
		case OutcomeWin:
			c.Summary.Wins++
		case OutcomeLose:
			c.Summary.Losses++
		default:
			c.Summary.Ties++
		}
		c.Rows = append(c.Rows, row)
	}
	return c
}

// barWidth is v as a percentage of the larger of the two values
func barWidth(v, other float64) float64 {
	m := math.Max(v, other)
	if m <= 0 {
		return 0
	}
	return math.Min(100, v/m*100)
}

func formatCompared(v float64, unit string) string {
	prec := 0
	if unit != "" {
		prec = 1
	}
	return strconv.FormatFloat(v, 'f', prec, 64) + unit
}
