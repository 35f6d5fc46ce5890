// Package metrics derives display figures from an audit record. Everything
// here is a pure function of its input.
package metrics

import (
	"math"

	"github.com/seo-optimizer/auditor/audit"
)

// PassingScore is the minimum category score counted as passing
const PassingScore = 80

// Category is one bar of the metrics breakdown
type Category struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Breakdown summarises the four category scores.
type Breakdown struct {
	Categories   []Category `json:"categories"`
	AverageScore int        `json:"averageScore"`
	Passing      int        `json:"passing"`
	Total        int        `json:"total"`
}

// Categories computes the Content, Performance, Accessibility and Technical
// scores, each clamped to [0, 100].
func Categories(r *audit.AuditResult) []Category {
	content := 0.0
	if len(r.Title) > 0 {
		content += 25
	}
	if len(r.MetaDescription) > 0 {
		content += 25
	}
	if r.H1Count > 0 {
		content += 25
	}
	if len(r.Keywords) > 0 {
		content += 25
	}

	technical := 0.0
	for _, ok := range []bool{r.HTTPSEnabled, r.MobileOptimized, r.SchemaMarkup, r.CanonicalTag} {
		if ok {
			technical += 25
		}
	}

	return []Category{
		{Name: "Content", Score: clamp(content)},
		{Name: "Performance", Score: clamp(100 - r.LoadTime*20)},
		{Name: "Accessibility", Score: clamp(float64(r.Accessibility.Score))},
		{Name: "Technical", Score: clamp(technical)},
	}
}

// AverageScore is the unweighted mean of the categories, rounded half away from zero.
func AverageScore(cats []Category) int {
	if len(cats) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range cats {
		sum += c.Score
	}
	return int(math.Round(sum / float64(len(cats))))
}

// PassingCount counts the categories scoring at least PassingScore
func PassingCount(cats []Category) int {
	n := 0
	for _, c := range cats {
		if c.Score >= PassingScore {
			n++
		}
	}
	return n
}

func NewBreakdown(r *audit.AuditResult) Breakdown {
	cats := Categories(r)
	return Breakdown{
		Categories:   cats,
		AverageScore: AverageScore(cats),
		Passing:      PassingCount(cats),
		Total:        len(cats),
	}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// Grade labels an overall score
type Grade string

const (
	GradeExcellent Grade = "Excellent"
	GradeGood      Grade = "Good"
	GradeNeedsWork Grade = "Needs Work"
	GradePoor      Grade = "Poor"
)

func GradeFor(score int) Grade {
	switch {
	case score >= 90:
		return GradeExcellent
	case score >= 70:
		return GradeGood
	case score >= 50:
		return GradeNeedsWork
	default:
		return GradePoor
	}
}

// GaugeRadius is the radius of the score circle in a 100x100 view box
const GaugeRadius = 45

// Gauge holds the stroke geometry of the circular score display.
type Gauge struct {
	Circumference float64 `json:"circumference"`
	DashOffset    float64 `json:"dashOffset"`
}

func GaugeFor(score int) Gauge {
	c := 2 * math.Pi * GaugeRadius
	s := math.Max(0, math.Min(100, float64(score)))
	return Gauge{Circumference: c, DashOffset: c - s/100*c}
}

// ScoreCard is the overall score panel
type ScoreCard struct {
	Title string `json:"title"`
	Score int    `json:"score"`
	Grade Grade  `json:"grade"`
	Gauge Gauge  `json:"gauge"`
}

func NewScoreCard(title string, score int) ScoreCard {
	return ScoreCard{Title: title, Score: score, Grade: GradeFor(score), Gauge: GaugeFor(score)}
}
