package metrics

import (
	"strconv"

	"github.com/seo-optimizer/auditor/audit"
)

// Status is the Core Web Vitals bucket of a metric value
type Status string

const (
	StatusGood             Status = "Good"
	StatusNeedsImprovement Status = "Needs Improvement"
	StatusPoor             Status = "Poor"
)

// Thresholds are the inclusive upper bounds of the Good and Needs Improvement buckets.
type Thresholds struct {
	Good float64 `json:"good"`
	Poor float64 `json:"poor"`
}

var (
	FCPThresholds = Thresholds{Good: 1.8, Poor: 3.0}
	LCPThresholds = Thresholds{Good: 2.5, Poor: 4.0}
	CLSThresholds = Thresholds{Good: 0.1, Poor: 0.25}
	FIDThresholds = Thresholds{Good: 100, Poor: 300}
)

func VitalStatus(value float64, t Thresholds) Status {
	switch {
	case value <= t.Good:
		return StatusGood
	case value <= t.Poor:
		return StatusNeedsImprovement
	default:
		return StatusPoor
	}
}

// Vital is one Core Web Vitals tile
type Vital struct {
	Key         string     `json:"key"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Unit        string     `json:"unit"`
	Value       float64    `json:"value"`
	Display     string     `json:"display"`
	Thresholds  Thresholds `json:"thresholds"`
	Status      Status     `json:"status"`
}

// Vitals returns FCP, LCP, CLS and FID in display order
func Vitals(p audit.Performance) []Vital {
	defs := []struct {
		key, name, desc, unit string
		value                 float64
		t                     Thresholds
	}{
		{"fcp", "First Contentful Paint", "Time until first content appears", "s", p.FCP, FCPThresholds},
		{"lcp", "Largest Contentful Paint", "Time until largest content loads", "s", p.LCP, LCPThresholds},
		{"cls", "Cumulative Layout Shift", "Visual stability of the page", "", p.CLS, CLSThresholds},
		{"fid", "First Input Delay", "Responsiveness to user input", "ms", p.FID, FIDThresholds},
	}

	out := make([]Vital, 0, len(defs))
	for _, d := range defs {
		out = append(out, Vital{
			Key:         d.key,
			Name:        d.name,
			Description: d.desc,
			Unit:        d.unit,
			Value:       d.value,
			Display:     FormatVital(d.value, d.unit),
			Thresholds:  d.t,
			Status:      VitalStatus(d.value, d.t),
		})
	}
	return out
}

// FormatVital renders milliseconds without decimals, unitless values with
// three and seconds with two.
func FormatVital(v float64, unit string) string {
	prec := 2
	switch unit {
	case "ms":
		prec = 0
	case "":
		prec = 3
	}
	return strconv.FormatFloat(v, 'f', prec, 64) + unit
}
