package audit

import (
	"errors"
	"fmt"
)

var (
	ErrInvertedRange    = errors.New("range minimum exceeds maximum")
	ErrScoreOutOfBounds = errors.New("score range must stay within 0-100")
	ErrNegativeRange    = errors.New("range must be non-negative")
	ErrBadProbability   = errors.New("probability must be between 0 and 1")
	ErrNonPositive      = errors.New("range must be strictly positive")
)

// FloatRange is sampled uniformly from [Min, Max). A zero-width range always yields Min.
type FloatRange struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// IntRange is sampled uniformly from [Min, Max], both ends inclusive.
type IntRange struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Contains reports whether v lies within the range bounds
func (r FloatRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func (r IntRange) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

func (r FloatRange) validate() error {
	if r.Min > r.Max {
		return ErrInvertedRange
	}
	if r.Min < 0 {
		return ErrNegativeRange
	}
	return nil
}

func (r IntRange) validate() error {
	if r.Min > r.Max {
		return ErrInvertedRange
	}
	if r.Min < 0 {
		return ErrNegativeRange
	}
	return nil
}

// Profile describes the value distribution used for one class of site.
type Profile struct {
	LoadTime           FloatRange `yaml:"load_time"`
	PageSize           FloatRange `yaml:"page_size"`
	SEOScore           IntRange   `yaml:"seo_score"`
	AccessibilityScore IntRange   `yaml:"accessibility_score"`
	FCP                FloatRange `yaml:"fcp"`
	LCP                FloatRange `yaml:"lcp"`
	CLS                FloatRange `yaml:"cls"`
	FID                FloatRange `yaml:"fid"`

	H1Count          IntRange `yaml:"h1_count"`
	H2Count          IntRange `yaml:"h2_count"`
	H3Count          IntRange `yaml:"h3_count"`
	Images           IntRange `yaml:"images"`
	ImagesWithoutAlt IntRange `yaml:"images_without_alt"`
	InternalLinks    IntRange `yaml:"internal_links"`
	ExternalLinks    IntRange `yaml:"external_links"`

	MobileOptimized float64 `yaml:"mobile_optimized"`
	SchemaMarkup    float64 `yaml:"schema_markup"`
	CanonicalTag    float64 `yaml:"canonical_tag"`
	// HTTPSEnabled, when set, replaces the scheme check with a random draw.
	HTTPSEnabled *float64 `yaml:"https_enabled,omitempty"`

	// TitleFormat and MetaFormat take the host as their only verb when they contain one.
	TitleFormat string `yaml:"title_format"`
	MetaFormat  string `yaml:"meta_format"`
	// Keywords, when non-nil, replaces the keywords derived from the domain.
	Keywords            []string `yaml:"keywords,omitempty"`
	Suggestions         []string `yaml:"suggestions"`
	AccessibilityIssues []string `yaml:"accessibility_issues"`
}

// Validate checks every range and probability of the profile
func (p Profile) Validate() error {
	floats := map[string]FloatRange{
		"load_time": p.LoadTime,
		"page_size": p.PageSize,
		"fcp":       p.FCP,
		"lcp":       p.LCP,
		"cls":       p.CLS,
		"fid":       p.FID,
	}
	for name, r := range floats {
		if err := r.validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	// load time and page size are positive, so a sample drawn at Min must be too
	for name, r := range map[string]FloatRange{"load_time": p.LoadTime, "page_size": p.PageSize} {
		if r.Min <= 0 {
			return fmt.Errorf("%s: %w", name, ErrNonPositive)
		}
	}

	ints := map[string]IntRange{
		"seo_score":           p.SEOScore,
		"accessibility_score": p.AccessibilityScore,
		"h1_count":            p.H1Count,
		"h2_count":            p.H2Count,
		"h3_count":            p.H3Count,
		"images":              p.Images,
		"images_without_alt":  p.ImagesWithoutAlt,
		"internal_links":      p.InternalLinks,
		"external_links":      p.ExternalLinks,
	}
	for name, r := range ints {
		if err := r.validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	for name, r := range map[string]IntRange{"seo_score": p.SEOScore, "accessibility_score": p.AccessibilityScore} {
		if r.Max > 100 {
			return fmt.Errorf("%s: %w", name, ErrScoreOutOfBounds)
		}
	}

	probs := map[string]float64{
		"mobile_optimized": p.MobileOptimized,
		"schema_markup":    p.SchemaMarkup,
		"canonical_tag":    p.CanonicalTag,
	}
	if p.HTTPSEnabled != nil {
		probs["https_enabled"] = *p.HTTPSEnabled
	}
	for name, v := range probs {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s: %w", name, ErrBadProbability)
		}
	}
	return nil
}

// Profiles groups the three distributions the generator draws from.
type Profiles struct {
	Popular    Profile `yaml:"popular"`
	Standard   Profile `yaml:"standard"`
	Competitor Profile `yaml:"competitor"`
}

func (ps Profiles) Validate() error {
	if err := ps.Popular.Validate(); err != nil {
		return fmt.Errorf("popular profile: %w", err)
	}
	if err := ps.Standard.Validate(); err != nil {
		return fmt.Errorf("standard profile: %w", err)
	}
	if err := ps.Competitor.Validate(); err != nil {
		return fmt.Errorf("competitor profile: %w", err)
	}
	return nil
}

var defaultSuggestions = []string{
	"Optimize meta description length for better search visibility",
	"Add more descriptive alt text to images",
	"Improve page loading speed by optimizing images",
	"Add structured data markup for better search results",
	"Increase internal linking to improve site structure",
}

var defaultIssues = []string{
	"Missing alt text on some images",
	"Color contrast could be improved",
}

// DefaultProfiles returns the built-in distributions.
func DefaultProfiles() Profiles {
	standard := Profile{
		LoadTime:           FloatRange{1, 5},
		PageSize:           FloatRange{500, 3500},
		SEOScore:           IntRange{60, 100},
		AccessibilityScore: IntRange{70, 100},
		FCP:                FloatRange{1, 4},
		LCP:                FloatRange{2, 6},
		CLS:                FloatRange{0, 0.15},
		FID:                FloatRange{50, 200},
		H1Count:            IntRange{1, 1},
		H2Count:            IntRange{2, 9},
		H3Count:            IntRange{5, 19},
		Images:             IntRange{5, 24},
		ImagesWithoutAlt:   IntRange{0, 4},
		InternalLinks:      IntRange{10, 59},
		ExternalLinks:      IntRange{2, 16},
		MobileOptimized:    0.8,
		SchemaMarkup:       0.5,
		CanonicalTag:       0.7,
		TitleFormat:        "%s - Official Website",
		MetaFormat:         "Official website of %s. Discover our products and services.",

		Suggestions:         defaultSuggestions,
		AccessibilityIssues: defaultIssues,
	}

	popular := standard
	popular.LoadTime = FloatRange{0.5, 2}
	popular.SEOScore = IntRange{80, 100}
	popular.AccessibilityScore = IntRange{85, 100}
	popular.FCP = FloatRange{0.5, 2}
	popular.LCP = FloatRange{1, 3}
	popular.SchemaMarkup = 0.8

	https := 0.9
	competitor := Profile{
		LoadTime:           FloatRange{1, 4},
		PageSize:           FloatRange{500, 2500},
		SEOScore:           IntRange{70, 100},
		AccessibilityScore: IntRange{80, 100},
		FCP:                FloatRange{1, 3},
		LCP:                FloatRange{2, 5},
		CLS:                FloatRange{0, 0.1},
		FID:                FloatRange{50, 150},
		H1Count:            IntRange{1, 1},
		H2Count:            IntRange{6, 6},
		H3Count:            IntRange{12, 12},
		Images:             IntRange{18, 18},
		ImagesWithoutAlt:   IntRange{1, 1},
		InternalLinks:      IntRange{35, 35},
		ExternalLinks:      IntRange{12, 12},
		MobileOptimized:    0.7,
		SchemaMarkup:       0.6,
		CanonicalTag:       0.8,
		HTTPSEnabled:       &https,
		TitleFormat:        "Competitor Website - Premium Solutions",
		MetaFormat:         "Leading provider of premium solutions with excellent customer service and fast delivery.",
		Keywords:           []string{"premium", "solutions", "customer", "service", "delivery"},

		Suggestions:         []string{},
		AccessibilityIssues: []string{},
	}

	return Profiles{Popular: popular, Standard: standard, Competitor: competitor}
}
