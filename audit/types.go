package audit

import "time"

// AuditResult represents the complete (simulated) audit of one URL
type AuditResult struct {
	ID               string        `json:"id"`
	URL              string        `json:"url"`
	Popular          bool          `json:"popular"`
	GeneratedAt      time.Time     `json:"generatedAt"`
	Title            string        `json:"title"`
	MetaDescription  string        `json:"metaDescription"`
	H1Count          int           `json:"h1Count"`
	H2Count          int           `json:"h2Count"`
	H3Count          int           `json:"h3Count"`
	LoadTime         float64       `json:"loadTime"`
	PageSize         float64       `json:"pageSize"`
	Keywords         []string      `json:"keywords"`
	Images           int           `json:"images"`
	ImagesWithoutAlt int           `json:"imagesWithoutAlt"`
	InternalLinks    int           `json:"internalLinks"`
	ExternalLinks    int           `json:"externalLinks"`
	SEOScore         int           `json:"seoScore"`
	Suggestions      []string      `json:"suggestions"`
	Performance      Performance   `json:"performance"`
	Accessibility    Accessibility `json:"accessibility"`
	MobileOptimized  bool          `json:"mobileOptimized"`
	HTTPSEnabled     bool          `json:"httpsEnabled"`
	SchemaMarkup     bool          `json:"schemaMarkup"`
	CanonicalTag     bool          `json:"canonicalTag"`
}

// Performance holds the Core Web Vitals. FCP and LCP are seconds, CLS is
// unitless and FID is milliseconds.
type Performance struct {
	FCP float64 `json:"fcp"`
	LCP float64 `json:"lcp"`
	CLS float64 `json:"cls"`
	FID float64 `json:"fid"`
}

type Accessibility struct {
	Score  int      `json:"score"`
	Issues []string `json:"issues"`
}

// Clone returns a deep copy so callers can hand records out without sharing slices.
func (r *AuditResult) Clone() *AuditResult {
	if r == nil {
		return nil
	}
	c := *r
	c.Keywords = append([]string(nil), r.Keywords...)
	c.Suggestions = append([]string(nil), r.Suggestions...)
	c.Accessibility.Issues = append([]string(nil), r.Accessibility.Issues...)
	return &c
}
