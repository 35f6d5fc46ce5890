package audit

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/seo-optimizer/auditor/probe"
)

// ErrUnreachable is returned when the existence probe rejects the site
var ErrUnreachable = errors.New("Website not accessible or does not exist")

const (
	DefaultDelay           = 4 * time.Second
	DefaultCompetitorDelay = 2 * time.Second
)

// Generator turns a validated URL into a synthetic AuditResult.
type Generator struct {
	profiles        Profiles
	classifier      *Classifier
	prober          probe.Prober
	strictProbe     bool
	delay           time.Duration
	competitorDelay time.Duration
	now             func() time.Time

	randMu sync.Mutex
	rng    *rand.Rand
}

// Option configures a Generator
type Option func(*Generator)

func WithProfiles(p Profiles) Option {
	return func(g *Generator) { g.profiles = p }
}

func WithClassifier(c *Classifier) Option {
	return func(g *Generator) { g.classifier = c }
}

// WithProber sets the existence probe. With strict set, an inconclusive probe
// rejects the URL as well.
func WithProber(p probe.Prober, strict bool) Option {
	return func(g *Generator) {
		g.prober = p
		g.strictProbe = strict
	}
}

// WithDelay sets the simulated latency of an audit and of a competitor audit.
func WithDelay(audit, competitor time.Duration) Option {
	return func(g *Generator) {
		g.delay = audit
		g.competitorDelay = competitor
	}
}

// WithRand replaces the sampling source, mostly for deterministic tests.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rng = r }
}

func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a Generator with the default profiles, the default
// allow-list, no probe and the default delays.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		profiles:        DefaultProfiles(),
		classifier:      NewClassifier(DefaultPopularDomains),
		prober:          probe.Noop{},
		delay:           DefaultDelay,
		competitorDelay: DefaultCompetitorDelay,
		now:             time.Now,
		rng:             rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
	}
	for _, opt := range opts {
		opt(g)
	}
	if err := g.profiles.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator profiles: %w", err)
	}
	return g, nil
}

// Generate audits a normalized URL. It runs the existence probe, waits for
// the simulated latency and samples the popular or standard profile.
func (g *Generator) Generate(ctx context.Context, rawURL string) (*AuditResult, error) {
	host, err := Hostname(rawURL)
	if err != nil {
		return nil, err
	}

	outcome, probeErr := g.prober.Probe(ctx, rawURL)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if outcome == probe.Unreachable || (outcome == probe.Inconclusive && g.strictProbe) {
		if probeErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreachable, probeErr)
		}
		return nil, ErrUnreachable
	}

	if err := wait(ctx, g.delay); err != nil {
		return nil, err
	}

	popular := g.classifier.IsPopular(host)
	profile := g.profiles.Standard
	if popular {
		profile = g.profiles.Popular
	}

	result := g.sample(profile, rawURL, host)
	result.Popular = popular
	return result, nil
}

// GenerateCompetitor samples the competitor profile. Competitor audits are
// not domain sensitive and skip the existence probe.
func (g *Generator) GenerateCompetitor(ctx context.Context, rawURL string) (*AuditResult, error) {
	host, err := Hostname(rawURL)
	if err != nil {
		return nil, err
	}
	if err := wait(ctx, g.competitorDelay); err != nil {
		return nil, err
	}
	return g.sample(g.profiles.Competitor, rawURL, host), nil
}

// IsPopular exposes the classification used by Generate
func (g *Generator) IsPopular(host string) bool {
	return g.classifier.IsPopular(host)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Generator) sample(p Profile, rawURL, host string) *AuditResult {
	g.randMu.Lock()
	defer g.randMu.Unlock()

	r := &AuditResult{
		ID:              uuid.NewString(),
		URL:             rawURL,
		GeneratedAt:     g.now(),
		Title:           formatHost(p.TitleFormat, capitalize(host)),
		MetaDescription: formatHost(p.MetaFormat, host),
		H1Count:         g.intIn(p.H1Count),
		H2Count:         g.intIn(p.H2Count),
		H3Count:         g.intIn(p.H3Count),
		LoadTime:        g.floatIn(p.LoadTime),
		PageSize:        g.floatIn(p.PageSize),
		Images:          g.intIn(p.Images),
		InternalLinks:   g.intIn(p.InternalLinks),
		ExternalLinks:   g.intIn(p.ExternalLinks),
		SEOScore:        g.intIn(p.SEOScore),
		Suggestions:     append([]string{}, p.Suggestions...),
		Performance: Performance{
			FCP: g.floatIn(p.FCP),
			LCP: g.floatIn(p.LCP),
			CLS: g.floatIn(p.CLS),
			FID: g.floatIn(p.FID),
		},
		Accessibility: Accessibility{
			Score:  g.intIn(p.AccessibilityScore),
			Issues: append([]string{}, p.AccessibilityIssues...),
		},
		MobileOptimized: g.chance(p.MobileOptimized),
		SchemaMarkup:    g.chance(p.SchemaMarkup),
		CanonicalTag:    g.chance(p.CanonicalTag),
	}

	// Drawn independently of Images, so clamp to keep the record consistent.
	r.ImagesWithoutAlt = min(g.intIn(p.ImagesWithoutAlt), r.Images)

	if p.HTTPSEnabled != nil {
		r.HTTPSEnabled = g.chance(*p.HTTPSEnabled)
	} else {
		r.HTTPSEnabled = strings.HasPrefix(strings.ToLower(rawURL), "https://")
	}

	if p.Keywords != nil {
		r.Keywords = append([]string{}, p.Keywords...)
	} else {
		r.Keywords = DomainKeywords(host)
	}
	return r
}

func (g *Generator) floatIn(r FloatRange) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + g.rng.Float64()*(r.Max-r.Min)
}

func (g *Generator) intIn(r IntRange) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + g.rng.IntN(r.Max-r.Min+1)
}

func (g *Generator) chance(p float64) bool {
	return g.rng.Float64() < p
}

// DomainKeywords splits the first label of the host on dashes and appends
// the generic site keywords.
func DomainKeywords(host string) []string {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	label, _, _ := strings.Cut(host, ".")
	keywords := strings.Split(label, "-")
	return append(keywords, "website", "official", "services")
}

func formatHost(format, host string) string {
	if strings.Contains(format, "%s") {
		return fmt.Sprintf(format, host)
	}
	return format
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
