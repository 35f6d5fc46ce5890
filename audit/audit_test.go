package audit

import (
	"context"
	"errors"
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/seo-optimizer/auditor/probe"
)

type stubProber struct {
	outcome probe.Outcome
	err     error
}

func (s stubProber) Probe(context.Context, string) (probe.Outcome, error) {
	return s.outcome, s.err
}

func newTestGenerator(t *testing.T, opts ...Option) *Generator {
	t.Helper()
	base := []Option{
		WithDelay(0, 0),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	}
	g, err := NewGenerator(append(base, opts...)...)
	if err != nil {
		t.Fatalf("Failed to create generator: %v", err)
	}
	return g
}

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"example.com", "https://example.com", nil},
		{"  example.com/path?q=1  ", "https://example.com/path?q=1", nil},
		{"http://example.com", "http://example.com", nil},
		{"https://example.com", "https://example.com", nil},
		{"HTTPS://Example.com", "HTTPS://Example.com", nil},
		{"localhost:8080", "https://localhost:8080", nil},
		{"", "", ErrEmptyURL},
		{"   ", "", ErrEmptyURL},
		{"ftp://x.com", "", ErrInvalidURL},
		{"mailto://someone", "", ErrInvalidURL},
		{"https://", "", ErrInvalidURL},
		{"exa mple.com", "", ErrInvalidURL},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := NormalizeURL(tc.in)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("NormalizeURL(%q) error = %v, want %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}

	if ErrEmptyURL.Error() != "Please enter a URL" {
		t.Errorf("Unexpected empty URL message: %q", ErrEmptyURL.Error())
	}
	if ErrInvalidURL.Error() != "Please enter a valid URL" {
		t.Errorf("Unexpected invalid URL message: %q", ErrInvalidURL.Error())
	}
}

func TestClassifier(t *testing.T) {
	c := NewClassifier(DefaultPopularDomains)
	for host, want := range map[string]bool{
		"google.com":      true,
		"www.google.com":  true,
		"YouTube.com":     true,
		"amazon.com.":     true,
		"mail.google.com": false,
		"example.com":     false,
		"google.co.uk":    false,
	} {
		if got := c.IsPopular(host); got != want {
			t.Errorf("IsPopular(%q) = %v, want %v", host, got, want)
		}
	}

	custom := NewClassifier([]string{" Example.org ", ""})
	if !custom.IsPopular("example.org") {
		t.Error("Expected custom allow-list entry to be trimmed and lowercased")
	}
	if len(custom.Domains()) != 1 {
		t.Errorf("Expected 1 domain, got %v", custom.Domains())
	}
}

func checkBounds(t *testing.T, r *AuditResult, p Profile) {
	t.Helper()
	floats := []struct {
		name string
		v    float64
		r    FloatRange
	}{
		{"loadTime", r.LoadTime, p.LoadTime},
		{"pageSize", r.PageSize, p.PageSize},
		{"fcp", r.Performance.FCP, p.FCP},
		{"lcp", r.Performance.LCP, p.LCP},
		{"cls", r.Performance.CLS, p.CLS},
		{"fid", r.Performance.FID, p.FID},
	}
	for _, f := range floats {
		if !f.r.Contains(f.v) {
			t.Errorf("%s = %v outside %v", f.name, f.v, f.r)
		}
	}
	ints := []struct {
		name string
		v    int
		r    IntRange
	}{
		{"seoScore", r.SEOScore, p.SEOScore},
		{"accessibility", r.Accessibility.Score, p.AccessibilityScore},
		{"h1Count", r.H1Count, p.H1Count},
		{"h2Count", r.H2Count, p.H2Count},
		{"h3Count", r.H3Count, p.H3Count},
		{"images", r.Images, p.Images},
		{"internalLinks", r.InternalLinks, p.InternalLinks},
		{"externalLinks", r.ExternalLinks, p.ExternalLinks},
	}
	for _, i := range ints {
		if !i.r.Contains(i.v) {
			t.Errorf("%s = %d outside %v", i.name, i.v, i.r)
		}
	}
	if r.ImagesWithoutAlt < 0 || r.ImagesWithoutAlt > r.Images {
		t.Errorf("imagesWithoutAlt = %d, images = %d", r.ImagesWithoutAlt, r.Images)
	}
}

func TestGenerateBounds(t *testing.T) {
	g := newTestGenerator(t)
	profiles := DefaultProfiles()

	t.Run("Standard", func(t *testing.T) {
		for i := 0; i < 500; i++ {
			r, err := g.Generate(context.Background(), "https://example.com")
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if r.Popular {
				t.Fatal("example.com should not be popular")
			}
			if r.SEOScore < 60 || r.SEOScore > 100 {
				t.Fatalf("seoScore %d outside [60,100]", r.SEOScore)
			}
			checkBounds(t, r, profiles.Standard)
		}
	})

	t.Run("Popular", func(t *testing.T) {
		for i := 0; i < 500; i++ {
			r, err := g.Generate(context.Background(), "https://google.com")
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if !r.Popular {
				t.Fatal("google.com should be popular")
			}
			if r.SEOScore < 80 || r.SEOScore > 100 {
				t.Fatalf("seoScore %d outside [80,100]", r.SEOScore)
			}
			checkBounds(t, r, profiles.Popular)
		}
	})

	t.Run("Competitor", func(t *testing.T) {
		for i := 0; i < 200; i++ {
			r, err := g.GenerateCompetitor(context.Background(), "https://google.com")
			if err != nil {
				t.Fatalf("GenerateCompetitor failed: %v", err)
			}
			checkBounds(t, r, profiles.Competitor)
			if r.Images != 18 || r.InternalLinks != 35 || r.ImagesWithoutAlt != 1 {
				t.Fatalf("Unexpected fixed competitor values: %+v", r)
			}
			if len(r.Suggestions) != 0 || len(r.Accessibility.Issues) != 0 {
				t.Fatal("Competitor results carry no suggestions or issues")
			}
		}
	})
}

func TestGenerateHTTPSFromScheme(t *testing.T) {
	g := newTestGenerator(t)
	for rawURL, want := range map[string]bool{
		"https://example.com": true,
		"http://example.com":  false,
		"HTTPS://example.com": true,
	} {
		for i := 0; i < 20; i++ {
			r, err := g.Generate(context.Background(), rawURL)
			if err != nil {
				t.Fatalf("Generate(%s) failed: %v", rawURL, err)
			}
			if r.HTTPSEnabled != want {
				t.Fatalf("Generate(%s).HTTPSEnabled = %v, want %v", rawURL, r.HTTPSEnabled, want)
			}
		}
	}
}

func TestGenerateTextFields(t *testing.T) {
	g := newTestGenerator(t)
	r, err := g.Generate(context.Background(), "https://my-shop.example.com/products")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if r.Title != "My-shop.example.com - Official Website" {
		t.Errorf("Unexpected title %q", r.Title)
	}
	if r.MetaDescription != "Official website of my-shop.example.com. Discover our products and services." {
		t.Errorf("Unexpected meta description %q", r.MetaDescription)
	}
	wantKeywords := []string{"my", "shop", "website", "official", "services"}
	if !reflect.DeepEqual(r.Keywords, wantKeywords) {
		t.Errorf("Keywords = %v, want %v", r.Keywords, wantKeywords)
	}
	if len(r.Suggestions) != 5 {
		t.Errorf("Expected the 5 catalog suggestions, got %d", len(r.Suggestions))
	}
	if r.ID == "" {
		t.Error("Expected an id")
	}

	c, err := g.GenerateCompetitor(context.Background(), "https://rival.com")
	if err != nil {
		t.Fatalf("GenerateCompetitor failed: %v", err)
	}
	if c.Title != "Competitor Website - Premium Solutions" {
		t.Errorf("Unexpected competitor title %q", c.Title)
	}
	if c.URL != "https://rival.com" {
		t.Errorf("Unexpected competitor url %q", c.URL)
	}
}

func TestDomainKeywords(t *testing.T) {
	got := DomainKeywords("www.Google.com")
	want := []string{"google", "website", "official", "services"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DomainKeywords = %v, want %v", got, want)
	}
}

func TestGenerateClampsImagesWithoutAlt(t *testing.T) {
	profiles := DefaultProfiles()
	profiles.Standard.Images = IntRange{0, 2}
	profiles.Standard.ImagesWithoutAlt = IntRange{3, 5}
	g := newTestGenerator(t, WithProfiles(profiles))

	for i := 0; i < 50; i++ {
		r, err := g.Generate(context.Background(), "https://example.com")
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if r.ImagesWithoutAlt > r.Images {
			t.Fatalf("imagesWithoutAlt %d exceeds images %d", r.ImagesWithoutAlt, r.Images)
		}
	}
}

func TestGenerateProbe(t *testing.T) {
	boom := errors.New("connection refused")

	cases := []struct {
		name    string
		prober  stubProber
		strict  bool
		wantErr bool
	}{
		{"Reachable", stubProber{outcome: probe.Reachable}, false, false},
		{"Unreachable", stubProber{outcome: probe.Unreachable}, false, true},
		{"InconclusiveLenient", stubProber{outcome: probe.Inconclusive, err: boom}, false, false},
		{"InconclusiveStrict", stubProber{outcome: probe.Inconclusive, err: boom}, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestGenerator(t, WithProber(tc.prober, tc.strict))
			r, err := g.Generate(context.Background(), "https://example.com")
			if tc.wantErr {
				if !errors.Is(err, ErrUnreachable) {
					t.Fatalf("Expected ErrUnreachable, got %v", err)
				}
				if r != nil {
					t.Error("Expected no result on failure")
				}
				return
			}
			if err != nil || r == nil {
				t.Fatalf("Expected a result, got %v", err)
			}
		})
	}
}

func TestGenerateRejectsInvalidURL(t *testing.T) {
	g := newTestGenerator(t)
	if _, err := g.Generate(context.Background(), "ftp://x.com"); !errors.Is(err, ErrInvalidURL) {
		t.Errorf("Expected ErrInvalidURL, got %v", err)
	}
	if _, err := g.GenerateCompetitor(context.Background(), "example.com"); !errors.Is(err, ErrInvalidURL) {
		t.Errorf("Expected ErrInvalidURL for a bare domain, got %v", err)
	}
}

func TestGenerateHonoursCancellation(t *testing.T) {
	g := newTestGenerator(t, WithDelay(time.Minute, time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := g.Generate(ctx, "https://example.com")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Generate did not return promptly after cancellation")
	}
}

func TestGenerateDelay(t *testing.T) {
	g := newTestGenerator(t, WithDelay(50*time.Millisecond, 0))
	start := time.Now()
	if _, err := g.Generate(context.Background(), "https://example.com"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Expected at least 50ms of simulated latency, got %v", elapsed)
	}
}

func TestProfilesValidate(t *testing.T) {
	if err := DefaultProfiles().Validate(); err != nil {
		t.Fatalf("Default profiles should be valid: %v", err)
	}

	bad := DefaultProfiles()
	bad.Popular.SEOScore = IntRange{Min: 90, Max: 80}
	if err := bad.Validate(); !errors.Is(err, ErrInvertedRange) {
		t.Errorf("Expected ErrInvertedRange, got %v", err)
	}

	bad = DefaultProfiles()
	bad.Standard.AccessibilityScore = IntRange{Min: 70, Max: 120}
	if err := bad.Validate(); !errors.Is(err, ErrScoreOutOfBounds) {
		t.Errorf("Expected ErrScoreOutOfBounds, got %v", err)
	}

	for name, r := range map[string]FloatRange{"zero": {0, 0}, "from zero": {0, 2}} {
		bad = DefaultProfiles()
		bad.Standard.LoadTime = r
		if err := bad.Validate(); !errors.Is(err, ErrNonPositive) {
			t.Errorf("load_time %s: expected ErrNonPositive, got %v", name, err)
		}
		bad = DefaultProfiles()
		bad.Popular.PageSize = r
		if err := bad.Validate(); !errors.Is(err, ErrNonPositive) {
			t.Errorf("page_size %s: expected ErrNonPositive, got %v", name, err)
		}
	}

	bad = DefaultProfiles()
	bad.Competitor.CanonicalTag = 1.5
	if err := bad.Validate(); !errors.Is(err, ErrBadProbability) {
		t.Errorf("Expected ErrBadProbability, got %v", err)
	}
	if err := bad.Validate(); err != nil && !strings.Contains(err.Error(), "competitor") {
		t.Errorf("Expected the profile name in the error, got %v", err)
	}

	if _, err := NewGenerator(WithProfiles(bad)); err == nil {
		t.Error("NewGenerator should reject invalid profiles")
	}
}

func TestClone(t *testing.T) {
	g := newTestGenerator(t)
	r, _ := g.Generate(context.Background(), "https://example.com")
	c := r.Clone()
	c.Keywords[0] = "changed"
	c.Suggestions[0] = "changed"
	c.Accessibility.Issues[0] = "changed"
	if r.Keywords[0] == "changed" || r.Suggestions[0] == "changed" || r.Accessibility.Issues[0] == "changed" {
		t.Error("Clone shares slices with the original")
	}
	var nilResult *AuditResult
	if nilResult.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}
