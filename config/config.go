// Package config loads the service configuration from the environment,
// optional .env files and an optional YAML profiles file.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/seo-optimizer/auditor/audit"
)

// Probe modes accepted in PROBE_MODE
const (
	ProbeNone = "none"
	ProbeHTTP = "http"
	ProbeDNS  = "dns"
	ProbeBoth = "both"
)

// ErrProbeMode is returned for an unsupported PROBE_MODE value
var ErrProbeMode = errors.New("unsupported probe mode")

// Config holds the application's configuration values.
type Config struct {
	Port    string
	GinMode string
	DevMode bool
	DataDir string

	ShutdownGrace time.Duration

	AuditDelay      time.Duration
	CompetitorDelay time.Duration

	ProbeMode    string
	ProbeTimeout time.Duration
	ProbeStrict  bool
	ProbeTTL     time.Duration
	DNSResolvers []string

	// ProbeAllowPrivate lets the HTTP probe reach loopback and private addresses
	ProbeAllowPrivate bool

	RateLimitRPS   float64
	RateLimitBurst int

	SessionTTL  time.Duration
	MaxSessions int

	// StatsRetainMonths is how many months of audit counters are kept
	StatsRetainMonths int

	PopularDomains []string
	ProfilesFile   string
	Profiles       audit.Profiles
}

// LoadEnv loads .env.development, falling back to .env. Missing files are
// not an error.
func LoadEnv() {
	if err := godotenv.Load(".env.development"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables")
		}
	}
}

// Load reads the configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8082"),
		GinMode:           getEnv("GIN_MODE", "release"),
		DevMode:           getEnvBool("DEV_MODE", false),
		DataDir:           getEnv("DATA_DIR", "data"),
		ShutdownGrace:     getEnvDuration("SHUTDOWN_GRACE", 10*time.Second),
		AuditDelay:        getEnvDuration("AUDIT_DELAY", audit.DefaultDelay),
		CompetitorDelay:   getEnvDuration("COMPETITOR_DELAY", audit.DefaultCompetitorDelay),
		ProbeMode:         strings.ToLower(getEnv("PROBE_MODE", ProbeHTTP)),
		ProbeTimeout:      getEnvDuration("PROBE_TIMEOUT", 5*time.Second),
		ProbeStrict:       getEnvBool("PROBE_STRICT", false),
		ProbeTTL:          getEnvDuration("PROBE_CACHE_TTL", 10*time.Minute),
		DNSResolvers:      getEnvList("DNS_RESOLVERS", nil),
		ProbeAllowPrivate: getEnvBool("PROBE_ALLOW_PRIVATE", false),
		RateLimitRPS:      getEnvFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst:    getEnvInt("RATE_LIMIT_BURST", 5),
		SessionTTL:        getEnvDuration("SESSION_TTL", 30*time.Minute),
		MaxSessions:       getEnvInt("MAX_SESSIONS", 1000),
		StatsRetainMonths: getEnvInt("STATS_RETAIN_MONTHS", 12),
		PopularDomains:    getEnvList("POPULAR_DOMAINS", audit.DefaultPopularDomains),
		ProfilesFile:      getEnv("PROFILES_FILE", ""),
		Profiles:          audit.DefaultProfiles(),
	}

	switch cfg.ProbeMode {
	case ProbeNone, ProbeHTTP, ProbeDNS, ProbeBoth:
	default:
		return nil, fmt.Errorf("%w: %q", ErrProbeMode, cfg.ProbeMode)
	}

	if cfg.ProfilesFile != "" {
		profiles, err := LoadProfiles(cfg.ProfilesFile, cfg.Profiles)
		if err != nil {
			return nil, err
		}
		cfg.Profiles = profiles
	}

	return cfg, nil
}

// LoadProfiles reads a YAML document with optional popular, standard and
// competitor keys. Keys given for a profile override the matching fields of
// base; everything else keeps the base value.
func LoadProfiles(path string, base audit.Profiles) (audit.Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return audit.Profiles{}, fmt.Errorf("failed to read profiles file: %w", err)
	}
	return ParseProfiles(data, base)
}

func ParseProfiles(data []byte, base audit.Profiles) (audit.Profiles, error) {
	doc := struct {
		Popular    audit.Profile `yaml:"popular"`
		Standard   audit.Profile `yaml:"standard"`
		Competitor audit.Profile `yaml:"competitor"`
	}{base.Popular, base.Standard, base.Competitor}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return audit.Profiles{}, fmt.Errorf("failed to parse profiles: %w", err)
	}

	out := audit.Profiles{Popular: doc.Popular, Standard: doc.Standard, Competitor: doc.Competitor}
	if err := out.Validate(); err != nil {
		return audit.Profiles{}, fmt.Errorf("invalid profiles: %w", err)
	}
	return out, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
			return value
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return fallback
}

// getEnvList splits a comma separated value, dropping empty items
func getEnvList(key string, fallback []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
