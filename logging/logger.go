package logging

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const statisticsFile = "statistics.json"

// Statistics represents the collected request statistics
type Statistics struct {
	// UniqueVisitors maps client IP to last visit
	UniqueVisitors map[string]time.Time `json:"uniqueVisitors"`
	AuditRequests  int                  `json:"auditRequests"`
	ErrorCount     int                  `json:"errorCount"`
	AuditedSites   map[string]int       `json:"auditedSites"`
	// AverageLatency is in milliseconds
	AverageLatency float64   `json:"averageLatency"`
	TotalLatency   float64   `json:"totalLatency"`
	LastPersisted  time.Time `json:"lastPersisted"`

	path    string
	devMode bool
	mutex   sync.RWMutex
	fileMu  sync.Mutex
}

// Site is one entry of the most audited sites list
type Site struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}

// New creates the statistics and loads any previous state from dataDir.
// In dev mode GetStatistics also reports the most audited sites.
func New(dataDir string, devMode bool) *Statistics {
	s := &Statistics{
		UniqueVisitors: make(map[string]time.Time),
		AuditedSites:   make(map[string]int),
		LastPersisted:  time.Now(),
		path:           filepath.Join(dataDir, statisticsFile),
		devMode:        devMode,
	}

	if err := s.Load(); err != nil {
		fmt.Printf("Could not load existing statistics: %v\n", err)
	}
	return s
}

// TrackVisitor records a unique visitor
func (s *Statistics) TrackVisitor(ip string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.UniqueVisitors[ip] = time.Now()
}

// cleanURL reduces a URL to scheme, host and path. Local and API URLs are dropped.
func cleanURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return ""
	}

	if strings.Contains(u.Host, "localhost") ||
		strings.Contains(u.Host, "127.0.0.1") ||
		strings.Contains(strings.ToLower(u.Path), "/api/") {
		return ""
	}

	cleaned := strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
	if u.Path != "" && u.Path != "/" {
		cleaned += u.Path
	}
	return strings.TrimSuffix(cleaned, "/")
}

// TrackAudit records one audit request. site is the normalized URL that was
// audited, or empty when the request never got that far.
func (s *Statistics) TrackAudit(site string, latency float64, hasError bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.AuditRequests++
	if cleaned := cleanURL(site); cleaned != "" {
		s.AuditedSites[cleaned]++
	}
	if hasError {
		s.ErrorCount++
	}

	s.TotalLatency += latency
	s.AverageLatency = s.TotalLatency / float64(s.AuditRequests)
}

func (s *Statistics) uniqueVisitors(since time.Duration) int {
	count := 0
	cutoff := time.Now().Add(-since)
	for _, lastVisit := range s.UniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}
	return count
}

// GetUniqueVisitorsCount returns the number of unique visitors in the last 24 hours
func (s *Statistics) GetUniqueVisitorsCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.uniqueVisitors(24 * time.Hour)
}

func (s *Statistics) topSites(n int) []Site {
	sites := make([]Site, 0, len(s.AuditedSites))
	for u, c := range s.AuditedSites {
		sites = append(sites, Site{URL: u, Count: c})
	}
	sort.Slice(sites, func(i, j int) bool {
		if sites[i].Count != sites[j].Count {
			return sites[i].Count > sites[j].Count
		}
		return sites[i].URL < sites[j].URL
	})
	if len(sites) > n {
		sites = sites[:n]
	}
	return sites
}

// GetTopSites returns the n most audited sites, most frequent first
func (s *Statistics) GetTopSites(n int) []Site {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.topSites(n)
}

func (s *Statistics) errorRate() float64 {
	if s.AuditRequests == 0 {
		return 0
	}
	return float64(s.ErrorCount) / float64(s.AuditRequests) * 100
}

// GetErrorRate returns the error rate as a percentage
func (s *Statistics) GetErrorRate() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.errorRate()
}

// Save persists the statistics to the data directory
func (s *Statistics) Save() error {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	s.mutex.Lock()
	s.LastPersisted = time.Now()
	data, err := json.Marshal(s)
	s.mutex.Unlock()
	if err != nil {
		return fmt.Errorf("could not encode statistics: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("could not create statistics directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("could not write statistics file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("could not replace statistics file: %w", err)
	}
	return nil
}

// Load reads the statistics from the data directory. A missing file is not an error.
func (s *Statistics) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("could not open statistics file: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("could not decode statistics: %w", err)
	}
	if s.UniqueVisitors == nil {
		s.UniqueVisitors = make(map[string]time.Time)
	}
	if s.AuditedSites == nil {
		s.AuditedSites = make(map[string]int)
	}
	return nil
}

// TotalRequests returns the number of audit requests seen so far
func (s *Statistics) TotalRequests() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.AuditRequests
}

// GetStatistics returns a summary of the statistics. Audited sites are only
// included in dev mode.
func (s *Statistics) GetStatistics() map[string]interface{} {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := map[string]interface{}{
		"uniqueVisitors24h": s.uniqueVisitors(24 * time.Hour),
		"totalRequests":     s.AuditRequests,
		"errorRate":         s.errorRate(),
		"averageLatency":    s.AverageLatency,
	}
	if s.devMode {
		out["topSites"] = s.topSites(5)
	}
	return out
}
