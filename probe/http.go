package probe

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"sync"
	"syscall"
	"time"
)

const userAgent = "SEOAuditor/1.0"

// ErrPrivateAddress is returned when a site resolves to a loopback, private,
// link-local or otherwise non-public address.
var ErrPrivateAddress = errors.New("refusing to connect to a non-public address")

// shared address space (RFC 6598)
var sharedPrefix = netip.MustParsePrefix("100.64.0.0/10")

func isPublic(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsGlobalUnicast() &&
		!addr.IsPrivate() &&
		!sharedPrefix.Contains(addr)
}

// guardDial rejects connections to non-public addresses. It runs after name
// resolution, so it also covers redirects and DNS answers pointing inward.
func guardDial(_, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPrivateAddress, address)
	}
	if !isPublic(ap.Addr()) {
		return fmt.Errorf("%w: %s", ErrPrivateAddress, ap.Addr())
	}
	return nil
}

// HTTPOption configures an HTTPProber
type HTTPOption func(*httpOptions)

type httpOptions struct {
	allowPrivate bool
}

// AllowPrivateNetworks lets the prober connect to loopback and private
// addresses, e.g. for sites on an internal network.
func AllowPrivateNetworks() HTTPOption {
	return func(o *httpOptions) { o.allowPrivate = true }
}

type cacheEntry struct {
	outcome   Outcome
	err       error
	timestamp time.Time
}

// HTTPProber requests the page and judges it by status code. Transport
// failures are Inconclusive rather than Unreachable.
type HTTPProber struct {
	client *http.Client

	cache    map[string]cacheEntry
	cacheMu  sync.RWMutex
	cacheTTL time.Duration
	maxCache int
}

// NewHTTPProber creates a prober with a pooled client. A zero cacheTTL disables
// caching. Non-public addresses are refused unless AllowPrivateNetworks is given.
func NewHTTPProber(timeout, cacheTTL time.Duration, opts ...HTTPOption) *HTTPProber {
	var o httpOptions
	for _, opt := range opts {
		opt(&o)
	}

	dialer := &net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}
	if !o.allowPrivate {
		dialer.Control = guardDial
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &HTTPProber{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		cache:    make(map[string]cacheEntry),
		cacheTTL: cacheTTL,
		maxCache: 10000,
	}
}

// cacheKey creates a fixed-size key for the URL
func cacheKey(rawURL string) string {
	hash := md5.Sum([]byte(rawURL))
	return hex.EncodeToString(hash[:])
}

func (p *HTTPProber) Probe(ctx context.Context, rawURL string) (Outcome, error) {
	key := cacheKey(rawURL)
	if p.cacheTTL > 0 {
		p.cacheMu.RLock()
		entry, found := p.cache[key]
		p.cacheMu.RUnlock()
		if found && time.Since(entry.timestamp) < p.cacheTTL {
			return entry.outcome, entry.err
		}
	}

	outcome, err := p.probe(ctx, rawURL)
	if ctx.Err() != nil {
		// A cancelled probe says nothing about the site.
		return outcome, err
	}
	p.store(key, outcome, err)
	return outcome, err
}

func (p *HTTPProber) probe(ctx context.Context, rawURL string) (Outcome, error) {
	status, err := p.do(ctx, http.MethodHead, rawURL)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		status, err = p.do(ctx, http.MethodGet, rawURL)
	}
	if err != nil {
		return Inconclusive, err
	}
	if status >= 200 && status < 400 {
		return Reachable, nil
	}
	return Unreachable, fmt.Errorf("%s answered with status %d", rawURL, status)
}

func (p *HTTPProber) do(ctx context.Context, method, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	// Drain a little so the connection can be reused.
	io.CopyN(io.Discard, resp.Body, 4096)
	return resp.StatusCode, nil
}

func (p *HTTPProber) store(key string, outcome Outcome, err error) {
	if p.cacheTTL <= 0 {
		return
	}
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()

	if len(p.cache) >= p.maxCache {
		p.evictExpired()
	}
	p.cache[key] = cacheEntry{outcome: outcome, err: err, timestamp: time.Now()}
}

// evictExpired drops stale entries, and everything if that did not free room.
// Callers hold cacheMu.
func (p *HTTPProber) evictExpired() {
	now := time.Now()
	for k, e := range p.cache {
		if now.Sub(e.timestamp) > p.cacheTTL {
			delete(p.cache, k)
		}
	}
	if len(p.cache) >= p.maxCache {
		p.cache = make(map[string]cacheEntry)
	}
}

// CachedEntries returns the number of cached outcomes
func (p *HTTPProber) CachedEntries() int {
	p.cacheMu.RLock()
	defer p.cacheMu.RUnlock()
	return len(p.cache)
}
