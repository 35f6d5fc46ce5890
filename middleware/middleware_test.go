package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/auditor/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := perform(r, http.MethodGet, "/boom")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
	if body := w.Body.String(); body != `{"error":"An unexpected error occurred"}` {
		t.Errorf("Unexpected body %s", body)
	}
}

func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Now()
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if w := perform(r, http.MethodGet, "/"); w.Code != http.StatusOK {
			t.Fatalf("Request %d within burst got %d", i, w.Code)
		}
	}
	if w := perform(r, http.MethodGet, "/"); w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 after the burst, got %d", w.Code)
	}

	now = now.Add(time.Second)
	if w := perform(r, http.MethodGet, "/"); w.Code != http.StatusOK {
		t.Errorf("A token should refill after one second, got %d", w.Code)
	}

	if !rl.Allow("10.0.0.2") {
		t.Error("Other clients have their own bucket")
	}
}

func TestRateLimitSweep(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	rl.Allow("b")
	now = now.Add(rl.idleTTL + time.Minute)
	rl.Allow("c")

	if got := rl.Clients(); got != 1 {
		t.Errorf("Idle clients should be forgotten, %d left", got)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		if !rl.Allow("a") {
			t.Fatalf("Request %d should pass with limiting disabled", i)
		}
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodOptions, "/")
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Missing allow-origin header")
	}
}

func TestStats(t *testing.T) {
	stats := logging.New(t.TempDir(), false)

	r := gin.New()
	r.Use(Stats(stats))
	r.POST("/api/audit", func(c *gin.Context) {
		c.Set(AuditedURLKey, "https://example.com")
		c.Status(http.StatusOK)
	})
	r.GET("/api/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(r, http.MethodPost, "/api/audit")
	perform(r, http.MethodGet, "/api/health")

	if got := stats.TotalRequests(); got != 1 {
		t.Errorf("Only audit requests should be counted, got %d", got)
	}
	if got := stats.GetUniqueVisitorsCount(); got != 1 {
		t.Errorf("Expected 1 visitor, got %d", got)
	}
	if top := stats.GetTopSites(1); len(top) != 1 || top[0].URL != "https://example.com" {
		t.Errorf("Unexpected top sites %+v", top)
	}
}
