package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/auditor/audit"
	"github.com/seo-optimizer/auditor/config"
	"github.com/seo-optimizer/auditor/logging"
	"github.com/seo-optimizer/auditor/middleware"
	"github.com/seo-optimizer/auditor/probe"
	"github.com/seo-optimizer/auditor/report"
	"github.com/seo-optimizer/auditor/session"
	"github.com/seo-optimizer/auditor/stats"
)

type server struct {
	sessions *session.Store
	counters *stats.Storage
	requests *logging.Statistics
	limiter  *middleware.RateLimiter
}

func newProber(cfg *config.Config) (probe.Prober, error) {
	var opts []probe.HTTPOption
	if cfg.ProbeAllowPrivate {
		opts = append(opts, probe.AllowPrivateNetworks())
	}

	switch cfg.ProbeMode {
	case config.ProbeNone:
		return probe.Noop{}, nil
	case config.ProbeHTTP:
		return probe.NewHTTPProber(cfg.ProbeTimeout, cfg.ProbeTTL, opts...), nil
	}

	dnsProber, err := probe.NewDNSProber(cfg.DNSResolvers, cfg.ProbeTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize dns probe: %w", err)
	}
	if cfg.ProbeMode == config.ProbeDNS {
		return dnsProber, nil
	}
	return probe.Chain{dnsProber, probe.NewHTTPProber(cfg.ProbeTimeout, cfg.ProbeTTL, opts...)}, nil
}

func newGenerator(cfg *config.Config) (*audit.Generator, error) {
	prober, err := newProber(cfg)
	if err != nil {
		return nil, err
	}
	return audit.NewGenerator(
		audit.WithProfiles(cfg.Profiles),
		audit.WithClassifier(audit.NewClassifier(cfg.PopularDomains)),
		audit.WithProber(prober, cfg.ProbeStrict),
		audit.WithDelay(cfg.AuditDelay, cfg.CompetitorDelay),
	)
}

func newServer(cfg *config.Config) (*server, error) {
	generator, err := newGenerator(cfg)
	if err != nil {
		return nil, err
	}

	counters, err := stats.NewStorage(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize stats storage: %w", err)
	}
	counters.Cleanup(cfg.StatsRetainMonths)

	return &server{
		sessions: session.NewStore(generator, cfg.SessionTTL, cfg.MaxSessions),
		counters: counters,
		requests: logging.New(cfg.DataDir, cfg.DevMode),
		limiter:  middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}, nil
}

func (s *server) close() {
	s.sessions.Close()
	if err := s.counters.Close(); err != nil {
		log.Printf("Failed to save stats: %v", err)
	}
	if err := s.requests.Save(); err != nil {
		log.Printf("Failed to save statistics: %v", err)
	}
}

func (s *server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.SetHTMLTemplate(report.Template())

	r.Use(middleware.ErrorHandler())
	r.Use(s.limiter.RateLimit())
	r.Use(middleware.CORS())
	r.Use(middleware.Stats(s.requests))

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			log.Printf("Health check request received from: %s\n", c.ClientIP())
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
		api.GET("/statistics", s.statistics)

		api.POST("/audit", s.auditURL)
		api.POST("/sessions", s.createSession)

		sessions := api.Group("/sessions/:id")
		sessions.GET("", s.getSession)
		sessions.DELETE("", s.deleteSession)
		sessions.GET("/report", s.reportHTML)
		sessions.GET("/report.txt", s.reportText)
		sessions.POST("/suggestions/:index/toggle", s.toggleSuggestion)
		sessions.POST("/competitor", s.compareCompetitor)
		sessions.POST("/actions/:action", s.reportAction)
	}

	return r
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, audit.ErrEmptyURL),
		errors.Is(err, audit.ErrInvalidURL),
		errors.Is(err, session.ErrSuggestionIndex),
		errors.Is(err, report.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, audit.ErrUnreachable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrNoResult):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the JSON error body. Unreachable sites get the plain
// message; the probe detail only goes to the log.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch {
	case errors.Is(err, audit.ErrUnreachable):
		msg = audit.ErrUnreachable.Error()
	case status == http.StatusInternalServerError:
		msg = "An unexpected error occurred"
	}
	if status >= http.StatusInternalServerError || status == http.StatusUnprocessableEntity {
		log.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": msg})
}

func (s *server) lookupSession(c *gin.Context) (*session.Session, bool) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return sess, true
}

func (s *server) statistics(c *gin.Context) {
	out := s.requests.GetStatistics()
	out["audits"] = s.counters.GetCurrentStats()
	history := make(map[string]stats.MonthlyStats)
	for _, month := range s.counters.GetAllMonths() {
		if m, ok := s.counters.GetMonthlyStats(month); ok {
			history[month] = m
		}
	}
	out["monthly"] = history
	out["activeSessions"] = s.sessions.Len()
	c.JSON(http.StatusOK, out)
}

func (s *server) createSession(c *gin.Context) {
	sess := s.sessions.Create()
	c.JSON(http.StatusCreated, gin.H{"sessionId": sess.ID})
}

func (s *server) auditURL(c *gin.Context) {
	log.Printf("Audit request received from: %s\n", c.ClientIP())
	var request struct {
		URL       string `json:"url"`
		SessionID string `json:"sessionId"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	if _, err := audit.NormalizeURL(request.URL); err != nil {
		respondError(c, err)
		return
	}

	var sess *session.Session
	created := request.SessionID == ""
	if created {
		sess = s.sessions.Create()
	} else {
		var err error
		if sess, err = s.sessions.Get(request.SessionID); err != nil {
			respondError(c, err)
			return
		}
	}

	result, err := sess.Submit(c.Request.Context(), request.URL)
	if err != nil && created {
		// the client never learns the id of a failed new session
		s.sessions.Delete(sess.ID)
	}
	switch {
	case errors.Is(err, audit.ErrUnreachable):
		s.counters.IncrementStats(stats.Delta{Unreachable: 1})
	case errors.Is(err, session.ErrSuperseded):
		s.counters.IncrementStats(stats.Delta{Superseded: 1})
	case err == nil:
		s.counters.IncrementStats(stats.Delta{Audits: 1})
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.Set(middleware.AuditedURLKey, result.URL)
	c.JSON(http.StatusOK, report.Build(sess.Snapshot()))
}

func (s *server) deleteSession(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	sess.Cancel()
	s.sessions.Delete(sess.ID)
	c.Status(http.StatusNoContent)
}

func (s *server) getSession(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	view := report.Build(sess.Snapshot())
	if !view.HasResult() {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   session.ErrNoResult.Error(),
			"pending": view.Pending,
		})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *server) reportHTML(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, report.TemplateName, report.Build(sess.Snapshot()))
}

func (s *server) reportText(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	if err := report.RenderText(c.Writer, report.Build(sess.Snapshot())); err != nil {
		log.Printf("Failed to render text report: %v", err)
	}
}

func (s *server) toggleSuggestion(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid suggestion index",
		})
		return
	}

	completed, progress, err := sess.ToggleSuggestion(index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"index":     index,
		"completed": completed,
		"progress":  progress,
	})
}

func (s *server) compareCompetitor(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	var request struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	if _, err := sess.Compare(c.Request.Context(), request.URL); err != nil {
		respondError(c, err)
		return
	}
	s.counters.IncrementStats(stats.Delta{CompetitorAudits: 1})

	view := report.Build(sess.Snapshot())
	if view.Comparison == nil {
		respondError(c, session.ErrSuperseded)
		return
	}
	c.JSON(http.StatusOK, view.Comparison)
}

func (s *server) reportAction(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	view := report.Build(sess.Snapshot())
	if !view.HasResult() {
		respondError(c, session.ErrNoResult)
		return
	}

	ack, err := report.Acknowledge(c.Param("action"))
	if err != nil {
		respondError(c, err)
		return
	}
	if ack.Action == report.ActionShare {
		share := report.ShareInfo(view, reportURL(c, sess.ID))
		ack.Share = &share
	}
	c.JSON(http.StatusOK, ack)
}

// reportURL is the absolute address of the HTML report of a session
func reportURL(c *gin.Context, id string) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + "/api/sessions/" + id + "/report"
}
