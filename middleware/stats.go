package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/auditor/logging"
)

// AuditedURLKey is the context key handlers use to report the URL they audited
const AuditedURLKey = "auditedURL"

// saveEvery is the number of audit requests between statistics saves
const saveEvery = 100

// Stats tracks visitors on every request and latency and errors of audit
// requests. Statistics are saved every saveEvery audits.
func Stats(stats *logging.Statistics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		stats.TrackVisitor(c.ClientIP())

		c.Next()

		if c.Request.Method != http.MethodPost || c.FullPath() != "/api/audit" {
			return
		}

		latency := float64(time.Since(start).Milliseconds())
		stats.TrackAudit(c.GetString(AuditedURLKey), latency, c.Writer.Status() >= 400)

		if stats.TotalRequests()%saveEvery == 0 {
			go func() {
				if err := stats.Save(); err != nil {
					log.Printf("Failed to save statistics: %v", err)
				}
			}()
		}
	}
}
