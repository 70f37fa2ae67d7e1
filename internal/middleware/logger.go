package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/trip-eval-backend-go/internal/monitoring"
)

// Logger logs one line per request with the authenticated subject, if any.
// Paths in skip (e.g. health probes) are served without logging.
func Logger(skip ...string) gin.HandlerFunc {
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipped[p] = true
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if skipped[path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}
		user := c.GetString(UserKey)
		if user == "" {
			user = "-"
		}

		monitoring.Logf("[HTTP] %s %s %d %dB %v ip=%s user=%s %s",
			c.Request.Method,
			path,
			c.Writer.Status(),
			max(c.Writer.Size(), 0),
			time.Since(start).Round(time.Microsecond),
			c.ClientIP(),
			user,
			c.Errors.String(),
		)
	}
}
