package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rtb-12/StorySentinel-sub000/internal/observability"
)

// Metrics records per-route counts and latency. The scrape route itself is
// not counted.
func Metrics(m *observability.Metrics, scrapePath string) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.URL.Path == scrapePath {
			c.Next()
			return
		}
		start := time.Now()
		m.APIInflightInc()
		defer m.APIInflightDec()

		c.Next()

		m.ObserveAPI(c.Request.Method, routeLabel(c.FullPath()), strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
