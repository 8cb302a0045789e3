package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rtb-12/StorySentinel-sub000/internal/platform/ctxutil"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/logger"
)

// RequestLogger writes one line per request. Probe and scrape routes listed
// in quiet are only logged when they fail.
func RequestLogger(log *logger.Logger, quiet ...string) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log = log.With("component", "http")
	skip := make(map[string]struct{}, len(quiet))
	for _, p := range quiet {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if _, ok := skip[route]; ok && status < 400 {
			return
		}

		fields := []interface{}{
			"method", c.Request.Method,
			"route", routeLabel(route),
			"path", c.Request.URL.Path,
			"status", status,
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			fields = append(fields, "trace_id", td.TraceID, "request_id", td.RequestID)
		}
		if sub := Subject(c); sub != "" {
			fields = append(fields, "subject", sub)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("Request failed", fields...)
		case status >= 400:
			log.Warn("Request rejected", fields...)
		default:
			log.Info("Request served", fields...)
		}
	}
}

// routeLabel keeps unmatched paths out of logs and metric labels.
func routeLabel(route string) string {
	if route == "" {
		return "unmatched"
	}
	return route
}
