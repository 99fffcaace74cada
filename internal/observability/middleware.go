package observability

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Context keys handlers set so the request log names the PDU involved.
const (
	ContextPduKind   = "pdu_kind"
	ContextErrorKind = "error_kind"
)

// RequestLogger logs one line per request. PDU routes add the decoded kind
// and, for rejected requests, the codec error kind.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		}

		event = event.
			Str("method", c.Request.Method).
			Str("path", routePath(c)).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Int("bytes", c.Writer.Size())
		if kind := c.GetString(ContextPduKind); kind != "" {
			event = event.Str("pdu_kind", kind)
		}
		if kind := c.GetString(ContextErrorKind); kind != "" {
			event = event.Str("error_kind", kind)
		}
		event.Msg("http_request")
	}
}

// RequestMetricsMiddleware records every request under the given service label.
func RequestMetricsMiddleware(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		RecordHTTPRequest(service, c.Request.Method, routePath(c), c.Writer.Status(), time.Since(start))
	}
}

// routePath returns the matched route pattern, or "unmatched".
func routePath(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return path
	}
	return "unmatched"
}
