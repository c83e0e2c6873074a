package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/papermill/portal/internal/infrastructure/telemetry"
)

// Profiling tags CPU and allocation samples taken while a request runs
// with its route, method and page family, so Pyroscope can slice by them.
// Routes are patterns, not raw paths, to keep label cardinality low.
func Profiling(enabled bool, skipPaths ...string) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if _, ok := skip[c.Request.URL.Path]; ok || route == "" {
			c.Next()
			return
		}
		telemetry.WithProfilingLabels(c.Request.Context(), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		},
			"route", route,
			"method", c.Request.Method,
			"area", areaOf(route),
		)
	}
}

// areaOf derives the page family from a route pattern:
// "/api/v1/dispatch/:id/status" -> "dispatch", "/orders/:id" -> "orders"
func areaOf(route string) string {
	for part := range strings.SplitSeq(route, "/") {
		if part == "" || part == "api" || isVersionSegment(part) || strings.HasPrefix(part, ":") {
			continue
		}
		return part
	}
	return "root"
}

func isVersionSegment(segment string) bool {
	if len(segment) < 2 || (segment[0] != 'v' && segment[0] != 'V') {
		return false
	}
	for i := 1; i < len(segment); i++ {
		if segment[i] < '0' || segment[i] > '9' {
			return false
		}
	}
	return true
}
