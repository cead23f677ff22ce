package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/salmaanit26/Query-Management-System/internal/service"
)

// unmatchedRoute is the path label for requests that match no registered route.
const unmatchedRoute = "unmatched"

// Metrics records one observation per request, labelled by route pattern
// rather than raw path so query ids never become label values. Requests for
// the paths in skip, such as the scrape endpoint itself, are not recorded.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
