package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// unmatchedRoute labels requests no route claimed, so arbitrary paths
// cannot grow the series set.
const unmatchedRoute = "unmatched"

// APIRecorder is the slice of observability.Metrics the API middleware feeds.
type APIRecorder interface {
	ApiInflightInc()
	ApiInflightDec()
	ObserveAPI(method, route, status string, dur time.Duration)
}

func APIMetrics(rec APIRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rec.ApiInflightInc()
		defer rec.ApiInflightDec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		rec.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
