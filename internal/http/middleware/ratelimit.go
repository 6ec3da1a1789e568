package middleware

import (
	"net/http"
	"strconv"

	"tiketbus/internal/metrics"
	"tiketbus/internal/resilience"

	"github.com/gin-gonic/gin"
)

// RateLimit keys admission on the authenticated operator, falling back to
// client IP for webhook-class traffic. Advisory: over-limit requests get 429
// but correctness never depends on it.
func RateLimit(limiter *resilience.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if rc := GetRequestContext(c); rc.OperatorID > 0 {
			key = "op:" + strconv.FormatInt(int64(rc.OperatorID), 10)
		}

		if !limiter.IsAllowed(key) {
			metrics.RateLimitedTotal.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "terlalu banyak permintaan, coba lagi nanti",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}
