package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/coachdesk/teamtrainer/pkg/utils"
)

// RateLimit throttles per client IP, used on the export endpoints
// where a row-per-athlete CSV is rebuilt on every request.
func RateLimit(perMinute int, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)

	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		limiter, ok := limiters[key]
		if !ok {
			limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst)
			limiters[key] = limiter
		}
		return limiter
	}

	return func(c *gin.Context) {
		if !limiterFor(c.ClientIP()).Allow() {
			utils.SendRateLimited(c, "Too many export requests, slow down")
			c.Abort()
			return
		}
		c.Next()
	}
}
