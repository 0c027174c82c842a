package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// clientWindow tracks one client's request count within its current window.
type clientWindow struct {
	count   int
	started time.Time
}

// RateLimiter is a fixed-window limiter keyed by client IP. Each client
// gets its own window, so a burst from one address cannot reset the
// counters of another.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	rate    int
	window  time.Duration
}

// NewRateLimiter creates a limiter allowing rate requests per window per client.
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*clientWindow),
		rate:    rate,
		window:  window,
	}
}

// Allow reports whether the client may proceed, and if not, how long
// until its window resets.
func (rl *RateLimiter) Allow(clientIP string) (bool, time.Duration) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	cw, ok := rl.clients[clientIP]
	if !ok || now.Sub(cw.started) >= rl.window {
		// Expired entries pile up between windows, so sweep when the
		// map grows well past the active client count.
		if len(rl.clients) > 4*rl.rate {
			rl.sweep(now)
		}
		rl.clients[clientIP] = &clientWindow{count: 1, started: now}
		return true, 0
	}

	if cw.count >= rl.rate {
		return false, rl.window - now.Sub(cw.started)
	}

	cw.count++
	return true, 0
}

// sweep drops windows that have already expired. Caller holds the lock.
func (rl *RateLimiter) sweep(now time.Time) {
	for ip, cw := range rl.clients {
		if now.Sub(cw.started) >= rl.window {
			delete(rl.clients, ip)
		}
	}
}

// RateLimit limits each client IP to rate requests per window.
func RateLimit(rate int, window time.Duration) gin.HandlerFunc {
	limiter := NewRateLimiter(rate, window)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		allowed, retryAfter := limiter.Allow(clientIP)
		if !allowed {
			slog.Warn("rate limit exceeded",
				"client_ip", clientIP,
				"request_id", GetRequestID(c),
			)

			seconds := int(retryAfter.Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
