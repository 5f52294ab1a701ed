package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/config"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/view"
	"github.com/gin-gonic/gin"
)

// tooManyRequestsMessage is the copy of the rate-limit error page.
const tooManyRequestsMessage = "Trop de requêtes, veuillez réessayer plus tard"

// rateLimiter counts requests per client IP over a fixed window.
type rateLimiter struct {
	mu        sync.Mutex
	counts    map[string]int
	lastReset time.Time
	limit     int
	window    time.Duration
}

// allow records one request for the client and reports whether it is
// still within the window's limit.
func (l *rateLimiter) allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.lastReset) > l.window {
		l.counts = make(map[string]int)
		l.lastReset = time.Now()
	}

	if l.counts[clientIP] >= l.limit {
		return false
	}
	l.counts[clientIP]++
	return true
}

// RateLimit caps requests per client IP using the configured limit and
// window. Rejected requests get the application's error page with a
// 429 status.
func RateLimit(cfg *config.RateLimitConfig) gin.HandlerFunc {
	limiter := &rateLimiter{
		counts:    make(map[string]int),
		lastReset: time.Now(),
		limit:     cfg.Requests,
		window:    time.Duration(cfg.WindowSeconds) * time.Second,
	}

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if !limiter.allow(clientIP) {
			slog.Warn("rate limit exceeded",
				"client_ip", clientIP,
				"request_id", GetRequestID(c),
			)

			c.Abort()
			c.Data(http.StatusTooManyRequests, "text/html; charset=utf-8",
				[]byte(view.ErrorUI(tooManyRequestsMessage)))
			return
		}

		c.Next()
	}
}
