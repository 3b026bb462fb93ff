package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const msgTooManyRequests = "Bạn thao tác quá nhanh, vui lòng thử lại sau"

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// ipLimiter keeps one token bucket per client IP and forgets idle ones.
type ipLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	entries map[string]*limiterEntry
}

func (l *ipLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.entries[key]
	if e == nil {
		e = &limiterEntry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now

	for k, v := range l.entries {
		if now.Sub(v.lastSeen) > l.ttl {
			delete(l.entries, k)
		}
	}
	return e.lim.AllowN(now, 1)
}

// RateLimit throttles requests per client IP. Used on the auth routes,
// where every call may hash a password or issue a code.
func RateLimit(limit rate.Limit, burst int, ttl time.Duration) echo.MiddlewareFunc {
	l := &ipLimiter{limit: limit, burst: burst, ttl: ttl, entries: make(map[string]*limiterEntry)}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.allow(c.RealIP(), time.Now()) {
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusTooManyRequests, map[string]string{"message": msgTooManyRequests})
			}
			return next(c)
		}
	}
}
