package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// limiterIdle is how long an unused client limiter is kept.
	limiterIdle = 10 * time.Minute
	// maxLimiters caps the number of tracked clients.
	maxLimiters = 10000
)

// RateLimitConfig holds per-client rate limiting configuration.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// clientLimiters keeps one token bucket per client IP. Idle buckets are
// swept lazily from get.
type clientLimiters struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	rps       rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newClientLimiters(rps float64, burst int) *clientLimiters {
	return &clientLimiters{
		limiters: make(map[string]*limiterEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

func (l *clientLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > time.Minute {
		l.sweep(now)
	}

	e, ok := l.limiters[ip]
	if !ok {
		if len(l.limiters) >= maxLimiters {
			l.evictOldest()
		}
		e = &limiterEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[ip] = e
	}
	e.lastAccess = now
	return e.limiter
}

// sweep drops limiters idle for longer than limiterIdle. Callers hold mu.
func (l *clientLimiters) sweep(now time.Time) {
	for ip, e := range l.limiters {
		if now.Sub(e.lastAccess) > limiterIdle {
			delete(l.limiters, ip)
		}
	}
	l.lastSweep = now
}

// evictOldest drops the least recently used limiter. Callers hold mu.
func (l *clientLimiters) evictOldest() {
	var oldest string
	var oldestAt time.Time
	for ip, e := range l.limiters {
		if oldest == "" || e.lastAccess.Before(oldestAt) {
			oldest, oldestAt = ip, e.lastAccess
		}
	}
	delete(l.limiters, oldest)
}

// RateLimit limits requests per client IP with a token bucket that holds
// Burst tokens and refills at RequestsPerSecond.
func RateLimit(config RateLimitConfig) Middleware {
	if !config.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	limiters := newClientLimiters(config.RequestsPerSecond, config.Burst)
	retryAfter := "1"
	if config.RequestsPerSecond > 0 && config.RequestsPerSecond < 1 {
		retryAfter = strconv.Itoa(int(1/config.RequestsPerSecond + 0.5))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.get(clientIP(r)).Allow() {
				w.Header().Set("Retry-After", retryAfter)
				writeError(w, r, http.StatusTooManyRequests, "rate_limited", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the host part of the peer address. Forwarding headers
// are not trusted.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
