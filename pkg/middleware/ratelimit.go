/**
 * @description
 * Rate limiting middleware to prevent abuse of write endpoints. Requests are
 * counted per authenticated subject (falling back to client IP) in fixed windows.
 * The counter store is pluggable: Redis when configured, in-memory otherwise.
 */
package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Limiter counts one hit for subject in scope and reports the window's hit count and
// the seconds until it resets.
type Limiter interface {
	ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (count int, retryAfterSeconds int, err error)
}

// MemoryLimiter is a process-local fixed-window Limiter.
type MemoryLimiter struct {
	mutex       sync.Mutex
	windows     map[string]*fixedWindow
	now         func() time.Time
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

type fixedWindow struct {
	count   int
	resetAt time.Time
}

// NewMemoryLimiter creates a MemoryLimiter and starts its cleanup goroutine.
func NewMemoryLimiter() *MemoryLimiter {
	ml := &MemoryLimiter{
		windows:     make(map[string]*fixedWindow),
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	go ml.cleanupExpiredWindows()
	return ml
}

// ConsumeRateLimit implements Limiter.
func (ml *MemoryLimiter) ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (int, int, error) {
	if limit <= 0 || window <= 0 || scope == "" || subject == "" {
		return 0, 0, nil
	}

	ml.mutex.Lock()
	defer ml.mutex.Unlock()

	now := ml.now()
	key := scope + ":" + subject
	w, ok := ml.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &fixedWindow{resetAt: now.Add(window)}
		ml.windows[key] = w
	}
	w.count++

	retryAfter := int(math.Ceil(w.resetAt.Sub(now).Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	return w.count, retryAfter, nil
}

// Stop ends the cleanup goroutine.
func (ml *MemoryLimiter) Stop() {
	ml.stopOnce.Do(func() { close(ml.stopCleanup) })
}

// cleanupExpiredWindows removes finished windows to prevent memory leaks
func (ml *MemoryLimiter) cleanupExpiredWindows() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ml.mutex.Lock()
			now := ml.now()
			for key, w := range ml.windows {
				if !now.Before(w.resetAt) {
					delete(ml.windows, key)
				}
			}
			ml.mutex.Unlock()
		case <-ml.stopCleanup:
			return
		}
	}
}

// RateLimitBySubject allows at most limit requests per window for each caller.
// Limiter errors are logged and the request is let through.
func RateLimitBySubject(limiter Limiter, scope string, limit int, window time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := GetSubjectFromContext(r.Context())
			if subject == "" {
				subject = "ip:" + getClientIP(r)
			}

			count, retryAfter, err := limiter.ConsumeRateLimit(r.Context(), scope, subject, limit, window)
			if err != nil {
				logger.Warn("rate limiter unavailable; allowing request", "component", "rate_limit", "scope", scope, "err", err)
				next.ServeHTTP(w, r)
				return
			}

			remaining := limit - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if count > limit {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for load balancers/proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}
	if host == "" {
		return "unknown"
	}
	return host
}
