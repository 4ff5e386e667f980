package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/JonMunkholm/enrollview/internal/core"
	"github.com/JonMunkholm/enrollview/internal/logging"
)

// RateLimiter is a per-IP token bucket. Each client gets perMinute requests
// per minute with a burst of the same size.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ErrRateLimited is reported for requests over the per-IP limit.
var ErrRateLimited = errors.New("rate limit exceeded")

// NewRateLimiter creates a limiter allowing perMinute requests per IP.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    perMinute,
		idle:     3 * time.Minute,
		now:      time.Now,
	}
}

// Allow reports whether ip may make a request now and consumes a token if so.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Cleanup drops visitors idle for longer than the refill window until ctx is done.
func (rl *RateLimiter) Cleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.prune()
		}
	}
}

func (rl *RateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.idle {
			delete(rl.visitors, ip)
		}
	}
}

// Visitors returns the number of tracked clients.
func (rl *RateLimiter) Visitors() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Handler rejects over-limit requests with 429 and a RATE001 body.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r.RemoteAddr)
		if !rl.Allow(ip) {
			logging.FromContext(r.Context()).Warn("rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"ip", ip,
			)
			w.Header().Set("Retry-After", strconv.Itoa(60))
			render.Status(r, http.StatusTooManyRequests)
			msg := core.MapError(ErrRateLimited)
			render.JSON(w, r, map[string]string{
				"error":   msg.Message,
				"message": msg.Message,
				"action":  msg.Action,
				"code":    msg.Code,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
