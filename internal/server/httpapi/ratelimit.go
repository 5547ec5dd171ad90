package httpapi

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter counts requests per key in fixed windows.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateDecision, error)
}

// RateDecision is the outcome for a single request.
type RateDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

func newDecision(count, limit int, resetAt time.Time) RateDecision {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return RateDecision{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

type rateState struct {
	count     int
	windowEnd time.Time
}

// MemoryRateLimiter is a process-local fixed-window limiter. Expired windows
// are swept lazily, at most once per window.
type MemoryRateLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	now       func() time.Time
	entries   map[string]rateState
	lastSweep time.Time
}

func NewMemoryRateLimiter(limit int, window time.Duration, now func() time.Time) *MemoryRateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryRateLimiter{
		limit:   limit,
		window:  window,
		now:     now,
		entries: make(map[string]rateState),
	}
}

func (rl *MemoryRateLimiter) Allow(ctx context.Context, key string) (RateDecision, error) {
	if rl.limit <= 0 {
		return RateDecision{Allowed: true}, nil
	}

	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= rl.window {
		for k, s := range rl.entries {
			if !now.Before(s.windowEnd) {
				delete(rl.entries, k)
			}
		}
		rl.lastSweep = now
	}

	state, ok := rl.entries[key]
	if !ok || !now.Before(state.windowEnd) {
		state = rateState{windowEnd: now.Add(rl.window)}
	}
	if state.count <= rl.limit {
		state.count++
	}
	rl.entries[key] = state

	return newDecision(state.count, rl.limit, state.windowEnd), nil
}

// rateLimit rejects clients that exceed the limiter's budget with 429. A
// failing limiter backend lets the request through.
func (rt *Router) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rt.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		route := routePattern(r)
		decision, err := rt.limiter.Allow(r.Context(), route+"|"+clientIP(r))
		if err != nil {
			rt.logger.Warn(r.Context(), "rate limiter unavailable", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		if decision.Limit > 0 {
			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
		}

		if !decision.Allowed {
			rt.metrics.RateLimited(route)
			retry := int(time.Until(decision.ResetAt).Seconds())
			if retry < 1 {
				retry = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			writeMessage(w, http.StatusTooManyRequests, "Too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP uses RemoteAddr. Proxy headers only count when the router was
// built with TrustProxyHeaders, in which case middleware.RealIP has already
// copied them into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		host = "unknown"
	}
	return host
}
