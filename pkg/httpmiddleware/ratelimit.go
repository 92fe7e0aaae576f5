package httpmiddleware

import (
	"context"
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the per-client rate limiter.
type RateLimitConfig struct {
	// Max is the number of requests allowed per Window, which is also the
	// burst size.
	Max int
	// Window is the interval over which Max is granted.
	Window time.Duration
	// KeyFunc extracts the limiter key from a request. When nil, the client
	// IP address is used.
	KeyFunc func(*http.Request) string
}

// client is one key's token bucket plus the bookkeeping to evict it.
type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet maps keys to token buckets. Buckets refill continuously at
// Max/Window, so a client that exhausts its budget regains requests smoothly
// instead of all at once on a window boundary.
type limiterSet struct {
	cfg   RateLimitConfig
	limit rate.Limit

	mu      sync.Mutex
	clients map[string]*client
}

func newLimiterSet(cfg RateLimitConfig) *limiterSet {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = clientIP
	}
	return &limiterSet{
		cfg:     cfg,
		limit:   rate.Limit(float64(cfg.Max) / cfg.Window.Seconds()),
		clients: make(map[string]*client),
	}
}

// get returns the bucket for key, creating it on first sight.
func (s *limiterSet) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(s.limit, s.cfg.Max)}
		s.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

// evictIdle drops buckets idle long enough to have fully refilled; keeping
// them would change nothing for the client.
func (s *limiterSet) evictIdle(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, c := range s.clients {
		if now.Sub(c.lastSeen) > 2*s.cfg.Window {
			delete(s.clients, key)
		}
	}
}

func (s *limiterSet) startCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(2 * s.cfg.Window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.evictIdle(now)
			}
		}
	}()
}

// RateLimit returns a middleware enforcing a per-key request budget of Max
// per Window. Rejected requests get 429 Too Many Requests with a JSON body
// and a Retry-After header.
//
// This variant never evicts idle keys. Use RateLimitWithCleanup for
// long-running servers.
func RateLimit(cfg RateLimitConfig) Middleware {
	return rateLimitMiddleware(newLimiterSet(cfg))
}

// RateLimitWithCleanup is RateLimit plus a background goroutine evicting
// idle keys. The goroutine stops when ctx is cancelled.
func RateLimitWithCleanup(ctx context.Context, cfg RateLimitConfig) Middleware {
	s := newLimiterSet(cfg)
	s.startCleanup(ctx)
	return rateLimitMiddleware(s)
}

func rateLimitMiddleware(s *limiterSet) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			lim := s.get(s.cfg.KeyFunc(r), now)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(s.cfg.Max))

			res := lim.ReserveN(now, 1)
			if delay := res.DelayFrom(now); delay > 0 {
				// Over budget. Cancel the reservation so the wait is not
				// charged, and tell the client when one token is back.
				res.CancelAt(now)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"code":    http.StatusTooManyRequests,
					"message": "rate limit exceeded",
				})
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(lim.TokensAt(now))))
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the client address for keying: X-Forwarded-For first,
// then X-Real-IP, then RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
