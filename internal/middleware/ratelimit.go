package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/olekhv/contactbook/internal/http/respond"
)

// Wrapper is a composable handler decorator.
type Wrapper func(http.Handler) http.Handler

// RateLimiter throttles requests per client. Counters are in-process;
// behind a load balancer each instance enforces its own quota.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// PerMinute builds a limiter allowing n requests per minute per client.
func PerMinute(n int) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*rate.Limiter),
		limit:   rate.Every(time.Minute / time.Duration(n)),
		burst:   n,
	}
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, ok := rl.clients[key]
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.clients[key] = limiter
	}
	return limiter
}

// Wrap throttles the handler by client address.
func (rl *RateLimiter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.limiterFor(clientKey(r)).Allow() {
			respond.Detail(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RouteLimits groups the per-route-class limiters the handlers wire in.
// When disabled, every class is a pass-through.
type RouteLimits struct {
	Login Wrapper
	Token Wrapper
	Read  Wrapper
	Write Wrapper
}

// NewRouteLimits builds the route-class quotas used by the API.
func NewRouteLimits(enabled bool) RouteLimits {
	if !enabled {
		passthrough := func(next http.Handler) http.Handler { return next }
		return RouteLimits{
			Login: passthrough,
			Token: passthrough,
			Read:  passthrough,
			Write: passthrough,
		}
	}
	return RouteLimits{
		Login: PerMinute(5).Wrap,
		Token: PerMinute(3).Wrap,
		Read:  PerMinute(60).Wrap,
		Write: PerMinute(10).Wrap,
	}
}
