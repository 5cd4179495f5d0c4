package controller

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimiter throttles requests per client IP with a token bucket. Buckets
// of clients that stay idle are evicted.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	clients *cache.Cache
}

// NewRateLimiter allows rps requests per second per client with bursts of
// burst requests. A non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}

	// a bucket refills completely within idle, after that it can be dropped
	idle := 10 * time.Minute
	if rps > 0 {
		if full := time.Duration(float64(burst) / rps * float64(time.Second)); full > idle {
			idle = full
		}
	}

	return &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		clients: cache.New(idle, idle),
	}
}

func (l *RateLimiter) limiter(client string) *rate.Limiter {
	if v, ok := l.clients.Get(client); ok {
		lim, _ := v.(*rate.Limiter)
		// sliding expiration
		l.clients.SetDefault(client, lim)

		return lim
	}

	lim := rate.NewLimiter(l.limit, l.burst)
	if err := l.clients.Add(client, lim, cache.DefaultExpiration); err != nil {
		// lost the race to another request of the same client
		if v, ok := l.clients.Get(client); ok {
			lim, _ = v.(*rate.Limiter)
		}
	}

	return lim
}

// Allow reports whether client may make a request now. When it may not, it
// also returns how long to wait.
func (l *RateLimiter) Allow(client string) (bool, time.Duration) {
	if l.limit <= 0 {
		return true, 0
	}

	r := l.limiter(client).Reserve()
	if delay := r.Delay(); delay > 0 {
		r.Cancel()

		return false, delay
	}

	return true, 0
}

// Middleware rejects requests over the limit with 429 Too Many Requests and a
// Retry-After header.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := l.Allow(GetClientIP(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"code":"RATE_LIMITED","message":"too many requests"}`))

			return
		}

		next.ServeHTTP(w, r)
	})
}
