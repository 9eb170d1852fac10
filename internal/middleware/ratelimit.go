package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abdul-hamid-achik/assetvault/internal/logging"
)

// RateLimiter is a fixed-window request limiter backed by Redis, shared by
// every server instance pointing at the same Redis.
type RateLimiter struct {
	client   *redis.Client
	requests int
	window   time.Duration
}

// NewRateLimiter creates a new RateLimiter.
func NewRateLimiter(client *redis.Client, requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client:   client,
		requests: requests,
		window:   window,
	}
}

// fixedWindow increments the counter and starts its expiry on first use.
var fixedWindow = redis.NewScript(`
	local current = redis.call("INCR", KEYS[1])
	if current == 1 then
		redis.call("EXPIRE", KEYS[1], ARGV[1])
	end
	return current
`)

// Allow checks if a request is allowed for the given key and reports how
// many requests remain in the current window.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	redisKey := "assetvault:ratelimit:" + key

	result, err := fixedWindow.Run(ctx, rl.client, []string{redisKey}, int(rl.window.Seconds())).Int()
	if err != nil {
		return false, 0, err
	}

	remaining := rl.requests - result
	if remaining < 0 {
		remaining = 0
	}

	return result <= rl.requests, remaining, nil
}

// RateLimit returns middleware that rate limits requests.
func RateLimit(limiter *RateLimiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rateLimitKey(r)

			allowed, remaining, err := limiter.Allow(r.Context(), key)
			if err != nil {
				// If Redis is down, fail closed and return 503
				logging.Logger(r.Context()).Error("rate limiter unavailable", "key", key, "error", err)
				jsonError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Service temporarily unavailable")
				return
			}

			// Set rate limit headers
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.requests))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(limiter.window).Unix()))

			if !allowed {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(limiter.window.Seconds())))
				jsonError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitKey buckets signed requests by identity and anonymous ones by
// client host.
func rateLimitKey(r *http.Request) string {
	if cred := GetCredential(r.Context()); cred != nil {
		return "identity:" + cred.Identity.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
