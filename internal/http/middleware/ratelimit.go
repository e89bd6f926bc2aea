// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the per-client token-bucket limiter. Buckets live in
// process memory and idle ones are evicted opportunistically. Routes can be
// charged more than one token, so a POST /seed that writes hundreds of rows
// drains a bucket faster than a GET.
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

const (
	// gcEvery is the number of lookups between idle-bucket sweeps.
	gcEvery = 5000
	// idleTTL is how long an unused bucket is kept.
	idleTTL = 10 * time.Minute
)

var rateLimited = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter, by route.",
	},
	[]string{"path"},
)

func init() {
	prometheus.MustRegister(rateLimited)
}

// keyFunc selects the identity used to key a rate-limit bucket.
type keyFunc func(*gin.Context) string

// KeyByClientIP buckets requests by client IP. The registry has no end-user
// authentication, so the address is the only stable identity at the edge.
func KeyByClientIP() keyFunc {
	return func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-key token-bucket limiter. It is safe for concurrent
// use; WithRouteCost must be called before Handler is installed.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn keyFunc
	costs map[string]int // "METHOD route" -> tokens

	mu       sync.Mutex
	visitors map[string]*visitor
	ttl      time.Duration
	cleanupN uint64
}

// NewRateLimiter returns a limiter refilling rps tokens per second into
// buckets of size burst (coerced to at least 1), keyed by keyFn.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		costs:    make(map[string]int),
		visitors: make(map[string]*visitor),
		ttl:      idleTTL,
	}
}

// WithRouteCost charges n tokens for requests matching method and the
// registered route path (as reported by c.FullPath()). n is capped at the
// burst size so the route stays reachable.
func (rl *RateLimiter) WithRouteCost(method, route string, n int) *RateLimiter {
	if n < 1 {
		n = 1
	}
	if n > rl.burst {
		n = rl.burst
	}
	rl.costs[method+" "+route] = n
	return rl
}

func (rl *RateLimiter) cost(c *gin.Context) int {
	if n, ok := rl.costs[c.Request.Method+" "+c.FullPath()]; ok {
		return n
	}
	return 1
}

// getVisitor returns the limiter for key, creating it if absent. The idle
// sweep runs before the lookup so a stale bucket for key is replaced too.
func (rl *RateLimiter) getVisitor(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cleanupN++
	if rl.cleanupN >= gcEvery {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.cleanupN = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// IsRateBypass reports whether IdempotencyValidator marked this request as a
// replay. Replays are served from the store and cost no tokens.
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Handler enforces the limits. A request that cannot take its tokens now is
// rejected with 429, a Retry-After header in whole seconds and the JSON error
// envelope with code "rate_limited".
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		res := rl.getVisitor(rl.keyFn(c)).ReserveN(time.Now(), rl.cost(c))
		if res.OK() && res.Delay() == 0 {
			c.Next()
			return
		}
		retry := 1
		if res.OK() {
			retry = max(1, int(math.Ceil(res.Delay().Seconds())))
		}
		res.Cancel()

		path := c.FullPath()
		if path == "" {
			path = unmatchedPath
		}
		rateLimited.WithLabelValues(path).Inc()

		c.Header("Retry-After", strconv.Itoa(retry))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": RequestIDFrom(c),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}
