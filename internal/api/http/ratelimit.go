package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// visitorLimiter holds a per-client limiter and its last access time.
type visitorLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-client request rate, keyed by remote IP. Used on
// the login/signup routes to slow credential probing.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitorLimiter
	rate     rate.Limit
	burst    int
}

// NewRateLimiter builds a limiter allowing r requests per second with the
// given burst per client.
func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitorLimiter),
		rate:     r,
		burst:    burst,
	}
}

// Handler returns the fiber middleware.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rl.allow(c.IP()) {
			return fiber.NewError(http.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	visitor, ok := rl.visitors[key]
	if !ok {
		visitor = &visitorLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[key] = visitor
	}
	visitor.lastSeen = now

	if len(rl.visitors) > 1024 {
		rl.prune(now)
	}
	return visitor.limiter.Allow()
}

// prune drops visitors idle for over ten minutes. Callers hold rl.mu.
func (rl *RateLimiter) prune(now time.Time) {
	for key, visitor := range rl.visitors {
		if now.Sub(visitor.lastSeen) > 10*time.Minute {
			delete(rl.visitors, key)
		}
	}
}
