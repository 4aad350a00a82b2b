package http

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apperrors "github.com/gs-sport/storefront/pkg/util"
)

// RateLimiterConfig bounds requests per client IP.
type RateLimiterConfig struct {
	PerMinute       int
	Burst           int
	CleanupInterval time.Duration
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one token bucket per client IP. Idle buckets are swept
// in the background until Stop is called.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	cleanup time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	clients map[string]*clientLimiter

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter starts a limiter. Non-positive values fall back to 60/min, burst 20.
func NewRateLimiter(cfg RateLimiterConfig, logger *zap.Logger) *RateLimiter {
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = 60
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 20
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rl := &RateLimiter{
		limit:   rate.Limit(float64(cfg.PerMinute) / 60.0),
		burst:   cfg.Burst,
		cleanup: cfg.CleanupInterval,
		logger:  logger,
		clients: make(map[string]*clientLimiter),
		stopCh:  make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop ends the background sweeper. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Handler rejects requests over the limit with 429 and a Retry-After header.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if rl.limiterFor(ip).Allow() {
			return c.Next()
		}

		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(rl.retryAfterSeconds()))
		rl.logger.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", c.Path()))
		return apperrors.NewTooManyRequests("too many requests, retry later")
	}
}

// ClientCount returns how many client buckets are tracked.
func (rl *RateLimiter) ClientCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if cl, ok := rl.clients[key]; ok {
		cl.lastAccess = time.Now()
		return cl.limiter
	}
	cl := &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst), lastAccess: time.Now()}
	rl.clients[key] = cl
	return cl.limiter
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

// sweep drops buckets idle for more than two cleanup intervals.
func (rl *RateLimiter) sweep(now time.Time) {
	ttl := rl.cleanup * 2

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, cl := range rl.clients {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.clients, key)
		}
	}
}

func (rl *RateLimiter) retryAfterSeconds() int {
	sec := int(math.Ceil(1.0 / float64(rl.limit)))
	if sec < 1 {
		sec = 1
	}
	return sec
}
