package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/retroconnect/idverify/internal/domain"
)

const (
	defaultVerifyLimit = 20
	sweepInterval      = 5 * time.Minute
)

// RateLimiterConfig configures the fixed-window limiter placed in front of
// the verification endpoints.
type RateLimiterConfig struct {
	Max    int
	Window time.Duration
	// KeyGenerator picks the client bucket, the remote IP by default. An
	// empty key bypasses the limiter.
	KeyGenerator func(c *fiber.Ctx) string
	// Now is time.Now when nil.
	Now func() time.Time
}

// DefaultRateLimiterConfig limits each client IP to max requests a minute.
func DefaultRateLimiterConfig(max int) RateLimiterConfig {
	return RateLimiterConfig{
		Max:          max,
		Window:       time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string { return c.IP() },
	}
}

type window struct {
	count int
	ends  time.Time
	seen  time.Time
}

// RateLimiter counts requests per client in fixed windows and sweeps idle
// clients in the background until Stop.
type RateLimiter struct {
	cfg      RateLimiterConfig
	mu       sync.Mutex
	clients  map[string]*window
	done     chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.Max <= 0 {
		cfg.Max = defaultVerifyLimit
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = DefaultRateLimiterConfig(cfg.Max).KeyGenerator
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	rl := &RateLimiter{
		cfg:     cfg,
		clients: make(map[string]*window),
		done:    make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Stop ends the sweeper. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := rl.cfg.KeyGenerator(c)
		if key == "" {
			return c.Next()
		}

		now := rl.cfg.Now()
		count, ends := rl.hit(key, now)

		remaining := rl.cfg.Max - count
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.cfg.Max))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Set("X-RateLimit-Reset", ends.Format(time.RFC3339))

		if count > rl.cfg.Max {
			retry := int(ends.Sub(now).Round(time.Second) / time.Second)
			if retry < 1 {
				retry = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retry))
			return domain.ErrRateLimitExceeded
		}
		return c.Next()
	}
}

// hit records one request for key and returns the window's count and end.
func (rl *RateLimiter) hit(key string, now time.Time) (int, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.clients[key]
	if !ok || now.After(w.ends) {
		w = &window{ends: now.Add(rl.cfg.Window)}
		rl.clients[key] = w
	}
	w.count++
	w.seen = now
	return w.count, w.ends
}

// sweep drops clients idle for two windows.
func (rl *RateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, w := range rl.clients {
		if now.Sub(w.seen) > 2*rl.cfg.Window {
			delete(rl.clients, key)
		}
	}
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.sweep(rl.cfg.Now())
		}
	}
}
