package ratelimit

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	apperrors "github.com/spec-kit/todo-service/pkg/util/errorutil"
)

// IPConfig defines a token bucket per client IP.
type IPConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

const idleLimiterTTL = 10 * time.Minute

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPLimiter keeps one token bucket per client IP.
type IPLimiter struct {
	mu          sync.Mutex
	entries     map[string]*ipEntry
	limit       rate.Limit
	burst       int
	lastCleanup time.Time
	now         func() time.Time
}

// NewIPLimiter returns nil when cfg disables limiting.
func NewIPLimiter(cfg IPConfig) *IPLimiter {
	if cfg.RequestsPerWindow <= 0 || cfg.Window <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.RequestsPerWindow
	}
	return &IPLimiter{
		entries: make(map[string]*ipEntry),
		limit:   rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		burst:   burst,
		now:     time.Now,
	}
}

// Allow reports whether key may make another request now.
func (l *IPLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := l.now()

	l.mu.Lock()
	entry, ok := l.entries[key]
	if !ok {
		entry = &ipEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = entry
	}
	entry.lastSeen = now
	l.cleanupLocked(now)
	l.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

func (l *IPLimiter) cleanupLocked(now time.Time) {
	if now.Sub(l.lastCleanup) < idleLimiterTTL {
		return
	}
	for key, entry := range l.entries {
		if now.Sub(entry.lastSeen) > idleLimiterTTL {
			delete(l.entries, key)
		}
	}
	l.lastCleanup = now
}

// Middleware rejects requests over the per-IP budget with 429.
func (l *IPLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !l.Allow(c.IP()) {
			c.Set(fiber.HeaderRetryAfter, "60")
			return apperrors.NewTooManyRequests("too many requests")
		}
		return c.Next()
	}
}
