package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinicworks/ehr-system/internal/api/metrics"
	"github.com/clinicworks/ehr-system/internal/core/ports"
)

// RateLimitConfig is a fixed-window request budget.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

func (c RateLimitConfig) Validate() error {
	if c.Requests <= 0 {
		return fmt.Errorf("requests must be > 0 (got %d)", c.Requests)
	}
	if c.Window <= 0 {
		return fmt.Errorf("window must be > 0 (got %s)", c.Window)
	}
	return nil
}

// KeyFunc derives the rate limit bucket for a request.
type KeyFunc func(c echo.Context) string

// IPKey buckets requests by client IP.
func IPKey(c echo.Context) string {
	return "ip:" + c.RealIP()
}

// IdentityKey buckets requests by authenticated user, falling back to IP.
func IdentityKey(c echo.Context) string {
	if identity, ok := IdentityFrom(c); ok {
		return "user:" + strconv.FormatInt(identity.ID, 10)
	}
	return IPKey(c)
}

// RateLimit rejects requests over cfg with 429 and a Retry-After header.
// name labels the limiter in metrics and prefixes its keys. It panics on an
// invalid cfg, like echo's own middleware constructors.
func RateLimit(store ports.RateLimitStore, name string, cfg RateLimitConfig, keyFunc KeyFunc) echo.MiddlewareFunc {
	if err := cfg.Validate(); err != nil {
		panic("ratelimit " + name + ": " + err.Error())
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "ratelimit:" + name + ":" + keyFunc(c)
			allowed, retryAfter := store.Allow(c.Request().Context(), key, cfg.Requests, cfg.Window)
			if !allowed {
				metrics.RateLimitedTotal.WithLabelValues(name).Inc()
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}

type window struct {
	count int
	end   time.Time
}

// InMemoryRateLimitStore is a process-local fixed window counter.
type InMemoryRateLimitStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewInMemoryRateLimitStore() *InMemoryRateLimitStore {
	return &InMemoryRateLimitStore{windows: make(map[string]*window), now: time.Now}
}

func (s *InMemoryRateLimitStore) Allow(_ context.Context, key string, limit int, period time.Duration) (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.end) {
		s.windows[key] = &window{count: 1, end: now.Add(period)}
		return true, 0
	}

	if w.count < limit {
		w.count++
		return true, 0
	}

	retryAfter := int(w.end.Sub(now).Seconds())
	if retryAfter <= 0 {
		retryAfter = 1
	}
	return false, retryAfter
}

// Cleanup drops expired windows.
func (s *InMemoryRateLimitStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, w := range s.windows {
		if !now.Before(w.end) {
			delete(s.windows, key)
		}
	}
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (s *InMemoryRateLimitStore) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}
