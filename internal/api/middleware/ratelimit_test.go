package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestInMemoryRateLimitStore_FixedWindow(t *testing.T) {
	store := NewInMemoryRateLimitStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if allowed, _ := store.Allow(ctx, "k", 3, time.Minute); !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	allowed, retryAfter := store.Allow(ctx, "k", 3, time.Minute)
	if allowed {
		t.Fatalf("4th request should be blocked")
	}
	if retryAfter != 60 {
		t.Fatalf("expected retryAfter 60, got %d", retryAfter)
	}

	if allowed, _ := store.Allow(ctx, "other", 3, time.Minute); !allowed {
		t.Fatalf("independent key should be allowed")
	}

	now = now.Add(time.Minute)
	if allowed, _ := store.Allow(ctx, "k", 3, time.Minute); !allowed {
		t.Fatalf("request in new window should be allowed")
	}
}

func TestInMemoryRateLimitStore_Cleanup(t *testing.T) {
	store := NewInMemoryRateLimitStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	store.Allow(context.Background(), "k", 1, time.Second)
	now = now.Add(2 * time.Second)
	store.Cleanup()

	if len(store.windows) != 0 {
		t.Fatalf("expected expired window to be removed")
	}
}

func TestRateLimit_Returns429WithRetryAfter(t *testing.T) {
	e := echo.New()
	store := NewInMemoryRateLimitStore()
	mw := RateLimit(store, "login", RateLimitConfig{Requests: 1, Window: time.Minute}, IPKey)
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("first request should pass: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	rec = httptest.NewRecorder()
	err := handler(e.NewContext(req, rec))

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestRateLimitConfig_Validate(t *testing.T) {
	if err := (RateLimitConfig{Requests: 0, Window: time.Minute}).Validate(); err == nil {
		t.Fatalf("expected error for zero requests")
	}
	if err := (RateLimitConfig{Requests: 1}).Validate(); err == nil {
		t.Fatalf("expected error for zero window")
	}
	if err := (RateLimitConfig{Requests: 1, Window: time.Second}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRateLimit_PanicsOnInvalidConfig(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for zero window")
		}
	}()
	RateLimit(NewInMemoryRateLimitStore(), "api", RateLimitConfig{Requests: 10}, IPKey)
}
