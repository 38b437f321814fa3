package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
)

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	defer client.Close()

	if _, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond}); err == nil {
		t.Fatalf("expected error for unreachable redis")
	}
}

func TestRateLimitStore_FixedWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	defer client.Close()

	store := NewRateLimitStore(client, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if allowed, _ := store.Allow(ctx, "ratelimit:login:ip:1.2.3.4", 3, time.Minute); !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	allowed, retryAfter := store.Allow(ctx, "ratelimit:login:ip:1.2.3.4", 3, time.Minute)
	if allowed {
		t.Fatalf("4th request should be blocked")
	}
	if retryAfter <= 0 || retryAfter > 60 {
		t.Fatalf("expected retryAfter in (0,60], got %d", retryAfter)
	}

	if allowed, _ := store.Allow(ctx, "ratelimit:login:ip:5.6.7.8", 3, time.Minute); !allowed {
		t.Fatalf("independent key should be allowed")
	}

	mr.FastForward(time.Minute)
	if allowed, _ := store.Allow(ctx, "ratelimit:login:ip:1.2.3.4", 3, time.Minute); !allowed {
		t.Fatalf("request after window should be allowed")
	}
}

func TestRateLimitStore_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	defer client.Close()

	store := NewRateLimitStore(client, zerolog.Nop())
	mr.Close()

	if allowed, _ := store.Allow(context.Background(), "k", 1, time.Minute); !allowed {
		t.Fatalf("expected fail-open when redis is unavailable")
	}
}
