package redis

import (
	"context"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// fixedWindow increments the counter for KEYS[1], starting its expiry on the
// first hit, and returns the new count with the remaining TTL in ms.
var fixedWindow = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {count, redis.call("PTTL", KEYS[1])}
`)

// RateLimitStore is a fixed-window counter shared by every API instance.
// Redis errors fail open.
type RateLimitStore struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewRateLimitStore(client *redis.Client, log zerolog.Logger) *RateLimitStore {
	return &RateLimitStore{client: client, log: log}
}

func (s *RateLimitStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int) {
	res, err := fixedWindow.Run(ctx, s.client, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil || len(res) != 2 {
		s.log.Warn().Err(err).Str("key", key).Msg("rate limit check failed; allowing request")
		return true, 0
	}

	count, ttl := res[0], res[1]
	if count <= int64(limit) {
		return true, 0
	}

	retryAfter := int(math.Ceil(float64(ttl) / 1000))
	if retryAfter <= 0 {
		retryAfter = 1
	}
	return false, retryAfter
}
