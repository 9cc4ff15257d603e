package runlock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultRedisKey = "jobboard:ingest:lock"
	DefaultTTL      = 15 * time.Minute
)

// Deletes the key only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock is SET NX PX with a per-acquisition token. The TTL bounds how
// long a crashed holder can block other instances.
type RedisLock struct {
	rdb redisClient
	key string
	ttl time.Duration

	mu    sync.Mutex
	token string
}

type redisClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
}

func NewRedisLock(rdb redisClient, key string, ttl time.Duration) *RedisLock {
	if key == "" {
		key = DefaultRedisKey
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLock{rdb: rdb, key: key, ttl: ttl}
}

func (l *RedisLock) TryLock(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", l.key, err)
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

func (l *RedisLock) Unlock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.token == "" {
		return errors.New("redis lock not held")
	}
	err := releaseScript.Run(ctx, l.rdb, []string{l.key}, l.token).Err()
	l.token = ""
	if err != nil {
		return fmt.Errorf("redis release %s: %w", l.key, err)
	}
	return nil
}
