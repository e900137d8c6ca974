package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned by Acquire when another holder owns the key.
var ErrLockHeld = errors.New("lock is held by another request")

// releaseScript deletes the key only while it still carries our token.
var releaseScript = redis.NewScript(`
    if redis.call("get", KEYS[1]) == ARGV[1] then
        return redis.call("del", KEYS[1])
    else
        return 0
    end
`)

// RedisLocker hands out short-lived SET NX locks.
type RedisLocker struct {
	rdb      *redis.Client
	prefix   string
	ttl      time.Duration
	logger   *slog.Logger
	newToken func() string
}

func NewRedisLocker(rdb *redis.Client, prefix string, ttl time.Duration, logger *slog.Logger) *RedisLocker {
	return &RedisLocker{
		rdb:      rdb,
		prefix:   prefix,
		ttl:      ttl,
		logger:   logger,
		newToken: uuid.NewString,
	}
}

// Acquire takes the lock for key. The returned release func is safe to call
// once the caller is done; it never removes a lock that expired and was
// taken over by someone else.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := l.prefix + key
	token := l.newToken()

	ok, err := l.rdb.SetNX(ctx, lockKey, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}

	release := func() {
		// The request context may already be done; release on a fresh one.
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		deleted, err := releaseScript.Run(ctx, l.rdb, []string{lockKey}, token).Int64()
		if err != nil {
			l.logger.Error("failed to release lock", "key", lockKey, "error", err)
			return
		}
		if deleted != 1 {
			l.logger.Warn("lock expired before release", "key", lockKey)
		}
	}
	return release, nil
}
