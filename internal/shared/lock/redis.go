package lock

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Options struct {
	// Expiry bounds how long a crashed holder can block a key.
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

// DefaultOptions waits up to ~3s for a busy key. Leave operations are short
// database transactions.
func DefaultOptions() Options {
	return Options{
		Expiry:     10 * time.Second,
		Tries:      32,
		RetryDelay: 100 * time.Millisecond,
	}
}

// RedisLocker implements Locker with redsync so that every API instance
// shares the same per-user and per-team critical sections.
type RedisLocker struct {
	rs     *redsync.Redsync
	opts   Options
	logger *zap.Logger
}

func NewRedisLocker(rdb redis.UniversalClient, opts Options, logger ...*zap.Logger) *RedisLocker {
	l := zap.L().Named("lock.redis")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("lock.redis")
	}
	if opts.Expiry <= 0 || opts.Tries < 1 {
		opts = DefaultOptions()
	}
	return &RedisLocker{
		rs:     redsync.New(goredis.NewPool(rdb)),
		opts:   opts,
		logger: l,
	}
}

func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	mutex := l.rs.NewMutex(
		key,
		redsync.WithExpiry(l.opts.Expiry),
		redsync.WithTries(l.opts.Tries),
		redsync.WithRetryDelay(l.opts.RetryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		l.logger.Warn("acquire lock failed", zap.String("lock_key", key), zap.Error(err))
		return ErrLockNotAcquired.WithDetails(map[string]any{"key": key})
	}
	l.logger.Debug("lock acquired", zap.String("lock_key", key))

	defer func() {
		// The caller's ctx may already be cancelled; release regardless.
		if ok, err := mutex.UnlockContext(context.Background()); !ok || err != nil {
			l.logger.Error("release lock failed",
				zap.String("lock_key", key),
				zap.Bool("unlock_ok", ok),
				zap.Error(err),
			)
		}
	}()

	return fn(ctx)
}
