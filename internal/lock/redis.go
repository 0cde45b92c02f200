package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"auction-market/utils"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// RedisRunLock is a RunLock shared by every instance pointed at the same Redis.
// The lease is extended in the background while the run is in progress.
type RedisRunLock struct {
	local   sync.Mutex
	mutex   *redsync.Mutex
	key     string
	options redisRunLockOptions
}

var _ RunLock = (*RedisRunLock)(nil)

type redisRunLockOptions struct {
	expiry        time.Duration
	renewInterval time.Duration
}

type RedisRunLockOption func(*redisRunLockOptions)

// WithRedisRunLockExpiry sets the lease length
func WithRedisRunLockExpiry(d time.Duration) RedisRunLockOption {
	return func(o *redisRunLockOptions) {
		o.expiry = d
	}
}

// WithRedisRunLockRenewInterval sets how often the lease is extended
func WithRedisRunLockRenewInterval(d time.Duration) RedisRunLockOption {
	return func(o *redisRunLockOptions) {
		o.renewInterval = d
	}
}

// NewRedisRunLock creates a run lock stored under key
func NewRedisRunLock(client *redis.Client, key string, opts ...RedisRunLockOption) *RedisRunLock {
	options := redisRunLockOptions{
		expiry: 8 * time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.renewInterval <= 0 {
		options.renewInterval = options.expiry / 3
	}

	rs := redsync.New(goredis.NewPool(client))
	mutex := rs.NewMutex(
		key,
		redsync.WithExpiry(options.expiry),
		redsync.WithTries(1),
	)

	return &RedisRunLock{
		mutex:   mutex,
		key:     key,
		options: options,
	}
}

func (l *RedisRunLock) TryLock(ctx context.Context) (func(), bool, error) {
	if !l.local.TryLock() {
		return nil, false, nil
	}

	if err := l.mutex.TryLockContext(ctx); err != nil {
		l.local.Unlock()
		var taken *redsync.ErrTaken
		if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("acquire run lock %s: %w", l.key, err)
	}

	renewCtx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.autoRenew(renewCtx)
	}()

	var once sync.Once
	release := func() {
		once.Do(func() {
			cancel()
			wg.Wait()
			if _, err := l.mutex.Unlock(); err != nil {
				utils.Warn("Failed to release run lock", map[string]any{
					"key":   l.key,
					"error": err.Error(),
				})
			}
			l.local.Unlock()
		})
	}
	return release, true, nil
}

func (l *RedisRunLock) autoRenew(ctx context.Context) {
	ticker := time.NewTicker(l.options.renewInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok, err := l.mutex.ExtendContext(ctx)
			if err != nil || !ok {
				if ctx.Err() != nil {
					return
				}
				utils.Warn("Failed to extend run lock", map[string]any{
					"key":   l.key,
					"error": fmt.Sprint(err),
				})
				return
			}
		}
	}
}
