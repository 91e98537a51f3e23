package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Locker hands out named, expiring locks so a job runs on one instance at a time.
// release is non-nil only when ok is true.
type Locker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (release func(context.Context), ok bool, err error)
}

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker shares locks between every instance connected to the same redis.
type RedisLocker struct {
	client *redis.Client
	prefix string
}

func NewRedisLocker(client *redis.Client, prefix string) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix}
}

func (l *RedisLocker) TryLock(ctx context.Context, name string, ttl time.Duration) (func(context.Context), bool, error) {
	key := l.prefix + name
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}
	release := func(ctx context.Context) {
		if err := unlockScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			logrus.WithError(err).WithField("lock", key).Warn("Could not release lock.")
		}
	}
	return release, true, nil
}

// LocalLocker only guards against overlap inside this process.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: map[string]time.Time{}}
}

func (l *LocalLocker) TryLock(ctx context.Context, name string, ttl time.Duration) (func(context.Context), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	for n, until := range l.held {
		if !now.Before(until) {
			delete(l.held, n)
		}
	}
	if _, ok := l.held[name]; ok {
		return nil, false, nil
	}
	l.held[name] = now.Add(ttl)
	return func(context.Context) {
		l.mu.Lock()
		delete(l.held, name)
		l.mu.Unlock()
	}, true, nil
}
