package locks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/rueidis"
)

var releaseScript = rueidis.NewLuaScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client rueidis.Client
	prefix string
}

func NewRedisLocker(client rueidis.Client, prefix string) *RedisLocker {
	return &RedisLocker{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	token := uuid.NewString()
	fullKey := r.prefix + key

	cmd := r.client.B().Set().Key(fullKey).Value(token).Nx().PxMilliseconds(ttl.Milliseconds()).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrNotAcquired
		}
		return nil, err
	}

	return &redisLease{client: r.client, key: fullKey, token: token}, nil
}

type redisLease struct {
	client rueidis.Client
	key    string
	token  string
}

// Release deletes the key only if this lease still owns it.
func (l *redisLease) Release(ctx context.Context) error {
	return releaseScript.Exec(ctx, l.client, []string{l.key}, []string{l.token}).Error()
}
