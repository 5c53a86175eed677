package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultLockTTL = 5 * time.Second

// releaseLua deletes the lock only if it is still held by the same owner, so
// a holder whose TTL lapsed cannot release somebody else's lock.
var releaseLua = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RefreshLocker implements ports.RefreshLocker with a per-user key.
// Key format: refresh-lock:<user_id>
type RefreshLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	log    zerolog.Logger
}

func NewRefreshLocker(client redis.UniversalClient, ttl time.Duration, log zerolog.Logger) *RefreshLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RefreshLocker{client: client, ttl: ttl, log: log}
}

// Acquire tries to take the lock for userID without waiting.
func (l *RefreshLocker) Acquire(ctx context.Context, userID string) (bool, func(), error) {
	key := l.key(userID)
	owner := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, owner, l.ttl).Result()
	if err != nil {
		return false, nil, fmt.Errorf("acquire refresh lock: %w", err)
	}
	if !ok {
		return false, nil, nil
	}

	release := func() {
		// The caller's context may already be cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		if err := releaseLua.Run(releaseCtx, l.client, []string{key}, owner).Err(); err != nil {
			l.log.Warn().Err(err).Str("user_id", userID).Msg("failed to release refresh lock")
		}
	}
	return true, release, nil
}

// Ping reports whether Redis is reachable.
func (l *RefreshLocker) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *RefreshLocker) key(userID string) string {
	return "refresh-lock:" + userID
}
