// FilePath: internal/repository/cooldown/cooldown.redis.go
package cooldown

import (
	"context"
	"time"

	"github.com/beeguardai/hub/internal/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore persists last-alert times so cooldowns survive hub restarts.
// Entries expire on their own once they can no longer suppress anything.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a cooldown store on an existing Redis client. ttl
// should be at least the configured cooldown window.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) LastAlert(ctx context.Context, userID, hiveID string) (time.Time, bool, error) {
	val, err := s.client.Get(ctx, s.key(userID, hiveID)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, errors.NewDatabaseError("failed to read cooldown entry", err)
	}

	t, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		// Unparseable entries are dropped rather than blocking alerts forever
		return time.Time{}, false, nil
	}
	return t, true, nil
}

func (s *RedisStore) Stamp(ctx context.Context, userID, hiveID string, at time.Time) error {
	err := s.client.Set(ctx, s.key(userID, hiveID), at.Format(time.RFC3339Nano), s.ttl).Err()
	if err != nil {
		return errors.NewDatabaseError("failed to stamp cooldown entry", err)
	}
	return nil
}

func (s *RedisStore) key(userID, hiveID string) string {
	return "cooldown:" + userID + ":" + hiveID
}
