package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shanehull/oslonotify/internal/types"
)

// redisTTL keeps a day's set around long enough to cover the whole day in
// any time zone, after which Redis drops it.
const redisTTL = 48 * time.Hour

// RedisStore keeps one Redis set per calendar day.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisClient parses url as a redis:// URL, falling back to a plain
// host:port address.
func NewRedisClient(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}
	return redis.NewClient(opt)
}

// OpenRedis pings the server and returns the store for day.
func OpenRedis(ctx context.Context, client *redis.Client, prefix, day string) (*RedisStore, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to reach redis: %w", types.ErrStorage, err)
	}
	return &RedisStore{client: client, key: SetName(prefix, day)}, nil
}

// SetName is the Redis key holding the given day's tokens.
func SetName(prefix, day string) string {
	return strings.TrimSuffix(prefix, ":") + ":" + day
}

func (s *RedisStore) LoadKeys(ctx context.Context) (types.KeySet, error) {
	members, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", types.ErrParse, s.key, err)
	}
	return types.ParseKeys(strings.Join(members, " ")), nil
}

func (s *RedisStore) Record(ctx context.Context, key types.Key) error {
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, s.key, key.String())
	pipe.Expire(ctx, s.key, redisTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: failed to record %s in %s: %w", types.ErrStorage, key, s.key, err)
	}
	return nil
}

func (s *RedisStore) Path() string {
	return "redis:" + s.key
}
