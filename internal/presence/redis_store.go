package presence

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey holds the sorted set of session ids scored by last-seen millis.
const DefaultRedisKey = "gs-sport:presence"

// RedisStore keeps records in a redis sorted set so several instances share one count.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps client. An empty key uses DefaultRedisKey.
func NewRedisStore(client redis.Cmdable, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// Upsert relies on ZADD GT so an older heartbeat never rewinds a newer one.
func (s *RedisStore) Upsert(ctx context.Context, sessionID string, seen time.Time) error {
	return s.client.ZAddGT(ctx, s.key, redis.Z{
		Score:  float64(seen.UnixMilli()),
		Member: sessionID,
	}).Err()
}

func (s *RedisStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.client.ZRemRangeByScore(ctx, s.key, "-inf", "("+millis(cutoff)).Result()
}

func (s *RedisStore) CountSince(ctx context.Context, since time.Time) (int, error) {
	n, err := s.client.ZCount(ctx, s.key, millis(since), "+inf").Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func millis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
