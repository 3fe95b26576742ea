package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each settings document under masjid:settings:<id>.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisClient builds a client the store and the publisher can share.
func NewRedisClient(address, username, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     address,
		Username: username,
		Password: password,
		DB:       0,
	})
}

// NewRedis wraps an existing client.
func NewRedis(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func settingsKey(id string) string {
	return "masjid:settings:" + id
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, id string) ([]byte, error) {
	doc, err := s.rdb.Get(ctx, settingsKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return doc, err
}

// Save implements Store. Settings never expire.
func (s *RedisStore) Save(ctx context.Context, id string, doc []byte) error {
	return s.rdb.Set(ctx, settingsKey(id), doc, 0).Err()
}
