package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/logger"
	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the redis connection used by RedisStore.
type RedisOptions struct {
	Addrs        []string
	Password     string
	DB           int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewRedisClient connects to redis and checks the connection. The returned
// cleanup closes the client.
func NewRedisClient(ctx context.Context, o RedisOptions) (redis.UniversalClient, func(), error) {
	if len(o.Addrs) == 0 {
		return nil, nil, errors.New("redis address is required")
	}

	rdb := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:           o.Addrs,
		Password:        o.Password,
		DB:              o.DB,
		ReadTimeout:     o.ReadTimeout,
		WriteTimeout:    o.WriteTimeout,
		PoolSize:        10,
		MinIdleConns:    1,
		PoolTimeout:     5 * time.Second,
		ConnMaxIdleTime: 5 * time.Minute,
		MaxRetries:      3,
		MinRetryBackoff: 100 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("failed pinging redis: %w", err)
	}

	cleanup := func() {
		logger.Info("closing redis connection")
		if err := rdb.Close(); err != nil {
			logger.Error(err)
		}
	}
	logger.Infof("redis connection established: %v", o.Addrs)
	return rdb, cleanup, nil
}

// RedisStore keeps the blob as a plain string value under key.
type RedisStore struct {
	rdb redis.UniversalClient
	key string
}

func NewRedisStore(rdb redis.UniversalClient, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{rdb: rdb, key: key}
}

func (r *RedisStore) Load(ctx context.Context) ([]byte, error) {
	data, err := r.rdb.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return data, nil
}

func (r *RedisStore) Save(ctx context.Context, data []byte) error {
	if err := r.rdb.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}
