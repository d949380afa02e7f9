package keyring

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisStateKey = "jobforge:keyring:state"

// RedisStore keeps rotation state in Redis so multiple workers sharing the
// same key pool see each other's quota exhaustion.
type RedisStore struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisStore connects to Redis using a URL of the form
// redis://host:port. The connection is verified before use.
func NewRedisStore(url, password string, db int, timeout time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	if db != 0 {
		opts.DB = db
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client, timeout: timeout}, nil
}

func (s *RedisStore) Load(ctx context.Context) (State, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.client.Get(ctx, redisStateKey).Bytes()
	if err == redis.Nil {
		return NewState(), nil
	}
	if err != nil {
		return NewState(), fmt.Errorf("failed to load key state from redis: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return NewState(), nil
	}
	if state.QuotaExhaustedKeys == nil {
		state.QuotaExhaustedKeys = make(map[string]string)
	}
	return state, nil
}

func (s *RedisStore) Save(ctx context.Context, state State) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal key state: %w", err)
	}
	if err := s.client.Set(ctx, redisStateKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save key state to redis: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
