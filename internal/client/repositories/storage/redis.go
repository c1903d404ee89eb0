package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChangeMessage is published on the change channel after every write so
// other processes sharing the Redis instance can react. Origin identifies
// the writing process.
type ChangeMessage struct {
	Origin string   `json:"origin"`
	Keys   []string `json:"keys"`
}

// RedisOptions configures RedisStore.
type RedisOptions struct {
	// Prefix namespaces every key, e.g. "bankfront:kv:".
	Prefix string
	// Channel receives a ChangeMessage after each write. Empty disables
	// publishing.
	Channel string
	// Origin is stamped on published messages.
	Origin string
}

// RedisStore keeps values in Redis so that several client processes, on one
// or more machines, share a single session.
type RedisStore struct {
	rdb  redis.UniversalClient
	opts RedisOptions
}

func NewRedisStore(rdb redis.UniversalClient, opts RedisOptions) *RedisStore {
	if opts.Prefix == "" {
		opts.Prefix = "bankfront:kv:"
	}
	return &RedisStore{rdb: rdb, opts: opts}
}

// NewRedisClient connects to a single Redis node and pings it.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, errors.New("no Redis address provided")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.rdb.Get(ctx, r.opts.Prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get storage[%s]: %w", key, err)
	}
	return v, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.Set(ctx, r.opts.Prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set storage[%s]: %w", key, err)
	}
	r.publish(ctx, key)
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.opts.Prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete storage[%s]: %w", key, err)
	}
	r.publish(ctx, key)
	return nil
}

func (r *RedisStore) SetMany(ctx context.Context, values map[string][]byte) error {
	keys := make([]string, 0, len(values))
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for k, v := range values {
			p.Set(ctx, r.opts.Prefix+k, v, 0)
			keys = append(keys, k)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set storage batch: %w", err)
	}
	r.publish(ctx, keys...)
	return nil
}

func (r *RedisStore) DeleteMany(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.opts.Prefix + k
	}
	if err := r.rdb.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("failed to delete storage batch: %w", err)
	}
	r.publish(ctx, keys...)
	return nil
}

func (r *RedisStore) List(ctx context.Context) (map[string][]byte, error) {
	keys, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]byte, len(keys))
	for _, full := range keys {
		v, err := r.rdb.Get(ctx, full).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list storage: %w", err)
		}
		result[strings.TrimPrefix(full, r.opts.Prefix)] = v
	}
	return result, nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	keys, err := r.scan(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	short := make([]string, len(keys))
	for i, k := range keys {
		short[i] = strings.TrimPrefix(k, r.opts.Prefix)
	}
	r.publish(ctx, short...)
	return nil
}

func (r *RedisStore) scan(ctx context.Context) ([]string, error) {
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := r.rdb.Scan(ctx, cursor, r.opts.Prefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan storage: %w", err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

// publish ignores errors. Subscribers still reconcile on their next
// revalidation tick.
func (r *RedisStore) publish(ctx context.Context, keys ...string) {
	if r.opts.Channel == "" || len(keys) == 0 {
		return
	}
	payload, err := json.Marshal(ChangeMessage{Origin: r.opts.Origin, Keys: keys})
	if err != nil {
		return
	}
	_ = r.rdb.Publish(ctx, r.opts.Channel, payload).Err()
}
