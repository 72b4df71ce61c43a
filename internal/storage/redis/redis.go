package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"wishlist/internal/models"
	"wishlist/internal/storage"
)

// RedisRepo caches known sessions in front of the database. Sessions are
// permanent in the database; the cache entry only expires to bound memory.
type RedisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

func New(ctx context.Context, addr, pass string, db int, ttl time.Duration) (*RedisRepo, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     pass,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisRepo{
		client: client,
		ttl:    ttl,
	}, nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// * CacheSession stores the session and (re)arms its expiry.
func (r *RedisRepo) CacheSession(ctx context.Context, s models.Session) error {
	const op = "storage.redis.CacheSession"

	key := sessionKey(s.ID)

	data := map[string]interface{}{
		"ip_address": s.IPAddress,
		"started":    s.Started.Unix(),
	}

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, data)
	pipe.Expire(ctx, key, r.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// * CachedSession returns storage.ErrSessionNotFound on a cache miss.
func (r *RedisRepo) CachedSession(ctx context.Context, id string) (*models.Session, error) {
	const op = "storage.redis.CachedSession"

	fields, err := r.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrSessionNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(fields) == 0 {
		return nil, storage.ErrSessionNotFound
	}

	started, err := strconv.ParseInt(fields["started"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: bad started field: %w", op, err)
	}

	return &models.Session{
		ID:        id,
		IPAddress: fields["ip_address"],
		Started:   time.Unix(started, 0),
	}, nil
}

// * ForgetSession drops a cached session; a missing key is not an error.
func (r *RedisRepo) ForgetSession(ctx context.Context, id string) error {
	const op = "storage.redis.ForgetSession"

	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// * Close closes the redis connection pool.
func (r *RedisRepo) Close() {
	r.client.Close()
}
