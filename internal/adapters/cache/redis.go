package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/zerr"
)

// Redis keeps results as JSON strings in a Redis server.
// Connection failures surface as domain.ErrCacheUnavailable.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis connects a Redis cache using cfg. The connection is established lazily.
func NewRedis(cfg domain.RedisConfig, ttl time.Duration) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisWithClient(client, cfg.Prefix, ttl)
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = domain.DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) key(fp domain.Fingerprint) string {
	return r.prefix + string(fp)
}

// Get retrieves the result stored under fp.
func (r *Redis) Get(ctx context.Context, fp domain.Fingerprint) (*domain.PlanarityResult, error) {
	data, err := r.client.Get(ctx, r.key(fp)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrCacheUnavailable, err.Error()), "key", r.key(fp))
	}

	var res domain.PlanarityResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheUnmarshalFailed.Error()), "key", r.key(fp))
	}
	return &res, nil
}

// Put stores result under fp with the configured expiry.
func (r *Redis) Put(ctx context.Context, fp domain.Fingerprint, result *domain.PlanarityResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheMarshalFailed.Error())
	}
	if err := r.client.Set(ctx, r.key(fp), data, r.ttl).Err(); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCacheUnavailable, err.Error()), "key", r.key(fp))
	}
	return nil
}

// Close releases the client's connections.
func (r *Redis) Close() error {
	return r.client.Close()
}
