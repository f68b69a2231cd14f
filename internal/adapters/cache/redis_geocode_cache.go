package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"shipment-dispatch-service/internal/domain"
	"shipment-dispatch-service/internal/platform/obs"
)

const redisGeocodePrefix = "geocode:"

// RedisGeocodeCache stores address -> coordinate mappings as JSON values with a TTL.
type RedisGeocodeCache struct {
	Client redis.UniversalClient
	TTL    time.Duration
}

func NewRedisGeocodeCache(client redis.UniversalClient, ttl time.Duration) *RedisGeocodeCache {
	return &RedisGeocodeCache{Client: client, TTL: ttl}
}

// Fetch cached coordinates for the given addresses with a single MGET.
func (r *RedisGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.cache.redis.GetMany")(&err)

	if r.Client == nil {
		return nil, errors.New("geocode cache: redis client is nil")
	}

	uniq := uniqueAddresses(addresses)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	keys := make([]string, len(uniq))
	for i, a := range uniq {
		keys[i] = redisGeocodePrefix + a
	}

	vals, err := r.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: redis mget: %w", err)
	}

	out := make(map[string]domain.Coordinates, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}

		var c domain.Coordinates
		if err := json.Unmarshal([]byte(s), &c); err != nil {
			return nil, fmt.Errorf("get geocode cache: decode %q: %w", uniq[i], err)
		}
		out[uniq[i]] = c
	}

	return out, nil
}

// Store address -> coordinate mappings in one pipeline.
func (r *RedisGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) (err error) {
	defer obs.Time(ctx, "geocode.cache.redis.PutMany")(&err)

	if r.Client == nil {
		return errors.New("geocode cache: redis client is nil")
	}

	if len(results) == 0 {
		return nil
	}

	pipe := r.Client.Pipeline()
	for addr, c := range results {
		if addr == "" {
			return fmt.Errorf("insert geocode cache: empty address key")
		}

		b, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("insert geocode cache coord=%q: %w", addr, err)
		}
		pipe.Set(ctx, redisGeocodePrefix+addr, b, r.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert geocode cache: redis pipeline: %w", err)
	}

	return nil
}
