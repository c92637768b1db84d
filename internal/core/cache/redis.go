package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/duynhne/doctor-service/config"
	"github.com/duynhne/doctor-service/internal/core/domain"
	"github.com/duynhne/doctor-service/middleware"
)

const keyPrefix = "cache:doctor:"

// DoctorCache stores JSON-encoded doctors in Redis under cache:doctor:<id>.
type DoctorCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// Connect opens a Redis client and pings it.
func Connect(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// NewDoctorCache wraps a Redis client. A zero ttl keeps entries until invalidated.
func NewDoctorCache(rdb *redis.Client, ttl time.Duration) *DoctorCache {
	return &DoctorCache{rdb: rdb, ttl: ttl}
}

// Get returns (nil, nil) on a miss.
func (c *DoctorCache) Get(ctx context.Context, id string) (*domain.Doctor, error) {
	data, err := c.rdb.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			middleware.RecordCacheResult("miss")
			return nil, nil
		}
		middleware.RecordCacheResult("error")
		return nil, fmt.Errorf("redis get doctor %q: %w", id, err)
	}

	var doctor domain.Doctor
	if err := json.Unmarshal(data, &doctor); err != nil {
		middleware.RecordCacheResult("error")
		return nil, fmt.Errorf("decode cached doctor %q: %w", id, err)
	}
	middleware.RecordCacheResult("hit")
	return &doctor, nil
}

func (c *DoctorCache) Set(ctx context.Context, doctor *domain.Doctor) error {
	data, err := json.Marshal(doctor)
	if err != nil {
		return fmt.Errorf("encode doctor %q: %w", doctor.ID, err)
	}
	if err := c.rdb.Set(ctx, keyPrefix+doctor.ID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set doctor %q: %w", doctor.ID, err)
	}
	return nil
}

func (c *DoctorCache) Invalidate(ctx context.Context, id string) error {
	if err := c.rdb.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del doctor %q: %w", id, err)
	}
	return nil
}
