// Package cache keeps rendered listing details in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ListingCache stores listing details keyed by id. A miss returns (nil, nil).
type ListingCache interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Property, error)
	Set(ctx context.Context, p *models.Property) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(ctx context.Context, addr, password string, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return NewRedisWithClient(client, ttl), nil
}

func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func key(id uuid.UUID) string {
	return "listing:" + id.String()
}

func (c *Redis) Get(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	data, err := c.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p models.Property
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Redis) Set(ctx context.Context, p *models.Property) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(p.ID), data, c.ttl).Err()
}

func (c *Redis) Invalidate(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, key(id)).Err()
}

func (c *Redis) Close() error {
	return c.client.Close()
}

// Noop is used when no Redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context, uuid.UUID) (*models.Property, error) { return nil, nil }
func (Noop) Set(context.Context, *models.Property) error             { return nil }
func (Noop) Invalidate(context.Context, uuid.UUID) error             { return nil }
