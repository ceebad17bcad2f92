package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/servicecenter-api/internal/application/ports"
)

var (
	_ ports.Cache = (*Cache)(nil)
	_ ports.Cache = NoopCache{}
)

// Cache caché JSON sobre Redis.
type Cache struct {
	client *goredis.Client
	prefix string
}

// NewCache construye la caché; prefix se antepone a todas las claves.
func NewCache(client *goredis.Client, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, payload, ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

// NoopCache caché deshabilitada (sin Redis): siempre miss.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (NoopCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (NoopCache) Delete(context.Context, string) error                  { return nil }
