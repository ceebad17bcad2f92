package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jhoicas/servicecenter-api/internal/application/ports"
)

var _ ports.Cache = (*Cache)(nil)

type cacheEntry struct {
	payload   []byte
	expiresAt time.Time
}

// Cache caché local con TTL. Serializa a JSON igual que la caché Redis para que
// los valores leídos no compartan memoria con los escritos.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCache crea una caché vacía.
func NewCache() *Cache {
	return &Cache{entries: map[string]cacheEntry{}}
}

func (c *Cache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.payload, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{payload: payload, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}
