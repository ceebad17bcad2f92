package ports

import (
	"context"
	"time"
)

// Cache caché de lecturas costosas (dashboard). Get devuelve false en un miss;
// los errores de caché no deben romper la lectura.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
