package repository

import (
	"context"

	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
)

// TrackingRepository define el puerto de persistencia para ServiceTracking.
type TrackingRepository interface {
	Create(ctx context.Context, t *entity.ServiceTracking) error
	// GetLatest devuelve la fila más reciente por recorded_at (estado actual) o nil.
	GetLatest(ctx context.Context, requestID string) (*entity.ServiceTracking, error)
	ListByRequest(ctx context.Context, requestID string) ([]*entity.ServiceTracking, error)
}
