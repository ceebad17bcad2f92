package repository

import (
	"context"

	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
)

// MaterialUsageRepository define el puerto de persistencia para MaterialUsage.
type MaterialUsageRepository interface {
	Create(ctx context.Context, usage *entity.MaterialUsage) error
	ListByRequest(ctx context.Context, requestID string) ([]*entity.MaterialUsage, error)
}
