package repository

import (
	"context"

	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
)

// AdvisorRepository define el puerto de persistencia para ServiceAdvisorProfile.
type AdvisorRepository interface {
	Create(ctx context.Context, profile *entity.ServiceAdvisorProfile) error
	GetByID(ctx context.Context, id string) (*entity.ServiceAdvisorProfile, error)
	GetByUserID(ctx context.Context, userID string) (*entity.ServiceAdvisorProfile, error)
	Update(ctx context.Context, profile *entity.ServiceAdvisorProfile) error
	List(ctx context.Context, limit, offset int) ([]*entity.ServiceAdvisorProfile, error)
}
