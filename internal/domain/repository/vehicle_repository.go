package repository

import (
	"context"

	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
)

// VehicleRepository define el puerto de persistencia para Vehicle.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *entity.Vehicle) error
	GetByID(ctx context.Context, id string) (*entity.Vehicle, error)
	GetByRegistration(ctx context.Context, registration string) (*entity.Vehicle, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*entity.Vehicle, error)
	Update(ctx context.Context, vehicle *entity.Vehicle) error
	Delete(ctx context.Context, id string) error
}
