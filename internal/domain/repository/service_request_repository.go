package repository

import (
	"context"

	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
)

// ServiceRequestFilter filtros de listado. Los campos vacíos no filtran.
type ServiceRequestFilter struct {
	CustomerID string
	AdvisorID  string
	Status     string
	Limit      int
	Offset     int
}

// ServiceRequestRepository define el puerto de persistencia para ServiceRequest.
type ServiceRequestRepository interface {
	Create(ctx context.Context, req *entity.ServiceRequest) error
	GetByID(ctx context.Context, id string) (*entity.ServiceRequest, error)
	// GetByIDForUpdate bloquea la fila hasta el fin de la transacción (SELECT ... FOR UPDATE).
	GetByIDForUpdate(ctx context.Context, id string) (*entity.ServiceRequest, error)
	Update(ctx context.Context, req *entity.ServiceRequest) error
	List(ctx context.Context, filter ServiceRequestFilter) ([]*entity.ServiceRequest, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}
