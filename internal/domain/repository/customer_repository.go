package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
)

// CustomerProfileRepository define el puerto de persistencia para CustomerProfile.
type CustomerProfileRepository interface {
	Create(ctx context.Context, profile *entity.CustomerProfile) error
	GetByID(ctx context.Context, id string) (*entity.CustomerProfile, error)
	GetByUserID(ctx context.Context, userID string) (*entity.CustomerProfile, error)
	// UpdateAddress escribe solo dirección, ciudad y código postal.
	UpdateAddress(ctx context.Context, profile *entity.CustomerProfile) error
	// AddTotalSpent suma amount al total gastado del perfil del usuario; sin perfil no hace nada.
	AddTotalSpent(ctx context.Context, userID string, amount decimal.Decimal, at time.Time) error
	List(ctx context.Context, limit, offset int) ([]*entity.CustomerProfile, error)
}
