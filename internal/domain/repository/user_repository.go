package repository

import (
	"context"

	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Los Get devuelven (nil, nil) si no existe.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	// UpdateContact escribe solo nombre y teléfono.
	UpdateContact(ctx context.Context, user *entity.User) error
	// UpdateMembership escribe solo tipo y vigencia de la membresía.
	UpdateMembership(ctx context.Context, user *entity.User) error
	ListByRole(ctx context.Context, role string, limit, offset int) ([]*entity.User, error)
	CountByRole(ctx context.Context, role string, activeOnly bool) (int, error)
}
