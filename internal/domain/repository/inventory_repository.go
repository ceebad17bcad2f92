package repository

import (
	"context"

	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
)

// InventoryRepository define el puerto de persistencia para InventoryItem.
type InventoryRepository interface {
	Create(ctx context.Context, item *entity.InventoryItem) error
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	// GetByIDForUpdate bloquea la fila del ítem (consumo de stock).
	GetByIDForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error)
	Update(ctx context.Context, item *entity.InventoryItem) error
	// DecrementStock resta qty de current_stock; devuelve domain.ErrInsufficientStock si no alcanza.
	DecrementStock(ctx context.Context, id string, qty int) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*entity.InventoryItem, error)
	// ListLowStock ítems con current_stock <= reorder_level.
	ListLowStock(ctx context.Context) ([]*entity.InventoryItem, error)
}
