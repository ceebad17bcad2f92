package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/servicecenter-api/internal/application/dto"
	"github.com/jhoicas/servicecenter-api/internal/domain"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
)

// InventoryUseCase CRUD de repuestos e insumos del taller.
type InventoryUseCase struct {
	repo repository.InventoryRepository
}

// NewInventoryUseCase construye el caso de uso.
func NewInventoryUseCase(repo repository.InventoryRepository) *InventoryUseCase {
	return &InventoryUseCase{repo: repo}
}

func validateItem(in dto.InventoryItemRequest) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name es obligatorio", domain.ErrInvalidInput)
	case in.CurrentStock < 0:
		return fmt.Errorf("%w: current_stock no puede ser negativo", domain.ErrInvalidInput)
	case in.ReorderLevel < 0:
		return fmt.Errorf("%w: reorder_level no puede ser negativo", domain.ErrInvalidInput)
	case in.UnitPrice.IsNegative():
		return fmt.Errorf("%w: unit_price no puede ser negativo", domain.ErrInvalidInput)
	}
	return nil
}

// Create alta de un ítem.
func (uc *InventoryUseCase) Create(ctx context.Context, in dto.InventoryItemRequest) (*dto.InventoryItemResponse, error) {
	if err := validateItem(in); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	item := &entity.InventoryItem{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Category:     strings.TrimSpace(in.Category),
		CurrentStock: in.CurrentStock,
		UnitPrice:    in.UnitPrice.Round(2),
		ReorderLevel: in.ReorderLevel,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	out := dto.FromInventoryItem(item)
	return &out, nil
}

// GetByID obtiene un ítem.
func (uc *InventoryUseCase) GetByID(ctx context.Context, id string) (*dto.InventoryItemResponse, error) {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.FromInventoryItem(item)
	return &out, nil
}

// List ítems ordenados por nombre.
func (uc *InventoryUseCase) List(ctx context.Context, page dto.PageRequest) (dto.ListResponse[dto.InventoryItemResponse], error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return dto.ListResponse[dto.InventoryItemResponse]{}, err
	}
	return dto.NewListResponse(dto.MapSlice(list, dto.FromInventoryItem), page), nil
}

// Update reemplaza los datos del ítem (incluido el stock: ajuste manual).
func (uc *InventoryUseCase) Update(ctx context.Context, id string, in dto.InventoryItemRequest) (*dto.InventoryItemResponse, error) {
	if err := validateItem(in); err != nil {
		return nil, err
	}
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	item.Name = strings.TrimSpace(in.Name)
	item.Category = strings.TrimSpace(in.Category)
	item.CurrentStock = in.CurrentStock
	item.UnitPrice = in.UnitPrice.Round(2)
	item.ReorderLevel = in.ReorderLevel
	item.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	out := dto.FromInventoryItem(item)
	return &out, nil
}

// Delete elimina un ítem sin consumos registrados.
func (uc *InventoryUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

// LowStock ítems en o bajo su punto de reorden.
func (uc *InventoryUseCase) LowStock(ctx context.Context) ([]dto.InventoryItemResponse, error) {
	list, err := uc.repo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	return dto.MapSlice(list, dto.FromInventoryItem), nil
}
