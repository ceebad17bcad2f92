package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/servicecenter-api/internal/domain"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

const inventoryColumns = `id, name, category, current_stock, unit_price, reorder_level, created_at, updated_at`

// InventoryRepo implementación de InventoryRepository (usable con pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador.
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

func scanItem(row interface{ Scan(...any) error }) (*entity.InventoryItem, error) {
	var i entity.InventoryItem
	if err := row.Scan(&i.ID, &i.Name, &i.Category, &i.CurrentStock, &i.UnitPrice, &i.ReorderLevel,
		&i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *InventoryRepo) Create(ctx context.Context, i *entity.InventoryItem) error {
	_, err := r.q.Exec(ctx, `INSERT INTO inventory_items (`+inventoryColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		i.ID, i.Name, i.Category, i.CurrentStock, i.UnitPrice, i.ReorderLevel, i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert inventory item: %w", err)
	}
	return nil
}

func (r *InventoryRepo) get(ctx context.Context, id, suffix string) (*entity.InventoryItem, error) {
	i, err := scanItem(r.q.QueryRow(ctx, `SELECT `+inventoryColumns+` FROM inventory_items WHERE id = $1`+suffix, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return i, nil
}

func (r *InventoryRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.get(ctx, id, "")
}

func (r *InventoryRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *InventoryRepo) Update(ctx context.Context, i *entity.InventoryItem) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE inventory_items SET name = $2, category = $3, current_stock = $4, unit_price = $5,
		       reorder_level = $6, updated_at = $7
		WHERE id = $1`,
		i.ID, i.Name, i.Category, i.CurrentStock, i.UnitPrice, i.ReorderLevel, i.UpdatedAt,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("update inventory item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DecrementStock descuenta de forma atómica; la condición del WHERE evita stock negativo.
func (r *InventoryRepo) DecrementStock(ctx context.Context, id string, qty int) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE inventory_items SET current_stock = current_stock - $2, updated_at = NOW()
		WHERE id = $1 AND current_stock >= $2`, id, qty)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}

func (r *InventoryRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: el ítem tiene consumos registrados", domain.ErrConflict)
		}
		return fmt.Errorf("delete inventory item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InventoryRepo) List(ctx context.Context, limit, offset int) ([]*entity.InventoryItem, error) {
	limit, offset = pageArgs(limit, offset)
	return r.list(ctx, `SELECT `+inventoryColumns+` FROM inventory_items ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *InventoryRepo) ListLowStock(ctx context.Context) ([]*entity.InventoryItem, error) {
	return r.list(ctx, `SELECT `+inventoryColumns+` FROM inventory_items
		WHERE current_stock <= reorder_level ORDER BY current_stock, name`)
}

func (r *InventoryRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InventoryItem, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryItem
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		list = append(list, i)
	}
	return list, rows.Err()
}
