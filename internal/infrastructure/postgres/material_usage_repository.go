package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
)

var _ repository.MaterialUsageRepository = (*MaterialUsageRepo)(nil)

// MaterialUsageRepo implementación de MaterialUsageRepository.
type MaterialUsageRepo struct {
	q Querier
}

// NewMaterialUsageRepository construye el adaptador.
func NewMaterialUsageRepository(q Querier) *MaterialUsageRepo {
	return &MaterialUsageRepo{q: q}
}

func (r *MaterialUsageRepo) Create(ctx context.Context, m *entity.MaterialUsage) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO material_usages (id, request_id, item_id, item_name, quantity, unit_price, used_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.RequestID, m.ItemID, m.ItemName, m.Quantity, m.UnitPrice, m.UsedAt,
	)
	if err != nil {
		return fmt.Errorf("insert material usage: %w", err)
	}
	return nil
}

func (r *MaterialUsageRepo) ListByRequest(ctx context.Context, requestID string) ([]*entity.MaterialUsage, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, request_id, item_id, item_name, quantity, unit_price, used_at
		FROM material_usages WHERE request_id = $1 ORDER BY used_at`, requestID)
	if err != nil {
		return nil, fmt.Errorf("list material usages: %w", err)
	}
	defer rows.Close()
	var list []*entity.MaterialUsage
	for rows.Next() {
		var m entity.MaterialUsage
		if err := rows.Scan(&m.ID, &m.RequestID, &m.ItemID, &m.ItemName, &m.Quantity, &m.UnitPrice, &m.UsedAt); err != nil {
			return nil, fmt.Errorf("scan material usage: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
