package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
)

var _ repository.TrackingRepository = (*TrackingRepo)(nil)

const trackingColumns = `id, request_id, COALESCE(advisor_id::text, ''), status, labor_minutes, labor_cost,
	material_cost, notes, recorded_at`

// TrackingRepo implementación de TrackingRepository.
type TrackingRepo struct {
	q Querier
}

// NewTrackingRepository construye el adaptador.
func NewTrackingRepository(q Querier) *TrackingRepo {
	return &TrackingRepo{q: q}
}

func scanTracking(row interface{ Scan(...any) error }) (*entity.ServiceTracking, error) {
	var t entity.ServiceTracking
	if err := row.Scan(&t.ID, &t.RequestID, &t.AdvisorID, &t.Status, &t.LaborMinutes, &t.LaborCost,
		&t.MaterialCost, &t.Notes, &t.RecordedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TrackingRepo) Create(ctx context.Context, t *entity.ServiceTracking) error {
	var advisorID *string
	if t.AdvisorID != "" {
		advisorID = &t.AdvisorID
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO service_tracking (id, request_id, advisor_id, status, labor_minutes, labor_cost, material_cost, notes, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.RequestID, advisorID, t.Status, t.LaborMinutes, t.LaborCost, t.MaterialCost, t.Notes, t.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert service tracking: %w", err)
	}
	return nil
}

// GetLatest con recorded_at empatado gana la última fila insertada (seq).
func (r *TrackingRepo) GetLatest(ctx context.Context, requestID string) (*entity.ServiceTracking, error) {
	t, err := scanTracking(r.q.QueryRow(ctx, `SELECT `+trackingColumns+` FROM service_tracking
		WHERE request_id = $1 ORDER BY recorded_at DESC, seq DESC LIMIT 1`, requestID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest tracking: %w", err)
	}
	return t, nil
}

func (r *TrackingRepo) ListByRequest(ctx context.Context, requestID string) ([]*entity.ServiceTracking, error) {
	rows, err := r.q.Query(ctx, `SELECT `+trackingColumns+` FROM service_tracking WHERE request_id = $1 ORDER BY recorded_at, seq`, requestID)
	if err != nil {
		return nil, fmt.Errorf("list tracking: %w", err)
	}
	defer rows.Close()
	var list []*entity.ServiceTracking
	for rows.Next() {
		t, err := scanTracking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tracking: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
