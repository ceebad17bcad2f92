package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/servicecenter-api/internal/domain"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
)

var _ repository.ServiceRequestRepository = (*ServiceRequestRepo)(nil)

const requestColumns = `id, customer_id, vehicle_id, advisor_id, service_type, description, status,
	requested_date, delivered_at, created_at, updated_at`

// ServiceRequestRepo implementación de ServiceRequestRepository.
type ServiceRequestRepo struct {
	q Querier
}

// NewServiceRequestRepository construye el adaptador.
func NewServiceRequestRepository(q Querier) *ServiceRequestRepo {
	return &ServiceRequestRepo{q: q}
}

func scanRequest(row interface{ Scan(...any) error }) (*entity.ServiceRequest, error) {
	var s entity.ServiceRequest
	if err := row.Scan(&s.ID, &s.CustomerID, &s.VehicleID, &s.AdvisorID, &s.ServiceType, &s.Description, &s.Status,
		&s.RequestedDate, &s.DeliveredAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ServiceRequestRepo) Create(ctx context.Context, s *entity.ServiceRequest) error {
	_, err := r.q.Exec(ctx, `INSERT INTO service_requests (`+requestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.CustomerID, s.VehicleID, s.AdvisorID, s.ServiceType, s.Description, s.Status,
		s.RequestedDate, s.DeliveredAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert service request: %w", err)
	}
	return nil
}

func (r *ServiceRequestRepo) get(ctx context.Context, id, suffix string) (*entity.ServiceRequest, error) {
	s, err := scanRequest(r.q.QueryRow(ctx, `SELECT `+requestColumns+` FROM service_requests WHERE id = $1`+suffix, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service request: %w", err)
	}
	return s, nil
}

func (r *ServiceRequestRepo) GetByID(ctx context.Context, id string) (*entity.ServiceRequest, error) {
	return r.get(ctx, id, "")
}

// GetByIDForUpdate solo tiene efecto dentro de una transacción.
func (r *ServiceRequestRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.ServiceRequest, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *ServiceRequestRepo) Update(ctx context.Context, s *entity.ServiceRequest) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE service_requests SET vehicle_id = $2, advisor_id = $3, service_type = $4, description = $5,
		       status = $6, delivered_at = $7, updated_at = $8
		WHERE id = $1`,
		s.ID, s.VehicleID, s.AdvisorID, s.ServiceType, s.Description, s.Status, s.DeliveredAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update service request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List aplica los filtros no vacíos; más recientes primero.
func (r *ServiceRequestRepo) List(ctx context.Context, f repository.ServiceRequestFilter) ([]*entity.ServiceRequest, error) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.CustomerID != "" {
		add("customer_id = $%d", f.CustomerID)
	}
	if f.AdvisorID != "" {
		add("advisor_id = $%d", f.AdvisorID)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	query := `SELECT ` + requestColumns + ` FROM service_requests`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	limit, offset := pageArgs(f.Limit, f.Offset)
	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list service requests: %w", err)
	}
	defer rows.Close()
	var list []*entity.ServiceRequest
	for rows.Next() {
		s, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service request: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// CountByStatus cantidad de solicitudes por estado.
func (r *ServiceRequestRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.q.Query(ctx, `SELECT status, COUNT(*) FROM service_requests GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count service requests: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}
