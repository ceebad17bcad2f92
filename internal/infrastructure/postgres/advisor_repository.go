package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/servicecenter-api/internal/domain"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
)

var _ repository.AdvisorRepository = (*AdvisorRepo)(nil)

const advisorColumns = `id, user_id, department, specialization, created_at, updated_at`

// AdvisorRepo implementación de AdvisorRepository.
type AdvisorRepo struct {
	q Querier
}

// NewAdvisorRepository construye el adaptador.
func NewAdvisorRepository(q Querier) *AdvisorRepo {
	return &AdvisorRepo{q: q}
}

func scanAdvisor(row interface{ Scan(...any) error }) (*entity.ServiceAdvisorProfile, error) {
	var a entity.ServiceAdvisorProfile
	if err := row.Scan(&a.ID, &a.UserID, &a.Department, &a.Specialization, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdvisorRepo) Create(ctx context.Context, a *entity.ServiceAdvisorProfile) error {
	_, err := r.q.Exec(ctx, `INSERT INTO service_advisor_profiles (`+advisorColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.UserID, a.Department, a.Specialization, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert advisor profile: %w", err)
	}
	return nil
}

func (r *AdvisorRepo) GetByID(ctx context.Context, id string) (*entity.ServiceAdvisorProfile, error) {
	a, err := scanAdvisor(r.q.QueryRow(ctx, `SELECT `+advisorColumns+` FROM service_advisor_profiles WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get advisor profile: %w", err)
	}
	return a, nil
}

func (r *AdvisorRepo) GetByUserID(ctx context.Context, userID string) (*entity.ServiceAdvisorProfile, error) {
	a, err := scanAdvisor(r.q.QueryRow(ctx, `SELECT `+advisorColumns+` FROM service_advisor_profiles WHERE user_id = $1`, userID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get advisor profile by user: %w", err)
	}
	return a, nil
}

func (r *AdvisorRepo) Update(ctx context.Context, a *entity.ServiceAdvisorProfile) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE service_advisor_profiles SET department = $2, specialization = $3, updated_at = $4 WHERE id = $1`,
		a.ID, a.Department, a.Specialization, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update advisor profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AdvisorRepo) List(ctx context.Context, limit, offset int) ([]*entity.ServiceAdvisorProfile, error) {
	limit, offset = pageArgs(limit, offset)
	rows, err := r.q.Query(ctx, `SELECT `+advisorColumns+` FROM service_advisor_profiles ORDER BY created_at LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list advisor profiles: %w", err)
	}
	defer rows.Close()
	var list []*entity.ServiceAdvisorProfile
	for rows.Next() {
		a, err := scanAdvisor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan advisor profile: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
