package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/servicecenter-api/internal/domain"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
)

var _ repository.CustomerProfileRepository = (*CustomerProfileRepo)(nil)

const customerColumns = `id, user_id, address, city, postal_code, total_spent, created_at, updated_at`

// CustomerProfileRepo implementación de CustomerProfileRepository (usable con pool o tx).
type CustomerProfileRepo struct {
	q Querier
}

// NewCustomerProfileRepository construye el adaptador.
func NewCustomerProfileRepository(q Querier) *CustomerProfileRepo {
	return &CustomerProfileRepo{q: q}
}

func scanCustomer(row interface{ Scan(...any) error }) (*entity.CustomerProfile, error) {
	var c entity.CustomerProfile
	if err := row.Scan(&c.ID, &c.UserID, &c.Address, &c.City, &c.PostalCode, &c.TotalSpent, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste el perfil de un cliente.
func (r *CustomerProfileRepo) Create(ctx context.Context, c *entity.CustomerProfile) error {
	_, err := r.q.Exec(ctx, `INSERT INTO customer_profiles (`+customerColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.UserID, c.Address, c.City, c.PostalCode, c.TotalSpent, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer profile: %w", err)
	}
	return nil
}

// GetByID obtiene un perfil por ID.
func (r *CustomerProfileRepo) GetByID(ctx context.Context, id string) (*entity.CustomerProfile, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, `SELECT `+customerColumns+` FROM customer_profiles WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer profile: %w", err)
	}
	return c, nil
}

// GetByUserID obtiene el perfil del usuario.
func (r *CustomerProfileRepo) GetByUserID(ctx context.Context, userID string) (*entity.CustomerProfile, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, `SELECT `+customerColumns+` FROM customer_profiles WHERE user_id = $1`, userID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer profile by user: %w", err)
	}
	return c, nil
}

// UpdateAddress actualiza solo la dirección; total_spent no se toca.
func (r *CustomerProfileRepo) UpdateAddress(ctx context.Context, c *entity.CustomerProfile) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE customer_profiles SET address = $2, city = $3, postal_code = $4, updated_at = $5
		WHERE id = $1`,
		c.ID, c.Address, c.City, c.PostalCode, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update customer profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddTotalSpent incremento en SQL: no pisa escrituras concurrentes del perfil.
func (r *CustomerProfileRepo) AddTotalSpent(ctx context.Context, userID string, amount decimal.Decimal, at time.Time) error {
	if _, err := r.q.Exec(ctx, `
		UPDATE customer_profiles SET total_spent = total_spent + $2, updated_at = $3
		WHERE user_id = $1`, userID, amount, at); err != nil {
		return fmt.Errorf("add customer total spent: %w", err)
	}
	return nil
}

// List lista perfiles de clientes, más recientes primero.
func (r *CustomerProfileRepo) List(ctx context.Context, limit, offset int) ([]*entity.CustomerProfile, error) {
	limit, offset = pageArgs(limit, offset)
	rows, err := r.q.Query(ctx, `SELECT `+customerColumns+` FROM customer_profiles ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customer profiles: %w", err)
	}
	defer rows.Close()
	var list []*entity.CustomerProfile
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer profile: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
