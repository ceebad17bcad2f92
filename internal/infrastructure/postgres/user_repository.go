package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/servicecenter-api/internal/domain"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, name, email, phone, password_hash, role, active,
	membership_type, membership_start, membership_end, created_at, updated_at`

// UserRepo implementación de UserRepository (usable con pool o tx).
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

func scanUser(row interface{ Scan(...any) error }) (*entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.Active,
		&u.MembershipType, &u.MembershipStart, &u.MembershipEnd, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create persiste un usuario. Email duplicado -> domain.ErrEmailAlreadyExists.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	query := `INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.Name, strings.ToLower(u.Email), u.Phone, u.PasswordHash, u.Role, u.Active,
		u.MembershipType, u.MembershipStart, u.MembershipEnd, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) one(ctx context.Context, query string, args ...any) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByIDForUpdate igual que GetByID con bloqueo de fila (usar dentro de una tx).
func (r *UserRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

// GetByEmail obtiene un usuario por email (sin distinguir mayúsculas).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// Update actualiza datos, estado y membresía.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	query := `
		UPDATE users SET name = $2, phone = $3, password_hash = $4, active = $5,
		       membership_type = $6, membership_start = $7, membership_end = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		u.ID, u.Name, u.Phone, u.PasswordHash, u.Active,
		u.MembershipType, u.MembershipStart, u.MembershipEnd, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateContact actualiza solo nombre y teléfono.
func (r *UserRepo) UpdateContact(ctx context.Context, u *entity.User) error {
	return r.exec(ctx, `UPDATE users SET name = $2, phone = $3, updated_at = $4 WHERE id = $1`,
		u.ID, u.Name, u.Phone, u.UpdatedAt)
}

// UpdateMembership actualiza solo la membresía.
func (r *UserRepo) UpdateMembership(ctx context.Context, u *entity.User) error {
	return r.exec(ctx, `
		UPDATE users SET membership_type = $2, membership_start = $3, membership_end = $4, updated_at = $5
		WHERE id = $1`, u.ID, u.MembershipType, u.MembershipStart, u.MembershipEnd, u.UpdatedAt)
}

func (r *UserRepo) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByRole lista usuarios de un rol ordenados por nombre.
func (r *UserRepo) ListByRole(ctx context.Context, role string, limit, offset int) ([]*entity.User, error) {
	limit, offset = pageArgs(limit, offset)
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY name LIMIT $2 OFFSET $3`,
		role, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// CountByRole cuenta usuarios del rol (opcionalmente solo activos).
func (r *UserRepo) CountByRole(ctx context.Context, role string, activeOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE role = $1`
	if activeOnly {
		query += ` AND active`
	}
	var n int
	if err := r.q.QueryRow(ctx, query, role).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
