package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/servicecenter-api/internal/domain"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
)

var _ repository.VehicleRepository = (*VehicleRepo)(nil)

const vehicleColumns = `id, customer_id, brand, model, registration_number, category, manufacture_year, created_at, updated_at`

// VehicleRepo implementación de VehicleRepository.
type VehicleRepo struct {
	q Querier
}

// NewVehicleRepository construye el adaptador.
func NewVehicleRepository(q Querier) *VehicleRepo {
	return &VehicleRepo{q: q}
}

func scanVehicle(row interface{ Scan(...any) error }) (*entity.Vehicle, error) {
	var v entity.Vehicle
	if err := row.Scan(&v.ID, &v.CustomerID, &v.Brand, &v.Model, &v.RegistrationNumber, &v.Category,
		&v.ManufactureYear, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// Create persiste un vehículo. Matrícula repetida -> domain.ErrDuplicate.
func (r *VehicleRepo) Create(ctx context.Context, v *entity.Vehicle) error {
	_, err := r.q.Exec(ctx, `INSERT INTO vehicles (`+vehicleColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		v.ID, v.CustomerID, v.Brand, v.Model, v.RegistrationNumber, v.Category, v.ManufactureYear, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert vehicle: %w", err)
	}
	return nil
}

func (r *VehicleRepo) GetByID(ctx context.Context, id string) (*entity.Vehicle, error) {
	v, err := scanVehicle(r.q.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	return v, nil
}

func (r *VehicleRepo) GetByRegistration(ctx context.Context, registration string) (*entity.Vehicle, error) {
	v, err := scanVehicle(r.q.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE registration_number = $1`, registration))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vehicle by registration: %w", err)
	}
	return v, nil
}

func (r *VehicleRepo) ListByCustomer(ctx context.Context, customerID string) ([]*entity.Vehicle, error) {
	rows, err := r.q.Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE customer_id = $1 ORDER BY created_at`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()
	var list []*entity.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

func (r *VehicleRepo) Update(ctx context.Context, v *entity.Vehicle) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE vehicles SET brand = $2, model = $3, registration_number = $4, category = $5,
		       manufacture_year = $6, updated_at = $7
		WHERE id = $1`,
		v.ID, v.Brand, v.Model, v.RegistrationNumber, v.Category, v.ManufactureYear, v.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update vehicle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *VehicleRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	return nil
}
