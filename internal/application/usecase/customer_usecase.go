package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/servicecenter-api/internal/application/dto"
	"github.com/jhoicas/servicecenter-api/internal/domain"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
)

// CustomerUseCase autoservicio del cliente: perfil, vehículos y solicitudes de servicio.
// También expone las consultas de clientes del panel de administración.
type CustomerUseCase struct {
	repos repository.Repositories
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repos repository.Repositories) *CustomerUseCase {
	return &CustomerUseCase{repos: repos}
}

func (uc *CustomerUseCase) profile(ctx context.Context, profileID string) (*entity.CustomerProfile, *entity.User, error) {
	p, err := uc.repos.Customers.GetByID(ctx, profileID)
	if err != nil {
		return nil, nil, err
	}
	if p == nil {
		return nil, nil, domain.ErrNotFound
	}
	u, err := uc.repos.Users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, nil, err
	}
	if u == nil {
		return nil, nil, domain.ErrNotFound
	}
	return p, u, nil
}

// GetProfile perfil del cliente autenticado.
func (uc *CustomerUseCase) GetProfile(ctx context.Context, actor dto.Actor) (*dto.CustomerProfileResponse, error) {
	p, u, err := uc.profile(ctx, actor.ProfileID)
	if err != nil {
		return nil, err
	}
	out := dto.FromCustomer(p, u, time.Now())
	return &out, nil
}

// UpdateProfile actualiza los campos informados del perfil y del usuario (contacto y dirección).
func (uc *CustomerUseCase) UpdateProfile(ctx context.Context, actor dto.Actor, in dto.UpdateCustomerProfileRequest) (*dto.CustomerProfileResponse, error) {
	p, u, err := uc.profile(ctx, actor.ProfileID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: el nombre no puede estar vacío", domain.ErrInvalidInput)
		}
		u.Name = name
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		p.Address = strings.TrimSpace(*in.Address)
	}
	if in.City != nil {
		p.City = strings.TrimSpace(*in.City)
	}
	if in.PostalCode != nil {
		p.PostalCode = strings.TrimSpace(*in.PostalCode)
	}
	u.UpdatedAt, p.UpdatedAt = now, now
	// solo columnas de contacto y dirección: total gastado y membresía los escriben los pagos
	if in.Name != nil || in.Phone != nil {
		if err := uc.repos.Users.UpdateContact(ctx, u); err != nil {
			return nil, err
		}
	}
	if in.Address != nil || in.City != nil || in.PostalCode != nil {
		if err := uc.repos.Customers.UpdateAddress(ctx, p); err != nil {
			return nil, err
		}
	}
	out := dto.FromCustomer(p, u, now)
	return &out, nil
}

func vehicleFromRequest(in dto.VehicleRequest) (string, string, string, string, error) {
	brand, model := strings.TrimSpace(in.Brand), strings.TrimSpace(in.Model)
	reg := entity.NormalizeRegistration(in.RegistrationNumber)
	if brand == "" || model == "" || reg == "" {
		return "", "", "", "", fmt.Errorf("%w: marca, modelo y matrícula son obligatorios", domain.ErrInvalidInput)
	}
	cat := entity.NormalizeVehicleCategory(in.Category)
	if cat == "" {
		return "", "", "", "", fmt.Errorf("%w: categoría de vehículo %q", domain.ErrInvalidInput, in.Category)
	}
	if in.ManufactureYear < 0 || in.ManufactureYear > time.Now().Year()+1 {
		return "", "", "", "", fmt.Errorf("%w: año de fabricación %d", domain.ErrInvalidInput, in.ManufactureYear)
	}
	return brand, model, reg, cat, nil
}

// CreateVehicle registra un vehículo del cliente. Matrícula repetida -> ErrDuplicate.
func (uc *CustomerUseCase) CreateVehicle(ctx context.Context, actor dto.Actor, in dto.VehicleRequest) (*dto.VehicleResponse, error) {
	brand, model, reg, cat, err := vehicleFromRequest(in)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	v := &entity.Vehicle{
		ID:                 uuid.New().String(),
		CustomerID:         actor.ProfileID,
		Brand:              brand,
		Model:              model,
		RegistrationNumber: reg,
		Category:           cat,
		ManufactureYear:    in.ManufactureYear,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := uc.repos.Vehicles.Create(ctx, v); err != nil {
		return nil, err
	}
	out := dto.FromVehicle(v)
	return &out, nil
}

// ListVehicles vehículos del cliente.
func (uc *CustomerUseCase) ListVehicles(ctx context.Context, actor dto.Actor) ([]dto.VehicleResponse, error) {
	list, err := uc.repos.Vehicles.ListByCustomer(ctx, actor.ProfileID)
	if err != nil {
		return nil, err
	}
	return dto.MapSlice(list, dto.FromVehicle), nil
}

func (uc *CustomerUseCase) ownVehicle(ctx context.Context, actor dto.Actor, id string) (*entity.Vehicle, error) {
	v, err := uc.repos.Vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil || (!actor.IsAdmin() && v.CustomerID != actor.ProfileID) {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

// GetVehicle vehículo propio.
func (uc *CustomerUseCase) GetVehicle(ctx context.Context, actor dto.Actor, id string) (*dto.VehicleResponse, error) {
	v, err := uc.ownVehicle(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	out := dto.FromVehicle(v)
	return &out, nil
}

// UpdateVehicle reemplaza los datos de un vehículo propio.
func (uc *CustomerUseCase) UpdateVehicle(ctx context.Context, actor dto.Actor, id string, in dto.VehicleRequest) (*dto.VehicleResponse, error) {
	v, err := uc.ownVehicle(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	brand, model, reg, cat, err := vehicleFromRequest(in)
	if err != nil {
		return nil, err
	}
	v.Brand, v.Model, v.RegistrationNumber, v.Category = brand, model, reg, cat
	v.ManufactureYear = in.ManufactureYear
	v.UpdatedAt = time.Now().UTC()
	if err := uc.repos.Vehicles.Update(ctx, v); err != nil {
		return nil, err
	}
	out := dto.FromVehicle(v)
	return &out, nil
}

// DeleteVehicle elimina un vehículo propio; las solicitudes que lo referencian quedan sin vehículo.
func (uc *CustomerUseCase) DeleteVehicle(ctx context.Context, actor dto.Actor, id string) error {
	if _, err := uc.ownVehicle(ctx, actor, id); err != nil {
		return err
	}
	return uc.repos.Vehicles.Delete(ctx, id)
}

// CreateServiceRequest alta de una solicitud en estado Received. El vehículo, si se indica,
// debe pertenecer al cliente.
func (uc *CustomerUseCase) CreateServiceRequest(ctx context.Context, actor dto.Actor, in dto.CreateServiceRequestRequest) (*dto.ServiceRequestResponse, error) {
	serviceType := strings.TrimSpace(in.ServiceType)
	if serviceType == "" {
		return nil, fmt.Errorf("%w: service_type es obligatorio", domain.ErrInvalidInput)
	}
	now := time.Now().UTC()
	req := &entity.ServiceRequest{
		ID:            uuid.New().String(),
		CustomerID:    actor.ProfileID,
		ServiceType:   serviceType,
		Description:   strings.TrimSpace(in.Description),
		Status:        entity.StatusReceived,
		RequestedDate: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.RequestedDate != nil {
		req.RequestedDate = in.RequestedDate.UTC()
	}
	if in.VehicleID != "" {
		v, err := uc.ownVehicle(ctx, actor, in.VehicleID)
		if err != nil {
			return nil, fmt.Errorf("vehículo %s: %w", in.VehicleID, err)
		}
		req.VehicleID = &v.ID
	}
	if err := uc.repos.Requests.Create(ctx, req); err != nil {
		return nil, err
	}
	out := dto.FromServiceRequest(req)
	return &out, nil
}

// ListServiceRequests solicitudes propias, más recientes primero.
func (uc *CustomerUseCase) ListServiceRequests(ctx context.Context, actor dto.Actor, status string, page dto.PageRequest) (dto.ListResponse[dto.ServiceRequestResponse], error) {
	page.DefaultPage()
	filter := repository.ServiceRequestFilter{CustomerID: actor.ProfileID, Limit: page.Limit, Offset: page.Offset}
	if status != "" {
		st, ok := entity.ParseServiceStatus(status)
		if !ok {
			return dto.ListResponse[dto.ServiceRequestResponse]{}, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
		}
		filter.Status = st
	}
	list, err := uc.repos.Requests.List(ctx, filter)
	if err != nil {
		return dto.ListResponse[dto.ServiceRequestResponse]{}, err
	}
	return dto.NewListResponse(dto.MapSlice(list, dto.FromServiceRequest), page), nil
}

// GetServiceRequest detalle de una solicitud visible para el actor.
func (uc *CustomerUseCase) GetServiceRequest(ctx context.Context, actor dto.Actor, id string) (*dto.ServiceRequestDetailResponse, error) {
	return requestDetail(ctx, uc.repos, actor, id)
}

// ListTracking historial de seguimiento de una solicitud visible para el actor.
func (uc *CustomerUseCase) ListTracking(ctx context.Context, actor dto.Actor, id string) ([]dto.TrackingResponse, error) {
	if _, err := visibleRequest(ctx, uc.repos, actor, id); err != nil {
		return nil, err
	}
	list, err := uc.repos.Tracking.ListByRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.MapSlice(list, dto.FromTracking), nil
}

// ListCustomers listado de clientes (admin).
func (uc *CustomerUseCase) ListCustomers(ctx context.Context, page dto.PageRequest) (dto.ListResponse[dto.CustomerProfileResponse], error) {
	page.DefaultPage()
	profiles, err := uc.repos.Customers.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return dto.ListResponse[dto.CustomerProfileResponse]{}, err
	}
	now := time.Now()
	out := make([]dto.CustomerProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		u, err := uc.repos.Users.GetByID(ctx, p.UserID)
		if err != nil {
			return dto.ListResponse[dto.CustomerProfileResponse]{}, err
		}
		if u == nil {
			continue
		}
		out = append(out, dto.FromCustomer(p, u, now))
	}
	return dto.NewListResponse(out, page), nil
}

// GetCustomer perfil de un cliente con sus vehículos (admin).
func (uc *CustomerUseCase) GetCustomer(ctx context.Context, profileID string) (*dto.CustomerDetailResponse, error) {
	p, u, err := uc.profile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	vehicles, err := uc.repos.Vehicles.ListByCustomer(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &dto.CustomerDetailResponse{
		CustomerProfileResponse: dto.FromCustomer(p, u, time.Now()),
		Vehicles:                dto.MapSlice(vehicles, dto.FromVehicle),
	}, nil
}

// visibleRequest carga la solicitud y oculta (ErrNotFound) las que el actor no puede ver.
func visibleRequest(ctx context.Context, repos repository.Repositories, actor dto.Actor, id string) (*entity.ServiceRequest, error) {
	req, err := repos.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil || !actor.CanAccessRequest(req) {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

// requestDetail solicitud con vehículo, historial y materiales.
func requestDetail(ctx context.Context, repos repository.Repositories, actor dto.Actor, id string) (*dto.ServiceRequestDetailResponse, error) {
	req, err := visibleRequest(ctx, repos, actor, id)
	if err != nil {
		return nil, err
	}
	out := &dto.ServiceRequestDetailResponse{ServiceRequestResponse: dto.FromServiceRequest(req)}
	if req.VehicleID != nil {
		v, err := repos.Vehicles.GetByID(ctx, *req.VehicleID)
		if err != nil {
			return nil, err
		}
		if v != nil {
			vr := dto.FromVehicle(v)
			out.Vehicle = &vr
		}
	}
	tracking, err := repos.Tracking.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	materials, err := repos.Materials.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	out.Tracking = dto.MapSlice(tracking, dto.FromTracking)
	out.Materials = dto.MapSlice(materials, dto.FromMaterialUsage)
	return out, nil
}

// materialCost suma de los consumos registrados.
func materialCost(usages []*entity.MaterialUsage) decimal.Decimal {
	total := decimal.Zero
	for _, u := range usages {
		total = total.Add(u.LineTotal())
	}
	return total.Round(2)
}
