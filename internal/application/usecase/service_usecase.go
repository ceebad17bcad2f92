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
	"github.com/jhoicas/servicecenter-api/internal/domain/billing"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
	"github.com/jhoicas/servicecenter-api/pkg/logger"
)

// ServiceUseCase flujo de trabajo del asesor sobre las solicitudes (estado, mano de obra,
// materiales, entrega) y la gestión de solicitudes del administrador.
type ServiceUseCase struct {
	repos     repository.Repositories
	tx        repository.TxRunner
	laborRate decimal.Decimal // por hora
	log       *logger.Logger
}

// NewServiceUseCase construye el caso de uso.
func NewServiceUseCase(repos repository.Repositories, tx repository.TxRunner, laborRate decimal.Decimal, log *logger.Logger) *ServiceUseCase {
	return &ServiceUseCase{repos: repos, tx: tx, laborRate: laborRate, log: log.Component("service")}
}

// ListAssigned solicitudes asignadas al asesor, con filtro opcional de estado.
func (uc *ServiceUseCase) ListAssigned(ctx context.Context, actor dto.Actor, status string, page dto.PageRequest) (dto.ListResponse[dto.ServiceRequestResponse], error) {
	return uc.list(ctx, repository.ServiceRequestFilter{AdvisorID: actor.ProfileID}, status, page)
}

// ListRequests listado de administración (filtros opcionales de estado, asesor y cliente).
func (uc *ServiceUseCase) ListRequests(ctx context.Context, filter repository.ServiceRequestFilter, page dto.PageRequest) (dto.ListResponse[dto.ServiceRequestResponse], error) {
	status := filter.Status
	filter.Status = ""
	return uc.list(ctx, filter, status, page)
}

func (uc *ServiceUseCase) list(ctx context.Context, filter repository.ServiceRequestFilter, status string, page dto.PageRequest) (dto.ListResponse[dto.ServiceRequestResponse], error) {
	page.DefaultPage()
	if status != "" {
		st, ok := entity.ParseServiceStatus(status)
		if !ok {
			return dto.ListResponse[dto.ServiceRequestResponse]{}, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
		}
		filter.Status = st
	}
	filter.Limit, filter.Offset = page.Limit, page.Offset
	list, err := uc.repos.Requests.List(ctx, filter)
	if err != nil {
		return dto.ListResponse[dto.ServiceRequestResponse]{}, err
	}
	return dto.NewListResponse(dto.MapSlice(list, dto.FromServiceRequest), page), nil
}

// GetRequest detalle de una solicitud asignada (o cualquiera para admin).
func (uc *ServiceUseCase) GetRequest(ctx context.Context, actor dto.Actor, id string) (*dto.ServiceRequestDetailResponse, error) {
	return requestDetail(ctx, uc.repos, actor, id)
}

// appendTracking agrega una foto del avance con la mano de obra y el costo de materiales vigentes.
func appendTracking(ctx context.Context, repos repository.Repositories, actor dto.Actor, req *entity.ServiceRequest,
	minutes int, labor decimal.Decimal, notes string, now time.Time) (*entity.ServiceTracking, error) {
	usages, err := repos.Materials.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	advisorID := ""
	switch {
	case actor.Role == entity.RoleServiceAdvisor:
		advisorID = actor.ProfileID
	case req.AdvisorID != nil:
		advisorID = *req.AdvisorID
	}
	t := &entity.ServiceTracking{
		ID:           uuid.New().String(),
		RequestID:    req.ID,
		AdvisorID:    advisorID,
		Status:       req.Status,
		LaborMinutes: minutes,
		LaborCost:    labor.Round(2),
		MaterialCost: materialCost(usages),
		Notes:        notes,
		RecordedAt:   now,
	}
	if err := repos.Tracking.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("service: registrar seguimiento: %w", err)
	}
	return t, nil
}

// latestLabor mano de obra de la última foto (cero si no hay historial).
func latestLabor(ctx context.Context, repos repository.Repositories, requestID string) (int, decimal.Decimal, error) {
	latest, err := repos.Tracking.GetLatest(ctx, requestID)
	if err != nil {
		return 0, decimal.Zero, err
	}
	if latest == nil {
		return 0, decimal.Zero, nil
	}
	return latest.LaborMinutes, latest.LaborCost, nil
}

func lockRequest(ctx context.Context, repos repository.Repositories, actor dto.Actor, id string) (*entity.ServiceRequest, error) {
	req, err := repos.Requests.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil || !actor.CanAccessRequest(req) {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

// UpdateStatus cambia el estado a cualquiera de los válidos (sin máquina de estados) y
// agrega una foto de seguimiento que conserva la mano de obra vigente.
func (uc *ServiceUseCase) UpdateStatus(ctx context.Context, actor dto.Actor, id string, in dto.UpdateStatusRequest) (*dto.ServiceRequestResponse, error) {
	status, ok := entity.ParseServiceStatus(in.Status)
	if !ok {
		return nil, fmt.Errorf("%w: estado %q (válidos: %s)", domain.ErrInvalidInput, in.Status, strings.Join(entity.ServiceStatuses(), ", "))
	}
	var req *entity.ServiceRequest
	err := uc.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		req, err = lockRequest(ctx, repos, actor, id)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		prev := req.Status
		req.Status = status
		req.UpdatedAt = now
		if err := repos.Requests.Update(ctx, req); err != nil {
			return err
		}
		minutes, labor, err := latestLabor(ctx, repos, req.ID)
		if err != nil {
			return err
		}
		notes := strings.TrimSpace(in.Notes)
		if notes == "" {
			notes = fmt.Sprintf("Estado: %s -> %s", prev, status)
		}
		_, err = appendTracking(ctx, repos, actor, req, minutes, labor, notes, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("request_id", id).Str("status", status).Msg("estado de solicitud actualizado")
	out := dto.FromServiceRequest(req)
	return &out, nil
}

// RecordLabor registra la mano de obra total de la solicitud. Sin costo (o costo cero) se
// calcula con la tarifa por hora. No se admite sobre solicitudes Completed.
func (uc *ServiceUseCase) RecordLabor(ctx context.Context, actor dto.Actor, id string, in dto.RecordLaborRequest) (*dto.TrackingResponse, error) {
	if in.Minutes < 0 {
		return nil, fmt.Errorf("%w: minutes no puede ser negativo", domain.ErrInvalidInput)
	}
	cost := decimal.Zero
	if in.Cost != nil {
		if in.Cost.IsNegative() {
			return nil, fmt.Errorf("%w: cost no puede ser negativo", domain.ErrInvalidInput)
		}
		cost = *in.Cost
	}
	if cost.IsZero() {
		cost = billing.LaborCostFromMinutes(in.Minutes, uc.laborRate)
	}

	var t *entity.ServiceTracking
	err := uc.tx.Run(ctx, func(repos repository.Repositories) error {
		req, err := lockRequest(ctx, repos, actor, id)
		if err != nil {
			return err
		}
		if req.IsCompleted() {
			return fmt.Errorf("%w: la solicitud ya está completada", domain.ErrInvalidState)
		}
		notes := strings.TrimSpace(in.Notes)
		if notes == "" {
			notes = fmt.Sprintf("Mano de obra: %d min", in.Minutes)
		}
		t, err = appendTracking(ctx, repos, actor, req, in.Minutes, cost, notes, time.Now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}
	out := dto.FromTracking(t)
	return &out, nil
}

// AddMaterial consume stock de un ítem para la solicitud: bloquea el ítem, descuenta la
// cantidad (ErrInsufficientStock si no alcanza, sin modificar nada), registra el consumo
// con el precio vigente y agrega una foto de seguimiento.
func (uc *ServiceUseCase) AddMaterial(ctx context.Context, actor dto.Actor, id string, in dto.AddMaterialRequest) (*dto.MaterialUsageResponse, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity debe ser mayor a cero", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.ItemID) == "" {
		return nil, fmt.Errorf("%w: item_id es obligatorio", domain.ErrInvalidInput)
	}

	var usage *entity.MaterialUsage
	err := uc.tx.Run(ctx, func(repos repository.Repositories) error {
		req, err := lockRequest(ctx, repos, actor, id)
		if err != nil {
			return err
		}
		if req.IsCompleted() {
			return fmt.Errorf("%w: la solicitud ya está completada", domain.ErrInvalidState)
		}
		item, err := repos.Inventory.GetByIDForUpdate(ctx, in.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("ítem %s: %w", in.ItemID, domain.ErrNotFound)
		}
		if item.CurrentStock < in.Quantity {
			return fmt.Errorf("%w: %s tiene %d, se pidieron %d", domain.ErrInsufficientStock, item.Name, item.CurrentStock, in.Quantity)
		}
		if err := repos.Inventory.DecrementStock(ctx, item.ID, in.Quantity); err != nil {
			return err
		}

		now := time.Now().UTC()
		usage = &entity.MaterialUsage{
			ID:        uuid.New().String(),
			RequestID: req.ID,
			ItemID:    item.ID,
			ItemName:  item.Name,
			Quantity:  in.Quantity,
			UnitPrice: item.UnitPrice,
			UsedAt:    now,
		}
		if err := repos.Materials.Create(ctx, usage); err != nil {
			return fmt.Errorf("service: registrar material: %w", err)
		}
		minutes, labor, err := latestLabor(ctx, repos, req.ID)
		if err != nil {
			return err
		}
		_, err = appendTracking(ctx, repos, actor, req, minutes, labor, fmt.Sprintf("Material: %s x%d", item.Name, in.Quantity), now)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("request_id", id).Str("item_id", usage.ItemID).Int("quantity", usage.Quantity).Msg("material consumido")
	out := dto.FromMaterialUsage(usage)
	return &out, nil
}

// ListMaterials materiales consumidos por una solicitud visible para el actor.
func (uc *ServiceUseCase) ListMaterials(ctx context.Context, actor dto.Actor, id string) ([]dto.MaterialUsageResponse, error) {
	if _, err := visibleRequest(ctx, uc.repos, actor, id); err != nil {
		return nil, err
	}
	list, err := uc.repos.Materials.ListByRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.MapSlice(list, dto.FromMaterialUsage), nil
}

// ListTracking historial de seguimiento.
func (uc *ServiceUseCase) ListTracking(ctx context.Context, actor dto.Actor, id string) ([]dto.TrackingResponse, error) {
	if _, err := visibleRequest(ctx, uc.repos, actor, id); err != nil {
		return nil, err
	}
	list, err := uc.repos.Tracking.ListByRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.MapSlice(list, dto.FromTracking), nil
}

// MarkDelivered registra la entrega del vehículo. Requiere estado Completed y factura emitida.
// Entregar dos veces devuelve la solicitud sin cambios.
func (uc *ServiceUseCase) MarkDelivered(ctx context.Context, actor dto.Actor, id string) (*dto.ServiceRequestResponse, error) {
	var req *entity.ServiceRequest
	err := uc.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		req, err = lockRequest(ctx, repos, actor, id)
		if err != nil {
			return err
		}
		if !req.IsCompleted() {
			return fmt.Errorf("%w: estado actual %s", domain.ErrInvalidState, req.Status)
		}
		if req.DeliveredAt != nil {
			return nil
		}
		inv, err := repos.Invoices.FindByRequestID(ctx, req.ID)
		if err != nil {
			return err
		}
		if inv == nil {
			return fmt.Errorf("%w: la solicitud no tiene factura", domain.ErrConflict)
		}
		now := time.Now().UTC()
		req.DeliveredAt = &now
		req.UpdatedAt = now
		if err := repos.Requests.Update(ctx, req); err != nil {
			return err
		}
		minutes, labor, err := latestLabor(ctx, repos, req.ID)
		if err != nil {
			return err
		}
		_, err = appendTracking(ctx, repos, actor, req, minutes, labor, "Vehículo entregado", now)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := dto.FromServiceRequest(req)
	return &out, nil
}

// AssignAdvisor asigna (o reasigna) un asesor activo a la solicitud (admin).
func (uc *ServiceUseCase) AssignAdvisor(ctx context.Context, id string, in dto.AssignAdvisorRequest) (*dto.ServiceRequestResponse, error) {
	advisor, err := uc.repos.Advisors.GetByID(ctx, in.AdvisorID)
	if err != nil {
		return nil, err
	}
	if advisor == nil {
		return nil, fmt.Errorf("%w: asesor %s no existe", domain.ErrInvalidInput, in.AdvisorID)
	}
	u, err := uc.repos.Users.GetByID(ctx, advisor.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.Active {
		return nil, fmt.Errorf("%w: el asesor está inactivo", domain.ErrInvalidInput)
	}

	var req *entity.ServiceRequest
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		req, err = repos.Requests.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		req.AdvisorID = &advisor.ID
		req.UpdatedAt = time.Now().UTC()
		return repos.Requests.Update(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("request_id", id).Str("advisor_id", advisor.ID).Msg("asesor asignado")
	out := dto.FromServiceRequest(req)
	return &out, nil
}
