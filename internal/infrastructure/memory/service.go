package memory

import (
	"context"
	"slices"

	"github.com/jhoicas/servicecenter-api/internal/domain"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
)

var (
	_ repository.VehicleRepository        = (*VehicleRepo)(nil)
	_ repository.ServiceRequestRepository = (*ServiceRequestRepo)(nil)
	_ repository.TrackingRepository       = (*TrackingRepo)(nil)
	_ repository.MaterialUsageRepository  = (*MaterialUsageRepo)(nil)
)

// VehicleRepo vehículos en memoria.
type VehicleRepo struct{ s *Store }

func (r *VehicleRepo) registrationTaken(id, registration string) bool {
	for _, v := range r.s.data.vehicles {
		if v.ID != id && v.RegistrationNumber == registration {
			return true
		}
	}
	return false
}

func (r *VehicleRepo) Create(_ context.Context, v *entity.Vehicle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.registrationTaken(v.ID, v.RegistrationNumber) {
		return domain.ErrDuplicate
	}
	r.s.data.vehicles[v.ID] = *v
	return nil
}

func (r *VehicleRepo) GetByID(_ context.Context, id string) (*entity.Vehicle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	v, ok := r.s.data.vehicles[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r *VehicleRepo) GetByRegistration(_ context.Context, registration string) (*entity.Vehicle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, v := range r.s.data.vehicles {
		if v.RegistrationNumber == registration {
			return &v, nil
		}
	}
	return nil, nil
}

func (r *VehicleRepo) ListByCustomer(_ context.Context, customerID string) ([]*entity.Vehicle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Vehicle
	for _, v := range r.s.data.vehicles {
		if v.CustomerID == customerID {
			list = append(list, ptr(v))
		}
	}
	slices.SortFunc(list, func(a, b *entity.Vehicle) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return list, nil
}

func (r *VehicleRepo) Update(_ context.Context, v *entity.Vehicle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.vehicles[v.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.registrationTaken(v.ID, v.RegistrationNumber) {
		return domain.ErrDuplicate
	}
	r.s.data.vehicles[v.ID] = *v
	return nil
}

// Delete desvincula el vehículo de sus solicitudes (ON DELETE SET NULL).
func (r *VehicleRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.data.vehicles, id)
	for rid, req := range r.s.data.requests {
		if req.VehicleID != nil && *req.VehicleID == id {
			req.VehicleID = nil
			r.s.data.requests[rid] = req
		}
	}
	return nil
}

// ServiceRequestRepo solicitudes en memoria.
type ServiceRequestRepo struct{ s *Store }

func (r *ServiceRequestRepo) Create(_ context.Context, req *entity.ServiceRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.requests[req.ID] = *req
	return nil
}

func (r *ServiceRequestRepo) GetByID(_ context.Context, id string) (*entity.ServiceRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	req, ok := r.s.data.requests[id]
	if !ok {
		return nil, nil
	}
	return &req, nil
}

// GetByIDForUpdate el bloqueo lo da Store.Run, que serializa las transacciones.
func (r *ServiceRequestRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.ServiceRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *ServiceRequestRepo) Update(_ context.Context, req *entity.ServiceRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.requests[req.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.data.requests[req.ID] = *req
	return nil
}

func (r *ServiceRequestRepo) List(_ context.Context, f repository.ServiceRequestFilter) ([]*entity.ServiceRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.ServiceRequest
	for _, req := range r.s.data.requests {
		if f.CustomerID != "" && req.CustomerID != f.CustomerID {
			continue
		}
		if f.AdvisorID != "" && !req.IsAssignedTo(f.AdvisorID) {
			continue
		}
		if f.Status != "" && req.Status != f.Status {
			continue
		}
		list = append(list, ptr(req))
	}
	slices.SortFunc(list, func(a, b *entity.ServiceRequest) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return page(list, f.Limit, f.Offset), nil
}

func (r *ServiceRequestRepo) CountByStatus(_ context.Context) (map[string]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]int)
	for _, req := range r.s.data.requests {
		out[req.Status]++
	}
	return out, nil
}

// TrackingRepo historial de seguimiento en memoria (orden de inserción).
type TrackingRepo struct{ s *Store }

func (r *TrackingRepo) Create(_ context.Context, t *entity.ServiceTracking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.tracking = append(r.s.data.tracking, *t)
	return nil
}

// GetLatest ante empates en recorded_at gana la última fila insertada.
func (r *TrackingRepo) GetLatest(_ context.Context, requestID string) (*entity.ServiceTracking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var latest *entity.ServiceTracking
	for _, t := range r.s.data.tracking {
		if t.RequestID != requestID {
			continue
		}
		if latest == nil || !t.RecordedAt.Before(latest.RecordedAt) {
			latest = ptr(t)
		}
	}
	return latest, nil
}

func (r *TrackingRepo) ListByRequest(_ context.Context, requestID string) ([]*entity.ServiceTracking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.ServiceTracking
	for _, t := range r.s.data.tracking {
		if t.RequestID == requestID {
			list = append(list, ptr(t))
		}
	}
	slices.SortStableFunc(list, func(a, b *entity.ServiceTracking) int { return a.RecordedAt.Compare(b.RecordedAt) })
	return list, nil
}

// MaterialUsageRepo consumos de material en memoria.
type MaterialUsageRepo struct{ s *Store }

func (r *MaterialUsageRepo) Create(_ context.Context, m *entity.MaterialUsage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.materials = append(r.s.data.materials, *m)
	return nil
}

func (r *MaterialUsageRepo) ListByRequest(_ context.Context, requestID string) ([]*entity.MaterialUsage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.MaterialUsage
	for _, m := range r.s.data.materials {
		if m.RequestID == requestID {
			list = append(list, ptr(m))
		}
	}
	return list, nil
}
