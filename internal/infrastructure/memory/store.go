// Package memory implementa los repositorios en memoria. Se usa cuando no hay
// base de datos configurada (modo desarrollo) y en los tests de casos de uso.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
)

var _ repository.TxRunner = (*Store)(nil)

// Store guarda todas las tablas. mu protege los datos; txMu serializa las transacciones.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data tables
}

type tables struct {
	users     map[string]entity.User
	customers map[string]entity.CustomerProfile
	advisors  map[string]entity.ServiceAdvisorProfile
	vehicles  map[string]entity.Vehicle
	requests  map[string]entity.ServiceRequest
	items     map[string]entity.InventoryItem
	tracking  []entity.ServiceTracking
	materials []entity.MaterialUsage
	invoices  []entity.Invoice
	payments  []entity.Payment
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{data: tables{
		users:     map[string]entity.User{},
		customers: map[string]entity.CustomerProfile{},
		advisors:  map[string]entity.ServiceAdvisorProfile{},
		vehicles:  map[string]entity.Vehicle{},
		requests:  map[string]entity.ServiceRequest{},
		items:     map[string]entity.InventoryItem{},
	}}
}

func (t tables) clone() tables {
	return tables{
		users:     maps.Clone(t.users),
		customers: maps.Clone(t.customers),
		advisors:  maps.Clone(t.advisors),
		vehicles:  maps.Clone(t.vehicles),
		requests:  maps.Clone(t.requests),
		items:     maps.Clone(t.items),
		tracking:  slices.Clone(t.tracking),
		materials: slices.Clone(t.materials),
		invoices:  slices.Clone(t.invoices),
		payments:  slices.Clone(t.payments),
	}
}

// Repositories devuelve los repositorios sobre este store.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Users:     &UserRepo{s: s},
		Customers: &CustomerProfileRepo{s: s},
		Advisors:  &AdvisorRepo{s: s},
		Vehicles:  &VehicleRepo{s: s},
		Requests:  &ServiceRequestRepo{s: s},
		Tracking:  &TrackingRepo{s: s},
		Materials: &MaterialUsageRepo{s: s},
		Inventory: &InventoryRepo{s: s},
		Invoices:  &InvoiceRepo{s: s},
		Payments:  &PaymentRepo{s: s},
	}
}

// Run ejecuta fn de forma serializada. Si fn falla se restaura la foto tomada al inicio.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(s.Repositories()); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// page aplica limit/offset con los mismos defaults que el adaptador PostgreSQL.
func page[T any](list []T, limit, offset int) []T {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return nil
	}
	end := min(offset+limit, len(list))
	return list[offset:end]
}

func ptr[T any](v T) *T { return &v }
