// Package analytics contiene el resumen del panel de administración.
package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/servicecenter-api/internal/application/dto"
	"github.com/jhoicas/servicecenter-api/internal/application/ports"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
	"github.com/jhoicas/servicecenter-api/pkg/logger"
)

const dashboardCacheKey = "dashboard:summary"

// DashboardUseCase genera el resumen del taller: solicitudes por estado, clientes,
// asesores activos, stock bajo y facturación del mes en curso.
//
// El resultado se guarda en caché durante ttl (es la única lectura cacheada de la API).
type DashboardUseCase struct {
	repos repository.Repositories
	cache ports.Cache
	ttl   time.Duration
	log   *logger.Logger
	now   func() time.Time
}

// NewDashboardUseCase construye el caso de uso. ttl <= 0 desactiva la caché.
func NewDashboardUseCase(repos repository.Repositories, cache ports.Cache, ttl time.Duration, log *logger.Logger) *DashboardUseCase {
	return &DashboardUseCase{repos: repos, cache: cache, ttl: ttl, log: log.Component("dashboard"), now: time.Now}
}

// GetSummary devuelve el resumen, desde caché si está vigente.
//
// Las consultas corren en paralelo:
//  1. CountByStatus            → RequestsByStatus + TotalRequests
//  2. CountByRole(customer)    → TotalCustomers
//  3. CountByRole(advisor)     → ActiveAdvisors
//  4. ListLowStock             → LowStockItems
//  5. Invoices.Summary(mes)    → facturación
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardResponse, error) {
	if uc.ttl > 0 {
		var cached dto.DashboardResponse
		hit, err := uc.cache.Get(ctx, dashboardCacheKey, &cached)
		if err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo leer la caché del dashboard")
		}
		if hit {
			return &cached, nil
		}
	}

	now := uc.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	var (
		out      = &dto.DashboardResponse{GeneratedAt: now}
		byStatus map[string]int
		lowStock []*entity.InventoryItem
		invoices *repository.InvoiceSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		byStatus, err = uc.repos.Requests.CountByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.TotalCustomers, err = uc.repos.Users.CountByRole(gctx, entity.RoleCustomer, false)
		return err
	})
	g.Go(func() (err error) {
		out.ActiveAdvisors, err = uc.repos.Users.CountByRole(gctx, entity.RoleServiceAdvisor, true)
		return err
	})
	g.Go(func() (err error) {
		lowStock, err = uc.repos.Inventory.ListLowStock(gctx)
		return err
	})
	g.Go(func() (err error) {
		invoices, err = uc.repos.Invoices.Summary(gctx, monthStart, monthEnd)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	out.RequestsByStatus = make(map[string]int, len(entity.ServiceStatuses()))
	for _, st := range entity.ServiceStatuses() {
		out.RequestsByStatus[st] = byStatus[st]
		out.TotalRequests += byStatus[st]
	}
	out.LowStockItems = len(lowStock)
	out.RevenueThisMonth = invoices.PaidRevenue.Round(2)
	out.PaidInvoicesThisMonth = invoices.PaidCount
	out.UnpaidInvoices = invoices.UnpaidCount
	out.UnpaidAmount = invoices.UnpaidAmount.Round(2)

	if uc.ttl > 0 {
		if err := uc.cache.Set(ctx, dashboardCacheKey, out, uc.ttl); err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo guardar el dashboard en caché")
		}
	}
	return out, nil
}

// Invalidate descarta el resumen cacheado.
func (uc *DashboardUseCase) Invalidate(ctx context.Context) {
	if err := uc.cache.Delete(ctx, dashboardCacheKey); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo invalidar la caché del dashboard")
	}
}
