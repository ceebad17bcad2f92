package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/servicecenter-api/internal/application/analytics"
	"github.com/jhoicas/servicecenter-api/internal/application/apptest"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/infrastructure/memory"
	"github.com/jhoicas/servicecenter-api/pkg/logger"
)

func TestGetSummary_AgregaYCachea(t *testing.T) {
	f := apptest.New(t)
	ctx := context.Background()
	a, _ := f.Customer("Asha", "asha@example.com")
	f.Customer("Ravi", "ravi@example.com")
	f.Advisor("Vikram", "vikram@example.com")
	f.Request(a, "", "Wash", entity.StatusReceived)
	done := f.Request(a, "", "Brake Repair", entity.StatusCompleted)
	f.Item("Brake Pad", 1, "750") // reorden 2 -> stock bajo
	f.Item("Engine Oil", 10, "450")

	now := time.Now().UTC()
	require.NoError(t, f.Repos.Invoices.Create(ctx, &entity.Invoice{
		ID: "inv-1", RequestID: done.ID, CustomerID: a.UserID, InvoiceNumber: "INV-1",
		GrandTotal: decimal.RequireFromString("1180"), Status: entity.InvoicePaid, IssuedAt: now, PaidAt: &now,
	}))
	require.NoError(t, f.Repos.Invoices.Create(ctx, &entity.Invoice{
		ID: "inv-2", RequestID: done.ID, CustomerID: a.UserID, InvoiceNumber: "INV-2",
		GrandTotal: decimal.RequireFromString("590"), Status: entity.InvoiceUnpaid, IssuedAt: now,
	}))

	uc := analytics.NewDashboardUseCase(f.Repos, memory.NewCache(), time.Minute, logger.NewNop())
	sum, err := uc.GetSummary(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.TotalRequests)
	assert.Equal(t, 1, sum.RequestsByStatus[entity.StatusReceived])
	assert.Equal(t, 0, sum.RequestsByStatus[entity.StatusRepair])
	assert.Equal(t, 2, sum.TotalCustomers)
	assert.Equal(t, 1, sum.ActiveAdvisors)
	assert.Equal(t, 1, sum.LowStockItems)
	assert.Equal(t, "1180.00", sum.RevenueThisMonth.StringFixed(2))
	assert.Equal(t, 1, sum.PaidInvoicesThisMonth)
	assert.Equal(t, 1, sum.UnpaidInvoices)
	assert.Equal(t, "590.00", sum.UnpaidAmount.StringFixed(2))

	// el segundo resumen sale de la caché aunque cambien los datos
	f.Request(a, "", "Oil Change", entity.StatusDiagnosis)
	cached, err := uc.GetSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, cached.TotalRequests)

	uc.Invalidate(ctx)
	fresh, err := uc.GetSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, fresh.TotalRequests)
}
