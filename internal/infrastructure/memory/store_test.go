package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/servicecenter-api/internal/application/ports"
	"github.com/jhoicas/servicecenter-api/internal/domain"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
	"github.com/jhoicas/servicecenter-api/internal/infrastructure/memory"
)

func TestStoreRun_ErrorRestauraDatos(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	repos := s.Repositories()
	require.NoError(t, repos.Inventory.Create(ctx, &entity.InventoryItem{ID: "i1", Name: "Filtro", CurrentStock: 3, UnitPrice: decimal.NewFromInt(10)}))

	boom := errors.New("boom")
	err := s.Run(ctx, func(r repository.Repositories) error {
		require.NoError(t, r.Inventory.DecrementStock(ctx, "i1", 2))
		return boom
	})
	require.ErrorIs(t, err, boom)

	item, err := repos.Inventory.GetByID(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, 3, item.CurrentStock, "el rollback debe restaurar el stock")
}

func TestInventoryRepo_DecrementStock_Insuficiente(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	require.NoError(t, repos.Inventory.Create(ctx, &entity.InventoryItem{ID: "i1", Name: "Aceite", CurrentStock: 1}))

	err := repos.Inventory.DecrementStock(ctx, "i1", 2)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestInvoiceRepo_FindByRequestID_DevuelveLaPrimera(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	now := time.Now()
	require.NoError(t, repos.Invoices.Create(ctx, &entity.Invoice{ID: "a", RequestID: "r1", InvoiceNumber: "INV-1", IssuedAt: now}))
	require.NoError(t, repos.Invoices.Create(ctx, &entity.Invoice{ID: "b", RequestID: "r1", InvoiceNumber: "INV-2", IssuedAt: now.Add(time.Second)}))

	inv, err := repos.Invoices.FindByRequestID(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, "a", inv.ID)
}

func TestUserRepo_EmailDuplicado(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	require.NoError(t, repos.Users.Create(ctx, &entity.User{ID: "u1", Email: "Ana@Example.com"}))

	err := repos.Users.Create(ctx, &entity.User{ID: "u2", Email: "ana@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	u, err := repos.Users.GetByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "u1", u.ID)
}

func TestOTPStore_ExpiraYSweep(t *testing.T) {
	ctx := context.Background()
	s := memory.NewOTPStore(0)
	defer s.Close()

	require.NoError(t, s.Save(ctx, "a@b.com", ports.OTPEntry{Hash: "h"}, -time.Second))
	e, err := s.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Nil(t, e, "una entrada vencida no se devuelve")

	require.NoError(t, s.Save(ctx, "c@d.com", ports.OTPEntry{Hash: "h"}, -time.Second))
	require.NoError(t, s.Save(ctx, "e@f.com", ports.OTPEntry{Hash: "h"}, time.Minute))
	assert.Equal(t, 1, s.Sweep())

	n, err := s.IncrementAttempts(ctx, "E@F.com")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := memory.NewCache()
	require.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var out map[string]int
	ok, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, out["a"])

	require.NoError(t, c.Set(ctx, "old", 1, -time.Second))
	ok, err = c.Get(ctx, "old", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTrackingRepo_EmpateEnFecha_GanaLaUltimaInsertada(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, status := range []string{entity.StatusReceived, entity.StatusRepair, entity.StatusCompleted} {
		require.NoError(t, repos.Tracking.Create(ctx, &entity.ServiceTracking{
			ID: string(rune('a' + i)), RequestID: "r1", Status: status, RecordedAt: at,
		}))
	}

	latest, err := repos.Tracking.GetLatest(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Completed", latest.Status)

	list, err := repos.Tracking.ListByRequest(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{entity.StatusReceived, entity.StatusRepair, entity.StatusCompleted}, []string{list[0].Status, list[1].Status, list[2].Status})
}
