package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
)

func TestInventoryItem_StockStatus(t *testing.T) {
	cases := []struct {
		name    string
		stock   int
		reorder int
		want    string
	}{
		{"sin stock", 0, 5, entity.StockOut},
		{"en punto de reorden", 5, 5, entity.StockLow},
		{"bajo punto de reorden", 2, 5, entity.StockLow},
		{"stock suficiente", 6, 5, entity.StockIn},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := entity.InventoryItem{CurrentStock: tc.stock, ReorderLevel: tc.reorder}
			assert.Equal(t, tc.want, item.StockStatus())
		})
	}
}

func TestInventoryItem_TotalValue(t *testing.T) {
	item := entity.InventoryItem{CurrentStock: 3, UnitPrice: decimal.RequireFromString("199.99")}
	assert.Equal(t, "599.97", item.TotalValue().StringFixed(2))
}

func TestUser_EffectiveMembership(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 1, 0)

	assert.Equal(t, entity.MembershipStandard, (&entity.User{MembershipType: "STANDARD"}).EffectiveMembership(now))
	assert.Equal(t, entity.MembershipPremium, (&entity.User{MembershipType: "Premium", MembershipEnd: &future}).EffectiveMembership(now))
	assert.Equal(t, entity.MembershipStandard, (&entity.User{MembershipType: "PREMIUM", MembershipEnd: &past}).EffectiveMembership(now))
}

func TestParseServiceStatus(t *testing.T) {
	st, ok := entity.ParseServiceStatus("completed")
	assert.True(t, ok)
	assert.Equal(t, entity.StatusCompleted, st)

	_, ok = entity.ParseServiceStatus("Delivered")
	assert.False(t, ok)
}

func TestNormalizeVehicle(t *testing.T) {
	assert.Equal(t, "KA01AB1234", entity.NormalizeRegistration(" ka 01 ab 1234 "))
	assert.Equal(t, entity.VehicleBike, entity.NormalizeVehicleCategory("bike"))
	assert.Equal(t, entity.VehicleCar, entity.NormalizeVehicleCategory(""))
	assert.Equal(t, "", entity.NormalizeVehicleCategory("boat"))
}

func TestUser_ActivatePremium(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	u := &entity.User{MembershipType: entity.MembershipStandard}
	u.ActivatePremium(now, 365)
	assert.Equal(t, entity.MembershipPremium, u.MembershipType)
	assert.Equal(t, now, *u.MembershipStart)
	assert.Equal(t, now.AddDate(0, 0, 365), *u.MembershipEnd)

	// vigente: se extiende desde el fin actual y conserva el inicio
	later := now.AddDate(0, 1, 0)
	u.ActivatePremium(later, 30)
	assert.Equal(t, now, *u.MembershipStart)
	assert.Equal(t, now.AddDate(0, 0, 365+30), *u.MembershipEnd)

	// vencida: empieza de nuevo
	expired := now.AddDate(2, 0, 0)
	u.ActivatePremium(expired, 10)
	assert.Equal(t, expired, *u.MembershipStart)
	assert.Equal(t, expired.AddDate(0, 0, 10), *u.MembershipEnd)
}
