package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/servicecenter-api/internal/domain/billing"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalculate_SinMembresia(t *testing.T) {
	bill := billing.Calculate(billing.Input{
		ServiceType: "Brake Repair",
		Materials: []billing.MaterialLine{
			{Name: "Brake Pad", Quantity: 2, UnitPrice: dec("750.00")},
			{Name: "Brake Fluid", Quantity: 1, UnitPrice: dec("320.50")},
		},
		LaborMinutes: 90,
		LaborCost:    dec("900"),
		Membership:   "STANDARD",
	}, billing.DefaultRates())

	assert.Equal(t, "1820.50", bill.MaterialsTotal.StringFixed(2))
	assert.Equal(t, "900.00", bill.LaborTotal.StringFixed(2))
	assert.True(t, bill.Discount.IsZero())
	assert.Equal(t, "2720.50", bill.Subtotal.StringFixed(2))
	assert.Equal(t, "489.69", bill.Tax.StringFixed(2))
	assert.Equal(t, "3210.19", bill.GrandTotal.StringFixed(2))
	assert.Equal(t, 90, bill.LaborMinutes)
	assert.False(t, bill.UsedDefaultItem)
}

func TestCalculate_PremiumSinDistinguirMayusculas(t *testing.T) {
	for _, m := range []string{"Premium", "PREMIUM", "premium"} {
		t.Run(m, func(t *testing.T) {
			bill := billing.Calculate(billing.Input{
				ServiceType: "Oil Change",
				Materials:   []billing.MaterialLine{{Name: "Engine Oil", Quantity: 1, UnitPrice: dec("1000")}},
				LaborCost:   dec("500"),
				Membership:  m,
			}, billing.DefaultRates())

			assert.Equal(t, "150.00", bill.Discount.StringFixed(2))
			assert.Equal(t, "1350.00", bill.Subtotal.StringFixed(2))
			assert.Equal(t, "243.00", bill.Tax.StringFixed(2))
			assert.Equal(t, "1593.00", bill.GrandTotal.StringFixed(2))
		})
	}
}

func TestCalculate_RedondeoHalfUp(t *testing.T) {
	// 10.125 redondea a 10.13 (half-up); el impuesto 2.2734 baja a 2.27
	bill := billing.Calculate(billing.Input{
		ServiceType: "Wash",
		Materials:   []billing.MaterialLine{{Name: "Shampoo", Quantity: 1, UnitPrice: dec("10.125")}},
		LaborCost:   dec("2.5"),
	}, billing.DefaultRates())

	assert.Equal(t, "10.13", bill.MaterialsTotal.StringFixed(2))
	assert.Equal(t, "12.63", bill.Subtotal.StringFixed(2))
	assert.Equal(t, "2.27", bill.Tax.StringFixed(2)) // 2.2734
	assert.Equal(t, "14.90", bill.GrandTotal.StringFixed(2))
}

func TestCalculate_ItemPorDefectoSoloParaGeneralService(t *testing.T) {
	bill := billing.Calculate(billing.Input{ServiceType: "general service"}, billing.DefaultRates())
	require.Len(t, bill.Materials, 1)
	assert.True(t, bill.UsedDefaultItem)
	assert.Equal(t, billing.DefaultMaterialName, bill.Materials[0].Name)
	assert.Equal(t, "500.00", bill.MaterialsTotal.StringFixed(2))
	assert.Equal(t, "590.00", bill.GrandTotal.StringFixed(2))

	other := billing.Calculate(billing.Input{ServiceType: "Engine Repair"}, billing.DefaultRates())
	assert.Empty(t, other.Materials)
	assert.True(t, other.GrandTotal.IsZero())
}

func TestLaborCostFromMinutes(t *testing.T) {
	assert.Equal(t, "450.00", billing.LaborCostFromMinutes(45, dec("600")).StringFixed(2))
	assert.Equal(t, "0.00", billing.LaborCostFromMinutes(0, dec("600")).StringFixed(2))
	assert.Equal(t, "10.83", billing.LaborCostFromMinutes(1, dec("650")).StringFixed(2))
}
