// Package billing contiene el cálculo de la factura de un servicio completado
// (servicio de dominio puro, sin acceso a datos).
package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Línea de respaldo cuando un "General Service" no registró materiales.
const (
	DefaultServiceType  = "General Service"
	DefaultMaterialName = "Standard Service Kit"
)

var defaultMaterialPrice = decimal.NewFromInt(500)

// Rates tasas aplicadas al cálculo.
type Rates struct {
	GST             decimal.Decimal // 0.18
	PremiumDiscount decimal.Decimal // 0.10
}

// DefaultRates GST 18% y 10% de descuento PREMIUM.
func DefaultRates() Rates {
	return Rates{
		GST:             decimal.RequireFromString("0.18"),
		PremiumDiscount: decimal.RequireFromString("0.10"),
	}
}

// MaterialLine material consumido en el servicio.
type MaterialLine struct {
	ItemID    string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Total cantidad * precio unitario, redondeado a 2 decimales.
func (l MaterialLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

// Input datos de entrada del cálculo.
type Input struct {
	ServiceType  string
	Materials    []MaterialLine
	LaborMinutes int             // de la fila de tracking más reciente
	LaborCost    decimal.Decimal // de la fila de tracking más reciente
	Membership   string          // se compara sin distinguir mayúsculas con "PREMIUM"
}

// Bill resultado del cálculo. Todos los montos van redondeados half-up a 2 decimales.
type Bill struct {
	Materials       []MaterialLine
	UsedDefaultItem bool
	LaborMinutes    int
	MaterialsTotal  decimal.Decimal
	LaborTotal      decimal.Decimal
	Discount        decimal.Decimal
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	GrandTotal      decimal.Decimal
}

// Calculate arma la factura:
//
//	materiales + mano de obra - descuento PREMIUM = subtotal; subtotal * GST = impuesto; subtotal + impuesto = total.
func Calculate(in Input, rates Rates) Bill {
	lines := in.Materials
	usedDefault := false
	if len(lines) == 0 && strings.EqualFold(strings.TrimSpace(in.ServiceType), DefaultServiceType) {
		lines = []MaterialLine{{Name: DefaultMaterialName, Quantity: 1, UnitPrice: defaultMaterialPrice}}
		usedDefault = true
	}

	materials := decimal.Zero
	for _, l := range lines {
		materials = materials.Add(l.Total())
	}
	materials = round(materials)
	labor := round(in.LaborCost)

	discount := decimal.Zero
	if IsPremium(in.Membership) {
		discount = round(materials.Add(labor).Mul(rates.PremiumDiscount))
	}
	subtotal := round(materials.Add(labor).Sub(discount))
	tax := round(subtotal.Mul(rates.GST))

	return Bill{
		Materials:       lines,
		UsedDefaultItem: usedDefault,
		LaborMinutes:    in.LaborMinutes,
		MaterialsTotal:  materials,
		LaborTotal:      labor,
		Discount:        discount,
		Subtotal:        subtotal,
		Tax:             tax,
		GrandTotal:      round(subtotal.Add(tax)),
	}
}

// LaborCostFromMinutes costo de mano de obra a partir de minutos y tarifa por hora.
func LaborCostFromMinutes(minutes int, ratePerHour decimal.Decimal) decimal.Decimal {
	if minutes <= 0 {
		return decimal.Zero
	}
	return round(ratePerHour.Mul(decimal.NewFromInt(int64(minutes))).Div(decimal.NewFromInt(60)))
}

// IsPremium compara la membresía sin distinguir mayúsculas ("Premium", "PREMIUM").
func IsPremium(membership string) bool {
	return strings.EqualFold(strings.TrimSpace(membership), "PREMIUM")
}

// round half-up a 2 decimales (shopspring redondea alejándose de cero en .5, montos siempre >= 0).
func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
