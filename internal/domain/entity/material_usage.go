package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialUsage consumo de un ítem de inventario en una solicitud de servicio.
// UnitPrice es el precio del ítem al momento del consumo.
type MaterialUsage struct {
	ID        string
	RequestID string
	ItemID    string
	ItemName  string
	Quantity  int
	UnitPrice decimal.Decimal
	UsedAt    time.Time
}

// LineTotal cantidad * precio unitario.
func (m *MaterialUsage) LineTotal() decimal.Decimal {
	return m.UnitPrice.Mul(decimal.NewFromInt(int64(m.Quantity)))
}
