package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de stock derivados (no se persisten).
const (
	StockOut = "OUT_OF_STOCK"
	StockLow = "LOW_STOCK"
	StockIn  = "IN_STOCK"
)

// InventoryItem repuesto o insumo del taller.
type InventoryItem struct {
	ID           string
	Name         string
	Category     string
	CurrentStock int
	UnitPrice    decimal.Decimal
	ReorderLevel int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StockStatus OUT_OF_STOCK con 0 unidades, LOW_STOCK en o bajo el punto de reorden, IN_STOCK en otro caso.
func (i *InventoryItem) StockStatus() string {
	switch {
	case i.CurrentStock <= 0:
		return StockOut
	case i.CurrentStock <= i.ReorderLevel:
		return StockLow
	default:
		return StockIn
	}
}

// TotalValue valor del stock a precio unitario.
func (i *InventoryItem) TotalValue() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.CurrentStock))).Round(2)
}
