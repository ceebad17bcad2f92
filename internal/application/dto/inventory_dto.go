package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItemRequest alta/edición de un ítem.
type InventoryItemRequest struct {
	Name         string          `json:"name" validate:"required"`
	Category     string          `json:"category,omitempty"`
	CurrentStock int             `json:"current_stock" validate:"min=0"`
	UnitPrice    decimal.Decimal `json:"unit_price" validate:"min=0"`
	ReorderLevel int             `json:"reorder_level" validate:"min=0"`
}

// InventoryItemResponse ítem con su estado de stock derivado.
type InventoryItemResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	CurrentStock int             `json:"current_stock"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ReorderLevel int             `json:"reorder_level"`
	StockStatus  string          `json:"stock_status"` // OUT_OF_STOCK | LOW_STOCK | IN_STOCK
	TotalValue   decimal.Decimal `json:"total_value"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
