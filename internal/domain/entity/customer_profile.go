package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerProfile datos de dirección y contabilidad de membresía de un cliente.
// Es dueño de los vehículos del cliente.
type CustomerProfile struct {
	ID         string
	UserID     string
	Address    string
	City       string
	PostalCode string
	TotalSpent decimal.Decimal // suma de facturas pagadas
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
