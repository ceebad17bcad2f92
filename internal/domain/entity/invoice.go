package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una factura.
const (
	InvoiceUnpaid = "UNPAID"
	InvoicePaid   = "PAID"
)

// InvoiceLine material facturado, copiado al emitir la factura.
type InvoiceLine struct {
	ItemID    string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Total cantidad * precio unitario, redondeado a 2 decimales.
func (l InvoiceLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

// Invoice factura de un servicio completado. Se relaciona con la solicitud por RequestID
// (sin FK de ORM); puede haber más de una fila por solicitud y se toma la primera.
// Lines, LaborMinutes y Membership son la foto del momento de emisión: la reimpresión no
// vuelve a leer materiales ni membresía.
type Invoice struct {
	ID             string
	RequestID      string
	CustomerID     string // User.ID del cliente
	InvoiceNumber  string
	MaterialsTotal decimal.Decimal
	LaborTotal     decimal.Decimal
	Discount       decimal.Decimal
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	GrandTotal     decimal.Decimal
	Status         string
	IssuedAt       time.Time
	PaidAt         *time.Time
	Lines          []InvoiceLine
	LaborMinutes   int
	Membership     string
}

// IsPaid indica si la factura ya fue pagada.
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoicePaid
}
