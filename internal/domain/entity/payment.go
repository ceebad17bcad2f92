package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Propósitos y estados de un pago.
const (
	PaymentPurposeInvoice    = "INVOICE"
	PaymentPurposeMembership = "MEMBERSHIP"

	PaymentCreated = "CREATED"
	PaymentPaid    = "PAID"
	PaymentFailed  = "FAILED"
)

// Payment registro de un cobro por pasarela (factura o membresía).
type Payment struct {
	ID               string
	UserID           string
	Purpose          string
	RequestID        *string
	InvoiceID        *string
	MembershipType   string
	Amount           decimal.Decimal
	Currency         string
	Status           string
	GatewayOrderID   string
	GatewayPaymentID string
	CreatedAt        time.Time
	PaidAt           *time.Time
}
