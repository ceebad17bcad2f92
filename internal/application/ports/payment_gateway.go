package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// GatewayOrder orden creada en la pasarela de pagos.
type GatewayOrder struct {
	ID       string
	Amount   decimal.Decimal
	Currency string
	Receipt  string
}

// PaymentGateway puerto de salida hacia la pasarela (Razorpay o simulada).
type PaymentGateway interface {
	// CreateOrder registra una orden por amount (en unidades de la moneda, no en paise).
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*GatewayOrder, error)
	// VerifySignature valida la firma que el checkout devuelve al cliente.
	VerifySignature(orderID, paymentID, signature string) bool
	// KeyID clave pública que el front necesita para abrir el checkout.
	KeyID() string
}
