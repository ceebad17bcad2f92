package payment

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/servicecenter-api/internal/application/ports"
)

var _ ports.PaymentGateway = (*SimulatedGateway)(nil)

// SimulatedGatewaySecret secreto con el que firma la pasarela simulada.
const SimulatedGatewaySecret = "simulated-secret"

// SimulatedGateway pasarela de desarrollo: crea órdenes locales y valida firmas con
// SimulatedGatewaySecret, de modo que el flujo completo se puede probar sin Razorpay.
type SimulatedGateway struct{}

// NewSimulatedGateway construye la pasarela simulada.
func NewSimulatedGateway() *SimulatedGateway { return &SimulatedGateway{} }

func (SimulatedGateway) CreateOrder(_ context.Context, amount decimal.Decimal, currency, receipt string) (*ports.GatewayOrder, error) {
	return &ports.GatewayOrder{
		ID:       "order_sim_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14],
		Amount:   amount.Round(2),
		Currency: currency,
		Receipt:  receipt,
	}, nil
}

func (SimulatedGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return verifySignature(SimulatedGatewaySecret, orderID, paymentID, signature)
}

func (SimulatedGateway) KeyID() string { return "rzp_test_simulated" }
