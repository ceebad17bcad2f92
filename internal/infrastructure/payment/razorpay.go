// Package payment adaptadores de la pasarela de pagos (Razorpay y simulada).
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/servicecenter-api/internal/application/ports"
	"github.com/jhoicas/servicecenter-api/pkg/config"
)

// Verificar en tiempo de compilación que RazorpayClient implementa PaymentGateway.
var _ ports.PaymentGateway = (*RazorpayClient)(nil)

// RazorpayClient adaptador sobre el SDK oficial de Razorpay (Orders API).
type RazorpayClient struct {
	keyID     string
	keySecret string
	client    *razorpay.Client
}

// NewRazorpayClient construye el adaptador. BaseURL vacío usa la API pública.
func NewRazorpayClient(cfg config.RazorpayConfig) *RazorpayClient {
	client := razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	if base := strings.TrimRight(cfg.BaseURL, "/"); base != "" {
		client.Order.Request.BaseURL = base
	}
	client.Order.Request.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	return &RazorpayClient{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		client:    client,
	}
}

// ToPaise convierte un monto en rupias a la unidad mínima (redondeo half-up).
func ToPaise(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// CreateOrder crea la orden en Razorpay (POST /v1/orders).
func (c *RazorpayClient) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*ports.GatewayOrder, error) {
	if c.keyID == "" || c.keySecret == "" {
		return nil, fmt.Errorf("razorpay: RAZORPAY_KEY_ID/RAZORPAY_KEY_SECRET no configurados")
	}
	// El SDK no recibe context; al menos no se llama con uno ya cancelado.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("razorpay: timeout o cancelación: %w", err)
	}

	body, err := c.client.Order.Create(map[string]interface{}{
		"amount":   ToPaise(amount),
		"currency": currency,
		"receipt":  receipt,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay: crear orden: %w", err)
	}

	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay: respuesta sin id de orden")
	}
	order := &ports.GatewayOrder{ID: id, Amount: amount, Currency: currency, Receipt: receipt}
	if paise, ok := body["amount"].(float64); ok {
		order.Amount = decimal.New(int64(paise), -2)
	}
	if cur, ok := body["currency"].(string); ok && cur != "" {
		order.Currency = cur
	}
	if rec, ok := body["receipt"].(string); ok && rec != "" {
		order.Receipt = rec
	}
	return order, nil
}

// VerifySignature valida la firma HMAC-SHA256 de "order_id|payment_id" devuelta por el checkout.
func (c *RazorpayClient) VerifySignature(orderID, paymentID, signature string) bool {
	return verifySignature(c.keySecret, orderID, paymentID, signature)
}

// KeyID clave pública para el checkout.
func (c *RazorpayClient) KeyID() string { return c.keyID }

// Sign calcula la firma que Razorpay devuelve al checkout.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func verifySignature(secret, orderID, paymentID, signature string) bool {
	if secret == "" || orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	return utils.VerifyPaymentSignature(map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}, strings.ToLower(signature), secret)
}
