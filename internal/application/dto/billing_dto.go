package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillLineResponse línea de material de la factura.
type BillLineResponse struct {
	ItemID    string          `json:"item_id,omitempty"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// BillResponse cálculo detallado de la factura de un servicio completado.
type BillResponse struct {
	RequestID       string             `json:"request_id"`
	ServiceType     string             `json:"service_type"`
	Membership      string             `json:"membership"`
	Materials       []BillLineResponse `json:"materials"`
	UsedDefaultItem bool               `json:"used_default_item"`
	LaborMinutes    int                `json:"labor_minutes"`
	MaterialsTotal  decimal.Decimal    `json:"materials_total"`
	LaborTotal      decimal.Decimal    `json:"labor_total"`
	Discount        decimal.Decimal    `json:"discount"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	Tax             decimal.Decimal    `json:"tax"`
	GrandTotal      decimal.Decimal    `json:"grand_total"`
	GSTRate         decimal.Decimal    `json:"gst_rate"`
}

// InvoiceResponse salida de una factura.
type InvoiceResponse struct {
	ID             string             `json:"id"`
	RequestID      string             `json:"request_id"`
	CustomerID     string             `json:"customer_id"`
	InvoiceNumber  string             `json:"invoice_number"`
	MaterialsTotal decimal.Decimal    `json:"materials_total"`
	LaborTotal     decimal.Decimal    `json:"labor_total"`
	Discount       decimal.Decimal    `json:"discount"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	Tax            decimal.Decimal    `json:"tax"`
	GrandTotal     decimal.Decimal    `json:"grand_total"`
	Status         string             `json:"status"`
	IssuedAt       time.Time          `json:"issued_at"`
	PaidAt         *time.Time         `json:"paid_at,omitempty"`
	Lines          []BillLineResponse `json:"lines,omitempty"`
	LaborMinutes   int                `json:"labor_minutes"`
	Membership     string             `json:"membership,omitempty"`
}

// GenerateInvoiceResponse resultado de la generación (idempotente).
type GenerateInvoiceResponse struct {
	Invoice InvoiceResponse `json:"invoice"`
	Created bool            `json:"created"`
}

// CreateOrderResponse datos para abrir el checkout de la pasarela.
type CreateOrderResponse struct {
	PaymentID string          `json:"payment_id"`
	OrderID   string          `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	KeyID     string          `json:"key_id"`
	Purpose   string          `json:"purpose"`
	InvoiceID *string         `json:"invoice_id,omitempty"`
}

// VerifyPaymentRequest datos que devuelve el checkout al completar el pago.
type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

// PaymentResponse salida de un pago.
type PaymentResponse struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	Purpose          string          `json:"purpose"`
	RequestID        *string         `json:"request_id,omitempty"`
	InvoiceID        *string         `json:"invoice_id,omitempty"`
	MembershipType   string          `json:"membership_type,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Status           string          `json:"status"`
	GatewayOrderID   string          `json:"gateway_order_id"`
	GatewayPaymentID string          `json:"gateway_payment_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
}
