package repository

import (
	"context"
	"time"

	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
)

// PaymentRepository define el puerto de persistencia para Payment.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByOrderID(ctx context.Context, orderID string) (*entity.Payment, error)
	// GetByOrderIDForUpdate bloquea la fila hasta el fin de la transacción.
	GetByOrderIDForUpdate(ctx context.Context, orderID string) (*entity.Payment, error)
	// FindOpenByInvoiceID devuelve el primer pago CREATED de la factura, o nil.
	FindOpenByInvoiceID(ctx context.Context, invoiceID string) (*entity.Payment, error)
	// MarkPaid pasa el pago de CREATED a PAID. Devuelve false si ya no estaba CREATED.
	MarkPaid(ctx context.Context, id, gatewayPaymentID string, paidAt time.Time) (bool, error)
	List(ctx context.Context, userID string, limit, offset int) ([]*entity.Payment, error)
}
