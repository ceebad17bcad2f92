package repository

import (
	"context"
	"time"

	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// InvoiceSummary agregados para el dashboard de administración.
type InvoiceSummary struct {
	PaidRevenue  decimal.Decimal // facturas pagadas en el período
	PaidCount    int
	UnpaidCount  int
	UnpaidAmount decimal.Decimal
}

// InvoiceRepository define el puerto de persistencia para Invoice.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	// FindByRequestID devuelve la primera (más antigua) de las facturas de la solicitud, o nil.
	FindByRequestID(ctx context.Context, requestID string) (*entity.Invoice, error)
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*entity.Invoice, error)
	List(ctx context.Context, status string, limit, offset int) ([]*entity.Invoice, error)
	MarkPaid(ctx context.Context, id string, paidAt time.Time) error
	Summary(ctx context.Context, from, to time.Time) (*InvoiceSummary, error)
}
