package ports

import (
	"context"

	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
)

// InvoiceDocument datos necesarios para la representación gráfica de una factura.
// Líneas, minutos de mano de obra y membresía se toman de Invoice.
type InvoiceDocument struct {
	Invoice       *entity.Invoice
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       string
	Vehicle       string // "Marca Modelo (MATRÍCULA)"
	ServiceType   string
	GSTRate       string // "18%"
}

// InvoicePDFGenerator genera el PDF de una factura.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, doc InvoiceDocument) ([]byte, error)
}

// Sheet hoja tabular para exportación.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// SheetExporter serializa hojas a un libro (XLSX).
type SheetExporter interface {
	Export(ctx context.Context, sheets ...Sheet) ([]byte, error)
}
