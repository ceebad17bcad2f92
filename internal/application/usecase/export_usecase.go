package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/servicecenter-api/internal/application/ports"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
)

// exportPageSize tamaño de página al recorrer tablas completas para exportar.
const exportPageSize = 200

// ExportUseCase reportes XLSX del panel de administración.
type ExportUseCase struct {
	repos    repository.Repositories
	exporter ports.SheetExporter
}

// NewExportUseCase construye el caso de uso.
func NewExportUseCase(repos repository.Repositories, exporter ports.SheetExporter) *ExportUseCase {
	return &ExportUseCase{repos: repos, exporter: exporter}
}

// collect recorre todas las páginas de un listado.
func collect[T any](ctx context.Context, fetch func(ctx context.Context, limit, offset int) ([]T, error)) ([]T, error) {
	var all []T
	for offset := 0; ; offset += exportPageSize {
		page, err := fetch(ctx, exportPageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < exportPageSize {
			return all, nil
		}
	}
}

// Inventory hoja con todos los ítems y su estado de stock.
func (uc *ExportUseCase) Inventory(ctx context.Context) ([]byte, string, error) {
	items, err := collect(ctx, uc.repos.Inventory.List)
	if err != nil {
		return nil, "", fmt.Errorf("export: inventario: %w", err)
	}
	sheet := ports.Sheet{
		Name:    "Inventario",
		Headers: []string{"ID", "Nombre", "Categoría", "Stock", "Punto de reorden", "Precio unitario", "Estado", "Valor total"},
	}
	for _, i := range items {
		sheet.Rows = append(sheet.Rows, []any{i.ID, i.Name, i.Category, i.CurrentStock, i.ReorderLevel, i.UnitPrice, i.StockStatus(), i.TotalValue()})
	}
	data, err := uc.exporter.Export(ctx, sheet)
	if err != nil {
		return nil, "", err
	}
	return data, fmt.Sprintf("inventario-%s.xlsx", time.Now().Format("20060102")), nil
}

// Invoices hoja de facturas (filtro opcional de estado) más una hoja de totales.
func (uc *ExportUseCase) Invoices(ctx context.Context, status string) ([]byte, string, error) {
	invoices, err := collect(ctx, func(ctx context.Context, limit, offset int) ([]*entity.Invoice, error) {
		return uc.repos.Invoices.List(ctx, status, limit, offset)
	})
	if err != nil {
		return nil, "", fmt.Errorf("export: facturas: %w", err)
	}
	sheet := ports.Sheet{
		Name: "Facturas",
		Headers: []string{"Número", "Solicitud", "Estado", "Materiales", "Mano de obra", "Descuento",
			"Subtotal", "GST", "Total", "Emitida", "Pagada"},
	}
	paid, unpaid := 0, 0
	for _, inv := range invoices {
		paidAt := ""
		if inv.PaidAt != nil {
			paidAt = inv.PaidAt.Format(time.DateTime)
		}
		if inv.IsPaid() {
			paid++
		} else {
			unpaid++
		}
		sheet.Rows = append(sheet.Rows, []any{
			inv.InvoiceNumber, inv.RequestID, inv.Status, inv.MaterialsTotal, inv.LaborTotal, inv.Discount,
			inv.Subtotal, inv.Tax, inv.GrandTotal, inv.IssuedAt.Format(time.DateTime), paidAt,
		})
	}
	summary := ports.Sheet{
		Name:    "Resumen",
		Headers: []string{"Concepto", "Cantidad"},
		Rows:    [][]any{{"Facturas", len(invoices)}, {"Pagadas", paid}, {"Pendientes", unpaid}},
	}
	data, err := uc.exporter.Export(ctx, sheet, summary)
	if err != nil {
		return nil, "", err
	}
	return data, fmt.Sprintf("facturas-%s.xlsx", time.Now().Format("20060102")), nil
}
