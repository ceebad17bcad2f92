// Package export genera libros XLSX para los reportes de administración.
package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/servicecenter-api/internal/application/ports"
)

var _ ports.SheetExporter = (*XLSXExporter)(nil)

// XLSXExporter implementa ports.SheetExporter con excelize.
type XLSXExporter struct{}

// NewXLSXExporter construye el exportador.
func NewXLSXExporter() *XLSXExporter { return &XLSXExporter{} }

// Export escribe una hoja por Sheet (cabecera en negrita) y devuelve el libro serializado.
func (XLSXExporter) Export(ctx context.Context, sheets ...ports.Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("export: sin hojas")
	}
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("export: estilo de cabecera: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("export: estilo de montos: %w", err)
	}

	for i, sh := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.Name); err != nil {
				return nil, fmt.Errorf("export: renombrar hoja: %w", err)
			}
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			return nil, fmt.Errorf("export: crear hoja %s: %w", sh.Name, err)
		}
		if err := writeSheet(f, sh, headerStyle, moneyStyle); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("export: serializar libro: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sh ports.Sheet, headerStyle, moneyStyle int) error {
	for c, h := range sh.Headers {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sh.Name, cell, h); err != nil {
			return fmt.Errorf("export: cabecera: %w", err)
		}
		if err := f.SetCellStyle(sh.Name, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("export: estilo: %w", err)
		}
	}
	for r, values := range sh.Rows {
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			// decimal.Decimal se escribe como número para que la hoja pueda sumar
			if d, ok := v.(decimal.Decimal); ok {
				fv, _ := d.Float64()
				v = fv
				if err := f.SetCellStyle(sh.Name, cell, cell, moneyStyle); err != nil {
					return fmt.Errorf("export: estilo: %w", err)
				}
			}
			if err := f.SetCellValue(sh.Name, cell, v); err != nil {
				return fmt.Errorf("export: celda %s: %w", cell, err)
			}
		}
	}
	if n := len(sh.Headers); n > 0 {
		last, _ := excelize.ColumnNumberToName(n)
		if err := f.SetColWidth(sh.Name, "A", last, 18); err != nil {
			return fmt.Errorf("export: ancho de columnas: %w", err)
		}
	}
	return nil
}
