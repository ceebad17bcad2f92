// Package pdf genera la factura de servicio en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Centro de servicio      │  N° Factura + Fecha      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre / Email / Tel / Dirección                  │
//	│  SERVICIO: Tipo + Vehículo + Membresía                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | Subtotal              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Materiales / Mano de obra / Descuento / GST / TOTAL│
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR de verificación + estado de pago                │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/servicecenter-api/internal/application/ports"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
)

var _ ports.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa ports.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	companyName string
}

// NewMarotoPDFGenerator construye el generador; companyName encabeza el documento.
func NewMarotoPDFGenerator(companyName string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{companyName: companyName}
}

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(_ context.Context, doc ports.InvoiceDocument) ([]byte, error) {
	if doc.Invoice == nil {
		return nil, fmt.Errorf("pdf: factura vacía")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Invoice "+doc.Invoice.InvoiceNumber, true).
		WithAuthor(g.companyName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.companyName, doc.Invoice))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(doc))
	m.AddRows(serviceRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(doc)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(doc))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(doc.Invoice))

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(company string, inv *entity.Invoice) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Vehicle service center", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("TAX INVOICE", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(inv.InvoiceNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Date: "+inv.IssuedAt.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func customerRow(doc ports.InvoiceDocument) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("BILL TO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(doc.CustomerName, "Customer"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Email: %s   |   Phone: %s   |   Address: %s",
				nonEmpty(doc.CustomerEmail, "-"),
				nonEmpty(doc.CustomerPhone, "-"),
				nonEmpty(doc.Address, "-"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func serviceRow(doc ports.InvoiceDocument) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("SERVICE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   Vehicle: %s   |   Membership: %s",
				nonEmpty(doc.ServiceType, "-"),
				nonEmpty(doc.Vehicle, "-"),
				nonEmpty(doc.Invoice.Membership, entity.MembershipStandard),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Qty", 1, align.Center),
		h("Description", 6, align.Left),
		h("Unit price", 2, align.Right),
		h("Amount", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows una fila por material más la línea de mano de obra.
func tableDetailRows(doc ports.InvoiceDocument) []core.Row {
	result := make([]core.Row, 0, len(doc.Invoice.Lines)+1)
	detail := func(qty, desc, unit, amount string) core.Row {
		return row.New(7).Add(
			col.New(1).Add(text.New(qty, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(6).Add(text.New(desc, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(unit, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(amount, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		)
	}
	for _, mline := range doc.Invoice.Lines {
		result = append(result, detail(
			fmt.Sprintf("%d", mline.Quantity),
			mline.Name,
			formatMoney(mline.UnitPrice),
			formatMoney(mline.Total()),
		))
	}
	labor := "Labor"
	if doc.Invoice.LaborMinutes > 0 {
		labor = fmt.Sprintf("Labor (%d min)", doc.Invoice.LaborMinutes)
	}
	result = append(result, detail("-", labor, "-", formatMoney(doc.Invoice.LaborTotal)))
	return result
}

func totalsRow(doc ports.InvoiceDocument) core.Row {
	inv := doc.Invoice
	lines := []struct{ label, value string }{
		{"Materials:", formatMoney(inv.MaterialsTotal)},
		{"Labor:", formatMoney(inv.LaborTotal)},
		{"Discount:", "-" + formatMoney(inv.Discount)},
		{"Subtotal:", formatMoney(inv.Subtotal)},
		{"GST " + nonEmpty(doc.GSTRate, "") + ":", formatMoney(inv.Tax)},
	}
	labels := col.New(3)
	values := col.New(3)
	for i, l := range lines {
		top := float64(i * 5)
		labels.Add(text.New(l.label, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top}))
		values.Add(text.New(l.value, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top}))
	}
	grandTop := float64(len(lines) * 5)
	labels.Add(text.New("TOTAL:", props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: grandTop,
	}))
	values.Add(text.New(formatMoney(inv.GrandTotal), props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: grandTop,
	}))
	return row.New(36).Add(col.New(6), labels, values)
}

func footerRow(inv *entity.Invoice) core.Row {
	status := "Payment pending"
	if inv.IsPaid() {
		status = "PAID"
		if inv.PaidAt != nil {
			status += " on " + inv.PaidAt.Format("02/01/2006")
		}
	}
	qr := fmt.Sprintf("%s|%s|%s", inv.InvoiceNumber, inv.GrandTotal.StringFixed(2), inv.Status)
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(qr, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New(status, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 4, Left: 3, Color: colorPrimary,
			}),
			text.New("Scan the code to verify the invoice number and amount.\n"+
				"Amounts in INR. GST applied on the discounted subtotal.", props.Text{
				Size: 8, Top: 12, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney "Rs. " + separadores de miles y dos decimales: 3210.19 -> "Rs. 3,210.19".
// Las fuentes estándar del PDF no incluyen el glifo de la rupia.
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "Rs. " + string(buf) + "." + frac
}
