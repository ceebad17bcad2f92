package pdf

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/servicecenter-api/internal/application/ports"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "Rs. 3,210.19", formatMoney(decimal.RequireFromString("3210.19")))
	assert.Equal(t, "Rs. 500.00", formatMoney(decimal.NewFromInt(500)))
	assert.Equal(t, "Rs. 1,234,567.50", formatMoney(decimal.RequireFromString("1234567.5")))
	assert.Equal(t, "-Rs. 10.00", formatMoney(decimal.NewFromInt(-10)))
}

func TestGenerateInvoicePDF_DevuelvePDF(t *testing.T) {
	g := NewMarotoPDFGenerator("Service Center")
	doc := ports.InvoiceDocument{
		Invoice: &entity.Invoice{
			InvoiceNumber:  "INV-20260101-ABCDEF",
			MaterialsTotal: decimal.NewFromInt(500),
			LaborTotal:     decimal.Zero,
			Discount:       decimal.Zero,
			Subtotal:       decimal.NewFromInt(500),
			Tax:            decimal.NewFromInt(90),
			GrandTotal:     decimal.NewFromInt(590),
			Status:         entity.InvoiceUnpaid,
			IssuedAt:       time.Now(),
			Lines:          []entity.InvoiceLine{{Name: "Standard Service Kit", Quantity: 1, UnitPrice: decimal.NewFromInt(500)}},
			Membership:     entity.MembershipStandard,
		},
		CustomerName: "Ana",
		GSTRate:      "18%",
	}

	out, err := g.GenerateInvoicePDF(context.Background(), doc)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestGenerateInvoicePDF_SinFactura(t *testing.T) {
	_, err := NewMarotoPDFGenerator("x").GenerateInvoicePDF(context.Background(), ports.InvoiceDocument{})
	assert.Error(t, err)
}
