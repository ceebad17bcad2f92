package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/servicecenter-api/internal/application/billing"
	"github.com/jhoicas/servicecenter-api/internal/application/usecase"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InvoiceHandler consultas y exportación de facturas y pagos para el administrador.
type InvoiceHandler struct {
	bills    *billing.BillUseCase
	payments *billing.PaymentUseCase
	export   *usecase.ExportUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(bills *billing.BillUseCase, payments *billing.PaymentUseCase, export *usecase.ExportUseCase) *InvoiceHandler {
	return &InvoiceHandler{bills: bills, payments: payments, export: export}
}

// List godoc
// @Summary      Listar facturas
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query  string  false  "PAID | UNPAID"
// @Param        limit   query  int     false  "límite"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse[dto.InvoiceResponse]
// @Router       /admin/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.bills.ListInvoices(c.UserContext(), c.Query("status"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener factura
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Router       /admin/invoices/{id} [get]
func (h *InvoiceHandler) Get(c *fiber.Ctx) error {
	out, err := h.bills.GetInvoice(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetPDF godoc
// @Summary      Descargar factura en PDF
// @Tags         admin
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}  binary
// @Router       /admin/invoices/{id}/pdf [get]
func (h *InvoiceHandler) GetPDF(c *fiber.Ctx) error {
	return sendInvoicePDF(c, h.bills)
}

// Export godoc
// @Summary      Exportar facturas a Excel
// @Tags         admin
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        status  query  string  false  "PAID | UNPAID"
// @Success      200  {file}  binary
// @Router       /admin/invoices/export [get]
func (h *InvoiceHandler) Export(c *fiber.Ctx) error {
	data, name, err := h.export.Invoices(c.UserContext(), c.Query("status"))
	if err != nil {
		return writeError(c, err)
	}
	return sendAttachment(c, xlsxContentType, name, data)
}

// ListPayments godoc
// @Summary      Listar pagos (opcionalmente de un usuario)
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  query  string  false  "ID del usuario"
// @Param        limit    query  int     false  "límite"
// @Param        offset   query  int     false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse[dto.PaymentResponse]
// @Router       /admin/payments [get]
func (h *InvoiceHandler) ListPayments(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.payments.ListPayments(c.UserContext(), actor(c), c.Query("user_id"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func sendInvoicePDF(c *fiber.Ctx, bills *billing.BillUseCase) error {
	data, name, err := bills.GetInvoicePDF(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return sendAttachment(c, "application/pdf", name, data)
}

func sendAttachment(c *fiber.Ctx, contentType, filename string, data []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}
