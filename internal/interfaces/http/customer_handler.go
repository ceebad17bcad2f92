package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/servicecenter-api/internal/application/billing"
	"github.com/jhoicas/servicecenter-api/internal/application/dto"
	"github.com/jhoicas/servicecenter-api/internal/application/usecase"
)

// CustomerHandler rutas del cliente: perfil, vehículos, solicitudes, facturas, pagos y membresía.
type CustomerHandler struct {
	customers *usecase.CustomerUseCase
	bills     *billing.BillUseCase
	payments  *billing.PaymentUseCase
}

// NewCustomerHandler construye el handler de clientes.
func NewCustomerHandler(customers *usecase.CustomerUseCase, bills *billing.BillUseCase, payments *billing.PaymentUseCase) *CustomerHandler {
	return &CustomerHandler{customers: customers, bills: bills, payments: payments}
}

// GetProfile godoc
// @Summary      Perfil del cliente autenticado
// @Tags         customer
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.CustomerProfileResponse
// @Router       /api/customer/profile [get]
func (h *CustomerHandler) GetProfile(c *fiber.Ctx) error {
	out, err := h.customers.GetProfile(c.UserContext(), actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateProfile godoc
// @Summary      Actualizar perfil (solo campos enviados)
// @Tags         customer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.UpdateCustomerProfileRequest  true  "campos a modificar"
// @Success      200  {object}  dto.CustomerProfileResponse
// @Router       /api/customer/profile [put]
func (h *CustomerHandler) UpdateProfile(c *fiber.Ctx) error {
	var in dto.UpdateCustomerProfileRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.customers.UpdateProfile(c.UserContext(), actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateVehicle godoc
// @Summary      Registrar vehículo
// @Tags         customer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.VehicleRequest  true  "datos del vehículo"
// @Success      201  {object}  dto.VehicleResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/customer/vehicles [post]
func (h *CustomerHandler) CreateVehicle(c *fiber.Ctx) error {
	var in dto.VehicleRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.customers.CreateVehicle(c.UserContext(), actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListVehicles godoc
// @Summary      Vehículos del cliente
// @Tags         customer
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.VehicleResponse
// @Router       /api/customer/vehicles [get]
func (h *CustomerHandler) ListVehicles(c *fiber.Ctx) error {
	out, err := h.customers.ListVehicles(c.UserContext(), actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetVehicle godoc
// @Summary      Obtener vehículo
// @Tags         customer
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del vehículo"
// @Success      200  {object}  dto.VehicleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/customer/vehicles/{id} [get]
func (h *CustomerHandler) GetVehicle(c *fiber.Ctx) error {
	out, err := h.customers.GetVehicle(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateVehicle godoc
// @Summary      Actualizar vehículo
// @Tags         customer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string             true  "ID del vehículo"
// @Param        body  body  dto.VehicleRequest  true  "datos del vehículo"
// @Success      200  {object}  dto.VehicleResponse
// @Router       /api/customer/vehicles/{id} [put]
func (h *CustomerHandler) UpdateVehicle(c *fiber.Ctx) error {
	var in dto.VehicleRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.customers.UpdateVehicle(c.UserContext(), actor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeleteVehicle godoc
// @Summary      Eliminar vehículo
// @Tags         customer
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del vehículo"
// @Success      204
// @Router       /api/customer/vehicles/{id} [delete]
func (h *CustomerHandler) DeleteVehicle(c *fiber.Ctx) error {
	if err := h.customers.DeleteVehicle(c.UserContext(), actor(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateServiceRequest godoc
// @Summary      Crear solicitud de servicio
// @Tags         customer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateServiceRequestRequest  true  "tipo de servicio y vehículo"
// @Success      201  {object}  dto.ServiceRequestResponse
// @Router       /api/customer/requests [post]
func (h *CustomerHandler) CreateServiceRequest(c *fiber.Ctx) error {
	var in dto.CreateServiceRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.customers.CreateServiceRequest(c.UserContext(), actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListServiceRequests godoc
// @Summary      Solicitudes del cliente
// @Tags         customer
// @Produce      json
// @Security     BearerAuth
// @Param        status  query  string  false  "filtro por estado"
// @Param        limit   query  int     false  "límite"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse[dto.ServiceRequestResponse]
// @Router       /api/customer/requests [get]
func (h *CustomerHandler) ListServiceRequests(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.customers.ListServiceRequests(c.UserContext(), actor(c), c.Query("status"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetServiceRequest godoc
// @Summary      Detalle de una solicitud propia
// @Tags         customer
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.ServiceRequestDetailResponse
// @Router       /api/customer/requests/{id} [get]
func (h *CustomerHandler) GetServiceRequest(c *fiber.Ctx) error {
	out, err := h.customers.GetServiceRequest(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListTracking godoc
// @Summary      Historial de seguimiento de una solicitud
// @Tags         customer
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {array}  dto.TrackingResponse
// @Router       /api/customer/requests/{id}/tracking [get]
func (h *CustomerHandler) ListTracking(c *fiber.Ctx) error {
	out, err := h.customers.ListTracking(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetBill godoc
// @Summary      Factura preliminar de una solicitud completada
// @Tags         customer
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.BillResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/customer/requests/{id}/bill [get]
func (h *CustomerHandler) GetBill(c *fiber.Ctx) error {
	out, err := h.bills.GetBill(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetRequestInvoice godoc
// @Summary      Factura emitida para una solicitud
// @Tags         customer
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/customer/requests/{id}/invoice [get]
func (h *CustomerHandler) GetRequestInvoice(c *fiber.Ctx) error {
	out, err := h.bills.GetInvoiceByRequest(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListInvoices godoc
// @Summary      Facturas del cliente
// @Tags         customer
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "límite"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse[dto.InvoiceResponse]
// @Router       /api/customer/invoices [get]
func (h *CustomerHandler) ListInvoices(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.bills.ListCustomerInvoices(c.UserContext(), actor(c), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetInvoice godoc
// @Summary      Obtener factura
// @Tags         customer
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Router       /api/customer/invoices/{id} [get]
func (h *CustomerHandler) GetInvoice(c *fiber.Ctx) error {
	out, err := h.bills.GetInvoice(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetInvoicePDF godoc
// @Summary      Descargar factura en PDF
// @Tags         customer
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}  binary
// @Router       /api/customer/invoices/{id}/pdf [get]
func (h *CustomerHandler) GetInvoicePDF(c *fiber.Ctx) error {
	return sendInvoicePDF(c, h.bills)
}

// CreateInvoiceOrder godoc
// @Summary      Crear orden de pago para una factura
// @Tags         customer
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la factura"
// @Success      201  {object}  dto.CreateOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/customer/invoices/{id}/pay [post]
func (h *CustomerHandler) CreateInvoiceOrder(c *fiber.Ctx) error {
	out, err := h.payments.CreateInvoiceOrder(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// VerifyPayment godoc
// @Summary      Verificar pago con la firma de la pasarela
// @Tags         customer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.VerifyPaymentRequest  true  "order_id, payment_id, signature"
// @Success      200  {object}  dto.PaymentResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/customer/payments/verify [post]
func (h *CustomerHandler) VerifyPayment(c *fiber.Ctx) error {
	var in dto.VerifyPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.payments.VerifyPayment(c.UserContext(), actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListPayments godoc
// @Summary      Pagos del cliente
// @Tags         customer
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "límite"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse[dto.PaymentResponse]
// @Router       /api/customer/payments [get]
func (h *CustomerHandler) ListPayments(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.payments.ListPayments(c.UserContext(), actor(c), "", page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetMembership godoc
// @Summary      Membresía vigente y precio de PREMIUM
// @Tags         customer
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.MembershipResponse
// @Router       /api/customer/membership [get]
func (h *CustomerHandler) GetMembership(c *fiber.Ctx) error {
	out, err := h.payments.GetMembership(c.UserContext(), actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateMembershipOrder godoc
// @Summary      Crear orden de pago de la membresía PREMIUM
// @Tags         customer
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  dto.CreateOrderResponse
// @Router       /api/customer/membership/order [post]
func (h *CustomerHandler) CreateMembershipOrder(c *fiber.Ctx) error {
	out, err := h.payments.CreateMembershipOrder(c.UserContext(), actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
