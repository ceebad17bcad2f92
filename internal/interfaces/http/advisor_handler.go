package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/servicecenter-api/internal/application/billing"
	"github.com/jhoicas/servicecenter-api/internal/application/dto"
	"github.com/jhoicas/servicecenter-api/internal/application/usecase"
)

// ServiceAdvisorHandler trabajo del asesor sobre las solicitudes asignadas. Las mismas rutas
// sirven al admin, que puede operar cualquier solicitud.
type ServiceAdvisorHandler struct {
	service  *usecase.ServiceUseCase
	advisors *usecase.AdvisorUseCase
	bills    *billing.BillUseCase
}

// NewServiceAdvisorHandler construye el handler.
func NewServiceAdvisorHandler(service *usecase.ServiceUseCase, advisors *usecase.AdvisorUseCase, bills *billing.BillUseCase) *ServiceAdvisorHandler {
	return &ServiceAdvisorHandler{service: service, advisors: advisors, bills: bills}
}

// Me godoc
// @Summary      Perfil del asesor autenticado
// @Tags         serviceAdvisor
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.AdvisorResponse
// @Router       /serviceAdvisor/me [get]
func (h *ServiceAdvisorHandler) Me(c *fiber.Ctx) error {
	out, err := h.advisors.Me(c.UserContext(), actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListAssigned godoc
// @Summary      Solicitudes asignadas al asesor
// @Tags         serviceAdvisor
// @Produce      json
// @Security     BearerAuth
// @Param        status  query  string  false  "filtro por estado"
// @Param        limit   query  int     false  "límite"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse[dto.ServiceRequestResponse]
// @Router       /serviceAdvisor/requests [get]
func (h *ServiceAdvisorHandler) ListAssigned(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.service.ListAssigned(c.UserContext(), actor(c), c.Query("status"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetRequest godoc
// @Summary      Detalle de una solicitud asignada
// @Tags         serviceAdvisor
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.ServiceRequestDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /serviceAdvisor/requests/{id} [get]
func (h *ServiceAdvisorHandler) GetRequest(c *fiber.Ctx) error {
	out, err := h.service.GetRequest(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Cambiar el estado de una solicitud
// @Tags         serviceAdvisor
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                   true  "ID de la solicitud"
// @Param        body  body  dto.UpdateStatusRequest  true  "estado y notas"
// @Success      200  {object}  dto.ServiceRequestResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /serviceAdvisor/requests/{id}/status [patch]
func (h *ServiceAdvisorHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.service.UpdateStatus(c.UserContext(), actor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RecordLabor godoc
// @Summary      Registrar mano de obra (minutos y costo)
// @Tags         serviceAdvisor
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                  true  "ID de la solicitud"
// @Param        body  body  dto.RecordLaborRequest  true  "minutos, costo opcional"
// @Success      201  {object}  dto.TrackingResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /serviceAdvisor/requests/{id}/labor [post]
func (h *ServiceAdvisorHandler) RecordLabor(c *fiber.Ctx) error {
	var in dto.RecordLaborRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.service.RecordLabor(c.UserContext(), actor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// AddMaterial godoc
// @Summary      Consumir material del inventario
// @Tags         serviceAdvisor
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                  true  "ID de la solicitud"
// @Param        body  body  dto.AddMaterialRequest  true  "ítem y cantidad"
// @Success      201  {object}  dto.MaterialUsageResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /serviceAdvisor/requests/{id}/materials [post]
func (h *ServiceAdvisorHandler) AddMaterial(c *fiber.Ctx) error {
	var in dto.AddMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.service.AddMaterial(c.UserContext(), actor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMaterials godoc
// @Summary      Materiales consumidos por una solicitud
// @Tags         serviceAdvisor
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {array}  dto.MaterialUsageResponse
// @Router       /serviceAdvisor/requests/{id}/materials [get]
func (h *ServiceAdvisorHandler) ListMaterials(c *fiber.Ctx) error {
	out, err := h.service.ListMaterials(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListTracking godoc
// @Summary      Historial de seguimiento
// @Tags         serviceAdvisor
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {array}  dto.TrackingResponse
// @Router       /serviceAdvisor/requests/{id}/tracking [get]
func (h *ServiceAdvisorHandler) ListTracking(c *fiber.Ctx) error {
	out, err := h.service.ListTracking(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetBill godoc
// @Summary      Factura preliminar de la solicitud
// @Tags         serviceAdvisor
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.BillResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /serviceAdvisor/requests/{id}/bill [get]
func (h *ServiceAdvisorHandler) GetBill(c *fiber.Ctx) error {
	out, err := h.bills.GetBill(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GenerateInvoice godoc
// @Summary      Emitir factura (idempotente: devuelve la existente)
// @Tags         serviceAdvisor
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.GenerateInvoiceResponse
// @Success      201  {object}  dto.GenerateInvoiceResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /serviceAdvisor/requests/{id}/invoice [post]
func (h *ServiceAdvisorHandler) GenerateInvoice(c *fiber.Ctx) error {
	out, err := h.bills.GenerateInvoice(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if out.Created {
		return c.Status(fiber.StatusCreated).JSON(out)
	}
	return c.JSON(out)
}

// MarkDelivered godoc
// @Summary      Marcar vehículo entregado
// @Tags         serviceAdvisor
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.ServiceRequestResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /serviceAdvisor/requests/{id}/deliver [post]
func (h *ServiceAdvisorHandler) MarkDelivered(c *fiber.Ctx) error {
	out, err := h.service.MarkDelivered(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
