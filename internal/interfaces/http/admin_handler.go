package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/servicecenter-api/internal/application/dto"
	"github.com/jhoicas/servicecenter-api/internal/application/usecase"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
)

// AdminHandler gestión de asesores, clientes y solicitudes.
type AdminHandler struct {
	advisors  *usecase.AdvisorUseCase
	customers *usecase.CustomerUseCase
	service   *usecase.ServiceUseCase
}

// NewAdminHandler construye el handler.
func NewAdminHandler(advisors *usecase.AdvisorUseCase, customers *usecase.CustomerUseCase, service *usecase.ServiceUseCase) *AdminHandler {
	return &AdminHandler{advisors: advisors, customers: customers, service: service}
}

// CreateAdvisor godoc
// @Summary      Crear asesor (la contraseña se envía por correo)
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateAdvisorRequest  true  "datos del asesor"
// @Success      201  {object}  dto.AdvisorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /admin/advisors [post]
func (h *AdminHandler) CreateAdvisor(c *fiber.Ctx) error {
	var in dto.CreateAdvisorRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.advisors.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListAdvisors godoc
// @Summary      Listar asesores
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "límite"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse[dto.AdvisorResponse]
// @Router       /admin/advisors [get]
func (h *AdminHandler) ListAdvisors(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.advisors.List(c.UserContext(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetAdvisor godoc
// @Summary      Obtener asesor
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del perfil de asesor"
// @Success      200  {object}  dto.AdvisorResponse
// @Router       /admin/advisors/{id} [get]
func (h *AdminHandler) GetAdvisor(c *fiber.Ctx) error {
	out, err := h.advisors.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateAdvisor godoc
// @Summary      Actualizar asesor
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                    true  "ID del perfil de asesor"
// @Param        body  body  dto.UpdateAdvisorRequest  true  "campos a modificar"
// @Success      200  {object}  dto.AdvisorResponse
// @Router       /admin/advisors/{id} [put]
func (h *AdminHandler) UpdateAdvisor(c *fiber.Ctx) error {
	var in dto.UpdateAdvisorRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.advisors.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeactivateAdvisor godoc
// @Summary      Desactivar asesor
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del perfil de asesor"
// @Success      200  {object}  dto.AdvisorResponse
// @Router       /admin/advisors/{id} [delete]
func (h *AdminHandler) DeactivateAdvisor(c *fiber.Ctx) error {
	out, err := h.advisors.Deactivate(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListCustomers godoc
// @Summary      Listar clientes
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "límite"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse[dto.CustomerProfileResponse]
// @Router       /admin/customers [get]
func (h *AdminHandler) ListCustomers(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.customers.ListCustomers(c.UserContext(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetCustomer godoc
// @Summary      Cliente con sus vehículos
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del perfil de cliente"
// @Success      200  {object}  dto.CustomerDetailResponse
// @Router       /admin/customers/{id} [get]
func (h *AdminHandler) GetCustomer(c *fiber.Ctx) error {
	out, err := h.customers.GetCustomer(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListRequests godoc
// @Summary      Listar solicitudes de servicio
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status       query  string  false  "estado"
// @Param        customer_id  query  string  false  "perfil de cliente"
// @Param        advisor_id   query  string  false  "perfil de asesor"
// @Param        limit        query  int     false  "límite"
// @Param        offset       query  int     false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse[dto.ServiceRequestResponse]
// @Router       /admin/requests [get]
func (h *AdminHandler) ListRequests(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return writeError(c, err)
	}
	filter := repository.ServiceRequestFilter{
		CustomerID: c.Query("customer_id"),
		AdvisorID:  c.Query("advisor_id"),
		Status:     c.Query("status"),
	}
	out, err := h.service.ListRequests(c.UserContext(), filter, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetRequest godoc
// @Summary      Detalle de una solicitud
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.ServiceRequestDetailResponse
// @Router       /admin/requests/{id} [get]
func (h *AdminHandler) GetRequest(c *fiber.Ctx) error {
	out, err := h.service.GetRequest(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AssignAdvisor godoc
// @Summary      Asignar asesor a una solicitud
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                    true  "ID de la solicitud"
// @Param        body  body  dto.AssignAdvisorRequest  true  "advisor_id"
// @Success      200  {object}  dto.ServiceRequestResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /admin/requests/{id}/assign [put]
func (h *AdminHandler) AssignAdvisor(c *fiber.Ctx) error {
	var in dto.AssignAdvisorRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.service.AssignAdvisor(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
