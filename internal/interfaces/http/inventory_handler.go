package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/servicecenter-api/internal/application/dto"
	"github.com/jhoicas/servicecenter-api/internal/application/usecase"
)

// InventoryHandler catálogo de repuestos. Lectura para asesores, escritura solo admin.
type InventoryHandler struct {
	uc     *usecase.InventoryUseCase
	export *usecase.ExportUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *usecase.InventoryUseCase, export *usecase.ExportUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc, export: export}
}

// Create godoc
// @Summary      Crear ítem de inventario
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.InventoryItemRequest  true  "datos del ítem"
// @Success      201  {object}  dto.InventoryItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /admin/inventory [post]
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var in dto.InventoryItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar inventario
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "límite"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse[dto.InventoryItemResponse]
// @Router       /admin/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener ítem
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.InventoryItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /admin/inventory/{id} [get]
func (h *InventoryHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar ítem
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                    true  "ID del ítem"
// @Param        body  body  dto.InventoryItemRequest  true  "datos del ítem"
// @Success      200  {object}  dto.InventoryItemResponse
// @Router       /admin/inventory/{id} [put]
func (h *InventoryHandler) Update(c *fiber.Ctx) error {
	var in dto.InventoryItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar ítem (409 si tiene consumos registrados)
// @Tags         inventory
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del ítem"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /admin/inventory/{id} [delete]
func (h *InventoryHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LowStock godoc
// @Summary      Ítems con stock en o bajo el nivel de reorden
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.InventoryItemResponse
// @Router       /admin/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.uc.LowStock(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar inventario a Excel
// @Tags         inventory
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200  {file}  binary
// @Router       /admin/inventory/export [get]
func (h *InventoryHandler) Export(c *fiber.Ctx) error {
	data, name, err := h.export.Inventory(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return sendAttachment(c, xlsxContentType, name, data)
}
