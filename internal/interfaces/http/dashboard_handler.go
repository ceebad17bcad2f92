package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/servicecenter-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del dashboard del administrador.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve los contadores del taller: solicitudes por estado, clientes, asesores activos,
// stock bajo e ingresos del mes. El resultado puede venir de caché (ver DASHBOARD_CACHE_TTL_SECONDS);
// ?refresh=true lo recalcula.
// GET /admin/dashboard
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	if c.QueryBool("refresh") {
		h.uc.Invalidate(c.UserContext())
	}
	summary, err := h.uc.GetSummary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}
