package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateServiceRequestRequest alta de una solicitud por el cliente.
type CreateServiceRequestRequest struct {
	VehicleID     string     `json:"vehicle_id,omitempty"`
	ServiceType   string     `json:"service_type" validate:"required"`
	Description   string     `json:"description,omitempty"`
	RequestedDate *time.Time `json:"requested_date,omitempty"`
}

// ServiceRequestResponse salida de una solicitud.
type ServiceRequestResponse struct {
	ID            string     `json:"id"`
	CustomerID    string     `json:"customer_id"`
	VehicleID     *string    `json:"vehicle_id,omitempty"`
	AdvisorID     *string    `json:"advisor_id,omitempty"`
	ServiceType   string     `json:"service_type"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	RequestedDate time.Time  `json:"requested_date"`
	DeliveredAt   *time.Time `json:"delivered_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ServiceRequestDetailResponse solicitud con vehículo, seguimiento y materiales.
type ServiceRequestDetailResponse struct {
	ServiceRequestResponse
	Vehicle   *VehicleResponse        `json:"vehicle,omitempty"`
	Tracking  []TrackingResponse      `json:"tracking"`
	Materials []MaterialUsageResponse `json:"materials"`
}

// UpdateStatusRequest cambio de estado por el asesor.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes,omitempty"`
}

// RecordLaborRequest mano de obra acumulada de la solicitud. Cost nil o cero = minutos * tarifa.
type RecordLaborRequest struct {
	Minutes int              `json:"minutes" validate:"min=0"`
	Cost    *decimal.Decimal `json:"cost,omitempty"`
	Notes   string           `json:"notes,omitempty"`
}

// AddMaterialRequest consumo de un ítem de inventario.
type AddMaterialRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

// AssignAdvisorRequest asignación de asesor (admin).
type AssignAdvisorRequest struct {
	AdvisorID string `json:"advisor_id" validate:"required"`
}

// TrackingResponse fila del historial de seguimiento.
type TrackingResponse struct {
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	AdvisorID    string          `json:"advisor_id,omitempty"`
	LaborMinutes int             `json:"labor_minutes"`
	LaborCost    decimal.Decimal `json:"labor_cost"`
	MaterialCost decimal.Decimal `json:"material_cost"`
	Notes        string          `json:"notes,omitempty"`
	RecordedAt   time.Time       `json:"recorded_at"`
}

// MaterialUsageResponse material consumido.
type MaterialUsageResponse struct {
	ID        string          `json:"id"`
	ItemID    string          `json:"item_id"`
	ItemName  string          `json:"item_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
	UsedAt    time.Time       `json:"used_at"`
}
