package entity

import (
	"strings"
	"time"
)

// Estados de una solicitud de servicio. El flujo habitual es
// Received -> Diagnosis -> Repair -> Completed, pero el endpoint de estado acepta cualquiera.
const (
	StatusReceived  = "Received"
	StatusDiagnosis = "Diagnosis"
	StatusRepair    = "Repair"
	StatusCompleted = "Completed"
)

var serviceStatuses = []string{StatusReceived, StatusDiagnosis, StatusRepair, StatusCompleted}

// ServiceRequest trabajo de servicio sobre un vehículo de un cliente.
type ServiceRequest struct {
	ID            string
	CustomerID    string  // CustomerProfile.ID
	VehicleID     *string // opcional
	AdvisorID     *string // ServiceAdvisorProfile.ID, opcional
	ServiceType   string
	Description   string
	Status        string
	RequestedDate time.Time
	DeliveredAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsCompleted indica si el servicio terminó (habilita facturación y entrega).
func (r *ServiceRequest) IsCompleted() bool {
	return r.Status == StatusCompleted
}

// IsAssignedTo indica si la solicitud está asignada al asesor.
func (r *ServiceRequest) IsAssignedTo(advisorID string) bool {
	return r.AdvisorID != nil && *r.AdvisorID == advisorID
}

// ParseServiceStatus normaliza un estado recibido sin distinguir mayúsculas. ok=false si no existe.
func ParseServiceStatus(s string) (string, bool) {
	for _, st := range serviceStatuses {
		if strings.EqualFold(strings.TrimSpace(s), st) {
			return st, true
		}
	}
	return "", false
}

// ServiceStatuses devuelve los estados válidos en el orden del flujo.
func ServiceStatuses() []string {
	out := make([]string, len(serviceStatuses))
	copy(out, serviceStatuses)
	return out
}
