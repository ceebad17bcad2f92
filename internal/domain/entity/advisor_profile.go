package entity

import "time"

// ServiceAdvisorProfile perfil del asesor de servicio (taller).
type ServiceAdvisorProfile struct {
	ID             string
	UserID         string
	Department     string
	Specialization string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
