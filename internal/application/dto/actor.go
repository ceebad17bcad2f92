package dto

import "github.com/jhoicas/servicecenter-api/internal/domain/entity"

// Actor identidad autenticada que ejecuta el caso de uso (viene del JWT).
// ProfileID es el CustomerProfile.ID o el ServiceAdvisorProfile.ID según el rol.
type Actor struct {
	UserID    string
	ProfileID string
	Role      string
}

// IsAdmin indica si el actor es administrador.
func (a Actor) IsAdmin() bool { return a.Role == entity.RoleAdmin }

// CanAccessRequest admin ve todo; el cliente sus solicitudes; el asesor las asignadas.
func (a Actor) CanAccessRequest(req *entity.ServiceRequest) bool {
	switch a.Role {
	case entity.RoleAdmin:
		return true
	case entity.RoleCustomer:
		return req.CustomerID == a.ProfileID
	case entity.RoleServiceAdvisor:
		return req.IsAssignedTo(a.ProfileID)
	default:
		return false
	}
}
