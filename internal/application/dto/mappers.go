package dto

import (
	"time"

	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
)

// FromUser convierte un usuario; la membresía se informa ya resuelta a la fecha now.
func FromUser(u *entity.User, now time.Time) UserResponse {
	out := UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
	if u.Role == entity.RoleCustomer {
		out.MembershipType = u.EffectiveMembership(now)
		if out.MembershipType == entity.MembershipPremium {
			out.MembershipEnd = u.MembershipEnd
		}
	}
	return out
}

// FromCustomer combina perfil y usuario.
func FromCustomer(p *entity.CustomerProfile, u *entity.User, now time.Time) CustomerProfileResponse {
	out := CustomerProfileResponse{
		ID:         p.ID,
		UserID:     p.UserID,
		Address:    p.Address,
		City:       p.City,
		PostalCode: p.PostalCode,
		TotalSpent: p.TotalSpent,
		CreatedAt:  p.CreatedAt,
	}
	if u != nil {
		out.Name = u.Name
		out.Email = u.Email
		out.Phone = u.Phone
		out.MembershipType = u.EffectiveMembership(now)
	}
	return out
}

// FromAdvisor combina perfil y usuario.
func FromAdvisor(p *entity.ServiceAdvisorProfile, u *entity.User) AdvisorResponse {
	out := AdvisorResponse{
		ID:             p.ID,
		UserID:         p.UserID,
		Department:     p.Department,
		Specialization: p.Specialization,
		CreatedAt:      p.CreatedAt,
	}
	if u != nil {
		out.Name = u.Name
		out.Email = u.Email
		out.Phone = u.Phone
		out.Active = u.Active
	}
	return out
}

func FromVehicle(v *entity.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:                 v.ID,
		CustomerID:         v.CustomerID,
		Brand:              v.Brand,
		Model:              v.Model,
		RegistrationNumber: v.RegistrationNumber,
		Category:           v.Category,
		ManufactureYear:    v.ManufactureYear,
		CreatedAt:          v.CreatedAt,
	}
}

func FromServiceRequest(r *entity.ServiceRequest) ServiceRequestResponse {
	return ServiceRequestResponse{
		ID:            r.ID,
		CustomerID:    r.CustomerID,
		VehicleID:     r.VehicleID,
		AdvisorID:     r.AdvisorID,
		ServiceType:   r.ServiceType,
		Description:   r.Description,
		Status:        r.Status,
		RequestedDate: r.RequestedDate,
		DeliveredAt:   r.DeliveredAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func FromTracking(t *entity.ServiceTracking) TrackingResponse {
	return TrackingResponse{
		ID:           t.ID,
		Status:       t.Status,
		AdvisorID:    t.AdvisorID,
		LaborMinutes: t.LaborMinutes,
		LaborCost:    t.LaborCost,
		MaterialCost: t.MaterialCost,
		Notes:        t.Notes,
		RecordedAt:   t.RecordedAt,
	}
}

func FromMaterialUsage(m *entity.MaterialUsage) MaterialUsageResponse {
	return MaterialUsageResponse{
		ID:        m.ID,
		ItemID:    m.ItemID,
		ItemName:  m.ItemName,
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
		Total:     m.LineTotal(),
		UsedAt:    m.UsedAt,
	}
}

func FromInventoryItem(i *entity.InventoryItem) InventoryItemResponse {
	return InventoryItemResponse{
		ID:           i.ID,
		Name:         i.Name,
		Category:     i.Category,
		CurrentStock: i.CurrentStock,
		UnitPrice:    i.UnitPrice,
		ReorderLevel: i.ReorderLevel,
		StockStatus:  i.StockStatus(),
		TotalValue:   i.TotalValue(),
		UpdatedAt:    i.UpdatedAt,
	}
}

func FromInvoice(i *entity.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:             i.ID,
		RequestID:      i.RequestID,
		CustomerID:     i.CustomerID,
		InvoiceNumber:  i.InvoiceNumber,
		MaterialsTotal: i.MaterialsTotal,
		LaborTotal:     i.LaborTotal,
		Discount:       i.Discount,
		Subtotal:       i.Subtotal,
		Tax:            i.Tax,
		GrandTotal:     i.GrandTotal,
		Status:         i.Status,
		IssuedAt:       i.IssuedAt,
		PaidAt:         i.PaidAt,
		Lines:          MapSlice(i.Lines, fromInvoiceLine),
		LaborMinutes:   i.LaborMinutes,
		Membership:     i.Membership,
	}
}

func fromInvoiceLine(l entity.InvoiceLine) BillLineResponse {
	return BillLineResponse{ItemID: l.ItemID, Name: l.Name, Quantity: l.Quantity, UnitPrice: l.UnitPrice, Total: l.Total()}
}

func FromPayment(p *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID,
		UserID:           p.UserID,
		Purpose:          p.Purpose,
		RequestID:        p.RequestID,
		InvoiceID:        p.InvoiceID,
		MembershipType:   p.MembershipType,
		Amount:           p.Amount,
		Currency:         p.Currency,
		Status:           p.Status,
		GatewayOrderID:   p.GatewayOrderID,
		GatewayPaymentID: p.GatewayPaymentID,
		CreatedAt:        p.CreatedAt,
		PaidAt:           p.PaidAt,
	}
}

// MapSlice aplica f a cada elemento; nunca devuelve nil.
func MapSlice[E any, T any](in []E, f func(E) T) []T {
	out := make([]T, 0, len(in))
	for _, e := range in {
		out = append(out, f(e))
	}
	return out
}
