package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateAdvisorRequest alta de asesor; la contraseña se genera y se envía por correo.
type CreateAdvisorRequest struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone,omitempty"`
	Department     string `json:"department,omitempty"`
	Specialization string `json:"specialization,omitempty"`
}

// UpdateAdvisorRequest campos editables; los nil no se modifican.
type UpdateAdvisorRequest struct {
	Name           *string `json:"name,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Department     *string `json:"department,omitempty"`
	Specialization *string `json:"specialization,omitempty"`
	Active         *bool   `json:"active,omitempty"`
}

// AdvisorResponse asesor con los datos de su usuario.
type AdvisorResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Active         bool      `json:"active"`
	Department     string    `json:"department"`
	Specialization string    `json:"specialization"`
	CreatedAt      time.Time `json:"created_at"`
}

// DashboardResponse resumen del panel de administración.
type DashboardResponse struct {
	RequestsByStatus      map[string]int  `json:"requests_by_status"`
	TotalRequests         int             `json:"total_requests"`
	TotalCustomers        int             `json:"total_customers"`
	ActiveAdvisors        int             `json:"active_advisors"`
	LowStockItems         int             `json:"low_stock_items"`
	RevenueThisMonth      decimal.Decimal `json:"revenue_this_month"`
	PaidInvoicesThisMonth int             `json:"paid_invoices_this_month"`
	UnpaidInvoices        int             `json:"unpaid_invoices"`
	UnpaidAmount          decimal.Decimal `json:"unpaid_amount"`
	GeneratedAt           time.Time       `json:"generated_at"`
}
