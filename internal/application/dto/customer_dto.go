package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerProfileResponse perfil del cliente con los datos de su usuario.
type CustomerProfileResponse struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	City           string          `json:"city"`
	PostalCode     string          `json:"postal_code"`
	MembershipType string          `json:"membership_type"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
	CreatedAt      time.Time       `json:"created_at"`
}

// UpdateCustomerProfileRequest campos editables; los nil no se modifican.
type UpdateCustomerProfileRequest struct {
	Name       *string `json:"name,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Address    *string `json:"address,omitempty"`
	City       *string `json:"city,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
}

// CustomerDetailResponse vista de administración: perfil más vehículos.
type CustomerDetailResponse struct {
	CustomerProfileResponse
	Vehicles []VehicleResponse `json:"vehicles"`
}

// VehicleRequest alta/edición de vehículo.
type VehicleRequest struct {
	Brand              string `json:"brand" validate:"required"`
	Model              string `json:"model" validate:"required"`
	RegistrationNumber string `json:"registration_number" validate:"required"`
	Category           string `json:"category" validate:"omitempty,oneof=CAR BIKE TRUCK OTHER"`
	ManufactureYear    int    `json:"manufacture_year"`
}

// VehicleResponse salida de un vehículo.
type VehicleResponse struct {
	ID                 string    `json:"id"`
	CustomerID         string    `json:"customer_id"`
	Brand              string    `json:"brand"`
	Model              string    `json:"model"`
	RegistrationNumber string    `json:"registration_number"`
	Category           string    `json:"category"`
	ManufactureYear    int       `json:"manufacture_year"`
	CreatedAt          time.Time `json:"created_at"`
}

// MembershipResponse estado de la membresía del cliente.
type MembershipResponse struct {
	Type         string          `json:"type"` // efectiva (PREMIUM vencida = STANDARD)
	Start        *time.Time      `json:"start,omitempty"`
	End          *time.Time      `json:"end,omitempty"`
	PremiumPrice decimal.Decimal `json:"premium_price"`
	Currency     string          `json:"currency"`
	DurationDays int             `json:"duration_days"`
}
