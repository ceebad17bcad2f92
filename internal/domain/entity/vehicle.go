package entity

import (
	"strings"
	"time"
)

// Categorías de vehículo.
const (
	VehicleCar   = "CAR"
	VehicleBike  = "BIKE"
	VehicleTruck = "TRUCK"
	VehicleOther = "OTHER"
)

// Vehicle vehículo de un cliente.
type Vehicle struct {
	ID                 string
	CustomerID         string // CustomerProfile.ID
	Brand              string
	Model              string
	RegistrationNumber string // único
	Category           string
	ManufactureYear    int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NormalizeVehicleCategory devuelve la categoría en mayúsculas o "" si no es válida.
func NormalizeVehicleCategory(s string) string {
	switch c := strings.ToUpper(strings.TrimSpace(s)); c {
	case VehicleCar, VehicleBike, VehicleTruck, VehicleOther:
		return c
	case "":
		return VehicleCar
	default:
		return ""
	}
}

// NormalizeRegistration quita espacios y pasa a mayúsculas la matrícula.
func NormalizeRegistration(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}
