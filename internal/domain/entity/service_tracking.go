package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceTracking foto del avance de una solicitud (mano de obra y materiales).
// No es un ledger: la fila más reciente por RecordedAt es el estado actual.
type ServiceTracking struct {
	ID           string
	RequestID    string
	AdvisorID    string
	Status       string
	LaborMinutes int
	LaborCost    decimal.Decimal
	MaterialCost decimal.Decimal
	Notes        string
	RecordedAt   time.Time
}
