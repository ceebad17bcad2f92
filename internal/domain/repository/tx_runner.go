package repository

import "context"

// Repositories agrupa los repositorios atados a una misma transacción.
type Repositories struct {
	Users     UserRepository
	Customers CustomerProfileRepository
	Advisors  AdvisorRepository
	Vehicles  VehicleRepository
	Requests  ServiceRequestRepository
	Tracking  TrackingRepository
	Materials MaterialUsageRepository
	Inventory InventoryRepository
	Invoices  InvoiceRepository
	Payments  PaymentRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn retorna nil, Rollback en otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repositories) error) error
}
