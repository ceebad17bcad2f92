package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/servicecenter-api/internal/domain"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
)

var (
	_ repository.InventoryRepository = (*InventoryRepo)(nil)
	_ repository.InvoiceRepository   = (*InvoiceRepo)(nil)
	_ repository.PaymentRepository   = (*PaymentRepo)(nil)
)

// InventoryRepo ítems de inventario en memoria.
type InventoryRepo struct{ s *Store }

func (r *InventoryRepo) Create(_ context.Context, i *entity.InventoryItem) error {
	if i.CurrentStock < 0 {
		return domain.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.items[i.ID] = *i
	return nil
}

func (r *InventoryRepo) GetByID(_ context.Context, id string) (*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i, ok := r.s.data.items[id]
	if !ok {
		return nil, nil
	}
	return &i, nil
}

func (r *InventoryRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.GetByID(ctx, id)
}

func (r *InventoryRepo) Update(_ context.Context, i *entity.InventoryItem) error {
	if i.CurrentStock < 0 {
		return domain.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.items[i.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.data.items[i.ID] = *i
	return nil
}

func (r *InventoryRepo) DecrementStock(_ context.Context, id string, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.data.items[id]
	if !ok || i.CurrentStock < qty {
		return domain.ErrInsufficientStock
	}
	i.CurrentStock -= qty
	i.UpdatedAt = time.Now().UTC()
	r.s.data.items[id] = i
	return nil
}

func (r *InventoryRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.data.items, id)
	return nil
}

func (r *InventoryRepo) sorted(keep func(entity.InventoryItem) bool) []*entity.InventoryItem {
	var list []*entity.InventoryItem
	for _, i := range r.s.data.items {
		if keep(i) {
			list = append(list, ptr(i))
		}
	}
	slices.SortFunc(list, func(a, b *entity.InventoryItem) int { return strings.Compare(a.Name, b.Name) })
	return list
}

func (r *InventoryRepo) List(_ context.Context, limit, offset int) ([]*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return page(r.sorted(func(entity.InventoryItem) bool { return true }), limit, offset), nil
}

func (r *InventoryRepo) ListLowStock(_ context.Context) ([]*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.sorted(func(i entity.InventoryItem) bool { return i.CurrentStock <= i.ReorderLevel }), nil
}

// InvoiceRepo facturas en memoria (orden de inserción = orden de emisión).
type InvoiceRepo struct{ s *Store }

func (r *InvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.invoices {
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return domain.ErrDuplicate
		}
	}
	stored := *inv
	stored.Lines = slices.Clone(inv.Lines)
	r.s.data.invoices = append(r.s.data.invoices, stored)
	return nil
}

func (r *InvoiceRepo) find(keep func(entity.Invoice) bool) *entity.Invoice {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, inv := range r.s.data.invoices {
		if keep(inv) {
			return &inv
		}
	}
	return nil
}

func (r *InvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	return r.find(func(inv entity.Invoice) bool { return inv.ID == id }), nil
}

func (r *InvoiceRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r *InvoiceRepo) FindByRequestID(_ context.Context, requestID string) (*entity.Invoice, error) {
	return r.find(func(inv entity.Invoice) bool { return inv.RequestID == requestID }), nil
}

func (r *InvoiceRepo) newestFirst(keep func(entity.Invoice) bool, limit, offset int) []*entity.Invoice {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Invoice
	for i := len(r.s.data.invoices) - 1; i >= 0; i-- {
		if inv := r.s.data.invoices[i]; keep(inv) {
			list = append(list, ptr(inv))
		}
	}
	return page(list, limit, offset)
}

func (r *InvoiceRepo) ListByCustomer(_ context.Context, customerID string, limit, offset int) ([]*entity.Invoice, error) {
	return r.newestFirst(func(inv entity.Invoice) bool { return inv.CustomerID == customerID }, limit, offset), nil
}

func (r *InvoiceRepo) List(_ context.Context, status string, limit, offset int) ([]*entity.Invoice, error) {
	return r.newestFirst(func(inv entity.Invoice) bool { return status == "" || inv.Status == status }, limit, offset), nil
}

func (r *InvoiceRepo) MarkPaid(_ context.Context, id string, paidAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.data.invoices {
		inv := &r.s.data.invoices[i]
		if inv.ID != id {
			continue
		}
		inv.Status = entity.InvoicePaid
		if inv.PaidAt == nil {
			inv.PaidAt = &paidAt
		}
		return nil
	}
	return domain.ErrNotFound
}

func (r *InvoiceRepo) Summary(_ context.Context, from, to time.Time) (*repository.InvoiceSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	s := &repository.InvoiceSummary{PaidRevenue: decimal.Zero, UnpaidAmount: decimal.Zero}
	for _, inv := range r.s.data.invoices {
		switch {
		case inv.IsPaid() && inv.PaidAt != nil && !inv.PaidAt.Before(from) && inv.PaidAt.Before(to):
			s.PaidRevenue = s.PaidRevenue.Add(inv.GrandTotal)
			s.PaidCount++
		case !inv.IsPaid():
			s.UnpaidAmount = s.UnpaidAmount.Add(inv.GrandTotal)
			s.UnpaidCount++
		}
	}
	return s, nil
}

// PaymentRepo pagos en memoria.
type PaymentRepo struct{ s *Store }

func (r *PaymentRepo) Create(_ context.Context, p *entity.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.payments {
		if existing.GatewayOrderID == p.GatewayOrderID {
			return domain.ErrDuplicate
		}
	}
	r.s.data.payments = append(r.s.data.payments, *p)
	return nil
}

func (r *PaymentRepo) find(keep func(entity.Payment) bool) *entity.Payment {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.data.payments {
		if keep(p) {
			return &p
		}
	}
	return nil
}

func (r *PaymentRepo) GetByOrderID(_ context.Context, orderID string) (*entity.Payment, error) {
	return r.find(func(p entity.Payment) bool { return p.GatewayOrderID == orderID }), nil
}

func (r *PaymentRepo) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*entity.Payment, error) {
	return r.GetByOrderID(ctx, orderID)
}

func (r *PaymentRepo) FindOpenByInvoiceID(_ context.Context, invoiceID string) (*entity.Payment, error) {
	return r.find(func(p entity.Payment) bool {
		return p.InvoiceID != nil && *p.InvoiceID == invoiceID && p.Status == entity.PaymentCreated
	}), nil
}

func (r *PaymentRepo) MarkPaid(_ context.Context, id, gatewayPaymentID string, paidAt time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.data.payments {
		p := &r.s.data.payments[i]
		if p.ID != id {
			continue
		}
		if p.Status != entity.PaymentCreated {
			return false, nil
		}
		p.Status, p.GatewayPaymentID, p.PaidAt = entity.PaymentPaid, gatewayPaymentID, &paidAt
		return true, nil
	}
	return false, domain.ErrNotFound
}

func (r *PaymentRepo) List(_ context.Context, userID string, limit, offset int) ([]*entity.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Payment
	for i := len(r.s.data.payments) - 1; i >= 0; i-- {
		if p := r.s.data.payments[i]; userID == "" || p.UserID == userID {
			list = append(list, ptr(p))
		}
	}
	return page(list, limit, offset), nil
}
