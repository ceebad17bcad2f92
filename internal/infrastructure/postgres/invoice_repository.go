package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/servicecenter-api/internal/domain"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `id, request_id, customer_id, invoice_number, materials_total, labor_total, discount,
	subtotal, tax, grand_total, status, issued_at, paid_at, labor_minutes, membership_type`

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

func scanInvoice(row interface{ Scan(...any) error }) (*entity.Invoice, error) {
	var i entity.Invoice
	if err := row.Scan(&i.ID, &i.RequestID, &i.CustomerID, &i.InvoiceNumber, &i.MaterialsTotal, &i.LaborTotal,
		&i.Discount, &i.Subtotal, &i.Tax, &i.GrandTotal, &i.Status, &i.IssuedAt, &i.PaidAt,
		&i.LaborMinutes, &i.Membership); err != nil {
		return nil, err
	}
	return &i, nil
}

// Create persiste la factura y sus líneas. Usar dentro de una tx.
func (r *InvoiceRepo) Create(ctx context.Context, i *entity.Invoice) error {
	_, err := r.q.Exec(ctx, `INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		i.ID, i.RequestID, i.CustomerID, i.InvoiceNumber, i.MaterialsTotal, i.LaborTotal, i.Discount,
		i.Subtotal, i.Tax, i.GrandTotal, i.Status, i.IssuedAt, i.PaidAt, i.LaborMinutes, i.Membership,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number already exists: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	for pos, l := range i.Lines {
		var itemID *string
		if l.ItemID != "" {
			itemID = &l.ItemID
		}
		if _, err := r.q.Exec(ctx, `
			INSERT INTO invoice_lines (invoice_id, position, item_id, item_name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			i.ID, pos, itemID, l.Name, l.Quantity, l.UnitPrice,
		); err != nil {
			return fmt.Errorf("insert invoice line: %w", err)
		}
	}
	return nil
}

func (r *InvoiceRepo) withLines(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error) {
	if inv == nil {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT COALESCE(item_id::text, ''), item_name, quantity, unit_price
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY position`, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.InvoiceLine
		if err := rows.Scan(&l.ItemID, &l.Name, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		inv.Lines = append(inv.Lines, l)
	}
	return inv, rows.Err()
}

func (r *InvoiceRepo) one(ctx context.Context, query string, args ...any) (*entity.Invoice, error) {
	i, err := scanInvoice(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return i, nil
}

// GetByID incluye las líneas; los listados no las cargan.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := r.one(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return r.withLines(ctx, inv)
}

func (r *InvoiceRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.one(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id)
}

// FindByRequestID primera factura emitida para la solicitud.
func (r *InvoiceRepo) FindByRequestID(ctx context.Context, requestID string) (*entity.Invoice, error) {
	inv, err := r.one(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE request_id = $1 ORDER BY issued_at, id LIMIT 1`, requestID)
	if err != nil {
		return nil, err
	}
	return r.withLines(ctx, inv)
}

func (r *InvoiceRepo) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*entity.Invoice, error) {
	limit, offset = pageArgs(limit, offset)
	return r.list(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE customer_id = $1
		ORDER BY issued_at DESC LIMIT $2 OFFSET $3`, customerID, limit, offset)
}

// List status vacío = todas.
func (r *InvoiceRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.Invoice, error) {
	limit, offset = pageArgs(limit, offset)
	return r.list(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE ($1 = '' OR status = $1)
		ORDER BY issued_at DESC LIMIT $2 OFFSET $3`, status, limit, offset)
}

func (r *InvoiceRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		i, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, i)
	}
	return list, rows.Err()
}

// MarkPaid es idempotente: una factura ya pagada conserva su paid_at.
func (r *InvoiceRepo) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE invoices SET status = $2, paid_at = COALESCE(paid_at, $3)
		WHERE id = $1`, id, entity.InvoicePaid, paidAt)
	if err != nil {
		return fmt.Errorf("mark invoice paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Summary ingresos pagados en [from, to) y saldo pendiente total.
func (r *InvoiceRepo) Summary(ctx context.Context, from, to time.Time) (*repository.InvoiceSummary, error) {
	var s repository.InvoiceSummary
	err := r.q.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(grand_total) FILTER (WHERE status = 'PAID' AND paid_at >= $1 AND paid_at < $2), 0),
			COUNT(*) FILTER (WHERE status = 'PAID' AND paid_at >= $1 AND paid_at < $2),
			COUNT(*) FILTER (WHERE status = 'UNPAID'),
			COALESCE(SUM(grand_total) FILTER (WHERE status = 'UNPAID'), 0)
		FROM invoices`, from, to,
	).Scan(&s.PaidRevenue, &s.PaidCount, &s.UnpaidCount, &s.UnpaidAmount)
	if err != nil {
		return nil, fmt.Errorf("invoice summary: %w", err)
	}
	return &s, nil
}
