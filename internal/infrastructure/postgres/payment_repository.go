package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/servicecenter-api/internal/domain"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

const paymentColumns = `id, user_id, purpose, request_id, invoice_id, membership_type, amount, currency, status,
	gateway_order_id, gateway_payment_id, created_at, paid_at`

// PaymentRepo implementación de PaymentRepository.
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador.
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

func scanPayment(row interface{ Scan(...any) error }) (*entity.Payment, error) {
	var p entity.Payment
	if err := row.Scan(&p.ID, &p.UserID, &p.Purpose, &p.RequestID, &p.InvoiceID, &p.MembershipType, &p.Amount,
		&p.Currency, &p.Status, &p.GatewayOrderID, &p.GatewayPaymentID, &p.CreatedAt, &p.PaidAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	_, err := r.q.Exec(ctx, `INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.UserID, p.Purpose, p.RequestID, p.InvoiceID, p.MembershipType, p.Amount, p.Currency, p.Status,
		p.GatewayOrderID, p.GatewayPaymentID, p.CreatedAt, p.PaidAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *PaymentRepo) one(ctx context.Context, query string, args ...any) (*entity.Payment, error) {
	p, err := scanPayment(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

func (r *PaymentRepo) GetByOrderID(ctx context.Context, orderID string) (*entity.Payment, error) {
	return r.one(ctx, `SELECT `+paymentColumns+` FROM payments WHERE gateway_order_id = $1`, orderID)
}

func (r *PaymentRepo) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*entity.Payment, error) {
	return r.one(ctx, `SELECT `+paymentColumns+` FROM payments WHERE gateway_order_id = $1 FOR UPDATE`, orderID)
}

func (r *PaymentRepo) FindOpenByInvoiceID(ctx context.Context, invoiceID string) (*entity.Payment, error) {
	return r.one(ctx, `SELECT `+paymentColumns+` FROM payments WHERE invoice_id = $1 AND status = $2
		ORDER BY created_at LIMIT 1`, invoiceID, entity.PaymentCreated)
}

// MarkPaid transición condicional CREATED -> PAID; false si otra verificación ya la aplicó.
func (r *PaymentRepo) MarkPaid(ctx context.Context, id, gatewayPaymentID string, paidAt time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE payments SET status = $2, gateway_payment_id = $3, paid_at = $4
		WHERE id = $1 AND status = $5`, id, entity.PaymentPaid, gatewayPaymentID, paidAt, entity.PaymentCreated)
	if err != nil {
		return false, fmt.Errorf("mark payment paid: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// List userID vacío = todos los pagos (admin).
func (r *PaymentRepo) List(ctx context.Context, userID string, limit, offset int) ([]*entity.Payment, error) {
	limit, offset = pageArgs(limit, offset)
	rows, err := r.q.Query(ctx, `SELECT `+paymentColumns+` FROM payments
		WHERE ($1 = '' OR user_id::text = $1) ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
