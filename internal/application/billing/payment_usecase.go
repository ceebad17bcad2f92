package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/servicecenter-api/internal/application/dto"
	"github.com/jhoicas/servicecenter-api/internal/application/ports"
	"github.com/jhoicas/servicecenter-api/internal/domain"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
	"github.com/jhoicas/servicecenter-api/pkg/logger"
)

// MembershipPlan precio y duración de la membresía PREMIUM.
type MembershipPlan struct {
	Price        decimal.Decimal
	DurationDays int
	Currency     string
}

// PaymentUseCase órdenes de pago en la pasarela (factura o membresía) y su verificación.
type PaymentUseCase struct {
	repos    repository.Repositories
	tx       repository.TxRunner
	gateway  ports.PaymentGateway
	notifier ports.Notifier
	plan     MembershipPlan
	log      *logger.Logger
	now      func() time.Time
	bg       sync.WaitGroup
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(
	repos repository.Repositories,
	tx repository.TxRunner,
	gateway ports.PaymentGateway,
	notifier ports.Notifier,
	plan MembershipPlan,
	log *logger.Logger,
) *PaymentUseCase {
	if plan.Currency == "" {
		plan.Currency = "INR"
	}
	return &PaymentUseCase{
		repos:    repos,
		tx:       tx,
		gateway:  gateway,
		notifier: notifier,
		plan:     plan,
		log:      log.Component("payments"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Wait espera los correos de confirmación pendientes.
func (uc *PaymentUseCase) Wait() { uc.bg.Wait() }

// CreateInvoiceOrder abre (o reutiliza) una orden de pago por el total de una factura del cliente.
func (uc *PaymentUseCase) CreateInvoiceOrder(ctx context.Context, actor dto.Actor, invoiceID string) (*dto.CreateOrderResponse, error) {
	inv, err := uc.repos.Invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.CustomerID != actor.UserID {
		return nil, domain.ErrNotFound
	}
	if inv.IsPaid() {
		return nil, fmt.Errorf("%w: la factura %s ya está pagada", domain.ErrConflict, inv.InvoiceNumber)
	}

	open, err := uc.repos.Payments.FindOpenByInvoiceID(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	if open != nil && open.Amount.Equal(inv.GrandTotal) {
		return uc.orderResponse(open), nil
	}

	order, err := uc.gateway.CreateOrder(ctx, inv.GrandTotal, uc.plan.Currency, inv.InvoiceNumber)
	if err != nil {
		return nil, fmt.Errorf("payments: crear orden: %w", err)
	}
	invID, reqID := inv.ID, inv.RequestID
	p := &entity.Payment{
		ID:             uuid.New().String(),
		UserID:         actor.UserID,
		Purpose:        entity.PaymentPurposeInvoice,
		RequestID:      &reqID,
		InvoiceID:      &invID,
		Amount:         inv.GrandTotal,
		Currency:       uc.plan.Currency,
		Status:         entity.PaymentCreated,
		GatewayOrderID: order.ID,
		CreatedAt:      uc.now(),
	}
	if err := uc.repos.Payments.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("payments: guardar pago: %w", err)
	}
	uc.log.Info().Str("order_id", order.ID).Str("invoice", inv.InvoiceNumber).Msg("orden de pago creada")
	return uc.orderResponse(p), nil
}

// CreateMembershipOrder abre una orden por el precio de la membresía PREMIUM.
func (uc *PaymentUseCase) CreateMembershipOrder(ctx context.Context, actor dto.Actor) (*dto.CreateOrderResponse, error) {
	if actor.Role != entity.RoleCustomer {
		return nil, domain.ErrForbidden
	}
	if !uc.plan.Price.IsPositive() {
		return nil, fmt.Errorf("%w: precio de membresía no configurado", domain.ErrInvalidInput)
	}
	order, err := uc.gateway.CreateOrder(ctx, uc.plan.Price, uc.plan.Currency, "membership-"+actor.UserID[:min(8, len(actor.UserID))])
	if err != nil {
		return nil, fmt.Errorf("payments: crear orden: %w", err)
	}
	p := &entity.Payment{
		ID:             uuid.New().String(),
		UserID:         actor.UserID,
		Purpose:        entity.PaymentPurposeMembership,
		MembershipType: entity.MembershipPremium,
		Amount:         uc.plan.Price,
		Currency:       uc.plan.Currency,
		Status:         entity.PaymentCreated,
		GatewayOrderID: order.ID,
		CreatedAt:      uc.now(),
	}
	if err := uc.repos.Payments.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("payments: guardar pago: %w", err)
	}
	return uc.orderResponse(p), nil
}

func (uc *PaymentUseCase) orderResponse(p *entity.Payment) *dto.CreateOrderResponse {
	return &dto.CreateOrderResponse{
		PaymentID: p.ID,
		OrderID:   p.GatewayOrderID,
		Amount:    p.Amount,
		Currency:  p.Currency,
		KeyID:     uc.gateway.KeyID(),
		Purpose:   p.Purpose,
		InvoiceID: p.InvoiceID,
	}
}

// VerifyPayment valida la firma del checkout y aplica el pago: marca la factura pagada
// (y suma al total gastado del cliente) o activa la membresía. Una firma inválida no modifica nada.
// Verificar un pago ya aplicado lo devuelve sin cambios; con verificaciones concurrentes del mismo
// pago solo una lo aplica (fila del pago bloqueada y transición CREATED -> PAID condicional).
func (uc *PaymentUseCase) VerifyPayment(ctx context.Context, actor dto.Actor, in dto.VerifyPaymentRequest) (*dto.PaymentResponse, error) {
	if in.OrderID == "" || in.PaymentID == "" || in.Signature == "" {
		return nil, fmt.Errorf("%w: order_id, payment_id y signature son obligatorios", domain.ErrInvalidInput)
	}
	p, err := uc.repos.Payments.GetByOrderID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if p.UserID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	if !uc.gateway.VerifySignature(in.OrderID, in.PaymentID, in.Signature) {
		uc.log.Warn().Str("order_id", in.OrderID).Msg("firma de pago inválida")
		return nil, domain.ErrPaymentVerification
	}
	if p.Status == entity.PaymentPaid {
		out := dto.FromPayment(p)
		return &out, nil
	}

	var (
		inv     *entity.Invoice
		user    *entity.User
		applied bool
	)
	now := uc.now()
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		inv, user, applied = nil, nil, false
		locked, err := repos.Payments.GetByOrderIDForUpdate(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		p = locked
		if p.Status == entity.PaymentPaid {
			return nil
		}
		ok, err := repos.Payments.MarkPaid(ctx, p.ID, in.PaymentID, now)
		if err != nil {
			return fmt.Errorf("payments: actualizar pago: %w", err)
		}
		if !ok {
			return nil
		}
		p.Status, p.GatewayPaymentID, p.PaidAt = entity.PaymentPaid, in.PaymentID, &now
		applied = true

		user, err = repos.Users.GetByIDForUpdate(ctx, p.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("payments: usuario %s: %w", p.UserID, domain.ErrNotFound)
		}

		switch p.Purpose {
		case entity.PaymentPurposeInvoice:
			if p.InvoiceID == nil {
				return fmt.Errorf("%w: pago sin factura", domain.ErrConflict)
			}
			inv, err = repos.Invoices.GetByIDForUpdate(ctx, *p.InvoiceID)
			if err != nil {
				return err
			}
			if inv == nil {
				return fmt.Errorf("payments: factura %s: %w", *p.InvoiceID, domain.ErrNotFound)
			}
			if inv.IsPaid() {
				return nil
			}
			if err := repos.Invoices.MarkPaid(ctx, inv.ID, now); err != nil {
				return err
			}
			inv.Status, inv.PaidAt = entity.InvoicePaid, &now
			return repos.Customers.AddTotalSpent(ctx, user.ID, inv.GrandTotal, now)
		case entity.PaymentPurposeMembership:
			user.ActivatePremium(now, uc.plan.DurationDays)
			return repos.Users.UpdateMembership(ctx, user)
		default:
			return fmt.Errorf("%w: propósito de pago %q", domain.ErrInvalidInput, p.Purpose)
		}
	})
	if err != nil {
		return nil, err
	}

	if applied {
		uc.log.Info().Str("order_id", p.GatewayOrderID).Str("purpose", p.Purpose).Msg("pago verificado")
		uc.bg.Add(1)
		go func(p entity.Payment) {
			defer uc.bg.Done()
			uc.confirm(context.WithoutCancel(ctx), &p, inv, user)
		}(*p)
	}

	out := dto.FromPayment(p)
	return &out, nil
}

func (uc *PaymentUseCase) confirm(ctx context.Context, p *entity.Payment, inv *entity.Invoice, user *entity.User) {
	var err error
	switch {
	case p.Purpose == entity.PaymentPurposeInvoice && inv != nil:
		err = uc.notifier.SendPaymentReceipt(ctx, user.Email, user.Name, inv, p.GatewayPaymentID)
	case p.Purpose == entity.PaymentPurposeMembership && user.MembershipEnd != nil:
		err = uc.notifier.SendMembershipConfirmation(ctx, user.Email, user.Name, p.Amount, *user.MembershipEnd)
	}
	if err != nil {
		uc.log.Warn().Err(err).Str("order_id", p.GatewayOrderID).Msg("no se pudo encolar la confirmación de pago")
	}
}

// ListPayments pagos del actor (admin: todos, o de userID si se indica).
func (uc *PaymentUseCase) ListPayments(ctx context.Context, actor dto.Actor, userID string, page dto.PageRequest) (dto.ListResponse[dto.PaymentResponse], error) {
	page.DefaultPage()
	if !actor.IsAdmin() {
		userID = actor.UserID
	}
	list, err := uc.repos.Payments.List(ctx, userID, page.Limit, page.Offset)
	if err != nil {
		return dto.ListResponse[dto.PaymentResponse]{}, err
	}
	return dto.NewListResponse(dto.MapSlice(list, dto.FromPayment), page), nil
}

// GetMembership estado de la membresía del cliente y precio de la PREMIUM.
func (uc *PaymentUseCase) GetMembership(ctx context.Context, actor dto.Actor) (*dto.MembershipResponse, error) {
	u, err := uc.repos.Users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	now := uc.now()
	return &dto.MembershipResponse{
		Type:         u.EffectiveMembership(now),
		Start:        u.MembershipStart,
		End:          u.MembershipEnd,
		PremiumPrice: uc.plan.Price,
		Currency:     uc.plan.Currency,
		DurationDays: uc.plan.DurationDays,
	}, nil
}
