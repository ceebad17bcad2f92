// Package billing casos de uso de facturación de servicios completados y cobros.
package billing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/servicecenter-api/internal/application/dto"
	"github.com/jhoicas/servicecenter-api/internal/application/ports"
	"github.com/jhoicas/servicecenter-api/internal/domain"
	"github.com/jhoicas/servicecenter-api/internal/domain/billing"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
	"github.com/jhoicas/servicecenter-api/pkg/logger"
)

// BillUseCase calcula la factura de un servicio completado, la emite y genera su PDF.
type BillUseCase struct {
	repos    repository.Repositories
	tx       repository.TxRunner
	pdf      ports.InvoicePDFGenerator
	notifier ports.Notifier
	rates    billing.Rates
	log      *logger.Logger

	// tareas en segundo plano (PDF + correo) lanzadas tras emitir una factura
	bg sync.WaitGroup
}

// NewBillUseCase construye el caso de uso inyectando todas sus dependencias.
func NewBillUseCase(
	repos repository.Repositories,
	tx repository.TxRunner,
	pdf ports.InvoicePDFGenerator,
	notifier ports.Notifier,
	rates billing.Rates,
	log *logger.Logger,
) *BillUseCase {
	return &BillUseCase{
		repos:    repos,
		tx:       tx,
		pdf:      pdf,
		notifier: notifier,
		rates:    rates,
		log:      log.Component("billing"),
	}
}

// Wait espera las notificaciones de facturas en curso (shutdown y tests).
func (uc *BillUseCase) Wait() { uc.bg.Wait() }

// billContext datos de la solicitud que alimentan el cálculo y el PDF.
type billContext struct {
	request    *entity.ServiceRequest
	customer   *entity.CustomerProfile
	user       *entity.User
	vehicle    *entity.Vehicle
	bill       billing.Bill
	membership string
}

// loadParties cliente, usuario y vehículo de la solicitud (sin calcular la factura).
func loadParties(ctx context.Context, repos repository.Repositories, req *entity.ServiceRequest) (*billContext, error) {
	var err error
	bc := &billContext{request: req}
	bc.customer, err = repos.Customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("billing: leer cliente: %w", err)
	}
	if bc.customer == nil {
		return nil, fmt.Errorf("billing: cliente %s: %w", req.CustomerID, domain.ErrNotFound)
	}
	bc.user, err = repos.Users.GetByID(ctx, bc.customer.UserID)
	if err != nil {
		return nil, fmt.Errorf("billing: leer usuario: %w", err)
	}
	if bc.user == nil {
		return nil, fmt.Errorf("billing: usuario %s: %w", bc.customer.UserID, domain.ErrNotFound)
	}
	if req.VehicleID != nil {
		bc.vehicle, err = repos.Vehicles.GetByID(ctx, *req.VehicleID)
		if err != nil {
			return nil, fmt.Errorf("billing: leer vehículo: %w", err)
		}
	}
	return bc, nil
}

// loadBill lee materiales, seguimiento y membresía usando repos (pool o tx) y calcula la factura.
func (uc *BillUseCase) loadBill(ctx context.Context, repos repository.Repositories, req *entity.ServiceRequest, now time.Time) (*billContext, error) {
	usages, err := repos.Materials.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("billing: listar materiales: %w", err)
	}
	lines := make([]billing.MaterialLine, 0, len(usages))
	for _, u := range usages {
		lines = append(lines, billing.MaterialLine{ItemID: u.ItemID, Name: u.ItemName, Quantity: u.Quantity, UnitPrice: u.UnitPrice})
	}

	latest, err := repos.Tracking.GetLatest(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("billing: leer seguimiento: %w", err)
	}
	in := billing.Input{ServiceType: req.ServiceType, Materials: lines, LaborCost: decimal.Zero}
	if latest != nil {
		in.LaborMinutes = latest.LaborMinutes
		in.LaborCost = latest.LaborCost
	}

	bc, err := loadParties(ctx, repos, req)
	if err != nil {
		return nil, err
	}
	bc.membership = bc.user.EffectiveMembership(now)
	in.Membership = bc.membership
	bc.bill = billing.Calculate(in, uc.rates)
	return bc, nil
}

func (uc *BillUseCase) requestFor(ctx context.Context, actor dto.Actor, requestID string) (*entity.ServiceRequest, error) {
	req, err := uc.repos.Requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil || !actor.CanAccessRequest(req) {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

// GetBill calcula la factura sin persistirla. Solo para solicitudes Completed (ErrInvalidState si no).
func (uc *BillUseCase) GetBill(ctx context.Context, actor dto.Actor, requestID string) (*dto.BillResponse, error) {
	req, err := uc.requestFor(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	if !req.IsCompleted() {
		return nil, fmt.Errorf("%w: estado actual %s", domain.ErrInvalidState, req.Status)
	}
	bc, err := uc.loadBill(ctx, uc.repos, req, time.Now())
	if err != nil {
		return nil, err
	}
	return uc.toBillResponse(bc), nil
}

func (uc *BillUseCase) toBillResponse(bc *billContext) *dto.BillResponse {
	b := bc.bill
	lines := make([]dto.BillLineResponse, 0, len(b.Materials))
	for _, l := range b.Materials {
		lines = append(lines, dto.BillLineResponse{ItemID: l.ItemID, Name: l.Name, Quantity: l.Quantity, UnitPrice: l.UnitPrice, Total: l.Total()})
	}
	return &dto.BillResponse{
		RequestID:       bc.request.ID,
		ServiceType:     bc.request.ServiceType,
		Membership:      bc.membership,
		Materials:       lines,
		UsedDefaultItem: b.UsedDefaultItem,
		LaborMinutes:    b.LaborMinutes,
		MaterialsTotal:  b.MaterialsTotal,
		LaborTotal:      b.LaborTotal,
		Discount:        b.Discount,
		Subtotal:        b.Subtotal,
		Tax:             b.Tax,
		GrandTotal:      b.GrandTotal,
		GSTRate:         uc.rates.GST,
	}
}

// NewInvoiceNumber INV-YYYYMMDD-XXXXXX (6 hex).
func NewInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), suffix)
}

// GenerateInvoice emite la factura de una solicitud Completed. Es idempotente: la fila de la
// solicitud se bloquea (FOR UPDATE) y si ya existe una factura se devuelve con Created=false.
// Tras el commit el PDF y el correo se generan en segundo plano; sus fallos solo se registran.
func (uc *BillUseCase) GenerateInvoice(ctx context.Context, actor dto.Actor, requestID string) (*dto.GenerateInvoiceResponse, error) {
	var (
		inv     *entity.Invoice
		bc      *billContext
		created bool
	)
	err := uc.tx.Run(ctx, func(repos repository.Repositories) error {
		req, err := repos.Requests.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil || !actor.CanAccessRequest(req) {
			return domain.ErrNotFound
		}
		if !req.IsCompleted() {
			return fmt.Errorf("%w: estado actual %s", domain.ErrInvalidState, req.Status)
		}

		existing, err := repos.Invoices.FindByRequestID(ctx, req.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			inv = existing
			return nil
		}

		now := time.Now().UTC()
		bc, err = uc.loadBill(ctx, repos, req, now)
		if err != nil {
			return err
		}
		b := bc.bill
		lines := make([]entity.InvoiceLine, 0, len(b.Materials))
		for _, l := range b.Materials {
			lines = append(lines, entity.InvoiceLine{ItemID: l.ItemID, Name: l.Name, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
		}
		inv = &entity.Invoice{
			ID:             uuid.New().String(),
			RequestID:      req.ID,
			CustomerID:     bc.user.ID,
			InvoiceNumber:  NewInvoiceNumber(now),
			MaterialsTotal: b.MaterialsTotal,
			LaborTotal:     b.LaborTotal,
			Discount:       b.Discount,
			Subtotal:       b.Subtotal,
			Tax:            b.Tax,
			GrandTotal:     b.GrandTotal,
			Status:         entity.InvoiceUnpaid,
			IssuedAt:       now,
			Lines:          lines,
			LaborMinutes:   b.LaborMinutes,
			Membership:     bc.membership,
		}
		if err := repos.Invoices.Create(ctx, inv); err != nil {
			return fmt.Errorf("billing: crear factura: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		uc.log.Info().Str("invoice", inv.InvoiceNumber).Str("request_id", requestID).
			Str("grand_total", inv.GrandTotal.StringFixed(2)).Msg("factura emitida")
		invCopy := *inv
		uc.bg.Add(1)
		go func() {
			defer uc.bg.Done()
			uc.sendInvoice(context.WithoutCancel(ctx), &invCopy, bc)
		}()
	}
	return &dto.GenerateInvoiceResponse{Invoice: dto.FromInvoice(inv), Created: created}, nil
}

// sendInvoice best effort: un PDF fallido se envía sin adjunto.
func (uc *BillUseCase) sendInvoice(ctx context.Context, inv *entity.Invoice, bc *billContext) {
	pdf, err := uc.pdf.GenerateInvoicePDF(ctx, uc.document(inv, bc))
	if err != nil {
		uc.log.Error().Err(err).Str("invoice", inv.InvoiceNumber).Msg("no se pudo generar el PDF de la factura")
		pdf = nil
	}
	if err := uc.notifier.SendInvoice(ctx, bc.user.Email, bc.user.Name, inv, pdf); err != nil {
		uc.log.Warn().Err(err).Str("invoice", inv.InvoiceNumber).Msg("no se pudo encolar el correo de la factura")
	}
}

// document líneas, minutos y membresía salen de la factura guardada; bc solo aporta los
// datos de contacto y del vehículo.
func (uc *BillUseCase) document(inv *entity.Invoice, bc *billContext) ports.InvoiceDocument {
	doc := ports.InvoiceDocument{
		Invoice:       inv,
		CustomerName:  bc.user.Name,
		CustomerEmail: bc.user.Email,
		CustomerPhone: bc.user.Phone,
		ServiceType:   bc.request.ServiceType,
		GSTRate:       uc.rates.GST.Mul(decimal.NewFromInt(100)).String() + "%",
	}
	if bc.customer != nil {
		doc.Address = strings.Trim(strings.Join([]string{bc.customer.Address, bc.customer.City, bc.customer.PostalCode}, ", "), ", ")
	}
	if bc.vehicle != nil {
		doc.Vehicle = fmt.Sprintf("%s %s (%s)", bc.vehicle.Brand, bc.vehicle.Model, bc.vehicle.RegistrationNumber)
	}
	return doc
}

// GetInvoice devuelve una factura visible para el actor.
func (uc *BillUseCase) GetInvoice(ctx context.Context, actor dto.Actor, invoiceID string) (*dto.InvoiceResponse, error) {
	inv, _, err := uc.invoiceFor(ctx, actor, invoiceID)
	if err != nil {
		return nil, err
	}
	out := dto.FromInvoice(inv)
	return &out, nil
}

// GetInvoiceByRequest factura (la primera) de una solicitud visible para el actor.
func (uc *BillUseCase) GetInvoiceByRequest(ctx context.Context, actor dto.Actor, requestID string) (*dto.InvoiceResponse, error) {
	if _, err := uc.requestFor(ctx, actor, requestID); err != nil {
		return nil, err
	}
	inv, err := uc.repos.Invoices.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.FromInvoice(inv)
	return &out, nil
}

func (uc *BillUseCase) invoiceFor(ctx context.Context, actor dto.Actor, invoiceID string) (*entity.Invoice, *entity.ServiceRequest, error) {
	inv, err := uc.repos.Invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	if inv == nil {
		return nil, nil, domain.ErrNotFound
	}
	req, err := uc.repos.Requests.GetByID(ctx, inv.RequestID)
	if err != nil {
		return nil, nil, err
	}
	switch {
	case actor.IsAdmin():
	case actor.Role == entity.RoleCustomer && inv.CustomerID == actor.UserID:
	case req != nil && actor.CanAccessRequest(req):
	default:
		return nil, nil, domain.ErrNotFound
	}
	return inv, req, nil
}

// ListCustomerInvoices facturas del cliente, más recientes primero.
func (uc *BillUseCase) ListCustomerInvoices(ctx context.Context, actor dto.Actor, page dto.PageRequest) (dto.ListResponse[dto.InvoiceResponse], error) {
	page.DefaultPage()
	list, err := uc.repos.Invoices.ListByCustomer(ctx, actor.UserID, page.Limit, page.Offset)
	if err != nil {
		return dto.ListResponse[dto.InvoiceResponse]{}, err
	}
	return dto.NewListResponse(dto.MapSlice(list, dto.FromInvoice), page), nil
}

// ListInvoices listado de administración con filtro opcional de estado.
func (uc *BillUseCase) ListInvoices(ctx context.Context, status string, page dto.PageRequest) (dto.ListResponse[dto.InvoiceResponse], error) {
	page.DefaultPage()
	status = strings.ToUpper(strings.TrimSpace(status))
	if status != "" && status != entity.InvoicePaid && status != entity.InvoiceUnpaid {
		return dto.ListResponse[dto.InvoiceResponse]{}, fmt.Errorf("%w: estado de factura %q", domain.ErrInvalidInput, status)
	}
	list, err := uc.repos.Invoices.List(ctx, status, page.Limit, page.Offset)
	if err != nil {
		return dto.ListResponse[dto.InvoiceResponse]{}, err
	}
	return dto.NewListResponse(dto.MapSlice(list, dto.FromInvoice), page), nil
}

// GetInvoicePDF genera el PDF de una factura visible para el actor a partir de lo guardado
// al emitirla (materiales agregados después no aparecen).
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la factura no existe o no es visible para el actor.
func (uc *BillUseCase) GetInvoicePDF(ctx context.Context, actor dto.Actor, invoiceID string) ([]byte, string, error) {
	inv, req, err := uc.invoiceFor(ctx, actor, invoiceID)
	if err != nil {
		return nil, "", err
	}
	if req == nil {
		return nil, "", fmt.Errorf("pdf: solicitud %s de la factura: %w", inv.RequestID, domain.ErrNotFound)
	}
	bc, err := loadParties(ctx, uc.repos, req)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.pdf.GenerateInvoicePDF(ctx, uc.document(inv, bc))
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generar: %w", err)
	}
	return pdf, inv.InvoiceNumber + ".pdf", nil
}
