// Package apptest datos semilla y dobles de prueba compartidos por los tests de casos de uso.
package apptest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/servicecenter-api/internal/application/dto"
	"github.com/jhoicas/servicecenter-api/internal/application/ports"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
	"github.com/jhoicas/servicecenter-api/internal/infrastructure/memory"
)

// Fixture store en memoria con helpers para sembrar datos.
type Fixture struct {
	T     *testing.T
	Store *memory.Store
	Repos repository.Repositories
}

// New crea un store vacío.
func New(t *testing.T) *Fixture {
	t.Helper()
	s := memory.NewStore()
	return &Fixture{T: t, Store: s, Repos: s.Repositories()}
}

// Customer crea un usuario cliente con su perfil y devuelve el actor correspondiente.
func (f *Fixture) Customer(name, email string) (dto.Actor, *entity.User) {
	f.T.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	u := &entity.User{
		ID: uuid.NewString(), Name: name, Email: email, Phone: "+919800000000",
		Role: entity.RoleCustomer, Active: true, MembershipType: entity.MembershipStandard,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(f.T, f.Repos.Users.Create(ctx, u))
	p := &entity.CustomerProfile{ID: uuid.NewString(), UserID: u.ID, City: "Pune", TotalSpent: decimal.Zero, CreatedAt: now, UpdatedAt: now}
	require.NoError(f.T, f.Repos.Customers.Create(ctx, p))
	return dto.Actor{UserID: u.ID, ProfileID: p.ID, Role: entity.RoleCustomer}, u
}

// Advisor crea un usuario asesor con su perfil.
func (f *Fixture) Advisor(name, email string) dto.Actor {
	f.T.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	u := &entity.User{
		ID: uuid.NewString(), Name: name, Email: email, PasswordHash: "x",
		Role: entity.RoleServiceAdvisor, Active: true, MembershipType: entity.MembershipStandard,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(f.T, f.Repos.Users.Create(ctx, u))
	p := &entity.ServiceAdvisorProfile{ID: uuid.NewString(), UserID: u.ID, Department: "Mecánica", CreatedAt: now, UpdatedAt: now}
	require.NoError(f.T, f.Repos.Advisors.Create(ctx, p))
	return dto.Actor{UserID: u.ID, ProfileID: p.ID, Role: entity.RoleServiceAdvisor}
}

// Admin actor administrador (sin fila de usuario: los casos de uso no la leen).
func Admin() dto.Actor {
	return dto.Actor{UserID: uuid.NewString(), Role: entity.RoleAdmin}
}

// Request crea una solicitud del cliente, asignada al asesor si advisorID no es vacío.
func (f *Fixture) Request(customer dto.Actor, advisorID, serviceType, status string) *entity.ServiceRequest {
	f.T.Helper()
	now := time.Now().UTC()
	r := &entity.ServiceRequest{
		ID: uuid.NewString(), CustomerID: customer.ProfileID, ServiceType: serviceType,
		Status: status, RequestedDate: now, CreatedAt: now, UpdatedAt: now,
	}
	if advisorID != "" {
		r.AdvisorID = &advisorID
	}
	require.NoError(f.T, f.Repos.Requests.Create(context.Background(), r))
	return r
}

// Item crea un ítem de inventario.
func (f *Fixture) Item(name string, stock int, price string) *entity.InventoryItem {
	f.T.Helper()
	now := time.Now().UTC()
	i := &entity.InventoryItem{
		ID: uuid.NewString(), Name: name, Category: "Repuestos", CurrentStock: stock,
		UnitPrice: decimal.RequireFromString(price), ReorderLevel: 2, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(f.T, f.Repos.Inventory.Create(context.Background(), i))
	return i
}

// Material registra un consumo directo (sin tocar stock).
func (f *Fixture) Material(requestID string, item *entity.InventoryItem, qty int) {
	f.T.Helper()
	require.NoError(f.T, f.Repos.Materials.Create(context.Background(), &entity.MaterialUsage{
		ID: uuid.NewString(), RequestID: requestID, ItemID: item.ID, ItemName: item.Name,
		Quantity: qty, UnitPrice: item.UnitPrice, UsedAt: time.Now().UTC(),
	}))
}

// Labor registra una fila de seguimiento con la mano de obra indicada.
func (f *Fixture) Labor(requestID string, minutes int, cost string) {
	f.T.Helper()
	require.NoError(f.T, f.Repos.Tracking.Create(context.Background(), &entity.ServiceTracking{
		ID: uuid.NewString(), RequestID: requestID, Status: entity.StatusRepair,
		LaborMinutes: minutes, LaborCost: decimal.RequireFromString(cost), MaterialCost: decimal.Zero,
		RecordedAt: time.Now().UTC(),
	}))
}

// SentMail notificación registrada por RecordingNotifier.
type SentMail struct {
	Kind   string // otp, credentials, invoice, receipt, membership
	To     string
	Detail string // código, contraseña, número de factura...
	HasPDF bool
}

var _ ports.Notifier = (*RecordingNotifier)(nil)

// RecordingNotifier guarda las notificaciones en lugar de enviarlas.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []SentMail
	Err  error
}

func (n *RecordingNotifier) add(m SentMail) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.sent = append(n.sent, m)
	return nil
}

// Sent copia de lo enviado hasta ahora.
func (n *RecordingNotifier) Sent() []SentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]SentMail, len(n.sent))
	copy(out, n.sent)
	return out
}

// Last última notificación del tipo indicado, o nil.
func (n *RecordingNotifier) Last(kind string) *SentMail {
	sent := n.Sent()
	for i := len(sent) - 1; i >= 0; i-- {
		if sent[i].Kind == kind {
			return &sent[i]
		}
	}
	return nil
}

func (n *RecordingNotifier) SendOTP(_ context.Context, to, code string, _ time.Duration) error {
	return n.add(SentMail{Kind: "otp", To: to, Detail: code})
}

func (n *RecordingNotifier) SendAdvisorCredentials(_ context.Context, to, _, password string) error {
	return n.add(SentMail{Kind: "credentials", To: to, Detail: password})
}

func (n *RecordingNotifier) SendInvoice(_ context.Context, to, _ string, inv *entity.Invoice, pdf []byte) error {
	return n.add(SentMail{Kind: "invoice", To: to, Detail: inv.InvoiceNumber, HasPDF: len(pdf) > 0})
}

func (n *RecordingNotifier) SendPaymentReceipt(_ context.Context, to, _ string, inv *entity.Invoice, _ string) error {
	return n.add(SentMail{Kind: "receipt", To: to, Detail: inv.InvoiceNumber})
}

func (n *RecordingNotifier) SendMembershipConfirmation(_ context.Context, to, _ string, _ decimal.Decimal, validUntil time.Time) error {
	return n.add(SentMail{Kind: "membership", To: to, Detail: validUntil.Format(time.DateOnly)})
}

// StaticPDF generador de PDF que devuelve bytes fijos.
type StaticPDF struct{ Err error }

func (p StaticPDF) GenerateInvoicePDF(_ context.Context, doc ports.InvoiceDocument) ([]byte, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	return []byte("%PDF-1.4 " + doc.Invoice.InvoiceNumber), nil
}

// RecordingPDF generador de PDF que guarda el último documento recibido.
type RecordingPDF struct {
	mu   sync.Mutex
	last *ports.InvoiceDocument
}

func (p *RecordingPDF) GenerateInvoicePDF(_ context.Context, doc ports.InvoiceDocument) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = &doc
	return []byte("%PDF-1.4 " + doc.Invoice.InvoiceNumber), nil
}

// Last último documento generado, o nil.
func (p *RecordingPDF) Last() *ports.InvoiceDocument {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
