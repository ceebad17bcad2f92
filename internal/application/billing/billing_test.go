package billing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/servicecenter-api/internal/application/apptest"
	"github.com/jhoicas/servicecenter-api/internal/application/billing"
	"github.com/jhoicas/servicecenter-api/internal/application/dto"
	"github.com/jhoicas/servicecenter-api/internal/domain"
	domainbilling "github.com/jhoicas/servicecenter-api/internal/domain/billing"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/infrastructure/payment"
	"github.com/jhoicas/servicecenter-api/pkg/logger"
)

type env struct {
	f        *apptest.Fixture
	notifier *apptest.RecordingNotifier
	bills    *billing.BillUseCase
	payments *billing.PaymentUseCase
}

func newEnv(t *testing.T) *env {
	f := apptest.New(t)
	n := &apptest.RecordingNotifier{}
	log := logger.NewNop()
	plan := billing.MembershipPlan{Price: decimal.RequireFromString("1999"), DurationDays: 365, Currency: "INR"}
	return &env{
		f:        f,
		notifier: n,
		bills:    billing.NewBillUseCase(f.Repos, f.Store, apptest.StaticPDF{}, n, domainbilling.DefaultRates(), log),
		payments: billing.NewPaymentUseCase(f.Repos, f.Store, payment.NewSimulatedGateway(), n, plan, log),
	}
}

func TestGetBill_SolicitudNoCompletada_RetornaInvalidState(t *testing.T) {
	e := newEnv(t)
	cust, _ := e.f.Customer("Asha", "asha@example.com")
	req := e.f.Request(cust, "", "Brake Repair", entity.StatusRepair)

	_, err := e.bills.GetBill(context.Background(), cust, req.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestGetBill_CalculaMaterialesYManoDeObra(t *testing.T) {
	e := newEnv(t)
	cust, _ := e.f.Customer("Asha", "asha@example.com")
	req := e.f.Request(cust, "", "Brake Repair", entity.StatusCompleted)
	e.f.Material(req.ID, e.f.Item("Brake Pad", 10, "750.00"), 2)
	e.f.Material(req.ID, e.f.Item("Brake Fluid", 10, "320.50"), 1)
	e.f.Labor(req.ID, 90, "900")

	bill, err := e.bills.GetBill(context.Background(), cust, req.ID)
	require.NoError(t, err)
	assert.Len(t, bill.Materials, 2)
	assert.Equal(t, "1820.50", bill.MaterialsTotal.StringFixed(2))
	assert.Equal(t, "900.00", bill.LaborTotal.StringFixed(2))
	assert.Equal(t, "3210.19", bill.GrandTotal.StringFixed(2))
	assert.Equal(t, 90, bill.LaborMinutes)
	assert.Equal(t, entity.MembershipStandard, bill.Membership)
}

func TestGetBill_OtroClienteNoVeLaSolicitud(t *testing.T) {
	e := newEnv(t)
	cust, _ := e.f.Customer("Asha", "asha@example.com")
	other, _ := e.f.Customer("Ravi", "ravi@example.com")
	req := e.f.Request(cust, "", "General Service", entity.StatusCompleted)

	_, err := e.bills.GetBill(context.Background(), other, req.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGenerateInvoice_EsIdempotente(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cust, user := e.f.Customer("Asha", "asha@example.com")
	req := e.f.Request(cust, "", "General Service", entity.StatusCompleted)

	first, err := e.bills.GenerateInvoice(ctx, cust, req.ID)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, entity.InvoiceUnpaid, first.Invoice.Status)
	assert.Equal(t, "590.00", first.Invoice.GrandTotal.StringFixed(2), "kit estándar 500 + 18% GST")
	assert.Regexp(t, `^INV-\d{8}-[0-9A-F]{6}$`, first.Invoice.InvoiceNumber)

	second, err := e.bills.GenerateInvoice(ctx, apptest.Admin(), req.ID)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Invoice.ID, second.Invoice.ID)

	e.bills.Wait()
	sent := e.notifier.Last("invoice")
	require.NotNil(t, sent, "se debe enviar la factura por correo")
	assert.Equal(t, user.Email, sent.To)
	assert.True(t, sent.HasPDF)
	assert.Len(t, e.notifier.Sent(), 1, "la segunda generación no reenvía el correo")
}

func TestGenerateInvoice_SolicitudNoCompletada_RetornaInvalidState(t *testing.T) {
	e := newEnv(t)
	cust, _ := e.f.Customer("Asha", "asha@example.com")
	req := e.f.Request(cust, "", "General Service", entity.StatusDiagnosis)

	_, err := e.bills.GenerateInvoice(context.Background(), cust, req.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestGenerateInvoice_FalloDelPDF_NoImpideLaFactura(t *testing.T) {
	f := apptest.New(t)
	n := &apptest.RecordingNotifier{}
	uc := billing.NewBillUseCase(f.Repos, f.Store, apptest.StaticPDF{Err: errors.New("boom")}, n, domainbilling.DefaultRates(), logger.NewNop())
	cust, _ := f.Customer("Asha", "asha@example.com")
	req := f.Request(cust, "", "General Service", entity.StatusCompleted)

	out, err := uc.GenerateInvoice(context.Background(), cust, req.ID)
	require.NoError(t, err)
	assert.True(t, out.Created)
	uc.Wait()
	sent := n.Last("invoice")
	require.NotNil(t, sent)
	assert.False(t, sent.HasPDF)
}

func TestGetInvoicePDF_DevuelveNombreDeArchivo(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cust, _ := e.f.Customer("Asha", "asha@example.com")
	req := e.f.Request(cust, "", "General Service", entity.StatusCompleted)
	gen, err := e.bills.GenerateInvoice(ctx, cust, req.ID)
	require.NoError(t, err)
	e.bills.Wait()

	pdf, name, err := e.bills.GetInvoicePDF(ctx, cust, gen.Invoice.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Equal(t, gen.Invoice.InvoiceNumber+".pdf", name)

	other, _ := e.f.Customer("Ravi", "ravi@example.com")
	_, _, err = e.bills.GetInvoicePDF(ctx, other, gen.Invoice.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetInvoicePDF_UsaLoGuardadoAlEmitir(t *testing.T) {
	f := apptest.New(t)
	pdf := &apptest.RecordingPDF{}
	bills := billing.NewBillUseCase(f.Repos, f.Store, pdf, &apptest.RecordingNotifier{}, domainbilling.DefaultRates(), logger.NewNop())
	ctx := context.Background()
	cust, user := f.Customer("Asha", "asha@example.com")
	req := f.Request(cust, "", "General Service", entity.StatusCompleted)
	gen, err := bills.GenerateInvoice(ctx, cust, req.ID)
	require.NoError(t, err)
	bills.Wait()

	// después de emitir: la solicitud vuelve a Repair, consume materiales y el cliente pasa a PREMIUM
	req.Status = entity.StatusRepair
	require.NoError(t, f.Repos.Requests.Update(ctx, req))
	f.Material(req.ID, f.Item("Spark Plug", 10, "300"), 2)
	premium := *user
	premium.ActivatePremium(time.Now().UTC(), 365)
	require.NoError(t, f.Repos.Users.UpdateMembership(ctx, &premium))

	_, _, err = bills.GetInvoicePDF(ctx, cust, gen.Invoice.ID)
	require.NoError(t, err)
	doc := pdf.Last()
	require.NotNil(t, doc)
	require.Len(t, doc.Invoice.Lines, 1)
	assert.Equal(t, domainbilling.DefaultMaterialName, doc.Invoice.Lines[0].Name)
	assert.Equal(t, "500.00", doc.Invoice.Lines[0].Total().StringFixed(2))
	assert.Equal(t, doc.Invoice.MaterialsTotal.StringFixed(2), doc.Invoice.Lines[0].Total().StringFixed(2),
		"las líneas impresas suman el total de materiales guardado")
	assert.Equal(t, "590.00", doc.Invoice.GrandTotal.StringFixed(2))
	assert.Equal(t, entity.MembershipStandard, doc.Invoice.Membership)
}

func generateInvoice(t *testing.T, e *env) (dto.Actor, *entity.User, dto.InvoiceResponse) {
	t.Helper()
	cust, user := e.f.Customer("Asha", "asha@example.com")
	req := e.f.Request(cust, "", "General Service", entity.StatusCompleted)
	gen, err := e.bills.GenerateInvoice(context.Background(), cust, req.ID)
	require.NoError(t, err)
	e.bills.Wait()
	return cust, user, gen.Invoice
}

func TestCreateInvoiceOrder_ReutilizaOrdenAbierta(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cust, _, inv := generateInvoice(t, e)

	o1, err := e.payments.CreateInvoiceOrder(ctx, cust, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.GrandTotal.String(), o1.Amount.String())
	assert.Equal(t, "rzp_test_simulated", o1.KeyID)

	o2, err := e.payments.CreateInvoiceOrder(ctx, cust, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, o1.OrderID, o2.OrderID)
}

func TestCreateInvoiceOrder_FacturaAjena_RetornaNotFound(t *testing.T) {
	e := newEnv(t)
	_, _, inv := generateInvoice(t, e)
	other, _ := e.f.Customer("Ravi", "ravi@example.com")

	_, err := e.payments.CreateInvoiceOrder(context.Background(), other, inv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "no revela que la factura existe")
}

func TestVerifyPayment_FirmaInvalida_NoModificaNada(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cust, _, inv := generateInvoice(t, e)
	order, err := e.payments.CreateInvoiceOrder(ctx, cust, inv.ID)
	require.NoError(t, err)

	_, err = e.payments.VerifyPayment(ctx, cust, dto.VerifyPaymentRequest{OrderID: order.OrderID, PaymentID: "pay_1", Signature: "bad"})
	assert.ErrorIs(t, err, domain.ErrPaymentVerification)

	stored, err := e.f.Repos.Invoices.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceUnpaid, stored.Status)
}

func TestVerifyPayment_MarcaFacturaPagadaYSumaGasto(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cust, user, inv := generateInvoice(t, e)
	order, err := e.payments.CreateInvoiceOrder(ctx, cust, inv.ID)
	require.NoError(t, err)

	sig := payment.Sign(payment.SimulatedGatewaySecret, order.OrderID, "pay_1")
	out, err := e.payments.VerifyPayment(ctx, cust, dto.VerifyPaymentRequest{OrderID: order.OrderID, PaymentID: "pay_1", Signature: sig})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPaid, out.Status)

	stored, err := e.f.Repos.Invoices.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoicePaid, stored.Status)
	assert.NotNil(t, stored.PaidAt)

	profile, err := e.f.Repos.Customers.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "590.00", profile.TotalSpent.StringFixed(2))

	// repetir la verificación no vuelve a sumar
	_, err = e.payments.VerifyPayment(ctx, cust, dto.VerifyPaymentRequest{OrderID: order.OrderID, PaymentID: "pay_1", Signature: sig})
	require.NoError(t, err)
	profile, _ = e.f.Repos.Customers.GetByUserID(ctx, user.ID)
	assert.Equal(t, "590.00", profile.TotalSpent.StringFixed(2))

	e.payments.Wait()
	assert.NotNil(t, e.notifier.Last("receipt"))

	_, err = e.payments.CreateInvoiceOrder(ctx, cust, inv.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "una factura pagada no admite nuevas órdenes")
}

func TestVerifyPayment_MembresiaActivaPremium(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cust, user := e.f.Customer("Asha", "asha@example.com")

	order, err := e.payments.CreateMembershipOrder(ctx, cust)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPurposeMembership, order.Purpose)
	assert.Equal(t, "1999", order.Amount.String())

	sig := payment.Sign(payment.SimulatedGatewaySecret, order.OrderID, "pay_m")
	_, err = e.payments.VerifyPayment(ctx, cust, dto.VerifyPaymentRequest{OrderID: order.OrderID, PaymentID: "pay_m", Signature: sig})
	require.NoError(t, err)
	e.payments.Wait()

	m, err := e.payments.GetMembership(ctx, cust)
	require.NoError(t, err)
	assert.Equal(t, entity.MembershipPremium, m.Type)
	require.NotNil(t, m.End)

	stored, _ := e.f.Repos.Users.GetByID(ctx, user.ID)
	assert.Equal(t, entity.MembershipPremium, stored.MembershipType)
	assert.NotNil(t, e.notifier.Last("membership"))

	// con PREMIUM vigente el total lleva descuento
	req := e.f.Request(cust, "", "General Service", entity.StatusCompleted)
	bill, err := e.bills.GetBill(ctx, cust, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "50.00", bill.Discount.StringFixed(2))
	assert.Equal(t, "531.00", bill.GrandTotal.StringFixed(2))
}

func TestListPayments_ClienteSoloVeLosSuyos(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a, _ := e.f.Customer("Asha", "asha@example.com")
	b, _ := e.f.Customer("Ravi", "ravi@example.com")
	_, err := e.payments.CreateMembershipOrder(ctx, a)
	require.NoError(t, err)
	_, err = e.payments.CreateMembershipOrder(ctx, b)
	require.NoError(t, err)

	mine, err := e.payments.ListPayments(ctx, a, b.UserID, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, a.UserID, mine.Items[0].UserID)

	all, err := e.payments.ListPayments(ctx, apptest.Admin(), "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
}

// gatedGateway retiene VerifySignature hasta que llegan todas las llamadas esperadas,
// de modo que las verificaciones compiten por aplicar el mismo pago.
type gatedGateway struct {
	*payment.SimulatedGateway
	arrived sync.WaitGroup
}

func newGatedGateway(calls int) *gatedGateway {
	g := &gatedGateway{SimulatedGateway: payment.NewSimulatedGateway()}
	g.arrived.Add(calls)
	return g
}

func (g *gatedGateway) VerifySignature(orderID, paymentID, signature string) bool {
	g.arrived.Done()
	g.arrived.Wait()
	return g.SimulatedGateway.VerifySignature(orderID, paymentID, signature)
}

func verifyInParallel(t *testing.T, uc *billing.PaymentUseCase, actor dto.Actor, in dto.VerifyPaymentRequest, calls int) {
	t.Helper()
	var wg sync.WaitGroup
	errs := make([]error, calls)
	for i := range calls {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.VerifyPayment(context.Background(), actor, in)
		}(i)
	}
	wg.Wait()
	uc.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
}

func countMails(n *apptest.RecordingNotifier, kind string) int {
	c := 0
	for _, m := range n.Sent() {
		if m.Kind == kind {
			c++
		}
	}
	return c
}

func TestVerifyPayment_MembresiaConcurrente_SeAplicaUnaVez(t *testing.T) {
	f := apptest.New(t)
	n := &apptest.RecordingNotifier{}
	plan := billing.MembershipPlan{Price: decimal.RequireFromString("1999"), DurationDays: 365, Currency: "INR"}
	uc := billing.NewPaymentUseCase(f.Repos, f.Store, newGatedGateway(2), n, plan, logger.NewNop())
	ctx := context.Background()
	cust, user := f.Customer("Asha", "asha@example.com")

	order, err := uc.CreateMembershipOrder(ctx, cust)
	require.NoError(t, err)
	sig := payment.Sign(payment.SimulatedGatewaySecret, order.OrderID, "pay_m")
	verifyInParallel(t, uc, cust, dto.VerifyPaymentRequest{OrderID: order.OrderID, PaymentID: "pay_m", Signature: sig}, 2)

	stored, err := f.Repos.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.MembershipStart)
	require.NotNil(t, stored.MembershipEnd)
	days := stored.MembershipEnd.Sub(*stored.MembershipStart).Hours() / 24
	assert.InDelta(t, 365, days, 0.01, "una compra de 365 días no se duplica")
	assert.Equal(t, 1, countMails(n, "membership"))
}

func TestVerifyPayment_FacturaConcurrente_SumaGastoUnaVez(t *testing.T) {
	f := apptest.New(t)
	n := &apptest.RecordingNotifier{}
	log := logger.NewNop()
	plan := billing.MembershipPlan{Price: decimal.RequireFromString("1999"), DurationDays: 365, Currency: "INR"}
	bills := billing.NewBillUseCase(f.Repos, f.Store, apptest.StaticPDF{}, n, domainbilling.DefaultRates(), log)
	uc := billing.NewPaymentUseCase(f.Repos, f.Store, newGatedGateway(3), n, plan, log)
	ctx := context.Background()

	cust, user := f.Customer("Asha", "asha@example.com")
	req := f.Request(cust, "", "General Service", entity.StatusCompleted)
	gen, err := bills.GenerateInvoice(ctx, cust, req.ID)
	require.NoError(t, err)
	bills.Wait()
	order, err := uc.CreateInvoiceOrder(ctx, cust, gen.Invoice.ID)
	require.NoError(t, err)

	sig := payment.Sign(payment.SimulatedGatewaySecret, order.OrderID, "pay_1")
	verifyInParallel(t, uc, cust, dto.VerifyPaymentRequest{OrderID: order.OrderID, PaymentID: "pay_1", Signature: sig}, 3)

	profile, err := f.Repos.Customers.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "590.00", profile.TotalSpent.StringFixed(2))
	assert.Equal(t, 1, countMails(n, "receipt"))

	p, err := f.Repos.Payments.GetByOrderID(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPaid, p.Status)
	assert.Equal(t, "pay_1", p.GatewayPaymentID)
}
