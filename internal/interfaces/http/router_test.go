package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/servicecenter-api/internal/application/analytics"
	"github.com/jhoicas/servicecenter-api/internal/application/apptest"
	"github.com/jhoicas/servicecenter-api/internal/application/auth"
	"github.com/jhoicas/servicecenter-api/internal/application/billing"
	"github.com/jhoicas/servicecenter-api/internal/application/dto"
	"github.com/jhoicas/servicecenter-api/internal/application/usecase"
	domainbilling "github.com/jhoicas/servicecenter-api/internal/domain/billing"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/infrastructure/export"
	"github.com/jhoicas/servicecenter-api/internal/infrastructure/memory"
	"github.com/jhoicas/servicecenter-api/internal/infrastructure/payment"
	apphttp "github.com/jhoicas/servicecenter-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/servicecenter-api/pkg/jwt"
	"github.com/jhoicas/servicecenter-api/pkg/logger"
)

type apiEnv struct {
	app      *fiber.App
	f        *apptest.Fixture
	notifier *apptest.RecordingNotifier
	bills    *billing.BillUseCase
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	f := apptest.New(t)
	n := &apptest.RecordingNotifier{}
	log := logger.NewNop()
	jwtCfg := auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}
	plan := billing.MembershipPlan{Price: decimal.RequireFromString("1999"), DurationDays: 365, Currency: "INR"}

	otp := auth.NewOTPUseCase(memory.NewOTPStore(0), f.Repos.Users, f.Store, n, jwtCfg, auth.OTPConfig{TTL: time.Minute, MaxAttempts: 3}, log).
		WithGenerator(func() (string, error) { return "123456", nil })
	bills := billing.NewBillUseCase(f.Repos, f.Store, apptest.StaticPDF{}, n, domainbilling.DefaultRates(), log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      auth.NewAuthUseCase(f.Repos.Users, f.Repos.Advisors, jwtCfg),
		OTPUC:       otp,
		CustomerUC:  usecase.NewCustomerUseCase(f.Repos),
		ServiceUC:   usecase.NewServiceUseCase(f.Repos, f.Store, decimal.NewFromInt(600), log),
		AdvisorUC:   usecase.NewAdvisorUseCase(f.Repos, f.Store, n, log),
		InventoryUC: usecase.NewInventoryUseCase(f.Repos.Inventory),
		ExportUC:    usecase.NewExportUseCase(f.Repos, export.NewXLSXExporter()),
		BillUC:      bills,
		PaymentUC:   billing.NewPaymentUseCase(f.Repos, f.Store, payment.NewSimulatedGateway(), n, plan, log),
		DashboardUC: appanalytics.NewDashboardUseCase(f.Repos, memory.NewCache(), 0, log),
		JWTSecret:   testJWTSecret,

		OTPRequestsPerMinute: 2,
		OTPVerifyPerMinute:   4,
	})
	return &apiEnv{app: app, f: f, notifier: n, bills: bills}
}

func (e *apiEnv) call(t *testing.T, method, path string, a *dto.Actor, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a != nil {
		req.Header.Set("Authorization", tokenFor(t, pkgjwt.Identity{UserID: a.UserID, ProfileID: a.ProfileID, Role: a.Role}))
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestRouter_OTPRegistraClienteYDevuelve201(t *testing.T) {
	e := newAPI(t)

	resp := e.call(t, http.MethodPost, "/api/customer/auth/request-otp", nil, dto.RequestOTPRequest{Email: "neha@example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = e.call(t, http.MethodPost, "/api/customer/auth/verify-otp", nil, dto.VerifyOTPRequest{Email: "neha@example.com", Code: "123456", Name: "Neha"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[dto.VerifyOTPResponse](t, resp)
	assert.True(t, out.Registered)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, entity.RoleCustomer, out.User.Role)
}

func TestRouter_OTPCodigoIncorrecto_Retorna401(t *testing.T) {
	e := newAPI(t)
	resp := e.call(t, http.MethodPost, "/api/customer/auth/request-otp", nil, dto.RequestOTPRequest{Email: "neha@example.com"})
	resp.Body.Close()

	resp = e.call(t, http.MethodPost, "/api/customer/auth/verify-otp", nil, dto.VerifyOTPRequest{Email: "neha@example.com", Code: "000000"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "OTP_INVALID", body.Code)
}

func TestRouter_OTPLimitePorMinuto_Retorna429(t *testing.T) {
	e := newAPI(t)
	for i := 0; i < 2; i++ {
		resp := e.call(t, http.MethodPost, "/api/customer/auth/request-otp", nil, dto.RequestOTPRequest{Email: "neha@example.com"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}
	resp := e.call(t, http.MethodPost, "/api/customer/auth/request-otp", nil, dto.RequestOTPRequest{Email: "neha@example.com"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestRouter_VerifyOTPLimitePorIPYEmail_Retorna429(t *testing.T) {
	e := newAPI(t)
	guess := dto.VerifyOTPRequest{Email: "neha@example.com", Code: "000000"}
	for i := 0; i < 4; i++ {
		resp := e.call(t, http.MethodPost, "/api/customer/auth/verify-otp", nil, guess)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}
	resp := e.call(t, http.MethodPost, "/api/customer/auth/verify-otp", nil, guess)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	resp.Body.Close()

	resp = e.call(t, http.MethodPost, "/api/customer/auth/verify-otp", nil, dto.VerifyOTPRequest{Email: "otro@example.com", Code: "000000"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "otro email tiene su propio contador")
}

func TestRouter_ClienteNoAccedeAAdmin(t *testing.T) {
	e := newAPI(t)
	cust, _ := e.f.Customer("Asha", "asha@example.com")

	resp := e.call(t, http.MethodGet, "/admin/dashboard", &cust, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRouter_VehiculoDuplicado_Retorna409(t *testing.T) {
	e := newAPI(t)
	cust, _ := e.f.Customer("Asha", "asha@example.com")
	in := dto.VehicleRequest{Brand: "Maruti", Model: "Swift", RegistrationNumber: "mh12ab1234"}

	resp := e.call(t, http.MethodPost, "/api/customer/vehicles", &cust, in)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	v := decode[dto.VehicleResponse](t, resp)
	assert.Equal(t, "MH12AB1234", v.RegistrationNumber)

	resp = e.call(t, http.MethodPost, "/api/customer/vehicles", &cust, in)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRouter_GenerarFacturaSinCompletar_Retorna409(t *testing.T) {
	e := newAPI(t)
	cust, _ := e.f.Customer("Asha", "asha@example.com")
	adv := e.f.Advisor("Ravi", "ravi@example.com")
	req := e.f.Request(cust, adv.ProfileID, "Oil Change", entity.StatusRepair)

	resp := e.call(t, http.MethodPost, "/serviceAdvisor/requests/"+req.ID+"/invoice", &adv, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INVALID_STATE", body.Code)
}

func TestRouter_FlujoCompletoHastaEntrega(t *testing.T) {
	e := newAPI(t)
	t.Cleanup(e.bills.Wait)
	admin := apptest.Admin()
	cust, _ := e.f.Customer("Asha", "asha@example.com")
	adv := e.f.Advisor("Ravi", "ravi@example.com")
	item := e.f.Item("Oil Filter", 5, "250.00")

	// cliente crea la solicitud
	resp := e.call(t, http.MethodPost, "/api/customer/requests", &cust, dto.CreateServiceRequestRequest{ServiceType: "Oil Change"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sr := decode[dto.ServiceRequestResponse](t, resp)
	assert.Equal(t, entity.StatusReceived, sr.Status)

	// una solicitud no asignada no existe para el asesor
	resp = e.call(t, http.MethodGet, "/serviceAdvisor/requests/"+sr.ID, &adv, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// admin asigna
	resp = e.call(t, http.MethodPut, "/admin/requests/"+sr.ID+"/assign", &admin, dto.AssignAdvisorRequest{AdvisorID: adv.ProfileID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// consumo por encima del stock
	resp = e.call(t, http.MethodPost, "/serviceAdvisor/requests/"+sr.ID+"/materials", &adv, dto.AddMaterialRequest{ItemID: item.ID, Quantity: 6})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)

	resp = e.call(t, http.MethodPost, "/serviceAdvisor/requests/"+sr.ID+"/materials", &adv, dto.AddMaterialRequest{ItemID: item.ID, Quantity: 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = e.call(t, http.MethodPost, "/serviceAdvisor/requests/"+sr.ID+"/labor", &adv, dto.RecordLaborRequest{Minutes: 60})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// entregar antes de completar
	resp = e.call(t, http.MethodPost, "/serviceAdvisor/requests/"+sr.ID+"/deliver", &adv, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = e.call(t, http.MethodPatch, "/serviceAdvisor/requests/"+sr.ID+"/status", &adv, dto.UpdateStatusRequest{Status: entity.StatusCompleted})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// primera emisión 201, segunda 200 con la misma factura
	resp = e.call(t, http.MethodPost, "/serviceAdvisor/requests/"+sr.ID+"/invoice", &adv, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	first := decode[dto.GenerateInvoiceResponse](t, resp)
	assert.True(t, first.Created)

	resp = e.call(t, http.MethodPost, "/serviceAdvisor/requests/"+sr.ID+"/invoice", &adv, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := decode[dto.GenerateInvoiceResponse](t, resp)
	assert.False(t, second.Created)
	assert.Equal(t, first.Invoice.InvoiceNumber, second.Invoice.InvoiceNumber)

	// el cliente descarga el PDF
	resp = e.call(t, http.MethodGet, "/api/customer/invoices/"+first.Invoice.ID+"/pdf", &cust, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), first.Invoice.InvoiceNumber+".pdf")
	resp.Body.Close()

	resp = e.call(t, http.MethodPost, "/serviceAdvisor/requests/"+sr.ID+"/deliver", &adv, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	delivered := decode[dto.ServiceRequestResponse](t, resp)
	assert.NotNil(t, delivered.DeliveredAt)

	stored, err := e.f.Repos.Inventory.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.CurrentStock)
}

func TestRouter_ExportarInventario_DevuelveXLSX(t *testing.T) {
	e := newAPI(t)
	admin := apptest.Admin()
	e.f.Item("Oil Filter", 5, "250.00")

	resp := e.call(t, http.MethodGet, "/admin/inventory/export", &admin, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("PK")))
}

func TestRouter_ListadoConLimitInvalido_Retorna400(t *testing.T) {
	e := newAPI(t)
	admin := apptest.Admin()

	resp := e.call(t, http.MethodGet, "/admin/inventory?limit=abc", &admin, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_DashboardAdmin(t *testing.T) {
	e := newAPI(t)
	admin := apptest.Admin()
	e.f.Customer("Asha", "asha@example.com")
	e.f.Advisor("Ravi", "ravi@example.com")

	resp := e.call(t, http.MethodGet, "/admin/dashboard?refresh=true", &admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.DashboardResponse](t, resp)
	assert.Equal(t, 1, out.TotalCustomers)
	assert.Equal(t, 1, out.ActiveAdvisors)
}
