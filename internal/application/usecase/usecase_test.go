package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/servicecenter-api/internal/application/apptest"
	"github.com/jhoicas/servicecenter-api/internal/application/dto"
	"github.com/jhoicas/servicecenter-api/internal/application/usecase"
	"github.com/jhoicas/servicecenter-api/internal/domain"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
	"github.com/jhoicas/servicecenter-api/internal/infrastructure/export"
	"github.com/jhoicas/servicecenter-api/pkg/logger"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func newService(f *apptest.Fixture) *usecase.ServiceUseCase {
	return usecase.NewServiceUseCase(f.Repos, f.Store, dec("600"), logger.NewNop())
}

// ── Cliente ──────────────────────────────────────────────────────────────────

func TestCreateVehicle_MatriculaDuplicada_RetornaDuplicate(t *testing.T) {
	f := apptest.New(t)
	uc := usecase.NewCustomerUseCase(f.Repos)
	a, _ := f.Customer("Asha", "asha@example.com")
	b, _ := f.Customer("Ravi", "ravi@example.com")
	ctx := context.Background()

	v, err := uc.CreateVehicle(ctx, a, dto.VehicleRequest{Brand: "Maruti", Model: "Swift", RegistrationNumber: "mh 12 ab 1234"})
	require.NoError(t, err)
	assert.Equal(t, "MH12AB1234", v.RegistrationNumber)
	assert.Equal(t, entity.VehicleCar, v.Category)

	_, err = uc.CreateVehicle(ctx, b, dto.VehicleRequest{Brand: "Honda", Model: "City", RegistrationNumber: "MH12AB1234"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreateVehicle_CategoriaInvalida(t *testing.T) {
	f := apptest.New(t)
	uc := usecase.NewCustomerUseCase(f.Repos)
	a, _ := f.Customer("Asha", "asha@example.com")

	_, err := uc.CreateVehicle(context.Background(), a, dto.VehicleRequest{Brand: "X", Model: "Y", RegistrationNumber: "AB1", Category: "boat"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVehiculoAjeno_NoEsVisible(t *testing.T) {
	f := apptest.New(t)
	uc := usecase.NewCustomerUseCase(f.Repos)
	a, _ := f.Customer("Asha", "asha@example.com")
	b, _ := f.Customer("Ravi", "ravi@example.com")
	ctx := context.Background()
	v, err := uc.CreateVehicle(ctx, a, dto.VehicleRequest{Brand: "Maruti", Model: "Swift", RegistrationNumber: "KA01"})
	require.NoError(t, err)

	_, err = uc.GetVehicle(ctx, b, v.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, uc.DeleteVehicle(ctx, b, v.ID), domain.ErrNotFound)

	_, err = uc.CreateServiceRequest(ctx, b, dto.CreateServiceRequestRequest{VehicleID: v.ID, ServiceType: "Oil Change"})
	assert.ErrorIs(t, err, domain.ErrNotFound, "no se puede pedir servicio para un vehículo ajeno")
}

func TestDeleteVehicle_SolicitudQuedaSinVehiculo(t *testing.T) {
	f := apptest.New(t)
	uc := usecase.NewCustomerUseCase(f.Repos)
	a, _ := f.Customer("Asha", "asha@example.com")
	ctx := context.Background()
	v, err := uc.CreateVehicle(ctx, a, dto.VehicleRequest{Brand: "Maruti", Model: "Swift", RegistrationNumber: "KA01"})
	require.NoError(t, err)
	req, err := uc.CreateServiceRequest(ctx, a, dto.CreateServiceRequestRequest{VehicleID: v.ID, ServiceType: "General Service"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusReceived, req.Status)

	require.NoError(t, uc.DeleteVehicle(ctx, a, v.ID))

	detail, err := uc.GetServiceRequest(ctx, a, req.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.VehicleID)
	assert.Nil(t, detail.Vehicle)
}

func TestUpdateProfile_SoloCamposInformados(t *testing.T) {
	f := apptest.New(t)
	uc := usecase.NewCustomerUseCase(f.Repos)
	a, user := f.Customer("Asha", "asha@example.com")

	out, err := uc.UpdateProfile(context.Background(), a, dto.UpdateCustomerProfileRequest{Address: ptr("MG Road 12"), PostalCode: ptr("411001")})
	require.NoError(t, err)
	assert.Equal(t, user.Name, out.Name)
	assert.Equal(t, "MG Road 12", out.Address)
	assert.Equal(t, "Pune", out.City)
	assert.Equal(t, "411001", out.PostalCode)

	_, err = uc.UpdateProfile(context.Background(), a, dto.UpdateCustomerProfileRequest{Name: ptr("  ")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// usersWithHook ejecuta hook (una vez) justo después de leer un usuario.
type usersWithHook struct {
	repository.UserRepository
	once *sync.Once
	hook func()
}

func (r usersWithHook) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := r.UserRepository.GetByID(ctx, id)
	r.once.Do(r.hook)
	return u, err
}

func TestUpdateProfile_NoPisaGastoNiMembresiaConcurrentes(t *testing.T) {
	f := apptest.New(t)
	ctx := context.Background()
	a, user := f.Customer("Asha", "asha@example.com")

	// un pago se aplica entre la lectura del perfil y su escritura
	repos := f.Repos
	repos.Users = usersWithHook{UserRepository: f.Repos.Users, once: &sync.Once{}, hook: func() {
		now := time.Now().UTC()
		require.NoError(t, f.Repos.Customers.AddTotalSpent(ctx, user.ID, dec("590"), now))
		premium := *user
		premium.ActivatePremium(now, 365)
		require.NoError(t, f.Repos.Users.UpdateMembership(ctx, &premium))
	}}
	uc := usecase.NewCustomerUseCase(repos)

	_, err := uc.UpdateProfile(ctx, a, dto.UpdateCustomerProfileRequest{Name: ptr("Asha K"), City: ptr("Mumbai")})
	require.NoError(t, err)

	p, err := f.Repos.Customers.GetByID(ctx, a.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, "590.00", p.TotalSpent.StringFixed(2))
	assert.Equal(t, "Mumbai", p.City)

	u, err := f.Repos.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha K", u.Name)
	assert.Equal(t, entity.MembershipPremium, u.MembershipType)
	assert.NotNil(t, u.MembershipEnd)
}

func TestListServiceRequests_SoloPropias(t *testing.T) {
	f := apptest.New(t)
	uc := usecase.NewCustomerUseCase(f.Repos)
	a, _ := f.Customer("Asha", "asha@example.com")
	b, _ := f.Customer("Ravi", "ravi@example.com")
	f.Request(a, "", "Oil Change", entity.StatusReceived)
	f.Request(a, "", "Brake Repair", entity.StatusCompleted)
	f.Request(b, "", "Wash", entity.StatusReceived)

	all, err := uc.ListServiceRequests(context.Background(), a, "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	done, err := uc.ListServiceRequests(context.Background(), a, "completed", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, done.Items, 1)
	assert.Equal(t, "Brake Repair", done.Items[0].ServiceType)

	_, err = uc.ListServiceRequests(context.Background(), a, "Delivered", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetCustomer_IncluyeVehiculos(t *testing.T) {
	f := apptest.New(t)
	uc := usecase.NewCustomerUseCase(f.Repos)
	a, _ := f.Customer("Asha", "asha@example.com")
	_, err := uc.CreateVehicle(context.Background(), a, dto.VehicleRequest{Brand: "Maruti", Model: "Swift", RegistrationNumber: "KA01"})
	require.NoError(t, err)

	detail, err := uc.GetCustomer(context.Background(), a.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", detail.Email)
	assert.Len(t, detail.Vehicles, 1)

	list, err := uc.ListCustomers(context.Background(), dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

// ── Asesor ───────────────────────────────────────────────────────────────────

func TestAddMaterial_DescuentaStockYRegistraSeguimiento(t *testing.T) {
	f := apptest.New(t)
	uc := newService(f)
	ctx := context.Background()
	cust, _ := f.Customer("Asha", "asha@example.com")
	adv := f.Advisor("Vikram", "vikram@example.com")
	req := f.Request(cust, adv.ProfileID, "Brake Repair", entity.StatusRepair)
	item := f.Item("Brake Pad", 5, "750")
	f.Labor(req.ID, 30, "300")

	usage, err := uc.AddMaterial(ctx, adv, req.ID, dto.AddMaterialRequest{ItemID: item.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, "1500.00", usage.Total.StringFixed(2))

	stored, err := f.Repos.Inventory.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.CurrentStock)

	latest, err := f.Repos.Tracking.GetLatest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "1500.00", latest.MaterialCost.StringFixed(2))
	assert.Equal(t, 30, latest.LaborMinutes, "la mano de obra vigente se conserva")
	assert.Equal(t, adv.ProfileID, latest.AdvisorID)
}

func TestAddMaterial_StockInsuficiente_NoModificaNada(t *testing.T) {
	f := apptest.New(t)
	uc := newService(f)
	ctx := context.Background()
	cust, _ := f.Customer("Asha", "asha@example.com")
	adv := f.Advisor("Vikram", "vikram@example.com")
	req := f.Request(cust, adv.ProfileID, "Brake Repair", entity.StatusRepair)
	item := f.Item("Brake Pad", 1, "750")

	_, err := uc.AddMaterial(ctx, adv, req.ID, dto.AddMaterialRequest{ItemID: item.ID, Quantity: 2})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	stored, _ := f.Repos.Inventory.GetByID(ctx, item.ID)
	assert.Equal(t, 1, stored.CurrentStock)
	usages, _ := f.Repos.Materials.ListByRequest(ctx, req.ID)
	assert.Empty(t, usages)
}

func TestAddMaterial_SolicitudNoAsignada_RetornaNotFound(t *testing.T) {
	f := apptest.New(t)
	uc := newService(f)
	cust, _ := f.Customer("Asha", "asha@example.com")
	adv := f.Advisor("Vikram", "vikram@example.com")
	req := f.Request(cust, "", "Brake Repair", entity.StatusRepair)
	item := f.Item("Brake Pad", 5, "750")

	_, err := uc.AddMaterial(context.Background(), adv, req.ID, dto.AddMaterialRequest{ItemID: item.ID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordLabor_CostoDesdeTarifa(t *testing.T) {
	f := apptest.New(t)
	uc := newService(f)
	cust, _ := f.Customer("Asha", "asha@example.com")
	adv := f.Advisor("Vikram", "vikram@example.com")
	req := f.Request(cust, adv.ProfileID, "Engine Repair", entity.StatusRepair)

	out, err := uc.RecordLabor(context.Background(), adv, req.ID, dto.RecordLaborRequest{Minutes: 45})
	require.NoError(t, err)
	assert.Equal(t, "450.00", out.LaborCost.StringFixed(2))

	out, err = uc.RecordLabor(context.Background(), adv, req.ID, dto.RecordLaborRequest{Minutes: 60, Cost: ptr(dec("999.50"))})
	require.NoError(t, err)
	assert.Equal(t, "999.50", out.LaborCost.StringFixed(2))
}

func TestRecordLaborYMaterial_SolicitudCompletada_RetornaInvalidState(t *testing.T) {
	f := apptest.New(t)
	uc := newService(f)
	cust, _ := f.Customer("Asha", "asha@example.com")
	adv := f.Advisor("Vikram", "vikram@example.com")
	req := f.Request(cust, adv.ProfileID, "Engine Repair", entity.StatusCompleted)
	item := f.Item("Oil", 5, "100")

	_, err := uc.RecordLabor(context.Background(), adv, req.ID, dto.RecordLaborRequest{Minutes: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = uc.AddMaterial(context.Background(), adv, req.ID, dto.AddMaterialRequest{ItemID: item.ID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestUpdateStatus_ConservaManoDeObra(t *testing.T) {
	f := apptest.New(t)
	uc := newService(f)
	ctx := context.Background()
	cust, _ := f.Customer("Asha", "asha@example.com")
	adv := f.Advisor("Vikram", "vikram@example.com")
	req := f.Request(cust, adv.ProfileID, "Engine Repair", entity.StatusReceived)
	f.Labor(req.ID, 90, "900")

	out, err := uc.UpdateStatus(ctx, adv, req.ID, dto.UpdateStatusRequest{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, out.Status)

	latest, err := f.Repos.Tracking.GetLatest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, latest.Status)
	assert.Equal(t, 90, latest.LaborMinutes)
	assert.Equal(t, "900.00", latest.LaborCost.StringFixed(2))

	_, err = uc.UpdateStatus(ctx, adv, req.ID, dto.UpdateStatusRequest{Status: "Delivered"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMarkDelivered_RequiereFactura(t *testing.T) {
	f := apptest.New(t)
	uc := newService(f)
	ctx := context.Background()
	cust, _ := f.Customer("Asha", "asha@example.com")
	adv := f.Advisor("Vikram", "vikram@example.com")

	pending := f.Request(cust, adv.ProfileID, "Wash", entity.StatusRepair)
	_, err := uc.MarkDelivered(ctx, adv, pending.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	req := f.Request(cust, adv.ProfileID, "Wash", entity.StatusCompleted)
	_, err = uc.MarkDelivered(ctx, adv, req.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, f.Repos.Invoices.Create(ctx, &entity.Invoice{
		ID: "inv-1", RequestID: req.ID, CustomerID: cust.UserID, InvoiceNumber: "INV-1", Status: entity.InvoiceUnpaid,
	}))
	out, err := uc.MarkDelivered(ctx, adv, req.ID)
	require.NoError(t, err)
	assert.NotNil(t, out.DeliveredAt)
}

func TestAssignAdvisor_AsesorInactivo(t *testing.T) {
	f := apptest.New(t)
	uc := newService(f)
	advisors := usecase.NewAdvisorUseCase(f.Repos, f.Store, &apptest.RecordingNotifier{}, logger.NewNop())
	ctx := context.Background()
	cust, _ := f.Customer("Asha", "asha@example.com")
	adv := f.Advisor("Vikram", "vikram@example.com")
	req := f.Request(cust, "", "Wash", entity.StatusReceived)

	out, err := uc.AssignAdvisor(ctx, req.ID, dto.AssignAdvisorRequest{AdvisorID: adv.ProfileID})
	require.NoError(t, err)
	require.NotNil(t, out.AdvisorID)
	assert.Equal(t, adv.ProfileID, *out.AdvisorID)

	assigned, err := uc.ListAssigned(ctx, adv, "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, assigned.Items, 1)

	_, err = advisors.Deactivate(ctx, adv.ProfileID)
	require.NoError(t, err)
	_, err = uc.AssignAdvisor(ctx, req.ID, dto.AssignAdvisorRequest{AdvisorID: adv.ProfileID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── Administración ───────────────────────────────────────────────────────────

func TestCreateAdvisor_EnviaCredenciales(t *testing.T) {
	f := apptest.New(t)
	n := &apptest.RecordingNotifier{}
	uc := usecase.NewAdvisorUseCase(f.Repos, f.Store, n, logger.NewNop())
	ctx := context.Background()

	out, err := uc.Create(ctx, dto.CreateAdvisorRequest{Name: "Meera", Email: "Meera@Example.com", Department: "Pintura"})
	require.NoError(t, err)
	assert.Equal(t, "meera@example.com", out.Email)
	assert.True(t, out.Active)

	sent := n.Last("credentials")
	require.NotNil(t, sent)
	assert.Len(t, sent.Detail, 12)

	_, err = uc.Create(ctx, dto.CreateAdvisorRequest{Name: "Otra", Email: "meera@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	list, err := uc.List(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

func TestInventory_CRUDYStockBajo(t *testing.T) {
	f := apptest.New(t)
	uc := usecase.NewInventoryUseCase(f.Repos.Inventory)
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.InventoryItemRequest{Name: "", UnitPrice: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	oil, err := uc.Create(ctx, dto.InventoryItemRequest{Name: "Engine Oil", CurrentStock: 10, UnitPrice: dec("450"), ReorderLevel: 3})
	require.NoError(t, err)
	assert.Equal(t, entity.StockIn, oil.StockStatus)

	updated, err := uc.Update(ctx, oil.ID, dto.InventoryItemRequest{Name: "Engine Oil", CurrentStock: 2, UnitPrice: dec("450"), ReorderLevel: 3})
	require.NoError(t, err)
	assert.Equal(t, entity.StockLow, updated.StockStatus)

	low, err := uc.LowStock(ctx)
	require.NoError(t, err)
	assert.Len(t, low, 1)

	require.NoError(t, uc.Delete(ctx, oil.ID))
	_, err = uc.GetByID(ctx, oil.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExport_GeneraXLSX(t *testing.T) {
	f := apptest.New(t)
	uc := usecase.NewExportUseCase(f.Repos, export.NewXLSXExporter())
	f.Item("Brake Pad", 5, "750")

	data, name, err := uc.Inventory(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, `^inventario-\d{8}\.xlsx$`, name)
	assert.Equal(t, "PK", string(data[:2]), "un XLSX es un zip")

	data, _, err = uc.Invoices(context.Background(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
