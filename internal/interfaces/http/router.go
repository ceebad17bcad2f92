package http

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	appanalytics "github.com/jhoicas/servicecenter-api/internal/application/analytics"
	"github.com/jhoicas/servicecenter-api/internal/application/auth"
	"github.com/jhoicas/servicecenter-api/internal/application/billing"
	"github.com/jhoicas/servicecenter-api/internal/application/dto"
	"github.com/jhoicas/servicecenter-api/internal/application/usecase"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	OTPUC       *auth.OTPUseCase
	CustomerUC  *usecase.CustomerUseCase
	ServiceUC   *usecase.ServiceUseCase
	AdvisorUC   *usecase.AdvisorUseCase
	InventoryUC *usecase.InventoryUseCase
	ExportUC    *usecase.ExportUseCase
	BillUC      *billing.BillUseCase
	PaymentUC   *billing.PaymentUseCase
	DashboardUC *appanalytics.DashboardUseCase
	JWTSecret   string

	// OTPRequestsPerMinute límite por IP de solicitudes de código; 0 lo desactiva.
	OTPRequestsPerMinute int
	// OTPVerifyPerMinute límite por IP y email de verificaciones de código; 0 lo desactiva.
	OTPVerifyPerMinute int
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público). Las rutas OTP se registran antes del grupo /api/customer para que
	// no pasen por su middleware.
	authHandler := NewAuthHandler(deps.AuthUC, deps.OTPUC)
	api.Post("/auth/login", authHandler.Login)
	api.Post("/customer/auth/request-otp", otpLimiter(deps.OTPRequestsPerMinute, ipKey), authHandler.RequestOTP)
	api.Post("/customer/auth/verify-otp", otpLimiter(deps.OTPVerifyPerMinute, ipEmailKey), authHandler.VerifyOTP)

	authRequired := AuthMiddleware(deps.JWTSecret)

	// Cliente
	customer := api.Group("/customer", authRequired, RequireRole(entity.RoleCustomer))
	customerHandler := NewCustomerHandler(deps.CustomerUC, deps.BillUC, deps.PaymentUC)
	customer.Get("/profile", customerHandler.GetProfile)
	customer.Put("/profile", customerHandler.UpdateProfile)
	customer.Post("/vehicles", customerHandler.CreateVehicle)
	customer.Get("/vehicles", customerHandler.ListVehicles)
	customer.Get("/vehicles/:id", customerHandler.GetVehicle)
	customer.Put("/vehicles/:id", customerHandler.UpdateVehicle)
	customer.Delete("/vehicles/:id", customerHandler.DeleteVehicle)
	customer.Post("/requests", customerHandler.CreateServiceRequest)
	customer.Get("/requests", customerHandler.ListServiceRequests)
	customer.Get("/requests/:id", customerHandler.GetServiceRequest)
	customer.Get("/requests/:id/tracking", customerHandler.ListTracking)
	customer.Get("/requests/:id/bill", customerHandler.GetBill)
	customer.Get("/requests/:id/invoice", customerHandler.GetRequestInvoice)
	customer.Get("/invoices", customerHandler.ListInvoices)
	customer.Get("/invoices/:id", customerHandler.GetInvoice)
	customer.Get("/invoices/:id/pdf", customerHandler.GetInvoicePDF)
	customer.Post("/invoices/:id/pay", customerHandler.CreateInvoiceOrder)
	customer.Post("/payments/verify", customerHandler.VerifyPayment)
	customer.Get("/payments", customerHandler.ListPayments)
	customer.Get("/membership", customerHandler.GetMembership)
	customer.Post("/membership/order", customerHandler.CreateMembershipOrder)

	inventoryHandler := NewInventoryHandler(deps.InventoryUC, deps.ExportUC)

	// Asesor (el admin también puede operar estas rutas)
	advisor := app.Group("/serviceAdvisor", authRequired, RequireRole(entity.RoleServiceAdvisor, entity.RoleAdmin))
	advisorHandler := NewServiceAdvisorHandler(deps.ServiceUC, deps.AdvisorUC, deps.BillUC)
	advisor.Get("/me", RequireRole(entity.RoleServiceAdvisor), advisorHandler.Me)
	advisor.Get("/requests", advisorHandler.ListAssigned)
	advisor.Get("/requests/:id", advisorHandler.GetRequest)
	advisor.Patch("/requests/:id/status", advisorHandler.UpdateStatus)
	advisor.Post("/requests/:id/labor", advisorHandler.RecordLabor)
	advisor.Post("/requests/:id/materials", advisorHandler.AddMaterial)
	advisor.Get("/requests/:id/materials", advisorHandler.ListMaterials)
	advisor.Get("/requests/:id/tracking", advisorHandler.ListTracking)
	advisor.Get("/requests/:id/bill", advisorHandler.GetBill)
	advisor.Post("/requests/:id/invoice", advisorHandler.GenerateInvoice)
	advisor.Post("/requests/:id/deliver", advisorHandler.MarkDelivered)
	advisor.Get("/inventory", inventoryHandler.List)
	advisor.Get("/inventory/:id", inventoryHandler.Get)

	// Admin
	admin := app.Group("/admin", authRequired, RequireRole(entity.RoleAdmin))
	adminHandler := NewAdminHandler(deps.AdvisorUC, deps.CustomerUC, deps.ServiceUC)
	admin.Post("/advisors", adminHandler.CreateAdvisor)
	admin.Get("/advisors", adminHandler.ListAdvisors)
	admin.Get("/advisors/:id", adminHandler.GetAdvisor)
	admin.Put("/advisors/:id", adminHandler.UpdateAdvisor)
	admin.Delete("/advisors/:id", adminHandler.DeactivateAdvisor)
	admin.Get("/customers", adminHandler.ListCustomers)
	admin.Get("/customers/:id", adminHandler.GetCustomer)
	admin.Get("/requests", adminHandler.ListRequests)
	admin.Get("/requests/:id", adminHandler.GetRequest)
	admin.Put("/requests/:id/assign", adminHandler.AssignAdvisor)

	// rutas fijas antes de /:id
	admin.Get("/inventory/low-stock", inventoryHandler.LowStock)
	admin.Get("/inventory/export", inventoryHandler.Export)
	admin.Post("/inventory", inventoryHandler.Create)
	admin.Get("/inventory", inventoryHandler.List)
	admin.Get("/inventory/:id", inventoryHandler.Get)
	admin.Put("/inventory/:id", inventoryHandler.Update)
	admin.Delete("/inventory/:id", inventoryHandler.Delete)

	invoiceHandler := NewInvoiceHandler(deps.BillUC, deps.PaymentUC, deps.ExportUC)
	admin.Get("/invoices/export", invoiceHandler.Export)
	admin.Get("/invoices", invoiceHandler.List)
	admin.Get("/invoices/:id", invoiceHandler.Get)
	admin.Get("/invoices/:id/pdf", invoiceHandler.GetPDF)
	admin.Get("/payments", invoiceHandler.ListPayments)

	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	admin.Get("/dashboard", dashboardHandler.GetSummary)
}

func otpLimiter(perMinute int, key func(*fiber.Ctx) string) fiber.Handler {
	if perMinute <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:          perMinute,
		Expiration:   time.Minute,
		KeyGenerator: key,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Code: "RATE_LIMITED", Message: "demasiadas solicitudes de código, intente más tarde"})
		},
	})
}

func ipKey(c *fiber.Ctx) string { return c.IP() }

// ipEmailKey agrupa por IP y email del cuerpo; un cuerpo ilegible cae en la clave de la IP.
func ipEmailKey(c *fiber.Ctx) string {
	var body struct {
		Email string `json:"email"`
	}
	_ = json.Unmarshal(c.Body(), &body)
	return c.IP() + "|" + strings.ToLower(strings.TrimSpace(body.Email))
}
