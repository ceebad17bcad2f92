package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	appanalytics "github.com/jhoicas/servicecenter-api/internal/application/analytics"
	"github.com/jhoicas/servicecenter-api/internal/application/auth"
	"github.com/jhoicas/servicecenter-api/internal/application/billing"
	"github.com/jhoicas/servicecenter-api/internal/application/ports"
	"github.com/jhoicas/servicecenter-api/internal/application/usecase"
	domainbilling "github.com/jhoicas/servicecenter-api/internal/domain/billing"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
	infraexport "github.com/jhoicas/servicecenter-api/internal/infrastructure/export"
	"github.com/jhoicas/servicecenter-api/internal/infrastructure/mail"
	"github.com/jhoicas/servicecenter-api/internal/infrastructure/memory"
	"github.com/jhoicas/servicecenter-api/internal/infrastructure/payment"
	infrapdf "github.com/jhoicas/servicecenter-api/internal/infrastructure/pdf"
	"github.com/jhoicas/servicecenter-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/servicecenter-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/servicecenter-api/internal/interfaces/http"
	"github.com/jhoicas/servicecenter-api/pkg/config"
	"github.com/jhoicas/servicecenter-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "dev-secret-change-me"
		log.Warn().Msg("JWT_SECRET vacío: usando secret de desarrollo")
	}

	ctx := context.Background()

	// Persistencia: PostgreSQL si está configurado, si no store en memoria.
	var (
		repos    repository.Repositories
		txRunner repository.TxRunner
	)
	if cfg.DB.Enabled() {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		repos = postgres.NewRepositories(pool)
		txRunner = postgres.NewTxRunner(pool)
	} else {
		store := memory.NewStore()
		repos = store.Repositories()
		txRunner = store
		log.Warn().Msg("sin base de datos configurada: usando store en memoria")
	}

	// OTP y caché del dashboard: Redis si está configurado.
	var (
		otpStore ports.OTPStore
		cache    ports.Cache = infraredis.NoopCache{}
	)
	if cfg.Redis.Addr != "" {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer func(c *goredis.Client) { _ = c.Close() }(client)
		otpStore = infraredis.NewOTPStore(client)
		cache = infraredis.NewCache(client, cfg.App.Name)
	} else {
		mem := memory.NewOTPStore(time.Minute)
		defer mem.Close()
		otpStore = mem
	}

	// Correo: SMTP si hay host, si no se registra en el log.
	var sender ports.MailSender = mail.NewLogSender(log)
	if cfg.SMTP.Host != "" {
		sender = mail.NewGomailSender(cfg.SMTP)
	}
	dispatcher := mail.NewDispatcher(sender, cfg.SMTP.Workers, cfg.SMTP.QueueSize, log)
	notifier := mail.NewNotifier(dispatcher, cfg.HTTP.APIBaseURL)

	var gateway ports.PaymentGateway = payment.NewSimulatedGateway()
	if cfg.Razorpay.KeyID != "" && cfg.Razorpay.KeySecret != "" {
		gateway = payment.NewRazorpayClient(cfg.Razorpay)
	} else {
		log.Warn().Msg("Razorpay sin credenciales: usando pasarela simulada")
	}

	rates := domainbilling.Rates{
		GST:             mustDecimal(log, "BILLING_GST_RATE", cfg.Billing.GSTRate),
		PremiumDiscount: mustDecimal(log, "BILLING_PREMIUM_DISCOUNT_RATE", cfg.Billing.PremiumDiscountRate),
	}
	plan := billing.MembershipPlan{
		Price:        mustDecimal(log, "MEMBERSHIP_PREMIUM_PRICE", cfg.Membership.PremiumPrice),
		DurationDays: cfg.Membership.DurationDays,
		Currency:     cfg.Billing.Currency,
	}
	laborRate := mustDecimal(log, "BILLING_LABOR_RATE_PER_HOUR", cfg.Billing.LaborRatePerHour)

	jwtCfg := auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}
	authUC := auth.NewAuthUseCase(repos.Users, repos.Advisors, jwtCfg)
	otpUC := auth.NewOTPUseCase(otpStore, repos.Users, txRunner, notifier, jwtCfg, auth.OTPConfig{
		TTL:         time.Duration(cfg.OTP.TTLSeconds) * time.Second,
		MaxAttempts: cfg.OTP.MaxAttempts,
	}, log)

	if created, err := authUC.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name); err != nil {
		log.Fatal().Err(err).Msg("crear administrador inicial")
	} else if created {
		log.Info().Str("email", cfg.Admin.Email).Msg("administrador inicial creado")
	}

	exportUC := usecase.NewExportUseCase(repos, infraexport.NewXLSXExporter())
	billUC := billing.NewBillUseCase(repos, txRunner, infrapdf.NewMarotoPDFGenerator(cfg.App.Name), notifier, rates, log)
	paymentUC := billing.NewPaymentUseCase(repos, txRunner, gateway, notifier, plan, log)
	dashboardUC := appanalytics.NewDashboardUseCase(repos, cache, time.Duration(cfg.Dashboard.CacheTTLSeconds)*time.Second, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.SecurityHeaders())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Service Center API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		OTPUC:       otpUC,
		CustomerUC:  usecase.NewCustomerUseCase(repos),
		ServiceUC:   usecase.NewServiceUseCase(repos, txRunner, laborRate, log),
		AdvisorUC:   usecase.NewAdvisorUseCase(repos, txRunner, notifier, log),
		InventoryUC: usecase.NewInventoryUseCase(repos.Inventory),
		ExportUC:    exportUC,
		BillUC:      billUC,
		PaymentUC:   paymentUC,
		DashboardUC: dashboardUC,
		JWTSecret:   cfg.JWT.Secret,

		OTPRequestsPerMinute: cfg.OTP.RequestsPerMinute,
		OTPVerifyPerMinute:   cfg.OTP.VerifyPerMinute,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	// correos y PDFs pendientes antes de cerrar conexiones
	billUC.Wait()
	paymentUC.Wait()
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("cola de correo sin vaciar")
	}

	log.Info().Msg("aplicación detenida")
}

func mustDecimal(log *logger.Logger, key, value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		log.Fatal().Err(err).Str("key", key).Msg("valor decimal inválido en configuración")
	}
	return d
}
