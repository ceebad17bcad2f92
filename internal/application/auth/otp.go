package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/servicecenter-api/internal/application/dto"
	"github.com/jhoicas/servicecenter-api/internal/application/ports"
	"github.com/jhoicas/servicecenter-api/internal/domain"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
	"github.com/jhoicas/servicecenter-api/pkg/logger"
)

const otpDigits = 6

// OTPConfig vigencia e intentos permitidos.
type OTPConfig struct {
	TTL         time.Duration
	MaxAttempts int
}

// OTPUseCase ingreso de clientes por código de un solo uso enviado al email.
// El primer ingreso exitoso registra al cliente.
type OTPUseCase struct {
	store    ports.OTPStore
	users    repository.UserRepository
	tx       repository.TxRunner
	notifier ports.Notifier
	jwtCfg   JWTConfig
	cfg      OTPConfig
	log      *logger.Logger

	// generate permite fijar el código en tests.
	generate func() (string, error)
}

// NewOTPUseCase construye el caso de uso.
func NewOTPUseCase(
	store ports.OTPStore,
	users repository.UserRepository,
	tx repository.TxRunner,
	notifier ports.Notifier,
	jwtCfg JWTConfig,
	cfg OTPConfig,
	log *logger.Logger,
) *OTPUseCase {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &OTPUseCase{
		store:    store,
		users:    users,
		tx:       tx,
		notifier: notifier,
		jwtCfg:   jwtCfg,
		cfg:      cfg,
		log:      log.Component("otp"),
		generate: GenerateOTP,
	}
}

// WithGenerator reemplaza el generador de códigos (tests).
func (uc *OTPUseCase) WithGenerator(fn func() (string, error)) *OTPUseCase {
	uc.generate = fn
	return uc
}

// GenerateOTP código numérico de 6 dígitos con crypto/rand.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("otp: generar código: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !govalidator.IsEmail(email) {
		return "", fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
	}
	return email, nil
}

// RequestOTP genera un código nuevo (reemplaza al anterior), guarda su hash con TTL y lo envía por correo.
// El personal no puede ingresar por OTP.
func (uc *OTPUseCase) RequestOTP(ctx context.Context, in dto.RequestOTPRequest) (*dto.RequestOTPResponse, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil && user.Role != entity.RoleCustomer {
		return nil, fmt.Errorf("%w: el personal ingresa con contraseña", domain.ErrForbidden)
	}
	if user != nil && !user.Active {
		return nil, domain.ErrForbidden
	}

	code, err := uc.generate()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Save(ctx, email, ports.OTPEntry{Hash: string(hash)}, uc.cfg.TTL); err != nil {
		return nil, fmt.Errorf("otp: guardar código: %w", err)
	}
	if err := uc.notifier.SendOTP(ctx, email, code, uc.cfg.TTL); err != nil {
		uc.log.Warn().Err(err).Str("email", email).Msg("no se pudo encolar el correo OTP")
	}
	return &dto.RequestOTPResponse{
		Message:          "Se envió un código de verificación a su email",
		ExpiresInSeconds: int(uc.cfg.TTL.Seconds()),
	}, nil
}

// VerifyOTP valida el código. Cada verificación consume un intento; al agotarlos el código
// se invalida y un código correcto solo puede usarse una vez. Si el email no existe se crea el cliente (User + CustomerProfile) en una transacción.
func (uc *OTPUseCase) VerifyOTP(ctx context.Context, in dto.VerifyOTPRequest) (*dto.VerifyOTPResponse, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	code := strings.TrimSpace(in.Code)
	if len(code) != otpDigits {
		return nil, fmt.Errorf("%w: el código debe tener %d dígitos", domain.ErrInvalidInput, otpDigits)
	}

	entry, err := uc.store.Get(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("otp: leer código: %w", err)
	}
	if entry == nil {
		return nil, domain.ErrOTPExpired
	}
	// el intento se reserva antes de comparar: peticiones en paralelo no pueden
	// superar MaxAttempts
	attempts, err := uc.store.IncrementAttempts(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("otp: registrar intento: %w", err)
	}
	if attempts == 0 {
		return nil, domain.ErrOTPExpired
	}
	if attempts > uc.cfg.MaxAttempts {
		_ = uc.store.Delete(ctx, email)
		return nil, domain.ErrOTPAttempts
	}
	if bcrypt.CompareHashAndPassword([]byte(entry.Hash), []byte(code)) != nil {
		if attempts >= uc.cfg.MaxAttempts {
			_ = uc.store.Delete(ctx, email)
			return nil, domain.ErrOTPAttempts
		}
		return nil, domain.ErrOTPInvalid
	}
	consumed, err := uc.store.Consume(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("otp: consumir código: %w", err)
	}
	if !consumed {
		// otra verificación concurrente ya usó (o invalidó) el código
		return nil, domain.ErrOTPExpired
	}

	var (
		user       *entity.User
		profileID  string
		registered bool
	)
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		u, err := repos.Users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if u == nil {
			u, profileID, err = registerCustomer(ctx, repos, email, in.Name, in.Phone)
			if err != nil {
				return err
			}
			registered = true
		} else {
			if u.Role != entity.RoleCustomer || !u.Active {
				return domain.ErrForbidden
			}
			p, err := repos.Customers.GetByUserID(ctx, u.ID)
			if err != nil {
				return err
			}
			if p == nil {
				// usuario sin perfil (alta incompleta): se crea ahora
				p = newCustomerProfile(u.ID, time.Now().UTC())
				if err := repos.Customers.Create(ctx, p); err != nil {
					return err
				}
			}
			profileID = p.ID
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	login, err := IssueToken(uc.jwtCfg, user, profileID)
	if err != nil {
		return nil, err
	}
	if registered {
		uc.log.Info().Str("user_id", user.ID).Msg("cliente registrado por OTP")
	}
	return &dto.VerifyOTPResponse{LoginResponse: *login, Registered: registered}, nil
}

func registerCustomer(ctx context.Context, repos repository.Repositories, email, name, phone string) (*entity.User, string, error) {
	now := time.Now().UTC()
	name = strings.TrimSpace(name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	u := &entity.User{
		ID:             uuid.New().String(),
		Name:           name,
		Email:          email,
		Phone:          strings.TrimSpace(phone),
		Role:           entity.RoleCustomer,
		Active:         true,
		MembershipType: entity.MembershipStandard,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := repos.Users.Create(ctx, u); err != nil {
		return nil, "", err
	}
	p := newCustomerProfile(u.ID, now)
	if err := repos.Customers.Create(ctx, p); err != nil {
		return nil, "", err
	}
	return u, p.ID, nil
}

func newCustomerProfile(userID string, now time.Time) *entity.CustomerProfile {
	return &entity.CustomerProfile{
		ID:         uuid.New().String(),
		UserID:     userID,
		TotalSpent: decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
