package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/servicecenter-api/internal/application/auth"
	"github.com/jhoicas/servicecenter-api/internal/application/dto"
	"github.com/jhoicas/servicecenter-api/internal/application/ports"
	"github.com/jhoicas/servicecenter-api/internal/domain"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
	"github.com/jhoicas/servicecenter-api/pkg/logger"
)

const advisorPasswordLength = 12

// AdvisorUseCase alta y mantenimiento de asesores de servicio (admin).
type AdvisorUseCase struct {
	repos    repository.Repositories
	tx       repository.TxRunner
	notifier ports.Notifier
	log      *logger.Logger
}

// NewAdvisorUseCase construye el caso de uso.
func NewAdvisorUseCase(repos repository.Repositories, tx repository.TxRunner, notifier ports.Notifier, log *logger.Logger) *AdvisorUseCase {
	return &AdvisorUseCase{repos: repos, tx: tx, notifier: notifier, log: log.Component("advisors")}
}

// Create crea el usuario y el perfil del asesor con una contraseña aleatoria que se
// envía por correo. Email repetido -> ErrEmailAlreadyExists.
func (uc *AdvisorUseCase) Create(ctx context.Context, in dto.CreateAdvisorRequest) (*dto.AdvisorResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)
	if name == "" || !govalidator.IsEmail(email) {
		return nil, fmt.Errorf("%w: nombre y email válido son obligatorios", domain.ErrInvalidInput)
	}
	password, err := auth.GeneratePassword(advisorPasswordLength)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("advisors: hash de contraseña: %w", err)
	}

	now := time.Now().UTC()
	user := &entity.User{
		ID:             uuid.New().String(),
		Name:           name,
		Email:          email,
		Phone:          strings.TrimSpace(in.Phone),
		PasswordHash:   string(hash),
		Role:           entity.RoleServiceAdvisor,
		Active:         true,
		MembershipType: entity.MembershipStandard,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	profile := &entity.ServiceAdvisorProfile{
		ID:             uuid.New().String(),
		UserID:         user.ID,
		Department:     strings.TrimSpace(in.Department),
		Specialization: strings.TrimSpace(in.Specialization),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		existing, err := repos.Users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrEmailAlreadyExists
		}
		if err := repos.Users.Create(ctx, user); err != nil {
			return err
		}
		return repos.Advisors.Create(ctx, profile)
	})
	if err != nil {
		return nil, err
	}

	if err := uc.notifier.SendAdvisorCredentials(ctx, user.Email, user.Name, password); err != nil {
		uc.log.Warn().Err(err).Str("advisor_id", profile.ID).Msg("no se pudo encolar el correo de credenciales")
	}
	uc.log.Info().Str("advisor_id", profile.ID).Msg("asesor creado")
	out := dto.FromAdvisor(profile, user)
	return &out, nil
}

func (uc *AdvisorUseCase) load(ctx context.Context, profileID string) (*entity.ServiceAdvisorProfile, *entity.User, error) {
	p, err := uc.repos.Advisors.GetByID(ctx, profileID)
	if err != nil {
		return nil, nil, err
	}
	if p == nil {
		return nil, nil, domain.ErrNotFound
	}
	u, err := uc.repos.Users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, nil, err
	}
	if u == nil {
		return nil, nil, domain.ErrNotFound
	}
	return p, u, nil
}

// Get asesor por id de perfil.
func (uc *AdvisorUseCase) Get(ctx context.Context, profileID string) (*dto.AdvisorResponse, error) {
	p, u, err := uc.load(ctx, profileID)
	if err != nil {
		return nil, err
	}
	out := dto.FromAdvisor(p, u)
	return &out, nil
}

// List asesores.
func (uc *AdvisorUseCase) List(ctx context.Context, page dto.PageRequest) (dto.ListResponse[dto.AdvisorResponse], error) {
	page.DefaultPage()
	profiles, err := uc.repos.Advisors.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return dto.ListResponse[dto.AdvisorResponse]{}, err
	}
	out := make([]dto.AdvisorResponse, 0, len(profiles))
	for _, p := range profiles {
		u, err := uc.repos.Users.GetByID(ctx, p.UserID)
		if err != nil {
			return dto.ListResponse[dto.AdvisorResponse]{}, err
		}
		if u != nil {
			out = append(out, dto.FromAdvisor(p, u))
		}
	}
	return dto.NewListResponse(out, page), nil
}

// Update modifica los campos informados.
func (uc *AdvisorUseCase) Update(ctx context.Context, profileID string, in dto.UpdateAdvisorRequest) (*dto.AdvisorResponse, error) {
	p, u, err := uc.load(ctx, profileID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("%w: el nombre no puede estar vacío", domain.ErrInvalidInput)
		}
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Active != nil {
		u.Active = *in.Active
	}
	if in.Department != nil {
		p.Department = strings.TrimSpace(*in.Department)
	}
	if in.Specialization != nil {
		p.Specialization = strings.TrimSpace(*in.Specialization)
	}
	u.UpdatedAt, p.UpdatedAt = now, now
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		if err := repos.Users.Update(ctx, u); err != nil {
			return err
		}
		return repos.Advisors.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	out := dto.FromAdvisor(p, u)
	return &out, nil
}

// Deactivate desactiva al asesor: ya no puede iniciar sesión ni recibir asignaciones.
func (uc *AdvisorUseCase) Deactivate(ctx context.Context, profileID string) (*dto.AdvisorResponse, error) {
	inactive := false
	return uc.Update(ctx, profileID, dto.UpdateAdvisorRequest{Active: &inactive})
}

// Me perfil del asesor autenticado.
func (uc *AdvisorUseCase) Me(ctx context.Context, actor dto.Actor) (*dto.AdvisorResponse, error) {
	return uc.Get(ctx, actor.ProfileID)
}
