package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/servicecenter-api/internal/application/dto"
	"github.com/jhoicas/servicecenter-api/internal/domain"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
	"github.com/jhoicas/servicecenter-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase autenticación del personal (admin y asesores) con email y contraseña.
type AuthUseCase struct {
	users    repository.UserRepository
	advisors repository.AdvisorRepository
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(users repository.UserRepository, advisors repository.AdvisorRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{users: users, advisors: advisors, jwtCfg: jwtCfg}
}

// Login verifica email/password, genera JWT y retorna token + usuario.
// Los clientes no tienen contraseña: ingresan con OTP.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if !user.IsStaff() || user.PasswordHash == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.Active {
		return nil, domain.ErrForbidden
	}

	profileID := ""
	if user.Role == entity.RoleServiceAdvisor {
		p, err := uc.advisors.GetByUserID(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("asesor %s sin perfil: %w", user.ID, domain.ErrForbidden)
		}
		profileID = p.ID
	}
	return IssueToken(uc.jwtCfg, user, profileID)
}

// IssueToken firma el JWT de la identidad y arma la respuesta de login.
func IssueToken(cfg JWTConfig, user *entity.User, profileID string) (*dto.LoginResponse, error) {
	now := time.Now()
	token, err := jwt.Generate(cfg.Secret, jwt.Identity{UserID: user.ID, ProfileID: profileID, Role: user.Role}, cfg.Issuer, cfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: now.Add(time.Duration(cfg.ExpMinutes) * time.Minute),
		User:      dto.FromUser(user, now),
	}, nil
}

// EnsureAdmin crea el administrador inicial si el email no existe. created=false si ya estaba.
func (uc *AuthUseCase) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, nil
	}
	existing, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		if existing.Role != entity.RoleAdmin {
			return false, fmt.Errorf("bootstrap admin: %s ya existe con rol %s: %w", email, existing.Role, domain.ErrConflict)
		}
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	now := time.Now().UTC()
	if name == "" {
		name = "Administrador"
	}
	admin := &entity.User{
		ID:             uuid.New().String(),
		Name:           name,
		Email:          email,
		PasswordHash:   string(hash),
		Role:           entity.RoleAdmin,
		Active:         true,
		MembershipType: entity.MembershipStandard,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.users.Create(ctx, admin); err != nil {
		return false, err
	}
	return true, nil
}
