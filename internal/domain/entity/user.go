package entity

import (
	"strings"
	"time"
)

// Roles válidos para User.
const (
	RoleAdmin          = "admin"
	RoleServiceAdvisor = "serviceAdvisor"
	RoleCustomer       = "customer"
)

// Tipos de membresía.
const (
	MembershipStandard = "STANDARD"
	MembershipPremium  = "PREMIUM"
)

// User representa la identidad de una cuenta. Según el rol tiene un CustomerProfile
// o un ServiceAdvisorProfile (uno a uno).
type User struct {
	ID              string
	Name            string
	Email           string
	Phone           string
	PasswordHash    string // bcrypt; vacío para clientes (ingresan con OTP)
	Role            string
	Active          bool
	MembershipType  string
	MembershipStart *time.Time
	MembershipEnd   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EffectiveMembership devuelve la membresía vigente en now: una PREMIUM vencida cuenta como STANDARD.
func (u *User) EffectiveMembership(now time.Time) string {
	if !strings.EqualFold(u.MembershipType, MembershipPremium) {
		return MembershipStandard
	}
	if u.MembershipEnd != nil && u.MembershipEnd.Before(now) {
		return MembershipStandard
	}
	return MembershipPremium
}

// IsStaff indica si el usuario ingresa con email y contraseña.
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleServiceAdvisor
}

// ActivatePremium aplica una compra de membresía PREMIUM de days días. Si la membresía
// PREMIUM sigue vigente se extiende desde su fin; si no, empieza en now.
func (u *User) ActivatePremium(now time.Time, days int) {
	base := now
	if u.EffectiveMembership(now) == MembershipPremium && u.MembershipEnd != nil && u.MembershipEnd.After(now) {
		base = *u.MembershipEnd
	} else {
		start := now
		u.MembershipStart = &start
	}
	end := base.AddDate(0, 0, days)
	u.MembershipType = MembershipPremium
	u.MembershipEnd = &end
	u.UpdatedAt = now
}
