package dto

import "time"

// LoginRequest login de personal (admin / serviceAdvisor).
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token JWT más el usuario autenticado.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// RequestOTPRequest body de POST /api/customer/auth/request-otp.
type RequestOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RequestOTPResponse confirma el envío del código.
type RequestOTPResponse struct {
	Message          string `json:"message"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

// VerifyOTPRequest body de POST /api/customer/auth/verify-otp. Name y Phone se usan
// solo en el primer ingreso (registro).
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// VerifyOTPResponse sesión del cliente.
type VerifyOTPResponse struct {
	LoginResponse
	Registered bool `json:"registered"` // true si el cliente se creó en este ingreso
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Role           string     `json:"role"`
	Active         bool       `json:"active"`
	MembershipType string     `json:"membership_type,omitempty"`
	MembershipEnd  *time.Time `json:"membership_end,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
