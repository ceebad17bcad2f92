package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/servicecenter-api/internal/application/auth"
	"github.com/jhoicas/servicecenter-api/internal/application/dto"
)

// AuthHandler login del personal y acceso de clientes por OTP.
type AuthHandler struct {
	uc  *auth.AuthUseCase
	otp *auth.OTPUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, otp *auth.OTPUseCase) *AuthHandler {
	return &AuthHandler{uc: uc, otp: otp}
}

// Login godoc
// @Summary      Iniciar sesión (admin y asesores)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.Email == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "email y password son requeridos"})
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RequestOTP godoc
// @Summary      Solicitar código OTP (clientes)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RequestOTPRequest  true  "email"
// @Success      200   {object}  dto.RequestOTPResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/customer/auth/request-otp [post]
func (h *AuthHandler) RequestOTP(c *fiber.Ctx) error {
	var in dto.RequestOTPRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.otp.RequestOTP(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// VerifyOTP godoc
// @Summary      Verificar código OTP; registra al cliente en su primer ingreso
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.VerifyOTPRequest  true  "email, code, name, phone"
// @Success      200   {object}  dto.VerifyOTPResponse
// @Success      201   {object}  dto.VerifyOTPResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/customer/auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var in dto.VerifyOTPRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.Email == "" || in.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "email y code son requeridos"})
	}
	out, err := h.otp.VerifyOTP(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	if out.Registered {
		return c.Status(fiber.StatusCreated).JSON(out)
	}
	return c.JSON(out)
}
