package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/servicecenter-api/internal/application/dto"
	"github.com/jhoicas/servicecenter-api/internal/domain"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// errorTable traduce errores de dominio a respuestas HTTP. El orden importa: se usa el primero
// que coincide con errors.Is.
var errorTable = []errorMapping{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", ""},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS", "el email ya está registrado"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", ""},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", ""},
	{domain.ErrInvalidState, fiber.StatusConflict, "INVALID_STATE", ""},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", ""},
	{domain.ErrUserNotFound, fiber.StatusUnauthorized, "UNAUTHORIZED", "credenciales inválidas"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "credenciales inválidas"},
	{domain.ErrOTPExpired, fiber.StatusUnauthorized, "OTP_EXPIRED", ""},
	{domain.ErrOTPInvalid, fiber.StatusUnauthorized, "OTP_INVALID", ""},
	{domain.ErrOTPAttempts, fiber.StatusUnauthorized, "OTP_ATTEMPTS", ""},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado"},
	{domain.ErrPaymentVerification, fiber.StatusUnprocessableEntity, "PAYMENT_VERIFICATION", ""},
}

// writeError responde con el status y código que corresponden al error. Los no mapeados son 500
// y se registran en el log de la petición.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: msg})
		}
	}
	c.Locals(localError, err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// parsePage lee limit/offset de la query.
func parsePage(c *fiber.Ctx) (dto.PageRequest, error) {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return page, fmt.Errorf("%w: limit/offset inválidos", domain.ErrInvalidInput)
	}
	return page, nil
}
