package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrUserNotFound        = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists  = errors.New("el email ya está registrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrInvalidState        = errors.New("la solicitud de servicio no está en el estado requerido")
	ErrOTPExpired          = errors.New("el código OTP expiró o no existe")
	ErrOTPInvalid          = errors.New("código OTP incorrecto")
	ErrOTPAttempts         = errors.New("se superó el número de intentos del código OTP")
	ErrPaymentVerification = errors.New("no se pudo verificar el pago")
)
