package http

import (
	"github.com/gofiber/contrib/fiberzerolog"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/rs/zerolog"

	"github.com/jhoicas/servicecenter-api/pkg/logger"
)

const localError = "error"

// RequestLogger registra cada petición con método, ruta, status y latencia. Los 5xx salen como
// error junto con la causa que dejó writeError.
func RequestLogger(log *logger.Logger) fiber.Handler {
	zl := log.Component("http").Zerolog()
	return fiberzerolog.New(fiberzerolog.Config{
		GetLogger: func(c *fiber.Ctx) zerolog.Logger {
			if cause, ok := c.Locals(localError).(error); ok {
				return zl.With().AnErr("cause", cause).Logger()
			}
			return zl
		},
		Fields: []string{
			fiberzerolog.FieldMethod,
			fiberzerolog.FieldPath,
			fiberzerolog.FieldStatus,
			fiberzerolog.FieldLatency,
			fiberzerolog.FieldIP,
			fiberzerolog.FieldError,
		},
		Messages: []string{"request", "request", "request"},
	})
}

// SecurityHeaders cabeceras de seguridad para una API JSON.
func SecurityHeaders() fiber.Handler {
	return helmet.New(helmet.Config{
		XFrameOptions:  "DENY",
		ReferrerPolicy: "strict-origin-when-cross-origin",
		// Swagger UI carga sus assets desde un CDN.
		CrossOriginEmbedderPolicy: "unsafe-none",
	})
}
