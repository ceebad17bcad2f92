package ports

import (
	"context"
	"time"
)

// OTPEntry código pendiente de verificación. Solo se guarda el hash bcrypt.
type OTPEntry struct {
	Hash      string    `json:"hash"`
	Attempts  int       `json:"attempts"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OTPStore almacenamiento con expiración de los códigos OTP, por email.
// Get devuelve (nil, nil) si no existe o ya expiró.
type OTPStore interface {
	Save(ctx context.Context, email string, entry OTPEntry, ttl time.Duration) error
	Get(ctx context.Context, email string) (*OTPEntry, error)
	// IncrementAttempts suma un intento de forma atómica y devuelve el total; 0 si no hay código.
	IncrementAttempts(ctx context.Context, email string) (int, error)
	// Consume borra el código y reporta si todavía existía. Solo una llamada concurrente obtiene true.
	Consume(ctx context.Context, email string) (bool, error)
	Delete(ctx context.Context, email string) error
}
