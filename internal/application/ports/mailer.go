package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
)

// Attachment archivo adjunto de un correo (p.ej. el PDF de la factura).
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Mail mensaje de correo ya renderizado.
type Mail struct {
	To          string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

// MailSender entrega un correo de forma síncrona (SMTP, log, ...).
type MailSender interface {
	Send(ctx context.Context, mail Mail) error
}

// Mailer encola correos para envío asíncrono. Enqueue nunca bloquea la petición:
// devuelve false si el correo se descartó.
type Mailer interface {
	Enqueue(mail Mail) bool
}

// Notifier notificaciones por correo del negocio. Las implementaciones encolan el
// envío y retornan de inmediato; un error indica que el correo no se encoló.
type Notifier interface {
	SendOTP(ctx context.Context, to, code string, ttl time.Duration) error
	SendAdvisorCredentials(ctx context.Context, to, name, password string) error
	SendInvoice(ctx context.Context, to, name string, invoice *entity.Invoice, pdf []byte) error
	SendPaymentReceipt(ctx context.Context, to, name string, invoice *entity.Invoice, paymentID string) error
	SendMembershipConfirmation(ctx context.Context, to, name string, amount decimal.Decimal, validUntil time.Time) error
}
