package mail

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/servicecenter-api/internal/application/ports"
	"github.com/jhoicas/servicecenter-api/pkg/config"
	"github.com/jhoicas/servicecenter-api/pkg/logger"
)

var (
	_ ports.MailSender = (*GomailSender)(nil)
	_ ports.MailSender = (*LogSender)(nil)
)

// GomailSender envía por SMTP con gomail.
type GomailSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewGomailSender construye el remitente SMTP.
func NewGomailSender(cfg config.SMTPConfig) *GomailSender {
	return &GomailSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (s *GomailSender) Send(ctx context.Context, m ports.Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(buildMessage(s.from, m)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMessage(from string, m ports.Mail) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", m.HTMLBody)
	for _, a := range m.Attachments {
		data := a.Data
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		}
		if a.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}))
		}
		msg.Attach(a.Filename, settings...)
	}
	return msg
}

// LogSender registra los correos en el log en lugar de enviarlos (SMTP sin configurar).
type LogSender struct {
	log *logger.Logger
}

// NewLogSender construye el remitente de desarrollo.
func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log.Component("mail")}
}

func (s *LogSender) Send(_ context.Context, m ports.Mail) error {
	s.log.Info().
		Str("to", m.To).
		Str("subject", m.Subject).
		Int("attachments", len(m.Attachments)).
		Msg("correo (SMTP deshabilitado)")
	s.log.Debug().Str("to", m.To).Str("body", m.HTMLBody).Msg("contenido del correo")
	return nil
}
