// Package mail envío de correos: cola con workers, remitente SMTP (gomail) y plantillas.
package mail

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/servicecenter-api/internal/application/ports"
	"github.com/jhoicas/servicecenter-api/pkg/logger"
)

var _ ports.Mailer = (*Dispatcher)(nil)

// Dispatcher cola acotada de correos atendida por N workers. Los envíos son best effort:
// los errores se registran y no llegan a la petición HTTP que originó el correo.
type Dispatcher struct {
	sender      ports.MailSender
	queue       chan ports.Mail
	log         *logger.Logger
	sendTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher arranca workers goroutines sobre una cola de queueSize correos.
func NewDispatcher(sender ports.MailSender, workers, queueSize int, log *logger.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	d := &Dispatcher{
		sender:      sender,
		queue:       make(chan ports.Mail, queueSize),
		log:         log.Component("mail"),
		sendTimeout: 30 * time.Second,
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for m := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
		err := d.sender.Send(ctx, m)
		cancel()
		if err != nil {
			d.log.Error().Err(err).Str("to", m.To).Str("subject", m.Subject).Msg("envío de correo fallido")
			continue
		}
		d.log.Debug().Str("to", m.To).Str("subject", m.Subject).Msg("correo enviado")
	}
}

// Enqueue nunca bloquea: con la cola llena o el dispatcher cerrado el correo se descarta.
func (d *Dispatcher) Enqueue(m ports.Mail) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Str("to", m.To).Msg("dispatcher cerrado, correo descartado")
		return false
	}
	select {
	case d.queue <- m:
		return true
	default:
		d.log.Warn().Str("to", m.To).Str("subject", m.Subject).Msg("cola de correo llena, correo descartado")
		return false
	}
}

// Close deja de aceptar correos y espera a que los workers vacíen la cola o venza ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
