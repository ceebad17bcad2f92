package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/servicecenter-api/internal/application/ports"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
)

var _ ports.Notifier = (*Notifier)(nil)

// ErrQueueFull el correo no se pudo encolar.
var ErrQueueFull = errors.New("mail: correo descartado")

var inr = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR formatea un monto con separadores indios y dos decimales: ₹1,23,456.50.
func FormatINR(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return "₹" + inr.Sprint(number.Decimal(f, number.Scale(2)))
}

var templates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"inr":  FormatINR,
	"date": func(t time.Time) string { return t.Format("02 Jan 2006") },
}).Parse(`
{{define "otp"}}<p>Your verification code is <strong>{{.Code}}</strong>.</p>
<p>It expires in {{.Minutes}} minutes. If you did not request it, ignore this email.</p>{{end}}

{{define "credentials"}}<p>Hello {{.Name}},</p>
<p>Your service advisor account has been created.</p>
<p>Email: <strong>{{.Email}}</strong><br>Temporary password: <strong>{{.Password}}</strong></p>
<p>Sign in at <a href="{{.LoginURL}}">{{.LoginURL}}</a> and change it.</p>{{end}}

{{define "invoice"}}<p>Hello {{.Name}},</p>
<p>Your service is complete. Invoice <strong>{{.Invoice.InvoiceNumber}}</strong> was issued on {{date .Invoice.IssuedAt}}.</p>
<table>
<tr><td>Materials</td><td>{{inr .Invoice.MaterialsTotal}}</td></tr>
<tr><td>Labor</td><td>{{inr .Invoice.LaborTotal}}</td></tr>
<tr><td>Discount</td><td>-{{inr .Invoice.Discount}}</td></tr>
<tr><td>GST</td><td>{{inr .Invoice.Tax}}</td></tr>
<tr><td><strong>Total</strong></td><td><strong>{{inr .Invoice.GrandTotal}}</strong></td></tr>
</table>
<p>The invoice PDF is attached.</p>{{end}}

{{define "receipt"}}<p>Hello {{.Name}},</p>
<p>We received your payment of <strong>{{inr .Invoice.GrandTotal}}</strong> for invoice {{.Invoice.InvoiceNumber}}.</p>
<p>Payment reference: {{.PaymentID}}</p>{{end}}

{{define "membership"}}<p>Hello {{.Name}},</p>
<p>Your PREMIUM membership is active until <strong>{{date .ValidUntil}}</strong>.</p>
<p>Amount paid: {{inr .Amount}}. Premium members get a discount on every service.</p>{{end}}
`))

// Notifier renderiza las plantillas y encola los correos en el Mailer.
type Notifier struct {
	mailer  ports.Mailer
	baseURL string
}

// NewNotifier construye el notificador; baseURL es la URL pública usada en los enlaces.
func NewNotifier(mailer ports.Mailer, baseURL string) *Notifier {
	return &Notifier{mailer: mailer, baseURL: baseURL}
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("mail: render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (n *Notifier) enqueue(to, subject, tmpl string, data any, attachments ...ports.Attachment) error {
	body, err := render(tmpl, data)
	if err != nil {
		return err
	}
	if !n.mailer.Enqueue(ports.Mail{To: to, Subject: subject, HTMLBody: body, Attachments: attachments}) {
		return ErrQueueFull
	}
	return nil
}

func (n *Notifier) SendOTP(_ context.Context, to, code string, ttl time.Duration) error {
	return n.enqueue(to, "Your verification code", "otp", map[string]any{
		"Code":    code,
		"Minutes": int(ttl.Minutes()),
	})
}

func (n *Notifier) SendAdvisorCredentials(_ context.Context, to, name, password string) error {
	return n.enqueue(to, "Your service advisor account", "credentials", map[string]any{
		"Name":     name,
		"Email":    to,
		"Password": password,
		"LoginURL": n.baseURL + "/api/auth/login",
	})
}

func (n *Notifier) SendInvoice(_ context.Context, to, name string, invoice *entity.Invoice, pdf []byte) error {
	var attachments []ports.Attachment
	if len(pdf) > 0 {
		attachments = append(attachments, ports.Attachment{
			Filename:    invoice.InvoiceNumber + ".pdf",
			ContentType: "application/pdf",
			Data:        pdf,
		})
	}
	return n.enqueue(to, "Invoice "+invoice.InvoiceNumber, "invoice", map[string]any{
		"Name":    name,
		"Invoice": invoice,
	}, attachments...)
}

func (n *Notifier) SendPaymentReceipt(_ context.Context, to, name string, invoice *entity.Invoice, paymentID string) error {
	return n.enqueue(to, "Payment received for "+invoice.InvoiceNumber, "receipt", map[string]any{
		"Name":      name,
		"Invoice":   invoice,
		"PaymentID": paymentID,
	})
}

func (n *Notifier) SendMembershipConfirmation(_ context.Context, to, name string, amount decimal.Decimal, validUntil time.Time) error {
	return n.enqueue(to, "Your PREMIUM membership is active", "membership", map[string]any{
		"Name":       name,
		"Amount":     amount,
		"ValidUntil": validUntil,
	})
}
