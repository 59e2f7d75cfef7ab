package recetario

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	gomail "gopkg.in/gomail.v2"
)

// Mailer is the narrow contract for outbound notification email. Failures
// never propagate to the caller of the lifecycle operation that triggered
// the send, except where the operation explicitly escalates them.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPConfig holds the transport settings for the SMTP mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer returns a Mailer delivering through the configured relay.
func NewSMTPMailer(cfg SMTPConfig) Mailer {
	from := cfg.From
	if from == "" {
		from = `"MasterChef API" <noreply@masterchef.com>`
	}

	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
	}
}

func (m *smtpMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to deliver email").
			WithMetadata(map[string]any{"to": to, "subject": subject})
	}

	return nil
}

// VerificationEmailSubject is the subject line for verification messages.
const VerificationEmailSubject = "Verifica tu email - MasterChef"

// ResetEmailSubject is the subject line for password recovery messages.
const ResetEmailSubject = "Recupera tu contraseña - MasterChef"

// VerificationEmailBody renders the account verification message.
func VerificationEmailBody(nombre, link string) string {
	return fmt.Sprintf(`
		<h2>¡Bienvenido a MasterChef!</h2>
		<p>Hola %s,</p>
		<p>Gracias por registrarte. Por favor verifica tu email haciendo clic en el siguiente enlace:</p>
		<a href="%s" style="padding: 10px 20px; background-color: #2196F3; color: white; text-decoration: none; border-radius: 5px;">
			Verificar Email
		</a>
		<p>Este enlace expirará en 24 horas.</p>
	`, nombre, link)
}

// ResetEmailBody renders the password recovery message.
func ResetEmailBody(nombre, link string) string {
	return fmt.Sprintf(`
		<h2>Recuperación de contraseña</h2>
		<p>Hola %s,</p>
		<p>Recibimos una solicitud para restablecer tu contraseña.</p>
		<p>Haz clic en el siguiente enlace para crear una nueva contraseña:</p>
		<a href="%s" style="padding: 10px 20px; background-color: #4CAF50; color: white; text-decoration: none; border-radius: 5px;">
			Restablecer contraseña
		</a>
		<p>Este enlace expirará en 1 hora.</p>
		<p>Si no solicitaste este cambio, ignora este email.</p>
	`, nombre, link)
}
