package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/frelsi/frelsi-api/internal/config"
	"github.com/frelsi/frelsi-api/internal/domain"
)

// Transport timeouts. The mailer must never hang the authentication flow:
// connecting is capped separately from the whole send.
const (
	dialTimeout = 10 * time.Second
	sendTimeout = 20 * time.Second
)

// Mailer delivers one-time login codes.
type Mailer interface {
	SendAuthCode(ctx context.Context, to, code string, expiry time.Duration) error
}

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *mailer) SendAuthCode(ctx context.Context, to, code string, expiry time.Duration) error {
	subject := "Votre code de connexion Frelsi"
	body := codeEmailHTML(code, expiry)
	msg := fmt.Sprintf("From: \"Frelsi\" <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		m.from, to, subject, body)

	if err := m.send(ctx, to, []byte(msg)); err != nil {
		return fmt.Errorf("send auth code email: %v: %w", err, domain.ErrDelivery)
	}
	return nil
}

// send speaks SMTP over an explicitly bounded connection. Port 465 is implicit
// TLS; anything else starts plain and upgrades with STARTTLS when offered.
func (m *mailer) send(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(m.host, m.port)

	deadline := time.Now().Add(sendTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	dialer := &net.Dialer{Timeout: dialTimeout, Deadline: deadline}
	var conn net.Conn
	var err error
	if m.port == "465" {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: m.host})
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()

	// The deadline covers greeting, auth, and every command after it; the
	// whole exchange fails once sendTimeout elapses.
	if err := conn.SetDeadline(deadline); err != nil {
		return err
	}

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer c.Close()

	if m.port != "465" {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
				return fmt.Errorf("smtp starttls: %w", err)
			}
		}
	}

	if m.username != "" {
		auth := smtp.PlainAuth("", m.username, m.password, m.host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(m.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func codeEmailHTML(code string, expiry time.Duration) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; background-color: #f7efe6; margin: 0; padding: 0;">
    <div style="max-width: 600px; margin: 40px auto; background: white; border-radius: 16px; overflow: hidden;">
      <div style="background: linear-gradient(135deg, #b57b6b, #c18a75); padding: 40px; text-align: center; color: white;">
        <h1 style="margin: 0; font-size: 32px; font-family: Georgia, serif;">Frelsi</h1>
        <p style="margin: 10px 0 0 0; opacity: 0.9;">Code de connexion administrateur</p>
      </div>
      <div style="padding: 40px; text-align: center;">
        <p style="color: #666; font-size: 14px;">Voici votre code de connexion pour acc&eacute;der &agrave; l'administration Frelsi&nbsp;:</p>
        <div style="background: #f7efe6; border: 2px dashed #b57b6b; border-radius: 12px; padding: 30px; margin: 30px 0;">
          <div style="font-size: 48px; font-weight: 700; letter-spacing: 8px; color: #b57b6b; font-family: 'Courier New', monospace;">%s</div>
        </div>
        <p style="color: #8c7b73; font-size: 14px;">Ce code expire dans <strong>%d minutes</strong>.</p>
        <p style="color: #8c7b73; font-size: 14px;">Si vous n'avez pas demand&eacute; ce code, ignorez cet email.</p>
      </div>
      <div style="background: #f7efe6; padding: 20px; text-align: center; color: #8c7b73; font-size: 12px;">
        <p>Frelsi &middot; Pens&eacute;es &middot; Id&eacute;es &middot; Cr&eacute;ations</p>
      </div>
    </div>
  </body>
</html>`, code, int(expiry.Minutes()))
}
