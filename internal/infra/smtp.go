package infra

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"

	"comanda/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer delivers shift reports over SMTP. Port 465 uses implicit TLS,
// 587 upgrades with STARTTLS and any other port sends in the clear (local
// relays, mailhog).
type Mailer struct {
	from string
	addr string
	port int
	auth smtp.Auth
	tls  *tls.Config
}

// NewMailer returns nil when SMTP is not configured.
func NewMailer(cfg *config.Config) *Mailer {
	if !cfg.SMTPEnabled() {
		return nil
	}
	m := &Mailer{
		from: cfg.MailFrom(),
		addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		port: cfg.SMTPPort,
		tls:  &tls.Config{ServerName: cfg.SMTPHost, MinVersion: tls.VersionTLS12},
	}
	if cfg.SMTPPassword != "" {
		m.auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return m
}

// SendRelatorio emails a report, attaching the PDF when pdfPath is set.
func (m *Mailer) SendRelatorio(to, subject, body, pdfPath string) error {
	e, err := m.montar(to, subject, body, pdfPath)
	if err != nil {
		return err
	}

	switch m.port {
	case 465:
		err = e.SendWithTLS(m.addr, m.auth, m.tls)
	case 587:
		err = e.SendWithStartTLS(m.addr, m.auth, m.tls)
	default:
		err = e.Send(m.addr, m.auth)
	}
	if err != nil {
		return fmt.Errorf("mailer: enviar para %s: %w", to, err)
	}
	return nil
}

func (m *Mailer) montar(to, subject, body, pdfPath string) (*email.Email, error) {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath == "" {
		return e, nil
	}
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("mailer: anexo: %w", err)
	}
	defer f.Close()
	if _, err := e.Attach(f, filepath.Base(pdfPath), "application/pdf"); err != nil {
		return nil, fmt.Errorf("mailer: anexo: %w", err)
	}
	return e, nil
}
