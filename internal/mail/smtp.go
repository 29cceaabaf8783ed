// Package mail dispatches account lifecycle emails over SMTP.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/Salo-Quispe/backend-poli-path/internal/config"
	"github.com/Salo-Quispe/backend-poli-path/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var _ model.MailDispatcher = (*SMTP)(nil)

// SMTP implements model.MailDispatcher against a plain SMTP server,
// upgrading to STARTTLS when the server offers it.
type SMTP struct {
	host          string
	port          int
	username      string
	password      string
	fromAddr      string
	fromName      string
	publicBaseURL string
	templates     *template.Template
}

// NewSMTP builds the dispatcher and parses the embedded mail templates.
func NewSMTP(cfg config.SMTP, publicBaseURL string) (*SMTP, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse mail templates: %w", err)
	}

	return &SMTP{
		host:          cfg.Host,
		port:          cfg.Port,
		username:      cfg.Username,
		password:      cfg.Password,
		fromAddr:      cfg.FromAddr,
		fromName:      cfg.FromName,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		templates:     templates,
	}, nil
}

type linkData struct {
	Name string
	Link string
}

// SendConfirmation emails the activation link carrying the session-purpose
// token issued at registration.
func (s *SMTP) SendConfirmation(ctx context.Context, user model.User, token string) error {
	data := linkData{
		Name: user.Name,
		Link: fmt.Sprintf("%s/auth/confirm-email/%s", s.publicBaseURL, token),
	}
	return s.send(ctx, user.Email, "Confirm your PoliPath account", "confirm_email.html", data)
}

// SendRecovery emails the password recovery link carrying the
// recovery-purpose token.
func (s *SMTP) SendRecovery(ctx context.Context, user model.User, token string) error {
	data := linkData{
		Name: user.Name,
		Link: fmt.Sprintf("%s/auth/confirm-token?token=%s", s.publicBaseURL, token),
	}
	return s.send(ctx, user.Email, "Recover your PoliPath password", "recover_password.html", data)
}

func (s *SMTP) send(ctx context.Context, to, subject, templateName string, data any) error {
	body, err := s.render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", templateName, err)
	}

	msg := buildMessage(s.fromName, s.fromAddr, to, subject, body)

	dialer := net.Dialer{Timeout: 15 * time.Second}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 {
			dialer.Timeout = remaining
		}
	}

	address := fmt.Sprintf("%s:%d", s.host, s.port)
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to dial smtp server: %w", err)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	defer client.Quit()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return fmt.Errorf("failed to start tls: %w", err)
		}
	}

	if s.username != "" {
		auth := smtp.PlainAuth("", s.username, s.password, s.host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := client.Mail(s.fromAddr); err != nil {
		return fmt.Errorf("failed MAIL FROM: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed RCPT TO: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	return nil
}

func (s *SMTP) render(templateName string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildMessage(fromName, fromAddr, to, subject, htmlBody string) []byte {
	from := fromAddr
	if fromName != "" {
		from = fmt.Sprintf("%s <%s>", fromName, fromAddr)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)
	return msg.Bytes()
}
