// Package mail sends outbound notifications. Every send in this app is
// fire-and-forget: registration welcomes, order confirmations, and contact
// form copies never block or fail the request that triggered them.
package mail

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer delivers HTML mail through a plain SMTP relay.
type SMTPMailer struct {
	Addr     string // host:port
	From     string
	Username string
	Password string
	Host     string
}

func NewSMTPMailer(host string, port string, from, username, password string) *SMTPMailer {
	return &SMTPMailer{
		Addr:     host + ":" + port,
		From:     from,
		Username: username,
		Password: password,
		Host:     host,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	return smtp.SendMail(m.Addr, auth, m.From, []string{to}, []byte(msg.String()))
}

// LogMailer logs the mail instead of sending it. Used in development when no
// SMTP relay is configured.
type LogMailer struct{}

func (LogMailer) Send(to, subject, body string) error {
	slog.Info("==========================================")
	slog.Info("📧 EMAIL SENT TO: " + to)
	slog.Info("Subject: " + subject)
	slog.Info(body)
	slog.Info("==========================================")
	return nil
}

// SendAsync dispatches in a goroutine and logs failures; the order/account
// mutation that triggered the mail is already committed and stays committed.
func SendAsync(m Mailer, to, subject, body string) {
	go func() {
		if err := m.Send(to, subject, body); err != nil {
			slog.Warn("Failed to send email", "to", to, "subject", subject, "error", err)
		}
	}()
}
