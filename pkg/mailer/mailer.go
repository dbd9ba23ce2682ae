package mailer

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jmoreau/taskhive-backend/pkg/logger"
)

// Config holds SMTP settings. Leaving Host empty disables delivery and
// switches the mailer to log-only mode for local development.
type Config struct {
	Host         string
	Port         string
	Username     string
	Password     string
	From         string
	FromName     string
	UseTLS       bool
	ResetBaseURL string
}

// Mailer delivers account emails
type Mailer interface {
	SendPasswordReset(to, token string) error
}

type smtpMailer struct {
	cfg Config
}

func New(cfg Config) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) SendPasswordReset(to, token string) error {
	resetLink := fmt.Sprintf("%s?token=%s", m.cfg.ResetBaseURL, token)

	if m.cfg.Host == "" {
		logger.Info("SMTP not configured, logging password reset link instead", map[string]interface{}{
			"to":         to,
			"reset_link": resetLink,
		})
		return nil
	}

	subject := "Password Reset Request"
	body := fmt.Sprintf(
		"Hello,\r\n\r\n"+
			"A password reset was requested for your account. Open the link below to choose a new password:\r\n\r\n"+
			"%s\r\n\r\n"+
			"The link is valid for one hour and can be used once. If you did not request this, you can ignore this email.\r\n",
		resetLink,
	)

	return m.send([]string{to}, subject, body)
}

func (m *smtpMailer) send(to []string, subject, body string) error {
	msg := m.buildMessage(to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	// Port 465 uses implicit TLS, other ports go through plain SMTP
	if m.cfg.Port == "465" || m.cfg.UseTLS {
		return m.sendWithTLS(addr, auth, to, []byte(msg))
	}

	return smtp.SendMail(addr, auth, m.cfg.From, to, []byte(msg))
}

func (m *smtpMailer) sendWithTLS(addr string, auth smtp.Auth, to []string, msg []byte) error {
	host := strings.Split(addr, ":")[0]

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return err
		}
	}

	if err = client.Mail(m.cfg.From); err != nil {
		return err
	}
	for _, recipient := range to {
		if err = client.Rcpt(recipient); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	defer w.Close()

	_, err = w.Write(msg)
	return err
}

func (m *smtpMailer) buildMessage(to []string, subject, body string) string {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", m.cfg.FromName, m.cfg.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	return msg.String()
}
