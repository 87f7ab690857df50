package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"

	"nutristeck-bank-backend/internal/common/errors"
	"nutristeck-bank-backend/internal/common/logger"
)

// Sender delivers transactional mail. Callers treat delivery failure as a
// hard error; there is no retry here.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender sends through an implicit-TLS SMTP endpoint (port 465 style).
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.host})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeMailDelivery, "SMTP connect failed")
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeMailDelivery, "SMTP handshake failed")
	}
	defer client.Close()

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := client.Auth(auth); err != nil {
		return errors.Wrap(err, errors.ErrCodeMailDelivery, "SMTP auth failed")
	}

	if err := client.Mail(s.username); err != nil {
		return errors.Wrap(err, errors.ErrCodeMailDelivery, "SMTP MAIL FROM failed")
	}
	if err := client.Rcpt(to); err != nil {
		return errors.Wrap(err, errors.ErrCodeMailDelivery, "SMTP RCPT TO failed")
	}

	w, err := client.Data()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeMailDelivery, "SMTP DATA failed")
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s", s.from, to, subject, body)
	if _, err := w.Write([]byte(msg)); err != nil {
		return errors.Wrap(err, errors.ErrCodeMailDelivery, "SMTP write failed")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeMailDelivery, "SMTP close failed")
	}

	logger.Info().Str("to", to).Str("subject", subject).Msg("Email sent")
	return client.Quit()
}

// LogSender writes mail to the log instead of the network. Used in dev and tests.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, to, subject, body string) error {
	logger.Info().Str("to", to).Str("subject", subject).Msg("Email (log only)")
	return nil
}
