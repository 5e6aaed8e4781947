// Package notify dispatches reservation confirmations. Delivery is
// best-effort: a failed send is reported to the caller as false and
// logged, never propagated as an error.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/lucas-cardozo/turnos-service/internal/config"
)

// Notifier sends a booking confirmation. The returned bool means
// "sent"; it only annotates the reserve result, it never gates it.
type Notifier interface {
	NotifyConfirmation(ctx context.Context, email, name, date, tod, reservationID string) bool
}

// SMTPNotifier delivers confirmations over SMTP.
type SMTPNotifier struct {
	cfg config.SMTPConfig
	log *zap.Logger
}

func NewSMTPNotifier(cfg config.SMTPConfig, log *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, log: log}
}

func (n *SMTPNotifier) NotifyConfirmation(ctx context.Context, email, name, date, tod, reservationID string) bool {
	msg := buildConfirmation(n.cfg.From, email, name, date, tod, reservationID)

	if err := n.send(ctx, email, msg); err != nil {
		n.log.Warn("confirmation email failed",
			zap.String("reservation_id", reservationID),
			zap.String("email", email),
			zap.Error(err),
		)
		return false
	}

	n.log.Info("confirmation email sent",
		zap.String("reservation_id", reservationID),
		zap.String("email", email),
	)
	return true
}

// send speaks SMTP directly instead of smtp.SendMail so the dial and the
// whole exchange honor the configured timeout and the caller's context.
func (n *SMTPNotifier) send(ctx context.Context, to string, msg []byte) error {
	dialer := net.Dialer{Timeout: n.cfg.SendTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", n.cfg.Address())
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if n.cfg.User != "" {
		auth := smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: n.cfg.Host}); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(n.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}
	return client.Quit()
}

func buildConfirmation(from, to, name, date, tod, reservationID string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: Turno confirmado - %s %s\r\n", date, tod)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&b, "Hola %s,\r\n\r\n", name)
	fmt.Fprintf(&b, "Tu turno fue confirmado para el %s a las %s.\r\n", date, tod)
	fmt.Fprintf(&b, "Codigo de reserva: %s\r\n", reservationID)
	return []byte(b.String())
}

// LogNotifier is the fallback sink used when SMTP is not configured.
// It records the confirmation and always reports it as sent.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyConfirmation(_ context.Context, email, name, date, tod, reservationID string) bool {
	n.log.Info("confirmation (log only)",
		zap.String("reservation_id", reservationID),
		zap.String("email", email),
		zap.String("name", name),
		zap.String("date", date),
		zap.String("time", tod),
	)
	return true
}
