// Package notify delivers credit alerts to the configured recipient.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"wareflow/internal/domain/auth"
	"wareflow/internal/domain/documents/entry"
	"wareflow/pkg/logger"
)

// SMTPConfig holds mail transport settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPNotifier sends credit alerts by email.
type SMTPNotifier struct {
	cfg SMTPConfig
}

// NewSMTPNotifier creates an SMTP-backed notifier.
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

// Notify sends one credit alert email.
func (n *SMTPNotifier) Notify(ctx context.Context, recipient string, e *entry.PurchaseEntry) error {
	subject := fmt.Sprintf("Credit Alert: %s", e.SupplierCode)
	body := fmt.Sprintf(
		"The credit limit for\nSupplier: %s,\nBill No: %s\nwill expire on %s.\n\nThank you,\n\nFrom WareFlow",
		e.SupplierCode, e.SupplierBillNo, e.DueDate().Format("2006-01-02"),
	)

	msg := strings.Join([]string{
		"From: " + n.cfg.From,
		"To: " + recipient,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	var a smtp.Auth
	if n.cfg.Username != "" {
		a = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, a, n.cfg.From, []string{recipient}, []byte(msg))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send alert mail: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogNotifier writes alerts to the log instead of sending mail.
// Used in development and tests.
type LogNotifier struct{}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify logs the alert.
func (n *LogNotifier) Notify(ctx context.Context, recipient string, e *entry.PurchaseEntry) error {
	logger.Info(ctx, "credit alert",
		"recipient", recipient,
		"entryNo", e.EntryNo,
		"supplierCode", e.SupplierCode,
		"supplierBillNo", e.SupplierBillNo,
		"dueDate", e.DueDate().Format("2006-01-02"),
	)
	return nil
}

// AdminRecipientSource resolves the alert recipient from the admin
// account's email.
type AdminRecipientSource struct {
	users auth.UserRepository
}

// NewAdminRecipientSource creates a recipient source over the user store.
func NewAdminRecipientSource(users auth.UserRepository) *AdminRecipientSource {
	return &AdminRecipientSource{users: users}
}

// AlertRecipient returns the admin email, empty when none is configured.
func (s *AdminRecipientSource) AlertRecipient(ctx context.Context) (string, error) {
	return s.users.AdminEmail(ctx)
}
